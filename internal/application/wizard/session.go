package wizard

import (
	"time"

	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
)

// State paso actual de la conversación.
type State string

const (
	StateAwaitingProduct  State = "AWAITING_PRODUCT"
	StateAwaitingAction   State = "AWAITING_ACTION"
	StateAwaitingQuantity State = "AWAITING_QUANTITY"
	StateAwaitingReason   State = "AWAITING_REASON"
	StateExecuted         State = "EXECUTED"
	StateCancelled        State = "CANCELLED"
)

// Terminal indica que la sesión debe descartarse después del turno.
func (s State) Terminal() bool {
	return s == StateExecuted || s == StateCancelled
}

// Action operación elegida por el usuario.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionSet    Action = "set"
)

// MovementType traduce la acción al tipo de movimiento del ledger.
func (a Action) MovementType() entity.MovementType {
	switch a {
	case ActionAdd:
		return entity.MovementTypeIN
	case ActionRemove:
		return entity.MovementTypeOUT
	default:
		return entity.MovementTypeADJUSTMENT
	}
}

// Valid indica si la acción es conocida.
func (a Action) Valid() bool {
	return a == ActionAdd || a == ActionRemove || a == ActionSet
}

// Session estado de una conversación, serializable a JSON para el almacén con TTL.
type Session struct {
	ConversationID string    `json:"conversation_id"`
	State          State     `json:"state"`
	ProductID      string    `json:"product_id,omitempty"`
	ProductSKU     string    `json:"product_sku,omitempty"`
	ProductName    string    `json:"product_name,omitempty"`
	CurrentStock   int       `json:"current_stock"`
	Action         Action    `json:"action,omitempty"`
	Quantity       int       `json:"quantity"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSession crea una sesión en el primer paso.
func NewSession(conversationID string) Session {
	return Session{ConversationID: conversationID, State: StateAwaitingProduct}
}

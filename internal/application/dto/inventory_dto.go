package dto

import "time"

// CreateMovementRequest body para POST /api/stock-movements.
// Quantity es una magnitud; para ADJUSTMENT es la cantidad absoluta resultante.
type CreateMovementRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Type      string  `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT RETURN DAMAGED"`
	Quantity  int     `json:"quantity" validate:"min=0"`
	Reason    *string `json:"reason" validate:"omitempty,max=500"`
	Reference *string `json:"reference" validate:"omitempty,max=100"`
}

// MovementListRequest filtros de GET /api/stock-movements.
type MovementListRequest struct {
	ProductID string `query:"product_id"`
	Type      string `query:"type" validate:"omitempty,oneof=IN OUT ADJUSTMENT RETURN DAMAGED"`
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

// MovementResponse salida de un movimiento del ledger.
type MovementResponse struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"product_id"`
	UserID            string    `json:"user_id"`
	Type              string    `json:"type"`
	Quantity          int       `json:"quantity"`
	PreviousQuantity  int       `json:"previous_quantity"`
	ResultingQuantity int       `json:"resulting_quantity"`
	Reason            *string   `json:"reason,omitempty"`
	Reference         *string   `json:"reference,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// MovementResultResponse respuesta de un movimiento aplicado.
type MovementResultResponse struct {
	Movement MovementResponse `json:"movement"`
	Product  ProductResponse  `json:"product"`
}

// MovementListResponse lista de movimientos (más recientes primero).
type MovementListResponse struct {
	Movements []MovementResponse `json:"movements"`
}

// LedgerVerificationResponse compara la cantidad almacenada con la reconstruida desde el ledger.
type LedgerVerificationResponse struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	Replayed   int    `json:"replayed"`
	Movements  int    `json:"movements"`
	Consistent bool   `json:"consistent"`
}

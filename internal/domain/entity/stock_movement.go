package entity

import "time"

// MovementType tipo de movimiento del ledger.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         MovementType = "IN"         // entrada: suma
	MovementTypeOUT        MovementType = "OUT"        // salida: resta
	MovementTypeADJUSTMENT MovementType = "ADJUSTMENT" // fija la cantidad absoluta
	MovementTypeRETURN     MovementType = "RETURN"     // devolución: suma
	MovementTypeDAMAGED    MovementType = "DAMAGED"    // avería: resta
)

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT, MovementTypeRETURN, MovementTypeDAMAGED:
		return true
	}
	return false
}

// StockMovement registro inmutable de un cambio de cantidad.
// Quantity es siempre una magnitud no negativa; para ADJUSTMENT es |nuevo - anterior|.
// ResultingQuantity es la cantidad del producto después de aplicar el movimiento.
type StockMovement struct {
	ID                string
	ProductID         string
	UserID            string
	Type              MovementType
	Quantity          int
	PreviousQuantity  int
	ResultingQuantity int
	Reason            *string
	Reference         *string
	CreatedAt         time.Time
}

package inventory

import (
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
)

// Outcome resultado de aplicar un movimiento sobre una cantidad.
type Outcome struct {
	Previous int // cantidad antes
	Next     int // cantidad después
	Recorded int // magnitud a registrar en el ledger (nunca negativa)
}

// ApplyMovement calcula la nueva cantidad según el tipo (servicio de dominio, sin I/O).
//
//	IN, RETURN       -> actual + magnitud
//	OUT, DAMAGED     -> actual - magnitud; si queda negativo, ErrInsufficientStock
//	ADJUSTMENT       -> magnitud (cantidad absoluta); se registra |nueva - actual|
//
// La magnitud debe ser > 0, salvo en ADJUSTMENT donde 0 es válido (dejar en cero).
func ApplyMovement(current int, t entity.MovementType, magnitude int) (Outcome, error) {
	if !t.Valid() || magnitude < 0 {
		return Outcome{}, domain.ErrInvalidInput
	}
	if magnitude == 0 && t != entity.MovementTypeADJUSTMENT {
		return Outcome{}, domain.ErrInvalidInput
	}
	out := Outcome{Previous: current, Recorded: magnitude}
	switch t {
	case entity.MovementTypeIN, entity.MovementTypeRETURN:
		out.Next = current + magnitude
	case entity.MovementTypeOUT, entity.MovementTypeDAMAGED:
		out.Next = current - magnitude
		if out.Next < 0 {
			return Outcome{}, domain.ErrInsufficientStock
		}
	case entity.MovementTypeADJUSTMENT:
		out.Next = magnitude
		out.Recorded = abs(magnitude - current)
	}
	return out, nil
}

// Replay reconstruye la cantidad a partir de los movimientos en orden de creación.
// ADJUSTMENT reinicia el acumulado a su ResultingQuantity.
func Replay(movements []*entity.StockMovement) int {
	qty := 0
	for _, m := range movements {
		switch m.Type {
		case entity.MovementTypeIN, entity.MovementTypeRETURN:
			qty += m.Quantity
		case entity.MovementTypeOUT, entity.MovementTypeDAMAGED:
			qty -= m.Quantity
		case entity.MovementTypeADJUSTMENT:
			qty = m.ResultingQuantity
		}
	}
	return qty
}

// BulkAdjustment tipo de ajuste masivo de stock.
type BulkAdjustment string

const (
	BulkAdd      BulkAdjustment = "add"
	BulkSubtract BulkAdjustment = "subtract"
	BulkSet      BulkAdjustment = "set"
)

// Validate comprueba el tipo y el valor antes de tocar cualquier producto.
func (a BulkAdjustment) Validate(value int) error {
	switch a {
	case BulkAdd, BulkSubtract:
		if value <= 0 {
			return domain.ErrInvalidInput
		}
	case BulkSet:
		if value < 0 {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// BulkTarget calcula la cantidad destino de un ajuste masivo.
// A diferencia de ApplyMovement, subtract se recorta en cero en lugar de fallar.
func BulkTarget(current int, a BulkAdjustment, value int) int {
	switch a {
	case BulkAdd:
		return current + value
	case BulkSubtract:
		if current-value < 0 {
			return 0
		}
		return current - value
	case BulkSet:
		return value
	}
	return current
}

// DeltaMovement traduce una diferencia de cantidad al movimiento que la registra.
// delta == 0 no genera movimiento (ok = false).
func DeltaMovement(delta int) (t entity.MovementType, magnitude int, ok bool) {
	switch {
	case delta > 0:
		return entity.MovementTypeIN, delta, true
	case delta < 0:
		return entity.MovementTypeOUT, -delta, true
	}
	return "", 0, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

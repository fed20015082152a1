package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario con su cantidad disponible.
// Quantity solo se modifica a través del ledger de movimientos (gateway o ajuste masivo).
type Product struct {
	ID          string
	SKU         string  // único
	Barcode     *string // opcional, único cuando existe
	Name        string
	Description string
	CategoryID  string
	SupplierID  *string
	Quantity    int
	MinStock    int
	MaxStock    *int // solo informativo, no se hace cumplir
	Price       decimal.Decimal
	CostPrice   decimal.Decimal
	Unit        string
	IsActive    bool // false = eliminado lógicamente
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLowStock indica si la cantidad está en o por debajo del mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStock
}

// ExceedsMax indica si una cantidad supera el máximo (advertencia, no error).
func (p *Product) ExceedsMax(qty int) bool {
	return p.MaxStock != nil && qty > *p.MaxStock
}

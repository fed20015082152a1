package dto

import "github.com/jhoicas/stockmanager-api/internal/domain/entity"

// NewProductResponse mapea la entidad a su representación HTTP.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Barcode:     p.Barcode,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		SupplierID:  p.SupplierID,
		Quantity:    p.Quantity,
		MinStock:    p.MinStock,
		MaxStock:    p.MaxStock,
		LowStock:    p.IsLowStock(),
		Price:       p.Price,
		CostPrice:   p.CostPrice,
		Unit:        p.Unit,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewMovementResponse mapea un movimiento del ledger.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                m.ID,
		ProductID:         m.ProductID,
		UserID:            m.UserID,
		Type:              string(m.Type),
		Quantity:          m.Quantity,
		PreviousQuantity:  m.PreviousQuantity,
		ResultingQuantity: m.ResultingQuantity,
		Reason:            m.Reason,
		Reference:         m.Reference,
		CreatedAt:         m.CreatedAt,
	}
}

// NewOrderResponse mapea una orden con sus líneas.
func NewOrderResponse(o *entity.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		})
	}
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Type:        string(o.Type),
		Status:      string(o.Status),
		SupplierID:  o.SupplierID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Notes:       o.Notes,
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// NewCategoryResponse mapea una categoría.
func NewCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

// NewSupplierResponse mapea un proveedor.
func NewSupplierResponse(s *entity.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
	}
}

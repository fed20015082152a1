package dto

import "github.com/shopspring/decimal"

// BulkStockRequest body para PUT /api/products/bulk/stock.
type BulkStockRequest struct {
	ProductIDs     []string `json:"product_ids" validate:"required,min=1,dive,required"`
	AdjustmentType string   `json:"adjustment_type" validate:"required,oneof=add subtract set"`
	Value          int      `json:"value" validate:"min=0"`
	UserID         string   `json:"user_id"`
}

// BulkCategoryRequest body para PUT /api/products/bulk/category.
type BulkCategoryRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,required"`
	CategoryID string   `json:"category_id" validate:"required"`
}

// BulkSupplierRequest body para PUT /api/products/bulk/supplier. SupplierID nil quita el proveedor.
type BulkSupplierRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,required"`
	SupplierID *string  `json:"supplier_id"`
}

// BulkPriceRequest body para PUT /api/products/bulk/prices. Value es un porcentaje.
type BulkPriceRequest struct {
	ProductIDs     []string        `json:"product_ids" validate:"required,min=1,dive,required"`
	AdjustmentType string          `json:"adjustment_type" validate:"required,oneof=increase decrease"`
	Value          decimal.Decimal `json:"value"`
	ApplyTo        string          `json:"apply_to" validate:"required,oneof=price cost_price both"`
}

// BulkStatusRequest body para PUT /api/products/bulk/status.
type BulkStatusRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,required"`
	IsActive   *bool    `json:"is_active" validate:"required"`
}

// BulkDeleteRequest body para DELETE /api/products/bulk (borrado lógico).
type BulkDeleteRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,required"`
}

// BulkResponse resultado de una operación masiva; los fallos por producto no abortan al resto.
type BulkResponse struct {
	Count   int                `json:"count"`
	Failed  int                `json:"failed"`
	Message string             `json:"message"`
	Items   []BulkItemResponse `json:"items"`
}

// BulkItemResponse resultado por producto.
type BulkItemResponse struct {
	ProductID string `json:"product_id"`
	Success   bool   `json:"success"`
	Previous  *int   `json:"previous_quantity,omitempty"`
	New       *int   `json:"new_quantity,omitempty"`
	Error     string `json:"error,omitempty"`
}

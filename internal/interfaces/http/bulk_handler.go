package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmanager-api/internal/application/dto"
	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
)

// BulkHandler operaciones masivas sobre productos. Responde 200 aunque fallen productos
// individuales; el detalle va en items.
type BulkHandler struct {
	bulk *inventory.BulkCoordinator
}

// NewBulkHandler construye el handler.
func NewBulkHandler(bulk *inventory.BulkCoordinator) *BulkHandler {
	return &BulkHandler{bulk: bulk}
}

// AdjustStock godoc
// @Summary      Ajuste masivo de stock
// @Description  add suma, subtract resta recortando en 0, set fija el total. Una transacción por producto.
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkStockRequest  true  "product_ids, adjustment_type, value"
// @Success      200   {object}  dto.BulkResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/bulk/stock [put]
func (h *BulkHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.BulkStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	// El token tiene prioridad sobre user_id del cuerpo
	if id := GetUserID(c); id != "" {
		in.UserID = id
	}
	return h.reply(c)(h.bulk.AdjustStock(c.UserContext(), in))
}

// UpdateCategory godoc
// @Summary      Asignación masiva de categoría
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkCategoryRequest  true  "product_ids, category_id"
// @Success      200   {object}  dto.BulkResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/bulk/category [put]
func (h *BulkHandler) UpdateCategory(c *fiber.Ctx) error {
	var in dto.BulkCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.bulk.UpdateCategory(c.UserContext(), in))
}

// UpdateSupplier godoc
// @Summary      Asignación masiva de proveedor
// @Description  supplier_id null o vacío quita el proveedor.
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkSupplierRequest  true  "product_ids, supplier_id"
// @Success      200   {object}  dto.BulkResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/bulk/supplier [put]
func (h *BulkHandler) UpdateSupplier(c *fiber.Ctx) error {
	var in dto.BulkSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.bulk.UpdateSupplier(c.UserContext(), in))
}

// AdjustPrices godoc
// @Summary      Ajuste masivo de precios
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkPriceRequest  true  "product_ids, adjustment_type, value (%), apply_to"
// @Success      200   {object}  dto.BulkResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/bulk/prices [put]
func (h *BulkHandler) AdjustPrices(c *fiber.Ctx) error {
	var in dto.BulkPriceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.bulk.AdjustPrices(c.UserContext(), in))
}

// UpdateStatus godoc
// @Summary      Activar o desactivar productos
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkStatusRequest  true  "product_ids, is_active"
// @Success      200   {object}  dto.BulkResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/bulk/status [put]
func (h *BulkHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.BulkStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.bulk.UpdateStatus(c.UserContext(), in))
}

// Delete godoc
// @Summary      Borrado lógico masivo
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkDeleteRequest  true  "product_ids"
// @Success      200   {object}  dto.BulkResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products/bulk [delete]
func (h *BulkHandler) Delete(c *fiber.Ctx) error {
	var in dto.BulkDeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reply(c)(h.bulk.SoftDelete(c.UserContext(), in))
}

func (h *BulkHandler) reply(c *fiber.Ctx) func(*inventory.BulkResult, error) error {
	return func(r *inventory.BulkResult, err error) error {
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(bulkResponse(r))
	}
}

func bulkResponse(r *inventory.BulkResult) dto.BulkResponse {
	out := dto.BulkResponse{
		Count:   r.Succeeded,
		Failed:  r.Failed(),
		Message: r.Message(),
		Items:   make([]dto.BulkItemResponse, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		item := dto.BulkItemResponse{ProductID: it.ProductID, Success: it.Err == nil}
		if it.Err != nil {
			item.Error = it.Err.Error()
		} else if r.Operation == inventory.BulkOpStock {
			prev, next := it.Previous, it.New
			item.Previous, item.New = &prev, &next
		}
		out.Items = append(out.Items, item)
	}
	return out
}

package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmanager-api/internal/application/dto"
	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

// StockMovementHandler expone el gateway de movimientos.
type StockMovementHandler struct {
	gateway *inventory.MovementGateway
}

// NewStockMovementHandler construye el handler.
func NewStockMovementHandler(gateway *inventory.MovementGateway) *StockMovementHandler {
	return &StockMovementHandler{gateway: gateway}
}

// Create godoc
// @Summary      Registrar movimiento de stock
// @Description  IN/RETURN suman, OUT/DAMAGED restan, ADJUSTMENT fija la cantidad absoluta.
// @Tags         stock-movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "product_id, type, quantity, reason, reference"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock-movements [post]
func (h *StockMovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	product, movement, err := h.gateway.ApplyMovement(c.UserContext(), inventory.FromRequest(GetUserID(c), in))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResultResponse{
		Movement: dto.NewMovementResponse(movement),
		Product:  dto.NewProductResponse(product),
	})
}

// List godoc
// @Summary      Consultar el ledger
// @Tags         stock-movements
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        type        query  string  false  "Tipo de movimiento"
// @Param        start_date  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        end_date    query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        limit       query  int     false  "Límite"  default(100)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements [get]
func (h *StockMovementHandler) List(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := c.QueryParser(&in); err != nil {
		return writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	filter, err := movementFilter(in)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.gateway.ListMovements(c.UserContext(), filter, in.Limit)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementListResponse{Movements: make([]dto.MovementResponse, 0, len(list))}
	for _, m := range list {
		out.Movements = append(out.Movements, dto.NewMovementResponse(m))
	}
	return c.JSON(out)
}

// VerifyLedger godoc
// @Summary      Verificar ledger de un producto
// @Description  Reconstruye la cantidad desde los movimientos y la compara con la almacenada.
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.LedgerVerificationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/ledger/verify [get]
func (h *StockMovementHandler) VerifyLedger(c *fiber.Ctx) error {
	out, err := h.gateway.VerifyLedger(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// movementFilter convierte las fechas YYYY-MM-DD; end_date incluye el día completo.
func movementFilter(in dto.MovementListRequest) (repository.MovementFilter, error) {
	f := repository.MovementFilter{ProductID: in.ProductID, Type: entity.MovementType(in.Type)}
	if in.StartDate != "" {
		from, err := time.Parse(time.DateOnly, in.StartDate)
		if err != nil {
			return f, fmt.Errorf("%w: start_date", domain.ErrInvalidInput)
		}
		f.From = &from
	}
	if in.EndDate != "" {
		end, err := time.Parse(time.DateOnly, in.EndDate)
		if err != nil {
			return f, fmt.Errorf("%w: end_date", domain.ErrInvalidInput)
		}
		to := end.Add(24*time.Hour - time.Nanosecond)
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, fmt.Errorf("%w: start_date posterior a end_date", domain.ErrInvalidInput)
	}
	return f, nil
}

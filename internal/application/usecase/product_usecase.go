package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stockmanager-api/internal/application/dto"
	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

const initialStockReason = "Initial stock"

// ProductUseCase alta y consulta de productos. La cantidad solo cambia vía movimientos.
type ProductUseCase struct {
	txRunner   inventory.TxRunner
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	gateway    *inventory.MovementGateway
	actors     *inventory.ActorResolver
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner inventory.TxRunner,
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	gateway *inventory.MovementGateway,
	actors *inventory.ActorResolver,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:   txRunner,
		repo:       repo,
		categories: categories,
		suppliers:  suppliers,
		gateway:    gateway,
		actors:     actors,
	}
}

// Create crea un producto con cantidad 0 y, si InitialQuantity > 0, registra un IN "Initial stock"
// en la misma transacción para que el ledger explique la cantidad inicial.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest, callerID string) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() || in.CostPrice.IsNegative() {
		return nil, fmt.Errorf("%w: precios negativos", domain.ErrInvalidInput)
	}
	if in.MaxStock != nil && *in.MaxStock < in.MinStock {
		return nil, fmt.Errorf("%w: max_stock menor que min_stock", domain.ErrInvalidInput)
	}
	if err := uc.checkReferences(ctx, in); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.Barcode != nil {
		byBarcode, err := uc.repo.GetByBarcode(ctx, *in.Barcode)
		if err != nil {
			return nil, err
		}
		if byBarcode != nil {
			return nil, domain.ErrDuplicate
		}
	}
	if in.Unit == "" {
		in.Unit = "unit"
	}

	var actorID string
	if in.InitialQuantity > 0 {
		if actorID, err = uc.actors.Resolve(ctx, callerID); err != nil {
			return nil, fmt.Errorf("resolver actor: %w", err)
		}
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         strings.TrimSpace(in.SKU),
		Barcode:     in.Barcode,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CategoryID:  in.CategoryID,
		SupplierID:  in.SupplierID,
		Quantity:    0,
		MinStock:    in.MinStock,
		MaxStock:    in.MaxStock,
		Price:       in.Price.Round(2),
		CostPrice:   in.CostPrice.Round(2),
		Unit:        in.Unit,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.InitialQuantity == 0 {
			return nil
		}
		reason := initialStockReason
		updated, _, err := uc.gateway.ApplyInTx(ctx, repos, inventory.MovementInput{
			ProductID: product.ID,
			Type:      entity.MovementTypeIN,
			Quantity:  in.InitialQuantity,
			Reason:    &reason,
		}, actorID)
		if err != nil {
			return err
		}
		product = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

func (uc *ProductUseCase) checkReferences(ctx context.Context, in dto.CreateProductRequest) error {
	cat, err := uc.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	if cat == nil {
		return domain.ErrCategoryNotFound
	}
	if in.SupplierID != nil {
		s, err := uc.suppliers.GetByID(ctx, *in.SupplierID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrSupplierNotFound
		}
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	out := dto.NewProductResponse(product)
	return &out, nil
}

// List lista productos con filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.ProductFilter{
		Search:          in.Search,
		CategoryID:      in.CategoryID,
		SupplierID:      in.SupplierID,
		LowStock:        in.LowStock,
		IncludeInactive: in.IncludeInactive,
	}, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.NewProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

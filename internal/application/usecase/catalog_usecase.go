package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stockmanager-api/internal/application/dto"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
)

// CatalogUseCase alta y listado de categorías y proveedores.
type CatalogUseCase struct {
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(categories repository.CategoryRepository, suppliers repository.SupplierRepository) *CatalogUseCase {
	return &CatalogUseCase{categories: categories, suppliers: suppliers}
}

// CreateCategory crea una categoría. Nombre duplicado -> ErrDuplicate.
func (uc *CatalogUseCase) CreateCategory(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := time.Now()
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	out := dto.NewCategoryResponse(c)
	return &out, nil
}

// ListCategories lista las categorías por nombre.
func (uc *CatalogUseCase) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.NewCategoryResponse(c))
	}
	return out, nil
}

// CreateSupplier crea un proveedor.
func (uc *CatalogUseCase) CreateSupplier(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := time.Now()
	s := &entity.Supplier{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.suppliers.Create(ctx, s); err != nil {
		return nil, err
	}
	out := dto.NewSupplierResponse(s)
	return &out, nil
}

// ListSuppliers lista los proveedores por nombre.
func (uc *CatalogUseCase) ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error) {
	list, err := uc.suppliers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewSupplierResponse(s))
	}
	return out, nil
}

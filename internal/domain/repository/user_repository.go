package repository

import (
	"context"

	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Create devuelve domain.ErrDuplicate si el email ya existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

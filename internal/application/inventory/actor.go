package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
)

// ActorResolver determina quién firma un movimiento. Si el caller no está identificado,
// busca o crea la identidad de sistema, identificada por un email único y estable.
// La creación es segura entre instancias: si otra instancia ganó la carrera (ErrDuplicate),
// se vuelve a leer el registro existente.
type ActorResolver struct {
	users repository.UserRepository
	email string
	name  string
	log   *logger.Logger
}

// NewActorResolver construye el resolver con el email y nombre de la identidad de sistema.
func NewActorResolver(users repository.UserRepository, systemEmail, systemName string, log *logger.Logger) *ActorResolver {
	return &ActorResolver{
		users: users,
		email: strings.ToLower(strings.TrimSpace(systemEmail)),
		name:  systemName,
		log:   log.WithComponent("actor_resolver"),
	}
}

// Resolve devuelve callerID si no está vacío; si no, el ID de la identidad de sistema.
// Un callerID que no corresponde a ningún usuario es ErrUnauthorized.
func (r *ActorResolver) Resolve(ctx context.Context, callerID string) (string, error) {
	if callerID != "" {
		caller, err := r.users.GetByID(ctx, callerID)
		if err != nil {
			return "", fmt.Errorf("buscar usuario: %w", err)
		}
		if caller == nil {
			return "", fmt.Errorf("%w: usuario %s no existe", domain.ErrUnauthorized, callerID)
		}
		return caller.ID, nil
	}
	user, err := r.users.GetByEmail(ctx, r.email)
	if err != nil {
		return "", fmt.Errorf("buscar usuario de sistema: %w", err)
	}
	if user != nil {
		return user.ID, nil
	}

	user, err = r.newSystemUser()
	if err != nil {
		return "", err
	}
	err = r.users.Create(ctx, user)
	if err == nil {
		r.log.Info().Str("user_id", user.ID).Str("email", r.email).Msg("usuario de sistema creado")
		return user.ID, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return "", fmt.Errorf("crear usuario de sistema: %w", err)
	}

	// Otra instancia lo creó entre la lectura y la inserción
	existing, err := r.users.GetByEmail(ctx, r.email)
	if err != nil {
		return "", fmt.Errorf("releer usuario de sistema: %w", err)
	}
	if existing == nil {
		return "", fmt.Errorf("usuario de sistema duplicado pero no encontrado: %w", domain.ErrUserNotFound)
	}
	return existing.ID, nil
}

func (r *ActorResolver) newSystemUser() (*entity.User, error) {
	// Contraseña aleatoria que nadie conoce: la identidad no puede iniciar sesión
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash de contraseña: %w", err)
	}
	now := time.Now()
	return &entity.User{
		ID:           uuid.New().String(),
		Email:        r.email,
		PasswordHash: string(hash),
		Name:         r.name,
		Role:         entity.RoleSystem,
		IsSystem:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

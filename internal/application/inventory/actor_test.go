package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
)

func TestActorResolver_CreacionConcurrenteUnaSolaIdentidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := f.actors.Resolve(ctx, "")
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	sys, err := f.store.Users().GetByEmail(ctx, "BOT@stockmanager.com")
	require.NoError(t, err)
	require.NotNil(t, sys)
	assert.Equal(t, ids[0], sys.ID)
}

// racingUsers simula que otra instancia inserta la identidad entre la lectura y la escritura.
type racingUsers struct {
	winner *entity.User
	reads  int
}

func (r *racingUsers) Create(ctx context.Context, u *entity.User) error { return domain.ErrDuplicate }

func (r *racingUsers) GetByID(ctx context.Context, id string) (*entity.User, error) { return nil, nil }

func (r *racingUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.reads++
	if r.reads == 1 {
		return nil, nil
	}
	return r.winner, nil
}

func TestActorResolver_DuplicadoReleeElGanador(t *testing.T) {
	users := &racingUsers{winner: &entity.User{ID: "winner-id", Email: systemEmail, IsSystem: true}}
	resolver := inventory.NewActorResolver(users, systemEmail, "Bot", logger.Nop())

	id, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "winner-id", id)
	assert.Equal(t, 2, users.reads)
}

func TestActorResolver_DuplicadoSinGanadorEsError(t *testing.T) {
	users := &racingUsers{}
	resolver := inventory.NewActorResolver(users, systemEmail, "Bot", logger.Nop())

	_, err := resolver.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

package wizard_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/application/wizard"
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
)

type countingGateway struct {
	mu    sync.Mutex
	calls []inventory.MovementInput
	inner wizard.MovementApplier
}

func (g *countingGateway) ApplyMovement(ctx context.Context, in inventory.MovementInput) (*entity.Product, *entity.StockMovement, error) {
	g.mu.Lock()
	g.calls = append(g.calls, in)
	g.mu.Unlock()
	return g.inner.ApplyMovement(ctx, in)
}

type fakeDecoder struct {
	code string
	err  error
}

func (d fakeDecoder) Decode([]byte) (string, error) { return d.code, d.err }

type harness struct {
	store    *memory.Store
	sessions *memory.SessionStore
	gateway  *countingGateway
	svc      *wizard.Service
}

func newHarness(t *testing.T, decoder wizard.BarcodeDecoder) *harness {
	t.Helper()
	store := memory.NewStore()
	actors := inventory.NewActorResolver(store.Users(), "bot@stockmanager.com", "Bot", logger.Nop())
	gw := &countingGateway{inner: inventory.NewMovementGateway(store, store.Products(), store.Movements(), actors, logger.Nop(), nil)}
	sessions := memory.NewSessionStore(nil)
	svc := wizard.NewService(sessions, store.Products(), decoder, gw, 10*time.Minute, logger.Nop(), nil)
	return &harness{store: store, sessions: sessions, gateway: gw, svc: svc}
}

func (h *harness) product(t *testing.T, sku, name string, qty int, barcode *string) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{ID: uuid.NewString(), SKU: sku, Barcode: barcode, Name: name, CategoryID: "cat", Quantity: qty, IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, h.store.Products().Create(context.Background(), p))
	return p
}

func (h *harness) turn(t *testing.T, msg wizard.Message) wizard.Reply {
	t.Helper()
	r, err := h.svc.HandleTurn(context.Background(), "chat-1", msg)
	require.NoError(t, err)
	return r
}

func TestHandleTurn_FlujoCompletoLlamaAlGatewayUnaVez(t *testing.T) {
	h := newHarness(t, nil)
	p := h.product(t, "W-1", "Widget", 10, nil)

	assert.Equal(t, wizard.StateAwaitingProduct, h.turn(t, wizard.Message{Text: "/adjust"}).State)
	assert.Equal(t, wizard.StateAwaitingAction, h.turn(t, wizard.Message{Text: "W-1"}).State)
	assert.Equal(t, wizard.StateAwaitingQuantity, h.turn(t, wizard.Message{Callback: "adjust_type_add"}).State)
	assert.Equal(t, wizard.StateAwaitingReason, h.turn(t, wizard.Message{Text: "5"}).State)
	assert.Empty(t, h.gateway.calls)

	final := h.turn(t, wizard.Message{Callback: "reason_shipment"})
	assert.Equal(t, wizard.StateExecuted, final.State)
	assert.Contains(t, final.Text, "Stock anterior: 10")
	assert.Contains(t, final.Text, "Stock nuevo: 15")

	require.Len(t, h.gateway.calls, 1)
	call := h.gateway.calls[0]
	assert.Equal(t, p.ID, call.ProductID)
	assert.Equal(t, entity.MovementTypeIN, call.Type)
	assert.Equal(t, 5, call.Quantity)
	require.NotNil(t, call.Reason)
	assert.Equal(t, "Shipment", *call.Reason)

	s, err := h.sessions.Get(context.Background(), "chat-1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestHandleTurn_CancelarNoLlamaAlGateway(t *testing.T) {
	h := newHarness(t, nil)
	h.product(t, "W-1", "Widget", 10, nil)

	h.turn(t, wizard.Message{Text: "W-1"})
	h.turn(t, wizard.Message{Callback: "adjust_type_remove"})
	r := h.turn(t, wizard.Message{Text: "/cancel"})
	assert.Equal(t, wizard.StateCancelled, r.State)
	assert.Empty(t, h.gateway.calls)

	s, err := h.sessions.Get(context.Background(), "chat-1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestHandleTurn_BusquedaAproximadaYSKUExacto(t *testing.T) {
	h := newHarness(t, nil)
	h.product(t, "W-1", "Widget rojo", 1, nil)
	h.product(t, "W-2", "Widget azul", 1, nil)

	r := h.turn(t, wizard.Message{Text: "widget"})
	assert.Equal(t, wizard.StateAwaitingProduct, r.State)
	assert.Contains(t, r.Text, "W-1")
	assert.Contains(t, r.Text, "W-2")

	r = h.turn(t, wizard.Message{Text: "W-2"})
	assert.Equal(t, wizard.StateAwaitingAction, r.State)
	assert.Contains(t, r.Text, "Widget azul")
}

func TestHandleTurn_BusquedaLimitadaACinco(t *testing.T) {
	h := newHarness(t, nil)
	for _, sku := range []string{"T-1", "T-2", "T-3", "T-4", "T-5", "T-6", "T-7"} {
		h.product(t, sku, "Tornillo "+sku, 1, nil)
	}
	r := h.turn(t, wizard.Message{Text: "tornillo"})
	assert.Equal(t, 5, countBullets(r.Text))
}

func TestHandleTurn_ImagenConCodigoDeBarras(t *testing.T) {
	code := "7501234567890"
	h := newHarness(t, fakeDecoder{code: code})
	h.product(t, "W-1", "Widget", 3, &code)

	r := h.turn(t, wizard.Message{Image: []byte{0x89, 'P', 'N', 'G'}})
	assert.Equal(t, wizard.StateAwaitingAction, r.State)
	assert.Contains(t, r.Text, "Widget")
}

func TestHandleTurn_ImagenIlegible(t *testing.T) {
	h := newHarness(t, fakeDecoder{err: errors.New("ilegible")})
	r := h.turn(t, wizard.Message{Image: []byte{1, 2, 3}})
	assert.Equal(t, wizard.StateAwaitingProduct, r.State)
	assert.Contains(t, r.Text, "No se pudo leer")
}

func TestHandleTurn_ProductoInactivoNoSeOfrece(t *testing.T) {
	h := newHarness(t, nil)
	p := h.product(t, "W-1", "Widget", 3, nil)
	require.NoError(t, h.store.Products().UpdateStatus(context.Background(), p.ID, false))

	r := h.turn(t, wizard.Message{Text: "W-1"})
	assert.Equal(t, wizard.StateAwaitingProduct, r.State)
}

func TestHandleTurn_StockInsuficiente(t *testing.T) {
	h := newHarness(t, nil)
	p := h.product(t, "W-1", "Widget", 2, nil)

	h.turn(t, wizard.Message{Text: "W-1"})
	h.turn(t, wizard.Message{Callback: "adjust_type_remove"})
	h.turn(t, wizard.Message{Text: "5"})
	r := h.turn(t, wizard.Message{Callback: wizard.CallbackReasonSkip})

	assert.Contains(t, r.Text, "Stock insuficiente")
	require.Len(t, h.gateway.calls, 1)
	got, err := h.store.Products().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
}

func TestHandleTurn_SesionExpirada(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	store := memory.NewStore()
	actors := inventory.NewActorResolver(store.Users(), "bot@stockmanager.com", "Bot", logger.Nop())
	gw := inventory.NewMovementGateway(store, store.Products(), store.Movements(), actors, logger.Nop(), nil)
	sessions := memory.NewSessionStore(clock)
	svc := wizard.NewService(sessions, store.Products(), nil, gw, time.Minute, logger.Nop(), nil)
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p-1", SKU: "W-1", Name: "Widget", IsActive: true}))

	r, err := svc.HandleTurn(ctx, "chat", wizard.Message{Text: "W-1"})
	require.NoError(t, err)
	assert.Equal(t, wizard.StateAwaitingAction, r.State)

	now = now.Add(2 * time.Minute)
	// La sesión expiró: "add" se interpreta como búsqueda de producto
	r, err = svc.HandleTurn(ctx, "chat", wizard.Message{Text: "add"})
	require.NoError(t, err)
	assert.Equal(t, wizard.StateAwaitingProduct, r.State)
}

func TestHandleTurn_ConversacionVacia(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.HandleTurn(context.Background(), " ", wizard.Message{Text: "hola"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// lockstepSessions hace que los turnos concurrentes terminen de leer la sesión
// antes de que cualquiera de ellos continúe.
type lockstepSessions struct {
	*memory.SessionStore
	armed atomic.Bool
	gate  sync.WaitGroup
}

func (s *lockstepSessions) Get(ctx context.Context, conversationID string) (*wizard.Session, error) {
	session, err := s.SessionStore.Get(ctx, conversationID)
	if s.armed.Load() {
		s.gate.Done()
		s.gate.Wait()
	}
	return session, err
}

func TestHandleTurn_TurnoFinalConcurrenteEjecutaUnaVez(t *testing.T) {
	store := memory.NewStore()
	actors := inventory.NewActorResolver(store.Users(), "bot@stockmanager.com", "Bot", logger.Nop())
	gw := &countingGateway{inner: inventory.NewMovementGateway(store, store.Products(), store.Movements(), actors, logger.Nop(), nil)}
	sessions := &lockstepSessions{SessionStore: memory.NewSessionStore(nil)}
	svc := wizard.NewService(sessions, store.Products(), nil, gw, 10*time.Minute, logger.Nop(), nil)
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p-1", SKU: "W-1", Name: "Widget", Quantity: 10, IsActive: true}))

	for _, msg := range []wizard.Message{{Text: "W-1"}, {Callback: "adjust_type_add"}, {Text: "5"}} {
		_, err := svc.HandleTurn(ctx, "chat", msg)
		require.NoError(t, err)
	}

	sessions.gate.Add(2)
	sessions.armed.Store(true)
	replies := make([]wizard.Reply, 2)
	var wg sync.WaitGroup
	for i := range replies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.HandleTurn(ctx, "chat", wizard.Message{Callback: "reason_audit"})
			assert.NoError(t, err)
			replies[i] = r
		}(i)
	}
	wg.Wait()

	require.Len(t, gw.calls, 1)
	got, err := store.Products().GetByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Quantity)

	texts := replies[0].Text + replies[1].Text
	assert.Contains(t, texts, "Stock nuevo: 15")
	assert.Contains(t, texts, "ya fue procesado")
}

func countBullets(s string) int {
	n := 0
	for _, r := range s {
		if r == '•' {
			n++
		}
	}
	return n
}

package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmanager-api/internal/application/auth"
	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/application/orders"
	"github.com/jhoicas/stockmanager-api/internal/application/usecase"
	"github.com/jhoicas/stockmanager-api/internal/application/wizard"
	"github.com/jhoicas/stockmanager-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stockmanager-api/internal/interfaces/http"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
	"github.com/jhoicas/stockmanager-api/pkg/metrics"
)

type testAPI struct {
	app *fiber.App
	t   *testing.T
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.NewLedgerMetrics(reg)

	actors := inventory.NewActorResolver(store.Users(), "bot@stockmanager.com", "Bot", log)
	gateway := inventory.NewMovementGateway(store, store.Products(), store.Movements(), actors, log, m)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		UserUC:    usecase.NewUserUseCase(store.Users()),
		ProductUC: usecase.NewProductUseCase(store, store.Products(), store.Categories(), store.Suppliers(), gateway, actors),
		CatalogUC: usecase.NewCatalogUseCase(store.Categories(), store.Suppliers()),
		Gateway:   gateway,
		Bulk:      inventory.NewBulkCoordinator(store, store.Categories(), store.Suppliers(), actors, log, m),
		OrdersUC:  orders.NewUseCase(store, store.Orders(), store.Products(), store.Suppliers(), gateway, actors, log, m),
		Wizard:    wizard.NewService(memory.NewSessionStore(nil), store.Products(), nil, gateway, time.Hour, log, m),
		Gatherer:  reg,
		JWTSecret: testJWTSecret,
	})
	return &testAPI{app: app, t: t}
}

// do envía la petición y decodifica el cuerpo JSON en out (si no es nil).
func (a *testAPI) do(method, path string, body any, authHeader string, out any) int {
	a.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *testAPI) product(sku string, qty int) string {
	a.t.Helper()
	var cat struct{ ID string }
	require.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/api/categories", fiber.Map{"name": "cat-" + sku}, "", &cat))
	var p struct{ ID string }
	status := a.do(http.MethodPost, "/api/products", fiber.Map{
		"sku": sku, "name": "Producto " + sku, "category_id": cat.ID,
		"initial_quantity": qty, "price": "10.00", "cost_price": "6.00",
	}, "", &p)
	require.Equal(a.t, http.StatusCreated, status)
	return p.ID
}

type productBody struct {
	Quantity int `json:"quantity"`
}

func (a *testAPI) quantity(id string) int {
	a.t.Helper()
	var p productBody
	require.Equal(a.t, http.StatusOK, a.do(http.MethodGet, "/api/products/"+id, nil, "", &p))
	return p.Quantity
}

func TestAPI_CompraCompletaYBorradoRechazado(t *testing.T) {
	api := newTestAPI(t)
	a := api.product("A", 0)
	b := api.product("B", 5)

	var order struct {
		ID          string `json:"id"`
		OrderNumber string `json:"order_number"`
		Status      string `json:"status"`
	}
	status := api.do(http.MethodPost, "/api/orders", fiber.Map{
		"type": "PURCHASE",
		"items": []fiber.Map{
			{"product_id": a, "quantity": 20, "unit_price": "2.50"},
			{"product_id": b, "quantity": 10, "unit_price": "1.00"},
		},
	}, "", &order)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "PENDING", order.Status)

	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/orders/"+order.ID+"/status", fiber.Map{"status": "COMPLETED"}, "", &order))
	assert.Equal(t, "COMPLETED", order.Status)
	assert.Equal(t, 20, api.quantity(a))
	assert.Equal(t, 15, api.quantity(b))

	// Completar de nuevo no duplica movimientos
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/orders/"+order.ID+"/status", fiber.Map{"status": "COMPLETED"}, "", nil))
	assert.Equal(t, 20, api.quantity(a))

	var errBody struct{ Code string }
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodDelete, "/api/orders/"+order.ID, nil, "", &errBody))
	assert.Equal(t, "ORDER_COMPLETED", errBody.Code)

	var movs struct {
		Movements []struct {
			Type      string  `json:"type"`
			Reference *string `json:"reference"`
		} `json:"movements"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/stock-movements?product_id="+a, nil, "", &movs))
	require.Len(t, movs.Movements, 1)
	assert.Equal(t, "IN", movs.Movements[0].Type)
	assert.Equal(t, order.OrderNumber, *movs.Movements[0].Reference)

	var verify struct{ Consistent bool }
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products/"+b+"/ledger/verify", nil, "", &verify))
	assert.True(t, verify.Consistent)
}

func TestAPI_MovimientosErrores(t *testing.T) {
	api := newTestAPI(t)
	id := api.product("A", 3)

	var errBody struct{ Code string }
	status := api.do(http.MethodPost, "/api/stock-movements", fiber.Map{"product_id": id, "type": "OUT", "quantity": 5}, "", &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, 3, api.quantity(id))

	status = api.do(http.MethodPost, "/api/stock-movements", fiber.Map{"product_id": "nada", "type": "IN", "quantity": 5}, "", &errBody)
	assert.Equal(t, http.StatusNotFound, status)

	status = api.do(http.MethodPost, "/api/stock-movements", fiber.Map{"product_id": id, "type": "TRANSFER", "quantity": 5}, "", &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errBody.Code)

	var out struct {
		Movement struct {
			Type     string `json:"type"`
			Quantity int    `json:"quantity"`
		} `json:"movement"`
		Product productBody `json:"product"`
	}
	status = api.do(http.MethodPost, "/api/stock-movements", fiber.Map{"product_id": id, "type": "ADJUSTMENT", "quantity": 10}, "", &out)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 7, out.Movement.Quantity)
	assert.Equal(t, 10, out.Product.Quantity)
}

func TestAPI_TransicionInvalida409(t *testing.T) {
	api := newTestAPI(t)
	id := api.product("A", 0)

	var order struct{ ID string }
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/orders", fiber.Map{
		"type": "SALE", "items": []fiber.Map{{"product_id": id, "quantity": 1, "unit_price": "1"}},
	}, "", &order))

	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/orders/"+order.ID+"/status", fiber.Map{"status": "CANCELLED"}, "", nil))
	assert.Equal(t, http.StatusConflict, api.do(http.MethodPut, "/api/orders/"+order.ID+"/status", fiber.Map{"status": "APPROVED"}, "", nil))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/orders/no-existe", nil, "", nil))
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/api/orders/"+order.ID, nil, "", nil))
}

func TestAPI_BulkStockRecortaEnCero(t *testing.T) {
	api := newTestAPI(t)
	a := api.product("A", 3)
	b := api.product("B", 10)

	var out struct {
		Count   int    `json:"count"`
		Failed  int    `json:"failed"`
		Message string `json:"message"`
		Items   []struct {
			ProductID string `json:"product_id"`
			Success   bool   `json:"success"`
			New       *int   `json:"new_quantity"`
		} `json:"items"`
	}
	status := api.do(http.MethodPut, "/api/products/bulk/stock", fiber.Map{
		"product_ids": []string{a, b, "nada"}, "adjustment_type": "subtract", "value": 5,
	}, "", &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, "Adjusted stock for 2 products", out.Message)
	assert.Equal(t, 0, api.quantity(a))
	assert.Equal(t, 5, api.quantity(b))

	status = api.do(http.MethodPut, "/api/products/bulk/stock", fiber.Map{
		"product_ids": []string{a}, "adjustment_type": "multiply", "value": 5,
	}, "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_BulkDeleteOcultaProductos(t *testing.T) {
	api := newTestAPI(t)
	a := api.product("A", 0)

	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/api/products/bulk", fiber.Map{"product_ids": []string{a}}, "", nil))
	var list struct {
		Items []productBody `json:"items"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products", nil, "", &list))
	assert.Empty(t, list.Items)
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products?include_inactive=true", nil, "", &list))
	assert.Len(t, list.Items, 1)
}

func TestAPI_LoginFirmaMovimientos(t *testing.T) {
	api := newTestAPI(t)
	id := api.product("A", 0)

	var user struct{ ID string }
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/auth/register", fiber.Map{"email": "ana@example.com", "password": "12345678"}, "", &user))
	var login struct{ Token string }
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/auth/login", fiber.Map{"email": "ana@example.com", "password": "12345678"}, "", &login))

	var me struct{ Email string }
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/auth/me", nil, "Bearer "+login.Token, &me))
	assert.Equal(t, "ana@example.com", me.Email)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/auth/me", nil, "", nil))

	var out struct {
		Movement struct {
			UserID string `json:"user_id"`
		} `json:"movement"`
	}
	status := api.do(http.MethodPost, "/api/stock-movements", fiber.Map{"product_id": id, "type": "IN", "quantity": 1}, "Bearer "+login.Token, &out)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, user.ID, out.Movement.UserID)
}

func TestAPI_TokenDeUsuarioInexistente401(t *testing.T) {
	api := newTestAPI(t)
	id := api.product("A", 0)
	status := api.do(http.MethodPost, "/api/stock-movements", fiber.Map{"product_id": id, "type": "IN", "quantity": 1}, tokenFor(t, testUserID, "staff"), nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 0, api.quantity(id))
}

func TestAPI_AsistentePorHTTP(t *testing.T) {
	api := newTestAPI(t)
	id := api.product("W-1", 4)

	send := func(body fiber.Map) (int, map[string]any) {
		var out map[string]any
		return api.do(http.MethodPost, "/api/bot/conversations/chat-9/messages", body, "", &out), out
	}
	status, out := send(fiber.Map{"text": "W-1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "AWAITING_ACTION", out["state"])

	send(fiber.Map{"callback": "adjust_type_set"})
	send(fiber.Map{"text": "9"})
	_, out = send(fiber.Map{"callback": "reason_audit"})
	assert.Equal(t, "EXECUTED", out["state"])
	assert.Equal(t, 9, api.quantity(id))

	status, _ = send(fiber.Map{"image_base64": "%%%no-base64"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_Metricas(t *testing.T) {
	api := newTestAPI(t)
	id := api.product("A", 0)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/stock-movements", fiber.Map{"product_id": id, "type": "IN", "quantity": 2}, "", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `stock_movements_total{type="IN"} 1`)
}

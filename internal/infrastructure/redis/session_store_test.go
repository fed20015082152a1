package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmanager-api/internal/application/wizard"
	"github.com/jhoicas/stockmanager-api/pkg/config"
)

type mockRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockRedis() *mockRedis {
	return &mockRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockRedis) Get(ctx context.Context, key string) *goredis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (m *mockRedis) GetDel(ctx context.Context, key string) *goredis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	delete(m.data, key)
	return goredis.NewStringResult(v, nil)
}

func (m *mockRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttls[key] = ttl
	return goredis.NewStatusResult("OK", nil)
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			n++
		}
		delete(m.data, k)
	}
	return goredis.NewIntResult(n, nil)
}

func TestSessionStore_GuardarLeerBorrar(t *testing.T) {
	ctx := context.Background()
	mock := newMockRedis()
	store := NewSessionStore(mock, "test")

	got, err := store.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	s := wizard.NewSession("chat-1")
	s.State = wizard.StateAwaitingQuantity
	s.ProductID = "p-1"
	s.Action = wizard.ActionAdd
	require.NoError(t, store.Save(ctx, s, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, mock.ttls["test:wizard:session:chat-1"])

	got, err = store.Get(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wizard.StateAwaitingQuantity, got.State)
	assert.Equal(t, "p-1", got.ProductID)
	assert.Equal(t, wizard.ActionAdd, got.Action)

	require.NoError(t, store.Delete(ctx, "chat-1"))
	got, err = store.Get(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_TakeLeeYBorra(t *testing.T) {
	ctx := context.Background()
	mock := newMockRedis()
	store := NewSessionStore(mock, "test")

	s := wizard.NewSession("chat-1")
	s.State = wizard.StateAwaitingReason
	require.NoError(t, store.Save(ctx, s, time.Minute))

	got, err := store.Take(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wizard.StateAwaitingReason, got.State)
	assert.NotContains(t, mock.data, "test:wizard:session:chat-1")

	got, err = store.Take(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_JSONCorruptoEsSinSesion(t *testing.T) {
	mock := newMockRedis()
	mock.data["stock:wizard:session:x"] = "{no-json"
	got, err := NewSessionStore(mock, "").Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOptionsFromConfig_RequiereDireccion(t *testing.T) {
	_, err := optionsFromConfig(configRedis("", ""))
	assert.Error(t, err)

	opts, err := optionsFromConfig(configRedis("redis://:secret@cache:6380/2", ""))
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}

func configRedis(url, addr string) config.RedisConfig {
	return config.RedisConfig{URL: url, Address: addr}
}

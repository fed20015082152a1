package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stockmanager-api/internal/application/wizard"
)

var _ wizard.SessionStore = (*SessionStore)(nil)

type cmdable interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	GetDel(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// SessionStore guarda cada sesión del asistente como JSON con TTL nativo de Redis.
type SessionStore struct {
	client cmdable
	prefix string
}

// NewSessionStore construye el store. prefix vacío usa "stock".
func NewSessionStore(client cmdable, prefix string) *SessionStore {
	if prefix == "" {
		prefix = "stock"
	}
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) key(conversationID string) string {
	return fmt.Sprintf("%s:wizard:session:%s", s.prefix, conversationID)
}

// Get devuelve la sesión o nil si no existe o expiró.
func (s *SessionStore) Get(ctx context.Context, conversationID string) (*wizard.Session, error) {
	return s.decode(s.client.Get(ctx, s.key(conversationID)), "get session")
}

// Take lee y borra la sesión con GETDEL (atómico en Redis >= 6.2).
func (s *SessionStore) Take(ctx context.Context, conversationID string) (*wizard.Session, error) {
	return s.decode(s.client.GetDel(ctx, s.key(conversationID)), "take session")
}

func (s *SessionStore) decode(cmd *goredis.StringCmd, op string) (*wizard.Session, error) {
	raw, err := cmd.Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var session wizard.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// Una sesión corrupta equivale a no tener sesión.
		return nil, nil
	}
	return &session, nil
}

// Save serializa la sesión y renueva el TTL.
func (s *SessionStore) Save(ctx context.Context, session wizard.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ConversationID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete descarta la sesión.
func (s *SessionStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, s.key(conversationID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

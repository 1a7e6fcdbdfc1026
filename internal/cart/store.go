package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/Alioune4002/boutique-caisse/pkg/errors"
	redisclient "github.com/Alioune4002/boutique-caisse/pkg/redis"
)

// Store persists session-scoped cart state. Get returns a cleaned state and
// writes the cleaned form back when the stored one was malformed, so a later
// read never sees garbage twice.
type Store interface {
	Get(ctx context.Context, sessionID string) (State, error)
	Set(ctx context.Context, sessionID string, state State) error
	Clear(ctx context.Context, sessionID string) error
}

// RedisStore keeps cart state as a JSON value with a sliding TTL.
type RedisStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisStore builds a Store backed by the shared redis client.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (State, error) {
	key := s.client.SessionCartKey(sessionID)
	raw, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return State{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading cart state")
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// Corrupt value: reset rather than fail every request.
		if err := s.Set(ctx, sessionID, State{}); err != nil {
			return nil, err
		}
		return State{}, nil
	}

	cleaned := state.Normalize()
	if len(cleaned) != len(state) {
		if err := s.Set(ctx, sessionID, cleaned); err != nil {
			return nil, err
		}
	}
	return cleaned, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID string, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart state")
	}
	key := s.client.SessionCartKey(sessionID)
	if err := s.client.Set(ctx, key, payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing cart state")
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	key := s.client.SessionCartKey(sessionID)
	if err := s.client.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart state")
	}
	return nil
}

// MemoryStore is an in-process Store for tests and single-terminal setups.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string]State{}}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[sessionID]
	if !ok {
		return State{}, nil
	}
	cleaned := state.Normalize()
	s.states[sessionID] = cleaned
	return cleaned.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = state.Clone()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/farmchainx/dashboard/internal/domain/user"
)

const memoryPrefix = "session"

// MemoryStore keeps sessions in process memory. It is the dev fallback when
// no Redis is configured; sessions do not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Login(_ context.Context, sid string, u user.User, token string) error {
	if sid == "" || token == "" || !u.Valid() {
		return errors.New("session: login requires a session id, a token and a valid user")
	}

	raw, err := encodeUser(u)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data[tokenKey(memoryPrefix, sid)] = token
	s.data[userKey(memoryPrefix, sid)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Logout(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.data, tokenKey(memoryPrefix, sid))
	delete(s.data, userKey(memoryPrefix, sid))
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Current(ctx context.Context, sid string) (Session, error) {
	s.mu.RLock()
	token := s.data[tokenKey(memoryPrefix, sid)]
	rawUser := s.data[userKey(memoryPrefix, sid)]
	s.mu.RUnlock()

	sess, clear, err := resolve(sid, token, rawUser)
	if clear {
		_ = s.Logout(ctx, sid)
	}
	return sess, err
}

// Ping always succeeds; the store lives in process memory.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// put writes a raw entry, bypassing validation.
func (s *MemoryStore) put(sid, kind, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case "token":
		s.data[tokenKey(memoryPrefix, sid)] = value
	case "user":
		s.data[userKey(memoryPrefix, sid)] = value
	}
}

package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store issues, resolves and destroys sessions. Resolve returns ok=false
// for missing, malformed, tampered or expired tokens; Destroy is idempotent.
type Store interface {
	Create(ctx context.Context, userID int64) (token string, err error)
	Resolve(ctx context.Context, token string) (userID int64, ok bool, err error)
	Destroy(ctx context.Context, token string) error
}

// memoryStore keeps sessions in process memory. It backs tests and
// single-node development runs without Redis.
type memoryStore struct {
	codec *TokenCodec

	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store signing tokens with the
// given secret.
func NewMemoryStore(secret string) Store {
	return &memoryStore{
		codec:    NewTokenCodec(secret),
		sessions: make(map[string]memorySession),
	}
}

func (s *memoryStore) Create(ctx context.Context, userID int64) (string, error) {
	sessionID := uuid.New().String()
	token, err := s.codec.Issue(sessionID, userID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[sessionID] = memorySession{
		userID:    userID,
		expiresAt: time.Now().Add(Lifetime),
	}
	s.mu.Unlock()

	return token, nil
}

func (s *memoryStore) Resolve(ctx context.Context, token string) (int64, bool, error) {
	sessionID, err := s.codec.Decode(token)
	if err != nil {
		return 0, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, found := s.sessions[sessionID]
	if !found {
		return 0, false, nil
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, sessionID)
		return 0, false, nil
	}
	return sess.userID, true, nil
}

func (s *memoryStore) Destroy(ctx context.Context, token string) error {
	sessionID, err := s.codec.Decode(token)
	if err != nil {
		// Nothing to destroy for a token we would never resolve.
		return nil
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

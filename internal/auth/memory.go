package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryStore backs the blacklist and sessions when no redis is configured.
// Entries live in process memory and are dropped lazily on expiry.
type memoryStore struct {
	mu       sync.Mutex
	revoked  map[string]time.Time
	sessions map[string]UserSession
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		revoked:  map[string]time.Time{},
		sessions: map[string]UserSession{},
	}
}

func NewMemoryBlacklist() TokenBlacklist {
	return newMemoryStore()
}

func NewMemorySessionStore() SessionStore {
	return newMemoryStore()
}

func (m *memoryStore) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[token] = time.Now().Add(ttl)
	return nil
}

func (m *memoryStore) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(m.revoked, token)
		return false, nil
	}
	return true, nil
}

func (m *memoryStore) Create(_ context.Context, userID primitive.ObjectID, email string) (string, error) {
	key := GenerateSecureToken(20)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = UserSession{UserId: userID, Email: email, ExpiresAt: time.Now().Add(SessionTTL)}
	return key, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[key]
	if !ok || session.Expired() {
		delete(m.sessions, key)
		return UserSession{}, redis.Nil
	}
	return session, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

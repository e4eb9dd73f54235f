// Package memory holds mutex-guarded in-process implementations of the
// token stores, used in tests and local development without Postgres. Both
// stores serve reads and writes from the same mutex, so a revoke or consume
// is visible to every read that follows it.
package memory

import (
	"context"
	"sync"
	"time"
)

type refreshRecord struct {
	userID    string
	expiresAt time.Time
	revoked   bool
}

type RefreshTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*refreshRecord
}

func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{tokens: make(map[string]*refreshRecord)}
}

func (s *RefreshTokenStore) Save(_ context.Context, jti, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[jti] = &refreshRecord{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *RefreshTokenStore) IsActive(_ context.Context, jti, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[jti]
	if !ok || rec.revoked || rec.userID != userID {
		return false, nil
	}
	return true, nil
}

func (s *RefreshTokenStore) Revoke(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.tokens[jti]; ok {
		rec.revoked = true
	}
	return nil
}

func (s *RefreshTokenStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for jti, rec := range s.tokens {
		if rec.expiresAt.Before(cutoff) {
			delete(s.tokens, jti)
			removed++
		}
	}
	return removed, nil
}

// VerificationTokenStore tracks consumed email-verification jtis.
type VerificationTokenStore struct {
	mu       sync.Mutex
	consumed map[string]time.Time // jti -> token expiry
}

func NewVerificationTokenStore() *VerificationTokenStore {
	return &VerificationTokenStore{consumed: make(map[string]time.Time)}
}

func (s *VerificationTokenStore) Consume(_ context.Context, jti string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, used := s.consumed[jti]; used {
		return false, nil
	}
	s.consumed[jti] = expiresAt
	return true, nil
}

func (s *VerificationTokenStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for jti, exp := range s.consumed {
		if exp.Before(cutoff) {
			delete(s.consumed, jti)
			removed++
		}
	}
	return removed, nil
}

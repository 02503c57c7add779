package auth

import (
	"sync"
	"time"
)

// userMark records when all of a user's sessions were revoked. Tokens
// issued at or before revokedAt are rejected; the mark is dropped once
// the last such token would have expired anyway.
type userMark struct {
	revokedAt time.Time
	expiresAt time.Time
}

// TokenRevocationStore manages revoked session tokens in memory. Signout
// revokes the token's jti; disabling an account or changing its role
// revokes every token the user holds via a per-user cutoff. Entries are
// kept only until the tokens they cover would have expired naturally.
// Thread-safe for concurrent access.
type TokenRevocationStore struct {
	mu        sync.RWMutex
	entries   map[string]time.Time // jti -> token expiry
	userMarks map[string]userMark  // userID -> session cutoff
	done      chan struct{}
}

// NewTokenRevocationStore creates a new store and starts a background
// goroutine that cleans up expired entries every 5 minutes.
func NewTokenRevocationStore() *TokenRevocationStore {
	s := &TokenRevocationStore{
		entries:   make(map[string]time.Time),
		userMarks: make(map[string]userMark),
		done:      make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Revoke adds a token's jti to the revocation list. expiresAt is the
// token's natural expiry; past that point the entry is dropped since an
// expired token is rejected anyway.
func (s *TokenRevocationStore) Revoke(jti string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = expiresAt
}

// IsRevoked checks if a token jti has been revoked.
func (s *TokenRevocationStore) IsRevoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[jti]
	return ok
}

// RevokeAllForUser invalidates every token the user currently holds by
// recording a cutoff: tokens issued at or before now are rejected from
// here on. until is when the longest-lived of those tokens expires, so
// the mark can be dropped afterwards.
func (s *TokenRevocationStore) RevokeAllForUser(userID string, until time.Time) {
	if userID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userMarks[userID] = userMark{revokedAt: time.Now(), expiresAt: until}
}

// IsRevokedForUser reports whether a token issued at issuedAt for the
// given user falls under a bulk revocation.
func (s *TokenRevocationStore) IsRevokedForUser(userID string, issuedAt time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.userMarks[userID]
	return ok && !issuedAt.After(m.revokedAt)
}

// Count returns the number of currently revoked tokens.
func (s *TokenRevocationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the background cleanup goroutine. Safe to call more than
// once; only the first call has effect.
func (s *TokenRevocationStore) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *TokenRevocationStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *TokenRevocationStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for jti, expiresAt := range s.entries {
		if now.After(expiresAt) {
			delete(s.entries, jti)
		}
	}
	for userID, m := range s.userMarks {
		if now.After(m.expiresAt) {
			delete(s.userMarks, userID)
		}
	}
}

package session

import (
	"fmt"
	"sync"
)

// Store is the process-wide session state. Every mutation writes through to
// Storage before the in-memory copy changes, so a reload right after Clear
// never sees the old token.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	user    *Profile
}

// NewStore creates a Store and rehydrates it from storage.
func NewStore(storage Storage) (*Store, error) {
	token, ok, err := storage.Load(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s := &Store{storage: storage}
	if ok && token != "" {
		s.token = token
		s.user = ProfileFromToken(token)
	}
	return s, nil
}

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken persists token and makes it current. The profile is re-derived
// from the token's claims.
func (s *Store) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Save(TokenKey, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.token = token
	s.user = ProfileFromToken(token)
	return nil
}

// SetUser replaces the in-memory profile. Profiles are not persisted.
func (s *Store) SetUser(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = p
}

// User returns the current profile, or nil.
func (s *Store) User() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	p := *s.user
	return &p
}

// Clear removes the token and profile from storage and memory.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.token = ""
	s.user = nil
	return nil
}

// IsAuthenticated reports whether a non-empty token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Snapshot returns a consistent copy of token and profile.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := Session{Token: s.token}
	if s.user != nil {
		p := *s.user
		sess.User = &p
	}
	return sess
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}

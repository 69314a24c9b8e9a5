// Package session keeps one view-state controller per client. Sessions live
// in memory only and the oldest idle ones are evicted once the store is full.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/viewstate"
)

// ErrNotFound is returned for unknown or evicted session IDs.
var ErrNotFound = errors.New("session not found")

// Store maps session IDs to controllers.
//
// Go note: lru.Cache is safe for concurrent use, so Store needs no mutex of
// its own. Each Controller guards its own state.
type Store struct {
	cache   *lru.Cache[string, *viewstate.Controller]
	adapter viewstate.Adapter
	logger  *zap.Logger
}

// NewStore creates a store holding at most maxSessions controllers.
func NewStore(adapter viewstate.Adapter, maxSessions int, logger *zap.Logger) (*Store, error) {
	if maxSessions <= 0 {
		return nil, fmt.Errorf("max sessions must be positive, got %d", maxSessions)
	}

	cache, err := lru.NewWithEvict(maxSessions, func(id string, _ *viewstate.Controller) {
		logger.Debug("session evicted", zap.String("session_id", id))
	})
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}

	return &Store{cache: cache, adapter: adapter, logger: logger}, nil
}

// Create starts a new idle session in the given mode.
func (s *Store) Create(mode viewstate.Mode) (string, *viewstate.Controller) {
	id := uuid.New().String()
	ctrl := viewstate.NewController(s.adapter, mode, s.logger.With(zap.String("session_id", id)))
	s.cache.Add(id, ctrl)
	return id, ctrl
}

// Get looks up a session and marks it recently used.
func (s *Store) Get(id string) (*viewstate.Controller, error) {
	ctrl, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return ctrl, nil
}

// Delete drops a session.
func (s *Store) Delete(id string) error {
	if !s.cache.Remove(id) {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}

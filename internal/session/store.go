// Package session owns live session state for the running process.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ieatsighpies/fyp-survey-website/internal/cache"
	"github.com/ieatsighpies/fyp-survey-website/internal/model"
)

// ErrNotFound is returned when no session exists for an ID
var ErrNotFound = errors.New("session not found")

// Store keeps sessions in memory and writes snapshots through to the cache.
// Each session is owned by a single participant, so the lock only guards the
// map itself.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*model.SessionState
	cache    cache.SessionCache
	logger   zerolog.Logger
}

// NewStore creates a session store. The cache may be nil (memory only).
func NewStore(c cache.SessionCache, logger zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*model.SessionState),
		cache:    c,
		logger:   logger,
	}
}

// Create starts a fresh session in the survey stage
func (s *Store) Create(ctx context.Context) *model.SessionState {
	state := model.NewSessionState(uuid.NewString())
	s.mu.Lock()
	s.sessions[state.ID] = state
	s.mu.Unlock()
	s.snapshot(ctx, state)
	return state
}

// Get returns the session for an ID, restoring from the cache when the
// process no longer holds it in memory.
func (s *Store) Get(ctx context.Context, id string) (*model.SessionState, error) {
	s.mu.RLock()
	state, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return state, nil
	}

	if s.cache != nil {
		restored, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn().Err(err).Str("session", id).Msg("session cache read failed")
		}
		if restored != nil {
			s.mu.Lock()
			s.sessions[id] = restored
			s.mu.Unlock()
			return restored, nil
		}
	}
	return nil, ErrNotFound
}

// Save records a mutation and refreshes the cache snapshot
func (s *Store) Save(ctx context.Context, state *model.SessionState) {
	state.Touch()
	s.mu.Lock()
	s.sessions[state.ID] = state
	s.mu.Unlock()
	s.snapshot(ctx, state)
}

func (s *Store) snapshot(ctx context.Context, state *model.SessionState) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, state); err != nil {
		s.logger.Warn().Err(err).Str("session", state.ID).Msg("session cache write failed")
	}
}

// Package session holds the active grid of each editing session. It is the
// only place grids are retained between requests; every read and write goes
// through a deep copy so callers never share cells with the store.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Cortexa-LLC/mcp/src/gridmd/grid"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Session is a snapshot of one session's state.
type Session struct {
	ID        string    `json:"id"`
	Source    string    `json:"source,omitempty"`
	Grid      grid.Grid `json:"grid"`
	Rows      int       `json:"rows"`
	Width     int       `json:"width"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type entry struct {
	source    string
	grid      grid.Grid
	createdAt time.Time
	updatedAt time.Time
}

func (e *entry) snapshot(id string) Session {
	g := e.grid.Clone()
	return Session{
		ID:        id,
		Source:    e.source,
		Grid:      g,
		Rows:      len(g),
		Width:     g.Width(),
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
}

// Store is a concurrency-safe, in-memory session store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Create starts a session holding a copy of g.
func (s *Store) Create(g grid.Grid, source string) Session {
	id := uuid.NewString()
	now := s.now()
	e := &entry{source: source, grid: g.Clone(), createdAt: now, updatedAt: now}

	s.mu.Lock()
	s.sessions[id] = e
	s.mu.Unlock()

	return e.snapshot(id)
}

// Get returns the session's current state.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return e.snapshot(id), nil
}

// Replace swaps the session's grid for a copy of g. A new load or paste
// replaces the previous grid in full.
func (s *Store) Replace(id string, g grid.Grid, source string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	e.grid = g.Clone()
	e.source = source
	e.updatedAt = s.now()
	return e.snapshot(id), nil
}

// Apply runs ops against the session's grid. Either every op succeeds and the
// result is stored, or the grid is left untouched and the error returned.
func (s *Store) Apply(id string, ops ...grid.Op) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	g, err := grid.Apply(e.grid, ops...)
	if err != nil {
		return Session{}, err
	}
	if len(ops) > 0 {
		e.grid = g
		e.updatedAt = s.now()
	}
	return e.snapshot(id), nil
}

// Reset discards the session's grid and source, keeping the session itself.
func (s *Store) Reset(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	e.grid = grid.Grid{}
	e.source = ""
	e.updatedAt = s.now()
	return e.snapshot(id), nil
}

// Delete removes the session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

package sessions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores sessions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Session
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Session)}
}

// Create stores a new session.
func (r *MemoryRepo) Create(ctx context.Context, s Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[s.ID]; exists {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	r.byID[s.ID] = s.Clone()
	return nil
}

// GetByID returns a copy of the session.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s.Clone(), nil
}

// Update runs fn against a copy under the write lock and stores it if fn succeeds.
func (r *MemoryRepo) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return current.Clone(), err
	}
	r.byID[id] = next
	return next.Clone(), nil
}

// Delete removes the session and returns what was stored.
func (r *MemoryRepo) Delete(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	delete(r.byID, id)
	return s, nil
}

// DeleteIf re-checks the stored session under the write lock before removing it.
func (r *MemoryRepo) DeleteIf(ctx context.Context, id string, keep func(Session) bool) (Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return Session{}, false, ErrNotFound
	}
	if keep(s.Clone()) {
		return s.Clone(), false, nil
	}
	delete(r.byID, id)
	return s, true, nil
}

// ListIdleSince returns sessions not touched since cutoff, oldest first.
func (r *MemoryRepo) ListIdleSince(ctx context.Context, cutoff time.Time) ([]Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Session, 0)
	for _, s := range r.byID {
		if idleSince(s, cutoff) {
			out = append(out, s.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

// idleSince reports whether s has been untouched since cutoff. Sessions with an
// analysis in flight are never idle.
func idleSince(s Session, cutoff time.Time) bool {
	return s.State != StateAnalyzing && s.UpdatedAt.Before(cutoff)
}

var _ Repo = (*MemoryRepo)(nil)

package sessions

import (
	"context"
	"time"
)

// Repo persists sessions. Update applies fn atomically: a non-nil error from
// fn leaves the stored session untouched. DeleteIf removes the session only
// when keep reports false for its current value; deleted is false otherwise.
type Repo interface {
	Create(ctx context.Context, s Session) error
	GetByID(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	Delete(ctx context.Context, id string) (Session, error)
	DeleteIf(ctx context.Context, id string, keep func(Session) bool) (removed Session, deleted bool, err error)
	ListIdleSince(ctx context.Context, cutoff time.Time) ([]Session, error)
}

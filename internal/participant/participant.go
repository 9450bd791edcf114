package participant

import (
	"context"
	"errors"
	"time"
)

// Participant is a registered chat identity. LastSeen is refreshed by
// heartbeats and drives expiry.
type Participant struct {
	Name     string
	LastSeen time.Time
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("name already taken")
	ErrNotFound     = errors.New("participant not found")
)

type Repository interface {
	// Create inserts the participant, failing with ErrConflict if the name
	// is already registered. Uniqueness check and insert are one atomic unit.
	Create(ctx context.Context, p Participant) error
	Get(ctx context.Context, name string) (Participant, error)
	List(ctx context.Context) ([]Participant, error)
	// UpdateLastSeen returns ErrNotFound if the name is not registered.
	UpdateLastSeen(ctx context.Context, name string, at time.Time) error
	// Remove reports whether a participant was actually removed, so racing
	// removers can agree on a single winner.
	Remove(ctx context.Context, name string) (bool, error)
}

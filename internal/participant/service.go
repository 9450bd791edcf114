package participant

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Join registers a new participant. The duplicate check and the insert are a
// single atomic step in the repository, so two concurrent joins for the same
// name yield exactly one success and one ErrConflict.
func (s *Service) Join(ctx context.Context, name string) (Participant, error) {
	if s.repo == nil {
		return Participant{}, errors.New("repository is required")
	}
	if strings.TrimSpace(name) == "" {
		return Participant{}, ErrInvalidInput
	}

	p := Participant{
		Name:     name,
		LastSeen: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Participant{}, err
	}
	return p, nil
}

// Heartbeat refreshes the liveness timestamp of a registered participant.
func (s *Service) Heartbeat(ctx context.Context, name string) error {
	if s.repo == nil {
		return errors.New("repository is required")
	}
	if strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	return s.repo.UpdateLastSeen(ctx, name, s.now().UTC())
}

func (s *Service) Get(ctx context.Context, name string) (Participant, error) {
	if s.repo == nil {
		return Participant{}, errors.New("repository is required")
	}
	if name == "" {
		return Participant{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, name)
}

// List returns a point-in-time snapshot of the registry.
func (s *Service) List(ctx context.Context) ([]Participant, error) {
	if s.repo == nil {
		return nil, errors.New("repository is required")
	}
	return s.repo.List(ctx)
}

// Online reports how many participants are currently registered.
func (s *Service) Online(ctx context.Context) (int, error) {
	ps, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(ps), nil
}

// Remove is idempotent. It reports whether a participant was actually
// removed; callers use that to suppress duplicate departure notices when a
// sweep races an explicit leave.
func (s *Service) Remove(ctx context.Context, name string) (bool, error) {
	if s.repo == nil {
		return false, errors.New("repository is required")
	}
	if name == "" {
		return false, ErrInvalidInput
	}
	return s.repo.Remove(ctx, name)
}

package message

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo  Repository
	idGen func() string
	now   func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		idGen: func() string { return uuid.NewString() },
		now:   time.Now,
	}
}

// Append assigns a fresh id and timestamp and stores the message. The
// repository serializes appends, so ids are unique and SentAt never
// decreases in insertion order.
func (s *Service) Append(ctx context.Context, from, to, text string, kind Kind) (Message, error) {
	if s.repo == nil {
		return Message{}, errors.New("repository is required")
	}
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" || strings.TrimSpace(text) == "" {
		return Message{}, ErrInvalidInput
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return Message{}, err
	}

	m := Message{
		ID:     s.idGen(),
		From:   from,
		To:     to,
		Text:   text,
		Kind:   kind,
		SentAt: s.now().UTC(),
	}
	return s.repo.Append(ctx, m)
}

func (s *Service) Find(ctx context.Context, id string) (Message, error) {
	if s.repo == nil {
		return Message{}, errors.New("repository is required")
	}
	if id == "" {
		return Message{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

// Update overwrites the mutable fields of a stored message. From, ID and the
// original SentAt survive every edit.
func (s *Service) Update(ctx context.Context, id string, patch Patch) error {
	if s.repo == nil {
		return errors.New("repository is required")
	}
	if id == "" || strings.TrimSpace(patch.To) == "" || strings.TrimSpace(patch.Text) == "" {
		return ErrInvalidInput
	}
	if _, err := ParseKind(string(patch.Kind)); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s.repo == nil {
		return errors.New("repository is required")
	}
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// AllOrdered returns the full log in insertion order. This is the read path
// the visibility filter consumes.
func (s *Service) AllOrdered(ctx context.Context) ([]Message, error) {
	if s.repo == nil {
		return nil, errors.New("repository is required")
	}
	return s.repo.List(ctx)
}

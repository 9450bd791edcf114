package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"batepapo/internal/message"
	"batepapo/internal/participant"
)

// Notice texts kept verbatim from the public API.
const (
	JoinText  = "entra na sala..."
	LeaveText = "sai da sala..."
)

var (
	// ErrUnauthenticated means the requester is not a live participant.
	ErrUnauthenticated = errors.New("requester is not in the room")
	// ErrForbidden means the requester is not the author of the message.
	ErrForbidden = errors.New("requester is not the author")
)

// Service ties the registry and the message log together behind the
// visibility and authorization gates. The HTTP layer talks only to this.
type Service struct {
	participants *participant.Service
	messages     *message.Service
	log          *slog.Logger
}

func NewService(log *slog.Logger, participants *participant.Service, messages *message.Service) *Service {
	return &Service{
		participants: participants,
		messages:     messages,
		log:          log,
	}
}

// Join registers the name and announces the arrival with a status notice.
func (s *Service) Join(ctx context.Context, name string) (participant.Participant, error) {
	p, err := s.participants.Join(ctx, name)
	if err != nil {
		return participant.Participant{}, err
	}
	if _, err := s.messages.Append(ctx, p.Name, message.BroadcastAddr, JoinText, message.KindStatus); err != nil {
		return participant.Participant{}, fmt.Errorf("append join notice: %w", err)
	}
	s.log.Info("participant joined", "name", p.Name)
	return p, nil
}

// Leave removes the participant explicitly. The departure notice is only
// appended when this call actually removed the entry, so a leave racing a
// sweep produces a single notice between them.
func (s *Service) Leave(ctx context.Context, name string) (bool, error) {
	removed, err := s.participants.Remove(ctx, name)
	if err != nil || !removed {
		return false, err
	}
	if _, err := s.messages.Append(ctx, name, message.BroadcastAddr, LeaveText, message.KindStatus); err != nil {
		return true, fmt.Errorf("append leave notice: %w", err)
	}
	s.log.Info("participant left", "name", name)
	return true, nil
}

// Heartbeat refreshes the sender's liveness timestamp.
func (s *Service) Heartbeat(ctx context.Context, name string) error {
	return s.participants.Heartbeat(ctx, name)
}

// Participants returns a snapshot of everyone currently in the room.
func (s *Service) Participants(ctx context.Context) ([]participant.Participant, error) {
	return s.participants.List(ctx)
}

// Post appends a message from a live participant. Senders that are not in
// the registry are rejected before the payload is even considered.
func (s *Service) Post(ctx context.Context, from, to, text string, kind message.Kind) (message.Message, error) {
	if err := s.requireParticipant(ctx, from); err != nil {
		return message.Message{}, err
	}
	if kind == message.KindStatus {
		// Status notices are system-generated only.
		return message.Message{}, message.ErrInvalidInput
	}
	return s.messages.Append(ctx, from, to, text, kind)
}

// Read returns the messages viewer may see, in insertion order. A non-nil
// limit keeps only that many of the most recent visible messages.
func (s *Service) Read(ctx context.Context, viewer string, limit *int) ([]message.Message, error) {
	msgs, err := s.messages.AllOrdered(ctx)
	if err != nil {
		return nil, err
	}
	if limit == nil {
		return message.Visible(msgs, viewer), nil
	}
	return message.VisibleTail(msgs, viewer, *limit)
}

// Edit updates a message on behalf of requester. Check order is observable:
// unknown requester wins over missing message wins over wrong author.
func (s *Service) Edit(ctx context.Context, requester, id string, patch message.Patch) error {
	if err := s.requireParticipant(ctx, requester); err != nil {
		return err
	}
	m, err := s.messages.Find(ctx, id)
	if err != nil {
		return err
	}
	if !message.CanMutate(m, requester) {
		return ErrForbidden
	}
	return s.messages.Update(ctx, id, patch)
}

// Delete removes a message on behalf of requester, with the same check
// order as Edit.
func (s *Service) Delete(ctx context.Context, requester, id string) error {
	if err := s.requireParticipant(ctx, requester); err != nil {
		return err
	}
	m, err := s.messages.Find(ctx, id)
	if err != nil {
		return err
	}
	if !message.CanMutate(m, requester) {
		return ErrForbidden
	}
	return s.messages.Delete(ctx, id)
}

// requireParticipant checks the live registry at mutation time. Authorship
// alone is not enough once the author has expired from the room.
func (s *Service) requireParticipant(ctx context.Context, name string) error {
	if name == "" {
		return ErrUnauthenticated
	}
	_, err := s.participants.Get(ctx, name)
	if err != nil {
		if errors.Is(err, participant.ErrNotFound) || errors.Is(err, participant.ErrInvalidInput) {
			return ErrUnauthenticated
		}
		return err
	}
	return nil
}

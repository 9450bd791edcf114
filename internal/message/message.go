package message

import (
	"context"
	"errors"
	"time"
)

// BroadcastAddr is the sentinel addressee meaning "everyone in the room".
const BroadcastAddr = "Todos"

// Kind is the closed set of message types. The wire values are the ones the
// public API has always used.
type Kind string

const (
	// KindBroadcast is an ordinary public message, visible to everyone.
	KindBroadcast Kind = "message"
	// KindPrivate is addressed to a single participant.
	KindPrivate Kind = "private_message"
	// KindStatus is a system-generated join/leave notice, always public.
	KindStatus Kind = "status"
)

// ParseKind rejects anything outside the closed set.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBroadcast, KindPrivate, KindStatus:
		return Kind(s), nil
	default:
		return "", ErrInvalidInput
	}
}

// Message is one entry of the append-only log. Seq is the recoverable
// insertion-order field; ID, From and SentAt are immutable once assigned.
type Message struct {
	ID     string
	From   string
	To     string
	Text   string
	Kind   Kind
	SentAt time.Time
	Seq    uint64
}

// Patch carries the mutable fields of a message for an edit.
type Patch struct {
	To   string
	Text string
	Kind Kind
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("message not found")
)

type Repository interface {
	// Append stores the message, assigning its insertion-order sequence and
	// finalizing SentAt so that timestamps never decrease in log order.
	Append(ctx context.Context, m Message) (Message, error)
	Get(ctx context.Context, id string) (Message, error)
	// Update overwrites the mutable fields only; ErrNotFound if absent.
	Update(ctx context.Context, id string, patch Patch) error
	Delete(ctx context.Context, id string) error
	// List returns the full log in insertion order.
	List(ctx context.Context) ([]Message, error)
}

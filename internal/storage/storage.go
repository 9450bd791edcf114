package storage

import (
	"context"

	"batepapo/internal/message"
	"batepapo/internal/participant"
)

// Store bundles the two repositories the chat core runs on. Implementations
// guarantee that each repository operation is a single atomic unit: no
// caller ever observes a torn intermediate state of another operation.
type Store interface {
	Close(ctx context.Context) error
	Migrate(ctx context.Context) error
	Participants() participant.Repository
	Messages() message.Repository
}

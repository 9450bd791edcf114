// Package presence evicts participants whose heartbeats have gone quiet.
package presence

import (
	"context"
	"log/slog"
	"time"

	"batepapo/internal/chat"
	"batepapo/internal/message"
	"batepapo/internal/participant"
)

const (
	// DefaultInactivityWindow is how long a participant may stay silent
	// before a sweep considers it gone.
	DefaultInactivityWindow = 10 * time.Second
	// DefaultSweepInterval is deliberately coarser than the window: expiry
	// is detected within one extra interval, not instantaneously.
	DefaultSweepInterval = 15 * time.Second
)

// Sweeper periodically scans the registry and removes stale participants,
// announcing each departure with a status notice. Every tick is a fresh,
// idempotent pass; failures are logged and retried by the next tick.
type Sweeper struct {
	participants *participant.Service
	messages     *message.Service
	log          *slog.Logger

	inactivityWindow time.Duration
	sweepInterval    time.Duration
	now              func() time.Time
}

func NewSweeper(log *slog.Logger, participants *participant.Service, messages *message.Service,
	inactivityWindow, sweepInterval time.Duration) *Sweeper {
	if inactivityWindow <= 0 {
		inactivityWindow = DefaultInactivityWindow
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Sweeper{
		participants:     participants,
		messages:         messages,
		log:              log,
		inactivityWindow: inactivityWindow,
		sweepInterval:    sweepInterval,
		now:              time.Now,
	}
}

// Run sweeps on a fixed cadence until the context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	s.log.Info("presence sweeper started",
		"inactivity_window", s.inactivityWindow,
		"sweep_interval", s.sweepInterval)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("presence sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single eviction pass. The departure notice is appended only
// when the remove actually took effect here, so a sweep racing another sweep
// or an explicit leave never duplicates the notice.
func (s *Sweeper) Sweep(ctx context.Context) {
	snapshot, err := s.participants.List(ctx)
	if err != nil {
		s.log.Error("sweep: list participants", "error", err)
		return
	}

	now := s.now().UTC()
	for _, p := range snapshot {
		if now.Sub(p.LastSeen) <= s.inactivityWindow {
			continue
		}
		removed, err := s.participants.Remove(ctx, p.Name)
		if err != nil {
			s.log.Error("sweep: remove participant", "name", p.Name, "error", err)
			continue
		}
		if !removed {
			// Lost the race to a concurrent sweep or leave. Not an error.
			continue
		}
		if _, err := s.messages.Append(ctx, p.Name, message.BroadcastAddr, chat.LeaveText, message.KindStatus); err != nil {
			s.log.Error("sweep: append departure notice", "name", p.Name, "error", err)
			continue
		}
		s.log.Info("participant expired", "name", p.Name, "last_seen", p.LastSeen)
	}
}

package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedCounter int

func (c fixedCounter) Online(context.Context) (int, error) {
	return int(c), nil
}

type failingCounter struct{}

func (failingCounter) Online(context.Context) (int, error) {
	return 0, errors.New("registry down")
}

func TestSnapshot(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(log, fixedCounter(3))

	snap := m.Snapshot(context.Background())
	assert.Equal(t, 3, snap.Online)
	assert.Greater(t, snap.Goroutines, 0)
	assert.GreaterOrEqual(t, snap.UptimeSecs, 0.0)
}

func TestSnapshot_CounterFailureDegrades(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(log, failingCounter{})

	snap := m.Snapshot(context.Background())
	assert.Equal(t, 0, snap.Online)
}

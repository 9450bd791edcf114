package message

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	ordered []Message
	lastSeq uint64
	lastAt  time.Time
}

func (r *fakeRepo) Append(_ context.Context, m Message) (Message, error) {
	r.lastSeq++
	m.Seq = r.lastSeq
	if m.SentAt.Before(r.lastAt) {
		m.SentAt = r.lastAt
	}
	r.lastAt = m.SentAt
	r.ordered = append(r.ordered, m)
	return m, nil
}

func (r *fakeRepo) Get(_ context.Context, id string) (Message, error) {
	for _, m := range r.ordered {
		if m.ID == id {
			return m, nil
		}
	}
	return Message{}, ErrNotFound
}

func (r *fakeRepo) Update(_ context.Context, id string, patch Patch) error {
	for i, m := range r.ordered {
		if m.ID == id {
			m.To = patch.To
			m.Text = patch.Text
			m.Kind = patch.Kind
			r.ordered[i] = m
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	for i, m := range r.ordered {
		if m.ID == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeRepo) List(_ context.Context) ([]Message, error) {
	out := make([]Message, len(r.ordered))
	copy(out, r.ordered)
	return out, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	n := 0
	svc.idGen = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestAppend_AssignsIDAndTime(t *testing.T) {
	svc, _ := newTestService()

	m, err := svc.Append(context.Background(), "Ana", BroadcastAddr, "oi", KindBroadcast)
	require.NoError(t, err)
	assert.Equal(t, "id-1", m.ID)
	assert.Equal(t, uint64(1), m.Seq)
	assert.Equal(t, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC), m.SentAt)
}

func TestAppend_RejectsMalformedInput(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name           string
		from, to, text string
		kind           Kind
	}{
		{"empty from", "", "Todos", "oi", KindBroadcast},
		{"empty to", "Ana", "", "oi", KindBroadcast},
		{"empty text", "Ana", "Todos", "", KindBroadcast},
		{"whitespace text", "Ana", "Todos", "   ", KindBroadcast},
		{"unknown kind", "Ana", "Todos", "oi", Kind("shout")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Append(context.Background(), tc.from, tc.to, tc.text, tc.kind)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAppend_TimeNeverDecreases(t *testing.T) {
	svc, repo := newTestService()

	times := []time.Time{
		time.Date(2026, 2, 1, 12, 0, 10, 0, time.UTC),
		time.Date(2026, 2, 1, 12, 0, 5, 0, time.UTC), // clock stepped back
		time.Date(2026, 2, 1, 12, 0, 20, 0, time.UTC),
	}
	i := 0
	svc.now = func() time.Time {
		t := times[i]
		i++
		return t
	}

	for range times {
		_, err := svc.Append(context.Background(), "Ana", BroadcastAddr, "oi", KindBroadcast)
		require.NoError(t, err)
	}

	for j := 1; j < len(repo.ordered); j++ {
		assert.False(t, repo.ordered[j].SentAt.Before(repo.ordered[j-1].SentAt),
			"timestamps must not decrease in insertion order")
	}
}

func TestUpdate_PreservesImmutableFields(t *testing.T) {
	svc, repo := newTestService()

	m, err := svc.Append(context.Background(), "Ana", BroadcastAddr, "oi", KindBroadcast)
	require.NoError(t, err)

	err = svc.Update(context.Background(), m.ID, Patch{To: "Bob", Text: "oi de novo", Kind: KindPrivate})
	require.NoError(t, err)

	got := repo.ordered[0]
	assert.Equal(t, "Ana", got.From)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.SentAt, got.SentAt)
	assert.Equal(t, "Bob", got.To)
	assert.Equal(t, "oi de novo", got.Text)
	assert.Equal(t, KindPrivate, got.Kind)
}

func TestUpdate_Validation(t *testing.T) {
	svc, _ := newTestService()

	m, err := svc.Append(context.Background(), "Ana", BroadcastAddr, "oi", KindBroadcast)
	require.NoError(t, err)

	err = svc.Update(context.Background(), m.ID, Patch{To: "", Text: "x", Kind: KindBroadcast})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.Update(context.Background(), m.ID, Patch{To: "Bob", Text: "x", Kind: Kind("nope")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.Update(context.Background(), "missing", Patch{To: "Bob", Text: "x", Kind: KindBroadcast})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService()

	m, err := svc.Append(context.Background(), "Ana", BroadcastAddr, "oi", KindBroadcast)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), m.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), m.ID), ErrNotFound)

	_, err = svc.Find(context.Background(), m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"message", "private_message", "status"} {
		k, err := ParseKind(valid)
		require.NoError(t, err)
		assert.Equal(t, Kind(valid), k)
	}
	for _, invalid := range []string{"", "Message", "broadcast", "dm"} {
		_, err := ParseKind(invalid)
		assert.ErrorIs(t, err, ErrInvalidInput, "kind %q", invalid)
	}
}

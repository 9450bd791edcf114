package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLog() []Message {
	return []Message{
		{ID: "1", From: "Ana", To: BroadcastAddr, Text: "entra na sala...", Kind: KindStatus},
		{ID: "2", From: "Bob", To: "Ana", Text: "oi", Kind: KindPrivate},
		{ID: "3", From: "Ana", To: "Bob", Text: "oi Bob", Kind: KindPrivate},
		{ID: "4", From: "Carol", To: "Bob", Text: "olá todos", Kind: KindBroadcast},
		{ID: "5", From: "Bob", To: BroadcastAddr, Text: "bom dia", Kind: KindBroadcast},
	}
}

func ids(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestVisible_Predicate(t *testing.T) {
	msgs := sampleLog()

	// Broadcasts and Todos-addressed messages are public even when the
	// viewer is neither sender nor addressee.
	assert.Equal(t, []string{"1", "4", "5"}, ids(Visible(msgs, "Carol")))

	// Private traffic is visible to both endpoints.
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(Visible(msgs, "Ana")))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(Visible(msgs, "Bob")))

	// An outsider still sees everything public.
	assert.Equal(t, []string{"1", "4", "5"}, ids(Visible(msgs, "Dave")))
}

func TestVisible_MatchesSinglePredicate(t *testing.T) {
	for _, m := range sampleLog() {
		for _, viewer := range []string{"Ana", "Bob", "Carol", "Dave"} {
			want := m.Kind == KindBroadcast || m.To == BroadcastAddr || m.To == viewer || m.From == viewer
			got := len(Visible([]Message{m}, viewer)) == 1
			assert.Equal(t, want, got, "message %s viewer %s", m.ID, viewer)
		}
	}
}

func TestVisible_Idempotent(t *testing.T) {
	msgs := sampleLog()
	once := Visible(msgs, "Ana")
	twice := Visible(once, "Ana")
	assert.Equal(t, once, twice)
}

func TestVisible_PreservesOrder(t *testing.T) {
	msgs := sampleLog()
	visible := Visible(msgs, "Carol")
	for i := 1; i < len(visible); i++ {
		assert.Less(t, visible[i-1].ID, visible[i].ID)
	}
}

func TestVisibleTail_TakesMostRecent(t *testing.T) {
	msgs := sampleLog()

	tail, err := VisibleTail(msgs, "Carol", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "5"}, ids(tail), "tail must be the last visible messages, in order")

	// A limit larger than the visible set returns everything.
	tail, err = VisibleTail(msgs, "Carol", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4", "5"}, ids(tail))
}

func TestVisibleTail_InvalidLimit(t *testing.T) {
	msgs := sampleLog()

	for _, limit := range []int{0, -1, -100} {
		_, err := VisibleTail(msgs, "Ana", limit)
		assert.ErrorIs(t, err, ErrInvalidInput, "limit %d", limit)
	}
}

func TestCanMutate(t *testing.T) {
	m := Message{ID: "1", From: "Ana", To: "Bob", Kind: KindPrivate}
	assert.True(t, CanMutate(m, "Ana"))
	assert.False(t, CanMutate(m, "Bob"))
	assert.False(t, CanMutate(m, ""))
}

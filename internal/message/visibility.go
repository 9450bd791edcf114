package message

import "github.com/samber/lo"

// VisibleTo reports whether a single message may be read by viewer.
// Broadcasts and anything addressed to everyone are public; private traffic
// is readable by its two endpoints only.
func VisibleTo(m Message, viewer string) bool {
	return m.Kind == KindBroadcast ||
		m.To == BroadcastAddr ||
		m.To == viewer ||
		m.From == viewer
}

// Visible filters the log down to the subset viewer may read, preserving
// insertion order.
func Visible(msgs []Message, viewer string) []Message {
	return lo.Filter(msgs, func(m Message, _ int) bool {
		return VisibleTo(m, viewer)
	})
}

// VisibleTail returns the last limit visible messages, most recent last.
// Chat clients show recency, so the tail is taken from the filtered
// sequence, not the head. A non-positive limit is a validation error.
func VisibleTail(msgs []Message, viewer string, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, ErrInvalidInput
	}
	visible := Visible(msgs, viewer)
	if len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}
	return visible, nil
}

package storage

import (
	"context"
	"sync"
	"time"

	"batepapo/internal/message"
	"batepapo/internal/participant"
)

// MemoryStore keeps everything in process memory behind mutexes. It is the
// default store when no database is configured, and the reference for the
// atomicity contract: check-then-insert joins, winner-takes-all removes and
// serialized appends all happen inside one critical section each.
type MemoryStore struct {
	participants *memoryParticipantRepo
	messages     *memoryMessageRepo
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		participants: &memoryParticipantRepo{
			byName: make(map[string]participant.Participant),
		},
		messages: &memoryMessageRepo{
			byID: make(map[string]int),
		},
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	_ = ctx
	return nil
}

func (s *MemoryStore) Migrate(ctx context.Context) error {
	_ = ctx
	return nil
}

func (s *MemoryStore) Participants() participant.Repository {
	return s.participants
}

func (s *MemoryStore) Messages() message.Repository {
	return s.messages
}

type memoryParticipantRepo struct {
	mu     sync.Mutex
	byName map[string]participant.Participant
}

func (r *memoryParticipantRepo) Create(_ context.Context, p participant.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[p.Name]; exists {
		return participant.ErrConflict
	}
	r.byName[p.Name] = p
	return nil
}

func (r *memoryParticipantRepo) Get(_ context.Context, name string) (participant.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byName[name]
	if !ok {
		return participant.Participant{}, participant.ErrNotFound
	}
	return p, nil
}

func (r *memoryParticipantRepo) List(_ context.Context) ([]participant.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]participant.Participant, 0, len(r.byName))
	for _, p := range r.byName {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryParticipantRepo) UpdateLastSeen(_ context.Context, name string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byName[name]
	if !ok {
		return participant.ErrNotFound
	}
	p.LastSeen = at
	r.byName[name] = p
	return nil
}

func (r *memoryParticipantRepo) Remove(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; !ok {
		return false, nil
	}
	delete(r.byName, name)
	return true, nil
}

type memoryMessageRepo struct {
	mu      sync.Mutex
	ordered []message.Message
	byID    map[string]int
	lastSeq uint64
	lastAt  time.Time
}

func (r *memoryMessageRepo) Append(_ context.Context, m message.Message) (message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSeq++
	m.Seq = r.lastSeq
	// Wall clocks can step backwards; log order may not.
	if m.SentAt.Before(r.lastAt) {
		m.SentAt = r.lastAt
	}
	r.lastAt = m.SentAt
	r.byID[m.ID] = len(r.ordered)
	r.ordered = append(r.ordered, m)
	return m, nil
}

func (r *memoryMessageRepo) Get(_ context.Context, id string) (message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[id]
	if !ok {
		return message.Message{}, message.ErrNotFound
	}
	return r.ordered[idx], nil
}

func (r *memoryMessageRepo) Update(_ context.Context, id string, patch message.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[id]
	if !ok {
		return message.ErrNotFound
	}
	m := r.ordered[idx]
	m.To = patch.To
	m.Text = patch.Text
	m.Kind = patch.Kind
	r.ordered[idx] = m
	return nil
}

func (r *memoryMessageRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[id]
	if !ok {
		return message.ErrNotFound
	}
	r.ordered = append(r.ordered[:idx], r.ordered[idx+1:]...)
	delete(r.byID, id)
	for i := idx; i < len(r.ordered); i++ {
		r.byID[r.ordered[i].ID] = i
	}
	return nil
}

func (r *memoryMessageRepo) List(_ context.Context) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]message.Message, len(r.ordered))
	copy(out, r.ordered)
	return out, nil
}

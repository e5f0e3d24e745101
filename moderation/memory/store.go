package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/purechat/purechat-server/moderation"
	"github.com/purechat/purechat-server/query"
)

type memory struct {
	sync.Mutex

	strikes map[int64]int

	// events indexed by ID, with a per-user slice kept in insertion order
	// for listing.
	events     map[uuid.UUID]*moderation.Event
	userEvents map[int64][]*moderation.Event
}

func NewInMemory() moderation.Store {
	return &memory{
		strikes:    make(map[int64]int),
		events:     make(map[uuid.UUID]*moderation.Event),
		userEvents: make(map[int64][]*moderation.Event),
	}
}

func (m *memory) reset() {
	m.Lock()
	defer m.Unlock()

	m.strikes = make(map[int64]int)
	m.events = make(map[uuid.UUID]*moderation.Event)
	m.userEvents = make(map[int64][]*moderation.Event)
}

func (m *memory) RecordStrike(_ context.Context, userID int64) (int, error) {
	m.Lock()
	defer m.Unlock()

	m.strikes[userID]++
	return m.strikes[userID], nil
}

func (m *memory) GetStrikes(_ context.Context, userID int64) (int, error) {
	m.Lock()
	defer m.Unlock()

	return m.strikes[userID], nil
}

func (m *memory) ResetStrikes(_ context.Context, userID int64) error {
	m.Lock()
	defer m.Unlock()

	delete(m.strikes, userID)
	return nil
}

func (m *memory) AddEvent(_ context.Context, event *moderation.Event) error {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.events[event.ID]; ok {
		return moderation.ErrExists
	}

	cloned := *event
	m.events[event.ID] = &cloned
	m.userEvents[event.UserID] = append(m.userEvents[event.UserID], &cloned)
	return nil
}

func (m *memory) GetEvent(_ context.Context, id uuid.UUID) (*moderation.Event, error) {
	m.Lock()
	defer m.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, moderation.ErrNotFound
	}

	cloned := *event
	return &cloned, nil
}

func (m *memory) ListEvents(_ context.Context, userID int64, options ...query.Option) ([]*moderation.Event, error) {
	m.Lock()
	defer m.Unlock()

	opts := query.ApplyOptions(options...)

	events := make([]*moderation.Event, 0, len(m.userEvents[userID]))
	for _, event := range m.userEvents[userID] {
		cloned := *event
		events = append(events, &cloned)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if opts.Order == query.Descending {
			return events[j].CreatedAt.Before(events[i].CreatedAt)
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})

	if len(events) > opts.Limit {
		events = events[:opts.Limit]
	}

	return events, nil
}

package moderation

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/purechat/purechat-server/filter"
	"github.com/purechat/purechat-server/query"
	scorermemory "github.com/purechat/purechat-server/scorer/memory"
)

type fakeStore struct {
	sync.Mutex

	strikes map[int64]int
	events  map[uuid.UUID]*Event
	order   []*Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		strikes: make(map[int64]int),
		events:  make(map[uuid.UUID]*Event),
	}
}

func (s *fakeStore) RecordStrike(_ context.Context, userID int64) (int, error) {
	s.Lock()
	defer s.Unlock()

	s.strikes[userID]++
	return s.strikes[userID], nil
}

func (s *fakeStore) GetStrikes(_ context.Context, userID int64) (int, error) {
	s.Lock()
	defer s.Unlock()

	return s.strikes[userID], nil
}

func (s *fakeStore) ResetStrikes(_ context.Context, userID int64) error {
	s.Lock()
	defer s.Unlock()

	delete(s.strikes, userID)
	return nil
}

func (s *fakeStore) AddEvent(_ context.Context, event *Event) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.events[event.ID]; ok {
		return ErrExists
	}
	s.events[event.ID] = event
	s.order = append(s.order, event)
	return nil
}

func (s *fakeStore) GetEvent(_ context.Context, id uuid.UUID) (*Event, error) {
	s.Lock()
	defer s.Unlock()

	event, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return event, nil
}

func (s *fakeStore) ListEvents(_ context.Context, userID int64, _ ...query.Option) ([]*Event, error) {
	s.Lock()
	defer s.Unlock()

	var events []*Event
	for _, event := range s.order {
		if event.UserID == userID {
			events = append(events, event)
		}
	}
	return events, nil
}

func newTestModerator(t *testing.T, textScore float64) (*Moderator, *fakeStore) {
	s := scorermemory.NewScorer(textScore, nil)

	f, err := filter.NewFilter(
		zap.NewNop(),
		s,
		s,
		filter.UnsafeLabelTable{},
		filter.WithThreshold(0.8),
	)
	require.NoError(t, err)

	store := newFakeStore()
	return NewModerator(zap.NewNop(), f, store, store, 3), store
}

func TestModerateCleanMessage(t *testing.T) {
	ctx := context.Background()
	moderator, store := newTestModerator(t, 0.1)

	decision, err := moderator.Moderate(ctx, &Message{UserID: 1, ChatID: -100, Text: "hello there"})
	require.NoError(t, err)
	require.Equal(t, ActionNone, decision.Action)

	require.Empty(t, store.strikes)
	require.Empty(t, store.order)
}

func TestModerateStrikeFlow(t *testing.T) {
	ctx := context.Background()
	moderator, store := newTestModerator(t, 0.95)

	msg := &Message{UserID: 1, ChatID: -100, Text: "bad text"}

	// First two violations warn.
	for i := 1; i <= 2; i++ {
		decision, err := moderator.Moderate(ctx, msg)
		require.NoError(t, err)
		require.Equal(t, ActionWarn, decision.Action)
		require.Equal(t, i, decision.Strikes)
		require.Equal(t, 3, decision.MaxStrikes)
		require.Equal(t, "*** ****", decision.Censored)
		require.InDelta(t, 0.95, decision.Confidence, 1e-9)
	}

	// The third violation kicks and resets the count.
	decision, err := moderator.Moderate(ctx, msg)
	require.NoError(t, err)
	require.Equal(t, ActionKick, decision.Action)
	require.Equal(t, 3, decision.Strikes)

	count, err := moderator.Strikes(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	// Every violation left an audit event.
	events, err := store.ListEvents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 3)
}

func TestModerateRecordsEvent(t *testing.T) {
	ctx := context.Background()
	moderator, store := newTestModerator(t, 0.95)

	_, err := moderator.Moderate(ctx, &Message{UserID: 42, ChatID: -200, Text: "bad text"})
	require.NoError(t, err)

	events, err := store.ListEvents(ctx, 42)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	require.NotEqual(t, uuid.Nil, event.ID)
	require.Equal(t, int64(42), event.UserID)
	require.Equal(t, int64(-200), event.ChatID)
	require.Equal(t, "bad text", event.Text)
	require.InDelta(t, 0.95, event.Confidence, 1e-9)
	require.False(t, event.CreatedAt.IsZero())
}

func TestModerateClassificationFailure(t *testing.T) {
	ctx := context.Background()

	// A malformed scorer makes every classification fail. The failure
	// must propagate, never count as a clean verdict.
	moderator, store := newTestModerator(t, 1.5)

	decision, err := moderator.Moderate(ctx, &Message{UserID: 1, ChatID: -100, Text: "anything"})
	require.Error(t, err)
	require.Nil(t, decision)

	var ce *filter.ClassificationError
	require.ErrorAs(t, err, &ce)

	require.Empty(t, store.strikes)
	require.Empty(t, store.order)
}

func TestNewModeratorDefaults(t *testing.T) {
	ctx := context.Background()

	s := scorermemory.NewScorer(0.95, nil)
	f, err := filter.NewFilter(zap.NewNop(), s, s, filter.UnsafeLabelTable{})
	require.NoError(t, err)

	store := newFakeStore()
	moderator := NewModerator(zap.NewNop(), f, store, store, 0)

	decision, err := moderator.Moderate(ctx, &Message{UserID: 7, ChatID: -1, Text: "bad text"})
	require.NoError(t, err)
	require.Equal(t, DefaultMaxStrikes, decision.MaxStrikes)
}

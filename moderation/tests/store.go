package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/purechat/purechat-server/moderation"
	"github.com/purechat/purechat-server/query"
)

func RunStrikeStoreTests(t *testing.T, s moderation.StrikeStore, teardown func()) {
	for _, tf := range []func(t *testing.T, s moderation.StrikeStore){
		testStrikeFlow,
	} {
		tf(t, s)
		teardown()
	}
}

func RunEventStoreTests(t *testing.T, s moderation.EventStore, teardown func()) {
	for _, tf := range []func(t *testing.T, s moderation.EventStore){
		testEventRoundTrip,
		testEventListing,
	} {
		tf(t, s)
		teardown()
	}
}

func testStrikeFlow(t *testing.T, s moderation.StrikeStore) {
	t.Run("Strike flow", func(t *testing.T) {
		ctx := context.Background()
		userID := int64(12345)

		count, err := s.GetStrikes(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, 0, count)

		for i := 1; i <= 3; i++ {
			count, err = s.RecordStrike(ctx, userID)
			require.NoError(t, err)
			require.Equal(t, i, count)
		}

		count, err = s.GetStrikes(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, 3, count)

		// Strikes are tracked per user.
		other, err := s.GetStrikes(ctx, int64(99999))
		require.NoError(t, err)
		require.Equal(t, 0, other)

		require.NoError(t, s.ResetStrikes(ctx, userID))

		count, err = s.GetStrikes(ctx, userID)
		require.NoError(t, err)
		require.Equal(t, 0, count)

		// Reset is idempotent.
		require.NoError(t, s.ResetStrikes(ctx, userID))
	})
}

func testEventRoundTrip(t *testing.T, s moderation.EventStore) {
	t.Run("Event round trip", func(t *testing.T) {
		ctx := context.Background()

		event := &moderation.Event{
			ID:         uuid.New(),
			UserID:     12345,
			ChatID:     -100200300,
			Text:       "a flagged message",
			Confidence: 0.93,
			CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		}

		_, err := s.GetEvent(ctx, event.ID)
		require.ErrorIs(t, err, moderation.ErrNotFound)

		require.NoError(t, s.AddEvent(ctx, event))
		require.ErrorIs(t, s.AddEvent(ctx, event), moderation.ErrExists)

		actual, err := s.GetEvent(ctx, event.ID)
		require.NoError(t, err)
		require.Equal(t, event.ID, actual.ID)
		require.Equal(t, event.UserID, actual.UserID)
		require.Equal(t, event.ChatID, actual.ChatID)
		require.Equal(t, event.Text, actual.Text)
		require.InDelta(t, event.Confidence, actual.Confidence, 1e-9)
		require.True(t, event.CreatedAt.Equal(actual.CreatedAt))
	})
}

func testEventListing(t *testing.T, s moderation.EventStore) {
	t.Run("Event listing", func(t *testing.T) {
		ctx := context.Background()
		userID := int64(54321)

		base := time.Now().UTC().Truncate(time.Microsecond).Add(-time.Hour)

		ids := make([]uuid.UUID, 0, 5)
		for i := 0; i < 5; i++ {
			event := &moderation.Event{
				ID:         uuid.New(),
				UserID:     userID,
				ChatID:     -100200300,
				Text:       "a flagged message",
				Confidence: 0.9,
				CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, s.AddEvent(ctx, event))
			ids = append(ids, event.ID)
		}

		// Another user's event stays out of the listing.
		require.NoError(t, s.AddEvent(ctx, &moderation.Event{
			ID:         uuid.New(),
			UserID:     777,
			ChatID:     -100200300,
			Text:       "someone else's message",
			Confidence: 0.8,
			CreatedAt:  base,
		}))

		events, err := s.ListEvents(ctx, userID)
		require.NoError(t, err)
		require.Len(t, events, 5)
		for i, event := range events {
			require.Equal(t, ids[i], event.ID)
		}

		events, err = s.ListEvents(ctx, userID, query.WithDescending())
		require.NoError(t, err)
		require.Len(t, events, 5)
		for i, event := range events {
			require.Equal(t, ids[len(ids)-1-i], event.ID)
		}

		events, err = s.ListEvents(ctx, userID, query.WithLimit(2))
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.Equal(t, ids[0], events[0].ID)
		require.Equal(t, ids[1], events[1].ID)
	})
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/purechat/purechat-server/moderation/tests"
)

func TestModeration_Cache(t *testing.T) {
	testStore := NewInCache(time.Minute)
	teardown := func() {
		testStore.(*Cache).cache.Purge()
	}

	tests.RunStrikeStoreTests(t, testStore, teardown)
}

func TestStrikesExpire(t *testing.T) {
	ctx := context.Background()
	testStore := NewInCache(50 * time.Millisecond)

	count, err := testStore.RecordStrike(ctx, 123)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.Eventually(t, func() bool {
		count, err := testStore.GetStrikes(ctx, 123)
		return err == nil && count == 0
	}, time.Second, 10*time.Millisecond)
}

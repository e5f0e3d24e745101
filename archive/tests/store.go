package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/purechat/purechat-server/archive"
)

func RunStoreTests(t *testing.T, s archive.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s archive.Store){
		testPutAndGet,
		testGetMissingKey,
		testOverwrite,
	} {
		tf(t, s)
		teardown()
	}
}

func testPutAndGet(t *testing.T, s archive.Store) {
	ctx := context.Background()

	key := "testKey"
	data := []byte("testData")

	err := s.Put(ctx, key, data)
	require.NoError(t, err, "Put should not return an error")

	retrievedData, err := s.Get(ctx, key)
	require.NoError(t, err, "Get should not return an error")
	require.Equal(t, data, retrievedData, "Retrieved data should match stored data")
}

func testGetMissingKey(t *testing.T, s archive.Store) {
	ctx := context.Background()

	data, err := s.Get(ctx, "nonExistentKey")
	require.ErrorIs(t, err, archive.ErrNotFound, "Get should return ErrNotFound for a missing key")
	require.Nil(t, data, "Retrieved data should be nil for a missing key")
}

func testOverwrite(t *testing.T, s archive.Store) {
	ctx := context.Background()

	key := "overwriteKey"
	initialData := []byte("initialData")
	newData := []byte("newData")

	err := s.Put(ctx, key, initialData)
	require.NoError(t, err, "Initial put should not return an error")

	err = s.Put(ctx, key, newData)
	require.NoError(t, err, "Overwrite put should not return an error")

	retrievedData, err := s.Get(ctx, key)
	require.NoError(t, err, "Get after overwrite should not return an error")
	require.Equal(t, newData, retrievedData, "Retrieved data should match the new data")
}

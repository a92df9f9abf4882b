package users

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "users.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ids, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Add(ctx, User{ID: 42, Username: "lifter", FirstSeen: now}))
	require.NoError(t, store.Add(ctx, User{ID: 42, Username: "other", FirstSeen: now.Add(time.Hour)}))
	require.NoError(t, store.Add(ctx, User{ID: 7, FirstSeen: now.Add(time.Minute)}))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	ids, err = reopened.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{42, 7}, ids)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, leftovers)

	reg, err := NewRegistry(ctx, reopened)
	require.NoError(t, err)
	require.False(t, reg.Register(ctx, 42, "").IsNew)
	require.NoError(t, reg.Close())
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = store.Load(context.Background())
	require.Error(t, err)
}

func TestFileStoreConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := int64(1); i <= 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			errs <- store.Add(ctx, User{ID: id, FirstSeen: time.Now().UTC()})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	ids, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 20)
}

func TestFileStoreAddHonoursContext(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	store.sem <- struct{}{}
	defer func() { <-store.sem }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = store.Add(ctx, User{ID: 1})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

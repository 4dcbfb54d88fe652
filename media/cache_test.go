package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ServesUntilInvalidated(t *testing.T) {
	lib, root := newTestLibrary(t)
	cache := NewCache(lib, time.Hour)
	ctx := context.Background()

	first, err := cache.Items(ctx, SectionProducts)
	require.NoError(t, err)
	require.Len(t, first, 1)

	writeFile(t, filepath.Join(root, "products", "syrup.mp4"), []byte("mp4"))

	cached, err := cache.Items(ctx, SectionProducts)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	cache.Invalidate()

	fresh, err := cache.Items(ctx, SectionProducts)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestCache_ZeroTTLAlwaysReloads(t *testing.T) {
	lib, root := newTestLibrary(t)
	cache := NewCache(lib, 0)
	ctx := context.Background()

	_, err := cache.Items(ctx, SectionProducts)
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "products", "syrup.mp4"), []byte("mp4"))

	items, err := cache.Items(ctx, SectionProducts)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCache_WatchInvalidates(t *testing.T) {
	lib, root := newTestLibrary(t)
	cache := NewCache(lib, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cache.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	items, err := cache.Items(context.Background(), SectionProducts)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Give the watcher time to register its directories.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(root, "products", "syrup.mp4"), []byte("mp4"))

	assert.Eventually(t, func() bool {
		items, err := cache.Items(context.Background(), SectionProducts)
		return err == nil && len(items) == 2
	}, 3*time.Second, 50*time.Millisecond)
}

func TestCache_WatchPicksUpNewSection(t *testing.T) {
	root := t.TempDir()
	cache := NewCache(NewLibrary(root, "/media/"), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cache.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.Mkdir(filepath.Join(root, "products"), 0o755))
	time.Sleep(200 * time.Millisecond)

	items, err := cache.Items(context.Background(), SectionProducts)
	require.NoError(t, err)
	require.Empty(t, items)

	writeFile(t, filepath.Join(root, "products", "syrup.mp4"), []byte("mp4"))

	assert.Eventually(t, func() bool {
		items, err := cache.Items(context.Background(), SectionProducts)
		return err == nil && len(items) == 1
	}, 3*time.Second, 50*time.Millisecond)
}

package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_TriggersSweepOnNewImage(t *testing.T) {
	root := t.TempDir()
	var sweeps atomic.Int64
	var lastRoot atomic.Value

	w := New(root, 50*time.Millisecond, func(r string) {
		lastRoot.Store(r)
		sweeps.Add(1)
	}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.jpg"), []byte("img"), 0o644))

	require.True(t, waitFor(t, 3*time.Second, func() bool { return sweeps.Load() >= 1 }))
	assert.Equal(t, root, lastRoot.Load())
}

func TestWatcher_DebounceCoalescesBursts(t *testing.T) {
	root := t.TempDir()
	var sweeps atomic.Int64

	w := New(root, 150*time.Millisecond, func(string) { sweeps.Add(1) }, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "burst"+string(rune('a'+i))+".png")
		require.NoError(t, os.WriteFile(name, []byte("img"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	require.True(t, waitFor(t, 3*time.Second, func() bool { return sweeps.Load() >= 1 }))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int64(1), sweeps.Load(), "a burst of writes should fire one sweep")
}

func TestWatcher_IgnoresNonImageFiles(t *testing.T) {
	root := t.TempDir()
	var sweeps atomic.Int64

	w := New(root, 50*time.Millisecond, func(string) { sweeps.Add(1) }, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("text"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int64(0), sweeps.Load())
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	var sweeps atomic.Int64

	w := New(root, 50*time.Millisecond, func(string) { sweeps.Add(1) }, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	sub := filepath.Join(root, "album")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "inside.jpg"), []byte("img"), 0o644))

	require.True(t, waitFor(t, 3*time.Second, func() bool { return sweeps.Load() >= 1 }))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	root := t.TempDir()
	w := New(root, 50*time.Millisecond, func(string) {}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	w.Stop()
	w.Stop()
}

func TestWatcher_MissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "gone"), 50*time.Millisecond, func(string) {}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := w.Start(ctx)
	assert.Error(t, err)
}

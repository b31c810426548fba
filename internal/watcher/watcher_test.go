package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changes struct {
	mu    sync.Mutex
	paths []string
}

func (c *changes) record(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
}

func (c *changes) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func start(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watch failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never became ready")
	}
}

func TestDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "building.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	var got changes
	w := New(func() []string { return []string{path} }, got.record, nil).WithDebounce(150 * time.Millisecond)
	start(t, w)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
	}
	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	paths := got.snapshot()
	require.Len(t, paths, 1)
	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, paths[0])
}

func TestIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "building.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	var got changes
	w := New(func() []string { return []string{path} }, got.record, nil).WithDebounce(20 * time.Millisecond)
	start(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Empty(t, got.snapshot())
}

func TestPicksUpNewFiles(t *testing.T) {
	defDir := t.TempDir()
	planDir := t.TempDir()
	def := filepath.Join(defDir, "building.yaml")
	plan := filepath.Join(planDir, "ground.svg")
	require.NoError(t, os.WriteFile(def, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(plan, []byte("<svg/>"), 0o644))

	var (
		mu    sync.Mutex
		files = []string{def}
	)
	list := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), files...)
	}

	var got changes
	w := New(list, func(path string) {
		got.record(path)
		mu.Lock()
		files = []string{def, plan}
		mu.Unlock()
	}, nil).WithDebounce(20 * time.Millisecond)
	start(t, w)

	require.NoError(t, os.WriteFile(def, []byte("b"), 0o644))
	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(plan, []byte("<svg></svg>"), 0o644))
	require.Eventually(t, func() bool { return len(got.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)

	abs, _ := filepath.Abs(plan)
	assert.Equal(t, abs, got.snapshot()[1])
}

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Cyclone1070/preprint/internal/config"
	"github.com/Cyclone1070/preprint/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingHandler signals on every Handle call.
type countingHandler struct {
	calls chan struct{}
}

func (h *countingHandler) Name() string { return "count" }

func (h *countingHandler) Handle(context.Context) error {
	h.calls <- struct{}{}
	return nil
}

// recordingReporter keeps the batches passed to Triggered.
type recordingReporter struct {
	mu      sync.Mutex
	batches [][]string
	dirs    int
}

func (r *recordingReporter) Watching(_ string, dirs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirs = dirs
}

func (r *recordingReporter) Triggered(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, paths)
}

func (r *recordingReporter) Finished(string, time.Duration, error) {}
func (r *recordingReporter) WatchError(error)                      {}

func (r *recordingReporter) snapshot() ([][]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...), r.dirs
}

func startWatcher(t *testing.T, root string) (*Watcher, *countingHandler, *recordingReporter) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Watch.DebounceMs = 200

	filter := NewFilter(root, cfg.Exts, Ignores("paper.tex", cfg.Diff.BuildDir), cfg.Diff.BuildDir, nil)
	handler := &countingHandler{calls: make(chan struct{}, 16)}
	reporter := &recordingReporter{}

	w, err := NewWatcher(fsutil.NewOSFileSystem(), root, filter, handler, reporter, cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	require.Eventually(t, func() bool {
		_, dirs := reporter.snapshot()
		return dirs > 0
	}, 5*time.Second, 10*time.Millisecond)
	return w, handler, reporter
}

func waitCall(t *testing.T, h *countingHandler) {
	t.Helper()
	select {
	case <-h.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}
}

func assertNoCall(t *testing.T, h *countingHandler, wait time.Duration) {
	t.Helper()
	select {
	case <-h.calls:
		t.Fatal("unexpected handler call")
	case <-time.After(wait):
	}
}

func TestWatcherDebouncesBurst(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sections"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))
	_, handler, reporter := startWatcher(t, root)

	_, dirs := reporter.snapshot()
	assert.Equal(t, 2, dirs)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "paper.tex"), []byte{byte('a' + i)}, 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "sections", "intro.tex"), []byte("x"), 0644))

	waitCall(t, handler)
	assertNoCall(t, handler, 600*time.Millisecond)

	batches, _ := reporter.snapshot()
	require.Len(t, batches, 1)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "paper.tex"),
		filepath.Join(root, "sections", "intro.tex"),
	}, batches[0])
}

func TestWatcherIgnoresIrrelevantFiles(t *testing.T) {
	root := t.TempDir()
	_, handler, _ := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "paper.pdf"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "_current.tex"), []byte("x"), 0644))
	assertNoCall(t, handler, 600*time.Millisecond)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	_, handler, _ := startWatcher(t, root)

	dir := filepath.Join(root, "appendix")
	require.NoError(t, os.Mkdir(dir, 0755))
	// Let the watcher register the directory before writing into it.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "proofs.tex"), []byte("x"), 0644))

	waitCall(t, handler)
}

func TestWatcherRebuild(t *testing.T) {
	root := t.TempDir()
	w, handler, reporter := startWatcher(t, root)

	w.Rebuild()
	waitCall(t, handler)

	require.Eventually(t, func() bool {
		batches, _ := reporter.snapshot()
		return len(batches) == 1
	}, time.Second, 10*time.Millisecond)
	batches, _ := reporter.snapshot()
	assert.Empty(t, batches[0])
}

package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 20 * time.Millisecond

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(testDebounce)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func expectEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no event received")
	}
	return Event{}
}

func expectNoEvent(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(10 * testDebounce):
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sky.hdr")
	writeFile(t, path, "a")

	w := newWatcher(t)
	require.NoError(t, w.Add(path, "hdr"))

	writeFile(t, path, "b")
	ev := expectEvent(t, w)
	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, ev.Path)
	assert.Equal(t, "hdr", ev.Tag)
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.obj")
	writeFile(t, path, "v 0 0 0")

	w := newWatcher(t)
	require.NoError(t, w.Add(path, "model"))

	for i := 0; i < 5; i++ {
		writeFile(t, path, "v 1 1 1")
	}
	expectEvent(t, w)
	expectNoEvent(t, w)
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "albedo.png")
	other := filepath.Join(dir, "notes.txt")
	writeFile(t, watched, "x")

	w := newWatcher(t)
	require.NoError(t, w.Add(watched, "albedo"))

	writeFile(t, other, "y")
	expectNoEvent(t, w)
}

func TestWatcherRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roughness.png")
	writeFile(t, path, "x")

	w := newWatcher(t)
	require.NoError(t, w.Add(path, "roughness"))
	assert.Len(t, w.Watched(), 1)

	require.NoError(t, w.Remove(path))
	assert.Empty(t, w.Watched())
	require.NoError(t, w.Remove(path))

	writeFile(t, path, "y")
	expectNoEvent(t, w)
}

func TestWatcherAddRetags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	writeFile(t, path, "x")

	w := newWatcher(t)
	require.NoError(t, w.Add(path, "albedo"))
	require.NoError(t, w.Add(path, "emission"))
	assert.Len(t, w.Watched(), 1)

	writeFile(t, path, "y")
	assert.Equal(t, "emission", expectEvent(t, w).Tag)
}

func TestWatcherAddMissingFile(t *testing.T) {
	w := newWatcher(t)
	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing.hdr"), "hdr"))
}

func TestWatcherCloseTwice(t *testing.T) {
	w, err := New(testDebounce)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	_, open := <-w.Events()
	assert.False(t, open)
}

// Package watch reports changes to individual asset files.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pbr-viewer/log"
)

var logger = log.New("watch")

// DefaultDebounce coalesces the burst of writes an editor makes on save.
const DefaultDebounce = 150 * time.Millisecond

// Event reports that a watched file was written or replaced. Tag is the
// value the file was registered with.
type Event struct {
	Path string
	Tag  string
}

// Watcher watches the parent directories of registered files, so files that
// are replaced by rename are still seen, and forwards one Event per file per
// burst of changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	files map[string]string // absolute path -> tag
	dirs  map[string]int    // absolute dir -> watched files inside

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		fs:       fsw,
		debounce: debounce,
		files:    make(map[string]string),
		dirs:     make(map[string]int),
		events:   make(chan Event, 16),
		errors:   make(chan error, 4),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Events delivers coalesced change notifications.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors delivers errors reported by the underlying watcher.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Add starts watching path. Adding a path again replaces its tag.
func (w *Watcher) Add(path, tag string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; ok {
		w.files[abs] = tag
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = tag
	logger.Debugf("watching %s (%s)", abs, tag)
	return nil
}

// Remove stops watching path. Unknown paths are ignored.
func (w *Watcher) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; !ok {
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		if err := w.fs.Remove(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return nil
}

// Watched lists the watched files in sorted order.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Close stops the watcher and closes the Events channel.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) lookup(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	tag, ok := w.files[filepath.Clean(path)]
	return tag, ok
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer close(w.events)

	pending := make(map[string]Event)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-w.done:
			timer.Stop()
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			tag, watched := w.lookup(ev.Name)
			if !watched {
				continue
			}
			pending[filepath.Clean(ev.Name)] = Event{Path: filepath.Clean(ev.Name), Tag: tag}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warningf("watcher error: %v", err)
			select {
			case w.errors <- err:
			default:
			}

		case <-timer.C:
			for path, ev := range pending {
				delete(pending, path)
				logger.Debugf("%s changed", path)
				select {
				case w.events <- ev:
				case <-w.done:
					return
				}
			}
		}
	}
}

package rules

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/corevalidate/middleware/pkg/constants"
	"github.com/corevalidate/middleware/pkg/logger"
)

var watchLog = logger.New("rules:watcher")

// EventKind classifies a debounced change reported by Watcher.
type EventKind string

const (
	EventAdd    EventKind = "add"
	EventChange EventKind = "change"
	EventDelete EventKind = "delete"
)

// Event is a single debounced rule-file change.
type Event struct {
	Path string
	Kind EventKind
}

const debounceWindow = constants.RuleWatchDebounce

// Watcher watches a directory tree for changes to rule files (context.md
// and other *.md files matching the resolver's naming convention) and
// emits debounced Events to every subscriber. Rapid successive writes to
// the same path within the debounce window collapse into a single event,
// so an editor's save-then-rewrite does not trigger two cache
// invalidations back to back.
type Watcher struct {
	watcher *fsnotify.Watcher
	matcher func(path string) bool

	mu        sync.Mutex
	timers    map[string]*time.Timer
	pending   map[string]EventKind
	subs      []chan Event
	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher creates a Watcher. matcher decides whether a given path is a
// rule file the resolver cares about; paths for which it returns false are
// ignored entirely.
func NewWatcher(matcher func(path string) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher: fw,
		matcher: matcher,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]EventKind),
		done:    make(chan struct{}),
	}
	return w, nil
}

// AddDir registers root and every subdirectory beneath it for watching,
// since fsnotify does not watch recursively on its own.
func (w *Watcher) AddDir(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Add registers a single directory with the underlying fsnotify watcher.
func (w *Watcher) Add(dir string) error {
	return w.watcher.Add(dir)
}

// Subscribe returns a channel that receives every debounced Event until
// Close is called. The channel is closed when the Watcher stops.
func (w *Watcher) Subscribe() <-chan Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan Event, 16)
	w.subs = append(w.subs, ch)
	return ch
}

// Run processes fsnotify events until Close is called. Intended to run in
// its own goroutine.
func (w *Watcher) Run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.matcher != nil && !w.matcher(ev.Name) {
				continue
			}
			w.schedule(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			watchLog.Printf("fsnotify error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) schedule(ev fsnotify.Event) {
	kind := EventChange
	switch {
	case ev.Op&fsnotify.Create != 0:
		kind = EventAdd
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		kind = EventDelete
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[ev.Name] = kind
	if t, ok := w.timers[ev.Name]; ok {
		t.Stop()
	}
	w.timers[ev.Name] = time.AfterFunc(debounceWindow, func() {
		w.fire(ev.Name)
	})
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	kind, ok := w.pending[path]
	delete(w.pending, path)
	delete(w.timers, path)
	subs := make([]chan Event, len(w.subs))
	copy(subs, w.subs)
	w.mu.Unlock()

	if !ok {
		return
	}
	evt := Event{Path: path, Kind: kind}
	watchLog.LazyPrintf(func() string { return "rule file event: " + path + " " + string(kind) })
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
			watchLog.Printf("subscriber channel full, dropping event for %s", path)
		}
	}
}

// Close stops the watcher and closes every subscriber channel.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.mu.Lock()
		for _, t := range w.timers {
			t.Stop()
		}
		for _, ch := range w.subs {
			close(ch)
		}
		w.mu.Unlock()
	})
	return err
}

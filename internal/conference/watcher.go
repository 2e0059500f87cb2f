package conference

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of record change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // record written
	ChangeRemoved                    // record deleted
)

// Change is a detected change of one conference record.
type Change struct {
	Kind ChangeKind
	ID   string
	File string
}

// Watcher monitors a record directory using fsnotify.
type Watcher struct {
	Dir     string
	Changes <-chan Change // Read-only external channel

	changes  chan Change
	stop     chan struct{}
	done     chan struct{}
	running  atomic.Bool
	stopOnce sync.Once
	watcher  *fsnotify.Watcher
	store    *Store
}

// NewWatcher creates a watcher for the directory of store.
func NewWatcher(store *Store) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Dir:     store.Dir(),
		Changes: ch,
		changes: ch,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		watcher: fw,
		store:   store,
	}, nil
}

// Start begins watching. The loop ends when ctx is cancelled or [Watcher.Stop]
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}

	w.running.Store(true)
	go w.loop(ctx)
	return nil
}

// Stop closes the watcher and the Changes channel. It is safe to call more
// than once, and without a successful [Watcher.Start]. Changes not yet
// received are dropped.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.watcher.Close()
		if w.running.Load() {
			<-w.done
		}
		close(w.changes)
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	// Debounce: atomic writes produce several events per save.
	const debounce = 100 * time.Millisecond
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.emit(ctx, file)
				}
				return
			}
			if !isRecordFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case now := <-ticker.C:
			for file, t := range pending {
				if now.Sub(t) >= debounce {
					w.emit(ctx, file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func isRecordFile(name string) bool {
	return strings.HasSuffix(filepath.Base(name), recordExt)
}

func (w *Watcher) emit(ctx context.Context, file string) {
	id := strings.TrimSuffix(filepath.Base(file), recordExt)
	change := Change{Kind: ChangeModified, ID: id, File: file}
	if _, err := w.store.Get(ctx, id); err != nil {
		change.Kind = ChangeRemoved
	}

	select {
	case w.changes <- change:
	case <-ctx.Done():
	case <-w.stop:
	}
}

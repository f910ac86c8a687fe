// Package watcher reports changes to a single file, such as the hops config.
//
// The file's directory is watched rather than the file itself so that
// editors which save by writing a temp file and renaming it are still seen.
// Bursts of events are collapsed into one callback after a short quiet period.
//
// Example usage:
//
//	w, err := watcher.New(cfgPath, func() { regenerate() })
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/hops/internal/logging"
)

// DefaultDebounce is the quiet period before OnChange fires.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls OnChange when the watched file is written or replaced.
type Watcher struct {
	// Debounce and OnError may be set before Start.
	Debounce time.Duration
	OnError  func(error)

	targets  map[string]struct{}
	onChange func()
	logger   zerolog.Logger

	fs       *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	// runMu keeps OnChange calls from overlapping.
	runMu sync.Mutex
}

// New creates a Watcher for path. When path is a symlink the link target is
// watched as well.
func New(path string, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange cannot be nil")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	targets := map[string]struct{}{filepath.Clean(abs): {}}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		targets[filepath.Clean(resolved)] = struct{}{}
	}

	return &Watcher{
		Debounce: DefaultDebounce,
		targets:  targets,
		onChange: onChange,
		logger:   logging.GetLogger("watcher"),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := map[string]struct{}{}
	for target := range w.targets {
		dirs[filepath.Dir(target)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.Debug().Str("dir", dir).Msg("Watching directory")
	}

	w.fs = fsw
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop halts the watcher. Pending callbacks are dropped.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)

		w.mu.Lock()
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		if w.fs != nil {
			err = w.fs.Close()
		}
		w.wg.Wait()
	})
	return err
}

// Run starts the watcher and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return w.Stop()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.matches(ev) {
				continue
			}
			w.logger.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("Config changed")
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Debug().Err(err).Msg("Watcher error")
			if w.OnError != nil {
				w.OnError(err)
			}
		case <-w.stopCh:
			return
		}
	}
}

// matches reports whether ev writes or replaces a watched file.
func (w *Watcher) matches(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	_, ok := w.targets[filepath.Clean(ev.Name)]
	return ok
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	stopped := w.stopped
	w.mu.Unlock()
	if stopped {
		return
	}

	w.runMu.Lock()
	defer w.runMu.Unlock()
	w.onChange()
}

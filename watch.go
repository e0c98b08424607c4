package filepress

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the Watcher waits for a burst of file events
// to settle before reporting a change.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports edits under the content directories of an instance root.
// Bursts of events are collapsed into a single onChange call.
type Watcher struct {
	root     string
	onChange func()
	delay    time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches posts/, widgets/ and every directory under pages/ of
// root. The root itself is watched so content directories created later are
// picked up.
func NewWatcher(root string, onChange func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:     filepath.Clean(root),
		onChange: onChange,
		delay:    DefaultDebounce,
		logger:   logger,
		watcher:  fw,
	}
	if err := fw.Add(w.root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}
	for _, dir := range []string{postsDir, pagesDir, widgetsDir} {
		if err := w.addTree(filepath.Join(w.root, dir)); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree watches dir and, for pages, every directory below it. A missing
// dir is not an error.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && !w.recursive(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) recursive(path string) bool {
	return strings.HasPrefix(path, filepath.Join(w.root, pagesDir)+string(filepath.Separator))
}

// relevant reports whether an event path lies in a content directory.
func (w *Watcher) relevant(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	top := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	switch top {
	case postsDir, pagesDir, widgetsDir:
		return true
	}
	return false
}

// Run processes events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !w.relevant(event.Name) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
			}
		}
	}
	w.logger.Debug("content changed", "path", event.Name, "op", event.Op.String())
	w.schedule()
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.onChange)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("close watcher", "error", err)
	}
}

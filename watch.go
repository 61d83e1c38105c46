package folio

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the App when files in the content tree change. Bursts of
// events (editors writing temp files, git checkouts) collapse into a single
// reload after the debounce interval.
type Watcher struct {
	app      *App
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatcher creates a Watcher for the App's content directory.
func NewWatcher(a *App, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{
		app:      a,
		watcher:  fw,
		debounce: debounce,
		log:      a.log.Named("watch"),
	}, nil
}

// watchDirs returns the directories to watch: the content root (for
// _config.yml and new collection directories) and every directory below the
// collection directories.
func (w *Watcher) watchDirs() []string {
	root := w.app.Config.ContentDir
	dirs := []string{root}
	for _, c := range Collections {
		base := filepath.Join(root, "_"+string(c))
		_ = filepath.WalkDir(base, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return filepath.SkipDir
			}
			if d.IsDir() {
				dirs = append(dirs, p)
			}
			return nil
		})
	}
	return dirs
}

// Start begins watching. It is non-blocking; events are handled on a
// goroutine until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	for _, d := range w.watchDirs() {
		if err := w.watcher.Add(d); err != nil {
			return err
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true
	go w.loop(ctx)
	return nil
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	return w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("content changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.watcher.Add(ev.Name)
				}
			}
			// Since Go 1.23 Reset discards any undelivered tick.
			timer.Reset(w.debounce)
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-fire:
			fire = nil
			if err := w.app.Reload(ctx); err != nil {
				w.log.Warn("reload failed; serving previous content", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(ev.Name)
	if base == SiteConfigFile {
		return true
	}
	if len(base) > 0 && (base[0] == '.' || base[len(base)-1] == '~') {
		return false
	}
	ext := filepath.Ext(base)
	return ext == "" || contentExts[ext]
}

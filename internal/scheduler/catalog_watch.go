package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/nearby/internal/logger"
)

const defaultWatchDebounce = 400 * time.Millisecond

// CatalogWatcher asks the reloader for a reload whenever catalog.yaml
// changes on disk. The parent directory is watched so editors that save
// by rename, and mounted config maps that swap a symlink, still fire.
type CatalogWatcher struct {
	path     string
	trigger  chan<- struct{}
	logger   logger.Logger
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

func NewCatalogWatcher(path string, trigger chan<- struct{}, log logger.Logger) *CatalogWatcher {
	return &CatalogWatcher{
		path:     filepath.Clean(path),
		trigger:  trigger,
		logger:   log,
		debounce: defaultWatchDebounce,
		done:     make(chan struct{}),
	}
}

// Start begins watching until ctx is cancelled or Stop is called.
func (cw *CatalogWatcher) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	dir := filepath.Dir(cw.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	cw.mu.Lock()
	cw.watcher = w
	cw.mu.Unlock()

	go cw.run(ctx, w)
	return nil
}

func (cw *CatalogWatcher) run(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			cw.Stop()
			return
		case <-cw.done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			cw.handle(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("catalog watcher error", logger.Error(err))
		}
	}
}

func (cw *CatalogWatcher) handle(ev fsnotify.Event) {
	if !cw.relevant(ev.Name) {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	cw.logger.Debug("catalog file event",
		logger.String("op", ev.Op.String()),
		logger.String("path", ev.Name))

	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, cw.fire)
}

// relevant reports whether an event in the watched directory concerns the
// catalog. Kubernetes config maps update through a "..data" symlink swap.
func (cw *CatalogWatcher) relevant(name string) bool {
	clean := filepath.Clean(name)
	if clean == cw.path {
		return true
	}
	return filepath.Dir(clean) == filepath.Dir(cw.path) && filepath.Base(clean) == "..data"
}

func (cw *CatalogWatcher) fire() {
	select {
	case cw.trigger <- struct{}{}:
		cw.logger.Info("catalog file changed, reload queued", logger.String("file", cw.path))
	default:
	}
}

func (cw *CatalogWatcher) Stop() {
	cw.once.Do(func() {
		close(cw.done)
		cw.mu.Lock()
		defer cw.mu.Unlock()
		if cw.timer != nil {
			cw.timer.Stop()
		}
		if cw.watcher != nil {
			_ = cw.watcher.Close()
		}
	})
}

package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 500 * time.Millisecond

// Watcher hot-reloads the configuration file and notifies subscribers.
// Intended for development; in production the file never changes.
type Watcher struct {
	path      string
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	callbacks []func(*Config)
	mu        sync.Mutex
	stopCh    chan struct{}
	once      sync.Once
}

// NewWatcher watches the given config file for changes.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		logger:  logger,
		watcher: fsWatcher,
		stopCh:  make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// OnReload registers a callback invoked with each successfully reloaded
// configuration.
func (w *Watcher) OnReload(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Stop terminates the watcher.
func (w *Watcher) Stop() {
	w.once.Do(func() { close(w.stopCh) })
}

func (w *Watcher) loop() {
	defer w.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, w.reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg := Default()
	if err := loadFile(w.path, cfg); err != nil {
		w.logger.Warn("config reload failed", zap.Error(err))
		return
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		w.logger.Warn("reloaded config is invalid, keeping previous", zap.Error(err))
		return
	}

	w.logger.Info("configuration reloaded", zap.String("path", w.path))

	w.mu.Lock()
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

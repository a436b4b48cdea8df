package ember

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads a config file whenever it is written and publishes the
// result. Only the newest pending Config is kept.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher

	updates chan Config
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
}

// NewConfigWatcher watches the directory holding path so that editors which
// replace the file on save are still seen.
func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &ConfigWatcher{
		path:    abs,
		watcher: fsWatch,
		updates: make(chan Config, 1),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

func (w *ConfigWatcher) Path() string { return w.path }

// Updates delivers successfully reloaded configs.
func (w *ConfigWatcher) Updates() <-chan Config { return w.updates }

// Errors delivers reload failures; the previous config stays in effect.
func (w *ConfigWatcher) Errors() <-chan error { return w.errors }

func (w *ConfigWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *ConfigWatcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadConfig(w.path)
			if err != nil {
				publish(w.errors, err)
				continue
			}
			publish(w.updates, cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			publish(w.errors, err)

		case <-w.done:
			return
		}
	}
}

// publish replaces any value still pending in ch.
func publish[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// ConfigEvents reports, for the current frame, whether the Config resource was
// replaced by a reload.
type ConfigEvents struct {
	Reloaded bool
	Previous Config
}

// ConfigModule provides the Config resource. With Watch set, edits to Path are
// applied at the start of the next frame.
type ConfigModule struct {
	Path  string
	Watch bool
	// Config, when set, is used instead of reading Path.
	Config *Config
}

func (m ConfigModule) Install(app *App, cmd *Commands) {
	cfg := m.Config
	if cfg == nil {
		loaded, err := LoadConfig(m.Path)
		if err != nil {
			panic(err)
		}
		cfg = &loaded
	}
	app.Logger().SetDebug(app.Logger().DebugEnabled() || cfg.Debug)
	cmd.AddResources(cfg, &ConfigEvents{})

	if !m.Watch || m.Path == "" {
		return
	}
	w, err := NewConfigWatcher(m.Path)
	if err != nil {
		app.Logger().Warnf("config: hot reload disabled: %v", err)
		return
	}
	app.Logger().Infof("config: watching %s", w.Path())
	cmd.AddResources(w)
	cmd.OnShutdown(func() {
		if err := w.Close(); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
			app.Logger().Warnf("config: closing watcher: %v", err)
		}
	})
	app.UseSystem(System(configReloadSystem).InStage(PreUpdate))
}

func configReloadSystem(cmd *Commands, w *ConfigWatcher, cfg *Config, events *ConfigEvents) {
	events.Reloaded = false
	events.Previous = Config{}

	select {
	case next := <-w.Updates():
		events.Reloaded = true
		events.Previous = *cfg
		*cfg = next
		cmd.Logger().SetDebug(next.Debug)
		cmd.Logger().Infof("config: reloaded %s", w.Path())
	case err := <-w.Errors():
		cmd.Logger().Errorf("config: reload failed, keeping previous: %v", err)
	default:
	}
}

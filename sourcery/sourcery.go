package sourcery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spaghettifunk/sourcery/sourcery/config"
	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/spaghettifunk/sourcery/sourcery/export"
	"github.com/spaghettifunk/sourcery/sourcery/scene"
	"github.com/spaghettifunk/sourcery/sourcery/watch"
)

type Stage uint8

const (
	StageUninitialized Stage = iota
	StageInitialized
	StageRunning
	StageShuttingDown
)

// target is one collection and the file it is written to.
type target struct {
	collection string
	output     string
	exporter   *export.Exporter
}

// App exports one collection, or all of them, once or every time its
// inputs change.
type App struct {
	cfg          *config.Config
	currentStage Stage
	targets      []target
	watcher      *watch.Watcher

	// modification time of outputs we wrote ourselves, by absolute path
	written map[string]time.Time

	mutex sync.Mutex
	done  chan struct{}
}

func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return &App{
		cfg:          cfg,
		currentStage: StageUninitialized,
		written:      make(map[string]time.Time),
		done:         make(chan struct{}),
	}, nil
}

func (a *App) Initialize() error {
	if err := a.loadScene(); err != nil {
		return err
	}

	if a.cfg.Watch {
		w, err := watch.New()
		if err != nil {
			return err
		}
		if err := w.Add(a.cfg.Scene); err != nil {
			return err
		}
		if err := w.Add(a.cfg.Input); err != nil {
			return err
		}
		a.watcher = w
	}

	a.currentStage = StageInitialized
	return nil
}

func (a *App) loadScene() error {
	s, err := scene.Load(a.cfg.Scene)
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}
	opts := []export.Option{export.WithFormat(format)}
	game, err := a.cfg.Game()
	if err != nil {
		return err
	}
	if game != nil {
		opts = append(opts, export.WithGameDir(game.GameDir))
	}

	var targets []target
	if a.cfg.All {
		for _, name := range s.CollectionNames() {
			targets = append(targets, target{
				collection: name,
				output:     a.cfg.CollectionOutput(name),
				exporter:   export.New(s, export.Settings{Collection: name}, opts...),
			})
		}
		if len(targets) == 0 {
			core.LogWarn("'%s' has no collections, nothing to export", a.cfg.Scene)
		}
	} else {
		targets = append(targets, target{
			collection: a.cfg.Collection,
			output:     a.cfg.OutputPath(),
			exporter:   export.New(s, export.Settings{Collection: a.cfg.Collection}, opts...),
		})
	}

	a.mutex.Lock()
	a.targets = targets
	a.mutex.Unlock()
	return nil
}

// Run exports once and, in watch mode, keeps exporting on every change
// until Shutdown is called.
func (a *App) Run() error {
	a.mutex.Lock()
	if a.currentStage != StageInitialized {
		a.mutex.Unlock()
		return errors.New("app not initialized")
	}
	a.currentStage = StageRunning
	a.mutex.Unlock()

	if err := a.export(); err != nil {
		return err
	}
	if a.watcher == nil {
		return nil
	}

	a.watcher.Start()
	core.LogInfo("watching '%s' and '%s' for changes", a.cfg.Scene, a.cfg.Input)
	for {
		select {
		case e, ok := <-a.watcher.Events():
			if !ok {
				return nil
			}
			a.onChange(e)
		case <-a.done:
			return nil
		}
	}
}

func (a *App) onChange(e watch.Event) {
	switch e.Kind {
	case watch.KindScene:
		if err := a.loadScene(); err != nil {
			core.LogError("failed to reload scene metadata: %s", err)
			return
		}
	case watch.KindGLTF:
		if a.selfWritten(e.Path) {
			return
		}
	default:
		return
	}
	if err := a.export(); err != nil {
		core.LogError(err.Error())
	}
}

func (a *App) export() error {
	a.mutex.Lock()
	targets := a.targets
	a.mutex.Unlock()

	for _, t := range targets {
		if _, err := t.exporter.Export(a.cfg.Input, t.output); err != nil {
			return fmt.Errorf("collection '%s': %w", t.collection, err)
		}
		abs, err := filepath.Abs(t.output)
		if err != nil {
			return err
		}
		if info, err := os.Stat(abs); err == nil {
			a.mutex.Lock()
			a.written[abs] = info.ModTime()
			a.mutex.Unlock()
		}
	}
	return nil
}

func (a *App) selfWritten(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	a.mutex.Lock()
	defer a.mutex.Unlock()
	t, ok := a.written[path]
	return ok && t.Equal(info.ModTime())
}

func (a *App) Shutdown() error {
	a.mutex.Lock()
	if a.currentStage == StageShuttingDown {
		a.mutex.Unlock()
		return nil
	}
	a.currentStage = StageShuttingDown
	a.mutex.Unlock()
	close(a.done)
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			return fmt.Errorf("failed to stop watcher: %w", err)
		}
	}
	return nil
}

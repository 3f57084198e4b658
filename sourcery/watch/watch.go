package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/sourcery/sourcery/core"
)

type Kind uint8

const (
	KindNone Kind = iota
	// TOML metadata sidecar
	KindScene
	// .gltf or .glb document
	KindGLTF
)

func (k Kind) String() string {
	switch k {
	case KindScene:
		return "scene"
	case KindGLTF:
		return "gltf"
	}
	return "none"
}

// Event reports that a watched file was created or written.
type Event struct {
	Path string
	Kind Kind
}

const defaultDebounce = 150 * time.Millisecond

// Watcher reports changes to a fixed set of files. Parent directories are
// watched instead of the files so replace-by-rename saves are seen too.
type Watcher struct {
	files    map[string]Kind
	debounce time.Duration

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	events   chan Event
	errors   chan error
}

func New() (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		files:    make(map[string]Kind),
		debounce: defaultDebounce,
		fsnotify: fsWatch,
		events:   make(chan Event, 16),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

// Add starts watching path. The kind is derived from the file extension.
func (w *Watcher) Add(path string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.isClosed {
		return core.ErrWatcherClosed
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if !w.watchingDir(dir) {
		if err := w.fsnotify.Add(dir); err != nil {
			return err
		}
	}
	w.files[abs] = determineKind(abs)
	core.LogDebug("watching '%s' (%s)", abs, w.files[abs])
	return nil
}

func (w *Watcher) watchingDir(dir string) bool {
	for f := range w.files {
		if filepath.Dir(f) == dir {
			return true
		}
	}
	return false
}

func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) Start() {
	go w.start()
}

func (w *Watcher) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.isClosed {
		return core.ErrWatcherClosed
	}
	w.isClosed = true
	close(w.done)
	return nil
}

func (w *Watcher) start() {
	pending := make(map[string]Kind)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {

		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.mutex.RLock()
			kind, watched := w.files[filepath.Clean(e.Name)]
			w.mutex.RUnlock()
			if !watched {
				continue
			}
			pending[filepath.Clean(e.Name)] = kind
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			for path, kind := range pending {
				select {
				case w.events <- Event{Path: path, Kind: kind}:
				case <-w.done:
				}
			}
			pending = make(map[string]Kind)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			select {
			case w.errors <- err:
			default:
			}

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			w.fsnotify.Close()
			close(w.events)
			close(w.errors)
			return
		}
	}
}

func determineKind(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return KindScene
	case ".gltf", ".glb":
		return KindGLTF
	default:
		return KindNone
	}
}

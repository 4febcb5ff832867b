package scene

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/prisma/engine/core"
)

// Watcher reloads a scene file whenever it changes on disk and hands
// the parsed result to the frame loop over a channel. Parsing happens
// on the watcher goroutine; applying the scene stays on the frame
// thread.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	reloads chan *Scene
	done    chan struct{}
}

// NewWatcher watches the directory containing path, since editors
// commonly replace files instead of writing them in place.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		core.LogError("failed to create scene watcher: %s", err.Error())
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		core.LogError("failed to watch scene directory %s: %s", filepath.Dir(path), err.Error())
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		watcher: fsw,
		reloads: make(chan *Scene, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	core.LogInfo("watching scene file %s", path)
	return w, nil
}

// Reloads delivers freshly parsed scenes. The channel holds one
// pending scene; rapid saves collapse into the latest version. The
// channel closes once the watcher shuts down.
func (w *Watcher) Reloads() <-chan *Scene {
	return w.reloads
}

func (w *Watcher) run() {
	// run is the only sender, so the channel closes when it exits and
	// receivers observe the shutdown.
	defer close(w.reloads)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			s, err := Load(w.path)
			if err != nil {
				// A half-written file parses again on the next event.
				core.LogWarn("scene reload skipped: %s", err.Error())
				continue
			}
			select {
			case w.reloads <- s:
			default:
				// Drop the stale pending scene for the newer one.
				select {
				case <-w.reloads:
				default:
				}
				w.reloads <- s
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("scene watcher error: %s", err.Error())
		}
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

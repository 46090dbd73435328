package config

import (
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/linknx-go/ruled/engine"
)

// Watcher reloads a configuration file and delivers each successfully
// parsed document on Events whenever the file is written or replaced.
// Grounded on _examples/purpleidea-mgmt/util/recwatch/recwatch.go's
// fsnotify-backed watcher, simplified to a single file (this module has no
// analogue of mgmt's recursive directory watching).
type Watcher struct {
	Events chan *Element
	Errors chan error

	path string
	w    *fsnotify.Watcher
	done chan struct{}
}

// NewWatcher starts watching path's containing directory (so editors that
// write-then-rename are handled the same as in-place writes) and parses the
// file once immediately.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := dirname(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	cw := &Watcher{
		Events: make(chan *Element),
		Errors: make(chan error),
		path:   path,
		w:      w,
		done:   make(chan struct{}),
	}
	go cw.loop()
	return cw, nil
}

func (cw *Watcher) loop() {
	defer close(cw.Events)
	defer close(cw.Errors)

	cw.reload()
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if ev.Name != cw.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cw.reload()
		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			cw.Errors <- err
		case <-cw.done:
			return
		}
	}
}

func (cw *Watcher) reload() {
	f, err := os.Open(cw.path)
	if err != nil {
		cw.Errors <- err
		return
	}
	defer f.Close()

	root, err := Parse(f)
	if err != nil {
		cw.Errors <- engine.NewConfigError("config: %v", err)
		return
	}
	cw.Events <- root
}

// Close stops watching and releases the underlying fsnotify watcher.
func (cw *Watcher) Close() error {
	close(cw.done)
	return cw.w.Close()
}

func dirname(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

package ui

import (
	"path/filepath"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// docWatcher reports writes to the open document. Editors often replace a
// file instead of writing it in place, so the parent directory is watched
// and events are filtered by name.
type docWatcher struct {
	w   *fsnotify.Watcher
	dir string

	// waiting is set while a watch command is blocked on events.
	waiting atomic.Bool
}

func newDocWatcher() *docWatcher {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("unable to create file watcher", "error", err)
		return &docWatcher{}
	}
	return &docWatcher{w: w}
}

// watch returns a command that blocks until path changes and then yields
// reloadMsg. Only one such command is outstanding at a time.
func (d *docWatcher) watch(path string) tea.Cmd {
	if d.w == nil || path == "" {
		return nil
	}
	if d.waiting.Load() && filepath.Dir(path) == d.dir {
		return nil
	}

	dir := filepath.Dir(path)
	if dir != d.dir {
		if d.dir != "" {
			_ = d.w.Remove(d.dir)
		}
		if err := d.w.Add(dir); err != nil {
			log.Error("unable to watch document dir", "dir", dir, "error", err)
			return nil
		}
		d.dir = dir
		log.Debug("watching document dir", "dir", dir)
	}

	events, errs := d.w.Events, d.w.Errors
	d.waiting.Store(true)
	return func() tea.Msg {
		defer d.waiting.Store(false)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if ev.Name == path && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					log.Debug("document changed", "file", ev.Name, "op", ev.Op)
					return reloadMsg{}
				}
			case err, ok := <-errs:
				if !ok {
					return nil
				}
				log.Debug("file watcher", "dir", dir, "error", err)
			}
		}
	}
}

func (d *docWatcher) close() {
	if d.w == nil {
		return
	}
	if err := d.w.Close(); err != nil {
		log.Debug("unable to close file watcher", "error", err)
	}
}

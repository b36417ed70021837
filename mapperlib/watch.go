// SPDX-License-Identifier: GPL-2.0-or-later

package mapperlib

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"halfmapper/conlog"
	"halfmapper/maps"

	"github.com/fsnotify/fsnotify"
)

// settle collapses the burst of events an editor produces on save.
const settle = 250 * time.Millisecond

// watchList returns the files whose change triggers a reload: the campaign
// file, every texture archive found in a directory root and every .pak root.
func watchList(o Options) []string {
	var files []string
	c, err := maps.Load(o.Config)
	if err != nil {
		return nil
	}
	if o.Config != "" {
		files = append(files, o.Config)
	}
	for _, root := range append(append([]string(nil), o.Paths...), c.Paths...) {
		if strings.EqualFold(filepath.Ext(root), ".pak") {
			files = append(files, root)
			continue
		}
		for _, w := range c.Wads {
			p := filepath.Join(root, w+".wad")
			if _, err := os.Stat(p); err == nil {
				files = append(files, p)
			}
		}
	}
	return files
}

// Watch runs once and again after every change to a watched file until ctx
// is done. Failed runs are reported and do not stop watching.
func Watch(ctx context.Context, o Options) error {
	return watch(ctx, o, func() {
		if _, err := Run(ctx, o); err != nil {
			conlog.Errorf("%v", err)
		}
	})
}

func watch(ctx context.Context, o Options, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	add := func() {
		for _, f := range watchList(o) {
			if err := watcher.Add(f); err != nil {
				conlog.Warnf("Can't watch %s: %v", f, err)
			}
		}
	}
	run()
	add()

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				conlog.SafePrintf("%s changed", e.Name)
				timer = time.After(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			conlog.Warnf("watch: %v", err)
		case <-timer:
			timer = nil
			run()
			// editors replace files on save, which drops the watch
			add()
		}
	}
}

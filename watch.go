package inkwell

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long Watch waits after the last change before
// calling back.
const DefaultDebounce = 500 * time.Millisecond

// Watch watches dirs and their subdirectories, calling fn once changes
// settle for debounce. Directories created later are watched as well.
// Missing dirs are skipped. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, log zerolog.Logger, dirs []string, debounce time.Duration, fn func(ctx context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, root := range dirs {
		if err := addTree(watcher, root); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug().Str("dir", root).Msg("not watching missing directory")
				continue
			}
			return err
		}
		log.Debug().Str("dir", root).Msg("watching")
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug().Str("path", event.Name).Stringer("op", event.Op).Msg("change detected")
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := addTree(watcher, event.Name); err != nil {
					log.Warn().Err(err).Str("dir", event.Name).Msg("watch new directory")
				}
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		case <-timer.C:
			fn(ctx)
		}
	}
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

package lilfast

import (
	"context"
	"fmt"
	"image"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchBackground watches the image file at path and calls fn with the decoded
// image every time the file is written or re-created. Files that cannot be
// decoded are reported and skipped, so the current background stays in place.
// It blocks until ctx is cancelled.
func WatchBackground(ctx context.Context, path string, fn func(image.Image)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create the file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file instead of writing it in place,
	// so the parent directory is watched rather than the file itself.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("could not watch %s: %w", abs, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			img, err := LoadImage(abs)
			if err != nil {
				log.Printf("could not reload the background image: %v", err)
				continue
			}
			fn(img)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("background watcher error: %v", err)
		}
	}
}

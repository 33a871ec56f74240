package lilfast

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsBackground(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, solidImage(8, 8, black)), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	images := make(chan image.Image, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- WatchBackground(ctx, path, func(img image.Image) {
			images <- img
		})
	}()

	updated := encodePNG(t, solidImage(20, 10, red))
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(5 * time.Second)

	// The watcher is registered asynchronously, so keep rewriting until it reports.
	for {
		select {
		case img := <-images:
			if img.Bounds().Dx() != 20 {
				continue
			}
			assert.Equal(t, 10, img.Bounds().Dy())

			cancel()
			assert.ErrorIs(t, <-errc, context.Canceled)
			return
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, updated, 0644))
		case <-timeout:
			t.Fatal("the background change was not reported")
		}
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := WatchBackground(context.Background(), filepath.Join(t.TempDir(), "nope", "bg.png"), func(image.Image) {})
	assert.Error(t, err)
}

package lilfast

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSession(t *testing.T, s *Session) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- s.Run(ctx)
	}()
	t.Cleanup(cancel)

	return cancel, errc
}

func TestSession_EventsAreSerialized(t *testing.T) {
	s := NewSession(NewCanvas(CanvasSize, CanvasSize), DefaultStyle())
	startSession(t, s)

	ctx := context.Background()
	events := []any{
		down(10, 10),
		move(50, 10),
		StyleEvent{Style: pen(red, BrushMedium)},
		move(50, 50),
		up(50, 50),
	}
	for _, ev := range events {
		require.NoError(t, s.Post(ctx, ev))
	}

	img, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, black, img.NRGBAAt(30, 10))
	assert.Equal(t, red, img.NRGBAAt(50, 30))
}

func TestSession_ConcurrentPosts(t *testing.T) {
	s := NewSession(NewCanvas(CanvasSize, CanvasSize), DefaultStyle())
	startSession(t, s)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if j%2 == 0 {
					assert.NoError(t, s.Post(ctx, ClearStrokesEvent{}))
				} else {
					_, err := s.Export(ctx)
					assert.NoError(t, err)
				}
			}
		}(i)
	}
	wg.Wait()

	img, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, isUniform(img, white))
}

func TestSession_OnRender(t *testing.T) {
	var (
		mu     sync.Mutex
		frames []*image.NRGBA
	)
	s := NewSession(NewCanvas(CanvasSize, CanvasSize), DefaultStyle())
	s.OnRender = func(img *image.NRGBA) {
		mu.Lock()
		defer mu.Unlock()
		frames = append(frames, img)
	}
	startSession(t, s)

	ctx := context.Background()
	require.NoError(t, s.Post(ctx, move(20, 20))) // hover, no render
	require.NoError(t, s.Post(ctx, down(10, 10))) // no segment yet
	require.NoError(t, s.Post(ctx, move(50, 50)))
	require.NoError(t, s.Post(ctx, BackgroundEvent{Image: solidImage(8, 8, red)}))

	_, err := s.Snapshot(ctx)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, frames, 3)
	assert.True(t, isUniform(frames[0], white))
	assert.Equal(t, black, frames[1].NRGBAAt(30, 30))
	assert.NotSame(t, frames[1], frames[2])
}

func TestSession_Export(t *testing.T) {
	s := NewSession(NewCanvas(CanvasSize, CanvasSize), DefaultStyle())
	startSession(t, s)

	ctx := context.Background()
	require.NoError(t, s.Post(ctx, down(10, 10)))
	require.NoError(t, s.Post(ctx, move(50, 50)))

	data, err := s.Export(ctx)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, CanvasSize, CanvasSize), img.Bounds())

	r, g, b, a := img.At(30, 30).RGBA()
	assert.Equal(t, []uint32{0, 0, 0, 0xffff}, []uint32{r, g, b, a})
}

func TestSession_Closed(t *testing.T) {
	s := NewSession(NewCanvas(CanvasSize, CanvasSize), DefaultStyle())
	cancel, errc := startSession(t, s)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}

	ctx := context.Background()
	assert.ErrorIs(t, s.Post(ctx, ClearStrokesEvent{}), ErrSessionClosed)
	_, err := s.Export(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

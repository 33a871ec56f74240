package lilfast

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	drawing := encodePNG(t, solidImage(CanvasSize, CanvasSize, white))
	generated := encodePNG(t, solidImage(64, 32, red))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		file, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		assert.NoError(t, err)
		assert.Equal(t, drawing, data)
		assert.Equal(t, "drawing.png", hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "a red barn", r.FormValue("prompt"))
		assert.Equal(t, "10", r.FormValue("num_iterations"))

		w.Header().Set("Content-Type", "image/png")
		w.Write(generated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	res, err := c.Generate(context.Background(), Request{
		Image:      drawing,
		Prompt:     "a red barn",
		Iterations: QualityEnhanced,
	})
	require.NoError(t, err)

	assert.Equal(t, generated, res.Data)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, 64, res.Image.Bounds().Dx())
	assert.Equal(t, 32, res.Image.Bounds().Dy())
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Generate(context.Background(), Request{Image: []byte{1}, Iterations: 1})

	assert.ErrorIs(t, err, ErrServerResponse)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_InvalidImageResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not an image"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Generate(context.Background(), Request{Image: []byte{1}, Iterations: 1})

	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestClient_DefaultEndpoint(t *testing.T) {
	c := NewClient("", 0)
	assert.Equal(t, DefaultEndpoint, c.Endpoint)
}

func TestClient_FailedSubmitKeepsCanvas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSession(NewCanvas(CanvasSize, CanvasSize), DefaultStyle())
	startSession(t, s)

	ctx := context.Background()
	require.NoError(t, s.Post(ctx, down(10, 10)))
	require.NoError(t, s.Post(ctx, move(50, 50)))
	before, err := s.Export(ctx)
	require.NoError(t, err)

	_, err = s.Submit(ctx, NewClient(srv.URL, 5*time.Second), "prompt", DefaultIterations)
	assert.ErrorIs(t, err, ErrServerResponse)

	after, err := s.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

package lilfast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"
)

// DefaultEndpoint is the inference service the drawings are submitted to.
const DefaultEndpoint = "https://lightnote-ai--img-model-inference.modal.run"

// maxResultSize caps the size of the generated image accepted from the server.
const maxResultSize = 32 << 20

// ErrServerResponse is returned when the inference service answers with a non-2xx status.
var ErrServerResponse = errors.New("server response was not ok")

// Request is a drawing submission.
type Request struct {
	// Image is the PNG encoded canvas.
	Image      []byte
	Prompt     string
	Iterations int
}

// Result is the image generated by the inference service.
type Result struct {
	Data        []byte
	ContentType string
	Image       image.Image
}

// Client submits drawings to the image generation service.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewClient returns a client for endpoint. A zero timeout means no timeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Generate posts the drawing as multipart/form-data with the fields image,
// prompt and num_iterations, and decodes the image sent back.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	body, contentType, err := encodeForm(req)
	if err != nil {
		return nil, err
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("could not create the request: %w", err)
	}
	hreq.Header.Set("Content-Type", contentType)

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	res, err := hc.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("could not reach the inference server: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 1<<10))
		return nil, fmt.Errorf("%w: %s", ErrServerResponse, res.Status)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResultSize))
	if err != nil {
		return nil, fmt.Errorf("could not read the generated image: %w", err)
	}
	img, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode the generated image: %w", err)
	}

	return &Result{
		Data:        data,
		ContentType: res.Header.Get("Content-Type"),
		Image:       img,
	}, nil
}

func encodeForm(req Request) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="drawing.png"`)
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("prompt", req.Prompt); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("num_iterations", strconv.Itoa(req.Iterations)); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

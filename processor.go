package lilfast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/lilfast/lilfast/utils"
)

// Processor options
type Processor struct {
	// Script is replayed over the background of every processed image.
	Script     Script
	Style      Style
	Filter     imaging.ResampleFilter
	Prompt     string
	Iterations int
	// Submit sends every composite to the inference service through Client.
	Submit  bool
	Client  *Client
	Spinner *utils.Spinner
}

// NewProcessor returns a Processor configured from cfg.
func NewProcessor(cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st, _ := cfg.Style()
	filter, _ := FilterByName(cfg.Filter)

	return &Processor{
		Style:      st,
		Filter:     filter,
		Prompt:     cfg.Prompt,
		Iterations: cfg.Iterations,
		Client:     NewClient(cfg.Endpoint, cfg.RequestTimeout()),
	}, nil
}

// Compose creates a canvas, sets bg as its background when not nil and replays the script.
func (p *Processor) Compose(bg image.Image) (*Canvas, error) {
	c := NewCanvas(CanvasSize, CanvasSize)
	c.SetFilter(p.Filter)
	if bg != nil {
		c.SetBackground(bg)
	}
	if _, err := p.Script.Replay(c, p.Style); err != nil {
		return nil, err
	}
	return c, nil
}

// Process decodes the background image from r, draws the script over it and
// encodes the composite into w. A nil reader means no background.
// We are using the io package, since we can provide different input and output types,
// as long as they implement the io.Reader and io.Writer interface.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	_, err := p.process(r, w)
	return err
}

func (p *Processor) process(r io.Reader, w io.Writer) (*Canvas, error) {
	var bg image.Image
	if r != nil {
		img, err := DecodeImage(r)
		if err != nil {
			return nil, err
		}
		bg = img
	}

	c, err := p.Compose(bg)
	if err != nil {
		return nil, err
	}
	if err := EncodeImage(w, c.Visible()); err != nil {
		return nil, fmt.Errorf("could not encode the composite: %w", err)
	}
	return c, nil
}

// Generate submits the canvas with the configured prompt and number of iterations.
func (p *Processor) Generate(ctx context.Context, c *Canvas) (*Result, error) {
	if p.Client == nil {
		return nil, errors.New("no inference client configured")
	}
	var buf bytes.Buffer
	if err := c.Export(&buf); err != nil {
		return nil, fmt.Errorf("could not encode the canvas: %w", err)
	}

	iterations := p.Iterations
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return p.Client.Generate(ctx, Request{
		Image:      buf.Bytes(),
		Prompt:     p.Prompt,
		Iterations: iterations,
	})
}

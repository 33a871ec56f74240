// Package gui implements the interactive drawing window on top of Gio.
// Pointer and key events are forwarded to a lilfast.Session; the window
// only paints the composites the session hands back.
package gui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"sync"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/font/gofont"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/lilfast/lilfast"
	"github.com/lilfast/lilfast/utils"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// padding around the canvas and the generated image, in dp.
const padding = 16

var (
	defaultBkgColor  = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	defaultTextColor = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
)

// Options configures the window.
type Options struct {
	Title      string
	Prompt     string
	Iterations int
	// ResultPath, if set, is where every generated image is saved.
	ResultPath string
	Style      lilfast.Style
}

// Gui is the basic struct containing all of the information needed for the UI operation.
// The composites are produced by the session goroutine and transferred through OnRender.
type Gui struct {
	cfg    Options
	sess   *lilfast.Session
	client *lilfast.Client
	win    *app.Window
	th     *material.Theme

	// Owned by the window goroutine.
	origin   image.Point
	style    lilfast.Style
	hover    f32.Point
	hovering bool
	shown    *image.NRGBA
	frameOp  paint.ImageOp
	genOp    paint.ImageOp
	genShown image.Image

	mu struct {
		sync.Mutex
		frame     *image.NRGBA
		generated image.Image
		status    string
		busy      bool
	}
}

// New creates the window for sess. It installs the session's OnRender hook,
// so it has to be called before the session is started.
func New(sess *lilfast.Session, client *lilfast.Client, opts Options) *Gui {
	if opts.Title == "" {
		opts.Title = "lilfast"
	}
	if opts.Iterations <= 0 {
		opts.Iterations = lilfast.DefaultIterations
	}
	if opts.Style.Width <= 0 {
		opts.Style = lilfast.DefaultStyle()
	}

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	th.Palette.Fg = defaultTextColor

	g := &Gui{
		cfg:    opts,
		sess:   sess,
		client: client,
		win:    new(app.Window),
		th:     th,
		style:  opts.Style,
	}
	g.mu.status = "Draw on the canvas. Enter: generate, C: clear drawing, B: clear background, 1-3: brush size, Esc: quit"

	size := lilfast.CanvasSize
	g.win.Option(
		app.Title(opts.Title),
		app.Size(unit.Dp(2*size+3*padding), unit.Dp(size+4*padding)),
	)
	sess.OnRender = g.onRender

	return g
}

// onRender receives the composites from the session goroutine.
func (g *Gui) onRender(img *image.NRGBA) {
	g.mu.Lock()
	g.mu.frame = img
	g.mu.Unlock()

	g.win.Invalidate()
}

// Run is the core method of the Gio GUI application. It processes the window
// events until the window is closed and must not be called from the main goroutine.
func (g *Gui) Run(ctx context.Context) error {
	var ops op.Ops

	for {
		switch e := g.win.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			origin := image.Pt(gtx.Dp(padding), gtx.Dp(padding))
			if origin != g.origin {
				g.origin = origin
				g.post(ctx, lilfast.OriginEvent{Origin: lilfast.Pt(float64(origin.X), float64(origin.Y))})
			}

			g.handleKeys(ctx, gtx)
			g.handlePointer(ctx, gtx)
			g.draw(gtx)

			e.Frame(gtx.Ops)
		}
	}
}

func (g *Gui) post(ctx context.Context, ev any) {
	if err := g.sess.Post(ctx, ev); err != nil {
		log.Printf("could not deliver the %T event: %v", ev, err)
	}
}

// handlePointer forwards the pointer events of the canvas area to the session.
// Positions are in window coordinates; the session converts them with the canvas origin.
func (g *Gui) handlePointer(ctx context.Context, gtx C) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: g,
			Kinds: pointer.Press | pointer.Drag | pointer.Release | pointer.Move |
				pointer.Enter | pointer.Leave | pointer.Cancel,
		})
		if !ok {
			return
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		client := lilfast.Pt(float64(e.Position.X), float64(e.Position.Y))
		g.hover = e.Position

		switch e.Kind {
		case pointer.Press:
			if e.Buttons.Contain(pointer.ButtonPrimary) {
				g.post(ctx, lilfast.PointerEvent{Type: lilfast.PointerDown, Client: client})
			}
		case pointer.Drag, pointer.Move:
			g.hovering = true
			g.post(ctx, lilfast.PointerEvent{Type: lilfast.PointerMove, Client: client})
		case pointer.Release:
			g.post(ctx, lilfast.PointerEvent{Type: lilfast.PointerUp, Client: client})
		case pointer.Enter:
			g.hovering = true
		case pointer.Leave, pointer.Cancel:
			g.hovering = false
			g.post(ctx, lilfast.PointerEvent{Type: lilfast.PointerLeave, Client: client})
		}
	}
}

// handleKeys maps the keyboard shortcuts to session events.
func (g *Gui) handleKeys(ctx context.Context, gtx C) {
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: key.NameEscape},
			key.Filter{Name: key.NameReturn},
			key.Filter{Name: "C"},
			key.Filter{Name: "B"},
			key.Filter{Name: "1"},
			key.Filter{Name: "2"},
			key.Filter{Name: "3"},
		)
		if !ok {
			return
		}
		e, ok := ev.(key.Event)
		if !ok || e.State != key.Press {
			continue
		}

		switch e.Name {
		case key.NameEscape:
			g.win.Perform(system.ActionClose)
		case key.NameReturn:
			g.submit(ctx)
		case "C":
			g.post(ctx, lilfast.ClearStrokesEvent{})
		case "B":
			g.post(ctx, lilfast.ClearBackgroundEvent{})
		case "1", "2", "3":
			widths := map[key.Name]float64{
				"1": lilfast.BrushSmall,
				"2": lilfast.BrushMedium,
				"3": lilfast.BrushLarge,
			}
			g.style.Width = widths[e.Name]
			g.post(ctx, lilfast.StyleEvent{Style: g.style})
			g.setStatus(fmt.Sprintf("Brush: %s", g.style))
		}
	}
}

// submit sends the current drawing to the inference service in the background.
// Failures are reported on the status line and leave the drawing untouched.
func (g *Gui) submit(ctx context.Context) {
	g.mu.Lock()
	if g.mu.busy {
		g.mu.Unlock()
		return
	}
	g.mu.busy = true
	g.mu.status = "Generating image..."
	g.mu.Unlock()

	go func() {
		res, err := g.sess.Submit(ctx, g.client, g.cfg.Prompt, g.cfg.Iterations)

		g.mu.Lock()
		g.mu.busy = false
		if err != nil {
			log.Printf("%s", utils.DecorateText(fmt.Sprintf("image generation failed: %v", err), utils.ErrorMessage))
			g.mu.status = "Failed to generate image. Please try again."
		} else {
			g.mu.generated = res.Image
			g.mu.status = "Generated image received."
		}
		g.mu.Unlock()

		if err == nil && g.cfg.ResultPath != "" {
			if err := os.WriteFile(g.cfg.ResultPath, res.Data, 0644); err != nil {
				g.setStatus(fmt.Sprintf("Could not save the generated image: %v", err))
			}
		}
		g.win.Invalidate()
	}()
}

func (g *Gui) setStatus(msg string) {
	g.mu.Lock()
	g.mu.status = msg
	g.mu.Unlock()
}

// draw paints the composite, the brush outline, the generated image and the status line.
func (g *Gui) draw(gtx C) {
	g.mu.Lock()
	frame, generated, status := g.mu.frame, g.mu.generated, g.mu.status
	g.mu.Unlock()

	paint.Fill(gtx.Ops, defaultBkgColor)

	size := image.Pt(lilfast.CanvasSize, lilfast.CanvasSize)
	canvasRect := image.Rectangle{Min: g.origin, Max: g.origin.Add(size)}

	if frame != nil {
		if frame != g.shown {
			g.shown = frame
			g.frameOp = paint.NewImageOp(frame)
		}
		off := op.Offset(g.origin).Push(gtx.Ops)
		g.frameOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		off.Pop()
	}

	// The input area covers the canvas only, so leaving it ends the stroke.
	area := clip.Rect(canvasRect).Push(gtx.Ops)
	event.Op(gtx.Ops, g)
	pointer.CursorCrosshair.Add(gtx.Ops)
	area.Pop()

	if g.hovering {
		g.drawBrush(gtx, g.hover, float32(g.style.Width))
	}

	if generated != nil {
		if generated != g.genShown {
			g.genShown = generated
			g.genOp = paint.NewImageOp(generated)
		}
		genOrigin := image.Pt(canvasRect.Max.X+g.origin.X, g.origin.Y)
		off := op.Offset(genOrigin).Push(gtx.Ops)
		cgtx := gtx
		cgtx.Constraints = layout.Exact(size)
		widget.Image{
			Src: g.genOp,
			Fit: widget.Contain,
		}.Layout(cgtx)
		off.Pop()
	}

	off := op.Offset(image.Pt(g.origin.X, canvasRect.Max.Y+g.origin.Y/2)).Push(gtx.Ops)
	material.Body2(g.th, status).Layout(gtx)
	off.Pop()
}

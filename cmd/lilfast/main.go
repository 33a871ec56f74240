package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/lilfast/lilfast"
	"github.com/lilfast/lilfast/gui"
	"github.com/lilfast/lilfast/utils"
)

const HelpBanner = `
┬  ┬┬  ┌─┐┌─┐┌─┐┌┬┐
│  ││  ├┤ ├─┤└─┐ │
┴─┘┴┴─┘└  ┴ ┴└─┘ ┴

Sketch to image canvas.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source     = flag.String("bg", "", "Background image: file, directory, URL or - for stdin")
	strokes    = flag.String("strokes", "", "Stroke script (JSON) replayed over the background")
	dest       = flag.String("out", pipeName, "Destination of the composite (directory in batch mode)")
	result     = flag.String("result", "", "Destination of the generated image (directory in batch mode)")
	prompt     = flag.String("prompt", "", "Text prompt sent with the drawing")
	iterations = flag.Int("iter", lilfast.DefaultIterations, "Number of inference iterations")
	quality    = flag.String("quality", "", "Quality preset: rapid or enhanced (overrides -iter)")
	endpoint   = flag.String("endpoint", lilfast.DefaultEndpoint, "Inference service URL")
	submit     = flag.Bool("submit", false, "Submit the composite to the inference service")
	showGui    = flag.Bool("gui", false, "Open the drawing window")
	watch      = flag.Bool("watch", false, "Reload the background when the file changes (with -gui)")
	penColor   = flag.String("color", lilfast.DefaultColor, "Pen color (#rgb, #rrggbb or #rrggbbaa)")
	brush      = flag.String("brush", "medium", "Brush size: small, medium, large or a width in pixels")
	filter     = flag.String("filter", "lanczos", "Background resampling filter")
	timeout    = flag.Int("timeout", 120, "Inference request timeout in seconds")
	workers    = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	config     = flag.String("config", "", "TOML configuration file")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *showGui {
		runGui(ctx, cfg)
		return
	}

	proc, err := lilfast.NewProcessor(cfg)
	if err != nil {
		log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
	}
	if *strokes != "" {
		if proc.Script, err = lilfast.LoadScript(*strokes); err != nil {
			log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
		}
	}
	proc.Submit = *submit

	if *submit && *dest != pipeName {
		spinnerText := fmt.Sprintf("%s %s",
			utils.DecorateText("✎ LILFAST", utils.StatusMessage),
			utils.DecorateText("is generating the image...", utils.DefaultMessage))
		proc.Spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)
	}

	op := &lilfast.Ops{
		Src:      *source,
		Dst:      *dest,
		Result:   *result,
		PipeName: pipeName,
		Workers:  *workers,
	}
	if err := proc.Execute(ctx, op); err != nil {
		if proc.Spinner != nil {
			proc.Spinner.RestoreCursor()
		}
		log.Fatalf(
			utils.DecorateText("\nError processing the image: %s", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
	}
}

// loadConfig merges the defaults, the optional config file and the flags set
// explicitly on the command line, in this order.
func loadConfig() (lilfast.Config, error) {
	cfg := lilfast.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = lilfast.LoadConfig(*config); err != nil {
			return cfg, err
		}
	}

	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "endpoint":
			cfg.Endpoint = *endpoint
		case "prompt":
			cfg.Prompt = *prompt
		case "iter":
			cfg.Iterations = *iterations
		case "color":
			cfg.Color = *penColor
		case "filter":
			cfg.Filter = *filter
		case "timeout":
			cfg.Timeout = *timeout
		case "brush":
			cfg.Brush, err = parseBrush(*brush)
		}
	})
	if err != nil {
		return cfg, err
	}
	if *quality != "" {
		n, ok := lilfast.QualityPreset(*quality)
		if !ok {
			return cfg, fmt.Errorf("unknown quality preset %q", *quality)
		}
		cfg.Iterations = n
	}
	return cfg, cfg.Validate()
}

// parseBrush accepts a preset name or a width in pixels.
func parseBrush(s string) (float64, error) {
	if w, ok := lilfast.BrushPreset(s); ok {
		return w, nil
	}
	var w float64
	if _, err := fmt.Sscanf(s, "%g", &w); err != nil || w <= 0 {
		return 0, fmt.Errorf("%w: %q", lilfast.ErrInvalidBrush, s)
	}
	return w, nil
}

// runGui opens the drawing window. The window, the session and the optional
// background watcher run on their own goroutines, while app.Main takes over
// the main goroutine.
func runGui(ctx context.Context, cfg lilfast.Config) {
	st, err := cfg.Style()
	if err != nil {
		log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
	}
	filter, _ := lilfast.FilterByName(cfg.Filter)

	canvas := lilfast.NewCanvas(lilfast.CanvasSize, lilfast.CanvasSize)
	canvas.SetFilter(filter)
	if *source != "" {
		bg, err := loadBackground(ctx, *source)
		if err != nil {
			log.Fatalf(
				utils.DecorateText("Failed to load the background image: %v", utils.ErrorMessage),
				utils.DecorateText(err.Error(), utils.DefaultMessage),
			)
		}
		canvas.SetBackground(bg)
	}
	if *strokes != "" {
		script, err := lilfast.LoadScript(*strokes)
		if err != nil {
			log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
		}
		if st, err = script.Replay(canvas, st); err != nil {
			log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
		}
	}

	sess := lilfast.NewSession(canvas, st)
	client := lilfast.NewClient(cfg.Endpoint, cfg.RequestTimeout())
	w := gui.New(sess, client, gui.Options{
		Title:      "lilfast",
		Prompt:     cfg.Prompt,
		Iterations: cfg.Iterations,
		ResultPath: *result,
		Style:      st,
	})

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		if err := sess.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("session stopped: %v", err)
		}
	}()

	if *watch && *source != "" && !utils.IsValidUrl(*source) && *source != pipeName {
		go func() {
			err := lilfast.WatchBackground(ctx, *source, func(img image.Image) {
				if err := sess.Post(ctx, lilfast.BackgroundEvent{Image: img}); err != nil {
					log.Printf("could not update the background: %v", err)
				}
			})
			if err != nil && err != context.Canceled {
				log.Printf("%s", utils.DecorateText(err.Error(), utils.ErrorMessage))
			}
		}()
	}

	go func() {
		err := w.Run(ctx)
		cancel()
		if err != nil {
			log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// loadBackground reads the background from a file, an URL or stdin.
func loadBackground(ctx context.Context, src string) (image.Image, error) {
	switch {
	case src == pipeName:
		return lilfast.DecodeImage(os.Stdin)
	case utils.IsValidUrl(src):
		f, err := utils.DownloadImage(ctx, src)
		if err != nil {
			return nil, err
		}
		defer os.Remove(f.Name())
		defer f.Close()
		return lilfast.DecodeImage(f)
	}
	return lilfast.LoadImage(src)
}

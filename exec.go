package lilfast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/lilfast/lilfast/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// Ops describes where the backgrounds come from and where the results go.
type Ops struct {
	// Src is the background: a file, a directory, an URL, the pipe name or empty for none.
	Src string
	// Dst receives the composite, or one composite per image when Src is a directory.
	Dst string
	// Result receives the generated image, or one per image when Src is a directory.
	Result   string
	PipeName string
	Workers  int
}

// result holds the relevant information about a processed image.
type result struct {
	path string
	err  error
}

// Execute composes the drawing over the backgrounds described by op and,
// when requested, submits every composite. Directories are processed
// concurrently, every worker owning its own canvas.
func (p *Processor) Execute(ctx context.Context, op *Ops) error {
	src := op.Src

	// Check if the source path is an URL.
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(ctx, src)
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		defer os.Remove(f.Name())
		if err := f.Close(); err != nil {
			log.Printf("could not close the downloaded file: %v", err)
		}
		src = f.Name()
	}

	if p.Spinner != nil {
		p.Spinner.Start()
		defer p.Spinner.Stop()
	}
	now := time.Now()

	if src == "" || src == op.PipeName {
		if err := op.process(ctx, p, src, op.Dst, op.Result); err != nil {
			return err
		}
		op.printOpStatus(op.Dst, now)
		return nil
	}

	fs, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	switch mode := fs.Mode(); {
	case mode.IsDir():
		return op.batch(ctx, p, src, now)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0:
		if err := op.process(ctx, p, src, op.Dst, op.Result); err != nil {
			return err
		}
		op.printOpStatus(op.Dst, now)
	}
	return nil
}

// batch processes every supported image of the src directory with a bounded worker pool.
func (op *Ops) batch(ctx context.Context, p *Processor, src string, now time.Time) error {
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}
	if p.Submit && op.Result != "" {
		if err := os.MkdirAll(op.Result, 0755); err != nil {
			return fmt.Errorf("unable to create the result directory: %w", err)
		}
	}

	// Limit the concurrently running workers to maxWorkers.
	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	ch := make(chan result)
	done := make(chan interface{})
	defer close(done)

	paths, errc := walkDir(done, src, op.Dst, op.Result)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(ctx, p, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var processed, failed int
	for res := range ch {
		processed++
		if p.Spinner != nil {
			p.Spinner.SetMessage(fmt.Sprintf("%s %s",
				utils.DecorateText("✎ LILFAST", utils.StatusMessage),
				utils.DecorateText(fmt.Sprintf("%d image(s) processed...", processed), utils.DefaultMessage)))
		}
		if res.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "\n%s %s\n",
				utils.DecorateText(filepath.Base(res.path), utils.StatusMessage),
				utils.DecorateText(res.err.Error(), utils.ErrorMessage),
			)
		}
	}
	if err := <-errc; err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d image(s) could not be processed", failed)
	}
	op.printOpStatus(op.Dst, now)
	return nil
}

// consumer reads the path names from the paths channel and processes every image.
func (op *Ops) consumer(
	ctx context.Context,
	p *Processor,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		base := filepath.Base(src)
		var resPath string
		if op.Result != "" {
			resPath = filepath.Join(op.Result, base)
		}
		err := op.process(ctx, p, src, filepath.Join(op.Dst, base), resPath)

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// process composes a single image and submits it if requested.
func (op *Ops) process(ctx context.Context, p *Processor, in, out, resPath string) error {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	c, err := p.process(src, dst)
	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			// remove the generated image file in case of an error
			os.Remove(f.Name())
		}
	}
	if err != nil {
		return err
	}

	if !p.Submit {
		return nil
	}
	res, err := p.Generate(ctx, c)
	if err != nil {
		return err
	}
	if resPath == "" {
		return nil
	}
	if err := os.WriteFile(resPath, res.Data, 0644); err != nil {
		return fmt.Errorf("unable to save the generated image: %w", err)
	}
	return nil
}

// pathToFile converts the source and destination paths to readable and writable files.
// An empty source means no background.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)

	// Check if the source is a pipe name or a regular file.
	switch in {
	case "":
	case op.PipeName:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	default:
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		if ext := filepath.Ext(out); ext != "" && !IsSupportedExt(ext) {
			return nil, nil, fmt.Errorf("%v file type not supported", ext)
		}
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the finished operation.
func (op *Ops) printOpStatus(fname string, start time.Time) {
	if fname != op.PipeName {
		fmt.Fprintf(os.Stderr, "\nThe image has been saved as: %s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
	fmt.Fprintf(os.Stderr, "Execution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(start)), utils.SuccessMessage))
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported image to a new channel.
// It finishes in case the done channel is getting closed.
// The skip directories (the output locations) are not descended into.
func walkDir(
	done <-chan interface{},
	src string,
	skip ...string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if f.IsDir() && path != src && isSkipped(path, skip) {
				return filepath.SkipDir
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !IsSupportedExt(filepath.Ext(f.Name())) || strings.HasPrefix(f.Name(), ".") {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isSkipped reports whether dir is one of the skip directories.
func isSkipped(dir string, skip []string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	for _, s := range skip {
		if s == "" {
			continue
		}
		if sa, err := filepath.Abs(s); err == nil && sa == abs {
			return true
		}
	}
	return false
}

package seamcarve

import (
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/seamcarve/utils"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

var (
	// srcExtensions lists the image file extensions which can be decoded.
	srcExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff", ".webp"}
	// dstExtensions lists the image file extensions which can be encoded.
	dstExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff"}
)

// fallbackExt replaces the extension of the images which can be read but not written.
const fallbackExt = ".png"

// Ops holds the source and destination of a resize operation.
// Src can be a file, a directory, an URL or the pipe name.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
	// Stderr receives the progress indicator and the status messages.
	Stderr io.Writer

	spinner *utils.Spinner
}

// result holds the relevant information about the resizing process and the generated image.
type result struct {
	path string
	err  error
}

// Execute executes the image resizing process. A directory source is walked
// recursively and its images are resized concurrently by a pool of workers.
func (op *Ops) Execute(p *Processor) error {
	if op.Stderr == nil {
		op.Stderr = os.Stderr
	}
	msg := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ SEAMCARVE", utils.StatusMessage),
		utils.DecorateText("⇢ carving seams (be patient, it may take a while)...", utils.DefaultMessage),
	)
	op.spinner = utils.NewSpinner(op.Stderr, msg, 80*time.Millisecond, true)

	// Capture CTRL-C signal and restore back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalChan)
		close(signalChan)
	}()
	go func() {
		if _, ok := <-signalChan; ok {
			op.spinner.RestoreCursor()
			os.Exit(1)
		}
	}()

	src := op.Src
	// Check if the source path is a local image or URL.
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(src)
		if f != nil {
			defer os.Remove(f.Name())
			f.Close()
		}
		if err != nil {
			return errors.Wrap(err, "failed to load the source image")
		}
		src = f.Name()
	}

	var (
		fs  os.FileInfo
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		return errors.Wrap(err, "failed to load the source image")
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		err = op.executeDir(p, src)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || src == op.PipeName:
		ext := strings.ToLower(filepath.Ext(op.Dst))
		if !utils.Contains(dstExtensions, ext) && op.Dst != op.PipeName {
			return errors.Errorf("%v file type not supported", ext)
		}
		op.spinner.Start()
		err = op.process(p, src, op.Dst)
		op.stopSpinner(err)
		op.printOpStatus(op.Dst, err)
	default:
		return errors.Errorf("unsupported source: %s", src)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(op.Stderr, "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// executeDir resizes the images found in the src directory tree and
// saves them in the destination directory. It returns the first failure.
func (op *Ops) executeDir(p *Processor, src string) error {
	if _, err := os.Stat(op.Dst); err != nil {
		if err := os.MkdirAll(op.Dst, 0755); err != nil {
			return errors.Wrap(err, "unable to create the destination directory")
		}
	}

	// Limit the concurrently running workers to maxWorkers.
	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	ch := make(chan result)
	done := make(chan struct{})
	defer close(done)

	paths, errc := walkDir(done, src, srcExtensions)

	op.spinner.Start()
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(p, src, op.Dst, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	// Consume the channel values.
	var results []result
	for res := range ch {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		results = append(results, res)
	}
	op.stopSpinner(firstErr)

	for _, res := range results {
		op.printOpStatus(res.path, res.err)
	}
	if err := <-errc; err != nil {
		return err
	}
	return firstErr
}

// consumer reads the path names from the paths channel and calls the resizing processor against the source image.
func (op *Ops) consumer(
	p *Processor,
	root, dest string,
	res chan<- result,
	done <-chan struct{},
	paths <-chan string,
) {
	for src := range paths {
		dst, err := dstPath(root, dest, src)
		if err == nil {
			err = os.MkdirAll(filepath.Dir(dst), 0755)
		}
		if err == nil {
			err = op.process(p, src, dst)
		}

		select {
		case <-done:
			return
		case res <- result{
			path: dst,
			err:  errors.Wrap(err, src),
		}:
		}
	}
}

// process calls the resizer method over the source image and returns the error in case exists.
// Every call works on its own copy of the processor, since the debug mask is per image.
func (op *Ops) process(p *Processor, in, out string) error {
	proc := *p

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

	err = proc.Process(src, dst)
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

	if proc.Debug && proc.DebugMask != nil && out != op.PipeName {
		return writeMask(maskPath(out), &proc)
	}
	return nil
}

// dstPath mirrors the location of src relative to the root directory under dest.
// Images which cannot be encoded in their source format are saved as PNG.
func dstPath(root, dest, src string) (string, error) {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve the destination path")
	}
	ext := filepath.Ext(rel)
	if !utils.Contains(dstExtensions, strings.ToLower(ext)) {
		rel = strings.TrimSuffix(rel, ext) + fallbackExt
	}
	return filepath.Join(dest, rel), nil
}

// maskPath returns the location of the debug mask belonging to the output file.
func maskPath(out string) string {
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "_mask.png"
}

// writeMask saves the seam debug mask as a PNG image.
func writeMask(path string, p *Processor) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "unable to create the mask file")
	}
	if err := png.Encode(f, p.DebugMask); err != nil {
		f.Close()
		return errors.Wrap(err, "unable to encode the mask file")
	}
	return f.Close()
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		f, err := os.Open(in)
		if err != nil {
			return nil, nil, errors.Wrap(err, "unable to open the source file")
		}
		src = f
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if c, ok := src.(io.Closer); ok && src != os.Stdin {
				c.Close()
			}
			return nil, nil, errors.Wrap(err, "unable to create the destination file")
		}
		dst = f
	}
	return src, dst, nil
}

// stopSpinner stops the progress indicator with a message reflecting the outcome.
func (op *Ops) stopSpinner(err error) {
	if err != nil {
		op.spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ SEAMCARVE", utils.StatusMessage),
			utils.DecorateText("resizing image failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
	} else {
		op.spinner.StopMsg = fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ SEAMCARVE", utils.StatusMessage),
			utils.DecorateText("⇢", utils.DefaultMessage),
			utils.DecorateText("the image has been resized successfully ✔", utils.SuccessMessage),
		)
	}
	op.spinner.Stop()
}

// printOpStatus displays the relevant information about the image resizing process.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(op.Stderr, "%s %s\n",
			utils.DecorateText("Error resizing the image:", utils.ErrorMessage),
			utils.DecorateText(err.Error(), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(op.Stderr, "The image has been saved as: %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported image file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
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
			if !f.Mode().IsRegular() {
				return nil
			}
			if !utils.Contains(srcExts, strings.ToLower(filepath.Ext(f.Name()))) {
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

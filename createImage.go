// createImage.go
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"math"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const jpegQuality = 90

// ImageParams describes one raster export.
type ImageParams struct {
	Frame      Frame
	SVG        SVGOptions
	Format     string  // png, jpg or jpeg
	Engine     string  // native (gg) or chrome (headless browser screenshot of the SVG)
	DPR        float64 // Backing-store scale
	Background string  // Fill for the native engine; empty leaves the canvas transparent
	Chrome     ChromeConfig
}

// generateImage rasterises a frame and writes it in the requested format.
func generateImage(ctx context.Context, params ImageParams, outputWriter io.Writer) error {
	var img image.Image
	var pngBytes []byte
	var err error

	switch params.Engine {
	case "", "native":
		img, err = rasterizeNative(params)
	case "chrome":
		pngBytes, err = rasterizeChrome(ctx, params)
	default:
		return fmt.Errorf("unknown render engine '%s' (supported: native, chrome)", params.Engine)
	}
	if err != nil {
		return err
	}

	switch params.Format {
	case "png":
		if pngBytes != nil {
			// Screenshot is already PNG, just copy it
			if _, err := io.Copy(outputWriter, bytes.NewReader(pngBytes)); err != nil {
				return fmt.Errorf("failed to write PNG screenshot data: %w", err)
			}
			break
		}
		if err := png.Encode(outputWriter, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
	case "jpg", "jpeg":
		if pngBytes != nil {
			img, err = png.Decode(bytes.NewReader(pngBytes))
			if err != nil {
				return fmt.Errorf("failed to decode PNG screenshot: %w", err)
			}
		}
		if err := jpeg.Encode(outputWriter, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return fmt.Errorf("internal error: unsupported image format '%s'", params.Format)
	}

	log.Printf("Successfully encoded %s image using the %s engine.", strings.ToUpper(params.Format), engineName(params.Engine))
	return nil
}

func engineName(engine string) string {
	if engine == "" {
		return "native"
	}
	return engine
}

func rasterizeNative(params ImageParams) (image.Image, error) {
	canvas := NewCanvas(params.Frame.Width, params.Frame.Height, params.DPR)
	if params.Background != "" {
		canvas.Fill = parseColor(params.Background, "#ffffff")
	}
	canvas.PaintFrame(params.Frame)
	img := canvas.Image()
	if img == nil {
		return nil, errEmptyCanvas
	}
	return img, nil
}

// --- Headless Chrome ---

func newChromeContext(ctx context.Context, cfg ChromeConfig) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless, // Ensure it runs headless
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(browserCtx, timeout)

	return runCtx, func() {
		cancelRun()
		cancelBrowser()
		cancelAlloc()
	}
}

// rasterizeChrome screenshots the frame's SVG in a headless browser, which
// renders the real blur filters the native engine approximates.
func rasterizeChrome(ctx context.Context, params ImageParams) ([]byte, error) {
	svgString, err := GenerateSVG(params.Frame, params.SVG)
	if err != nil {
		return nil, fmt.Errorf("failed to generate intermediate SVG: %w", err)
	}

	// A data URI avoids writing a temp file
	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svgString))
	log.Println("Created data URI for SVG.")

	runCtx, cancel := newChromeContext(ctx, params.Chrome)
	defer cancel()

	dpr := params.DPR
	if dpr <= 0 {
		dpr = 1
	}
	var screenshotBuf []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(math.Ceil(params.Frame.Width)), int64(math.Ceil(params.Frame.Height)), chromedp.EmulateScale(dpr)),
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Screenshot(`svg`, &screenshotBuf, chromedp.ByQuery),
	}

	log.Println("Running chromedp tasks (navigate and screenshot)...")
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}
	if len(screenshotBuf) == 0 {
		return nil, fmt.Errorf("screenshot buffer is empty, screenshot failed")
	}
	return screenshotBuf, nil
}

// --- Scroll Probe ---

// ProbeParams describes a live-page geometry probe.
type ProbeParams struct {
	URL            string
	ScrollY        float64
	ViewportWidth  int
	ViewportHeight int
	Chrome         ChromeConfig
}

// probeResult is what the page script returns. Keys match the script exactly.
type probeResult struct {
	Found                 bool    `json:"found"`
	ContainerTop          float64 `json:"containerTop"`
	ContainerScrollHeight float64 `json:"containerScrollHeight"`
	ViewportHeight        float64 `json:"viewportHeight"`
	ViewportWidth         float64 `json:"viewportWidth"`
}

const probeScript = `(() => {
  const el = document.querySelector(%q);
  if (!el) return {found: false};
  const rect = el.getBoundingClientRect();
  return {
    found: true,
    containerTop: rect.top,
    containerScrollHeight: el.scrollHeight,
    viewportHeight: window.innerHeight,
    viewportWidth: window.innerWidth,
  };
})()`

// probeGeometry loads a page, scrolls it and reads the timeline container's
// geometry the same way the page's own scroll handler would.
func probeGeometry(ctx context.Context, params ProbeParams) (Geometry, error) {
	query := params.Chrome.ContainerQuery
	if query == "" {
		query = "#graph"
	}

	runCtx, cancel := newChromeContext(ctx, params.Chrome)
	defer cancel()

	var result probeResult
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(params.ViewportWidth), int64(params.ViewportHeight)),
		chromedp.Navigate(params.URL),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(`window.scrollTo(0, %f)`, params.ScrollY), nil),
		chromedp.Evaluate(fmt.Sprintf(probeScript, query), &result),
	}

	log.Printf("Probing %s at scrollY=%.0f...", params.URL, params.ScrollY)
	if err := chromedp.Run(runCtx, tasks); err != nil {
		return Geometry{}, fmt.Errorf("chromedp probe failed: %w", err)
	}
	if !result.Found {
		return Geometry{}, fmt.Errorf("container '%s' not found on %s", query, params.URL)
	}
	return Geometry{
		ContainerTop:          result.ContainerTop,
		ContainerScrollHeight: result.ContainerScrollHeight,
		ViewportHeight:        result.ViewportHeight,
		ViewportWidth:         result.ViewportWidth,
	}, nil
}

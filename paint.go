package main

import (
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// --- Stroke & Marker Constants ---

const (
	gridLineWidth  = 1.0
	curveLineWidth = 8.0

	curveShadowBlur  = 25.0
	curveShadowAlpha = 0.4
	markerGlowBlur   = 20.0
	shadowPasses     = 6 // Concentric translucent strokes approximating a blur

	markerOuterRadius       = 9.0
	markerInnerRadius       = 5.0
	latestMarkerOuterRadius = 12.0
	latestMarkerInnerRadius = 7.0
	latestRingRadius        = 16.0
	latestRingWidth         = 2.0
)

const gridAlpha = 0.05

var (
	gridColor  = withAlpha(parseColor("#000000", ""), gridAlpha)
	labelColor = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

// --- Canvas ---

// Canvas is a raster drawing surface sized in CSS pixels whose backing store
// is scaled by the device pixel ratio so strokes stay crisp. Its methods may
// be called from several goroutines; each call sees a whole frame.
type Canvas struct {
	mu     sync.Mutex
	dc     *gg.Context
	width  float64
	height float64
	dpr    float64

	// Fill is painted under every frame. Nil leaves the canvas transparent.
	Fill color.Color
}

// NewCanvas allocates a canvas of width x height CSS pixels.
func NewCanvas(width, height, dpr float64) *Canvas {
	c := &Canvas{}
	c.Resize(width, height, dpr)
	return c
}

// Resize reallocates the backing store. Like a browser canvas, resizing
// discards the current pixels; the next Paint redraws everything.
func (c *Canvas) Resize(width, height, dpr float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = math.Max(finiteOr(width, 0), 0)
	c.height = math.Max(finiteOr(height, 0), 0)
	c.dpr = finiteOr(dpr, 1)
	if c.dpr <= 0 {
		c.dpr = 1
	}
	w := int(math.Ceil(c.width * c.dpr))
	h := int(math.Ceil(c.height * c.dpr))
	if w < 1 || h < 1 {
		c.dc = nil
		return
	}
	c.dc = gg.NewContext(w, h)
}

// Size returns the canvas size in CSS pixels.
func (c *Canvas) Size() (width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// DPR returns the device pixel ratio of the backing store.
func (c *Canvas) DPR() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dpr
}

// Image returns the backing store, or nil if the canvas has no pixels.
func (c *Canvas) Image() image.Image {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dc == nil {
		return nil
	}
	return c.dc.Image()
}

// EncodePNG writes the backing store as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if c == nil {
		return errEmptyCanvas
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dc == nil {
		return errEmptyCanvas
	}
	return c.dc.EncodePNG(w)
}

// --- Painting ---

// PaintFrame clears the canvas and draws the frame. A nil or zero-sized
// canvas is skipped for this tick.
func (c *Canvas) PaintFrame(frame Frame) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dc == nil {
		return
	}
	dc := c.dc

	dc.Identity()
	dc.ResetClip()
	dc.ClearPath()
	if c.Fill != nil {
		dc.SetColor(c.Fill)
	} else {
		dc.SetColor(color.Transparent)
	}
	dc.Clear()
	dc.Scale(c.dpr, c.dpr)

	paintGrid(dc, frame.Grid)
	paintSegments(dc, frame.Segments)
	paintMarkers(dc, frame.Markers)
	paintLabels(dc, frame.Labels)
}

func paintGrid(dc *gg.Context, lines []GridLine) {
	dc.SetColor(gridColor)
	dc.SetLineWidth(gridLineWidth)
	for _, l := range lines {
		dc.DrawLine(l.From.X, l.From.Y, l.To.X, l.To.Y)
		dc.Stroke()
	}
}

func traceSegment(dc *gg.Context, s CurveSegment) {
	dc.MoveTo(s.From.X, s.From.Y)
	dc.QuadraticTo(s.Ctrl.X, s.Ctrl.Y, s.To.X, s.To.Y)
}

func paintSegments(dc *gg.Context, segments []CurveSegment) {
	if len(segments) == 0 {
		return
	}
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	// Drop shadow under the whole curve first, then the coloured strokes.
	shadow := parseColor("#000000", "")
	for pass := shadowPasses; pass >= 1; pass-- {
		dc.SetColor(withAlpha(shadow, curveShadowAlpha/shadowPasses))
		dc.SetLineWidth(curveLineWidth + curveShadowBlur*float64(pass)/shadowPasses)
		for _, s := range segments {
			traceSegment(dc, s)
		}
		dc.Stroke()
	}

	dc.SetLineWidth(curveLineWidth)
	for _, s := range segments {
		dc.SetColor(parseColor(s.Color, "#333333"))
		traceSegment(dc, s)
		dc.Stroke()
	}
}

func paintMarkers(dc *gg.Context, markers []Marker) {
	white := color.White
	for _, m := range markers {
		accent := parseColor(m.Color, "#333333")
		outer, inner := markerOuterRadius, markerInnerRadius
		if m.Latest {
			outer, inner = latestMarkerOuterRadius, latestMarkerInnerRadius
			for pass := shadowPasses; pass >= 1; pass-- {
				dc.SetColor(withAlpha(accent, 1.0/shadowPasses))
				dc.DrawCircle(m.Center.X, m.Center.Y, outer+markerGlowBlur*float64(pass)/shadowPasses)
				dc.Fill()
			}
		}

		dc.SetColor(white)
		dc.DrawCircle(m.Center.X, m.Center.Y, outer)
		dc.Fill()

		dc.SetColor(accent)
		dc.DrawCircle(m.Center.X, m.Center.Y, inner)
		dc.Fill()

		if m.Latest {
			dc.SetLineWidth(latestRingWidth)
			dc.DrawCircle(m.Center.X, m.Center.Y, latestRingRadius)
			dc.Stroke()
		}
	}
}

func paintLabels(dc *gg.Context, labels []AxisLabel) {
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(labelColor)
	for _, l := range labels {
		dc.Push()
		if l.Rotation != 0 {
			dc.RotateAbout(l.Rotation, l.At.X, l.At.Y)
		}
		dc.DrawStringAnchored(letterSpaced(l.Text), l.At.X, l.At.Y, 0.5, 0.5)
		dc.Pop()
	}
}

// letterSpaced widens tracking on the bitmap face, which has no spacing control.
func letterSpaced(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes)*2)
	for i, r := range runes {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, r)
	}
	return string(out)
}

package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

func nearColor(t *testing.T, got color.Color, want color.RGBA, tolerance int) {
	t.Helper()
	r, g, b, a := got.RGBA()
	channels := [4][2]int{
		{int(r >> 8), int(want.R)},
		{int(g >> 8), int(want.G)},
		{int(b >> 8), int(want.B)},
		{int(a >> 8), int(want.A)},
	}
	for _, c := range channels {
		if d := c[0] - c[1]; d > tolerance || d < -tolerance {
			t.Errorf("pixel = %v, want %v (±%d)", []int{int(r >> 8), int(g >> 8), int(b >> 8), int(a >> 8)}, want, tolerance)
			return
		}
	}
}

func TestCanvasBackingStoreScalesWithDPR(t *testing.T) {
	tests := []struct {
		width, height, dpr float64
		wantW, wantH       int
	}{
		{300, 200, 1, 300, 200},
		{300, 200, 2, 600, 400},
		{101, 51, 1.5, 152, 77},
	}
	for _, tt := range tests {
		c := NewCanvas(tt.width, tt.height, tt.dpr)
		bounds := c.Image().Bounds()
		if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
			t.Errorf("NewCanvas(%v, %v, %v) backing store = %dx%d, want %dx%d",
				tt.width, tt.height, tt.dpr, bounds.Dx(), bounds.Dy(), tt.wantW, tt.wantH)
		}
		if w, h := c.Size(); w != tt.width || h != tt.height {
			t.Errorf("Size() = %vx%v, want %vx%v", w, h, tt.width, tt.height)
		}
	}
}

func TestCanvasWithoutPixelsIsSkipped(t *testing.T) {
	frame, _ := testFrame(0.5)

	var nilCanvas *Canvas
	nilCanvas.PaintFrame(frame)
	NewTimelineRenderer(DefaultDataset(), DefaultConfig()).Paint(nil, nil, 0.5)

	empty := NewCanvas(0, 0, 1)
	empty.PaintFrame(frame)
	if empty.Image() != nil {
		t.Error("zero-sized canvas has a backing store")
	}
	if err := empty.EncodePNG(&bytes.Buffer{}); err != errEmptyCanvas {
		t.Errorf("EncodePNG on empty canvas = %v, want errEmptyCanvas", err)
	}

	bad := NewCanvas(math.NaN(), 100, -2)
	if bad.DPR() != 1 || bad.Image() != nil {
		t.Errorf("NaN canvas: dpr %v image %v", bad.DPR(), bad.Image())
	}
}

func TestPaintFramePixels(t *testing.T) {
	const dpr = 2
	frame, derived := testFrame(0.5)
	c := NewCanvas(testWidth, testHeight, dpr)
	c.Fill = color.White
	c.PaintFrame(frame)
	img := c.Image()

	nearColor(t, img.At(2, 2), color.RGBA{255, 255, 255, 255}, 0)

	// The latest marker is index 5, a deception point: its centre is the accent.
	latest := derived[5]
	nearColor(t, img.At(int(latest.X*dpr), int(latest.Y*dpr)), color.RGBA{0xff, 0x8c, 0x00, 0xff}, 3)

	// An earlier marker has a white ring around its accent centre.
	first := derived[0]
	nearColor(t, img.At(int(first.X*dpr), int(first.Y*dpr)), color.RGBA{0x1b, 0x74, 0xe4, 0xff}, 3)
	nearColor(t, img.At(int((first.X+7)*dpr), int(first.Y*dpr)), color.RGBA{255, 255, 255, 255}, 3)

	// Unrevealed points leave the canvas untouched.
	hidden := derived[10]
	nearColor(t, img.At(int(hidden.X*dpr), int(hidden.Y*dpr)), color.RGBA{255, 255, 255, 255}, 0)
}

func TestPaintFrameClearsPreviousFrame(t *testing.T) {
	full, derived := testFrame(1)
	empty, _ := testFrame(0)
	c := NewCanvas(testWidth, testHeight, 1)
	c.PaintFrame(full)
	c.PaintFrame(empty)

	// Clear of the grid lines, so only the old marker could have painted here.
	p := derived[10]
	_, _, _, a := c.Image().At(int(p.X), int(p.Y)).RGBA()
	if a != 0 {
		t.Errorf("pixel from the previous frame survived repaint (alpha %d)", a>>8)
	}
}

func TestGenerateImageNative(t *testing.T) {
	frame, _ := testFrame(0.77)
	var buf bytes.Buffer
	err := generateImage(context.Background(), ImageParams{
		Frame:      frame,
		Format:     "png",
		DPR:        2,
		Background: "#fff8f0",
	}, &buf)
	if err != nil {
		t.Fatalf("generateImage: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 1920, 1080) {
		t.Errorf("image bounds = %v, want 1920x1080", got)
	}
	nearColor(t, img.At(0, 0), color.RGBA{0xff, 0xf8, 0xf0, 0xff}, 1)

	buf.Reset()
	if err := generateImage(context.Background(), ImageParams{Frame: frame, Format: "jpeg", DPR: 1}, &buf); err != nil {
		t.Fatalf("generateImage jpeg: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xff, 0xd8}) {
		t.Error("jpeg output has no SOI marker")
	}

	if err := generateImage(context.Background(), ImageParams{Frame: frame, Format: "png", Engine: "webgl"}, &buf); err == nil {
		t.Error("unknown engine accepted")
	}
}

func TestLetterSpaced(t *testing.T) {
	if got := letterSpaced("AB"); got != "A B" {
		t.Errorf("letterSpaced(AB) = %q, want %q", got, "A B")
	}
	if got := letterSpaced(""); got != "" {
		t.Errorf("letterSpaced(\"\") = %q", got)
	}
}

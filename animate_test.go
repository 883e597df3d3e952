package main

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestBackgroundEaserConverges(t *testing.T) {
	easer := newBackgroundEaser(DefaultConfig().Frames)
	start := parseColor("#f8f9fa", "")
	target := parseColor("#1a0000", "")

	if got := easer.Next(start); got != start {
		t.Fatalf("first frame = %v, want the start colour unchanged", got)
	}

	prev := start.DistanceRgb(target)
	for i := 0; i < 600; i++ {
		got := easer.Next(target)
		if got.R < 0 || got.R > 1 || got.G < 0 || got.G > 1 || got.B < 0 || got.B > 1 {
			t.Fatalf("frame %d left the RGB cube: %v", i, got)
		}
		d := got.DistanceRgb(target)
		if d > prev+1e-9 {
			t.Fatalf("frame %d moved away from the target: %v > %v", i, d, prev)
		}
		prev = d
	}
	if prev > 1e-3 {
		t.Errorf("easer still %v from the target after 600 frames", prev)
	}
}

func TestPlanSweep(t *testing.T) {
	r := NewTimelineRenderer(DefaultDataset(), DefaultConfig())
	frames := DefaultConfig().Frames
	frames.Count = 25

	sweep := PlanSweep(r, 480, 270, frames)
	if len(sweep) != 25 {
		t.Fatalf("planned %d frames, want 25", len(sweep))
	}
	if sweep[0].Frame.Progress != 0 || sweep[24].Frame.Progress != 1 {
		t.Errorf("sweep spans %v..%v, want 0..1", sweep[0].Frame.Progress, sweep[24].Frame.Progress)
	}
	if want := parseColor("#f8f9fa", ""); sweep[0].Background != want {
		t.Errorf("first background = %v, want %v", sweep[0].Background, want)
	}
	for i := 1; i < len(sweep); i++ {
		if sweep[i].Index != i {
			t.Errorf("frame %d has index %d", i, sweep[i].Index)
		}
		if sweep[i].Frame.VisibleCount < sweep[i-1].Frame.VisibleCount {
			t.Errorf("frame %d reveals fewer points than frame %d", i, i-1)
		}
	}

	frames.Count = 1
	if got := len(PlanSweep(r, 480, 270, frames)); got != 2 {
		t.Errorf("count 1 planned %d frames, want 2", got)
	}
}

func TestExportSweep(t *testing.T) {
	r := NewTimelineRenderer(DefaultDataset(), DefaultConfig())
	frames := DefaultConfig().Frames
	frames.Count = 5
	sweep := PlanSweep(r, 160, 90, frames)

	outDir := filepath.Join(t.TempDir(), "frames")
	if err := ExportSweep(context.Background(), sweep, 2, outDir, 3); err != nil {
		t.Fatalf("ExportSweep: %v", err)
	}

	for i := range sweep {
		f, err := os.Open(filepath.Join(outDir, sweepFileName(i)))
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decoding frame %d: %v", i, err)
		}
		if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
			t.Errorf("frame %d is %dx%d, want 320x180", i, b.Dx(), b.Dy())
		}
	}

	// The background fill is the eased colour of each frame.
	f, err := os.Open(filepath.Join(outDir, sweepFileName(0)))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := colorful.MakeColor(img.At(0, 0))
	if d := got.DistanceRgb(sweep[0].Background); d > 0.01 {
		t.Errorf("corner colour %v is %v from the frame background %v", got.Hex(), d, sweep[0].Background.Hex())
	}
}

func TestExportSweepCancelled(t *testing.T) {
	r := NewTimelineRenderer(DefaultDataset(), DefaultConfig())
	frames := DefaultConfig().Frames
	frames.Count = 4
	sweep := PlanSweep(r, 64, 36, frames)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outDir := t.TempDir()
	if err := ExportSweep(ctx, sweep, 1, outDir, 2); err == nil {
		t.Error("ExportSweep ignored a cancelled context")
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("cancelled export wrote %d files", len(entries))
	}
}

func TestExportSweepCancelledMidRun(t *testing.T) {
	r := NewTimelineRenderer(DefaultDataset(), DefaultConfig())
	frames := DefaultConfig().Frames
	frames.Count = 20
	sweep := PlanSweep(r, 64, 36, frames)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	outDir := t.TempDir()
	written := 0
	err := exportSweep(ctx, sweep, outDir, 1, func(sf SweepFrame, path string) error {
		if err := writeSweepFrame(sf, 1, path); err != nil {
			return err
		}
		written++
		if sf.Index == 2 {
			cancel()
		}
		return nil
	})

	if err == nil || !errors.Is(err, context.Canceled) || !strings.Contains(err.Error(), "interrupted") {
		t.Fatalf("exportSweep error = %v, want a wrapped interruption", err)
	}
	if written != 3 {
		t.Errorf("wrote %d frames before stopping, want 3", written)
	}
	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("interrupted export left %d frames behind", len(entries))
	}
}

func TestExportSweepWorkerSeesCancellation(t *testing.T) {
	r := NewTimelineRenderer(DefaultDataset(), DefaultConfig())
	frames := DefaultConfig().Frames
	frames.Count = 4
	sweep := PlanSweep(r, 64, 36, frames)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := exportSweep(ctx, sweep, t.TempDir(), 1, func(sf SweepFrame, path string) error {
		cancel()
		return ctx.Err()
	})
	if err == nil || !errors.Is(err, context.Canceled) || !strings.Contains(err.Error(), "interrupted") {
		t.Errorf("exportSweep error = %v, want a wrapped interruption", err)
	}
}

func TestSweepFileName(t *testing.T) {
	if got := sweepFileName(7); got != "frame_0007.png" {
		t.Errorf("sweepFileName(7) = %q", got)
	}
	if got := sweepFileName(12345); got != "frame_12345.png" {
		t.Errorf("sweepFileName(12345) = %q", got)
	}
}

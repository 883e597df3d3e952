package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/charmbracelet/harmonica"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sync/errgroup"
)

// springField eases a fixed set of channels toward their targets.
type springField struct {
	spring harmonica.Spring
	pos    []float64
	vel    []float64
}

func newSpringField(fps int, frequency, damping float64, n int) springField {
	return springField{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		pos:    make([]float64, n),
		vel:    make([]float64, n),
	}
}

func (s *springField) set(i int, value float64) {
	s.pos[i] = value
	s.vel[i] = 0
}

func (s *springField) step(i int, target float64) float64 {
	p, v := s.spring.Update(s.pos[i], s.vel[i], target)
	s.pos[i] = p
	s.vel[i] = v
	return p
}

// backgroundEaser eases the section background toward the current phase's
// colour, standing in for the page's background-color CSS transition.
type backgroundEaser struct {
	field   springField
	started bool
}

func newBackgroundEaser(cfg FramesConfig) *backgroundEaser {
	return &backgroundEaser{field: newSpringField(cfg.FPS, cfg.Frequency, cfg.Damping, 3)}
}

// Next advances one frame toward target and returns the eased colour.
func (e *backgroundEaser) Next(target colorful.Color) colorful.Color {
	channels := [3]float64{target.R, target.G, target.B}
	if !e.started {
		for i, v := range channels {
			e.field.set(i, v)
		}
		e.started = true
		return target
	}
	return colorful.Color{
		R: e.field.step(0, channels[0]),
		G: e.field.step(1, channels[1]),
		B: e.field.step(2, channels[2]),
	}.Clamped()
}

// SweepFrame is one step of a progress sweep.
type SweepFrame struct {
	Index      int
	Frame      Frame
	Background colorful.Color
}

// PlanSweep builds count frames with progress evenly spaced over [0,1].
// Frames are built in order because the background easing carries state
// from one frame to the next; each frame's geometry is still computed from
// scratch.
func PlanSweep(r *TimelineRenderer, width, height float64, frames FramesConfig) []SweepFrame {
	count := frames.Count
	if count < 2 {
		count = 2
	}
	derived := r.Layout(width, height)
	easer := newBackgroundEaser(frames)

	sweep := make([]SweepFrame, count)
	for i := range sweep {
		progress := float64(i) / float64(count-1)
		frame := BuildFrame(r.Dataset, derived, progress, width, height, r.Margins)
		sweep[i] = SweepFrame{
			Index:      i,
			Frame:      frame,
			Background: easer.Next(parseColor(frame.Style.BgColor, "#ffffff")),
		}
	}
	return sweep
}

// sweepFileName is the PNG name of frame i.
func sweepFileName(i int) string {
	return fmt.Sprintf("frame_%04d.png", i)
}

// ExportSweep paints every frame of the sweep to outDir as PNG, encoding up
// to workers frames concurrently. Each worker owns its canvas. An interrupted
// export removes the frames it already wrote.
func ExportSweep(ctx context.Context, sweep []SweepFrame, dpr float64, outDir string, workers int) error {
	return exportSweep(ctx, sweep, outDir, workers, func(sf SweepFrame, path string) error {
		return writeSweepFrame(sf, dpr, path)
	})
}

func exportSweep(ctx context.Context, sweep []SweepFrame, outDir string, workers int, write func(SweepFrame, string) error) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating frame directory '%s': %w", outDir, err)
	}
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, sf := range sweep {
		if gctx.Err() != nil {
			break
		}
		sf := sf
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return write(sf, filepath.Join(outDir, sweepFileName(sf.Index)))
		})
	}
	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		removeSweepFrames(sweep, outDir)
		if err == nil || errors.Is(err, ctxErr) {
			err = ctxErr
		}
		return fmt.Errorf("frame export interrupted: %w", err)
	}
	if err != nil {
		return err
	}
	log.Printf("Wrote %d frames to %s", len(sweep), outDir)
	return nil
}

// removeSweepFrames deletes whatever frames of sweep exist in outDir.
func removeSweepFrames(sweep []SweepFrame, outDir string) {
	for _, sf := range sweep {
		path := filepath.Join(outDir, sweepFileName(sf.Index))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: Could not remove partial frame '%s': %v", path, err)
		}
	}
}

func writeSweepFrame(sf SweepFrame, dpr float64, path string) (err error) {
	canvas := NewCanvas(sf.Frame.Width, sf.Frame.Height, dpr)
	canvas.Fill = sf.Background
	canvas.PaintFrame(sf.Frame)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating frame file '%s': %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing frame file '%s': %w", path, closeErr)
		}
	}()
	if err := canvas.EncodePNG(f); err != nil {
		return fmt.Errorf("encoding frame %d: %w", sf.Index, err)
	}
	return nil
}

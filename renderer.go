package main

import "errors"

var errEmptyCanvas = errors.New("canvas has no backing store")

// TimelineRenderer turns progress into frames for one dataset.
type TimelineRenderer struct {
	Dataset Dataset
	Margins Margins
	Curve   CurveParams
}

// NewTimelineRenderer builds a renderer from a dataset and the layout part of the config.
func NewTimelineRenderer(dataset Dataset, cfg *Config) *TimelineRenderer {
	return &TimelineRenderer{
		Dataset: dataset,
		Margins: cfg.Margins,
		Curve:   cfg.Curve,
	}
}

// Layout places the dataset's points on a width x height canvas.
func (r *TimelineRenderer) Layout(width, height float64) []DerivedPoint {
	return Layout(r.Dataset.Points, width, height, r.Margins, r.Curve)
}

// Frame lays out and builds the display list in one step.
func (r *TimelineRenderer) Frame(width, height, progress float64) Frame {
	return BuildFrame(r.Dataset, r.Layout(width, height), progress, width, height, r.Margins)
}

// Paint redraws the canvas from scratch for progress. The derived points must
// come from Layout at the canvas's current size.
func (r *TimelineRenderer) Paint(c *Canvas, derived []DerivedPoint, progress float64) {
	if c == nil {
		return
	}
	width, height := c.Size()
	c.PaintFrame(BuildFrame(r.Dataset, derived, progress, width, height, r.Margins))
}

// Mount repaints c on every tracker event until the returned func is called.
// A resize that reports a new viewport width or canvas height reallocates the
// canvas first, so the repaint uses the new drawable region without waiting
// for a scroll.
func (r *TimelineRenderer) Mount(t *ScrollTracker, c *Canvas) (unmount func()) {
	repaint := func(progress float64, g Geometry) {
		if c == nil {
			return
		}
		width, height := c.Size()
		newWidth, newHeight := width, height
		if g.ViewportWidth > 0 {
			newWidth = g.ViewportWidth
		}
		if g.CanvasHeight > 0 {
			newHeight = g.CanvasHeight
		}
		if newWidth != width || newHeight != height {
			c.Resize(newWidth, newHeight, c.DPR())
			width, height = newWidth, newHeight
		}
		r.Paint(c, r.Layout(width, height), progress)
	}
	unsubscribe := t.Subscribe(repaint)
	t.Replay(repaint)
	return unsubscribe
}

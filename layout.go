package main

import "math"

// --- Layout ---

// Layout places every point on the canvas. Points advance linearly left to
// right and climb an eased curve from the bottom edge to the top edge, with a
// small deterministic per-index wobble. The result is pure: identical inputs
// always give identical output.
func Layout(points []TimelinePoint, width, height float64, margins Margins, params CurveParams) []DerivedPoint {
	n := len(points)
	if n == 0 {
		return nil
	}

	width = math.Max(finiteOr(width, 0), 0)
	height = math.Max(finiteOr(height, 0), 0)

	leftEdge := margins.Left
	rightEdge := math.Max(width-margins.Right, leftEdge)
	topEdge := margins.Top
	bottomEdge := math.Max(height-margins.Bottom, topEdge)
	drawableWidth := rightEdge - leftEdge

	derived := make([]DerivedPoint, n)
	for i, p := range points {
		t := axisPosition(i, n)
		x := leftEdge + t*drawableWidth
		baseY := bottomEdge - (bottomEdge-topEdge)*math.Pow(t, params.Exponent)
		y := baseY + math.Sin(float64(i)*params.JitterFrequency)*params.JitterAmplitude
		derived[i] = DerivedPoint{X: x, Y: y, Phase: p.Phase}
	}
	return derived
}

// axisPosition is i/(n-1), pinned to 0 when there is a single point.
func axisPosition(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// --- Visibility & Phase ---

// VisibleCount is how many points are revealed at progress, in [0, n].
func VisibleCount(progress float64, n int) int {
	if n <= 0 {
		return 0
	}
	visible := int(math.Ceil(clampProgress(progress) * float64(n)))
	if visible < 0 {
		return 0
	}
	if visible > n {
		return n
	}
	return visible
}

// PartialFraction is how far the advancing tip has travelled from point
// visible-1 toward point visible.
func PartialFraction(progress float64, n, visible int) float64 {
	return clamp(clampProgress(progress)*float64(n)-float64(visible-1), 0, 1)
}

// CurrentPhase returns the phase of the point under the current progress.
// Progress 0 yields the first point's phase and progress 1 the last's.
func CurrentPhase(points []TimelinePoint, progress float64) Phase {
	n := len(points)
	if n == 0 {
		return PhaseIncompetence
	}
	index := int(math.Floor(clampProgress(progress) * float64(n)))
	if index > n-1 {
		index = n - 1
	}
	return points[index].Phase
}

// --- Opacity ---

// revealWindow is the span of progress over which a point fades in.
const revealWindow = 0.05

// Slide distances for the reveal animation, in pixels.
const (
	pointSlideDistance   = 20.0
	dividerSlideDistance = 30.0
)

// PointOpacity returns the reveal opacity of point index out of n. It is 1
// once progress reaches the point's own position, ramps linearly over the
// preceding reveal window, and is 0 before that.
func PointOpacity(index, n int, progress float64) float64 {
	progress = clampProgress(progress)
	pointProgress := axisPosition(index, n)
	switch {
	case progress >= pointProgress:
		return 1
	case progress >= pointProgress-revealWindow:
		return (progress - (pointProgress - revealWindow)) / revealWindow
	}
	return 0
}

// PointOffset is the slide-up offset of a list entry at the given opacity.
func PointOffset(opacity float64) float64 {
	return (1 - opacity) * pointSlideDistance
}

// DividerOffset is the slide-up offset of a phase-break divider.
func DividerOffset(opacity float64) float64 {
	return (1 - opacity) * dividerSlideDistance
}

// PointList derives the textual list state. A phase-break divider precedes the
// first point of every phase after the first.
func PointList(dataset Dataset, progress float64) []ListItem {
	n := len(dataset.Points)
	items := make([]ListItem, 0, n)
	for i, p := range dataset.Points {
		opacity := PointOpacity(i, n, progress)
		item := ListItem{
			Point:   p,
			Style:   dataset.Phases.Style(p.Phase),
			Opacity: opacity,
			OffsetY: PointOffset(opacity),
		}
		if i > 0 && dataset.Points[i-1].Phase != p.Phase {
			item.PhaseBreak = true
			item.DividerOffsetY = DividerOffset(opacity)
		}
		items = append(items, item)
	}
	return items
}

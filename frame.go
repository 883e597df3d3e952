package main

import "math"

// Grid intervals across the drawable region. Lines are drawn on both ends,
// so there is one more line than intervals in each direction.
const (
	gridRows = 5
	gridCols = 6
)

// Axis label placement, measured from the canvas edges.
const (
	severityLabelX       = 25.0
	progressionLabelRise = 20.0
)

// BuildFrame computes the complete render state for one progress value.
// Painters only walk the returned display list, so the raster and SVG
// outputs cannot disagree on geometry or colour.
func BuildFrame(dataset Dataset, derived []DerivedPoint, progress, width, height float64, margins Margins) Frame {
	progress = clampProgress(progress)
	width = math.Max(finiteOr(width, 0), 0)
	height = math.Max(finiteOr(height, 0), 0)
	n := len(derived)

	phase := CurrentPhase(dataset.Points, progress)
	frame := Frame{
		Width:        width,
		Height:       height,
		Progress:     progress,
		VisibleCount: VisibleCount(progress, n),
		Phase:        phase,
		Style:        dataset.Phases.Style(phase),
	}

	frame.Grid = buildGrid(width, height, margins)

	visible := frame.VisibleCount
	if visible > 1 {
		for i := 1; i < visible; i++ {
			frame.Segments = append(frame.Segments, fullSegment(derived[i-1], derived[i], dataset.Phases))
		}
		if visible < n {
			frac := PartialFraction(progress, n, visible)
			frame.Segments = append(frame.Segments, partialSegment(derived[visible-1], derived[visible], frac, dataset.Phases))
		}
		for i := 0; i < visible; i++ {
			p := derived[i]
			frame.Markers = append(frame.Markers, Marker{
				Index:  i,
				Center: Point{X: p.X, Y: p.Y},
				Phase:  p.Phase,
				Color:  dataset.Phases.Color(p.Phase),
				Latest: i == visible-1,
			})
		}
	}

	frame.Labels = []AxisLabel{
		{Text: "SEVERITY", At: Point{X: severityLabelX, Y: height / 2}, Rotation: -math.Pi / 2},
		{Text: "PROGRESSION", At: Point{X: width / 2, Y: height - progressionLabelRise}},
	}
	return frame
}

func buildGrid(width, height float64, margins Margins) []GridLine {
	left, right := margins.Left, math.Max(width-margins.Right, margins.Left)
	top, bottom := margins.Top, math.Max(height-margins.Bottom, margins.Top)

	lines := make([]GridLine, 0, gridRows+gridCols+2)
	for i := 0; i <= gridRows; i++ {
		y := top + (bottom-top)/gridRows*float64(i)
		lines = append(lines, GridLine{From: Point{left, y}, To: Point{right, y}})
	}
	for i := 0; i <= gridCols; i++ {
		x := left + (right-left)/gridCols*float64(i)
		lines = append(lines, GridLine{From: Point{x, top}, To: Point{x, bottom}})
	}
	return lines
}

// --- Curve Segments ---

// segmentControl bends each segment: it leaves the previous point level and
// meets the next one on the climb.
func segmentControl(from, to Point) Point {
	return Point{X: (from.X + to.X) / 2, Y: from.Y}
}

// fullSegment is coloured by its destination so colour changes land exactly
// on phase boundaries.
func fullSegment(prev, next DerivedPoint, styles PhaseStyles) CurveSegment {
	from := Point{prev.X, prev.Y}
	to := Point{next.X, next.Y}
	return CurveSegment{
		From:  from,
		Ctrl:  segmentControl(from, to),
		To:    to,
		Phase: next.Phase,
		Color: styles.Color(next.Phase),
	}
}

// partialSegment is the leading fraction frac of the segment prev -> next,
// split with de Casteljau so the tip runs along the final curve.
func partialSegment(prev, next DerivedPoint, frac float64, styles PhaseStyles) CurveSegment {
	full := fullSegment(prev, next, styles)
	frac = clamp(frac, 0, 1)
	ctrl := lerpPoint(full.From, full.Ctrl, frac)
	tip := lerpPoint(ctrl, lerpPoint(full.Ctrl, full.To, frac), frac)
	full.Ctrl = ctrl
	full.To = tip
	full.Partial = true
	return full
}

func lerpPoint(a, b Point, t float64) Point {
	return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// Tip returns where the curve currently ends, or false if nothing is drawn.
func (f Frame) Tip() (Point, bool) {
	if len(f.Segments) == 0 {
		return Point{}, false
	}
	return f.Segments[len(f.Segments)-1].To, true
}

package main

import (
	"bytes"
	"fmt"
	"math"
)

// Constants (the font is also configurable through Config.LabelFont)
const defaultFontSize = 13
const defaultFont = "system-ui, Arial, sans-serif"

const (
	curveShadowFilterID = "curve-shadow"
	markerGlowFilterID  = "marker-glow"
)

// SVGOptions control the parts of the SVG that are not in the frame itself.
type SVGOptions struct {
	Background string    // Fill behind the frame; empty leaves it transparent
	LabelFont  FontStyle // Axis label font
}

// Add a parameter struct for drawSVGSegment
type SVGSegmentParams struct {
	Segment CurveSegment
	Width   float64
}

// GenerateSVG writes the frame as a standalone SVG document.
func GenerateSVG(frame Frame, opts SVGOptions) (string, error) {
	if frame.Width <= 0 || frame.Height <= 0 {
		return "", fmt.Errorf("cannot render a %.0fx%.0f frame", frame.Width, frame.Height)
	}

	var svgBody bytes.Buffer

	// --- Phase 1: Grid ---
	fmt.Fprintf(&svgBody, `  <g class="grid" stroke="%s" stroke-width="%g">`+"\n", cssRGBA(parseColor("#000000", ""), gridAlpha), gridLineWidth)
	for _, l := range frame.Grid {
		fmt.Fprintf(&svgBody, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" />`+"\n", l.From.X, l.From.Y, l.To.X, l.To.Y)
	}
	svgBody.WriteString("  </g>\n")

	// --- Phase 2: Curve ---
	if len(frame.Segments) > 0 {
		fmt.Fprintf(&svgBody, `  <g class="curve" fill="none" stroke-linecap="round" stroke-linejoin="round" filter="url(#%s)">`+"\n", curveShadowFilterID)
		for _, s := range frame.Segments {
			drawSVGSegment(&svgBody, SVGSegmentParams{Segment: s, Width: curveLineWidth})
		}
		svgBody.WriteString("  </g>\n")
	}

	// --- Phase 3: Markers ON TOP ---
	for _, m := range frame.Markers {
		drawSVGMarker(&svgBody, m)
	}

	// --- Phase 4: Axis Labels ---
	font := getEffectiveFontStyle(opts.LabelFont)
	for _, l := range frame.Labels {
		transform := ""
		if l.Rotation != 0 {
			transform = fmt.Sprintf(` transform="rotate(%.2f %.2f %.2f)"`, l.Rotation*180/math.Pi, l.At.X, l.At.Y)
		}
		fmt.Fprintf(&svgBody, `  <text x="%.2f" y="%.2f"%s text-anchor="middle" dominant-baseline="middle" fill="#333" font-family="%s" font-size="%d" font-weight="%s" letter-spacing="0.15em">%s</text>`+"\n",
			l.At.X, l.At.Y, transform, escapeXML(font.FontFamily), font.FontSize, escapeXML(font.FontWeight), escapeXML(l.Text))
	}

	return assembleFinalSVG(svgBody, frame, opts), nil
}

func drawSVGSegment(svg *bytes.Buffer, params SVGSegmentParams) {
	s := params.Segment
	class := "segment"
	if s.Partial {
		class = "segment segment--partial"
	}
	fmt.Fprintf(svg, `    <path class="%s" data-phase="%s" d="M %.2f %.2f Q %.2f %.2f %.2f %.2f" stroke="%s" stroke-width="%.0f" />`+"\n",
		class, escapeXML(string(s.Phase)), s.From.X, s.From.Y, s.Ctrl.X, s.Ctrl.Y, s.To.X, s.To.Y, escapeXML(s.Color), params.Width)
}

func drawSVGMarker(svg *bytes.Buffer, m Marker) {
	outer, inner := markerOuterRadius, markerInnerRadius
	class := "marker"
	glow := ""
	if m.Latest {
		outer, inner = latestMarkerOuterRadius, latestMarkerInnerRadius
		class = "marker marker--latest"
		glow = fmt.Sprintf(` filter="url(#%s-%d)"`, markerGlowFilterID, m.Index)
	}
	color := escapeXML(m.Color)

	fmt.Fprintf(svg, `  <g class="%s" data-index="%d" data-phase="%s">`+"\n", class, m.Index, escapeXML(string(m.Phase)))
	fmt.Fprintf(svg, `    <circle cx="%.2f" cy="%.2f" r="%.0f" fill="#ffffff"%s />`+"\n", m.Center.X, m.Center.Y, outer, glow)
	fmt.Fprintf(svg, `    <circle cx="%.2f" cy="%.2f" r="%.0f" fill="%s" />`+"\n", m.Center.X, m.Center.Y, inner, color)
	if m.Latest {
		fmt.Fprintf(svg, `    <circle cx="%.2f" cy="%.2f" r="%.0f" fill="none" stroke="%s" stroke-width="%.0f" />`+"\n",
			m.Center.X, m.Center.Y, latestRingRadius, color, latestRingWidth)
	}
	svg.WriteString("  </g>\n")
}

// writeSVGDefs emits the blur filters standing in for canvas shadows.
// stdDeviation is half the canvas shadowBlur.
func writeSVGDefs(svg *bytes.Buffer, frame Frame) {
	svg.WriteString("  <defs>\n")
	fmt.Fprintf(svg, `    <filter id="%s" x="-20%%" y="-20%%" width="140%%" height="140%%"><feDropShadow dx="0" dy="0" stdDeviation="%.1f" flood-color="#000000" flood-opacity="%.1f" /></filter>`+"\n",
		curveShadowFilterID, curveShadowBlur/2, curveShadowAlpha)
	for _, m := range frame.Markers {
		if !m.Latest {
			continue
		}
		fmt.Fprintf(svg, `    <filter id="%s-%d" x="-100%%" y="-100%%" width="300%%" height="300%%"><feDropShadow dx="0" dy="0" stdDeviation="%.1f" flood-color="%s" flood-opacity="1" /></filter>`+"\n",
			markerGlowFilterID, m.Index, markerGlowBlur/2, escapeXML(m.Color))
	}
	svg.WriteString("  </defs>\n")
}

func assembleFinalSVG(svgBody bytes.Buffer, frame Frame, opts SVGOptions) string {
	var finalSVG bytes.Buffer
	fmt.Fprintf(&finalSVG, `<svg width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" xmlns="http://www.w3.org/2000/svg" data-progress="%.4f" data-phase="%s">`,
		frame.Width, frame.Height, frame.Width, frame.Height, frame.Progress, escapeXML(string(frame.Phase)))
	finalSVG.WriteString("\n")

	if opts.Background != "" {
		fmt.Fprintf(&finalSVG, `  <rect width="%.0f" height="%.0f" fill="%s" />`+"\n", frame.Width, frame.Height, escapeXML(opts.Background))
	}

	writeSVGDefs(&finalSVG, frame)
	finalSVG.Write(svgBody.Bytes())
	finalSVG.WriteString("</svg>")

	return finalSVG.String()
}

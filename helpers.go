package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// --- Helper Functions for Effective Styles ---

// Helper to get value from pointer or default
func getString(ptr *string, def string) string {
	if ptr != nil {
		return *ptr
	}
	return def
}
func getInt(ptr *int, def int) int {
	if ptr != nil {
		return *ptr
	}
	return def
}
func getFloat64(ptr *float64, def float64) float64 {
	if ptr != nil {
		return *ptr
	}
	return def
}

func getEffectivePhaseStyle(defaults PhaseStyle, override *PhaseStyleOverride) PhaseStyle {
	if override == nil {
		return defaults
	}
	effective := defaults
	effective.Label = getString(override.Label, defaults.Label)
	effective.Color = getString(override.Color, defaults.Color)
	effective.BgColor = getString(override.BgColor, defaults.BgColor)
	effective.Description = getString(override.Description, defaults.Description)
	return effective
}

// Helper to get effective FontStyle considering the configured font and hardcoded defaults
func getEffectiveFontStyle(configured FontStyle) FontStyle {
	effective := configured
	if effective.FontFamily == "" {
		effective.FontFamily = defaultFont
	}
	if effective.FontSize <= 0 {
		effective.FontSize = defaultFontSize
	}
	if effective.FontWeight == "" {
		effective.FontWeight = "700"
	}
	return effective
}

// --- Numeric Guards ---

// finiteOr returns v, or def when v is NaN or infinite.
func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampProgress maps any input (including NaN) onto [0,1].
func clampProgress(progress float64) float64 {
	return clamp(finiteOr(progress, 0), 0, 1)
}

// --- Colour Helpers ---

// parseColor parses a #rrggbb colour, falling back to fallback (then black) on error.
func parseColor(hex string, fallback string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err == nil {
		return c
	}
	if c, err = colorful.Hex(fallback); err == nil {
		return c
	}
	return colorful.Color{}
}

// withAlpha converts a colour to a non-premultiplied RGBA with the given alpha in [0,1].
func withAlpha(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp(alpha, 0, 1) * 255))}
}

// cssRGBA formats a colour as a CSS rgba() value.
func cssRGBA(c colorful.Color, alpha float64) string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", r, g, b, clamp(alpha, 0, 1))
}

// --- XML/HTML Escaping ---
func escapeXML(s string) string {
	var buf strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;") // &apos; is not valid in HTML4
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

package main

import (
	"bytes"
	"strings"
	"testing"
)

func renderTestHTML(t *testing.T, dataset Dataset, progress float64) string {
	t.Helper()
	r := NewTimelineRenderer(dataset, DefaultConfig())
	var buf bytes.Buffer
	if err := generateHTML(&buf, dataset, r.Frame(960, 540, progress), SVGOptions{}); err != nil {
		t.Fatalf("generateHTML: %v", err)
	}
	return buf.String()
}

func TestGenerateHTMLSection(t *testing.T) {
	html := renderTestHTML(t, DefaultDataset(), 0.5)

	for _, want := range []string{
		`class="graph-section graph-section--deception"`,
		`background-color:#fff8f0;`,
		`<div class="graph-phase-label">PHASE II: DECEPTION</div>`,
		`<svg width="960" height="540"`,
		`data-progress="0.5000"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	if got := strings.Count(html, `class="graph-point graph-point--`); got != 12 {
		t.Errorf("rendered %d points, want 12", got)
	}
	if got := strings.Count(html, `<div class="phase-break phase-break--`); got != 3 {
		t.Errorf("rendered %d phase breaks, want 3", got)
	}
}

func TestGenerateHTMLRevealStyles(t *testing.T) {
	html := renderTestHTML(t, DefaultDataset(), 0.5)

	// Points 1..6 are fully revealed; point 12 is hidden and slid down.
	if !strings.Contains(html, `data-id="1" style="opacity:1.000;transform:translateY(0.00px);`) {
		t.Error("first point not fully revealed")
	}
	if !strings.Contains(html, `data-id="12" style="opacity:0.000;transform:translateY(20.00px);`) {
		t.Error("last point not hidden")
	}
	// The coercion divider before id 8 is still hidden at half progress.
	if !strings.Contains(html, `phase-break--coercion" style="opacity:0.000;transform:translateY(30.00px);"`) {
		t.Error("coercion divider not hidden")
	}
}

func TestGenerateHTMLEscapesText(t *testing.T) {
	dataset := DefaultDataset()
	dataset.Title = `<script>alert("x")</script>`
	dataset.Points[0].Title = "Fish & Chips"
	html := renderTestHTML(t, dataset, 1)

	if strings.Contains(html, "<script>") {
		t.Error("title was not escaped")
	}
	if !strings.Contains(html, "Fish &amp; Chips") {
		t.Error("point title was not escaped")
	}
}

func TestSafeColor(t *testing.T) {
	if got := safeColor("#FF8C00"); got != "#ff8c00" {
		t.Errorf("safeColor(#FF8C00) = %s", got)
	}
	if got := safeColor("red;}body{display:none"); got != "#333333" {
		t.Errorf("safeColor(injection) = %s, want fallback", got)
	}
}

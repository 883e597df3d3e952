package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// goldenProgress are the scroll positions snapshotted by TestSVGGeneration.
var goldenProgress = []float64{0, 0.05, 0.3, 0.5, 0.77, 1}

// TestSVGGeneration performs SVG comparison testing.
func TestSVGGeneration(t *testing.T) {
	testDataDir := "testdata"
	renderer := NewTimelineRenderer(DefaultDataset(), DefaultConfig())

	for _, progress := range goldenProgress {
		baseName := fmt.Sprintf("progress_%03d", int(progress*100+0.5))
		t.Run(baseName, func(t *testing.T) {
			expectedSVGFile := filepath.Join(testDataDir, baseName+".expected.svg")

			// --- Generate SVG ---
			frame := renderer.Frame(960, 540, progress)
			generatedSVG, err := GenerateSVG(frame, SVGOptions{Background: "#ffffff"})
			if err != nil {
				t.Fatalf("Error generating SVG for %s: %v", baseName, err)
			}

			// --- Load Expected SVG ---
			expectedSVGBytes, err := os.ReadFile(expectedSVGFile)
			if err != nil {
				if os.IsNotExist(err) {
					t.Logf("Expected SVG file %s not found. Creating it.", expectedSVGFile)
					if writeErr := os.WriteFile(expectedSVGFile, []byte(generatedSVG), 0644); writeErr != nil {
						t.Errorf("Failed to write new expected SVG %s: %v", expectedSVGFile, writeErr)
					}
					return
				}
				t.Fatalf("Error reading expected SVG file %s: %v", expectedSVGFile, err)
			}
			expectedSVG := string(expectedSVGBytes)

			// --- Compare SVG ---
			normalizedGenerated := strings.ReplaceAll(generatedSVG, "\r\n", "\n")
			normalizedExpected := strings.ReplaceAll(expectedSVG, "\r\n", "\n")

			if normalizedGenerated != normalizedExpected {
				diff := findFirstDifference(normalizedGenerated, normalizedExpected)
				t.Errorf("Generated SVG for %s does not match %s.\nFirst difference near character %d:\nEXPECTED:\n...%s...\nGOT:\n...%s...",
					baseName, expectedSVGFile,
					diff.Index, diff.ExpectedContext, diff.GotContext)
				failedFile := filepath.Join(testDataDir, baseName+".failed.svg")
				os.WriteFile(failedFile, []byte(generatedSVG), 0644)
				t.Logf("Wrote differing output to %s", failedFile)
			}
		})
	}
}

func TestSVGStructure(t *testing.T) {
	renderer := NewTimelineRenderer(DefaultDataset(), DefaultConfig())
	frame := renderer.Frame(960, 540, 0.5)
	svg, err := GenerateSVG(frame, SVGOptions{})
	if err != nil {
		t.Fatalf("GenerateSVG: %v", err)
	}

	checks := map[string]int{
		`<line `:               len(frame.Grid),
		`<path class="segment`: len(frame.Segments),
		`segment--partial`:     1,
		`<g class="marker`:     len(frame.Markers),
		`marker--latest`:       1,
		`fill="none" stroke=`:  1,
		`>SEVERITY</text>`:     1,
		`>PROGRESSION</text>`:  1,
		`data-progress="0.5000" data-phase="deception"`: 1,
	}
	for needle, want := range checks {
		if got := strings.Count(svg, needle); got != want {
			t.Errorf("SVG contains %q %d times, want %d", needle, got, want)
		}
	}
	if strings.Contains(svg, "NaN") {
		t.Error("SVG contains NaN coordinates")
	}
}

func TestSVGRejectsEmptyFrame(t *testing.T) {
	if _, err := GenerateSVG(Frame{}, SVGOptions{}); err == nil {
		t.Error("GenerateSVG accepted a zero-sized frame")
	}
}

// diffResult helps show context around the first difference.
type diffResult struct {
	Index           int
	ExpectedContext string
	GotContext      string
}

// findFirstDifference finds the first differing character and provides context.
func findFirstDifference(s1, s2 string) diffResult {
	limit := len(s1)
	if len(s2) < limit {
		limit = len(s2)
	}
	idx := -1
	for i := 0; i < limit; i++ {
		if s1[i] != s2[i] {
			idx = i
			break
		}
	}
	// Handle case where one string is a prefix of the other
	if idx == -1 && len(s1) != len(s2) {
		idx = limit
	}
	if idx == -1 { // Should not happen if strings are different, but handle gracefully
		return diffResult{Index: 0, ExpectedContext: "(Strings are identical)", GotContext: "(Strings are identical)"}
	}

	contextSize := 20 // Characters before and after the difference
	start := idx - contextSize
	if start < 0 {
		start = 0
	}
	endS1 := idx + contextSize
	if endS1 > len(s1) {
		endS1 = len(s1)
	}
	endS2 := idx + contextSize
	if endS2 > len(s2) {
		endS2 = len(s2)
	}

	return diffResult{
		Index:           idx,
		ExpectedContext: s1[start:endS1],
		GotContext:      s2[start:endS2],
	}
}

func TestGeometryCommand(t *testing.T) {
	var out strings.Builder
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"geometry", "--top=-600", "--scroll-height=2000", "--viewport=800"})
	if err := root.Execute(); err != nil {
		t.Fatalf("geometry: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"progress=0.5000 visible=6/12 phase=deception (PHASE II: DECEPTION)",
		"--- PHASE II: DECEPTION (opacity=1.000 offset=0.0px)",
		fmt.Sprintf("#%-2d %-12s opacity=0.000 offset=20.0px", 12, PhaseFraud),
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderCommandWritesFiles(t *testing.T) {
	dir := t.TempDir()
	for _, format := range []string{"svg", "html", "png"} {
		path := filepath.Join(dir, "timeline."+format)
		root := newRootCmd()
		root.SetArgs([]string{"render", "--width=320", "--height=200", "-p", "0.6", "-f", format, "-o", path})
		if err := root.Execute(); err != nil {
			t.Fatalf("render %s: %v", format, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("render %s produced no output (%v)", format, err)
		}
	}

	root := newRootCmd()
	root.SetArgs([]string{"render", "-f", "gif", "-o", filepath.Join(dir, "x.gif")})
	if err := root.Execute(); err == nil {
		t.Error("unsupported format accepted")
	}
	if _, err := os.Stat(filepath.Join(dir, "x.gif")); !os.IsNotExist(err) {
		t.Error("rejected render left a file behind")
	}
}

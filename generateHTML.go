// generateHTML.go
package main

import (
	"fmt"
	"html/template"
	"io"
	"sync"
)

// ── Page template ────────────────────────────────────────────────────────────

const tmplSection = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:system-ui,Arial,sans-serif;color:#222;line-height:1.5}
.graph-section{padding:64px 24px;transition:background-color 1s ease}
.graph-container{max-width:{{.Width}}px;margin:0 auto}
.graph-title{font-size:32px;font-weight:800;margin-bottom:8px}
.graph-subtitle{color:#666;margin-bottom:32px}
.graph-canvas-wrapper{position:relative;margin-bottom:48px}
.graph-canvas-wrapper svg{display:block;width:100%;height:auto}
.graph-phase-indicator{position:absolute;top:16px;right:24px;text-align:right}
.graph-phase-label{font-weight:800;letter-spacing:.1em}
.graph-phase-description{font-size:13px;opacity:.8}
.graph-point{border-left:4px solid;padding:16px 20px;margin-bottom:16px;background:rgba(255,255,255,.9);transition:opacity .3s,transform .3s}
.graph-point-title{font-size:18px;margin-bottom:6px}
.graph-point-legal{font-weight:700;font-size:13px;margin-top:8px}
.phase-break{display:flex;align-items:center;gap:16px;margin:40px 0 24px}
.phase-break-line{flex:1;height:2px}
.phase-break-title{font-size:15px;letter-spacing:.1em}
.phase-break-description{font-size:13px;color:#666}
</style>
</head>
<body>
<section class="graph-section graph-section--{{.Phase}}" id="graph" data-progress="{{printf "%.4f" .Progress}}" style="{{.SectionStyle}}">
  <div class="graph-container">
    <div class="graph-header">
      <h2 class="graph-title">{{.Title}}</h2>
      <p class="graph-subtitle">{{.Subtitle}}</p>
    </div>
    <div class="graph-canvas-wrapper">
      {{.Canvas}}
      <div class="graph-phase-indicator" style="{{.Indicator.Style}}">
        <div class="graph-phase-label">{{.Indicator.Label}}</div>
        <div class="graph-phase-description">{{.Indicator.Description}}</div>
      </div>
    </div>
    <div class="graph-points">
{{- range .Items}}
{{- if .Break}}
      <div class="phase-break phase-break--{{.Phase}}" style="{{.Break.Style}}">
        <div class="phase-break-line" style="{{.Break.LineStyle}}"></div>
        <div class="phase-break-content">
          <h3 class="phase-break-title" style="{{.Break.TitleStyle}}">{{.Break.Label}}</h3>
          <p class="phase-break-description">{{.Break.Description}}</p>
        </div>
        <div class="phase-break-line" style="{{.Break.LineStyle}}"></div>
      </div>
{{- end}}
      <div class="graph-point graph-point--{{.Phase}}" data-id="{{.ID}}" style="{{.Style}}">
        <div class="graph-point-content">
          <h3 class="graph-point-title">{{.Title}}</h3>
          <p class="graph-point-description">{{.Description}}</p>
          <div class="graph-point-legal" style="{{.LegalStyle}}"><span class="graph-point-legal-icon">&#9878;</span> {{.LegalNote}}</div>
        </div>
      </div>
{{- end}}
    </div>
  </div>
</section>
</body>
</html>
`

var (
	tmplSectionOnce sync.Once
	tmplSectionT    *template.Template
)

func getSectionTemplate() *template.Template {
	tmplSectionOnce.Do(func() {
		tmplSectionT = template.Must(template.New("section").Parse(tmplSection))
	})
	return tmplSectionT
}

// ── Template data ────────────────────────────────────────────────────────────

type htmlIndicator struct {
	Label       string
	Description string
	Style       template.CSS
}

type htmlBreak struct {
	Label       string
	Description string
	Style       template.CSS
	LineStyle   template.CSS
	TitleStyle  template.CSS
}

type htmlItem struct {
	ID          int
	Phase       string
	Title       string
	Description string
	LegalNote   string
	Style       template.CSS
	LegalStyle  template.CSS
	Break       *htmlBreak
}

type htmlSection struct {
	Title        string
	Subtitle     string
	Width        int
	Phase        string
	Progress     float64
	SectionStyle template.CSS
	Indicator    htmlIndicator
	Canvas       template.HTML
	Items        []htmlItem
}

// safeColor normalises a colour to #rrggbb so it is always inert inside CSS.
func safeColor(hex string) string {
	return parseColor(hex, "#333333").Clamped().Hex()
}

// revealStyle is the opacity/slide-up style shared by points and dividers.
func revealStyle(opacity, offsetY float64) string {
	return fmt.Sprintf("opacity:%.3f;transform:translateY(%.2fpx);", opacity, offsetY)
}

func buildHTMLSection(dataset Dataset, frame Frame, svg string) htmlSection {
	section := htmlSection{
		Title:        dataset.Title,
		Subtitle:     dataset.Subtitle,
		Width:        int(frame.Width),
		Phase:        string(frame.Phase),
		Progress:     frame.Progress,
		SectionStyle: template.CSS(fmt.Sprintf("background-color:%s;", safeColor(frame.Style.BgColor))),
		Indicator: htmlIndicator{
			Label:       frame.Style.Label,
			Description: frame.Style.Description,
			Style:       template.CSS(fmt.Sprintf("color:%s;", safeColor(frame.Style.Color))),
		},
		// GenerateSVG escapes every text node and attribute it writes
		Canvas: template.HTML(svg),
	}

	for _, item := range PointList(dataset, frame.Progress) {
		accent := safeColor(item.Style.Color)
		hi := htmlItem{
			ID:          item.Point.ID,
			Phase:       string(item.Point.Phase),
			Title:       item.Point.Title,
			Description: item.Point.Description,
			LegalNote:   item.Point.LegalNote,
			Style:       template.CSS(revealStyle(item.Opacity, item.OffsetY) + "border-left-color:" + accent + ";"),
			LegalStyle:  template.CSS("color:" + accent + ";"),
		}
		if item.PhaseBreak {
			hi.Break = &htmlBreak{
				Label:       item.Style.Label,
				Description: item.Style.Description,
				Style:       template.CSS(revealStyle(item.Opacity, item.DividerOffsetY)),
				LineStyle:   template.CSS("background-color:" + accent + ";"),
				TitleStyle:  template.CSS("color:" + accent + ";"),
			}
		}
		section.Items = append(section.Items, hi)
	}
	return section
}

// generateHTML writes the timeline section as it looks at the frame's progress:
// background and indicator in the current phase, the curve inline as SVG, and
// every list entry carrying its reveal opacity and offset.
func generateHTML(w io.Writer, dataset Dataset, frame Frame, opts SVGOptions) error {
	svg, err := GenerateSVG(frame, opts)
	if err != nil {
		return fmt.Errorf("failed to generate section SVG: %w", err)
	}
	if err := getSectionTemplate().Execute(w, buildHTMLSection(dataset, frame, svg)); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}

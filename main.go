// main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// --- Main Program Logic ---

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Printf("Error: %v", err)
		stop()
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	dataFile   string
	width      float64
	height     float64
	dpr        float64
}

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}
	root := &cobra.Command{
		Use:           "escalation-timeline",
		Short:         "Render the scroll-synchronised escalation timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "Config file (default ./escalation.toml)")
	pf.StringVar(&gf.dataFile, "data", "", "Dataset file, JSON or YAML (default: built-in dataset)")
	pf.Float64Var(&gf.width, "width", 0, "Canvas width in CSS pixels")
	pf.Float64Var(&gf.height, "height", 0, "Canvas height in CSS pixels")
	pf.Float64Var(&gf.dpr, "dpr", 0, "Device pixel ratio")

	root.AddCommand(
		newRenderCmd(gf),
		newGeometryCmd(gf),
		newFramesCmd(gf),
		newProbeCmd(gf),
		newWatchCmd(gf),
	)
	return root
}

// setup is everything a command needs after config and data are loaded.
type setup struct {
	cfg      *Config
	dataset  Dataset
	renderer *TimelineRenderer
}

// loadSetup applies defaults, the TOML file, env and then changed flags.
func loadSetup(cmd *cobra.Command, gf *globalFlags, extra ConfigOverrides) (*setup, error) {
	cfg, err := LoadConfig(gf.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	overrides := extra
	if flags.Changed("data") {
		overrides.DataFile = &gf.dataFile
	}
	if flags.Changed("width") {
		overrides.Width = &gf.width
	}
	if flags.Changed("height") {
		overrides.Height = &gf.height
	}
	if flags.Changed("dpr") {
		overrides.DPR = &gf.dpr
	}
	if err := overrides.Apply(cfg); err != nil {
		return nil, err
	}

	dataset, err := LoadDataset(cfg.DataFile)
	if err != nil {
		return nil, err
	}
	return &setup{cfg: cfg, dataset: dataset, renderer: NewTimelineRenderer(dataset, cfg)}, nil
}

// --- Output Handling ---

// withOutput runs write against stdout or the named file. A failed write
// removes the partial file.
func withOutput(path string, write func(w io.Writer) error) error {
	if path == "" {
		log.Println("Output directed to stdout.")
		return write(os.Stdout)
	}

	log.Printf("Output directed to file: %s", path)
	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file '%s': %w", path, err)
	}
	genErr := write(outFile)
	closeErr := outFile.Close()
	if genErr == nil && closeErr != nil {
		genErr = fmt.Errorf("closing output file '%s': %w", path, closeErr)
	}
	if genErr != nil {
		log.Printf("Attempting to remove potentially incomplete file: %s", path)
		if removeErr := os.Remove(path); removeErr != nil {
			log.Printf("Warning: Could not remove output file '%s' after error: %v", path, removeErr)
		}
		return genErr
	}
	log.Printf("Output saved to: %s", path)
	return nil
}

var supportedFormats = map[string]bool{"html": true, "svg": true, "png": true, "jpg": true, "jpeg": true}

// renderOptions are the per-invocation output choices.
type renderOptions struct {
	progress   float64
	format     string
	output     string
	engine     string
	background bool
}

func (o *renderOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64VarP(&o.progress, "progress", "p", 0, "Scroll progress in [0,1]")
	f.StringVarP(&o.format, "format", "f", "png", "Output format (svg, html, png, jpg/jpeg)")
	f.StringVarP(&o.output, "output", "o", "", "Output file path (default: stdout)")
	f.StringVar(&o.engine, "engine", "native", "Raster engine for png/jpg (native, chrome)")
	f.BoolVar(&o.background, "background", true, "Fill images with the current phase's background colour")
}

func (o *renderOptions) validate() error {
	o.format = strings.ToLower(o.format)
	if !supportedFormats[o.format] {
		return fmt.Errorf("unsupported export format '%s'. Supported formats: html, svg, png, jpg/jpeg", o.format)
	}
	return nil
}

// renderProgress writes one frame at progress in the chosen format.
func renderProgress(ctx context.Context, s *setup, o renderOptions, progress float64, w io.Writer) error {
	frame := s.renderer.Frame(s.cfg.Width, s.cfg.Height, progress)
	log.Printf("Progress %.4f: %d/%d points visible, phase %s", frame.Progress, frame.VisibleCount, len(s.dataset.Points), frame.Phase)

	svgOpts := SVGOptions{LabelFont: s.cfg.LabelFont}
	background := ""
	if o.background {
		background = safeColor(frame.Style.BgColor)
	}

	switch o.format {
	case "svg":
		svgOpts.Background = background
		svgContent, err := GenerateSVG(frame, svgOpts)
		if err != nil {
			return fmt.Errorf("SVG generation failed: %w", err)
		}
		if _, err := io.WriteString(w, svgContent); err != nil {
			return fmt.Errorf("failed to write SVG output: %w", err)
		}
		return nil
	case "html":
		// The section element carries the background in HTML output
		return generateHTML(w, s.dataset, frame, svgOpts)
	default:
		svgOpts.Background = background
		return generateImage(ctx, ImageParams{
			Frame:      frame,
			SVG:        svgOpts,
			Format:     o.format,
			Engine:     o.engine,
			DPR:        s.cfg.DPR,
			Background: background,
			Chrome:     s.cfg.Chrome,
		}, w)
	}
}

// --- Commands ---

func newRenderCmd(gf *globalFlags) *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the timeline at one scroll progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			s, err := loadSetup(cmd, gf, ConfigOverrides{})
			if err != nil {
				return err
			}
			return withOutput(o.output, func(w io.Writer) error {
				return renderProgress(cmd.Context(), s, *o, o.progress, w)
			})
		},
	}
	o.bind(cmd)
	return cmd
}

func newGeometryCmd(gf *globalFlags) *cobra.Command {
	var g Geometry
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Compute progress and reveal state from container geometry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSetup(cmd, gf, ConfigOverrides{})
			if err != nil {
				return err
			}
			tracker := NewScrollTracker()
			progress := tracker.Scroll(g)
			return printRevealState(cmd.OutOrStdout(), s.dataset, progress)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&g.ContainerTop, "top", 0, "Container top relative to the viewport top")
	f.Float64Var(&g.ContainerScrollHeight, "scroll-height", 0, "Container scroll height")
	f.Float64Var(&g.ViewportHeight, "viewport", 0, "Viewport height")
	return cmd
}

func printRevealState(w io.Writer, dataset Dataset, progress float64) error {
	n := len(dataset.Points)
	phase := CurrentPhase(dataset.Points, progress)
	if _, err := fmt.Fprintf(w, "progress=%.4f visible=%d/%d phase=%s (%s)\n",
		progress, VisibleCount(progress, n), n, phase, dataset.Phases.Style(phase).Label); err != nil {
		return err
	}
	for _, item := range PointList(dataset, progress) {
		if item.PhaseBreak {
			if _, err := fmt.Fprintf(w, "  --- %s (opacity=%.3f offset=%.1fpx)\n", item.Style.Label, item.Opacity, item.DividerOffsetY); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  #%-2d %-12s opacity=%.3f offset=%.1fpx  %s\n",
			item.Point.ID, item.Point.Phase, item.Opacity, item.OffsetY, item.Point.Title); err != nil {
			return err
		}
	}
	return nil
}

func newFramesCmd(gf *globalFlags) *cobra.Command {
	var count, workers int
	var outDir string
	cmd := &cobra.Command{
		Use:   "frames",
		Short: "Render a sweep of PNG frames from progress 0 to 1",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra ConfigOverrides
			if cmd.Flags().Changed("count") {
				extra.Frames = &count
			}
			if cmd.Flags().Changed("workers") {
				extra.Workers = &workers
			}
			s, err := loadSetup(cmd, gf, extra)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = s.cfg.Frames.OutDir
			}
			sweep := PlanSweep(s.renderer, s.cfg.Width, s.cfg.Height, s.cfg.Frames)
			log.Printf("Rendering %d frames with %d workers...", len(sweep), s.cfg.Frames.Workers)
			return ExportSweep(cmd.Context(), sweep, s.cfg.DPR, outDir, s.cfg.Frames.Workers)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&count, "count", "n", 0, "Number of frames (default from config)")
	f.IntVar(&workers, "workers", 0, "Concurrent encoders (default from config)")
	f.StringVar(&outDir, "out", "", "Output directory (default from config)")
	return cmd
}

func newProbeCmd(gf *globalFlags) *cobra.Command {
	p := ProbeParams{}
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Scroll a live page in headless Chrome and report timeline progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.URL == "" {
				return fmt.Errorf("--url is required")
			}
			s, err := loadSetup(cmd, gf, ConfigOverrides{})
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("selector") {
				s.cfg.Chrome.ContainerQuery = p.Chrome.ContainerQuery
			}
			p.Chrome = s.cfg.Chrome

			g, err := probeGeometry(cmd.Context(), p)
			if err != nil {
				return err
			}
			tracker := NewScrollTracker()
			progress := tracker.Scroll(g)
			if err := printRevealState(cmd.OutOrStdout(), s.dataset, progress); err != nil {
				return err
			}
			if o.output == "" {
				return nil
			}
			if err := o.validate(); err != nil {
				return err
			}
			return withOutput(o.output, func(w io.Writer) error {
				return renderProgress(cmd.Context(), s, *o, progress, w)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.URL, "url", "", "Page URL to probe")
	f.Float64Var(&p.ScrollY, "scroll-y", 0, "Window scroll offset to apply before measuring")
	f.IntVar(&p.ViewportWidth, "viewport-width", 1280, "Browser viewport width")
	f.IntVar(&p.ViewportHeight, "viewport-height", 800, "Browser viewport height")
	f.StringVar(&p.Chrome.ContainerQuery, "selector", "", "CSS selector of the timeline container (default from config)")
	f.StringVarP(&o.output, "output", "o", "", "Also render the probed state to this file")
	f.StringVarP(&o.format, "format", "f", "png", "Format for --output (svg, html, png, jpg/jpeg)")
	f.StringVar(&o.engine, "engine", "native", "Raster engine for png/jpg (native, chrome)")
	f.BoolVar(&o.background, "background", true, "Fill images with the current phase's background colour")
	return cmd
}

func newWatchCmd(gf *globalFlags) *cobra.Command {
	o := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render whenever the config or dataset file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			if o.output == "" {
				return fmt.Errorf("watch needs --output")
			}
			s, err := loadSetup(cmd, gf, ConfigOverrides{})
			if err != nil {
				return err
			}
			configPath := gf.configPath
			if configPath == "" {
				configPath = DefaultConfigPath()
			}
			paths := []string{configPath, s.cfg.DataFile}
			debounce := time.Duration(s.cfg.Watch.DebounceMs) * time.Millisecond

			return watchFiles(cmd.Context(), paths, debounce, func() error {
				// Reload on every change; nothing from the previous render is reused.
				fresh, err := loadSetup(cmd, gf, ConfigOverrides{})
				if err != nil {
					return err
				}
				return withOutput(o.output, func(w io.Writer) error {
					return renderProgress(cmd.Context(), fresh, *o, o.progress, w)
				})
			})
		},
	}
	o.bind(cmd)
	return cmd
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds the render settings. Precedence: flags > env > TOML > defaults.
type Config struct {
	DataFile string      `toml:"data_file"` // Empty uses the built-in dataset
	Width    float64     `toml:"width"`     // Canvas width in CSS pixels
	Height   float64     `toml:"height"`    // Canvas height in CSS pixels
	DPR      float64     `toml:"dpr"`       // Device pixel ratio
	Margins  Margins     `toml:"margins"`
	Curve    CurveParams `toml:"curve"`

	LabelFont FontStyle `toml:"label_font"`

	Frames FramesConfig `toml:"frames"`
	Chrome ChromeConfig `toml:"chrome"`
	Watch  WatchConfig  `toml:"watch"`
}

// FramesConfig controls progress sweeps.
type FramesConfig struct {
	Count     int     `toml:"count"`     // Frames from progress 0 to 1 inclusive
	FPS       int     `toml:"fps"`       // Playback rate the background easing is tuned for
	Frequency float64 `toml:"frequency"` // Spring angular frequency
	Damping   float64 `toml:"damping"`   // Spring damping ratio
	Workers   int     `toml:"workers"`   // Concurrent encoders
	OutDir    string  `toml:"out_dir"`
}

// ChromeConfig controls the headless browser used for screenshots and probing.
type ChromeConfig struct {
	ExecPath       string `toml:"exec_path"` // Empty lets chromedp find a browser
	NoSandbox      bool   `toml:"no_sandbox"`
	TimeoutSec     int    `toml:"timeout_sec"`
	ContainerQuery string `toml:"container_query"` // CSS selector of the timeline container on probed pages
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Width:   960,
		Height:  540,
		DPR:     1,
		Margins: DefaultMargins(),
		Curve:   DefaultCurveParams(),
		LabelFont: FontStyle{
			FontFamily: defaultFont,
			FontSize:   defaultFontSize,
			FontWeight: "700",
		},
		Frames: FramesConfig{
			Count:     121,
			FPS:       60,
			Frequency: 6.0,
			Damping:   1.0,
			Workers:   runtime.NumCPU(),
			OutDir:    "frames",
		},
		Chrome: ChromeConfig{
			TimeoutSec:     30,
			ContainerQuery: "#graph",
		},
		Watch: WatchConfig{DebounceMs: 200},
	}
}

// DefaultConfigPath is ./escalation.toml.
func DefaultConfigPath() string {
	return filepath.Join(".", "escalation.toml")
}

// LoadConfig reads path over the defaults and applies ESCALATION_* env overrides.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ESCALATION_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	floats := map[string]*float64{
		"ESCALATION_WIDTH":  &cfg.Width,
		"ESCALATION_HEIGHT": &cfg.Height,
		"ESCALATION_DPR":    &cfg.DPR,
	}
	for name, dst := range floats {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = f
	}
	if v := os.Getenv("ESCALATION_CHROME_PATH"); v != "" {
		cfg.Chrome.ExecPath = v
	}
	if v := os.Getenv("ESCALATION_CHROME_NO_SANDBOX"); v != "" {
		cfg.Chrome.NoSandbox = v == "1" || v == "true"
	}
	return nil
}

// Validate rejects settings that cannot produce a frame.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %.0fx%.0f", c.Width, c.Height)
	}
	if c.DPR <= 0 {
		return fmt.Errorf("dpr must be positive, got %g", c.DPR)
	}
	if c.Margins.Left < 0 || c.Margins.Right < 0 || c.Margins.Top < 0 || c.Margins.Bottom < 0 {
		return fmt.Errorf("margins must not be negative")
	}
	if c.Frames.Count < 2 {
		return fmt.Errorf("frames.count must be at least 2, got %d", c.Frames.Count)
	}
	if c.Frames.FPS <= 0 {
		return fmt.Errorf("frames.fps must be positive, got %d", c.Frames.FPS)
	}
	if c.Frames.Workers < 1 {
		c.Frames.Workers = 1
	}
	return nil
}

// ConfigOverrides are optional flag values layered on top of a loaded config.
type ConfigOverrides struct {
	DataFile *string
	Width    *float64
	Height   *float64
	DPR      *float64
	Frames   *int
	Workers  *int
}

// Apply merges the set overrides into cfg and revalidates.
func (o ConfigOverrides) Apply(cfg *Config) error {
	cfg.DataFile = getString(o.DataFile, cfg.DataFile)
	cfg.Width = getFloat64(o.Width, cfg.Width)
	cfg.Height = getFloat64(o.Height, cfg.Height)
	cfg.DPR = getFloat64(o.DPR, cfg.DPR)
	cfg.Frames.Count = getInt(o.Frames, cfg.Frames.Count)
	cfg.Frames.Workers = getInt(o.Workers, cfg.Frames.Workers)
	return cfg.Validate()
}

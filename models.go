package main

// --- Phase Enumeration ---

// Phase is one of the four ordered severity categories.
type Phase string

const (
	PhaseIncompetence Phase = "incompetence"
	PhaseDeception    Phase = "deception"
	PhaseCoercion     Phase = "coercion"
	PhaseFraud        Phase = "fraud"
)

// phaseOrder lists phases from least to most severe.
var phaseOrder = []Phase{PhaseIncompetence, PhaseDeception, PhaseCoercion, PhaseFraud}

// Rank returns the severity rank of the phase (0 = least severe), or -1 if unknown.
func (p Phase) Rank() int {
	for i, known := range phaseOrder {
		if p == known {
			return i
		}
	}
	return -1
}

// --- Data Structs ---

// TimelinePoint is one narrative entry. The list is ordered by ID and phases
// never move backwards along it.
type TimelinePoint struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	LegalNote   string `json:"legal_note" yaml:"legal_note"`
	Phase       Phase  `json:"phase" yaml:"phase"`
}

// PhaseStyle is the presentation attached to a phase.
type PhaseStyle struct {
	Label       string `json:"label" yaml:"label"`
	Color       string `json:"color" yaml:"color"`       // Accent: curve segments, markers, legal notes
	BgColor     string `json:"bg_color" yaml:"bg_color"` // Section background while the phase is current
	Description string `json:"description" yaml:"description"`
}

// PhaseStyles is the single shared phase -> style table. Curve segments,
// markers, dividers and the phase indicator all look colours up here.
type PhaseStyles map[Phase]PhaseStyle

// PhaseStyleOverride allows a dataset file to replace individual style fields.
type PhaseStyleOverride struct {
	Label       *string `json:"label,omitempty" yaml:"label,omitempty"`
	Color       *string `json:"color,omitempty" yaml:"color,omitempty"`
	BgColor     *string `json:"bg_color,omitempty" yaml:"bg_color,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Dataset is the immutable input to the renderer.
type Dataset struct {
	Title    string          `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle string          `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Points   []TimelinePoint `json:"points" yaml:"points"`
	Phases   PhaseStyles     `json:"-" yaml:"-"`
}

// datasetFile is the on-disk shape: points plus optional per-phase overrides.
type datasetFile struct {
	Title          string                       `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle       string                       `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Points         []TimelinePoint              `json:"points" yaml:"points"`
	PhaseOverrides map[Phase]PhaseStyleOverride `json:"phases,omitempty" yaml:"phases,omitempty"`
}

// --- Geometry Structs ---

// Margins reserve space around the drawable region of the canvas.
type Margins struct {
	Left   float64 `toml:"left"` // Axis label space
	Right  float64 `toml:"right"`
	Top    float64 `toml:"top"`
	Bottom float64 `toml:"bottom"` // Axis label space
}

// DefaultMargins are the margins the canvas reserves for axis labels.
func DefaultMargins() Margins {
	return Margins{Left: 80, Right: 40, Top: 40, Bottom: 60}
}

// CurveParams are the aesthetic constants of the eased ascent.
type CurveParams struct {
	Exponent        float64 `toml:"exponent"`         // Biases early points low, steepens the end
	JitterAmplitude float64 `toml:"jitter_amplitude"` // Pixels
	JitterFrequency float64 `toml:"jitter_frequency"` // Radians per index
}

// DefaultCurveParams returns the hand-tuned curve constants.
func DefaultCurveParams() CurveParams {
	return CurveParams{Exponent: 1.8, JitterAmplitude: 12, JitterFrequency: 0.7}
}

// DerivedPoint is the screen-space position of a timeline point, recomputed every paint.
type DerivedPoint struct {
	X, Y  float64
	Phase Phase
}

// Point is a plain 2D coordinate in CSS pixels.
type Point struct {
	X, Y float64
}

// --- Frame (Display List) Structs ---

// GridLine is a decorative guide line.
type GridLine struct {
	From, To Point
}

// CurveSegment is one stroke of the escalation curve. Ctrl is the quadratic control point.
type CurveSegment struct {
	From, Ctrl, To Point
	Phase          Phase
	Color          string
	Partial        bool // The advancing tip toward the next, not yet revealed point
}

// Marker is a point disc on the curve.
type Marker struct {
	Index  int
	Center Point
	Phase  Phase
	Color  string
	Latest bool // Most recently revealed point: larger, glowing, ringed
}

// AxisLabel is a text label drawn outside the drawable region.
type AxisLabel struct {
	Text     string
	At       Point
	Rotation float64 // Radians
}

// Frame is the complete, backend-neutral render state for one progress value.
type Frame struct {
	Width, Height float64
	Progress      float64
	VisibleCount  int
	Phase         Phase
	Style         PhaseStyle // Style of the current phase
	Grid          []GridLine
	Segments      []CurveSegment
	Markers       []Marker
	Labels        []AxisLabel
}

// ListItem is one entry of the textual point list, optionally preceded by a phase-break divider.
type ListItem struct {
	Point          TimelinePoint
	Style          PhaseStyle
	Opacity        float64
	OffsetY        float64
	PhaseBreak     bool
	DividerOffsetY float64
}

// --- Font Structs ---

// FontStyle defines common font properties.
type FontStyle struct {
	FontFamily string `toml:"font_family"`
	FontSize   int    `toml:"font_size"`
	FontWeight string `toml:"font_weight"`
}

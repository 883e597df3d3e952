package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultTitle = "The Escalation Pattern"
const defaultSubtitle = "A documented progression from poor business practices to systematic coercion"

// DefaultPhaseStyles returns the built-in phase table.
func DefaultPhaseStyles() PhaseStyles {
	return PhaseStyles{
		PhaseIncompetence: {
			Label:       "PHASE I: INCOMPETENCE",
			Color:       "#1b74e4",
			BgColor:     "#f8f9fa",
			Description: "Poor practices that create the foundation for abuse",
		},
		PhaseDeception: {
			Label:       "PHASE II: DECEPTION",
			Color:       "#ff8c00",
			BgColor:     "#fff8f0",
			Description: "Deliberate misrepresentation and manipulation",
		},
		PhaseCoercion: {
			Label:       "PHASE III: COERCION",
			Color:       "#e63946",
			BgColor:     "#fff5f5",
			Description: "Threats, retaliation, and systematic pressure",
		},
		PhaseFraud: {
			Label:       "PHASE IV: SYSTEMATIC FRAUD",
			Color:       "#a4161a",
			BgColor:     "#1a0000",
			Description: "Criminal conduct territory",
		},
	}
}

// DefaultPoints returns the built-in twelve-point escalation timeline.
func DefaultPoints() []TimelinePoint {
	return []TimelinePoint{
		{
			ID:          1,
			Title:       "Poor business practices and mismanagement",
			Description: "Repeated missed deadlines, vague delivery estimates, and shifting explanations for delays. While not illegal by themselves, these practices create foreseeable harm and set the stage for escalation. Chronic nonperformance without transparency is the baseline failure visible throughout the correspondence.",
			LegalNote:   "Negligent business conduct",
			Phase:       PhaseIncompetence,
		},
		{
			ID:          2,
			Title:       "Failure to provide clear, consistent terms",
			Description: "Pricing structures, timelines, and conditions change midstream without clear written agreement. Customers are left uncertain about what they actually agreed to versus what is later demanded. This moves beyond incompetence into deceptive conduct territory.",
			LegalNote:   "Breach of good faith and fair dealing",
			Phase:       PhaseIncompetence,
		},
		{
			ID:          3,
			Title:       "After-the-fact justification of charges",
			Description: "Internal memos and retroactive documentation are created to rationalize added costs, canceled discounts, or expedited fees that were not part of the original agreement. This suggests intentional reconstruction of the record rather than contemporaneous consent.",
			LegalNote:   "False documentation practices",
			Phase:       PhaseIncompetence,
		},
		{
			ID:          4,
			Title:       "Holding customer property as leverage",
			Description: "Customer-owned property is retained while new conditions or payments are imposed. Continued possession is used to pressure compliance rather than resolve the dispute. This crosses from unethical into legally risky conduct depending on jurisdiction.",
			LegalNote:   "Potential conversion or unlawful detention",
			Phase:       PhaseDeception,
		},
		{
			ID:          5,
			Title:       "Unilateral modification of agreements",
			Description: "Discounts are revoked, fees added, or work scope altered without customer authorization. These changes are presented as faits accomplis rather than negotiated amendments. This constitutes deceptive trade behavior in many regulatory frameworks.",
			LegalNote:   "Violates Utah Consumer Sales Practices Act",
			Phase:       PhaseDeception,
		},
		{
			ID:          6,
			Title:       "Misrepresentation of dispute status",
			Description: "Statements are made implying disputes are \"resolved,\" \"final,\" or already adjudicated when no judgment or final determination exists. This is designed to create false inevitability and suppress customer resistance.",
			LegalNote:   "Fraudulent misrepresentation",
			Phase:       PhaseDeception,
		},
		{
			ID:          7,
			Title:       "Use of false or misleading authority signals",
			Description: "Communications are sent under the banner of a \"legal department\" or purported legal agent without clear disclosure of licensing or authority. When questioned directly, clarification is avoided. This is a classic intimidation tactic and potentially unlawful.",
			LegalNote:   "Unauthorized practice of law (UPL)",
			Phase:       PhaseDeception,
		},
		{
			ID:          8,
			Title:       "Harassment after objection or dispute",
			Description: "Once a customer pushes back, communications escalate in frequency, tone, and threat level rather than de-escalating. Continued contact after explicit requests to stop moves this into harassment territory.",
			LegalNote:   "Violates FDCPA and harassment statutes",
			Phase:       PhaseCoercion,
		},
		{
			ID:          9,
			Title:       "Retaliatory financial escalation",
			Description: "Additional charges, expedited fees, or threats of increased liability appear only after disputes or chargebacks are initiated. This strongly suggests retaliation rather than legitimate cost recovery.",
			LegalNote:   "Retaliatory business practices",
			Phase:       PhaseCoercion,
		},
		{
			ID:          10,
			Title:       "Misrepresentation to third parties",
			Description: "Statements to courts or financial institutions characterize provisional or pending outcomes as definitive wins. This misleads decision-makers and strengthens coercive leverage against the customer.",
			LegalNote:   "Fraud upon the court or financial institutions",
			Phase:       PhaseCoercion,
		},
		{
			ID:          11,
			Title:       "Abuse of legal process or threat thereof",
			Description: "Litigation is invoked primarily as a pressure tool rather than a good-faith dispute resolution mechanism. Threats are framed to induce fear rather than to outline lawful remedies. This is a serious ethical and legal breach.",
			LegalNote:   "Abuse of process / Vexatious litigation",
			Phase:       PhaseFraud,
		},
		{
			ID:          12,
			Title:       "Systematic intimidation and coercion",
			Description: "Taken as a whole, the conduct reflects a repeatable pattern: delay, confuse, retain property, escalate costs, invoke dubious authority, and threaten consequences until payment is forced. At this level, the behavior functions less like a business dispute and more like coercive extraction.",
			LegalNote:   "Pattern of racketeering / Extortion",
			Phase:       PhaseFraud,
		},
	}
}

// DefaultDataset bundles the built-in points and phase table.
func DefaultDataset() Dataset {
	return Dataset{
		Title:    defaultTitle,
		Subtitle: defaultSubtitle,
		Points:   DefaultPoints(),
		Phases:   DefaultPhaseStyles(),
	}
}

// Style returns the style for a phase. Unknown phases get a neutral grey so a
// bad lookup never produces an empty colour string.
func (s PhaseStyles) Style(p Phase) PhaseStyle {
	if style, ok := s[p]; ok {
		return style
	}
	return PhaseStyle{Label: strings.ToUpper(string(p)), Color: "#333333", BgColor: "#ffffff"}
}

// Color is a shortcut for Style(p).Color.
func (s PhaseStyles) Color(p Phase) string {
	return s.Style(p).Color
}

// --- Validation ---

// Validate checks the dataset invariants: at least two points, unique ids,
// known phases with a style entry, and phases that never move backwards.
func (d Dataset) Validate() error {
	if len(d.Points) < 2 {
		return fmt.Errorf("dataset needs at least 2 points, got %d", len(d.Points))
	}
	seen := make(map[int]bool, len(d.Points))
	prevRank := -1
	for i, p := range d.Points {
		if seen[p.ID] {
			return fmt.Errorf("point %d: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = true

		rank := p.Phase.Rank()
		if rank < 0 {
			return fmt.Errorf("point %d (id %d): unknown phase %q", i, p.ID, p.Phase)
		}
		if _, ok := d.Phases[p.Phase]; !ok {
			return fmt.Errorf("point %d (id %d): no style for phase %q", i, p.ID, p.Phase)
		}
		if rank < prevRank {
			return fmt.Errorf("point %d (id %d): phase %q follows a more severe phase", i, p.ID, p.Phase)
		}
		prevRank = rank
	}
	return nil
}

// --- Loading ---

// LoadDataset reads a dataset from a JSON or YAML file. An empty path returns
// the built-in dataset. Phase overrides in the file are merged over the
// built-in phase table.
func LoadDataset(path string) (Dataset, error) {
	if path == "" {
		return DefaultDataset(), nil
	}

	log.Printf("Reading data file: %s", path)
	dataBytes, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading data file '%s': %w", path, err)
	}

	var file datasetFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = parseDatasetYAML(dataBytes, &file)
	default:
		err = parseDatasetJSON(dataBytes, &file)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("parsing data file '%s': %w", path, err)
	}

	dataset := DefaultDataset()
	dataset.Points = file.Points
	if file.Title != "" {
		dataset.Title = file.Title
	}
	if file.Subtitle != "" {
		dataset.Subtitle = file.Subtitle
	}
	for phase, override := range file.PhaseOverrides {
		dataset.Phases[phase] = getEffectivePhaseStyle(dataset.Phases[phase], &override)
	}

	if err := dataset.Validate(); err != nil {
		return Dataset{}, fmt.Errorf("data error in '%s': %w", path, err)
	}
	log.Printf("Loaded %d timeline points.", len(dataset.Points))
	return dataset, nil
}

// parseDatasetJSON accepts {"points": [...]} and falls back to a bare array.
func parseDatasetJSON(data []byte, file *datasetFile) error {
	err := json.Unmarshal(data, file)
	if err == nil {
		return nil
	}
	log.Printf("Warning: Failed to parse data as root object ('%v'), attempting direct array parsing.", err)
	var direct []TimelinePoint
	if errDirect := json.Unmarshal(data, &direct); errDirect != nil {
		// Report the original error, the object form is the documented one
		return fmt.Errorf("%w (also failed direct array parse: %v)", err, errDirect)
	}
	file.Points = direct
	return nil
}

// parseDatasetYAML mirrors parseDatasetJSON for YAML input.
func parseDatasetYAML(data []byte, file *datasetFile) error {
	err := yaml.Unmarshal(data, file)
	if err == nil && len(file.Points) > 0 {
		return nil
	}
	var direct []TimelinePoint
	if errDirect := yaml.Unmarshal(data, &direct); errDirect != nil {
		if err != nil {
			return err
		}
		return fmt.Errorf("no points found: %v", errDirect)
	}
	file.Points = direct
	return nil
}

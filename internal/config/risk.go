package config

import (
	"encoding/json"
	"fmt"
	"os"

	"campuswell/internal/model"
)

// SeverityBand is one entry in an ordered band table. A score falls into the
// band whose LowerBound is the largest one not exceeding it.
type SeverityBand struct {
	LowerBound int    `json:"lowerBound"`
	Label      string `json:"label"`
}

// RiskThresholds holds the rule cutoffs for the signal classifier. They live
// in config, not code, so deployments can tune them without a rebuild.
type RiskThresholds struct {
	AttendanceCriticalBelow float64 `json:"attendanceCriticalBelow"`
	AttendanceHighBelow     float64 `json:"attendanceHighBelow"`
	AttendanceModerateBelow float64 `json:"attendanceModerateBelow"`
	BacklogHighAt           int     `json:"backlogHighAt"`
	BacklogModerateAt       int     `json:"backlogModerateAt"`
	StressCriticalAbove     float64 `json:"stressCriticalAbove"`
	StressHighAt            float64 `json:"stressHighAt"`
	GPAHighBelow            float64 `json:"gpaHighBelow"`
	GPAModerateBelow        float64 `json:"gpaModerateBelow"`
}

// RiskConfig bundles the severity band tables and the classifier thresholds
type RiskConfig struct {
	// Bands is keyed by questionnaire kind
	Bands             map[model.QuestionnaireKind][]SeverityBand `json:"bands"`
	Thresholds        RiskThresholds                             `json:"thresholds"`
	AlertDayBucket    bool                                       `json:"alertDayBucket"`
	DeliveryTimeoutMS int                                        `json:"deliveryTimeoutMs"`
}

// DefaultRiskConfig returns the standard PHQ-9/GAD-7 tables and the published
// institutional thresholds.
func DefaultRiskConfig() *RiskConfig {
	return &RiskConfig{
		Bands: map[model.QuestionnaireKind][]SeverityBand{
			model.KindPHQ9: {
				{LowerBound: 0, Label: "Minimal"},
				{LowerBound: 5, Label: "Mild"},
				{LowerBound: 10, Label: "Moderate"},
				{LowerBound: 15, Label: "Moderately Severe"},
				{LowerBound: 20, Label: "Severe"},
			},
			model.KindGAD7: {
				{LowerBound: 0, Label: "Minimal"},
				{LowerBound: 5, Label: "Mild"},
				{LowerBound: 10, Label: "Moderate"},
				{LowerBound: 15, Label: "Severe"},
			},
		},
		Thresholds: RiskThresholds{
			AttendanceCriticalBelow: 50,
			AttendanceHighBelow:     65,
			AttendanceModerateBelow: 75,
			BacklogHighAt:           3,
			BacklogModerateAt:       1,
			StressCriticalAbove:     8,
			StressHighAt:            6,
			GPAHighBelow:            2.0,
			GPAModerateBelow:        2.5,
		},
		AlertDayBucket:    false,
		DeliveryTimeoutMS: 10000,
	}
}

// LoadRiskConfig returns the defaults, overridden by the JSON file at
// RISK_CONFIG_PATH when the variable is set.
func LoadRiskConfig() (*RiskConfig, error) {
	cfg := DefaultRiskConfig()

	path := os.Getenv("RISK_CONFIG_PATH")
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read risk config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse risk config %s: %w", path, err)
	}
	return cfg, nil
}

// BandsFor returns the band table for a questionnaire kind, or nil
func (c *RiskConfig) BandsFor(kind model.QuestionnaireKind) []SeverityBand {
	return c.Bands[kind]
}

// ValidateBands checks that the table for kind is a total, contiguous,
// non-overlapping cover of [0, maxScore]. Any violation is a ConfigError:
// the operation must fail rather than fall back to a guessed band.
func (c *RiskConfig) ValidateBands(kind model.QuestionnaireKind, maxScore int) error {
	bands := c.Bands[kind]
	if len(bands) == 0 {
		return &model.ConfigError{Detail: fmt.Sprintf("no band table for %s", kind)}
	}
	if bands[0].LowerBound != 0 {
		return &model.ConfigError{Detail: fmt.Sprintf("%s bands do not start at 0", kind)}
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].LowerBound <= bands[i-1].LowerBound {
			return &model.ConfigError{Detail: fmt.Sprintf("%s bands are not strictly increasing at %q", kind, bands[i].Label)}
		}
	}
	last := bands[len(bands)-1].LowerBound
	if last > maxScore {
		return &model.ConfigError{Detail: fmt.Sprintf("%s band %q begins past the max score %d", kind, bands[len(bands)-1].Label, maxScore)}
	}
	for _, b := range bands {
		if b.Label == "" {
			return &model.ConfigError{Detail: fmt.Sprintf("%s has a band with an empty label", kind)}
		}
	}
	return nil
}

// BandFor returns the label covering score. Call ValidateBands first; with a
// valid table every score in range maps to exactly one band.
func (c *RiskConfig) BandFor(kind model.QuestionnaireKind, score int) (string, error) {
	bands := c.Bands[kind]
	if len(bands) == 0 {
		return "", &model.ConfigError{Detail: fmt.Sprintf("no band table for %s", kind)}
	}
	label := ""
	for _, b := range bands {
		if score >= b.LowerBound {
			label = b.Label
		}
	}
	if label == "" {
		return "", &model.ConfigError{Detail: fmt.Sprintf("score %d below every %s band", score, kind)}
	}
	return label, nil
}

// BandRank returns the index of label within the kind's table, or -1. The two
// highest ranks drive the questionnaire risk rules.
func (c *RiskConfig) BandRank(kind model.QuestionnaireKind, label string) int {
	for i, b := range c.Bands[kind] {
		if b.Label == label {
			return i
		}
	}
	return -1
}

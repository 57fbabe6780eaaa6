package entities

import (
	"encoding/json"
	"fmt"
	"math"
)

// UnknownValue is substituted for identity fields missing from a scorecard
const UnknownValue = "Unknown"

// Scorecard is the scanning service's structured summary for one upload.
// Every field is optional on the wire; Summary applies the documented defaults.
type Scorecard struct {
	AppName       *string      `json:"app_name,omitempty"`
	FileName      *string      `json:"file_name,omitempty"`
	VersionName   *string      `json:"version_name,omitempty"`
	SecurityScore *json.Number `json:"security_score,omitempty"`
	High          []Finding    `json:"high,omitempty"`
	Warning       []Finding    `json:"warning,omitempty"`
	Info          []Finding    `json:"info,omitempty"`
	Secure        []Finding    `json:"secure,omitempty"`
}

// Finding is one categorized scorecard entry
type Finding struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Section     string `json:"section"`
}

// ScorecardSummary holds the scorecard values that get persisted
type ScorecardSummary struct {
	AppName         string
	BundleID        string
	Version         string
	SecurityScore   int
	HighFindings    int
	WarningFindings int
	InfoFindings    int
	SecureFindings  int
}

// Summary resolves defaults and validates the scorecard.
// Missing identity fields become "Unknown" and a missing score becomes 0.
// A score that is not a number in [0, 100] is rejected.
func (s *Scorecard) Summary() (ScorecardSummary, error) {
	summary := ScorecardSummary{
		AppName:         stringOr(s.AppName, UnknownValue),
		BundleID:        stringOr(s.FileName, UnknownValue),
		Version:         stringOr(s.VersionName, UnknownValue),
		HighFindings:    len(s.High),
		WarningFindings: len(s.Warning),
		InfoFindings:    len(s.Info),
		SecureFindings:  len(s.Secure),
	}

	if s.SecurityScore != nil && *s.SecurityScore != "" {
		score, err := s.SecurityScore.Float64()
		if err != nil {
			return ScorecardSummary{}, fmt.Errorf("invalid security_score %q: %w", s.SecurityScore.String(), err)
		}
		if math.IsNaN(score) || score < 0 || score > 100 {
			return ScorecardSummary{}, fmt.Errorf("security_score %v out of range [0, 100]", score)
		}
		summary.SecurityScore = int(math.Round(score))
	}

	return summary, nil
}

func stringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

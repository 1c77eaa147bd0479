package models

// RiskLevel is the three-tier classification driving challenge selection.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low Risk"
	RiskLevelMedium RiskLevel = "Medium Risk"
	RiskLevelHigh   RiskLevel = "High Risk"
)

func (r RiskLevel) String() string {
	return string(r)
}

// Valid reports whether r is one of the known tiers. Anything else is a
// malformed input, never a silent default.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

// RiskThresholds are the adaptive low/high cutoffs derived from a user's own
// historical score distribution.
type RiskThresholds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// RiskAssessment is the result of scoring one recovery attempt. It is derived
// on every call and never cached, since history grows between attempts.
type RiskAssessment struct {
	Score      float64        `json:"score"`
	Level      RiskLevel      `json:"level"`
	Thresholds RiskThresholds `json:"thresholds"`
}

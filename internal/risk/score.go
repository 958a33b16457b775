// Package risk holds the two scoring strategies the service has shipped with.
// The default maps the model-reported level to a constant score; the indicator
// strategy combines per-domain 0-1 indicators with fixed published weights.
package risk

import "strings"

type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// ParseLevel normalizes free text into a Level; anything unrecognized is
// MEDIUM, the baked-in midpoint default.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return LevelLow
	case "HIGH":
		return LevelHigh
	}
	return LevelMedium
}

// FinanceIndicators are model-reported 0-1 signals for finance documents.
type FinanceIndicators struct {
	Exposure            float64 `json:"financial_exposure_indicator"`
	PenaltyEscalation   float64 `json:"penalty_escalation_indicator"`
	DeadlineSensitivity float64 `json:"deadline_sensitivity_indicator"`
}

// HousingIndicators are model-reported 0-1 signals for housing documents.
type HousingIndicators struct {
	TerminationPenalty float64 `json:"termination_penalty_indicator"`
	Liability          float64 `json:"liability_clause_indicator"`
	PaymentObligation  float64 `json:"payment_obligation_indicator"`
}

// Indicators carries whichever per-domain signal set the risk stage obtained.
type Indicators struct {
	Finance *FinanceIndicators
	Housing *HousingIndicators
}

// Strategy resolves the final numeric score and level for a run.
type Strategy interface {
	Name() string
	Score(level Level, ind *Indicators) (float64, Level)
}

// ForName returns the strategy selected by configuration; unknown names get
// the label strategy.
func ForName(name string) Strategy {
	if strings.EqualFold(strings.TrimSpace(name), "indicator") {
		return IndicatorStrategy{}
	}
	return LabelStrategy{}
}

// LabelStrategy: the score is a constant mapped from the three-way level.
// LOW=0.25, MEDIUM=0.5, HIGH=0.75.
type LabelStrategy struct{}

func (LabelStrategy) Name() string { return "label" }

func (LabelStrategy) Score(level Level, _ *Indicators) (float64, Level) {
	switch level {
	case LevelLow:
		return 0.25, LevelLow
	case LevelHigh:
		return 0.75, LevelHigh
	default:
		return 0.5, LevelMedium
	}
}

// IndicatorStrategy: weighted linear combination of the domain indicators,
// level derived from fixed boundaries (<0.4 LOW, <0.7 MEDIUM, else HIGH).
// Without indicators it falls back to the label mapping.
type IndicatorStrategy struct{}

func (IndicatorStrategy) Name() string { return "indicator" }

func (s IndicatorStrategy) Score(level Level, ind *Indicators) (float64, Level) {
	switch {
	case ind != nil && ind.Finance != nil:
		score := FinanceScore(ind.Finance.Exposure, ind.Finance.PenaltyEscalation, ind.Finance.DeadlineSensitivity)
		return score, LevelForScore(score)
	case ind != nil && ind.Housing != nil:
		score := HousingScore(ind.Housing.TerminationPenalty, ind.Housing.Liability, ind.Housing.PaymentObligation)
		return score, LevelForScore(score)
	default:
		return LabelStrategy{}.Score(level, nil)
	}
}

// FinanceScore = 0.4*exposure + 0.3*penaltyEscalation + 0.3*deadlineSensitivity.
func FinanceScore(exposure, penaltyEscalation, deadlineSensitivity float64) float64 {
	return clamp01(0.4*clamp01(exposure) + 0.3*clamp01(penaltyEscalation) + 0.3*clamp01(deadlineSensitivity))
}

// HousingScore = 0.35*terminationPenalty + 0.35*liability + 0.30*paymentObligation.
func HousingScore(terminationPenalty, liability, paymentObligation float64) float64 {
	return clamp01(0.35*clamp01(terminationPenalty) + 0.35*clamp01(liability) + 0.30*clamp01(paymentObligation))
}

// LevelForScore applies the indicator-variant boundaries.
func LevelForScore(score float64) Level {
	switch {
	case score < 0.4:
		return LevelLow
	case score < 0.7:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Normalize maps value onto [0,1] between the two thresholds.
func Normalize(value, min, max float64) float64 {
	if value <= min {
		return 0
	}
	if value >= max {
		return 1
	}
	return (value - min) / (max - min)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package risk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevelDefaultsToMedium(t *testing.T) {
	require.Equal(t, LevelLow, ParseLevel(" low "))
	require.Equal(t, LevelHigh, ParseLevel("HIGH"))
	require.Equal(t, LevelMedium, ParseLevel("medium"))
	require.Equal(t, LevelMedium, ParseLevel("severe"))
	require.Equal(t, LevelMedium, ParseLevel(""))
}

func TestLabelStrategyConstantMapping(t *testing.T) {
	s := LabelStrategy{}
	for _, tc := range []struct {
		level Level
		score float64
	}{
		{LevelLow, 0.25},
		{LevelMedium, 0.5},
		{LevelHigh, 0.75},
	} {
		score, level := s.Score(tc.level, nil)
		require.Equal(t, tc.score, score)
		require.Equal(t, tc.level, level)
	}
}

func TestIndicatorBoundaries(t *testing.T) {
	require.Equal(t, LevelLow, LevelForScore(0.39))
	require.Equal(t, LevelMedium, LevelForScore(0.4))
	require.Equal(t, LevelMedium, LevelForScore(0.69))
	require.Equal(t, LevelHigh, LevelForScore(0.7))
}

func TestFinanceScoreWeights(t *testing.T) {
	require.InDelta(t, 1.0, FinanceScore(1, 1, 1), 1e-9)
	require.InDelta(t, 0.4, FinanceScore(1, 0, 0), 1e-9)
	require.InDelta(t, 0.3, FinanceScore(0, 1, 0), 1e-9)
	require.InDelta(t, 0.3, FinanceScore(0, 0, 1), 1e-9)
	// Out-of-range indicators are clamped before weighting.
	require.InDelta(t, 0.4, FinanceScore(5, -2, 0), 1e-9)
}

func TestHousingScoreWeights(t *testing.T) {
	require.InDelta(t, 0.35, HousingScore(1, 0, 0), 1e-9)
	require.InDelta(t, 0.35, HousingScore(0, 1, 0), 1e-9)
	require.InDelta(t, 0.30, HousingScore(0, 0, 1), 1e-9)
}

func TestIndicatorStrategyFallsBackWithoutIndicators(t *testing.T) {
	s := IndicatorStrategy{}
	score, level := s.Score(LevelHigh, nil)
	require.Equal(t, 0.75, score)
	require.Equal(t, LevelHigh, level)

	score, level = s.Score(LevelLow, &Indicators{Housing: &HousingIndicators{
		TerminationPenalty: 1, Liability: 1, PaymentObligation: 1,
	}})
	require.InDelta(t, 1.0, score, 1e-9)
	require.Equal(t, LevelHigh, level)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, 0.0, Normalize(100, 500, 5000))
	require.Equal(t, 1.0, Normalize(9000, 500, 5000))
	require.InDelta(t, 0.5, Normalize(2750, 500, 5000), 1e-9)
}

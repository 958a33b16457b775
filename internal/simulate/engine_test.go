package simulate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"campuslens/internal/llm"
)

func TestLeaseTerminationFormula(t *testing.T) {
	e := NewEngine(NewCatalog(), nil)
	res, err := e.Run(context.Background(), TypeLeaseTermination, map[string]float64{
		"base_penalty": 500, "months_remaining": 6, "monthly_penalty": 200,
	})
	require.NoError(t, err)
	require.Equal(t, 1700.0, res.Value)
	require.False(t, res.IsRisk)
	require.Contains(t, res.Reasoning, "$1700")
}

func TestWorkHoursViolationOverLimit(t *testing.T) {
	e := NewEngine(NewCatalog(), nil)
	res, err := e.Run(context.Background(), TypeWorkHoursViolation, map[string]float64{
		"hours_worked": 25, "max_allowed_hours": 20,
	})
	require.NoError(t, err)
	require.True(t, res.IsRisk)
	require.Contains(t, []Severity{SeverityHigh, SeverityCritical}, res.Severity)
	require.InDelta(t, 0.25, res.Value, 1e-9)
}

func TestWorkHoursWithinLimit(t *testing.T) {
	e := NewEngine(NewCatalog(), nil)
	res, err := e.Run(context.Background(), TypeWorkHoursViolation, map[string]float64{
		"hours_worked": 18, "max_allowed_hours": 20,
	})
	require.NoError(t, err)
	require.Equal(t, SeverityNone, res.Severity)
	require.Zero(t, res.Value)
}

func TestWithdrawalRefundSchedule(t *testing.T) {
	e := NewEngine(NewCatalog(), nil)
	cases := []struct {
		weeks float64
		want  float64
	}{
		{1, 8000}, {2, 7200}, {3, 4000}, {6, 2000}, {10, 0},
	}
	for _, tc := range cases {
		res, err := e.Run(context.Background(), TypeWithdrawalRefund, map[string]float64{
			"tuition_paid": 8000, "weeks_completed": tc.weeks,
		})
		require.NoError(t, err)
		require.Equal(t, tc.want, res.Value, "weeks=%v", tc.weeks)
	}
}

func TestMissedDeadlineCap(t *testing.T) {
	e := NewEngine(NewCatalog(), nil)
	res, err := e.Run(context.Background(), TypeMissedDeadline, map[string]float64{
		"days_late": 40, "penalty_per_day": 25, "penalty_cap": 500,
	})
	require.NoError(t, err)
	require.Equal(t, 500.0, res.Value)
}

func TestDefaultsUsedWhenParamsMissing(t *testing.T) {
	e := NewEngine(NewCatalog(), nil)
	res, err := e.Run(context.Background(), TypeDepositReturn, nil)
	require.NoError(t, err)
	require.Equal(t, 1000.0, res.Value) // 1200 deposit - 200 estimated deductions
}

func TestUnknownTagDelegatesToModel(t *testing.T) {
	fake := &llm.FakeClient{Default: `{"value":0.8,"severity":"HIGH","is_risk":true,"reasoning":"tight timeline"}`}
	e := NewEngine(NewCatalog(), fake)

	res, err := e.Run(context.Background(), "opt_application_delay", map[string]float64{"days_remaining": 12})
	require.NoError(t, err)
	require.Equal(t, 0.8, res.Value)
	require.Equal(t, SeverityHigh, res.Severity)
	require.True(t, res.IsRisk)
	require.Equal(t, 1, fake.CallCount)
}

func TestUnknownTagWithoutClientErrors(t *testing.T) {
	e := NewEngine(NewCatalog(), nil)
	_, err := e.Run(context.Background(), "mystery", nil)
	require.Error(t, err)
}

func TestDescriptorValidation(t *testing.T) {
	d := Descriptor{ScenarioType: "x", Label: "X", Parameters: map[string]float64{}, Formula: "f"}
	require.True(t, d.Valid())
	d.Formula = ""
	require.False(t, d.Valid())
	require.False(t, Descriptor{}.Valid())
}

func TestCatalogForDomain(t *testing.T) {
	c := NewCatalog()
	visa := c.ForDomain("visa")
	require.Len(t, visa, 2)
	for _, d := range visa {
		require.Equal(t, "visa", d.Domain)
		require.True(t, d.Valid())
	}
	require.Empty(t, c.ForDomain("unknown"))
}

package simulate

import (
	"context"
	"fmt"
	"math"
	"strings"

	"campuslens/internal/llm"
)

type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityLow      Severity = "LOW"
	SeverityModerate Severity = "MODERATE"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Result is one evaluated scenario. IsRisk distinguishes a 0-1 risk score
// from a dollar amount in Value.
type Result struct {
	ScenarioType string   `json:"scenario_type"`
	Value        float64  `json:"value"`
	Severity     Severity `json:"severity"`
	IsRisk       bool     `json:"is_risk"`
	Reasoning    string   `json:"reasoning"`
}

// Engine evaluates scenarios. Cataloged types run deterministic arithmetic;
// unrecognized tags are delegated to the model.
type Engine struct {
	catalog *Catalog
	client  llm.Client
}

func NewEngine(catalog *Catalog, client llm.Client) *Engine {
	if catalog == nil {
		catalog = NewCatalog()
	}
	return &Engine{catalog: catalog, client: client}
}

// Run evaluates one scenario. Caller parameters override catalog defaults.
func (e *Engine) Run(ctx context.Context, scenarioType string, params map[string]float64) (Result, error) {
	desc, ok := e.catalog.Lookup(scenarioType)
	if !ok {
		return e.delegate(ctx, scenarioType, params)
	}
	merged := mergeParams(desc.Parameters, params)
	switch scenarioType {
	case TypeLeaseTermination:
		return leaseTermination(merged), nil
	case TypeLateRent:
		return lateRent(merged), nil
	case TypeDepositReturn:
		return depositReturn(merged), nil
	case TypeCreditHourReduction:
		return enrollmentShortfall(TypeCreditHourReduction, merged["new_credits"], merged["min_required"]), nil
	case TypeWithdrawalRefund:
		return withdrawalRefund(merged), nil
	case TypeMissedDeadline:
		return missedDeadline(merged), nil
	case TypeWorkHoursViolation:
		return workHoursViolation(merged), nil
	case TypeCourseLoadDrop:
		return enrollmentShortfall(TypeCourseLoadDrop, merged["credits_after_drop"], merged["full_time_minimum"]), nil
	}
	return e.delegate(ctx, scenarioType, params)
}

func mergeParams(defaults, overrides map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func leaseTermination(p map[string]float64) Result {
	value := p["base_penalty"] + p["months_remaining"]*p["monthly_penalty"]
	return Result{
		ScenarioType: TypeLeaseTermination,
		Value:        value,
		Severity:     dollarSeverity(value, 500, 1500, 3000),
		IsRisk:       false,
		Reasoning: fmt.Sprintf("Terminating early costs the $%.0f base penalty plus %.0f remaining months x $%.0f: $%.0f total.",
			p["base_penalty"], p["months_remaining"], p["monthly_penalty"], value),
	}
}

func lateRent(p map[string]float64) Result {
	value := p["flat_late_fee"] + p["monthly_rent"]*(p["late_fee_percent"]/100)*p["months_late"]
	return Result{
		ScenarioType: TypeLateRent,
		Value:        value,
		Severity:     dollarSeverity(value, 50, 200, 600),
		IsRisk:       false,
		Reasoning: fmt.Sprintf("Late fees: $%.0f flat plus %.1f%% of $%.0f rent for %.0f month(s) late: $%.2f.",
			p["flat_late_fee"], p["late_fee_percent"], p["monthly_rent"], p["months_late"], value),
	}
}

func depositReturn(p map[string]float64) Result {
	value := math.Max(0, p["deposit_amount"]-p["deduction_estimate"])
	withheld := 0.0
	if p["deposit_amount"] > 0 {
		withheld = (p["deposit_amount"] - value) / p["deposit_amount"]
	}
	sev := SeverityNone
	switch {
	case withheld >= 0.75:
		sev = SeverityHigh
	case withheld >= 0.4:
		sev = SeverityModerate
	case withheld > 0.1:
		sev = SeverityLow
	}
	return Result{
		ScenarioType: TypeDepositReturn,
		Value:        value,
		Severity:     sev,
		IsRisk:       false,
		Reasoning: fmt.Sprintf("Of the $%.0f deposit, an estimated $%.0f in deductions leaves $%.0f returned (%.0f%% withheld).",
			p["deposit_amount"], p["deduction_estimate"], value, withheld*100),
	}
}

// enrollmentShortfall covers both the finance (aid eligibility) and visa
// (status) variants of dropping under the full-time minimum.
func enrollmentShortfall(scenarioType string, credits, minimum float64) Result {
	if minimum <= 0 {
		minimum = 12
	}
	shortfall := (minimum - credits) / minimum
	if shortfall <= 0 {
		return Result{
			ScenarioType: scenarioType,
			Value:        0,
			Severity:     SeverityNone,
			IsRisk:       true,
			Reasoning:    fmt.Sprintf("%.0f credits stays at or above the %.0f-credit full-time minimum.", credits, minimum),
		}
	}
	score := math.Min(1, shortfall*2)
	sev := SeverityModerate
	if credits < minimum*0.75 {
		sev = SeverityCritical
	} else if score >= 0.25 {
		sev = SeverityHigh
	}
	return Result{
		ScenarioType: scenarioType,
		Value:        score,
		Severity:     sev,
		IsRisk:       true,
		Reasoning: fmt.Sprintf("%.0f credits is below the %.0f-credit full-time minimum; enrollment status and dependent aid or visa standing are at risk.",
			credits, minimum),
	}
}

// withdrawalRefund applies the published stepped refund schedule.
func withdrawalRefund(p map[string]float64) Result {
	percent := refundPercent(p["weeks_completed"])
	value := p["tuition_paid"] * percent / 100
	sev := SeverityLow
	switch {
	case percent == 0:
		sev = SeverityHigh
	case percent <= 50:
		sev = SeverityModerate
	}
	return Result{
		ScenarioType: TypeWithdrawalRefund,
		Value:        value,
		Severity:     sev,
		IsRisk:       false,
		Reasoning: fmt.Sprintf("After %.0f completed week(s) the schedule refunds %.0f%% of the $%.0f paid: $%.0f.",
			p["weeks_completed"], percent, p["tuition_paid"], value),
	}
}

func refundPercent(weeksCompleted float64) float64 {
	switch {
	case weeksCompleted <= 1:
		return 100
	case weeksCompleted <= 2:
		return 90
	case weeksCompleted <= 4:
		return 50
	case weeksCompleted <= 8:
		return 25
	default:
		return 0
	}
}

func missedDeadline(p map[string]float64) Result {
	value := p["days_late"] * p["penalty_per_day"]
	if cap := p["penalty_cap"]; cap > 0 && value > cap {
		value = cap
	}
	return Result{
		ScenarioType: TypeMissedDeadline,
		Value:        value,
		Severity:     dollarSeverity(value, 50, 250, 500),
		IsRisk:       false,
		Reasoning: fmt.Sprintf("%.0f day(s) late at $%.0f/day accrues $%.0f (cap $%.0f).",
			p["days_late"], p["penalty_per_day"], value, p["penalty_cap"]),
	}
}

// workHoursViolation scores exceeding the authorized weekly limit (20 hours
// on-campus for F-1 students during the semester).
func workHoursViolation(p map[string]float64) Result {
	max := p["max_allowed_hours"]
	if max <= 0 {
		max = 20
	}
	worked := p["hours_worked"]
	if worked <= max {
		return Result{
			ScenarioType: TypeWorkHoursViolation,
			Value:        0,
			Severity:     SeverityNone,
			IsRisk:       true,
			Reasoning:    fmt.Sprintf("%.0f hours/week is within the %.0f-hour authorization.", worked, max),
		}
	}
	overage := (worked - max) / max
	sev := SeverityHigh
	if overage > 0.25 {
		sev = SeverityCritical
	}
	return Result{
		ScenarioType: TypeWorkHoursViolation,
		Value:        math.Min(1, overage),
		Severity:     sev,
		IsRisk:       true,
		Reasoning: fmt.Sprintf("%.0f hours/week exceeds the %.0f-hour authorization by %.0f%%; any violation can jeopardize student status.",
			worked, max, overage*100),
	}
}

func dollarSeverity(value, low, moderate, high float64) Severity {
	switch {
	case value >= high:
		return SeverityCritical
	case value >= moderate:
		return SeverityHigh
	case value >= low:
		return SeverityModerate
	case value > 0:
		return SeverityLow
	default:
		return SeverityNone
	}
}

const delegatePrompt = `You are a scenario analyst for student documents. Evaluate this what-if scenario.

SCENARIO TYPE: %s
PARAMETERS:
%s

Respond with ONLY this JSON:
{"value": <number>, "severity": "NONE|LOW|MODERATE|HIGH|CRITICAL", "is_risk": <true if value is a 0-1 risk score, false if a dollar amount>, "reasoning": "<one short paragraph>"}`

// delegate asks the model to reason about an unrecognized scenario tag.
func (e *Engine) delegate(ctx context.Context, scenarioType string, params map[string]float64) (Result, error) {
	if e.client == nil {
		return Result{}, fmt.Errorf("unknown scenario type %q", scenarioType)
	}
	var b strings.Builder
	for k, v := range params {
		fmt.Fprintf(&b, "- %s: %g\n", k, v)
	}
	var out struct {
		Value     float64 `json:"value"`
		Severity  string  `json:"severity"`
		IsRisk    bool    `json:"is_risk"`
		Reasoning string  `json:"reasoning"`
	}
	prompt := fmt.Sprintf(delegatePrompt, scenarioType, b.String())
	if err := llm.GenerateJSON(ctx, e.client, prompt, 0.4, &out); err != nil {
		return Result{}, fmt.Errorf("delegate scenario %q: %w", scenarioType, err)
	}
	sev := Severity(strings.ToUpper(strings.TrimSpace(out.Severity)))
	switch sev {
	case SeverityNone, SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical:
	default:
		sev = SeverityModerate
	}
	return Result{
		ScenarioType: scenarioType,
		Value:        out.Value,
		Severity:     sev,
		IsRisk:       out.IsRisk,
		Reasoning:    out.Reasoning,
	}, nil
}

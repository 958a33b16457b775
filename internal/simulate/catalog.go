// Package simulate evaluates "what if" scenarios against a named catalog.
// Cataloged scenario types are computed with closed-form arithmetic in code
// so every number shown to a student has an auditable derivation; only
// unrecognized tags fall back to model reasoning.
package simulate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Descriptor is one proposed what-if scenario. Parameters hold the default
// inputs a caller may override; Formula is a human-readable description of
// the calculation.
type Descriptor struct {
	ScenarioType string             `json:"scenario_type" yaml:"scenario_type"`
	Label        string             `json:"label" yaml:"label"`
	Description  string             `json:"description" yaml:"description"`
	Domain       string             `json:"domain,omitempty" yaml:"domain,omitempty"`
	Parameters   map[string]float64 `json:"parameters" yaml:"parameters"`
	Formula      string             `json:"formula" yaml:"formula"`
}

// Valid reports whether the descriptor carries every required key. Invalid
// descriptors produced by the extraction stage are dropped, not repaired.
func (d Descriptor) Valid() bool {
	return d.ScenarioType != "" && d.Label != "" && d.Parameters != nil && d.Formula != ""
}

// Scenario type tags known to the deterministic engine.
const (
	TypeLeaseTermination    = "lease_termination"
	TypeLateRent            = "late_rent"
	TypeDepositReturn       = "deposit_return"
	TypeCreditHourReduction = "credit_hour_reduction"
	TypeWithdrawalRefund    = "withdrawal_refund"
	TypeMissedDeadline      = "missed_deadline"
	TypeWorkHoursViolation  = "work_hours_violation"
	TypeCourseLoadDrop      = "course_load_drop"
)

// Catalog maps scenario type tags to their descriptors.
type Catalog struct {
	byType map[string]Descriptor
}

func builtinDescriptors() []Descriptor {
	return []Descriptor{
		{
			ScenarioType: TypeLeaseTermination,
			Label:        "Break the lease early",
			Description:  "Cost of terminating the lease before the end date.",
			Domain:       "housing",
			Parameters:   map[string]float64{"base_penalty": 500, "months_remaining": 6, "monthly_penalty": 200},
			Formula:      "base_penalty + months_remaining x monthly_penalty",
		},
		{
			ScenarioType: TypeLateRent,
			Label:        "Pay rent late",
			Description:  "Fees accrued when a rent payment is late.",
			Domain:       "housing",
			Parameters:   map[string]float64{"monthly_rent": 1200, "late_fee_percent": 5, "months_late": 1, "flat_late_fee": 50},
			Formula:      "flat_late_fee + monthly_rent x late_fee_percent% x months_late",
		},
		{
			ScenarioType: TypeDepositReturn,
			Label:        "Security deposit at move-out",
			Description:  "Expected deposit refund after estimated deductions.",
			Domain:       "housing",
			Parameters:   map[string]float64{"deposit_amount": 1200, "deduction_estimate": 200},
			Formula:      "deposit_amount - deduction_estimate",
		},
		{
			ScenarioType: TypeCreditHourReduction,
			Label:        "Drop below full-time enrollment",
			Description:  "Compliance risk of reducing enrolled credit hours.",
			Domain:       "finance",
			Parameters:   map[string]float64{"current_credits": 15, "new_credits": 9, "min_required": 12},
			Formula:      "risk from shortfall below min_required",
		},
		{
			ScenarioType: TypeWithdrawalRefund,
			Label:        "Withdraw mid-term",
			Description:  "Tuition refunded under the published refund schedule.",
			Domain:       "finance",
			Parameters:   map[string]float64{"tuition_paid": 8000, "weeks_completed": 3},
			Formula:      "tuition_paid x schedule(weeks_completed)",
		},
		{
			ScenarioType: TypeMissedDeadline,
			Label:        "Miss a payment deadline",
			Description:  "Penalty accrued for each day past the deadline.",
			Domain:       "finance",
			Parameters:   map[string]float64{"days_late": 10, "penalty_per_day": 25, "penalty_cap": 500},
			Formula:      "min(days_late x penalty_per_day, penalty_cap)",
		},
		{
			ScenarioType: TypeWorkHoursViolation,
			Label:        "Work over the weekly hour limit",
			Description:  "Status risk from exceeding the authorized work hours.",
			Domain:       "visa",
			Parameters:   map[string]float64{"hours_worked": 22, "max_allowed_hours": 20},
			Formula:      "risk from hours_worked over max_allowed_hours",
		},
		{
			ScenarioType: TypeCourseLoadDrop,
			Label:        "Drop a course mid-semester",
			Description:  "Status risk of falling under the full-time course load.",
			Domain:       "visa",
			Parameters:   map[string]float64{"credits_after_drop": 10, "full_time_minimum": 12},
			Formula:      "risk from credits_after_drop below full_time_minimum",
		},
	}
}

// NewCatalog returns the builtin catalog.
func NewCatalog() *Catalog {
	c := &Catalog{byType: make(map[string]Descriptor)}
	for _, d := range builtinDescriptors() {
		c.byType[d.ScenarioType] = d
	}
	return c
}

// LoadCatalog merges YAML overrides over the builtin catalog. An empty path
// returns the builtin catalog unchanged.
func LoadCatalog(path string) (*Catalog, error) {
	c := NewCatalog()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario catalog: %w", err)
	}
	var overrides struct {
		Scenarios []Descriptor `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse scenario catalog: %w", err)
	}
	for _, d := range overrides.Scenarios {
		if !d.Valid() {
			continue
		}
		c.byType[d.ScenarioType] = d
	}
	return c, nil
}

// Lookup returns the descriptor for a scenario type tag.
func (c *Catalog) Lookup(scenarioType string) (Descriptor, bool) {
	d, ok := c.byType[scenarioType]
	return d, ok
}

// ForDomain lists cataloged descriptors for one domain.
func (c *Catalog) ForDomain(domain string) []Descriptor {
	var out []Descriptor
	for _, d := range builtinDescriptors() {
		if merged, ok := c.byType[d.ScenarioType]; ok && merged.Domain == domain {
			out = append(out, merged)
		}
	}
	return out
}

package assignment

import (
	"strings"

	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/pkg/errors"
)

// DefaultPolicy fills missing frequency configuration for well-known
// obligations.  Generation and backfill consult the same table, so a
// subactivity created before its configuration was mandatory derives the
// same periods everywhere.  Obligations absent from the table get no
// defaults; their missing fields stay validation errors.
type DefaultPolicy struct {
	byName map[string]FrequencySpec
}

// NewDefaultPolicy returns the consolidated defaulting table.  Keys are
// case-insensitive obligation (subactivity) names.
func NewDefaultPolicy() *DefaultPolicy {
	return &DefaultPolicy{byName: map[string]FrequencySpec{
		// Register-quarter filings fall due on the 18th of the closing
		// month of each quarter.
		"gst return": {
			Months: []string{"September", "December", "March", "June"},
			Day:    18,
		},
		// Payroll statutory deposits are due mid-month.
		"pf deposit":  {Day: 15},
		"esi deposit": {Day: 15},
		// Withholding deposits are due on the 7th.
		"tds deposit": {Day: 7},
		// Annual statements file at the end of September.
		"annual return": {Months: []string{"September"}, Day: 30},
	}}
}

// NewDefaultPolicyFrom builds a policy from an externally supplied table,
// for configuration-driven overrides.
func NewDefaultPolicyFrom(table map[string]FrequencySpec) *DefaultPolicy {
	byName := make(map[string]FrequencySpec, len(table))
	for name, spec := range table {
		byName[strings.ToLower(strings.TrimSpace(name))] = spec
	}
	return &DefaultPolicy{byName: byName}
}

// Apply merges defaults for the named obligation into spec: a field already
// set on spec wins, a zero field takes the table's value.  The input spec is
// returned unchanged when the name has no entry.
func (p *DefaultPolicy) Apply(name string, spec FrequencySpec) FrequencySpec {
	def, ok := p.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return spec
	}
	if spec.Interval == 0 {
		spec.Interval = def.Interval
	}
	if spec.TimeOfDay == "" {
		spec.TimeOfDay = def.TimeOfDay
	}
	if len(spec.Weekdays) == 0 {
		spec.Weekdays = def.Weekdays
	}
	if spec.Day == 0 {
		spec.Day = def.Day
	}
	if len(spec.Months) == 0 {
		spec.Months = def.Months
	}
	if spec.QuarterScheme == "" {
		spec.QuarterScheme = def.QuarterScheme
	}
	return spec
}

// Resolve applies defaults for sub's name and resolves the merged spec into
// the typed configuration for sub's frequency class.
func (p *DefaultPolicy) Resolve(sub Subactivity) (schedule.FrequencyConfig, error) {
	if !sub.Frequency.Recurring() {
		return nil, errors.Newf(errors.ErrCodeFrequencyUnsupported,
			"subactivity %q frequency %q is not recurring", sub.Name, sub.Frequency)
	}
	return p.Apply(sub.Name, sub.Spec).Resolve(sub.Frequency)
}

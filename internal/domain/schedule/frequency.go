// Package schedule implements the recurrence calendar of the compliance
// engine: frequency configurations, canonical period identifiers, due-date
// resolution, and financial-year arithmetic.  Everything in this package is
// pure calendar math with no I/O, store access, or wall-clock reads.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/complytrack/complytrack/pkg/errors"
)

// Frequency enumerates how often an obligation recurs.
type Frequency string

const (
	FrequencyNone      Frequency = "none"
	FrequencyOneTime   Frequency = "one_time"
	FrequencyHourly    Frequency = "hourly"
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Recurring reports whether the frequency produces periodic work records.
// None and OneTime obligations are tracked elsewhere and never enter the
// generation passes.
func (f Frequency) Recurring() bool {
	switch f {
	case FrequencyHourly, FrequencyDaily, FrequencyWeekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	default:
		return false
	}
}

// RecurringFrequencies lists every frequency class the generator schedules,
// in ascending cadence order.
func RecurringFrequencies() []Frequency {
	return []Frequency{
		FrequencyHourly, FrequencyDaily, FrequencyWeekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly,
	}
}

// TimeOfDay is a civil wall-clock time within the business time zone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "time of day %q is not HH:MM", s)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "time of day %q out of range", s)
	}
	return t, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ─────────────────────────────────────────────────────────────────────────────
// FrequencyConfig: one variant per frequency class
// ─────────────────────────────────────────────────────────────────────────────

// FrequencyConfig is the sum type of per-class recurrence configurations.
// Each variant carries only the fields its class needs, so a missing required
// field is a validation error on that variant rather than a nil-check
// scattered across call sites.  Defaulting absent configurations is the
// generator's job (see assignment.DefaultPolicy), never this package's.
type FrequencyConfig interface {
	// Frequency identifies the class of the variant.
	Frequency() Frequency

	// Validate reports the first missing or out-of-range field.
	Validate() error
}

// HourlyConfig recurs every Interval hours (1–24).
type HourlyConfig struct {
	Interval int
}

func (HourlyConfig) Frequency() Frequency { return FrequencyHourly }

func (c HourlyConfig) Validate() error {
	if c.Interval == 0 {
		return errors.New(errors.ErrCodeFrequencyConfigMissing, "hourly interval not set")
	}
	if c.Interval < 1 || c.Interval > 24 {
		return errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "hourly interval %d outside 1-24", c.Interval)
	}
	return nil
}

// DailyConfig recurs every day at a fixed wall-clock time.
type DailyConfig struct {
	At TimeOfDay
}

func (DailyConfig) Frequency() Frequency { return FrequencyDaily }

func (c DailyConfig) Validate() error {
	if c.At.Hour < 0 || c.At.Hour > 23 || c.At.Minute < 0 || c.At.Minute > 59 {
		return errors.New(errors.ErrCodeFrequencyConfigInvalid, "daily time of day out of range")
	}
	return nil
}

// WeeklyConfig recurs on a set of weekdays at a fixed wall-clock time.
type WeeklyConfig struct {
	Weekdays []time.Weekday
	At       TimeOfDay
}

func (WeeklyConfig) Frequency() Frequency { return FrequencyWeekly }

func (c WeeklyConfig) Validate() error {
	if len(c.Weekdays) == 0 {
		return errors.New(errors.ErrCodeFrequencyConfigMissing, "weekly weekday set not set")
	}
	for _, d := range c.Weekdays {
		if d < time.Sunday || d > time.Saturday {
			return errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "weekday %d out of range", int(d))
		}
	}
	return nil
}

// earliestWeekday returns the smallest configured weekday; used as the
// deterministic due day within a weekly period.
func (c WeeklyConfig) earliestWeekday() time.Weekday {
	days := make([]int, 0, len(c.Weekdays))
	for _, d := range c.Weekdays {
		days = append(days, int(d))
	}
	sort.Ints(days)
	return time.Weekday(days[0])
}

// MonthlyConfig recurs on a day of every month.
type MonthlyConfig struct {
	Day int // 1–31, clamped to the month's last day
	At  TimeOfDay
}

func (MonthlyConfig) Frequency() Frequency { return FrequencyMonthly }

func (c MonthlyConfig) Validate() error {
	if c.Day == 0 {
		return errors.New(errors.ErrCodeFrequencyConfigMissing, "monthly day-of-month not set")
	}
	if c.Day < 1 || c.Day > 31 {
		return errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "monthly day %d outside 1-31", c.Day)
	}
	return nil
}

// QuarterlyConfig recurs in four configured months, once per quarter, under a
// quarter-numbering scheme.  The zero Scheme resolves to the register scheme.
type QuarterlyConfig struct {
	Months []time.Month // exactly four, one per quarter
	Day    int
	At     TimeOfDay
	Scheme QuarterScheme
}

func (QuarterlyConfig) Frequency() Frequency { return FrequencyQuarterly }

func (c QuarterlyConfig) Validate() error {
	if len(c.Months) == 0 {
		return errors.New(errors.ErrCodeFrequencyConfigMissing, "quarterly month set not set")
	}
	if len(c.Months) != 4 {
		return errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "quarterly month set has %d entries, want 4", len(c.Months))
	}
	if c.Day == 0 {
		return errors.New(errors.ErrCodeFrequencyConfigMissing, "quarterly day-of-month not set")
	}
	if c.Day < 1 || c.Day > 31 {
		return errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "quarterly day %d outside 1-31", c.Day)
	}
	seen := map[int]bool{}
	for _, m := range c.Months {
		if m < time.January || m > time.December {
			return errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "quarterly month %d out of range", int(m))
		}
		q := c.Scheme.orDefault().QuarterOf(m)
		if seen[q] {
			return errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "quarterly months map two entries to Q%d", q)
		}
		seen[q] = true
	}
	return nil
}

// YearlyConfig recurs in one or more configured months each financial year.
type YearlyConfig struct {
	Months []time.Month
	Day    int
	At     TimeOfDay
}

func (YearlyConfig) Frequency() Frequency { return FrequencyYearly }

func (c YearlyConfig) Validate() error {
	if len(c.Months) == 0 {
		return errors.New(errors.ErrCodeFrequencyConfigMissing, "yearly month set not set")
	}
	if c.Day == 0 {
		return errors.New(errors.ErrCodeFrequencyConfigMissing, "yearly date-of-month not set")
	}
	if c.Day < 1 || c.Day > 31 {
		return errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "yearly day %d outside 1-31", c.Day)
	}
	for _, m := range c.Months {
		if m < time.January || m > time.December {
			return errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "yearly month %d out of range", int(m))
		}
	}
	return nil
}

// containsMonth reports whether m appears in months.
func containsMonth(months []time.Month, m time.Month) bool {
	for _, x := range months {
		if x == m {
			return true
		}
	}
	return false
}

// containsWeekday reports whether d appears in days.
func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, x := range days {
		if x == d {
			return true
		}
	}
	return false
}

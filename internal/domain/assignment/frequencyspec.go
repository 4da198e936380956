package assignment

import (
	"strings"
	"time"

	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/pkg/errors"
)

// FrequencySpec is the stored shape of a frequency configuration: a single
// document of optional fields, of which each frequency class reads its own
// subset.  Resolve turns it into the typed variant for that class; fields the
// class does not use are ignored, fields it needs but that are absent stay
// absent (the defaulting policy, not this type, fills gaps).
type FrequencySpec struct {
	// Hourly.
	Interval int `json:"interval,omitempty"`

	// Daily, weekly, monthly, quarterly, yearly.
	TimeOfDay string `json:"time_of_day,omitempty"` // "HH:MM"

	// Weekly.
	Weekdays []string `json:"weekdays,omitempty"` // "Monday", ...

	// Monthly, quarterly, yearly.
	Day int `json:"day,omitempty"`

	// Quarterly (exactly four), yearly (one or more).
	Months []string `json:"months,omitempty"` // "January", ...

	// Quarterly. Empty means the register scheme.
	QuarterScheme string `json:"quarter_scheme,omitempty"`
}

// IsZero reports whether no field of the spec is set.
func (s FrequencySpec) IsZero() bool {
	return s.Interval == 0 && s.TimeOfDay == "" && len(s.Weekdays) == 0 &&
		s.Day == 0 && len(s.Months) == 0 && s.QuarterScheme == ""
}

// Resolve converts the stored spec into the typed configuration for freq and
// validates it.  Absent required fields surface as configuration errors with
// the field named, never as guessed defaults.
func (s FrequencySpec) Resolve(freq schedule.Frequency) (schedule.FrequencyConfig, error) {
	cfg, err := s.build(freq)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s FrequencySpec) build(freq schedule.Frequency) (schedule.FrequencyConfig, error) {
	at, err := s.timeOfDay()
	if err != nil {
		return nil, err
	}

	switch freq {
	case schedule.FrequencyHourly:
		return schedule.HourlyConfig{Interval: s.Interval}, nil
	case schedule.FrequencyDaily:
		return schedule.DailyConfig{At: at}, nil
	case schedule.FrequencyWeekly:
		days, err := s.weekdays()
		if err != nil {
			return nil, err
		}
		return schedule.WeeklyConfig{Weekdays: days, At: at}, nil
	case schedule.FrequencyMonthly:
		return schedule.MonthlyConfig{Day: s.Day, At: at}, nil
	case schedule.FrequencyQuarterly:
		months, err := s.months()
		if err != nil {
			return nil, err
		}
		scheme, err := s.scheme()
		if err != nil {
			return nil, err
		}
		return schedule.QuarterlyConfig{Months: months, Day: s.Day, At: at, Scheme: scheme}, nil
	case schedule.FrequencyYearly:
		months, err := s.months()
		if err != nil {
			return nil, err
		}
		return schedule.YearlyConfig{Months: months, Day: s.Day, At: at}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeFrequencyUnsupported, "frequency %q has no configuration shape", freq)
	}
}

func (s FrequencySpec) timeOfDay() (schedule.TimeOfDay, error) {
	if s.TimeOfDay == "" {
		return schedule.TimeOfDay{}, nil
	}
	return schedule.ParseTimeOfDay(s.TimeOfDay)
}

func (s FrequencySpec) weekdays() ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(s.Weekdays))
	for _, name := range s.Weekdays {
		d, ok := weekdayByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "unknown weekday %q", name)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s FrequencySpec) months() ([]time.Month, error) {
	out := make([]time.Month, 0, len(s.Months))
	for _, name := range s.Months {
		m, ok := monthByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "unknown month %q", name)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s FrequencySpec) scheme() (schedule.QuarterScheme, error) {
	switch strings.ToLower(strings.TrimSpace(s.QuarterScheme)) {
	case "":
		return "", nil
	case string(schedule.QuarterSchemeRegister):
		return schedule.QuarterSchemeRegister, nil
	case string(schedule.QuarterSchemeCalendar):
		return schedule.QuarterSchemeCalendar, nil
	default:
		return "", errors.Newf(errors.ErrCodeFrequencyConfigInvalid, "unknown quarter scheme %q", s.QuarterScheme)
	}
}

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var monthByName = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

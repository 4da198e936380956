package schedule

import (
	"fmt"
	"time"

	"github.com/complytrack/complytrack/pkg/errors"
)

// Canonical period identifier shapes, one per frequency class:
//
//	hourly     2024-04-01-09        (slot opening hour)
//	daily      2024-04-01
//	weekly     2024-W14
//	monthly    April-2024
//	quarterly  Q1-2025              (quarter under the config's scheme)
//	yearly     2024 / 2024-February (financial start year[, month])
//
// The identifier is the natural key component of a work record: deriving the
// same instant twice, or overlapping windows, always yields identical strings.

// DerivePeriod returns the canonical period identifier containing ref.
// ok is false when the frequency does not fall due in ref's calendar unit
// (e.g. a quarterly obligation outside its configured months); that is not
// an error, there is simply nothing to generate.
//
// All date arithmetic runs in ref's location; callers pass instants already
// expressed in the business time zone.
func DerivePeriod(cfg FrequencyConfig, ref time.Time) (string, bool, error) {
	if cfg == nil {
		return "", false, errors.New(errors.ErrCodeFrequencyConfigMissing, "frequency configuration absent")
	}
	if err := cfg.Validate(); err != nil {
		return "", false, err
	}

	switch c := cfg.(type) {
	case HourlyConfig:
		return hourlyPeriodID(ref, c.Interval), true, nil

	case DailyConfig:
		return dailyPeriodID(ref), true, nil

	case WeeklyConfig:
		return weeklyPeriodID(ref), true, nil

	case MonthlyConfig:
		return monthlyPeriodID(ref.Year(), ref.Month()), true, nil

	case QuarterlyConfig:
		if !containsMonth(c.Months, ref.Month()) {
			return "", false, nil
		}
		return quarterlyPeriodID(c.Scheme, ref.Year(), ref.Month()), true, nil

	case YearlyConfig:
		if !containsMonth(c.Months, ref.Month()) {
			return "", false, nil
		}
		return yearlyPeriodID(c, ref.Year(), ref.Month()), true, nil

	default:
		return "", false, errors.Newf(errors.ErrCodeFrequencyUnsupported,
			"frequency %q has no period semantics", cfg.Frequency())
	}
}

// DerivePeriodsBetween enumerates every period identifier of cfg whose
// occurrence falls inside [from, to].  Monthly, quarterly, and yearly classes
// walk month-by-month rather than day-by-day, so a qualifying month contributes
// exactly one period regardless of the window's day resolution.
func DerivePeriodsBetween(cfg FrequencyConfig, from, to time.Time) ([]string, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeFrequencyConfigMissing, "frequency configuration absent")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, errors.InvalidParam("window end precedes window start")
	}

	loc := from.Location()

	switch c := cfg.(type) {
	case HourlyConfig:
		// Slots restart at midnight, matching hourlyPeriodID's hour-of-day
		// arithmetic, so an interval that does not divide 24 closes each day
		// with a short final slot instead of drifting across it.
		var out []string
		for d := startOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
			dayEnd := d.AddDate(0, 0, 1)
			for h := 0; h < 24; h += c.Interval {
				slot := time.Date(d.Year(), d.Month(), d.Day(), h, 0, 0, 0, loc)
				if slot.After(to) {
					break
				}
				end := slot.Add(time.Duration(c.Interval) * time.Hour)
				if end.After(dayEnd) {
					end = dayEnd
				}
				if !end.After(from) {
					continue
				}
				out = append(out, hourlyPeriodID(slot, c.Interval))
			}
		}
		return out, nil

	case DailyConfig:
		var out []string
		for d := startOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
			out = append(out, dailyPeriodID(d))
		}
		return out, nil

	case WeeklyConfig:
		// A week qualifies only when one of the configured weekdays falls
		// inside the window.
		var out []string
		last := ""
		for d := startOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
			if !containsWeekday(c.Weekdays, d.Weekday()) {
				continue
			}
			if id := weeklyPeriodID(d); id != last {
				out = append(out, id)
				last = id
			}
		}
		return out, nil

	case MonthlyConfig:
		var out []string
		walkMonths(from, to, func(y int, m time.Month) {
			occ := civilDate(y, m, c.Day, c.At, loc)
			if !occ.Before(from) && !occ.After(to) {
				out = append(out, monthlyPeriodID(y, m))
			}
		})
		return out, nil

	case QuarterlyConfig:
		var out []string
		walkMonths(from, to, func(y int, m time.Month) {
			if !containsMonth(c.Months, m) {
				return
			}
			occ := civilDate(y, m, c.Day, c.At, loc)
			if !occ.Before(from) && !occ.After(to) {
				out = append(out, quarterlyPeriodID(c.Scheme, y, m))
			}
		})
		return out, nil

	case YearlyConfig:
		var out []string
		walkMonths(from, to, func(y int, m time.Month) {
			if !containsMonth(c.Months, m) {
				return
			}
			occ := civilDate(y, m, c.Day, c.At, loc)
			if !occ.Before(from) && !occ.After(to) {
				out = append(out, yearlyPeriodID(c, y, m))
			}
		})
		return out, nil

	default:
		return nil, errors.Newf(errors.ErrCodeFrequencyUnsupported,
			"frequency %q has no period semantics", cfg.Frequency())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Identifier construction
// ─────────────────────────────────────────────────────────────────────────────

func hourlyPeriodID(t time.Time, interval int) string {
	slot := (t.Hour() / interval) * interval
	return fmt.Sprintf("%04d-%02d-%02d-%02d", t.Year(), int(t.Month()), t.Day(), slot)
}

func dailyPeriodID(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// weeklyPeriodID numbers weeks from day-of-year offset by the weekday of
// January 1st, so every date of a year maps into weeks 1..54 of that same
// year.  This matches the register's week bookkeeping rather than ISO 8601:
// week 1 is the week containing January 1st, whatever weekday it opens on.
func weeklyPeriodID(t time.Time) string {
	return fmt.Sprintf("%04d-W%02d", t.Year(), weekNumber(t))
}

func weekNumber(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return (t.YearDay()-1+int(jan1.Weekday()))/7 + 1
}

// weekStart returns the first day (Sunday) of week w in year y.  It may fall
// in the closing days of the previous calendar year.
func weekStart(y, w int, loc *time.Location) time.Time {
	jan1 := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	return jan1.AddDate(0, 0, (w-1)*7-int(jan1.Weekday()))
}

func monthlyPeriodID(y int, m time.Month) string {
	return fmt.Sprintf("%s-%04d", m.String(), y)
}

// quarterlyPeriodID labels the quarter with the calendar year of the month
// being derived: September 2025 under the register scheme is Q1-2025.
func quarterlyPeriodID(s QuarterScheme, y int, m time.Month) string {
	return fmt.Sprintf("Q%d-%04d", s.QuarterOf(m), y)
}

// yearlyPeriodID labels the period with the financial start year of the month
// being derived.  Single-month obligations use the bare year; multi-month
// obligations disambiguate with the month name.
func yearlyPeriodID(c YearlyConfig, y int, m time.Month) string {
	start := financialStartYear(y, m)
	if len(c.Months) == 1 {
		return fmt.Sprintf("%04d", start)
	}
	return fmt.Sprintf("%04d-%s", start, m.String())
}

// ─────────────────────────────────────────────────────────────────────────────
// Calendar helpers
// ─────────────────────────────────────────────────────────────────────────────

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// walkMonths visits every (year, month) whose calendar month intersects
// [from, to], in order.
func walkMonths(from, to time.Time, visit func(y int, m time.Month)) {
	y, m := from.Year(), from.Month()
	for {
		cursor := time.Date(y, m, 1, 0, 0, 0, 0, from.Location())
		if cursor.After(to) {
			return
		}
		visit(y, m)
		m++
		if m > time.December {
			m = time.January
			y++
		}
	}
}

// civilDate builds the occurrence instant for (y, m, day) at tod, clamping
// day to the month's final day (configured day 31 in April resolves to 30).
func civilDate(y int, m time.Month, day int, tod TimeOfDay, loc *time.Location) time.Time {
	if last := lastDayOfMonth(y, m); day > last {
		day = last
	}
	return time.Date(y, m, day, tod.Hour, tod.Minute, 0, 0, loc)
}

func lastDayOfMonth(y int, m time.Month) int {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

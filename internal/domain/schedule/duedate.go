package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/complytrack/complytrack/pkg/errors"
)

// DueDate resolves a period identifier back into the concrete instant the
// obligation falls due, in loc.  The identifier is parsed under the shape of
// cfg's frequency class; quarterly identifiers resolve through the same
// QuarterScheme that derived them.
func DueDate(cfg FrequencyConfig, periodID string, loc *time.Location) (time.Time, error) {
	if cfg == nil {
		return time.Time{}, errors.New(errors.ErrCodeFrequencyConfigMissing, "frequency configuration absent")
	}
	if err := cfg.Validate(); err != nil {
		return time.Time{}, err
	}

	switch c := cfg.(type) {
	case HourlyConfig:
		var y, mo, d, h int
		if _, err := fmt.Sscanf(periodID, "%d-%d-%d-%d", &y, &mo, &d, &h); err != nil {
			return time.Time{}, malformed(periodID, FrequencyHourly)
		}
		slot := time.Date(y, time.Month(mo), d, h, 0, 0, 0, loc)
		// The config carries only an interval, so the obligation is due when
		// its slot closes.
		return slot.Add(time.Duration(c.Interval) * time.Hour), nil

	case DailyConfig:
		var y, mo, d int
		if _, err := fmt.Sscanf(periodID, "%d-%d-%d", &y, &mo, &d); err != nil {
			return time.Time{}, malformed(periodID, FrequencyDaily)
		}
		return time.Date(y, time.Month(mo), d, c.At.Hour, c.At.Minute, 0, 0, loc), nil

	case WeeklyConfig:
		var y, w int
		if _, err := fmt.Sscanf(periodID, "%d-W%d", &y, &w); err != nil {
			return time.Time{}, malformed(periodID, FrequencyWeekly)
		}
		if w < 1 || w > 54 {
			return time.Time{}, malformed(periodID, FrequencyWeekly)
		}
		day := weekStart(y, w, loc).AddDate(0, 0, int(c.earliestWeekday()))
		// Weeks never cross the year boundary in this numbering: week 1
		// opens on January 1st and the final week closes on December 31st,
		// so a weekday landing outside the labeled year clamps to the
		// boundary day.  Re-deriving the clamped date yields the same week.
		if day.Year() < y {
			day = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		} else if day.Year() > y {
			day = time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
		}
		return time.Date(day.Year(), day.Month(), day.Day(), c.At.Hour, c.At.Minute, 0, 0, loc), nil

	case MonthlyConfig:
		m, y, err := parseMonthYear(periodID)
		if err != nil {
			return time.Time{}, err
		}
		return civilDate(y, m, c.Day, c.At, loc), nil

	case QuarterlyConfig:
		var q, y int
		if _, err := fmt.Sscanf(periodID, "Q%d-%d", &q, &y); err != nil {
			return time.Time{}, malformed(periodID, FrequencyQuarterly)
		}
		anchor, err := c.Scheme.AnchorMonth(q)
		if err != nil {
			return time.Time{}, err
		}
		return civilDate(y, anchor, c.Day, c.At, loc), nil

	case YearlyConfig:
		startYear, m, err := parseYearlyPeriod(periodID, c)
		if err != nil {
			return time.Time{}, err
		}
		// Financial-year rollover: the year label names the April-opening
		// start year, so months before April fall due in the following
		// calendar year (period 2024, month February → due February 2025).
		dueYear := startYear
		if m < FinancialYearStartMonth {
			dueYear++
		}
		return civilDate(dueYear, m, c.Day, c.At, loc), nil

	default:
		return time.Time{}, errors.Newf(errors.ErrCodeFrequencyUnsupported,
			"frequency %q has no due-date semantics", cfg.Frequency())
	}
}

// FallbackDueDate is the degraded last-resort due date (the first day of the
// current month), used only for legacy records that carry no frequency
// configuration at all.  It is not business logic; new configurations must
// never rely on it.
func FallbackDueDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func malformed(periodID string, f Frequency) error {
	return errors.Newf(errors.ErrCodePeriodMalformed, "period %q does not parse as %s", periodID, f)
}

// parseMonthYear parses "April-2024".
func parseMonthYear(periodID string) (time.Month, int, error) {
	parts := strings.SplitN(periodID, "-", 2)
	if len(parts) != 2 {
		return 0, 0, malformed(periodID, FrequencyMonthly)
	}
	m, ok := monthByName(parts[0])
	if !ok {
		return 0, 0, malformed(periodID, FrequencyMonthly)
	}
	var y int
	if _, err := fmt.Sscanf(parts[1], "%d", &y); err != nil || y <= 0 {
		return 0, 0, malformed(periodID, FrequencyMonthly)
	}
	return m, y, nil
}

// parseYearlyPeriod parses "2024" (single configured month) or
// "2024-February" and returns the financial start year and the month.
func parseYearlyPeriod(periodID string, c YearlyConfig) (int, time.Month, error) {
	parts := strings.SplitN(periodID, "-", 2)
	var y int
	if _, err := fmt.Sscanf(parts[0], "%d", &y); err != nil || y <= 0 {
		return 0, 0, malformed(periodID, FrequencyYearly)
	}
	if len(parts) == 1 {
		if len(c.Months) != 1 {
			return 0, 0, errors.Newf(errors.ErrCodePeriodMalformed,
				"period %q names no month but the yearly config has %d", periodID, len(c.Months))
		}
		return y, c.Months[0], nil
	}
	m, ok := monthByName(parts[1])
	if !ok {
		return 0, 0, malformed(periodID, FrequencyYearly)
	}
	return y, m, nil
}

func monthByName(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}

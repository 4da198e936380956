package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complytrack/complytrack/pkg/errors"
)

// The business zone in production is IST; a fixed zone keeps tests
// independent of the host's tzdata.
var ist = time.FixedZone("IST", 5*3600+30*60)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, ist)
}

func TestDerivePeriodHourly(t *testing.T) {
	cfg := HourlyConfig{Interval: 6}

	id, ok, err := DerivePeriod(cfg, at(2024, time.April, 1, 14, 30))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-04-01-12", id)

	// Any instant of the same slot derives the same identifier.
	id2, _, err := DerivePeriod(cfg, at(2024, time.April, 1, 17, 59))
	require.NoError(t, err)
	assert.Equal(t, id, id2)
}

func TestDerivePeriodDaily(t *testing.T) {
	id, ok, err := DerivePeriod(DailyConfig{At: TimeOfDay{Hour: 18}}, at(2024, time.April, 1, 9, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-04-01", id)
}

func TestDerivePeriodWeekly(t *testing.T) {
	cfg := WeeklyConfig{Weekdays: []time.Weekday{time.Monday}}

	// 2024 opens on a Monday; January 1st belongs to week 1.
	id, ok, err := DerivePeriod(cfg, at(2024, time.January, 1, 10, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-W01", id)

	// January 7th 2024 is a Sunday and opens week 2.
	id, _, err = DerivePeriod(cfg, at(2024, time.January, 7, 10, 0))
	require.NoError(t, err)
	assert.Equal(t, "2024-W02", id)
}

func TestDerivePeriodMonthly(t *testing.T) {
	id, ok, err := DerivePeriod(MonthlyConfig{Day: 20}, at(2024, time.April, 3, 0, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "April-2024", id)
}

func TestDerivePeriodQuarterlyRegisterScheme(t *testing.T) {
	// GST-style register quarters: filings fall due in the closing month of
	// each quarter (Sep/Dec/Mar/Jun), numbered Q1 from July.
	cfg := QuarterlyConfig{
		Months: []time.Month{time.September, time.December, time.March, time.June},
		Day:    18,
	}

	id, ok, err := DerivePeriod(cfg, at(2025, time.September, 10, 0, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Q1-2025", id)

	// Outside the configured months nothing falls due.
	_, ok, err = DerivePeriod(cfg, at(2025, time.August, 10, 0, 0))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDerivePeriodQuarterlyCalendarScheme(t *testing.T) {
	cfg := QuarterlyConfig{
		Months: []time.Month{time.March, time.June, time.September, time.December},
		Day:    31,
		Scheme: QuarterSchemeCalendar,
	}

	id, ok, err := DerivePeriod(cfg, at(2025, time.September, 1, 0, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Q3-2025", id)
}

func TestDerivePeriodYearly(t *testing.T) {
	single := YearlyConfig{Months: []time.Month{time.February}, Day: 15}

	// February 2025 belongs to the financial year that opened in April 2024.
	id, ok, err := DerivePeriod(single, at(2025, time.February, 1, 0, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024", id)

	multi := YearlyConfig{Months: []time.Month{time.July, time.February}, Day: 15}
	id, ok, err = DerivePeriod(multi, at(2024, time.July, 1, 0, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-July", id)
}

func TestDerivePeriodMissingConfig(t *testing.T) {
	_, _, err := DerivePeriod(nil, at(2024, time.April, 1, 0, 0))
	assert.True(t, errors.IsCode(err, errors.ErrCodeFrequencyConfigMissing))

	// Quarterly without a day-of-month is an error, never a guessed default.
	_, _, err = DerivePeriod(QuarterlyConfig{
		Months: []time.Month{time.September, time.December, time.March, time.June},
	}, at(2024, time.September, 1, 0, 0))
	assert.True(t, errors.IsCode(err, errors.ErrCodeFrequencyConfigMissing))
}

func TestDerivePeriodsBetweenMonthlyWalksMonths(t *testing.T) {
	cfg := MonthlyConfig{Day: 20}

	ids, err := DerivePeriodsBetween(cfg, at(2024, time.April, 1, 0, 0), at(2024, time.April, 30, 23, 59))
	require.NoError(t, err)
	assert.Equal(t, []string{"April-2024"}, ids)

	// A three-month window yields exactly three periods, one per month,
	// regardless of how many days it spans.
	ids, err = DerivePeriodsBetween(cfg, at(2024, time.April, 1, 0, 0), at(2024, time.June, 30, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"April-2024", "May-2024", "June-2024"}, ids)
}

func TestDerivePeriodsBetweenClampsDayToMonthEnd(t *testing.T) {
	cfg := MonthlyConfig{Day: 31}

	ids, err := DerivePeriodsBetween(cfg, at(2024, time.February, 1, 0, 0), at(2024, time.February, 29, 23, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"February-2024"}, ids)
}

func TestDerivePeriodsBetweenWindowEdges(t *testing.T) {
	cfg := MonthlyConfig{Day: 20}

	// Occurrence (the 20th) outside the window: no period for that month.
	ids, err := DerivePeriodsBetween(cfg, at(2024, time.April, 21, 0, 0), at(2024, time.April, 30, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = DerivePeriodsBetween(cfg, at(2024, time.May, 1, 0, 0), at(2024, time.April, 1, 0, 0))
	assert.Error(t, err)
}

func TestDerivePeriodsBetweenWeekly(t *testing.T) {
	cfg := WeeklyConfig{Weekdays: []time.Weekday{time.Monday}}

	ids, err := DerivePeriodsBetween(cfg, at(2024, time.January, 1, 0, 0), at(2024, time.January, 14, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-W01", "2024-W02"}, ids)

	// A window containing none of the configured weekdays yields no periods.
	ids, err = DerivePeriodsBetween(cfg, at(2024, time.January, 2, 0, 0), at(2024, time.January, 6, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDerivePeriodsBetweenQuarterlyFinancialYear(t *testing.T) {
	cfg := QuarterlyConfig{
		Months: []time.Month{time.September, time.December, time.March, time.June},
		Day:    18,
	}

	fy := NewFinancialYear(2024, ist)
	ids, err := fy.Periods(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q4-2024", "Q1-2024", "Q2-2024", "Q3-2025"}, ids)
}

func TestDerivePeriodsBetweenHourly(t *testing.T) {
	cfg := HourlyConfig{Interval: 12}

	ids, err := DerivePeriodsBetween(cfg, at(2024, time.April, 1, 0, 0), at(2024, time.April, 1, 23, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-01-00", "2024-04-01-12"}, ids)
}

// Intervals that do not divide 24 restart at midnight, exactly as the
// single-instant derivation does, so enumerating a window yields every slot
// a live run inside that window would derive.
func TestDerivePeriodsBetweenHourlyOddInterval(t *testing.T) {
	cfg := HourlyConfig{Interval: 7}
	from := at(2024, time.April, 1, 0, 0)
	to := at(2024, time.April, 3, 23, 59)

	ids, err := DerivePeriodsBetween(cfg, from, to)
	require.NoError(t, err)
	assert.Contains(t, ids, "2024-04-02-21")

	enumerated := make(map[string]bool, len(ids))
	for _, id := range ids {
		enumerated[id] = true
	}
	for ref := from; !ref.After(to); ref = ref.Add(time.Hour) {
		id, ok, err := DerivePeriod(cfg, ref)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Truef(t, enumerated[id], "%q derived live at %s but not enumerated", id, ref)
	}
}

func TestQuarterSchemeMapping(t *testing.T) {
	cases := []struct {
		month   time.Month
		scheme  QuarterScheme
		quarter int
	}{
		{time.July, QuarterSchemeRegister, 1},
		{time.September, QuarterSchemeRegister, 1},
		{time.October, QuarterSchemeRegister, 2},
		{time.January, QuarterSchemeRegister, 3},
		{time.March, QuarterSchemeRegister, 3},
		{time.April, QuarterSchemeRegister, 4},
		{time.January, QuarterSchemeCalendar, 1},
		{time.December, QuarterSchemeCalendar, 4},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.quarter, tc.scheme.QuarterOf(tc.month), "%s under %s", tc.month, tc.scheme)
	}

	// The zero value resolves to the register scheme.
	assert.Equal(t, 1, QuarterScheme("").QuarterOf(time.July))
}

func TestQuarterSchemeAnchorInvertsQuarterOf(t *testing.T) {
	for _, scheme := range []QuarterScheme{QuarterSchemeRegister, QuarterSchemeCalendar} {
		for q := 1; q <= 4; q++ {
			anchor, err := scheme.AnchorMonth(q)
			require.NoError(t, err)
			assert.Equal(t, q, scheme.QuarterOf(anchor))
		}
	}
	_, err := QuarterSchemeRegister.AnchorMonth(5)
	assert.Error(t, err)
}

func TestFrequencyConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  FrequencyConfig
		code errors.ErrorCode
	}{
		{"hourly zero interval", HourlyConfig{}, errors.ErrCodeFrequencyConfigMissing},
		{"hourly interval too large", HourlyConfig{Interval: 25}, errors.ErrCodeFrequencyConfigInvalid},
		{"weekly no weekdays", WeeklyConfig{}, errors.ErrCodeFrequencyConfigMissing},
		{"monthly no day", MonthlyConfig{}, errors.ErrCodeFrequencyConfigMissing},
		{"monthly day 32", MonthlyConfig{Day: 32}, errors.ErrCodeFrequencyConfigInvalid},
		{"quarterly no months", QuarterlyConfig{Day: 10}, errors.ErrCodeFrequencyConfigMissing},
		{"quarterly three months", QuarterlyConfig{Day: 10, Months: []time.Month{time.March, time.June, time.September}}, errors.ErrCodeFrequencyConfigInvalid},
		{"quarterly two months one quarter", QuarterlyConfig{Day: 10, Months: []time.Month{time.July, time.August, time.October, time.January}}, errors.ErrCodeFrequencyConfigInvalid},
		{"yearly no months", YearlyConfig{Day: 10}, errors.ErrCodeFrequencyConfigMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code), "got %v", err)
		})
	}

	assert.NoError(t, HourlyConfig{Interval: 1}.Validate())
	assert.NoError(t, WeeklyConfig{Weekdays: []time.Weekday{time.Friday}}.Validate())
	assert.NoError(t, QuarterlyConfig{
		Months: []time.Month{time.September, time.December, time.March, time.June},
		Day:    18,
	}.Validate())
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("18:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 18, Minute: 30}, tod)
	assert.Equal(t, "18:30", tod.String())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("noon")
	assert.Error(t, err)
}

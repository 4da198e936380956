package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complytrack/complytrack/pkg/errors"
)

func TestDueDateMonthly(t *testing.T) {
	cfg := MonthlyConfig{Day: 20, At: TimeOfDay{Hour: 18, Minute: 30}}

	due, err := DueDate(cfg, "April-2024", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2024, time.April, 20, 18, 30), due)
}

func TestDueDateMonthlyClampsShortMonth(t *testing.T) {
	cfg := MonthlyConfig{Day: 31}

	due, err := DueDate(cfg, "February-2023", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2023, time.February, 28, 0, 0), due)
}

func TestDueDateQuarterlyRegisterAnchor(t *testing.T) {
	cfg := QuarterlyConfig{
		Months: []time.Month{time.September, time.December, time.March, time.June},
		Day:    18,
	}

	due, err := DueDate(cfg, "Q1-2025", ist)
	require.NoError(t, err)
	// Register Q1 anchors at July.
	assert.Equal(t, at(2025, time.July, 18, 0, 0), due)

	due, err = DueDate(cfg, "Q3-2025", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2025, time.January, 18, 0, 0), due)
}

func TestDueDateYearlyFiscalRollover(t *testing.T) {
	// Month before the April boundary: due in start-year + 1.
	feb := YearlyConfig{Months: []time.Month{time.February}, Day: 15}
	due, err := DueDate(feb, "2024", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2025, time.February, 15, 0, 0), due)

	// Month on/after the boundary: due in the start year itself.
	jul := YearlyConfig{Months: []time.Month{time.July}, Day: 31}
	due, err = DueDate(jul, "2024", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2024, time.July, 31, 0, 0), due)

	// Multi-month yearly periods carry the month in the identifier.
	multi := YearlyConfig{Months: []time.Month{time.July, time.February}, Day: 10}
	due, err = DueDate(multi, "2024-February", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2025, time.February, 10, 0, 0), due)
}

func TestDueDateWeekly(t *testing.T) {
	cfg := WeeklyConfig{Weekdays: []time.Weekday{time.Wednesday}, At: TimeOfDay{Hour: 9}}

	due, err := DueDate(cfg, "2024-W02", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2024, time.January, 10, 9, 0), due)
	assert.Equal(t, time.Wednesday, due.Weekday())
}

// Week 1 opens on January 1st whatever weekday that is, so a configured
// weekday that would land in the closing days of the prior year clamps to
// the year's first day; the closing week clamps to December 31st likewise.
// Either way the due date re-derives to the period that produced it.
func TestDueDateWeeklyYearBoundaryClamp(t *testing.T) {
	sunday := WeeklyConfig{Weekdays: []time.Weekday{time.Sunday}, At: TimeOfDay{Hour: 9}}
	due, err := DueDate(sunday, "2024-W01", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2024, time.January, 1, 9, 0), due)

	id, ok, err := DerivePeriod(sunday, due)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-W01", id)

	saturday := WeeklyConfig{Weekdays: []time.Weekday{time.Saturday}, At: TimeOfDay{Hour: 9}}
	due, err = DueDate(saturday, "2024-W53", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2024, time.December, 31, 9, 0), due)

	id, _, err = DerivePeriod(saturday, due)
	require.NoError(t, err)
	assert.Equal(t, "2024-W53", id)
}

func TestDueDateDailyAndHourly(t *testing.T) {
	due, err := DueDate(DailyConfig{At: TimeOfDay{Hour: 18}}, "2024-04-01", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2024, time.April, 1, 18, 0), due)

	// Hourly obligations fall due when their slot closes.
	due, err = DueDate(HourlyConfig{Interval: 6}, "2024-04-01-12", ist)
	require.NoError(t, err)
	assert.Equal(t, at(2024, time.April, 1, 18, 0), due)
}

func TestDueDateMalformedPeriod(t *testing.T) {
	cases := []struct {
		cfg FrequencyConfig
		id  string
	}{
		{MonthlyConfig{Day: 20}, "2024-04"},
		{MonthlyConfig{Day: 20}, "Smarch-2024"},
		{QuarterlyConfig{Months: []time.Month{time.September, time.December, time.March, time.June}, Day: 18}, "Q5-2024"},
		{WeeklyConfig{Weekdays: []time.Weekday{time.Monday}}, "2024-W99"},
		{YearlyConfig{Months: []time.Month{time.July, time.February}, Day: 10}, "2024"},
	}
	for _, tc := range cases {
		_, err := DueDate(tc.cfg, tc.id, ist)
		assert.Truef(t, errors.IsCode(err, errors.ErrCodePeriodMalformed), "%T %q: got %v", tc.cfg, tc.id, err)
	}
}

func TestDueDateFallback(t *testing.T) {
	now := at(2024, time.April, 17, 13, 45)
	assert.Equal(t, at(2024, time.April, 1, 0, 0), FallbackDueDate(now))
}

// Deriving a period and resolving its due date must land inside the same
// calendar unit as the reference instant, for every frequency class.
func TestPeriodDueDateRoundTrip(t *testing.T) {
	ref := at(2025, time.September, 9, 11, 0)

	t.Run("monthly", func(t *testing.T) {
		cfg := MonthlyConfig{Day: 20}
		id, ok, err := DerivePeriod(cfg, ref)
		require.NoError(t, err)
		require.True(t, ok)
		due, err := DueDate(cfg, id, ist)
		require.NoError(t, err)
		assert.Equal(t, ref.Month(), due.Month())
		assert.Equal(t, ref.Year(), due.Year())
	})

	t.Run("quarterly scheme agreement", func(t *testing.T) {
		for _, scheme := range []QuarterScheme{QuarterSchemeRegister, QuarterSchemeCalendar} {
			cfg := QuarterlyConfig{
				Months: []time.Month{time.September, time.December, time.March, time.June},
				Day:    18,
				Scheme: scheme,
			}
			id, ok, err := DerivePeriod(cfg, ref)
			require.NoError(t, err)
			require.True(t, ok)
			due, err := DueDate(cfg, id, ist)
			require.NoError(t, err)
			// Deriver and calculator must place the reference and the due
			// date in the same quarter of the same scheme.
			assert.Equal(t, scheme.QuarterOf(ref.Month()), scheme.QuarterOf(due.Month()))
		}
	})

	t.Run("daily", func(t *testing.T) {
		cfg := DailyConfig{At: TimeOfDay{Hour: 18}}
		id, _, err := DerivePeriod(cfg, ref)
		require.NoError(t, err)
		due, err := DueDate(cfg, id, ist)
		require.NoError(t, err)
		assert.Equal(t, ref.Day(), due.Day())
	})

	t.Run("weekly", func(t *testing.T) {
		cfg := WeeklyConfig{Weekdays: []time.Weekday{time.Tuesday}}
		id, _, err := DerivePeriod(cfg, ref)
		require.NoError(t, err)
		due, err := DueDate(cfg, id, ist)
		require.NoError(t, err)
		assert.Equal(t, weekNumber(ref), weekNumber(due))
	})

	t.Run("yearly", func(t *testing.T) {
		cfg := YearlyConfig{Months: []time.Month{time.September}, Day: 30}
		id, ok, err := DerivePeriod(cfg, ref)
		require.NoError(t, err)
		require.True(t, ok)
		due, err := DueDate(cfg, id, ist)
		require.NoError(t, err)
		assert.Equal(t, ref.Year(), due.Year())
		assert.Equal(t, time.September, due.Month())
	})
}

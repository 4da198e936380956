package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinancialYearOf(t *testing.T) {
	// Before April: belongs to the previous start year.
	fy := FinancialYearOf(at(2024, time.February, 10, 0, 0))
	assert.Equal(t, 2023, fy.StartYear)
	assert.Equal(t, "2023-24", fy.Label())

	// April onwards: opens a new financial year.
	fy = FinancialYearOf(at(2024, time.April, 1, 0, 0))
	assert.Equal(t, 2024, fy.StartYear)
	assert.Equal(t, "2024-25", fy.Label())

	assert.Equal(t, at(2024, time.April, 1, 0, 0), fy.Start)
	assert.Equal(t, 2025, fy.End.Year())
	assert.Equal(t, time.March, fy.End.Month())
	assert.Equal(t, 31, fy.End.Day())
}

func TestFinancialYearContains(t *testing.T) {
	fy := NewFinancialYear(2024, ist)

	assert.True(t, fy.Contains(at(2024, time.April, 1, 0, 0)))
	assert.True(t, fy.Contains(at(2025, time.March, 31, 23, 0)))
	assert.False(t, fy.Contains(at(2024, time.March, 31, 23, 0)))
	assert.False(t, fy.Contains(at(2025, time.April, 1, 0, 0)))
}

func TestPreviousFinancialYear(t *testing.T) {
	prev := PreviousFinancialYear(at(2024, time.June, 1, 0, 0))
	assert.Equal(t, 2023, prev.StartYear)
	assert.Equal(t, "2023-24", prev.Label())
}

func TestFinancialYearCenturyLabel(t *testing.T) {
	fy := NewFinancialYear(2099, ist)
	assert.Equal(t, "2099-00", fy.Label())
}

func TestFinancialYearPeriodsMonthly(t *testing.T) {
	fy := NewFinancialYear(2024, ist)

	ids, err := fy.Periods(MonthlyConfig{Day: 10})
	require.NoError(t, err)
	require.Len(t, ids, 12)
	assert.Equal(t, "April-2024", ids[0])
	assert.Equal(t, "March-2025", ids[11])
}

func TestFinancialYearPeriodsYearly(t *testing.T) {
	fy := NewFinancialYear(2024, ist)

	// A February obligation of FY 2024-25 occurs in calendar February 2025
	// and is labelled with the start year.
	ids, err := fy.Periods(YearlyConfig{Months: []time.Month{time.February}, Day: 15})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024"}, ids)
}

package schedule

import (
	"fmt"
	"time"
)

// FinancialYearStartMonth opens the financial year.  The business reports
// April through March.
const FinancialYearStartMonth = time.April

// FinancialYear is one April–March reporting year.
type FinancialYear struct {
	// StartYear is the calendar year of the opening April.
	StartYear int

	// Start is April 1st 00:00 of StartYear.
	Start time.Time

	// End is March 31st 23:59:59 of StartYear+1.
	End time.Time
}

// Label renders the conventional short form, e.g. "2024-25".
func (fy FinancialYear) Label() string {
	return fmt.Sprintf("%04d-%02d", fy.StartYear, (fy.StartYear+1)%100)
}

// Contains reports whether t falls inside the financial year.
func (fy FinancialYear) Contains(t time.Time) bool {
	return !t.Before(fy.Start) && !t.After(fy.End)
}

// financialStartYear returns the StartYear of the financial year that the
// calendar (y, m) pair belongs to.
func financialStartYear(y int, m time.Month) int {
	if m < FinancialYearStartMonth {
		return y - 1
	}
	return y
}

// NewFinancialYear builds the financial year opening in April of startYear,
// with boundaries in loc.
func NewFinancialYear(startYear int, loc *time.Location) FinancialYear {
	return FinancialYear{
		StartYear: startYear,
		Start:     time.Date(startYear, FinancialYearStartMonth, 1, 0, 0, 0, 0, loc),
		End:       time.Date(startYear+1, FinancialYearStartMonth, 1, 0, 0, 0, 0, loc).Add(-time.Second),
	}
}

// FinancialYearOf returns the financial year containing t.
func FinancialYearOf(t time.Time) FinancialYear {
	return NewFinancialYear(financialStartYear(t.Year(), t.Month()), t.Location())
}

// PreviousFinancialYear returns the financial year before the one containing t.
// Backfill and cleanup tooling regenerate or purge a prior year through this.
func PreviousFinancialYear(t time.Time) FinancialYear {
	return NewFinancialYear(FinancialYearOf(t).StartYear-1, t.Location())
}

// Periods enumerates every period identifier of cfg that falls inside the
// financial year, for backfill and consistency tooling.
func (fy FinancialYear) Periods(cfg FrequencyConfig) ([]string, error) {
	return DerivePeriodsBetween(cfg, fy.Start, fy.End)
}

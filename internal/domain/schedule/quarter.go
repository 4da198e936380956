package schedule

import (
	"time"

	"github.com/complytrack/complytrack/pkg/errors"
)

// QuarterScheme names a quarter-to-month mapping.  The platform historically
// carried two: the register scheme used by regulatory filings (Q1 opens in
// July) and the plain calendar scheme (Q1 opens in January).  A quarterly
// configuration names its scheme explicitly so the deriver and the due-date
// calculator always resolve quarters through the same table and cannot
// drift apart for a given obligation.
type QuarterScheme string

const (
	// QuarterSchemeRegister: Jul–Sep = Q1, Oct–Dec = Q2, Jan–Mar = Q3,
	// Apr–Jun = Q4.  The default for regulatory obligations.
	QuarterSchemeRegister QuarterScheme = "register"

	// QuarterSchemeCalendar: Jan–Mar = Q1 … Oct–Dec = Q4.
	QuarterSchemeCalendar QuarterScheme = "calendar"
)

// orDefault resolves the zero value to the register scheme.
func (s QuarterScheme) orDefault() QuarterScheme {
	if s == "" {
		return QuarterSchemeRegister
	}
	return s
}

// QuarterOf returns the quarter number (1–4) that month m belongs to.
func (s QuarterScheme) QuarterOf(m time.Month) int {
	switch s.orDefault() {
	case QuarterSchemeCalendar:
		return (int(m)-1)/3 + 1
	default: // register
		return ((int(m)-7+12)%12)/3 + 1
	}
}

// AnchorMonth returns the opening month of quarter q under the scheme.
// The due-date calculator anchors a quarter's due date to this month.
func (s QuarterScheme) AnchorMonth(q int) (time.Month, error) {
	if q < 1 || q > 4 {
		return 0, errors.Newf(errors.ErrCodePeriodMalformed, "quarter %d outside 1-4", q)
	}
	switch s.orDefault() {
	case QuarterSchemeCalendar:
		return time.Month((q-1)*3 + 1), nil
	default: // register: Q1→Jul, Q2→Oct, Q3→Jan, Q4→Apr
		return time.Month(((q-1)*3+6)%12 + 1), nil
	}
}

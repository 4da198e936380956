package assignment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/pkg/errors"
)

func TestFrequencySpecResolveMonthly(t *testing.T) {
	spec := FrequencySpec{Day: 20, TimeOfDay: "18:30"}

	cfg, err := spec.Resolve(schedule.FrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, schedule.MonthlyConfig{
		Day: 20,
		At:  schedule.TimeOfDay{Hour: 18, Minute: 30},
	}, cfg)
}

func TestFrequencySpecResolveQuarterly(t *testing.T) {
	spec := FrequencySpec{
		Months: []string{"September", "December", "March", "June"},
		Day:    18,
	}

	cfg, err := spec.Resolve(schedule.FrequencyQuarterly)
	require.NoError(t, err)
	qc, ok := cfg.(schedule.QuarterlyConfig)
	require.True(t, ok)
	assert.Equal(t, []time.Month{time.September, time.December, time.March, time.June}, qc.Months)
	// Unset scheme stays the zero value, which resolves to register.
	assert.Equal(t, schedule.QuarterScheme(""), qc.Scheme)
}

func TestFrequencySpecResolveWeekly(t *testing.T) {
	spec := FrequencySpec{Weekdays: []string{"monday", "Thursday"}, TimeOfDay: "09:00"}

	cfg, err := spec.Resolve(schedule.FrequencyWeekly)
	require.NoError(t, err)
	wc := cfg.(schedule.WeeklyConfig)
	assert.Equal(t, []time.Weekday{time.Monday, time.Thursday}, wc.Weekdays)
}

func TestFrequencySpecResolveErrors(t *testing.T) {
	cases := []struct {
		name string
		spec FrequencySpec
		freq schedule.Frequency
		code errors.ErrorCode
	}{
		{"missing monthly day", FrequencySpec{}, schedule.FrequencyMonthly, errors.ErrCodeFrequencyConfigMissing},
		{"bad weekday name", FrequencySpec{Weekdays: []string{"Funday"}}, schedule.FrequencyWeekly, errors.ErrCodeFrequencyConfigInvalid},
		{"bad month name", FrequencySpec{Months: []string{"Smarch"}, Day: 1}, schedule.FrequencyYearly, errors.ErrCodeFrequencyConfigInvalid},
		{"bad time of day", FrequencySpec{Day: 1, TimeOfDay: "25:61"}, schedule.FrequencyMonthly, errors.ErrCodeFrequencyConfigInvalid},
		{"bad scheme", FrequencySpec{Months: []string{"March", "June", "September", "December"}, Day: 1, QuarterScheme: "lunar"}, schedule.FrequencyQuarterly, errors.ErrCodeFrequencyConfigInvalid},
		{"non-recurring", FrequencySpec{}, schedule.FrequencyOneTime, errors.ErrCodeFrequencyUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.spec.Resolve(tc.freq)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestDefaultPolicyFillsMissingFields(t *testing.T) {
	policy := NewDefaultPolicy()

	// A GST subactivity stored before configuration was mandatory.
	sub := Subactivity{
		ID:        "sub-1",
		Name:      "GST Return",
		Frequency: schedule.FrequencyQuarterly,
	}

	cfg, err := policy.Resolve(sub)
	require.NoError(t, err)
	qc := cfg.(schedule.QuarterlyConfig)
	assert.Equal(t, 18, qc.Day)
	assert.Equal(t, []time.Month{time.September, time.December, time.March, time.June}, qc.Months)
}

func TestDefaultPolicyExplicitFieldsWin(t *testing.T) {
	policy := NewDefaultPolicy()

	sub := Subactivity{
		Name:      "TDS Deposit",
		Frequency: schedule.FrequencyMonthly,
		Spec:      FrequencySpec{Day: 10},
	}

	cfg, err := policy.Resolve(sub)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.(schedule.MonthlyConfig).Day)
}

func TestDefaultPolicyUnknownNameNoDefaults(t *testing.T) {
	policy := NewDefaultPolicy()

	sub := Subactivity{
		Name:      "Bespoke Filing",
		Frequency: schedule.FrequencyMonthly,
	}

	_, err := policy.Resolve(sub)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFrequencyConfigMissing))
}

func TestEffectiveSubactivities(t *testing.T) {
	subs := []Subactivity{
		{ID: "a", Frequency: schedule.FrequencyMonthly},
		{ID: "b", Frequency: schedule.FrequencyOneTime},
		{ID: "c", Frequency: schedule.FrequencyQuarterly},
	}

	// Broad assignment: every recurring subactivity, one-time excluded.
	broad := &ObligationAssignment{Subactivities: subs}
	got := broad.EffectiveSubactivities()
	require.Len(t, got, 2)
	assert.Equal(t, "a", string(got[0].ID))
	assert.Equal(t, "c", string(got[1].ID))

	// Narrowed assignment: exactly the assigned subactivity.
	narrow := &ObligationAssignment{SubactivityID: "c", Subactivities: subs}
	got = narrow.EffectiveSubactivities()
	require.Len(t, got, 1)
	assert.Equal(t, "c", string(got[0].ID))

	// Narrowed to a subactivity the activity no longer carries.
	gone := &ObligationAssignment{SubactivityID: "z", Subactivities: subs}
	assert.Empty(t, gone.EffectiveSubactivities())
}

package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complytrack/complytrack/internal/application/generation"
	"github.com/complytrack/complytrack/internal/domain/schedule"
)

func TestPassCompletedCountsOutcomes(t *testing.T) {
	m := NewEngineMetrics()

	m.PassCompleted(schedule.FrequencyMonthly, generation.PassSummary{
		Frequency: schedule.FrequencyMonthly,
		Processed: 10,
		Created:   6,
		Existing:  2,
		Skipped:   1,
		Failed:    1,
	}, 250*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.passes.WithLabelValues("monthly")))
	assert.Equal(t, float64(6), testutil.ToFloat64(m.passRecords.WithLabelValues("monthly", "created")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.passRecords.WithLabelValues("monthly", "existing")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.passRecords.WithLabelValues("monthly", "failed")))
}

func TestConflictAndDedupCounters(t *testing.T) {
	m := NewEngineMetrics()

	m.UpsertConflict(schedule.FrequencyQuarterly)
	m.UpsertConflict(schedule.FrequencyQuarterly)
	m.DuplicatesDeleted(3)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.upsertConflict.WithLabelValues("quarterly")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.dedupDeleted))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewEngineMetrics()
	m.DuplicatesDeleted(1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/complytrack/complytrack/internal/domain/assignment"
	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/internal/testutil"
	"github.com/complytrack/complytrack/pkg/types/common"
)

func quarterlyGSTAssignment(client string) *assignment.ObligationAssignment {
	return &assignment.ObligationAssignment{
		ID:         common.NewID(),
		ClientID:   common.ClientID(client),
		ActivityID: "activity-gst",
		BranchID:   "branch-1",
		Status:     common.StatusActive,
		Subactivities: []assignment.Subactivity{{
			ID:        "sub-gst",
			Name:      "GST Return",
			Frequency: schedule.FrequencyQuarterly,
			// Configuration intentionally empty: the defaulting policy
			// supplies months and day for this obligation.
		}},
	}
}

func TestBackfillFullFinancialYear(t *testing.T) {
	records := testutil.NewTimelineStore()
	store := &testutil.AssignmentStore{Assignments: []*assignment.ObligationAssignment{
		quarterlyGSTAssignment("client-1"),
	}}
	gen := newTestGenerator(store, records, testutil.NewMockLogger())

	summary, err := gen.Backfill(context.Background(), 2024, false)
	require.NoError(t, err)
	assert.Equal(t, "2024-25", summary.FinancialYear)
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 4, summary.Created)
	assert.Equal(t, 4, records.Len())
}

func TestBackfillIdempotentOverPopulatedStore(t *testing.T) {
	records := testutil.NewTimelineStore()
	store := &testutil.AssignmentStore{Assignments: []*assignment.ObligationAssignment{
		quarterlyGSTAssignment("client-1"),
	}}
	gen := newTestGenerator(store, records, testutil.NewMockLogger())

	_, err := gen.Backfill(context.Background(), 2024, false)
	require.NoError(t, err)

	again, err := gen.Backfill(context.Background(), 2024, false)
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.Equal(t, 4, again.Existing)
	assert.Equal(t, 4, records.Len())
}

// A dry run computes the identical identity set and writes nothing.
func TestBackfillDryRun(t *testing.T) {
	records := testutil.NewTimelineStore()
	store := &testutil.AssignmentStore{Assignments: []*assignment.ObligationAssignment{
		quarterlyGSTAssignment("client-1"),
	}}
	gen := newTestGenerator(store, records, testutil.NewMockLogger())

	dry, err := gen.Backfill(context.Background(), 2024, true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Len(t, dry.Planned, 4)
	assert.Zero(t, records.Len(), "dry run must not write")
	assert.Zero(t, records.Upserts(), "dry run must not touch the store")

	real, err := gen.Backfill(context.Background(), 2024, false)
	require.NoError(t, err)
	assert.Equal(t, len(dry.Planned), real.Created)
}

func TestBackfillSkipsUnresolvableConfig(t *testing.T) {
	bad := monthlyAssignment("client-bad", monthlySub("sub-bad", "Bespoke Filing", 0))

	records := testutil.NewTimelineStore()
	gen := newTestGenerator(&testutil.AssignmentStore{
		Assignments: []*assignment.ObligationAssignment{bad, quarterlyGSTAssignment("client-1")},
	}, records, testutil.NewMockLogger())

	summary, err := gen.Backfill(context.Background(), 2024, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 4, summary.Created)
}

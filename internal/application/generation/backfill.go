package generation

import (
	"context"
	"time"

	"github.com/complytrack/complytrack/internal/domain/assignment"
	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/internal/domain/timeline"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
)

// BackfillSummary reports what a backfill run did, or in dry-run mode what it
// would have done.
type BackfillSummary struct {
	FinancialYear string `json:"financial_year"`
	DryRun        bool   `json:"dry_run"`

	Processed int `json:"processed"`
	Created   int `json:"created"`
	Existing  int `json:"existing"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	// Planned lists the identity tuples a dry run would upsert.  Empty on a
	// real run.
	Planned []string `json:"planned,omitempty"`

	Elapsed time.Duration `json:"elapsed"`
}

// Backfill regenerates every period of every recurring subactivity across an
// entire financial year.  Idempotence makes this safe over a populated store:
// existing records are counted, not rewritten.  With dryRun set the periods
// and due dates are computed identically but nothing is written; the planned
// identity set is returned for operator review.
func (g *Generator) Backfill(ctx context.Context, fyStartYear int, dryRun bool) (BackfillSummary, error) {
	started := g.now()
	fy := schedule.NewFinancialYear(fyStartYear, g.loc)
	summary := BackfillSummary{FinancialYear: fy.Label(), DryRun: dryRun}
	log := g.logger.With(
		logging.String("financial_year", fy.Label()),
		logging.Bool("dry_run", dryRun),
	)

	assignments, err := g.assignments.ListAllActive(ctx)
	if err != nil {
		return summary, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading active assignments")
	}

	for _, a := range assignments {
		for _, sub := range a.EffectiveSubactivities() {
			g.backfillFor(ctx, log, a, sub, fy, dryRun, &summary)
		}
	}

	summary.Elapsed = time.Since(started)
	log.Info("backfill complete",
		logging.Int("processed", summary.Processed),
		logging.Int("created", summary.Created),
		logging.Int("existing", summary.Existing),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (g *Generator) backfillFor(ctx context.Context, log logging.Logger,
	a *assignment.ObligationAssignment, sub assignment.Subactivity,
	fy schedule.FinancialYear, dryRun bool, summary *BackfillSummary) {

	subLog := log.With(
		logging.String("client_id", string(a.ClientID)),
		logging.String("activity_id", string(a.ActivityID)),
		logging.String("subactivity_id", string(sub.ID)),
	)

	cfg, err := g.policy.Resolve(sub)
	if err != nil {
		subLog.Warn("skipping subactivity with unusable frequency configuration", logging.Err(err))
		summary.Skipped++
		return
	}

	periods, err := fy.Periods(cfg)
	if err != nil {
		subLog.Warn("skipping subactivity, period enumeration failed", logging.Err(err))
		summary.Skipped++
		return
	}

	jurisdictions := sub.Jurisdictions
	if len(jurisdictions) == 0 {
		jurisdictions = []string{""}
	}

	for _, periodID := range periods {
		due, err := schedule.DueDate(cfg, periodID, g.loc)
		if err != nil {
			subLog.Error("due date resolution failed",
				logging.String("period", periodID), logging.Err(err))
			summary.Failed++
			continue
		}
		summary.Processed++

		fyLabel := schedule.FinancialYearOf(due).Label()
		for _, jur := range jurisdictions {
			identity := timeline.Identity{
				ClientID:      a.ClientID,
				ActivityID:    a.ActivityID,
				SubactivityID: sub.ID,
				Period:        periodID,
				Jurisdiction:  jur,
			}

			if dryRun {
				summary.Planned = append(summary.Planned, identity.String())
				continue
			}

			record, err := timeline.NewWorkRecord(identity, a.BranchID, fyLabel, due)
			if err != nil {
				subLog.Error("work record construction failed",
					logging.String("identity", identity.String()), logging.Err(err))
				summary.Failed++
				continue
			}

			outcome, err := g.records.Upsert(ctx, record)
			if err != nil {
				subLog.Error("upsert failed",
					logging.String("identity", identity.String()), logging.Err(err))
				summary.Failed++
				continue
			}
			if outcome == timeline.OutcomeCreated {
				summary.Created++
				g.publishCreated(ctx, subLog, record)
			} else {
				summary.Existing++
			}
		}
	}
}

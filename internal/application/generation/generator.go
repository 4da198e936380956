// Package generation implements the timeline generator: per-frequency-class
// passes that walk active assignments, derive the period for the reference
// instant, compute the due date, and upsert one work record per identity
// tuple.  Passes are idempotent; re-running a window creates nothing new.
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

// EventPublisher emits domain events for downstream consumers.  Publishing is
// best-effort: a publish failure is logged, never fails the pass.
type EventPublisher interface {
	RecordCreated(ctx context.Context, record *timeline.WorkRecord) error
	DuplicatesRemoved(ctx context.Context, identities []string, deleted int64) error
}

// Metrics receives pass-level observations.
type Metrics interface {
	PassCompleted(freq schedule.Frequency, summary PassSummary, elapsed time.Duration)
	UpsertConflict(freq schedule.Frequency)
}

// PassSummary is the observable result of one generation pass.
type PassSummary struct {
	Frequency schedule.Frequency `json:"frequency"`

	// Processed counts (assignment, subactivity) pairs whose configuration
	// resolved and whose period applied to the reference instant.
	Processed int `json:"processed"`

	// Created counts records newly written; Existing counts upserts that
	// found the record already present.
	Created  int `json:"created"`
	Existing int `json:"existing"`

	// Skipped counts subactivities dropped for missing or invalid
	// configuration; Failed counts store-level upsert failures.
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`

	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Generator orchestrates generation passes and backfills.
type Generator struct {
	assignments assignment.Repository
	records     timeline.Repository
	policy      *assignment.DefaultPolicy
	logger      logging.Logger

	publisher EventPublisher
	metrics   Metrics
	loc       *time.Location
	now       func() time.Time
}

// Option configures optional Generator collaborators.
type Option func(*Generator)

// WithPublisher attaches an event publisher.
func WithPublisher(p EventPublisher) Option { return func(g *Generator) { g.publisher = p } }

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option { return func(g *Generator) { g.metrics = m } }

// WithLocation sets the business time zone all date arithmetic runs in.
func WithLocation(loc *time.Location) Option { return func(g *Generator) { g.loc = loc } }

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

// NewGenerator wires a Generator.  The default business zone is UTC; callers
// pass WithLocation from configuration.
func NewGenerator(assignments assignment.Repository, records timeline.Repository,
	policy *assignment.DefaultPolicy, logger logging.Logger, opts ...Option) *Generator {
	g := &Generator{
		assignments: assignments,
		records:     records,
		policy:      policy,
		logger:      logger.Named("generator"),
		loc:         time.UTC,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RunPass executes one generation pass for the given frequency class at the
// current instant.  A failing upsert is counted and logged but never aborts
// the remainder of the pass; only a failure to load assignments does.
func (g *Generator) RunPass(ctx context.Context, freq schedule.Frequency) (PassSummary, error) {
	if !freq.Recurring() {
		return PassSummary{}, errors.Newf(errors.ErrCodeFrequencyUnsupported, "no generation pass for frequency %q", freq)
	}

	started := g.now().In(g.loc)
	summary := PassSummary{Frequency: freq, StartedAt: started}
	log := g.logger.With(logging.String("frequency", string(freq)))

	assignments, err := g.assignments.ListActive(ctx, freq)
	if err != nil {
		return summary, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading active assignments")
	}

	for _, a := range assignments {
		for _, sub := range a.EffectiveSubactivities() {
			if sub.Frequency != freq {
				continue
			}
			g.generateFor(ctx, log, a, sub, started, &summary)
		}
	}

	summary.Elapsed = time.Since(started)
	g.observe(log, summary)
	return summary, nil
}

// RunAll executes one pass per recurring frequency class.  A failed pass is
// logged and the remaining classes still run.
func (g *Generator) RunAll(ctx context.Context) []PassSummary {
	out := make([]PassSummary, 0, len(schedule.RecurringFrequencies()))
	for _, freq := range schedule.RecurringFrequencies() {
		summary, err := g.RunPass(ctx, freq)
		if err != nil {
			g.logger.Error("generation pass failed",
				logging.String("frequency", string(freq)), logging.Err(err))
		}
		out = append(out, summary)
	}
	return out
}

// generateFor derives the applicable period for one subactivity at ref and
// upserts a record per jurisdiction.
func (g *Generator) generateFor(ctx context.Context, log logging.Logger,
	a *assignment.ObligationAssignment, sub assignment.Subactivity,
	ref time.Time, summary *PassSummary) {

	subLog := log.With(
		logging.String("client_id", string(a.ClientID)),
		logging.String("activity_id", string(a.ActivityID)),
		logging.String("subactivity_id", string(sub.ID)),
	)

	cfg, err := g.policy.Resolve(sub)
	if err != nil {
		// One bad configuration must not block generation for everyone else.
		subLog.Warn("skipping subactivity with unusable frequency configuration", logging.Err(err))
		summary.Skipped++
		return
	}

	periodID, ok, err := schedule.DerivePeriod(cfg, ref)
	if err != nil {
		subLog.Warn("skipping subactivity, period derivation failed", logging.Err(err))
		summary.Skipped++
		return
	}
	if !ok {
		// Nothing falls due in this unit for this configuration.
		return
	}

	due, err := schedule.DueDate(cfg, periodID, g.loc)
	if err != nil {
		subLog.Error("due date resolution failed",
			logging.String("period", periodID), logging.Err(err))
		summary.Failed++
		return
	}

	summary.Processed++
	g.upsertAll(ctx, subLog, a, sub, periodID, due, summary)
}

// upsertAll writes one record per jurisdiction of the subactivity (a single
// empty jurisdiction when none are configured).
func (g *Generator) upsertAll(ctx context.Context, log logging.Logger,
	a *assignment.ObligationAssignment, sub assignment.Subactivity,
	periodID string, due time.Time, summary *PassSummary) {

	jurisdictions := sub.Jurisdictions
	if len(jurisdictions) == 0 {
		jurisdictions = []string{""}
	}

	fyLabel := schedule.FinancialYearOf(due).Label()

	for _, jur := range jurisdictions {
		identity := timeline.Identity{
			ClientID:      a.ClientID,
			ActivityID:    a.ActivityID,
			SubactivityID: sub.ID,
			Period:        periodID,
			Jurisdiction:  jur,
		}

		record, err := timeline.NewWorkRecord(identity, a.BranchID, fyLabel, due)
		if err != nil {
			log.Error("work record construction failed",
				logging.String("identity", identity.String()), logging.Err(err))
			summary.Failed++
			continue
		}

		outcome, err := g.records.Upsert(ctx, record)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeLegacyIndexConflict) {
				// The store still carries the jurisdiction-less unique
				// index; per-jurisdiction records cannot exist until the
				// widening migration runs.
				log.Warn("upsert rejected by legacy unique index, run the index widening migration",
					logging.String("identity", identity.String()))
			} else {
				log.Error("upsert failed",
					logging.String("identity", identity.String()), logging.Err(err))
			}
			summary.Failed++
			continue
		}

		switch outcome {
		case timeline.OutcomeCreated:
			summary.Created++
			g.publishCreated(ctx, log, record)
		default:
			summary.Existing++
			if g.metrics != nil {
				g.metrics.UpsertConflict(summary.Frequency)
			}
		}
	}
}

func (g *Generator) publishCreated(ctx context.Context, log logging.Logger, record *timeline.WorkRecord) {
	if g.publisher == nil {
		return
	}
	if err := g.publisher.RecordCreated(ctx, record); err != nil {
		log.Warn("record created event not published",
			logging.String("record_id", string(record.ID)), logging.Err(err))
	}
}

func (g *Generator) observe(log logging.Logger, summary PassSummary) {
	log.Info("generation pass complete",
		logging.Int("processed", summary.Processed),
		logging.Int("created", summary.Created),
		logging.Int("existing", summary.Existing),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	if g.metrics != nil {
		g.metrics.PassCompleted(summary.Frequency, summary, summary.Elapsed)
	}
}

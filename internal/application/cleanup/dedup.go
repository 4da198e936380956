// Package cleanup removes work records that violate the one-record-per-
// identity invariant.  Duplicates exist only in stores that ran under the
// legacy narrow unique index or that were written around the constraint;
// the service keeps the earliest-created record of each group and deletes
// the rest, with a dry-run mode for operator review before destructive runs.
package cleanup

import (
	"context"
	"time"

	"github.com/complytrack/complytrack/internal/domain/timeline"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
	"github.com/complytrack/complytrack/pkg/types/common"
)

// EventPublisher emits the deletion event after a destructive run.
type EventPublisher interface {
	DuplicatesRemoved(ctx context.Context, identities []string, deleted int64) error
}

// Metrics receives cleanup observations.
type Metrics interface {
	DuplicatesDeleted(count int64)
}

// Report describes what a cleanup run deleted, or in dry-run mode exactly
// what it would delete.
type Report struct {
	DryRun bool `json:"dry_run"`

	// Groups counts identity tuples holding more than one record.
	Groups int `json:"groups"`

	// Doomed lists every record that is (or would be) deleted, with the
	// identity it duplicates.
	Doomed []DoomedRecord `json:"doomed,omitempty"`

	DeletedCount int64         `json:"deleted_count"`
	Elapsed      time.Duration `json:"elapsed"`
}

// DoomedRecord is one record marked for deletion.
type DoomedRecord struct {
	RecordID  common.ID `json:"record_id"`
	Identity  string    `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
}

// Service finds and removes duplicate work records.
type Service struct {
	records   timeline.Repository
	logger    logging.Logger
	publisher EventPublisher
	metrics   Metrics
	now       func() time.Time
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithPublisher attaches an event publisher.
func WithPublisher(p EventPublisher) Option { return func(s *Service) { s.publisher = p } }

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService wires a cleanup Service.
func NewService(records timeline.Repository, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		records: records,
		logger:  logger.Named("cleanup"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindDuplicates reports every identity tuple with more than one record.
func (s *Service) FindDuplicates(ctx context.Context) ([]timeline.DuplicateGroup, error) {
	groups, err := s.records.FindDuplicates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning for duplicate records")
	}
	if len(groups) > 0 {
		// Duplicates in a store with the widened index usually mean the
		// widening migration ran after records accumulated under the old
		// constraint's blind spot.
		s.logger.Warn("duplicate work records found",
			logging.Int("groups", len(groups)))
	}
	return groups, nil
}

// RemoveDuplicates deletes every record but the earliest-created of each
// duplicate group (ties broken by record ID ascending).  With dryRun set it
// computes and reports the identical deletion set without mutating the
// store.  Re-runnable: a second invocation over a clean store is a no-op.
func (s *Service) RemoveDuplicates(ctx context.Context, dryRun bool) (Report, error) {
	started := s.now()
	report := Report{DryRun: dryRun}

	groups, err := s.FindDuplicates(ctx)
	if err != nil {
		return report, err
	}
	report.Groups = len(groups)

	var ids []common.ID
	var identities []string
	for _, g := range groups {
		identities = append(identities, g.Identity.String())
		for _, rec := range g.Extras() {
			ids = append(ids, rec.ID)
			report.Doomed = append(report.Doomed, DoomedRecord{
				RecordID:  rec.ID,
				Identity:  g.Identity.String(),
				CreatedAt: rec.CreatedAt,
			})
		}
	}

	if dryRun || len(ids) == 0 {
		report.Elapsed = time.Since(started)
		s.logger.Info("duplicate cleanup dry run",
			logging.Int("groups", report.Groups),
			logging.Int("would_delete", len(report.Doomed)))
		return report, nil
	}

	deleted, err := s.records.DeleteByIDs(ctx, ids)
	if err != nil {
		return report, errors.Wrap(err, errors.ErrCodeDatabaseError, "deleting duplicate records")
	}
	report.DeletedCount = deleted
	report.Elapsed = time.Since(started)

	s.logger.Info("duplicate cleanup complete",
		logging.Int("groups", report.Groups),
		logging.Int64("deleted", deleted))
	if s.metrics != nil {
		s.metrics.DuplicatesDeleted(deleted)
	}
	if s.publisher != nil {
		if err := s.publisher.DuplicatesRemoved(ctx, identities, deleted); err != nil {
			s.logger.Warn("duplicates removed event not published", logging.Err(err))
		}
	}
	return report, nil
}

package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/complytrack/complytrack/internal/domain/timeline"
	"github.com/complytrack/complytrack/pkg/errors"
	"github.com/complytrack/complytrack/pkg/types/common"
)

// TimelineStore is an in-memory timeline.Repository.  Upsert is atomic under
// the mutex, matching the single-statement guarantee of the SQL repository,
// so idempotence and race tests exercise the same contract the production
// store provides.
type TimelineStore struct {
	mu      sync.Mutex
	records map[timeline.Identity]*timeline.WorkRecord

	// extras holds records injected by seeding that violate uniqueness, for
	// dedup tests.  Upsert never writes here.
	extras []*timeline.WorkRecord

	// FailNext makes the next Upsert return this error once.
	FailNext error

	upserts int
}

// NewTimelineStore returns an empty store.
func NewTimelineStore() *TimelineStore {
	return &TimelineStore{records: make(map[timeline.Identity]*timeline.WorkRecord)}
}

func (s *TimelineStore) Upsert(_ context.Context, record *timeline.WorkRecord) (timeline.UpsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++

	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return 0, err
	}

	id := record.Identity()
	if _, ok := s.records[id]; ok {
		return timeline.OutcomeExists, nil
	}
	cp := *record
	s.records[id] = &cp
	return timeline.OutcomeCreated, nil
}

func (s *TimelineStore) GetByIdentity(_ context.Context, id timeline.Identity) (*timeline.WorkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, errors.NotFound("work record")
}

func (s *TimelineStore) List(_ context.Context, filter timeline.ListFilter) ([]*timeline.WorkRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*timeline.WorkRecord
	for _, rec := range s.all() {
		if filter.ClientID != "" && rec.ClientID != filter.ClientID {
			continue
		}
		if filter.ActivityID != "" && rec.ActivityID != filter.ActivityID {
			continue
		}
		if filter.FinancialYear != "" && rec.FinancialYear != filter.FinancialYear {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if !filter.DueBefore.IsZero() && !rec.DueDate.Before(filter.DueBefore) {
			continue
		}
		if !filter.DueAfter.IsZero() && !rec.DueDate.After(filter.DueAfter) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.After(out[j].DueDate) })
	return out, nil
}

func (s *TimelineStore) FindDuplicates(_ context.Context) ([]timeline.DuplicateGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[timeline.Identity][]*timeline.WorkRecord)
	for _, rec := range s.all() {
		byID[rec.Identity()] = append(byID[rec.Identity()], rec)
	}

	var groups []timeline.DuplicateGroup
	for id, recs := range byID {
		if len(recs) < 2 {
			continue
		}
		sort.Slice(recs, func(i, j int) bool {
			if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
				return recs[i].ID < recs[j].ID
			}
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		})
		groups = append(groups, timeline.DuplicateGroup{Identity: id, Records: recs})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Identity.String() < groups[j].Identity.String()
	})
	return groups, nil
}

func (s *TimelineStore) DeleteByIDs(_ context.Context, ids []common.ID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := make(map[common.ID]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	var deleted int64
	for key, rec := range s.records {
		if doomed[rec.ID] {
			delete(s.records, key)
			deleted++
		}
	}
	kept := s.extras[:0]
	for _, rec := range s.extras {
		if doomed[rec.ID] {
			deleted++
			continue
		}
		// A surviving extra takes the map slot its deleted twin vacated.
		if _, ok := s.records[rec.Identity()]; !ok {
			s.records[rec.Identity()] = rec
			continue
		}
		kept = append(kept, rec)
	}
	s.extras = kept
	return deleted, nil
}

func (s *TimelineStore) CountByFinancialYear(_ context.Context, label string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, rec := range s.all() {
		if rec.FinancialYear == label {
			n++
		}
	}
	return n, nil
}

// Seed inserts a record directly, bypassing the uniqueness check, so tests
// can reproduce the duplicate rows a legacy store accumulated.
func (s *TimelineStore) Seed(record *timeline.WorkRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *record
	id := record.Identity()
	if _, ok := s.records[id]; ok {
		s.extras = append(s.extras, &cp)
		return
	}
	s.records[id] = &cp
}

// Len reports how many records the store holds.
func (s *TimelineStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records) + len(s.extras)
}

// Upserts reports how many Upsert calls the store has served.
func (s *TimelineStore) Upserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts
}

// all returns records plus seeded extras; callers hold the mutex.
func (s *TimelineStore) all() []*timeline.WorkRecord {
	out := make([]*timeline.WorkRecord, 0, len(s.records)+len(s.extras))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	out = append(out, s.extras...)
	return out
}

// SeedAt builds and seeds a record with an explicit creation time, for
// deterministic earliest-wins assertions.
func (s *TimelineStore) SeedAt(record *timeline.WorkRecord, createdAt time.Time) {
	cp := *record
	cp.CreatedAt = createdAt
	s.Seed(&cp)
}

var _ timeline.Repository = (*TimelineStore)(nil)

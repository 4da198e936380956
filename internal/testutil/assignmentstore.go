package testutil

import (
	"context"

	"github.com/complytrack/complytrack/internal/domain/assignment"
	"github.com/complytrack/complytrack/internal/domain/schedule"
)

// AssignmentStore is a fixed in-memory assignment.Repository.
type AssignmentStore struct {
	Assignments []*assignment.ObligationAssignment

	// FailWith makes every call return this error.
	FailWith error
}

func (s *AssignmentStore) ListActive(_ context.Context, freq schedule.Frequency) ([]*assignment.ObligationAssignment, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []*assignment.ObligationAssignment
	for _, a := range s.Assignments {
		if !active(a) {
			continue
		}
		for _, sub := range a.EffectiveSubactivities() {
			if sub.Frequency == freq {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

func (s *AssignmentStore) ListAllActive(_ context.Context) ([]*assignment.ObligationAssignment, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []*assignment.ObligationAssignment
	for _, a := range s.Assignments {
		if active(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func active(a *assignment.ObligationAssignment) bool {
	return a.Status == "" || a.Status == "active"
}

var _ assignment.Repository = (*AssignmentStore)(nil)

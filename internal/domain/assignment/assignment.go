// Package assignment holds the read models the generation passes consume:
// client-obligation assignments and the subactivity definitions they point
// at.  Both are owned by collaborating services; this package only reads
// them and resolves their stored frequency shapes into typed configurations.
package assignment

import (
	"context"

	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/pkg/types/common"
)

// Subactivity is one recurring compliance task type embedded in an activity.
// Changes to its configuration affect only future derivations, never records
// already created.
type Subactivity struct {
	ID        common.SubactivityID `json:"id"`
	Name      string               `json:"name"`
	Frequency schedule.Frequency   `json:"frequency"`
	Spec      FrequencySpec        `json:"frequency_config"`

	// Jurisdictions lists the states a multi-state obligation recurs in.
	// Empty for single-jurisdiction obligations.
	Jurisdictions []string `json:"jurisdictions,omitempty"`
}

// ObligationAssignment links a client to an activity, optionally narrowed to
// a single subactivity.  The generator reads only active assignments.
type ObligationAssignment struct {
	ID         common.ID         `json:"id"`
	ClientID   common.ClientID   `json:"client_id"`
	ActivityID common.ActivityID `json:"activity_id"`
	BranchID   common.BranchID   `json:"branch_id"`

	// SubactivityID narrows the assignment to one subactivity when set.
	// Empty means every recurring subactivity of the activity applies.
	SubactivityID common.SubactivityID `json:"subactivity_id,omitempty"`

	Status        common.Status `json:"status"`
	Subactivities []Subactivity `json:"subactivities"`
}

// EffectiveSubactivities returns the subactivities the generator must cover
// for this assignment: the explicitly assigned one when the assignment
// narrows, otherwise every recurring subactivity of the activity.
func (a *ObligationAssignment) EffectiveSubactivities() []Subactivity {
	if a.SubactivityID != "" {
		for _, sub := range a.Subactivities {
			if sub.ID == a.SubactivityID {
				return []Subactivity{sub}
			}
		}
		return nil
	}
	out := make([]Subactivity, 0, len(a.Subactivities))
	for _, sub := range a.Subactivities {
		if sub.Frequency.Recurring() {
			out = append(out, sub)
		}
	}
	return out
}

// Repository reads assignments from the client-management store.
type Repository interface {
	// ListActive returns every active assignment whose activity has at
	// least one subactivity of the given frequency class, with the matching
	// subactivity definitions attached.
	ListActive(ctx context.Context, freq schedule.Frequency) ([]*ObligationAssignment, error)

	// ListAllActive returns every active assignment regardless of
	// frequency class, for backfill runs that cover a whole fiscal year.
	ListAllActive(ctx context.Context) ([]*ObligationAssignment, error)
}

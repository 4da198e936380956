// Package timeline defines the Recurring Work Record aggregate: the unit the
// recurrence engine materialises once per (client, activity, subactivity,
// period[, jurisdiction]) tuple, and the repository contract that enforces
// that uniqueness atomically in the store.
package timeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/complytrack/complytrack/pkg/errors"
	"github.com/complytrack/complytrack/pkg/types/common"
)

// Identity is the natural key of a work record.  Jurisdiction participates
// because some obligations (multi-state registrations) recur once per state
// per period; it is the empty string for obligations without one, so the
// store's uniqueness constraint covers the full tuple either way.
type Identity struct {
	ClientID      common.ClientID
	ActivityID    common.ActivityID
	SubactivityID common.SubactivityID
	Period        string
	Jurisdiction  string
}

// String renders the tuple for logs and duplicate reports.
func (id Identity) String() string {
	s := fmt.Sprintf("%s/%s/%s@%s", id.ClientID, id.ActivityID, id.SubactivityID, id.Period)
	if id.Jurisdiction != "" {
		s += "[" + id.Jurisdiction + "]"
	}
	return s
}

// WorkRecord is one tracked occurrence of a recurring obligation.
type WorkRecord struct {
	ID            common.ID       `json:"id"`
	ClientID      common.ClientID `json:"client_id"`
	ActivityID    common.ActivityID `json:"activity_id"`
	SubactivityID common.SubactivityID `json:"subactivity_id"`
	BranchID      common.BranchID `json:"branch_id"`
	FinancialYear string          `json:"financial_year"`
	Period        string          `json:"period"`
	DueDate       time.Time       `json:"due_date"`
	Jurisdiction  string          `json:"jurisdiction,omitempty"`
	Status        common.Status   `json:"status"`
	Metadata      common.Metadata `json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewWorkRecord builds a pending record for the given identity.
func NewWorkRecord(id Identity, branch common.BranchID, financialYear string, dueDate time.Time) (*WorkRecord, error) {
	if id.ClientID == "" {
		return nil, errors.InvalidParam("client ID cannot be empty")
	}
	if id.ActivityID == "" {
		return nil, errors.InvalidParam("activity ID cannot be empty")
	}
	if id.SubactivityID == "" {
		return nil, errors.InvalidParam("subactivity ID cannot be empty")
	}
	if id.Period == "" {
		return nil, errors.InvalidParam("period cannot be empty")
	}
	if dueDate.IsZero() {
		return nil, errors.InvalidParam("due date cannot be zero")
	}

	now := time.Now().UTC()
	return &WorkRecord{
		ID:            common.ID(uuid.New().String()),
		ClientID:      id.ClientID,
		ActivityID:    id.ActivityID,
		SubactivityID: id.SubactivityID,
		BranchID:      branch,
		FinancialYear: financialYear,
		Period:        id.Period,
		DueDate:       dueDate,
		Jurisdiction:  id.Jurisdiction,
		Status:        common.StatusPending,
		Metadata:      common.Metadata{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Identity returns the record's natural key.
func (r *WorkRecord) Identity() Identity {
	return Identity{
		ClientID:      r.ClientID,
		ActivityID:    r.ActivityID,
		SubactivityID: r.SubactivityID,
		Period:        r.Period,
		Jurisdiction:  r.Jurisdiction,
	}
}

package timeline

import (
	"context"
	"time"

	"github.com/complytrack/complytrack/pkg/types/common"
)

// UpsertOutcome reports what a single atomic upsert did.
type UpsertOutcome int

const (
	// OutcomeCreated means the record did not exist and was inserted.
	OutcomeCreated UpsertOutcome = iota
	// OutcomeExists means a record with the same identity already existed
	// and the store was left untouched.
	OutcomeExists
)

func (o UpsertOutcome) String() string {
	if o == OutcomeCreated {
		return "created"
	}
	return "exists"
}

// DuplicateGroup is a set of records sharing one identity.  Records are
// ordered oldest first; only Records[0] survives a cleanup.
type DuplicateGroup struct {
	Identity Identity
	Records  []*WorkRecord
}

// Extras returns the records a cleanup pass would delete.
func (g DuplicateGroup) Extras() []*WorkRecord {
	if len(g.Records) < 2 {
		return nil
	}
	return g.Records[1:]
}

// ListFilter narrows listing queries.  Zero values mean "no constraint".
type ListFilter struct {
	ClientID      common.ClientID
	ActivityID    common.ActivityID
	FinancialYear string
	Status        common.Status
	DueBefore     time.Time
	DueAfter      time.Time
	Pagination    common.Pagination
}

// Repository persists work records.  Upsert must be atomic with respect to
// the identity tuple: under concurrent generation passes exactly one caller
// observes OutcomeCreated per identity.
type Repository interface {
	// Upsert inserts the record if no record with the same identity exists.
	// It never modifies an existing record.
	Upsert(ctx context.Context, record *WorkRecord) (UpsertOutcome, error)

	// GetByIdentity fetches the record for an identity tuple, or a
	// not-found error.
	GetByIdentity(ctx context.Context, id Identity) (*WorkRecord, error)

	// List returns records matching the filter, newest due date first.
	List(ctx context.Context, filter ListFilter) ([]*WorkRecord, error)

	// FindDuplicates returns every identity with more than one record,
	// each group ordered by creation time then record ID.
	FindDuplicates(ctx context.Context) ([]DuplicateGroup, error)

	// DeleteByIDs removes the given records and returns how many rows went.
	DeleteByIDs(ctx context.Context, ids []common.ID) (int64, error)

	// CountByFinancialYear reports how many records exist for a year label.
	CountByFinancialYear(ctx context.Context, label string) (int64, error)
}

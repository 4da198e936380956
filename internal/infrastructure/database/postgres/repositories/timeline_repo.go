package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/complytrack/complytrack/internal/domain/timeline"
	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
	"github.com/complytrack/complytrack/pkg/types/common"
)

const (
	// uniqueViolation is the postgres error code for a unique constraint
	// rejection.
	uniqueViolation = "23505"

	// identityConstraint is the jurisdiction-aware unique index the upsert
	// targets.
	identityConstraint = "uq_work_records_identity"

	// legacyConstraint is the historical narrow index that omitted
	// jurisdiction.  Its presence blocks per-jurisdiction records; a
	// conflict raised by it means the widening migration has not run.
	legacyConstraint = "uq_work_records_client_activity_sub_period"
)

const workRecordColumns = `id, client_id, activity_id, subactivity_id, branch_id,
	financial_year, period, due_date, jurisdiction, status, metadata, created_at, updated_at`

type postgresTimelineRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

// NewPostgresTimelineRepo builds the work-record repository.
func NewPostgresTimelineRepo(conn *postgres.Connection, log logging.Logger) timeline.Repository {
	return &postgresTimelineRepo{conn: conn, log: log}
}

func (r *postgresTimelineRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}

// Upsert inserts the record unless its identity tuple already exists.  It is
// a single plain INSERT with uniqueness enforced by the identity index, so
// concurrent callers for the same tuple race inside postgres, not in
// application code: exactly one insert wins, the rest receive a unique
// violation and report Exists.  Dispatching violations by constraint name
// (rather than an ON CONFLICT arbiter, which would require the wide index to
// exist) keeps the statement valid on a store that still carries the narrow
// legacy index, where the rejection names that index and surfaces the
// migration-needed signal instead.
func (r *postgresTimelineRepo) Upsert(ctx context.Context, rec *timeline.WorkRecord) (timeline.UpsertOutcome, error) {
	query := `
		INSERT INTO work_records (
			id, client_id, activity_id, subactivity_id, branch_id,
			financial_year, period, due_date, jurisdiction, status, metadata,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	meta, _ := json.Marshal(rec.Metadata)
	_, err := r.executor().ExecContext(ctx, query,
		rec.ID, rec.ClientID, rec.ActivityID, rec.SubactivityID, rec.BranchID,
		rec.FinancialYear, rec.Period, rec.DueDate, rec.Jurisdiction, rec.Status, meta,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isConstraintViolation(err, legacyConstraint) {
			return 0, errors.Wrap(err, errors.ErrCodeLegacyIndexConflict,
				"insert rejected by the jurisdiction-less unique index; run the index widening migration")
		}
		if isConstraintViolation(err, "") {
			// The identity index rejected the row, possibly after losing a
			// race to a concurrent insert; the tuple exists either way.
			return timeline.OutcomeExists, nil
		}
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "upserting work record")
	}
	return timeline.OutcomeCreated, nil
}

func (r *postgresTimelineRepo) GetByIdentity(ctx context.Context, id timeline.Identity) (*timeline.WorkRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM work_records
		WHERE client_id = $1 AND activity_id = $2 AND subactivity_id = $3
		  AND period = $4 AND jurisdiction = $5
	`, workRecordColumns)

	rec, err := scanWorkRecord(r.executor().QueryRowContext(ctx, query,
		id.ClientID, id.ActivityID, id.SubactivityID, id.Period, id.Jurisdiction))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("work record " + id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "loading work record")
	}
	return rec, nil
}

func (r *postgresTimelineRepo) List(ctx context.Context, filter timeline.ListFilter) ([]*timeline.WorkRecord, error) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.ClientID != "" {
		add("client_id = $%d", filter.ClientID)
	}
	if filter.ActivityID != "" {
		add("activity_id = $%d", filter.ActivityID)
	}
	if filter.FinancialYear != "" {
		add("financial_year = $%d", filter.FinancialYear)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if !filter.DueBefore.IsZero() {
		add("due_date < $%d", filter.DueBefore)
	}
	if !filter.DueAfter.IsZero() {
		add("due_date > $%d", filter.DueAfter)
	}

	query := "SELECT " + workRecordColumns + " FROM work_records"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY due_date DESC, id"

	page := filter.Pagination
	if page.Limit() > 0 {
		args = append(args, page.Limit())
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, page.Offset())
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.executor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing work records")
	}
	defer rows.Close()
	return collectWorkRecords(rows)
}

// FindDuplicates returns every identity tuple holding more than one record,
// grouped in creation order so callers can keep the earliest.
func (r *postgresTimelineRepo) FindDuplicates(ctx context.Context) ([]timeline.DuplicateGroup, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM work_records
		WHERE (client_id, activity_id, subactivity_id, period, jurisdiction) IN (
			SELECT client_id, activity_id, subactivity_id, period, jurisdiction
			FROM work_records
			GROUP BY client_id, activity_id, subactivity_id, period, jurisdiction
			HAVING COUNT(*) > 1
		)
		ORDER BY client_id, activity_id, subactivity_id, period, jurisdiction, created_at, id
	`, workRecordColumns)

	rows, err := r.executor().QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning for duplicates")
	}
	defer rows.Close()

	recs, err := collectWorkRecords(rows)
	if err != nil {
		return nil, err
	}

	var groups []timeline.DuplicateGroup
	for _, rec := range recs {
		id := rec.Identity()
		if n := len(groups); n > 0 && groups[n-1].Identity == id {
			groups[n-1].Records = append(groups[n-1].Records, rec)
			continue
		}
		groups = append(groups, timeline.DuplicateGroup{Identity: id, Records: []*timeline.WorkRecord{rec}})
	}
	return groups, nil
}

func (r *postgresTimelineRepo) DeleteByIDs(ctx context.Context, ids []common.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	res, err := r.executor().ExecContext(ctx,
		`DELETE FROM work_records WHERE id = ANY($1)`, pq.Array(raw))
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "deleting work records")
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "reading delete result")
	}
	return deleted, nil
}

func (r *postgresTimelineRepo) CountByFinancialYear(ctx context.Context, label string) (int64, error) {
	var n int64
	err := r.executor().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_records WHERE financial_year = $1`, label).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "counting work records")
	}
	return n, nil
}

// isConstraintViolation reports whether err is a unique violation; with a
// non-empty name it additionally matches the violated constraint.
func isConstraintViolation(err error, name string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok || string(pqErr.Code) != uniqueViolation {
		return false
	}
	return name == "" || pqErr.Constraint == name
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkRecord(row rowScanner) (*timeline.WorkRecord, error) {
	var rec timeline.WorkRecord
	var meta []byte
	err := row.Scan(
		&rec.ID, &rec.ClientID, &rec.ActivityID, &rec.SubactivityID, &rec.BranchID,
		&rec.FinancialYear, &rec.Period, &rec.DueDate, &rec.Jurisdiction, &rec.Status,
		&meta, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		_ = json.Unmarshal(meta, &rec.Metadata)
	}
	return &rec, nil
}

func collectWorkRecords(rows *sql.Rows) ([]*timeline.WorkRecord, error) {
	var out []*timeline.WorkRecord
	for rows.Next() {
		rec, err := scanWorkRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning work record row")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating work record rows")
	}
	return out, nil
}

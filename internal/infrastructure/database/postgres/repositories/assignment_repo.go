package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"

	"github.com/complytrack/complytrack/internal/domain/assignment"
	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
)

type postgresAssignmentRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresAssignmentRepo builds the read-only assignment repository over
// the client-management tables.
func NewPostgresAssignmentRepo(conn *postgres.Connection, log logging.Logger) assignment.Repository {
	return &postgresAssignmentRepo{conn: conn, log: log}
}

// assignmentQuery joins active assignments to the subactivities the
// generator must cover.  A narrowed assignment joins only its own
// subactivity; a broad one joins every subactivity of its activity.
// Frequency filtering happens in SQL so a pass never loads obligations of
// other classes.
const assignmentQuery = `
	SELECT a.id, a.client_id, a.activity_id, a.branch_id,
	       COALESCE(a.subactivity_id, ''), a.status,
	       s.id, s.name, s.frequency, s.frequency_config, s.jurisdictions
	FROM obligation_assignments a
	JOIN subactivities s
	  ON s.activity_id = a.activity_id
	 AND (a.subactivity_id IS NULL OR a.subactivity_id = s.id)
	WHERE a.status = 'active'
`

func (r *postgresAssignmentRepo) ListActive(ctx context.Context, freq schedule.Frequency) ([]*assignment.ObligationAssignment, error) {
	rows, err := r.conn.DB().QueryContext(ctx,
		assignmentQuery+` AND s.frequency = $1 ORDER BY a.id, s.id`, freq)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing active assignments")
	}
	defer rows.Close()
	return assembleAssignments(rows)
}

func (r *postgresAssignmentRepo) ListAllActive(ctx context.Context) ([]*assignment.ObligationAssignment, error) {
	recurring := make([]string, 0, len(schedule.RecurringFrequencies()))
	for _, f := range schedule.RecurringFrequencies() {
		recurring = append(recurring, string(f))
	}

	rows, err := r.conn.DB().QueryContext(ctx,
		assignmentQuery+` AND s.frequency = ANY($1) ORDER BY a.id, s.id`, pq.Array(recurring))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "listing active assignments")
	}
	defer rows.Close()
	return assembleAssignments(rows)
}

// assembleAssignments folds the joined rows back into one assignment per
// id with its subactivities attached.  Rows arrive ordered by assignment id.
func assembleAssignments(rows *sql.Rows) ([]*assignment.ObligationAssignment, error) {
	var out []*assignment.ObligationAssignment
	var current *assignment.ObligationAssignment

	for rows.Next() {
		var (
			a         assignment.ObligationAssignment
			sub       assignment.Subactivity
			rawConfig []byte
			jurs      pq.StringArray
		)
		err := rows.Scan(
			&a.ID, &a.ClientID, &a.ActivityID, &a.BranchID, &a.SubactivityID, &a.Status,
			&sub.ID, &sub.Name, &sub.Frequency, &rawConfig, &jurs,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scanning assignment row")
		}

		if len(rawConfig) > 0 {
			if err := json.Unmarshal(rawConfig, &sub.Spec); err != nil {
				// A corrupt configuration document must not hide the
				// subactivity: the generator reports it as a skip with
				// context instead of the row vanishing silently.
				sub.Spec = assignment.FrequencySpec{}
			}
		}
		sub.Jurisdictions = []string(jurs)

		if current == nil || current.ID != a.ID {
			cp := a
			current = &cp
			out = append(out, current)
		}
		current.Subactivities = append(current.Subactivities, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "iterating assignment rows")
	}
	return out, nil
}

package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/complytrack/complytrack/internal/domain/assignment"
	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/internal/infrastructure/database/postgres"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
)

var assignmentColumns = []string{
	"id", "client_id", "activity_id", "branch_id", "subactivity_id", "status",
	"sub_id", "sub_name", "sub_frequency", "sub_config", "sub_jurisdictions",
}

type AssignmentRepoTestSuite struct {
	suite.Suite
	db   *sql.DB
	mock sqlmock.Sqlmock
	repo assignment.Repository
}

func (s *AssignmentRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	conn := postgres.NewConnectionWithDB(s.db, logging.NewNopLogger())
	s.repo = NewPostgresAssignmentRepo(conn, logging.NewNopLogger())
}

func (s *AssignmentRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *AssignmentRepoTestSuite) TestListActive_AssemblesSubactivities() {
	rows := sqlmock.NewRows(assignmentColumns).
		AddRow("asg-1", "client-1", "activity-1", "branch-1", "", "active",
			"sub-1", "PT Payment", "monthly", []byte(`{"day":20}`), pq.StringArray(nil)).
		AddRow("asg-1", "client-1", "activity-1", "branch-1", "", "active",
			"sub-2", "PF Deposit", "monthly", []byte(`{"day":15}`), pq.StringArray(nil)).
		AddRow("asg-2", "client-2", "activity-1", "branch-1", "", "active",
			"sub-1", "PT Payment", "monthly", []byte(`{"day":20}`), pq.StringArray{"KA", "MH"})

	s.mock.ExpectQuery("SELECT (.+) FROM obligation_assignments").
		WithArgs("monthly").
		WillReturnRows(rows)

	assignments, err := s.repo.ListActive(context.Background(), schedule.FrequencyMonthly)
	s.NoError(err)
	s.Len(assignments, 2)

	s.Len(assignments[0].Subactivities, 2)
	s.Equal(20, assignments[0].Subactivities[0].Spec.Day)

	s.Len(assignments[1].Subactivities, 1)
	s.Equal([]string{"KA", "MH"}, assignments[1].Subactivities[0].Jurisdictions)
}

// A corrupt configuration document must surface as an empty spec (the
// generator then logs and skips it), never hide the subactivity.
func (s *AssignmentRepoTestSuite) TestListActive_CorruptConfigYieldsEmptySpec() {
	rows := sqlmock.NewRows(assignmentColumns).
		AddRow("asg-1", "client-1", "activity-1", "branch-1", "", "active",
			"sub-1", "Bespoke Filing", "monthly", []byte(`{not json`), pq.StringArray(nil))

	s.mock.ExpectQuery("SELECT (.+) FROM obligation_assignments").
		WithArgs("monthly").
		WillReturnRows(rows)

	assignments, err := s.repo.ListActive(context.Background(), schedule.FrequencyMonthly)
	s.NoError(err)
	s.Require().Len(assignments, 1)
	s.Require().Len(assignments[0].Subactivities, 1)
	s.True(assignments[0].Subactivities[0].Spec.IsZero())
}

func (s *AssignmentRepoTestSuite) TestListAllActive_CoversEveryRecurringClass() {
	recurring := make([]string, 0, len(schedule.RecurringFrequencies()))
	for _, f := range schedule.RecurringFrequencies() {
		recurring = append(recurring, string(f))
	}

	s.mock.ExpectQuery("SELECT (.+) FROM obligation_assignments").
		WithArgs(pq.Array(recurring)).
		WillReturnRows(sqlmock.NewRows(assignmentColumns))

	assignments, err := s.repo.ListAllActive(context.Background())
	s.NoError(err)
	s.Empty(assignments)
}

func (s *AssignmentRepoTestSuite) TestListActive_QueryError() {
	s.mock.ExpectQuery("SELECT (.+) FROM obligation_assignments").
		WillReturnError(sql.ErrConnDone)

	_, err := s.repo.ListActive(context.Background(), schedule.FrequencyDaily)
	s.Error(err)
}

func TestAssignmentRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AssignmentRepoTestSuite))
}

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

// mockDatabase implements the DB interface over sqlmock, with sqlx on top
// so struct scanning behaves like production
type mockDatabase struct {
	db *sqlx.DB
}

func newMockDatabase(t *testing.T) (*mockDatabase, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

var complaintTestColumns = []string{
	"id", "title", "description", "category", "priority", "status",
	"location.building", "location.room", "reported_by", "assigned_to",
	"images.before", "images.after", "created_at", "updated_at",
}

func complaintRow(id, reportedBy uuid.UUID, status string, assignedTo interface{}) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(complaintTestColumns).AddRow(
		id, "Broken socket", "Sparks on contact", "electrical", "medium", status,
		"A", "101", reportedBy, assignedTo,
		[]byte(`{}`), []byte(`{}`), now, now,
	)
}

func TestCreateComplaint(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO complaints`).
			WithArgs(
				sqlmock.AnyArg(), "Broken socket", "Sparks on contact", models.CategoryElectrical,
				models.PriorityMedium, models.StatusPending, "A", "101",
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		complaint := &models.Complaint{
			Title:       "Broken socket",
			Description: "Sparks on contact",
			Category:    models.CategoryElectrical,
			Location:    models.Location{Building: "A", Room: "101"},
			ReportedBy:  uuid.New(),
		}

		err := repo.Create(complaint)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, complaint.ID)
		assert.Equal(t, models.StatusPending, complaint.Status)
		assert.Equal(t, models.PriorityMedium, complaint.Priority)
		assert.False(t, complaint.AssignedTo.Valid)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO complaints`).
			WillReturnError(fmt.Errorf("connection refused"))

		err := repo.Create(&models.Complaint{
			Title:       "x",
			Description: "y",
			Category:    models.CategoryWifi,
			ReportedBy:  uuid.New(),
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create complaint")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetComplaintByID(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()
		reporter := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM complaints WHERE id`).
			WithArgs(id).
			WillReturnRows(complaintRow(id, reporter, "pending", nil))

		complaint, err := repo.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, id, complaint.ID)
		assert.Equal(t, "A", complaint.Location.Building)
		assert.Equal(t, "101", complaint.Location.Room)
		assert.Equal(t, reporter, complaint.ReportedBy)
		assert.False(t, complaint.AssignedTo.Valid)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM complaints WHERE id`).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		complaint, err := repo.GetByID(id)
		assert.Nil(t, complaint)
		assert.True(t, errors.Is(err, sql.ErrNoRows))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListComplaints(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	t.Run("Filter And Pagination", func(t *testing.T) {
		reporter := uuid.New()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM complaints WHERE status = \$1 AND reported_by = \$2`).
			WithArgs(models.StatusPending, reporter).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

		mock.ExpectQuery(`SELECT (.+) FROM complaints WHERE status = \$1 AND reported_by = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
			WithArgs(models.StatusPending, reporter, 5, 5).
			WillReturnRows(complaintRow(uuid.New(), reporter, "pending", nil))

		complaints, pagination, err := repo.List(models.ComplaintFilter{
			Status:     models.StatusPending,
			ReportedBy: &reporter,
		}, 2, 5)
		require.NoError(t, err)
		assert.Len(t, complaints, 1)
		assert.Equal(t, 2, pagination.Current)
		assert.Equal(t, 3, pagination.Total)
		assert.Equal(t, 11, pagination.TotalItems)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Search Uses One Placeholder For Both Columns", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM complaints WHERE \(title ILIKE \$1 OR description ILIKE \$1\)`).
			WithArgs("%socket%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery(`SELECT (.+) FROM complaints WHERE \(title ILIKE \$1 OR description ILIKE \$1\)`).
			WithArgs("%socket%", 10, 0).
			WillReturnRows(sqlmock.NewRows(complaintTestColumns))

		complaints, pagination, err := repo.List(models.ComplaintFilter{Search: "socket"}, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, complaints)
		assert.Equal(t, 1, pagination.Total)
		assert.Equal(t, 0, pagination.TotalItems)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateAssignment(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	t.Run("Pending Advances To Assigned", func(t *testing.T) {
		id := uuid.New()
		staffID := uuid.New()

		mock.ExpectQuery(`UPDATE complaints`).
			WithArgs(staffID, id).
			WillReturnRows(complaintRow(id, uuid.New(), "assigned", staffID))

		complaint, err := repo.UpdateAssignment(id, staffID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAssigned, complaint.Status)
		assert.Equal(t, staffID, complaint.AssignedTo.UUID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE complaints`).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateAssignment(uuid.New(), uuid.New())
		assert.True(t, errors.Is(err, sql.ErrNoRows))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateStatus(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	t.Run("Back To Pending Clears Assignee", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectQuery(`UPDATE complaints`).
			WithArgs(models.StatusPending, nil, id).
			WillReturnRows(complaintRow(id, uuid.New(), "pending", nil))

		complaint, err := repo.UpdateStatus(id, models.StatusPending, nil)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, complaint.Status)
		assert.False(t, complaint.AssignedTo.Valid)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Fallback Assignee Applied", func(t *testing.T) {
		id := uuid.New()
		fallback := uuid.New()

		mock.ExpectQuery(`UPDATE complaints`).
			WithArgs(models.StatusInProgress, &fallback, id).
			WillReturnRows(complaintRow(id, uuid.New(), "in_progress", fallback))

		complaint, err := repo.UpdateStatus(id, models.StatusInProgress, &fallback)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, complaint.Status)
		assert.Equal(t, fallback, complaint.AssignedTo.UUID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateComplaintDetails(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	t.Run("Closed Edit Window", func(t *testing.T) {
		id := uuid.New()
		reporter := uuid.New()

		mock.ExpectQuery(`UPDATE complaints`).
			WithArgs("t", "d", id, reporter).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateDetails(id, reporter, "t", "d")
		assert.True(t, errors.Is(err, sql.ErrNoRows))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteComplaint(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM complaints`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(id)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectExec(`DELETE FROM complaints`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(id)
		assert.True(t, errors.Is(err, sql.ErrNoRows))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAppendNote(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	complaintID := uuid.New()
	addedBy := uuid.New()

	mock.ExpectQuery(`INSERT INTO complaint_notes`).
		WithArgs(complaintID, "Replaced the socket", addedBy, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	note := &models.Note{
		ComplaintID: complaintID,
		Content:     "Replaced the socket",
		AddedBy:     addedBy,
	}
	err := repo.AppendNote(note)
	require.NoError(t, err)
	assert.Equal(t, int64(42), note.ID)
	assert.False(t, note.AddedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotes(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	complaintID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM complaint_notes`).
		WithArgs(complaintID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "complaint_id", "content", "added_by", "added_at"}).
			AddRow(1, complaintID, "first", uuid.New(), now).
			AddRow(2, complaintID, "second", uuid.New(), now))

	notes, err := repo.ListNotes(complaintID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Content)
	assert.Equal(t, "second", notes[1].Content)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachImage(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewComplaintRepository(mockDB)

	id := uuid.New()

	mock.ExpectExec(`UPDATE complaints`).
		WithArgs("uploads/after.jpg", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AttachImage(id, "after", "uploads/after.jpg")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

package database

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

func TestAppendEvent(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewEventRepository(mockDB)

	complaintID := uuid.New()
	actorID := uuid.New()
	staffID := uuid.New()

	mock.ExpectQuery(`INSERT INTO complaint_events`).
		WithArgs(complaintID, models.EventAssigned, actorID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	event := &models.ComplaintEvent{
		ComplaintID: complaintID,
		Action:      models.EventAssigned,
		ActorID:     actorID,
		StaffID:     uuid.NullUUID{UUID: staffID, Valid: true},
	}
	err := repo.Append(event)
	require.NoError(t, err)
	assert.Equal(t, int64(7), event.ID)
	assert.False(t, event.CreatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsByComplaint(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewEventRepository(mockDB)

	complaintID := uuid.New()
	now := time.Now()
	columns := []string{"id", "complaint_id", "action", "actor_id", "staff_id", "detail", "created_at"}

	mock.ExpectQuery(`SELECT (.+) FROM complaint_events`).
		WithArgs(complaintID).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, complaintID, models.EventAssigned, uuid.New(), uuid.New(), `{"role":"admin"}`, now).
			AddRow(2, complaintID, models.EventStatusChanged, uuid.New(), nil, nil, now))

	events, err := repo.ListByComplaint(complaintID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventAssigned, events[0].Action)
	assert.True(t, events[0].StaffID.Valid)
	assert.False(t, events[1].StaffID.Valid)
	assert.False(t, events[1].Detail.Valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestAssignment(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	repo := NewEventRepository(mockDB)

	t.Run("Found", func(t *testing.T) {
		complaintID := uuid.New()
		staffID := uuid.New()

		mock.ExpectQuery(`SELECT staff_id FROM complaint_events`).
			WithArgs(complaintID, models.EventAssigned).
			WillReturnRows(sqlmock.NewRows([]string{"staff_id"}).AddRow(staffID))

		got, err := repo.LatestAssignment(complaintID)
		require.NoError(t, err)
		assert.Equal(t, staffID, got)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Never Assigned", func(t *testing.T) {
		complaintID := uuid.New()

		mock.ExpectQuery(`SELECT staff_id FROM complaint_events`).
			WithArgs(complaintID, models.EventAssigned).
			WillReturnRows(sqlmock.NewRows([]string{"staff_id"}))

		_, err := repo.LatestAssignment(complaintID)
		assert.True(t, errors.Is(err, sql.ErrNoRows))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

// EventRepository is the append-only audit ledger. Entries are never
// updated or deleted; the table has no foreign key to complaints so the
// trail survives an administrative delete.
type EventRepository struct {
	db DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{
		db: db,
	}
}

// Append records a new event
func (r *EventRepository) Append(event *models.ComplaintEvent) error {
	query := `
		INSERT INTO complaint_events (complaint_id, action, actor_id, staff_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	err := r.db.QueryRow(
		query,
		event.ComplaintID,
		event.Action,
		event.ActorID,
		event.StaffID,
		event.Detail,
		event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// ListByComplaint returns the full event sequence in insertion order
func (r *EventRepository) ListByComplaint(complaintID uuid.UUID) ([]models.ComplaintEvent, error) {
	events := []models.ComplaintEvent{}

	query := `
		SELECT id, complaint_id, action, actor_id, staff_id, detail, created_at
		FROM complaint_events
		WHERE complaint_id = $1
		ORDER BY id ASC
	`

	if err := r.db.Select(&events, query, complaintID); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

// LatestAssignment returns the staff ID from the most recent assignment
// event for a complaint, or sql.ErrNoRows when it was never assigned
func (r *EventRepository) LatestAssignment(complaintID uuid.UUID) (uuid.UUID, error) {
	var staffID uuid.UUID

	query := `
		SELECT staff_id
		FROM complaint_events
		WHERE complaint_id = $1 AND action = $2 AND staff_id IS NOT NULL
		ORDER BY id DESC
		LIMIT 1
	`

	err := r.db.QueryRow(query, complaintID, models.EventAssigned).Scan(&staffID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, sql.ErrNoRows
		}
		return uuid.Nil, fmt.Errorf("failed to get latest assignment: %w", err)
	}

	return staffID, nil
}

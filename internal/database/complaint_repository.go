package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

// complaintColumns is the shared select list; location and image columns
// are aliased into the nested struct fields sqlx expects.
const complaintColumns = `
	id, title, description, category, priority, status,
	building AS "location.building", room AS "location.room",
	reported_by, assigned_to,
	images_before AS "images.before", images_after AS "images.after",
	created_at, updated_at
`

// ComplaintRepository handles complaint database operations
type ComplaintRepository struct {
	db DB
}

// NewComplaintRepository creates a new complaint repository
func NewComplaintRepository(db DB) *ComplaintRepository {
	return &ComplaintRepository{
		db: db,
	}
}

// Create inserts a new complaint in the initial pending/unassigned state
func (r *ComplaintRepository) Create(c *models.Complaint) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Priority == "" {
		c.Priority = models.PriorityMedium
	}
	c.Status = models.StatusPending
	c.AssignedTo = uuid.NullUUID{}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO complaints (
			id, title, description, category, priority, status,
			building, room, reported_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4::complaint_category, $5::complaint_priority, $6::complaint_status, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(
		query,
		c.ID,
		c.Title,
		c.Description,
		c.Category,
		c.Priority,
		c.Status,
		c.Location.Building,
		c.Location.Room,
		c.ReportedBy,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}

	return nil
}

// GetByID retrieves a complaint by ID
func (r *ComplaintRepository) GetByID(id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint

	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	err := r.db.Get(&complaint, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("complaint %s: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}

	return &complaint, nil
}

// List retrieves complaints matching the filter with pagination. Free-text
// search matches title and description case-insensitively.
func (r *ComplaintRepository) List(filter models.ComplaintFilter, page, limit int) ([]*models.Complaint, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	conditions := []string{}
	args := []interface{}{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		addCondition("status = $%d", filter.Status)
	}
	if filter.Category != "" {
		addCondition("category = $%d", filter.Category)
	}
	if filter.Priority != "" {
		addCondition("priority = $%d", filter.Priority)
	}
	if filter.ReportedBy != nil {
		addCondition("reported_by = $%d", *filter.ReportedBy)
	}
	if filter.AssignedTo != nil {
		addCondition("assigned_to = $%d", *filter.AssignedTo)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var totalItems int
	countQuery := `SELECT COUNT(*) FROM complaints` + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&totalItems); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to count complaints: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	listQuery := fmt.Sprintf(
		`SELECT %s FROM complaints%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		complaintColumns, where, len(args)-1, len(args),
	)

	complaints := []*models.Complaint{}
	if err := r.db.Select(&complaints, listQuery, args...); err != nil {
		return nil, models.Pagination{}, fmt.Errorf("failed to list complaints: %w", err)
	}

	totalPages := (totalItems + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	return complaints, models.Pagination{
		Current:    page,
		Total:      totalPages,
		TotalItems: totalItems,
	}, nil
}

// UpdateAssignment sets the assignee and, when the complaint is still
// pending, advances it to assigned. Both fields change in one statement so
// concurrent assigns can never leave a torn status/assignee pair.
func (r *ComplaintRepository) UpdateAssignment(id, staffID uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint

	query := `
		UPDATE complaints
		SET assigned_to = $1,
		    status = CASE WHEN status = 'pending' THEN 'assigned'::complaint_status ELSE status END,
		    updated_at = NOW()
		WHERE id = $2
		RETURNING ` + complaintColumns

	err := r.db.Get(&complaint, query, staffID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("complaint %s: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	return &complaint, nil
}

// UpdateStatus sets the status in a single statement. A transition into
// pending clears the assignee; when the complaint has no assignee and the
// caller supplies a fallback (the most recent assignment on record), it is
// applied together with the status change.
func (r *ComplaintRepository) UpdateStatus(id uuid.UUID, status models.Status, fallbackAssignee *uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint

	query := `
		UPDATE complaints
		SET status = $1::complaint_status,
		    assigned_to = CASE
		        WHEN $1 = 'pending' THEN NULL
		        WHEN assigned_to IS NULL THEN $2::uuid
		        ELSE assigned_to
		    END,
		    updated_at = NOW()
		WHERE id = $3
		RETURNING ` + complaintColumns

	err := r.db.Get(&complaint, query, status, fallbackAssignee, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("complaint %s: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return &complaint, nil
}

// UpdateDetails lets the reporter edit title and description while the
// complaint is still pending. The status condition lives in the statement
// so a concurrent assignment cannot race the edit window.
func (r *ComplaintRepository) UpdateDetails(id, reporterID uuid.UUID, title, description string) (*models.Complaint, error) {
	var complaint models.Complaint

	query := `
		UPDATE complaints
		SET title = $1,
		    description = $2,
		    updated_at = NOW()
		WHERE id = $3 AND reported_by = $4 AND status = 'pending'
		RETURNING ` + complaintColumns

	err := r.db.Get(&complaint, query, title, description, id, reporterID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("complaint %s not editable: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to update complaint details: %w", err)
	}

	return &complaint, nil
}

// Delete removes a complaint. Administrative override: bypasses the
// lifecycle entirely and is unconditional.
func (r *ComplaintRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM complaints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete complaint: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("complaint %s: %w", id, sql.ErrNoRows)
	}

	return nil
}

// AppendNote adds a note entry; notes are append-only and never edited
func (r *ComplaintRepository) AppendNote(note *models.Note) error {
	query := `
		INSERT INTO complaint_notes (complaint_id, content, added_by, added_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if note.AddedAt.IsZero() {
		note.AddedAt = time.Now()
	}

	err := r.db.QueryRow(query, note.ComplaintID, note.Content, note.AddedBy, note.AddedAt).Scan(&note.ID)
	if err != nil {
		return fmt.Errorf("failed to append note: %w", err)
	}

	return nil
}

// ListNotes returns all notes for a complaint in insertion order
func (r *ComplaintRepository) ListNotes(complaintID uuid.UUID) ([]models.Note, error) {
	notes := []models.Note{}

	query := `
		SELECT id, complaint_id, content, added_by, added_at
		FROM complaint_notes
		WHERE complaint_id = $1
		ORDER BY id ASC
	`

	if err := r.db.Select(&notes, query, complaintID); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}

// AttachImage appends a stored-file path to the before or after image list
func (r *ComplaintRepository) AttachImage(id uuid.UUID, phase string, path string) error {
	column := "images_before"
	if phase == "after" {
		column = "images_after"
	}

	query := fmt.Sprintf(`
		UPDATE complaints
		SET %s = array_append(%s, $1),
		    updated_at = NOW()
		WHERE id = $2
	`, column, column)

	result, err := r.db.Exec(query, path, id)
	if err != nil {
		return fmt.Errorf("failed to attach image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("complaint %s: %w", id, sql.ErrNoRows)
	}

	return nil
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

const staffColumns = `
	id, name, email, password_hash, role, department, phone,
	categories, active, created_at, updated_at
`

// StaffRepository is the staff directory: maintenance staff records with
// their skill categories and active flag. The lifecycle engine consumes it
// read-mostly; admin handlers mutate it.
type StaffRepository struct {
	db DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{
		db: db,
	}
}

// FindActiveByCategory returns active maintenance staff whose skill set
// includes the category, in directory order
func (r *StaffRepository) FindActiveByCategory(category models.Category) ([]*models.User, error) {
	staff := []*models.User{}

	query := `
		SELECT ` + staffColumns + `
		FROM users
		WHERE role = 'maintenance'
		  AND active = TRUE
		  AND $1 = ANY(categories)
		ORDER BY created_at ASC
	`

	if err := r.db.Select(&staff, query, string(category)); err != nil {
		return nil, fmt.Errorf("failed to find staff by category: %w", err)
	}

	return staff, nil
}

// GetByID retrieves a maintenance staff record by ID
func (r *StaffRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var staff models.User

	query := `
		SELECT ` + staffColumns + `
		FROM users
		WHERE id = $1 AND role = 'maintenance'
	`

	err := r.db.Get(&staff, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("staff %s: %w", id, sql.ErrNoRows)
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}

	return &staff, nil
}

// List returns all maintenance staff records in directory order
func (r *StaffRepository) List() ([]*models.User, error) {
	staff := []*models.User{}

	query := `
		SELECT ` + staffColumns + `
		FROM users
		WHERE role = 'maintenance'
		ORDER BY created_at ASC
	`

	if err := r.db.Select(&staff, query); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	return staff, nil
}

// Create inserts a new maintenance staff record
func (r *StaffRepository) Create(staff *models.User) error {
	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}
	staff.Role = models.RoleMaintenance
	now := time.Now()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, name, email, password_hash, role, department, phone,
			categories, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5::user_role, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(
		query,
		staff.ID,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.Department,
		staff.Phone,
		pq.Array(staff.Categories),
		staff.Active,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}

	return nil
}

// Update replaces the mutable directory fields of a staff record
func (r *StaffRepository) Update(id uuid.UUID, name, department, phone string, categories []string) error {
	query := `
		UPDATE users
		SET name = $1,
		    department = $2,
		    phone = $3,
		    categories = $4,
		    updated_at = $5
		WHERE id = $6 AND role = 'maintenance'
	`

	result, err := r.db.Exec(query, name, department, phone, pq.Array(categories), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("staff %s: %w", id, sql.ErrNoRows)
	}

	return nil
}

// SetActive activates or deactivates a staff member. Deactivation does not
// touch complaints already assigned to them.
func (r *StaffRepository) SetActive(id uuid.UUID, active bool) error {
	query := `
		UPDATE users
		SET active = $1,
		    updated_at = $2
		WHERE id = $3 AND role = 'maintenance'
	`

	result, err := r.db.Exec(query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set staff active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("staff %s: %w", id, sql.ErrNoRows)
	}

	return nil
}

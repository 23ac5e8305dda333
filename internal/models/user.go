package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// NullString wraps sql.NullString to provide proper JSON marshaling
type NullString struct {
	sql.NullString
}

// MarshalJSON implements json.Marshaler
func (ns NullString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.String)
	}
	return json.Marshal(nil)
}

// NewNullString builds a NullString that is null when the value is empty
func NewNullString(value string) NullString {
	return NullString{sql.NullString{String: value, Valid: value != ""}}
}

// UnmarshalJSON implements json.Unmarshaler
func (ns *NullString) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s != nil {
		ns.Valid = true
		ns.String = *s
	} else {
		ns.Valid = false
	}
	return nil
}

// NullTime wraps sql.NullTime to provide proper JSON marshaling
type NullTime struct {
	sql.NullTime
}

// MarshalJSON implements json.Marshaler
func (nt NullTime) MarshalJSON() ([]byte, error) {
	if nt.Valid {
		return json.Marshal(nt.Time)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements json.Unmarshaler
func (nt *NullTime) UnmarshalJSON(data []byte) error {
	var t *time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	if t != nil {
		nt.Valid = true
		nt.Time = *t
	} else {
		nt.Valid = false
	}
	return nil
}

// Role identifies what a user may do in the system
type Role string

const (
	RoleReporter    Role = "reporter"
	RoleMaintenance Role = "maintenance"
	RoleStaff       Role = "staff"
	RoleAdmin       Role = "admin"
)

// IsValid checks if the role is one of the enumerated values
func (r Role) IsValid() bool {
	switch r {
	case RoleReporter, RoleMaintenance, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// CanManageComplaints reports whether the role may assign complaints and
// change their status. Reporters may only raise complaints and add notes
// on their own.
func (r Role) CanManageComplaints() bool {
	switch r {
	case RoleMaintenance, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the system. Maintenance staff are users
// with role=maintenance and a non-empty skill category list.
type User struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	Name         string         `json:"name" db:"name"`
	Email        string         `json:"email" db:"email"`
	PasswordHash string         `json:"-" db:"password_hash"`
	Role         Role           `json:"role" db:"role"`
	Department   NullString     `json:"department,omitempty" db:"department"`
	Phone        NullString     `json:"phone,omitempty" db:"phone"`
	Categories   pq.StringArray `json:"categories" db:"categories"`
	Active       bool           `json:"active" db:"active"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" db:"updated_at"`
}

// HasCategory checks if a staff member's skill set covers the category
func (u *User) HasCategory(category Category) bool {
	for _, c := range u.Categories {
		if Category(c) == category {
			return true
		}
	}
	return false
}

// Actor is the authenticated principal performing a lifecycle operation
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

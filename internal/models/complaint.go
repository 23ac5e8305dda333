package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Category is the fixed skill tag linking complaints to maintenance staff.
type Category string

const (
	CategoryElectrical Category = "electrical"
	CategoryPlumbing   Category = "plumbing"
	CategoryFurniture  Category = "furniture"
	CategoryWifi       Category = "wifi"
	CategoryHeating    Category = "heating"
	CategoryCleaning   Category = "cleaning"
	CategoryOther      Category = "other"
)

// AllCategories lists every valid complaint category
var AllCategories = []Category{
	CategoryElectrical,
	CategoryPlumbing,
	CategoryFurniture,
	CategoryWifi,
	CategoryHeating,
	CategoryCleaning,
	CategoryOther,
}

// IsValid checks if the category is one of the enumerated values
func (c Category) IsValid() bool {
	for _, valid := range AllCategories {
		if c == valid {
			return true
		}
	}
	return false
}

// Priority represents complaint urgency
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is one of the enumerated values
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status represents a complaint's lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// IsValid checks if the status is one of the enumerated values
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// RequiresAssignee reports whether a complaint in this status must have
// a maintenance staff member assigned. Closed complaints may keep their
// assignee for history but do not require one.
func (s Status) RequiresAssignee() bool {
	switch s {
	case StatusAssigned, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Location identifies where in the facility the problem was reported
type Location struct {
	Building string `json:"building" db:"building"`
	Room     string `json:"room" db:"room"`
}

// ImageSet holds stored-file paths for before/after photos. The upload
// collaborator mutates these; the lifecycle engine never does.
type ImageSet struct {
	Before pq.StringArray `json:"before" db:"before"`
	After  pq.StringArray `json:"after" db:"after"`
}

// Note is a single append-only entry on a complaint
type Note struct {
	ID          int64     `json:"id" db:"id"`
	ComplaintID uuid.UUID `json:"-" db:"complaint_id"`
	Content     string    `json:"content" db:"content"`
	AddedBy     uuid.UUID `json:"addedBy" db:"added_by"`
	AddedAt     time.Time `json:"addedAt" db:"added_at"`
}

// Complaint is the unit of work tracked by the system
type Complaint struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Category    Category      `json:"category" db:"category"`
	Priority    Priority      `json:"priority" db:"priority"`
	Status      Status        `json:"status" db:"status"`
	Location    Location      `json:"location" db:"location"`
	ReportedBy  uuid.UUID     `json:"reportedBy" db:"reported_by"`
	AssignedTo  uuid.NullUUID `json:"assignedTo" db:"assigned_to"`
	Images      ImageSet      `json:"images" db:"images"`
	Notes       []Note        `json:"notes" db:"-"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}

// ComplaintEvent is an append-only audit entry for assignment, status and
// note activity on a complaint. Events are never updated or deleted.
type ComplaintEvent struct {
	ID          int64         `json:"id" db:"id"`
	ComplaintID uuid.UUID     `json:"complaintId" db:"complaint_id"`
	Action      string        `json:"action" db:"action"`
	ActorID     uuid.UUID     `json:"actorId" db:"actor_id"`
	StaffID     uuid.NullUUID `json:"staffId" db:"staff_id"`
	Detail      NullString    `json:"detail" db:"detail"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
}

// Audit event actions
const (
	EventAssigned      = "assigned"
	EventStatusChanged = "status_changed"
	EventNoteAdded     = "note_added"
	EventDeleted       = "deleted"
)

// ComplaintFilter narrows List queries
type ComplaintFilter struct {
	Status     Status
	Category   Category
	Priority   Priority
	ReportedBy *uuid.UUID
	AssignedTo *uuid.UUID
	Search     string // free text over title/description
}

// Pagination describes a page of list results
type Pagination struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	TotalItems int `json:"totalItems"`
}

// ComplaintPage is a page of complaints plus pagination metadata
type ComplaintPage struct {
	Complaints []*Complaint `json:"complaints"`
	Pagination Pagination   `json:"pagination"`
}

package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

// ComplaintStore is the persistence surface the lifecycle engine drives.
// Every update is atomic per complaint: status and assignee always change
// in the same statement.
type ComplaintStore interface {
	Create(c *models.Complaint) error
	GetByID(id uuid.UUID) (*models.Complaint, error)
	List(filter models.ComplaintFilter, page, limit int) ([]*models.Complaint, models.Pagination, error)
	UpdateAssignment(id, staffID uuid.UUID) (*models.Complaint, error)
	UpdateStatus(id uuid.UUID, status models.Status, fallbackAssignee *uuid.UUID) (*models.Complaint, error)
	UpdateDetails(id, reporterID uuid.UUID, title, description string) (*models.Complaint, error)
	Delete(id uuid.UUID) error
	AppendNote(note *models.Note) error
	ListNotes(complaintID uuid.UUID) ([]models.Note, error)
}

// StaffResolver looks up individual staff records for eligibility checks
type StaffResolver interface {
	GetByID(id uuid.UUID) (*models.User, error)
}

// LifecycleService owns the complaint state machine, the assignment rule
// and the authorization guard. All complaint mutations flow through it;
// the only exception is the administrative delete override, which skips
// the state machine entirely.
type LifecycleService struct {
	store  ComplaintStore
	staff  StaffResolver
	audit  *AuditService
	logger *logrus.Logger
}

// NewLifecycleService creates a new lifecycle engine
func NewLifecycleService(store ComplaintStore, staff StaffResolver, audit *AuditService, logger *logrus.Logger) *LifecycleService {
	return &LifecycleService{
		store:  store,
		staff:  staff,
		audit:  audit,
		logger: logger,
	}
}

// CreateInput carries the reporter-supplied fields for a new complaint
type CreateInput struct {
	Title       string
	Description string
	Category    models.Category
	Priority    models.Priority
	Location    models.Location
}

// Create raises a new complaint in the pending/unassigned state
func (s *LifecycleService) Create(input CreateInput, actor models.Actor) (*models.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, ErrValidation
	}
	if !input.Category.IsValid() {
		return nil, ErrValidation
	}
	if input.Priority != "" && !input.Priority.IsValid() {
		return nil, ErrValidation
	}

	complaint := &models.Complaint{
		Title:       title,
		Description: description,
		Category:    input.Category,
		Priority:    input.Priority,
		Location:    input.Location,
		ReportedBy:  actor.ID,
	}

	if err := s.store.Create(complaint); err != nil {
		return nil, storeErr(err)
	}

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaint.ID,
		"category":     complaint.Category,
		"reported_by":  actor.ID,
	}).Info("Complaint created")

	complaint.Notes = []models.Note{}
	return complaint, nil
}

// Get returns a complaint with its full note sequence
func (s *LifecycleService) Get(id uuid.UUID) (*models.Complaint, error) {
	complaint, err := s.store.GetByID(id)
	if err != nil {
		return nil, storeErr(err)
	}
	if err := s.attachNotes(complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// List returns a page of complaints matching the filter
func (s *LifecycleService) List(filter models.ComplaintFilter, page, limit int) (*models.ComplaintPage, error) {
	complaints, pagination, err := s.store.List(filter, page, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return &models.ComplaintPage{
		Complaints: complaints,
		Pagination: pagination,
	}, nil
}

// Assign routes a complaint to a maintenance staff member. Eligibility is
// checked here, at assignment time, against the live directory record: a
// stale candidate list from the router can never get an ineligible or
// inactive staff member assigned. Assigning a pending complaint advances
// it to assigned; re-assigning any other status only changes the assignee.
func (s *LifecycleService) Assign(complaintID, staffID uuid.UUID, actor models.Actor, userAgent string) (*models.Complaint, error) {
	if err := Authorize(actor.Role, ActionAssign, false); err != nil {
		return nil, err
	}

	staff, err := s.staff.GetByID(staffID)
	if err != nil {
		return nil, storeErr(err)
	}

	complaint, err := s.store.GetByID(complaintID)
	if err != nil {
		return nil, storeErr(err)
	}

	if !staff.Active || !staff.HasCategory(complaint.Category) {
		return nil, ErrIneligibleStaff
	}

	updated, err := s.store.UpdateAssignment(complaintID, staffID)
	if err != nil {
		return nil, storeErr(err)
	}

	s.audit.RecordAssignment(complaintID, staffID, actor, userAgent)

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaintID,
		"staff_id":     staffID,
		"status":       updated.Status,
		"actor_id":     actor.ID,
	}).Info("Complaint assigned")

	if err := s.attachNotes(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetStatus moves a complaint to any valid status. Transitions are
// deliberately unrestricted for admin and staff actors so resolved or
// closed complaints can be reopened; the one hard rule is that a status
// requiring an assignee cannot be entered without one. When the complaint
// has no current assignee the engine falls back to the most recent
// assignment in the audit ledger, and rejects the transition if none exists.
func (s *LifecycleService) SetStatus(complaintID uuid.UUID, newStatus models.Status, actor models.Actor, userAgent string) (*models.Complaint, error) {
	if err := Authorize(actor.Role, ActionSetStatus, false); err != nil {
		return nil, err
	}
	if !newStatus.IsValid() {
		return nil, ErrValidation
	}

	complaint, err := s.store.GetByID(complaintID)
	if err != nil {
		return nil, storeErr(err)
	}

	var fallback *uuid.UUID
	if newStatus.RequiresAssignee() && !complaint.AssignedTo.Valid {
		staffID, found, err := s.audit.LatestAssignment(complaintID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrInvalidTransition
		}
		fallback = &staffID
	}

	updated, err := s.store.UpdateStatus(complaintID, newStatus, fallback)
	if err != nil {
		return nil, storeErr(err)
	}

	s.audit.RecordStatusChange(complaintID, complaint.Status, newStatus, actor, userAgent)

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaintID,
		"from":         complaint.Status,
		"to":           newStatus,
		"actor_id":     actor.ID,
	}).Info("Complaint status changed")

	if err := s.attachNotes(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// AddNote appends a free-text note. Reporters may note their own
// complaints; staff and admins may note any. Notes never mutate status or
// assignment.
func (s *LifecycleService) AddNote(complaintID uuid.UUID, content string, actor models.Actor, userAgent string) (*models.Complaint, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrValidation
	}

	complaint, err := s.store.GetByID(complaintID)
	if err != nil {
		return nil, storeErr(err)
	}

	isOwner := complaint.ReportedBy == actor.ID
	if err := Authorize(actor.Role, ActionAddNote, isOwner); err != nil {
		return nil, err
	}

	note := &models.Note{
		ComplaintID: complaintID,
		Content:     content,
		AddedBy:     actor.ID,
	}
	if err := s.store.AppendNote(note); err != nil {
		return nil, storeErr(err)
	}

	s.audit.RecordNote(complaintID, actor, userAgent)

	if err := s.attachNotes(complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// UpdateDetails lets the reporter revise title and description while the
// complaint is still pending. Once assigned the text is frozen.
func (s *LifecycleService) UpdateDetails(complaintID uuid.UUID, actor models.Actor, title, description string) (*models.Complaint, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, ErrValidation
	}

	complaint, err := s.store.GetByID(complaintID)
	if err != nil {
		return nil, storeErr(err)
	}
	if complaint.ReportedBy != actor.ID && actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if complaint.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	updated, err := s.store.UpdateDetails(complaintID, complaint.ReportedBy, title, description)
	if err != nil {
		return nil, storeErr(err)
	}

	if err := s.attachNotes(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete is the admin-only override. It is unconditional and bypasses the
// state machine; the audit trail keeps the deletion on record.
func (s *LifecycleService) Delete(complaintID uuid.UUID, actor models.Actor, userAgent string) error {
	if err := Authorize(actor.Role, ActionDelete, false); err != nil {
		return err
	}

	if err := s.store.Delete(complaintID); err != nil {
		return storeErr(err)
	}

	s.audit.RecordDeletion(complaintID, actor, userAgent)

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaintID,
		"actor_id":     actor.ID,
	}).Warn("Complaint deleted by administrative override")

	return nil
}

func (s *LifecycleService) attachNotes(complaint *models.Complaint) error {
	notes, err := s.store.ListNotes(complaint.ID)
	if err != nil {
		return storeErr(err)
	}
	complaint.Notes = notes
	return nil
}

package services

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fixitnow/maintenance-backend/internal/models"
	"github.com/fixitnow/maintenance-backend/internal/utils"
)

// EventLedger is the append-only store the audit service writes to
type EventLedger interface {
	Append(event *models.ComplaintEvent) error
	ListByComplaint(complaintID uuid.UUID) ([]models.ComplaintEvent, error)
	LatestAssignment(complaintID uuid.UUID) (uuid.UUID, error)
}

// AuditService records assignment, status and note activity on complaints.
// Entries are append-only; there is no update or delete path.
type AuditService struct {
	ledger EventLedger
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(ledger EventLedger, logger *logrus.Logger) *AuditService {
	return &AuditService{
		ledger: ledger,
		logger: logger,
	}
}

// RecordAssignment logs that a complaint was assigned to a staff member
func (s *AuditService) RecordAssignment(complaintID, staffID uuid.UUID, actor models.Actor, userAgent string) {
	s.record(&models.ComplaintEvent{
		ComplaintID: complaintID,
		Action:      models.EventAssigned,
		ActorID:     actor.ID,
		StaffID:     uuid.NullUUID{UUID: staffID, Valid: true},
		Detail:      s.detail(map[string]interface{}{"role": actor.Role}, userAgent),
	})
}

// RecordStatusChange logs a status transition
func (s *AuditService) RecordStatusChange(complaintID uuid.UUID, from, to models.Status, actor models.Actor, userAgent string) {
	s.record(&models.ComplaintEvent{
		ComplaintID: complaintID,
		Action:      models.EventStatusChanged,
		ActorID:     actor.ID,
		Detail: s.detail(map[string]interface{}{
			"from": from,
			"to":   to,
			"role": actor.Role,
		}, userAgent),
	})
}

// RecordNote logs that a note was appended
func (s *AuditService) RecordNote(complaintID uuid.UUID, actor models.Actor, userAgent string) {
	s.record(&models.ComplaintEvent{
		ComplaintID: complaintID,
		Action:      models.EventNoteAdded,
		ActorID:     actor.ID,
		Detail:      s.detail(map[string]interface{}{"role": actor.Role}, userAgent),
	})
}

// RecordDeletion logs an administrative delete. Events carry no foreign key
// to complaints, so this entry outlives the record it describes.
func (s *AuditService) RecordDeletion(complaintID uuid.UUID, actor models.Actor, userAgent string) {
	s.record(&models.ComplaintEvent{
		ComplaintID: complaintID,
		Action:      models.EventDeleted,
		ActorID:     actor.ID,
		Detail:      s.detail(map[string]interface{}{"role": actor.Role}, userAgent),
	})
}

// History returns the full ordered event sequence for a complaint
func (s *AuditService) History(complaintID uuid.UUID) ([]models.ComplaintEvent, error) {
	events, err := s.ledger.ListByComplaint(complaintID)
	if err != nil {
		return nil, storeErr(err)
	}
	return events, nil
}

// LatestAssignment returns the staff ID from the most recent assignment
// event on record, if any
func (s *AuditService) LatestAssignment(complaintID uuid.UUID) (uuid.UUID, bool, error) {
	staffID, err := s.ledger.LatestAssignment(complaintID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, storeErr(err)
	}
	return staffID, true, nil
}

// record appends an event. Audit writes must not fail the operation they
// describe, so errors are logged and dropped.
func (s *AuditService) record(event *models.ComplaintEvent) {
	if err := s.ledger.Append(event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"complaint_id": event.ComplaintID,
			"action":       event.Action,
		}).Error("Failed to append audit event")
	}
}

// detail marshals structured event context plus parsed device info
func (s *AuditService) detail(fields map[string]interface{}, userAgent string) models.NullString {
	if userAgent != "" {
		fields["device_info"] = utils.ParseUserAgent(userAgent)
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return models.NullString{}
	}

	return models.NullString{NullString: sql.NullString{String: string(payload), Valid: true}}
}

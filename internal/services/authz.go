package services

import (
	"github.com/fixitnow/maintenance-backend/internal/models"
)

// Action is a lifecycle operation subject to the role table
type Action string

const (
	ActionAssign    Action = "assign"
	ActionSetStatus Action = "set_status"
	ActionAddNote   Action = "add_note"
	ActionDelete    Action = "delete"
)

// Authorize is the central role check shared by every lifecycle operation.
// It is a pure function of (role, action, ownership) and is evaluated fresh
// on every call; decisions are never cached because role and ownership can
// change between calls.
//
//	             reporter  maintenance/staff  admin
//	assign         no            yes           yes
//	setStatus      no            yes           yes
//	addNote     own only         yes           yes
//	delete         no            no            yes
func Authorize(role models.Role, action Action, isOwner bool) error {
	switch action {
	case ActionAssign, ActionSetStatus:
		if role.CanManageComplaints() {
			return nil
		}
	case ActionAddNote:
		if role.CanManageComplaints() {
			return nil
		}
		if role == models.RoleReporter && isOwner {
			return nil
		}
	case ActionDelete:
		if role == models.RoleAdmin {
			return nil
		}
	}
	return ErrForbidden
}

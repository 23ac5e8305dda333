package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		role    models.Role
		action  Action
		isOwner bool
		allowed bool
	}{
		{"reporter cannot assign", models.RoleReporter, ActionAssign, false, false},
		{"reporter cannot assign own", models.RoleReporter, ActionAssign, true, false},
		{"reporter cannot set status", models.RoleReporter, ActionSetStatus, false, false},
		{"reporter cannot set status on own", models.RoleReporter, ActionSetStatus, true, false},
		{"reporter can note own", models.RoleReporter, ActionAddNote, true, true},
		{"reporter cannot note others", models.RoleReporter, ActionAddNote, false, false},
		{"reporter cannot delete", models.RoleReporter, ActionDelete, true, false},

		{"maintenance can assign", models.RoleMaintenance, ActionAssign, false, true},
		{"maintenance can set status", models.RoleMaintenance, ActionSetStatus, false, true},
		{"maintenance can note any", models.RoleMaintenance, ActionAddNote, false, true},
		{"maintenance cannot delete", models.RoleMaintenance, ActionDelete, false, false},

		{"staff can assign", models.RoleStaff, ActionAssign, false, true},
		{"staff can set status", models.RoleStaff, ActionSetStatus, false, true},
		{"staff can note any", models.RoleStaff, ActionAddNote, false, true},
		{"staff cannot delete", models.RoleStaff, ActionDelete, false, false},

		{"admin can assign", models.RoleAdmin, ActionAssign, false, true},
		{"admin can set status", models.RoleAdmin, ActionSetStatus, false, true},
		{"admin can note any", models.RoleAdmin, ActionAddNote, false, true},
		{"admin can delete", models.RoleAdmin, ActionDelete, false, true},

		{"unknown role denied", models.Role("ghost"), ActionAddNote, true, false},
		{"unknown action denied", models.RoleAdmin, Action("purge"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.role, tt.action, tt.isOwner)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionInitializeRequests = "INITIALIZE_REQUESTS"
	ActionApproveRequest     = "APPROVE_REQUEST"
	ActionDenyRequest        = "DENY_REQUEST"
	ActionReRequest          = "RE_REQUEST"
	ActionUnlockPermit       = "UNLOCK_PERMIT"

	ActionRegisterStudent  = "REGISTER_STUDENT"
	ActionActivateStudent  = "ACTIVATE_STUDENT"
	ActionRejectStudent    = "REJECT_STUDENT"
	ActionAssignChair      = "ASSIGN_PROGRAM_CHAIR"
	ActionAssignDormOwner  = "ASSIGN_DORM_OWNER"
	ActionMarkPaymentPaid  = "MARK_PAYMENT_PAID"
	ActionClearPaymentPaid = "CLEAR_PAYMENT_PAID"

	ActionCreateOffice = "CREATE_OFFICE"
	ActionUpdateOffice = "UPDATE_OFFICE"
	ActionDeleteOffice = "DELETE_OFFICE"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for system-initiated actions
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

package models

import (
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditAction represents the type of operation performed
type AuditAction string

const (
	AuditActionCreate     AuditAction = "CREATE"
	AuditActionUpdate     AuditAction = "UPDATE"
	AuditActionTransition AuditAction = "TRANSITION" // Workflow status change
	AuditActionAssign     AuditAction = "ASSIGN"
	AuditActionApprove    AuditAction = "APPROVE"
	AuditActionReject     AuditAction = "REJECT"
	AuditActionVerdict    AuditAction = "VERDICT"
	AuditActionClaim      AuditAction = "CLAIM"
	AuditActionPayment    AuditAction = "PAYMENT"
	AuditActionLogin      AuditAction = "LOGIN"
	AuditActionLogout     AuditAction = "LOGOUT"
)

// AuditLog represents an immutable record of a workflow operation
type AuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`

	// Actor identification
	UserID    *string `gorm:"type:uuid;index:idx_audit_user" json:"user_id,omitempty"`
	UserName  string  `json:"user_name"`  // Denormalized for historical accuracy
	UserRoles string  `json:"user_roles"` // Comma separated active roles at the time

	// Target resource
	ResourceType string `gorm:"not null;index:idx_audit_resource" json:"resource_type"` // e.g., "Case", "Suspect"
	ResourceID   string `gorm:"type:uuid;not null;index:idx_audit_resource" json:"resource_id"`
	ResourceName string `json:"resource_name,omitempty"`

	// Operation details
	Action      AuditAction `gorm:"not null;index:idx_audit_action" json:"action"`
	Description string      `gorm:"type:text" json:"description,omitempty"`

	OldValues datatypes.JSON `json:"old_values,omitempty"`
	NewValues datatypes.JSON `json:"new_values,omitempty"`

	// Request metadata (optional)
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// AuditChange is one field whose value differs between OldValues and NewValues
type AuditChange struct {
	Field string
	Old   interface{}
	New   interface{}
}

func decodeValues(raw datatypes.JSON) map[string]interface{} {
	values := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &values)
	}
	return values
}

// Changes lists the differing fields, sorted by name
func (a *AuditLog) Changes() []AuditChange {
	before, after := decodeValues(a.OldValues), decodeValues(a.NewValues)

	fields := make([]string, 0, len(before)+len(after))
	for field := range before {
		fields = append(fields, field)
	}
	for field := range after {
		if _, seen := before[field]; !seen {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	var changes []AuditChange
	for _, field := range fields {
		if !reflect.DeepEqual(before[field], after[field]) {
			changes = append(changes, AuditChange{Field: field, Old: before[field], New: after[field]})
		}
	}
	return changes
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate prevents modification of audit logs
func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}

// BeforeDelete prevents deletion of audit logs
func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableRecord
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Captain decision constants
const (
	DecisionApproveArrest       = "Approve Arrest"
	DecisionReject              = "Reject"
	DecisionRequestMoreEvidence = "Request More Evidence"
)

// Chief approval states derived from RequiresChiefApproval and ChiefApproval
const (
	ChiefApprovalNotRequired = "Not Required"
	ChiefApprovalPending     = "Pending"
	ChiefApprovalApproved    = "Approved"
	ChiefApprovalRejected    = "Rejected"
)

// ChiefApprovalTransitions allows exactly one decision by the chief
var ChiefApprovalTransitions = Transitions{
	ChiefApprovalPending: {ChiefApprovalApproved, ChiefApprovalRejected},
}

// IsValidDecision checks if the captain decision value is valid
func IsValidDecision(decision string) bool {
	switch decision {
	case DecisionApproveArrest, DecisionReject, DecisionRequestMoreEvidence:
		return true
	}
	return false
}

// CaptainDecision is a captain's arrest ruling on a suspect
type CaptainDecision struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SuspectID   string    `gorm:"type:uuid;not null;index" json:"suspect_id"`
	CaseID      string    `gorm:"type:uuid;not null;index" json:"case_id"`
	Decision    string    `gorm:"size:30;not null" json:"decision"`
	Comments    string    `gorm:"type:text" json:"comments"`
	DecidedByID string    `gorm:"type:uuid;not null" json:"decided_by_id"`
	DecidedAt   time.Time `gorm:"not null" json:"decided_at"`

	// Fixed at creation from the case severity
	RequiresChiefApproval bool       `gorm:"not null" json:"requires_chief_approval"`
	ChiefApproval         *bool      `json:"chief_approval"`
	ChiefApproverID       *string    `gorm:"type:uuid" json:"chief_approver_id,omitempty"`
	ChiefApprovalDate     *time.Time `json:"chief_approval_date,omitempty"`
	ChiefComments         string     `gorm:"type:text" json:"chief_comments,omitempty"`
}

func (d *CaptainDecision) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

func (CaptainDecision) TableName() string {
	return "captain_decisions"
}

// IsApproved reports whether the decision is a final arrest approval
func (d *CaptainDecision) IsApproved() bool {
	if !d.RequiresChiefApproval {
		return d.Decision == DecisionApproveArrest
	}
	return d.ChiefApproval != nil && *d.ChiefApproval
}

// ChiefApprovalState returns the chief approval step as a state name
func (d *CaptainDecision) ChiefApprovalState() string {
	switch {
	case !d.RequiresChiefApproval:
		return ChiefApprovalNotRequired
	case d.ChiefApproval == nil:
		return ChiefApprovalPending
	case *d.ChiefApproval:
		return ChiefApprovalApproved
	default:
		return ChiefApprovalRejected
	}
}

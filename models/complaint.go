package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Complaint status constants
const (
	ComplaintStatusPending             = "Pending"
	ComplaintStatusUnderReview         = "Under Review"
	ComplaintStatusApproved            = "Approved"
	ComplaintStatusRejected            = "Rejected"
	ComplaintStatusPermanentlyRejected = "Permanently Rejected"
)

// MaxComplaintSubmissions is the submission count at which a complaint is permanently rejected
const MaxComplaintSubmissions = 3

// ComplaintTransitions is the complaint state machine. Pending→Pending is an intern
// return or a resubmission; Under Review→Pending is an officer rejection.
var ComplaintTransitions = Transitions{
	ComplaintStatusPending: {
		ComplaintStatusPending,
		ComplaintStatusUnderReview,
		ComplaintStatusPermanentlyRejected,
	},
	ComplaintStatusUnderReview: {
		ComplaintStatusApproved,
		ComplaintStatusPending,
	},
}

// Complaint is a citizen-submitted allegation awaiting triage
type Complaint struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title           string `gorm:"size:200;not null" json:"title"`
	Description     string `gorm:"type:text;not null" json:"description"`
	SubmittedByID   string `gorm:"type:uuid;not null;index" json:"submitted_by_id"`
	SubmissionCount int    `gorm:"not null;default:1" json:"submission_count"`
	Status          string `gorm:"not null;default:Pending;index" json:"status"`

	ReviewedByInternID  *string `gorm:"type:uuid" json:"reviewed_by_intern_id,omitempty"`
	ReviewedByOfficerID *string `gorm:"type:uuid" json:"reviewed_by_officer_id,omitempty"`
	ReviewComments      string  `gorm:"type:text" json:"review_comments"`

	// Set only on approval
	CaseID *string `gorm:"type:uuid;uniqueIndex" json:"case_id,omitempty"`

	// Relationships
	SubmittedBy User              `gorm:"foreignKey:SubmittedByID" json:"-"`
	Case        *Case             `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	Reviews     []ComplaintReview `gorm:"foreignKey:ComplaintID" json:"reviews,omitempty"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.SubmissionCount == 0 {
		c.SubmissionCount = 1
	}
	return nil
}

func (Complaint) TableName() string {
	return "complaints"
}

// IsPermanentlyRejected reports whether the three-strikes rule has locked the complaint
func (c *Complaint) IsPermanentlyRejected() bool {
	return c.SubmissionCount >= MaxComplaintSubmissions || c.Status == ComplaintStatusPermanentlyRejected
}

// CanBeResubmitted reports whether the submitter may still send a corrected version
func (c *Complaint) CanBeResubmitted() bool {
	return c.Status != ComplaintStatusPermanentlyRejected && c.SubmissionCount < MaxComplaintSubmissions
}

// IsLocked reports whether no further transition is possible
func (c *Complaint) IsLocked() bool {
	return c.IsPermanentlyRejected() || c.CaseID != nil
}

// IncrementSubmissionCount counts one more strike and applies the three-strikes rule
func (c *Complaint) IncrementSubmissionCount() {
	c.SubmissionCount++
	if c.SubmissionCount >= MaxComplaintSubmissions {
		c.Status = ComplaintStatusPermanentlyRejected
	}
}

// Complaint review actions
const (
	ComplaintActionReturned    = "Returned"
	ComplaintActionForwarded   = "Forwarded"
	ComplaintActionApproved    = "Approved"
	ComplaintActionRejected    = "Rejected"
	ComplaintActionResubmitted = "Resubmitted"
)

// ComplaintReview is an append-only record of one complaint transition
type ComplaintReview struct {
	ID         string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt  time.Time `json:"-"`
	ReviewedAt time.Time `gorm:"not null;index" json:"reviewed_at"`

	ComplaintID string  `gorm:"type:uuid;not null;index" json:"complaint_id"`
	ReviewerID  *string `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	Action      string  `gorm:"size:20;not null" json:"action"`
	FromStatus  string  `gorm:"size:30" json:"from_status"`
	ToStatus    string  `gorm:"size:30" json:"to_status"`
	Comments    string  `gorm:"type:text" json:"comments"`
}

func (r *ComplaintReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate rejects any modification of a stored review
func (r *ComplaintReview) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}

// BeforeDelete rejects removal of a stored review
func (r *ComplaintReview) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableRecord
}

func (ComplaintReview) TableName() string {
	return "complaint_reviews"
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case severity constants, lowest tier first
const (
	SeverityLevel3   = "Level 3"
	SeverityLevel2   = "Level 2"
	SeverityLevel1   = "Level 1"
	SeverityCritical = "Critical"
)

// Case status constants
const (
	CaseStatusPending            = "Pending"
	CaseStatusOpen               = "Open"
	CaseStatusUnderInvestigation = "Under Investigation"
	CaseStatusResolved           = "Resolved"
	CaseStatusClosed             = "Closed"
)

// CaseTransitions is the case state machine. Pending only leaves through chief approval
// (ApproveCase); the remaining statuses move freely among each other.
var CaseTransitions = Transitions{
	CaseStatusPending:            {CaseStatusOpen},
	CaseStatusOpen:               {CaseStatusUnderInvestigation, CaseStatusResolved, CaseStatusClosed},
	CaseStatusUnderInvestigation: {CaseStatusOpen, CaseStatusResolved, CaseStatusClosed},
	CaseStatusResolved:           {CaseStatusOpen, CaseStatusUnderInvestigation, CaseStatusClosed},
	CaseStatusClosed:             {CaseStatusOpen, CaseStatusUnderInvestigation, CaseStatusResolved},
}

// SeverityWeight maps a severity tier to its ranking weight. Unknown values weigh 1.
func SeverityWeight(severity string) int {
	switch severity {
	case SeverityLevel3:
		return 1
	case SeverityLevel2:
		return 2
	case SeverityLevel1:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 1
	}
}

// IsValidSeverity checks if the severity is one of the four tiers
func IsValidSeverity(severity string) bool {
	switch severity {
	case SeverityLevel3, SeverityLevel2, SeverityLevel1, SeverityCritical:
		return true
	}
	return false
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	validStatuses := []string{
		CaseStatusPending,
		CaseStatusOpen,
		CaseStatusUnderInvestigation,
		CaseStatusResolved,
		CaseStatusClosed,
	}
	for _, s := range validStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsActiveCaseStatus reports whether days under investigation still accrue for the status
func IsActiveCaseStatus(status string) bool {
	return status != CaseStatusResolved && status != CaseStatusClosed
}

// Case is the central criminal case record
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseNumber  string `gorm:"not null;uniqueIndex" json:"case_number"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Severity    string `gorm:"size:20;not null;index" json:"severity"`
	Status      string `gorm:"size:30;not null;default:Pending;index" json:"status"`

	CreatedByID         string     `gorm:"type:uuid;not null;index" json:"created_by_id"`
	AssignedDetectiveID *string    `gorm:"type:uuid;index" json:"assigned_detective_id,omitempty"`
	AssignedSergeantID  *string    `gorm:"type:uuid;index" json:"assigned_sergeant_id,omitempty"`
	ApprovedByID        *string    `gorm:"type:uuid" json:"approved_by_id,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`

	// Incident details
	IncidentDate     *time.Time `json:"incident_date,omitempty"`
	IncidentTime     string     `gorm:"size:8" json:"incident_time,omitempty"`
	IncidentLocation string     `gorm:"size:300" json:"incident_location,omitempty"`

	// Resolution
	ResolutionDate  *time.Time `json:"resolution_date,omitempty"`
	ResolutionNotes string     `gorm:"type:text" json:"resolution_notes,omitempty"`
	StatusChangedAt *time.Time `json:"status_changed_at,omitempty"`
	StatusChangedBy *string    `gorm:"type:uuid" json:"status_changed_by,omitempty"`

	// Relationships
	CreatedBy         User              `gorm:"foreignKey:CreatedByID" json:"-"`
	AssignedDetective *User             `gorm:"foreignKey:AssignedDetectiveID" json:"assigned_detective,omitempty"`
	AssignedSergeant  *User             `gorm:"foreignKey:AssignedSergeantID" json:"assigned_sergeant,omitempty"`
	Complainants      []CaseComplainant `gorm:"foreignKey:CaseID" json:"complainants,omitempty"`
	Witnesses         []CaseWitness     `gorm:"foreignKey:CaseID" json:"witnesses,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsAssigned reports whether the user is the case's detective or sergeant
func (c *Case) IsAssigned(userID string) bool {
	if c.AssignedDetectiveID != nil && *c.AssignedDetectiveID == userID {
		return true
	}
	return c.AssignedSergeantID != nil && *c.AssignedSergeantID == userID
}

// Complainant status constants
const (
	ComplainantStatusPending  = "Pending"
	ComplainantStatusApproved = "Approved"
	ComplainantStatusRejected = "Rejected"
)

// CaseComplainant links a complainant user to a case
type CaseComplainant struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CaseID        string `gorm:"type:uuid;not null;uniqueIndex:idx_case_complainant" json:"case_id"`
	ComplainantID string `gorm:"type:uuid;not null;uniqueIndex:idx_case_complainant" json:"complainant_id"`
	Status        string `gorm:"size:20;not null;default:Pending" json:"status"`

	Complainant User `gorm:"foreignKey:ComplainantID" json:"complainant,omitempty"`
}

func (cc *CaseComplainant) BeforeCreate(tx *gorm.DB) error {
	if cc.ID == "" {
		cc.ID = uuid.New().String()
	}
	return nil
}

func (CaseComplainant) TableName() string {
	return "case_complainants"
}

// CaseWitness records a witness of the incident
type CaseWitness struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CaseID     string `gorm:"type:uuid;not null;index" json:"case_id"`
	Name       string `gorm:"size:200;not null" json:"name"`
	NationalID string `gorm:"size:50" json:"national_id,omitempty"`
	Phone      string `gorm:"size:20" json:"phone,omitempty"`
	Notes      string `gorm:"type:text" json:"notes,omitempty"`
	AddedByID  string `gorm:"type:uuid" json:"added_by_id"`
}

func (w *CaseWitness) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

func (CaseWitness) TableName() string {
	return "case_witnesses"
}

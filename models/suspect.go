package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Suspect status constants
const (
	SuspectStatusUnderInvestigation      = "Under Investigation"
	SuspectStatusUnderSevereSurveillance = "Under Severe Surveillance"
	SuspectStatusArrested                = "Arrested"
	SuspectStatusCleared                 = "Cleared"
	SuspectStatusConvicted               = "Convicted"
)

// SevereSurveillanceThresholdDays is the number of days after which a suspect still
// under investigation is escalated to severe surveillance
const SevereSurveillanceThresholdDays = 30

// SuspectTransitions is the suspect state machine
var SuspectTransitions = Transitions{
	SuspectStatusUnderInvestigation: {
		SuspectStatusUnderSevereSurveillance,
		SuspectStatusArrested,
		SuspectStatusCleared,
	},
	SuspectStatusUnderSevereSurveillance: {
		SuspectStatusArrested,
		SuspectStatusCleared,
	},
	SuspectStatusArrested: {
		SuspectStatusConvicted,
		SuspectStatusCleared,
	},
}

// IsWantedSuspectStatus reports whether the suspect is still at large
func IsWantedSuspectStatus(status string) bool {
	return status == SuspectStatusUnderInvestigation || status == SuspectStatusUnderSevereSurveillance
}

// Suspect is a person of interest in a case. External suspects carry raw identity
// fields instead of a user reference.
type Suspect struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string  `gorm:"type:uuid;not null;index" json:"case_id"`
	UserID *string `gorm:"type:uuid;index" json:"user_id,omitempty"`

	Name        string `gorm:"size:200" json:"name,omitempty"`
	NationalID  string `gorm:"size:50;index" json:"national_id,omitempty"`
	PhoneNumber string `gorm:"size:20" json:"phone_number,omitempty"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`

	Status                string     `gorm:"size:30;not null;index" json:"status"`
	SurveillanceStartDate *time.Time `json:"surveillance_start_date,omitempty"`
	ArrestDate            *time.Time `json:"arrest_date,omitempty"`
	ClearedDate           *time.Time `json:"cleared_date,omitempty"`
	ConvictedDate         *time.Time `json:"convicted_date,omitempty"`
	AddedByID             string     `gorm:"type:uuid" json:"added_by_id"`

	// Relationships
	Case *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (s *Suspect) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = SuspectStatusUnderInvestigation
	}
	return nil
}

func (Suspect) TableName() string {
	return "suspects"
}

// Identity key kinds used for cross-case ranking
const (
	IdentityKindUser       = "user"
	IdentityKindNationalID = "national_id"
	IdentityKindSuspect    = "suspect"
)

// IdentityKey returns the key that groups suspect rows belonging to the same person:
// the linked user, else the national id, else the row itself.
func (s *Suspect) IdentityKey() (kind, value string) {
	if s.UserID != nil && *s.UserID != "" {
		return IdentityKindUser, *s.UserID
	}
	if s.NationalID != "" {
		return IdentityKindNationalID, s.NationalID
	}
	return IdentityKindSuspect, s.ID
}

// DisplayName returns the best available name for the suspect
func (s *Suspect) DisplayName() string {
	if s.User != nil && s.User.Name != "" {
		return s.User.Name
	}
	if s.Name != "" {
		return s.Name
	}
	return "Unknown"
}

// GuiltScore is one assigner's 1-10 guilt estimate for a suspect
type GuiltScore struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SuspectID     string `gorm:"type:uuid;not null;uniqueIndex:idx_guilt_suspect_assigner" json:"suspect_id"`
	AssignedByID  string `gorm:"type:uuid;not null;uniqueIndex:idx_guilt_suspect_assigner" json:"assigned_by_id"`
	CaseID        string `gorm:"type:uuid;not null;index" json:"case_id"`
	Score         int    `gorm:"not null" json:"score"`
	Justification string `gorm:"type:text;not null" json:"justification"`

	AssignedBy User `gorm:"foreignKey:AssignedByID" json:"-"`
}

const (
	MinGuiltScore = 1
	MaxGuiltScore = 10
)

func (g *GuiltScore) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate rejects modification; scores are fixed once given
func (g *GuiltScore) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}

func (GuiltScore) TableName() string {
	return "guilt_scores"
}

// Interrogation records one questioning session with a suspect
type Interrogation struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SuspectID       string    `gorm:"type:uuid;not null;index" json:"suspect_id"`
	CaseID          string    `gorm:"type:uuid;not null;index" json:"case_id"`
	InterrogatorID  string    `gorm:"type:uuid;not null" json:"interrogator_id"`
	ConductedAt     time.Time `gorm:"not null" json:"conducted_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Transcript      string    `gorm:"type:text" json:"transcript,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
}

func (i *Interrogation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

func (Interrogation) TableName() string {
	return "interrogations"
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verdict constants
const (
	VerdictGuilty    = "Guilty"
	VerdictNotGuilty = "Not Guilty"
)

// TrialStateAwaitingVerdict is the state of a trial with no verdict recorded
const TrialStateAwaitingVerdict = "Awaiting Verdict"

// TrialTransitions allows exactly one verdict per trial
var TrialTransitions = Transitions{
	TrialStateAwaitingVerdict: {VerdictGuilty, VerdictNotGuilty},
}

// Trial is the court proceeding for a case; one per case
type Trial struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID     string     `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	DecisionID *string    `gorm:"type:uuid" json:"decision_id,omitempty"`
	JudgeID    *string    `gorm:"type:uuid;index" json:"judge_id,omitempty"`
	TrialDate  *time.Time `json:"trial_date,omitempty"`

	Verdict               *string    `gorm:"size:20" json:"verdict,omitempty"`
	VerdictDate           *time.Time `json:"verdict_date,omitempty"`
	PunishmentTitle       string     `gorm:"size:200" json:"punishment_title,omitempty"`
	PunishmentDescription string     `gorm:"type:text" json:"punishment_description,omitempty"`
	FineAmount            *int64     `json:"fine_amount,omitempty"`
	Notes                 string     `gorm:"type:text" json:"notes,omitempty"`

	// Relationships
	Case  *Case `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	Judge *User `gorm:"foreignKey:JudgeID" json:"judge,omitempty"`
}

func (t *Trial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

func (Trial) TableName() string {
	return "trials"
}

// State returns the verdict, or TrialStateAwaitingVerdict when none is recorded
func (t *Trial) State() string {
	if t.Verdict == nil || *t.Verdict == "" {
		return TrialStateAwaitingVerdict
	}
	return *t.Verdict
}

// IsComplete reports whether a verdict is recorded with everything it requires
func (t *Trial) IsComplete() bool {
	if t.Verdict == nil || *t.Verdict == "" {
		return false
	}
	if *t.Verdict == VerdictNotGuilty {
		return true
	}
	return strings.TrimSpace(t.PunishmentTitle) != "" && strings.TrimSpace(t.PunishmentDescription) != ""
}

// HasVerdict reports whether any verdict has been recorded
func (t *Trial) HasVerdict() bool {
	return t.State() != TrialStateAwaitingVerdict
}

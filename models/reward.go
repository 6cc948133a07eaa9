package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reward submission status constants
const (
	RewardSubmissionStatusPending     = "Pending"
	RewardSubmissionStatusUnderReview = "Under Review"
	RewardSubmissionStatusApproved    = "Approved"
	RewardSubmissionStatusRejected    = "Rejected"
)

// RewardSubmissionTransitions: officer moves Pending, detective moves Under Review
var RewardSubmissionTransitions = Transitions{
	RewardSubmissionStatusPending:     {RewardSubmissionStatusUnderReview, RewardSubmissionStatusRejected},
	RewardSubmissionStatusUnderReview: {RewardSubmissionStatusApproved, RewardSubmissionStatusRejected},
}

// RewardSubmission is a citizen tip offered in exchange for a reward
type RewardSubmission struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SubmittedByID         string  `gorm:"type:uuid;not null;index" json:"submitted_by_id"`
	CaseID                *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	Information           string  `gorm:"type:text;not null" json:"information"`
	Status                string  `gorm:"size:20;not null;default:Pending;index" json:"status"`
	ReviewedByOfficerID   *string `gorm:"type:uuid" json:"reviewed_by_officer_id,omitempty"`
	ReviewedByDetectiveID *string `gorm:"type:uuid" json:"reviewed_by_detective_id,omitempty"`
	ReviewComments        string  `gorm:"type:text" json:"review_comments"`

	SubmittedBy User    `gorm:"foreignKey:SubmittedByID" json:"-"`
	Reward      *Reward `gorm:"foreignKey:SubmissionID" json:"reward,omitempty"`
}

func (s *RewardSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (RewardSubmission) TableName() string {
	return "reward_submissions"
}

// Reward status constants
const (
	RewardStatusPending = "Pending"
	RewardStatusClaimed = "Claimed"
)

// RewardTransitions: a reward is claimed once
var RewardTransitions = Transitions{
	RewardStatusPending: {RewardStatusClaimed},
}

// Reward is an issued reward, claimable only with its code. The code is never
// serialized; only its recipient is told.
type Reward struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SubmissionID string  `gorm:"type:uuid;not null;uniqueIndex" json:"submission_id"`
	CaseID       *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	RecipientID  string  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Amount       int64   `gorm:"not null" json:"amount"`
	Code         string  `gorm:"size:20;not null;uniqueIndex" json:"-"`
	Status       string  `gorm:"size:20;not null;default:Pending;index" json:"status"`
	CreatedByID  string  `gorm:"type:uuid" json:"created_by_id"`

	ClaimedDate       *time.Time `json:"claimed_date,omitempty"`
	ClaimedAtLocation string     `gorm:"size:200" json:"claimed_at_location,omitempty"`
	ClaimedByOfficer  *string    `gorm:"type:uuid" json:"claimed_by_officer,omitempty"`

	Recipient User `gorm:"foreignKey:RecipientID" json:"-"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate keeps the code immutable once generated
func (r *Reward) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("Code") {
		return ErrImmutableRecord
	}
	return nil
}

func (Reward) TableName() string {
	return "rewards"
}

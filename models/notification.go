package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification kinds
const (
	NotificationKindNewEvidence      = "new_evidence"
	NotificationKindEvidenceVerified = "evidence_verified"
	NotificationKindCaseUpdate       = "case_update"
	NotificationKindComplaintReview  = "complaint_review"
	NotificationKindRewardUpdate     = "reward_update"
	NotificationKindPaymentUpdate    = "payment_update"
)

type Notification struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID string  `gorm:"type:uuid;not null;index" json:"user_id"`
	CaseID *string `gorm:"type:uuid" json:"case_id,omitempty"`

	Kind    string `gorm:"size:30;not null" json:"kind"`
	Title   string `gorm:"not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`

	ReadAt *time.Time `json:"read_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

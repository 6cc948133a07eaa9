package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Evidence type constants
const (
	EvidenceTypeWitnessStatement = "witness_statement"
	EvidenceTypeBiological       = "biological"
	EvidenceTypeVehicle          = "vehicle"
	EvidenceTypeIdentification   = "identification"
	EvidenceTypeOther            = "other"
)

// IsValidEvidenceType checks if the evidence type is valid
func IsValidEvidenceType(evidenceType string) bool {
	switch evidenceType {
	case EvidenceTypeWitnessStatement, EvidenceTypeBiological, EvidenceTypeVehicle,
		EvidenceTypeIdentification, EvidenceTypeOther:
		return true
	}
	return false
}

// Evidence is an item collected for a case. Media attachments are stored elsewhere.
type Evidence struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID       string `gorm:"type:uuid;not null;index:idx_evidence_case_type" json:"case_id"`
	EvidenceType string `gorm:"size:20;not null;index:idx_evidence_case_type" json:"evidence_type"`
	Title        string `gorm:"size:200;not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	RecordedByID string `gorm:"type:uuid;not null" json:"recorded_by_id"`

	// Witness statement
	Transcript        string `gorm:"type:text" json:"transcript,omitempty"`
	WitnessName       string `gorm:"size:200" json:"witness_name,omitempty"`
	WitnessNationalID string `gorm:"size:50" json:"witness_national_id,omitempty"`
	WitnessPhone      string `gorm:"size:20" json:"witness_phone,omitempty"`

	// Biological
	IsValid           *bool      `json:"is_valid,omitempty"`
	VerifiedByID      *string    `gorm:"type:uuid" json:"verified_by_id,omitempty"`
	VerificationDate  *time.Time `json:"verification_date,omitempty"`
	VerificationNotes string     `gorm:"type:text" json:"verification_notes,omitempty"`

	// Vehicle
	VehicleModel string `gorm:"size:100" json:"vehicle_model,omitempty"`
	Color        string `gorm:"size:50" json:"color,omitempty"`
	LicensePlate string `gorm:"size:20" json:"license_plate,omitempty"`
	SerialNumber string `gorm:"size:100" json:"serial_number,omitempty"`

	// Identification
	FullName string `gorm:"size:200" json:"full_name,omitempty"`

	Metadata datatypes.JSON `json:"metadata,omitempty"`
}

func (e *Evidence) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

func (Evidence) TableName() string {
	return "evidence"
}

// IsVerified reports whether a forensic verdict was recorded; only biological items need one
func (e *Evidence) IsVerified() bool {
	if e.EvidenceType != EvidenceTypeBiological {
		return true
	}
	return e.IsValid != nil
}

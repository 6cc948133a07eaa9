package services

import (
	"fmt"
	"strings"

	"police_flow_app_go/models"

	"gorm.io/gorm"
)

var evidenceRecorderRoles = []string{
	models.RoleDetective,
	models.RoleSergeant,
	models.RolePoliceOfficer,
	models.RolePatrolOfficer,
	models.RoleCaptain,
	models.RolePoliceChief,
}

// EvidenceInput carries the fields of any evidence type; only those of the given type are kept
type EvidenceInput struct {
	EvidenceType string `json:"evidence_type"`
	Title        string `json:"title"`
	Description  string `json:"description"`

	Transcript        string `json:"transcript"`
	WitnessName       string `json:"witness_name"`
	WitnessNationalID string `json:"witness_national_id"`
	WitnessPhone      string `json:"witness_phone"`

	VehicleModel string `json:"vehicle_model"`
	Color        string `json:"color"`
	LicensePlate string `json:"license_plate"`
	SerialNumber string `json:"serial_number"`

	FullName string            `json:"full_name"`
	Metadata map[string]string `json:"metadata"`
}

func (in EvidenceInput) validate() error {
	if !models.IsValidEvidenceType(in.EvidenceType) {
		return ErrInvalidEvidenceType
	}
	if strings.TrimSpace(in.Title) == "" {
		return validationError("evidence title is required")
	}
	switch in.EvidenceType {
	case models.EvidenceTypeWitnessStatement:
		if strings.TrimSpace(in.Transcript) == "" {
			return validationError("witness statements need a transcript")
		}
	case models.EvidenceTypeVehicle:
		if strings.TrimSpace(in.VehicleModel) == "" || strings.TrimSpace(in.Color) == "" {
			return validationError("vehicle model and color are required")
		}
		hasPlate := strings.TrimSpace(in.LicensePlate) != ""
		hasSerial := strings.TrimSpace(in.SerialNumber) != ""
		if hasPlate == hasSerial {
			return validationError("provide either a license plate or a serial number, not both")
		}
	case models.EvidenceTypeIdentification:
		if strings.TrimSpace(in.FullName) == "" {
			return validationError("identification evidence needs the owner's full name")
		}
	}
	return nil
}

// AddEvidence records an evidence item on a case and notifies the assigned detective
func (w *Workflow) AddEvidence(caller Caller, caseID string, input EvidenceInput) (*models.Evidence, error) {
	if err := caller.require("record evidence", evidenceRecorderRoles...); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	c, err := w.GetCase(caller, caseID)
	if err != nil {
		return nil, err
	}

	e := &models.Evidence{
		CaseID:       c.ID,
		EvidenceType: input.EvidenceType,
		Title:        SanitizeText(input.Title),
		Description:  SanitizeText(input.Description),
		RecordedByID: caller.UserID,
	}
	switch input.EvidenceType {
	case models.EvidenceTypeWitnessStatement:
		e.Transcript = SanitizeText(input.Transcript)
		e.WitnessName = SanitizeText(input.WitnessName)
		e.WitnessNationalID = strings.TrimSpace(input.WitnessNationalID)
		e.WitnessPhone = strings.TrimSpace(input.WitnessPhone)
	case models.EvidenceTypeVehicle:
		e.VehicleModel = SanitizeText(input.VehicleModel)
		e.Color = SanitizeText(input.Color)
		e.LicensePlate = strings.ToUpper(strings.TrimSpace(input.LicensePlate))
		e.SerialNumber = strings.TrimSpace(input.SerialNumber)
	case models.EvidenceTypeIdentification:
		e.FullName = SanitizeText(input.FullName)
	}
	if len(input.Metadata) > 0 {
		e.Metadata = toJSON(input.Metadata)
	}

	if err := w.DB.Create(e).Error; err != nil {
		return nil, fmt.Errorf("failed to record evidence: %w", err)
	}

	w.audit(caller, models.AuditActionCreate, "Evidence", e.ID, e.Title, "Evidence recorded on case "+c.CaseNumber, nil, e)
	if c.AssignedDetectiveID == nil || *c.AssignedDetectiveID != caller.UserID {
		w.notify(c.AssignedDetectiveID, models.NotificationKindNewEvidence, "New Evidence",
			fmt.Sprintf("New %s evidence was added to case %s: %s", e.EvidenceType, c.CaseNumber, e.Title), strPtr(c.ID))
	}
	return e, nil
}

// VerifyEvidence records the forensic verdict on a biological item, once
func (w *Workflow) VerifyEvidence(caller Caller, evidenceID string, isValid bool, notes string) (*models.Evidence, error) {
	if err := caller.require("verify evidence", models.RoleForensicDoctor); err != nil {
		return nil, err
	}

	var e models.Evidence
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, "id = ?", evidenceID).Error; err != nil {
			return notFoundOr(err, ErrEvidenceNotFound, "evidence")
		}
		if e.EvidenceType != models.EvidenceTypeBiological {
			return validationError("only biological evidence needs forensic verification")
		}
		if e.IsVerified() {
			return ErrEvidenceAlreadyVerified
		}
		now := w.Clock.Now()
		notes = SanitizeText(notes)
		res := tx.Model(&models.Evidence{}).
			Where("id = ? AND is_valid IS NULL", e.ID).
			Updates(map[string]interface{}{
				"is_valid":           isValid,
				"verified_by_id":     caller.UserID,
				"verification_date":  now,
				"verification_notes": notes,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to verify evidence: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrEvidenceAlreadyVerified
		}
		e.IsValid = &isValid
		e.VerifiedByID = strPtr(caller.UserID)
		e.VerificationDate = &now
		e.VerificationNotes = notes
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := "invalid"
	if isValid {
		outcome = "valid"
	}
	w.audit(caller, models.AuditActionApprove, "Evidence", e.ID, e.Title, "Forensic verification: "+outcome, nil,
		map[string]interface{}{"is_valid": isValid})
	w.notify(&e.RecordedByID, models.NotificationKindEvidenceVerified, "Evidence Verified",
		fmt.Sprintf("Forensic verification of %q marked it %s.", e.Title, outcome), strPtr(e.CaseID))
	return &e, nil
}

// ListCaseEvidence returns a visible case's evidence, optionally of one type
func (w *Workflow) ListCaseEvidence(caller Caller, caseID, evidenceType string) ([]models.Evidence, error) {
	if _, err := w.GetCase(caller, caseID); err != nil {
		return nil, err
	}
	query := w.DB.Where("case_id = ?", caseID)
	if evidenceType != "" {
		query = query.Where("evidence_type = ?", evidenceType)
	}
	var items []models.Evidence
	if err := query.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	return items, nil
}

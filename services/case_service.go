package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"police_flow_app_go/models"

	"gorm.io/gorm"
)

// Role groups used by the case workflow
var (
	caseCreatorRoles   = []string{models.RolePoliceOfficer, models.RolePatrolOfficer, models.RolePoliceChief}
	caseApproverRoles  = []string{models.RolePoliceChief}
	caseStatusRoles    = []string{models.RoleDetective, models.RoleSergeant}
	caseAssignerRoles  = []string{models.RolePoliceChief, models.RoleCaptain, models.RoleSergeant}
	caseAdminRoles     = []string{models.RolePoliceChief, models.RoleSystemAdministrator}
	witnessEditorRoles = []string{models.RoleDetective, models.RoleSergeant, models.RolePoliceOfficer, models.RolePatrolOfficer}
)

// CaseInput carries the fields supplied when a case is opened
type CaseInput struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Severity         string     `json:"severity"`
	IncidentDate     *time.Time `json:"incident_date"`
	IncidentTime     string     `json:"incident_time"`
	IncidentLocation string     `json:"incident_location"`
}

// GenerateCaseNumber generates the next case number for the year.
// Format: CASE-{YEAR}-{SEQUENCE}, e.g. CASE-2026-00042
func GenerateCaseNumber(db *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("CASE-%d-", year)

	var maxCase models.Case
	err := db.Unscoped().
		Where("case_number LIKE ?", prefix+"%").
		Order("case_number DESC").
		First(&maxCase).Error

	sequence := 1
	if err == nil {
		var parsedSeq int
		if _, scanErr := fmt.Sscanf(maxCase.CaseNumber, prefix+"%d", &parsedSeq); scanErr == nil {
			sequence = parsedSeq + 1
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to query max case number: %w", err)
	}

	return fmt.Sprintf("%s%05d", prefix, sequence), nil
}

// createCase inserts a case inside tx with the given initial status
func (w *Workflow) createCase(tx *gorm.DB, caller Caller, input CaseInput, status string) (*models.Case, error) {
	input.Title = SanitizeText(input.Title)
	input.Description = SanitizeText(input.Description)
	if input.Title == "" || input.Description == "" {
		return nil, validationError("title and description are required")
	}
	if input.Severity == "" {
		input.Severity = models.SeverityLevel3
	}
	if !models.IsValidSeverity(input.Severity) {
		return nil, ErrInvalidSeverity
	}

	now := w.Clock.Now()
	number, err := GenerateCaseNumber(tx, now.Year())
	if err != nil {
		return nil, err
	}

	c := &models.Case{
		CaseNumber:       number,
		Title:            input.Title,
		Description:      input.Description,
		Severity:         input.Severity,
		Status:           status,
		CreatedByID:      caller.UserID,
		IncidentDate:     input.IncidentDate,
		IncidentTime:     input.IncidentTime,
		IncidentLocation: SanitizeText(input.IncidentLocation),
	}
	if status == models.CaseStatusOpen {
		c.ApprovedByID = strPtr(caller.UserID)
		c.ApprovedAt = &now
	}
	if err := tx.Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	return c, nil
}

// CreateCase opens a case directly. Officers create it Pending, awaiting chief approval;
// the chief's own cases start Open.
func (w *Workflow) CreateCase(caller Caller, input CaseInput) (*models.Case, error) {
	if err := caller.require("create cases", caseCreatorRoles...); err != nil {
		return nil, err
	}

	status := models.CaseStatusPending
	if caller.Has(models.RolePoliceChief) {
		status = models.CaseStatusOpen
	}

	var created *models.Case
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		c, err := w.createCase(tx, caller, input, status)
		created = c
		return err
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionCreate, "Case", created.ID, created.CaseNumber, "Case created with status "+created.Status, nil, created)
	return created, nil
}

// ApproveCase moves a Pending case to Open. It is the only way out of Pending.
func (w *Workflow) ApproveCase(caller Caller, caseID string) (*models.Case, error) {
	if err := caller.require("approve cases", caseApproverRoles...); err != nil {
		return nil, err
	}

	var c models.Case
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", caseID).Error; err != nil {
			return notFoundOr(err, ErrCaseNotFound, "case")
		}
		if c.Status != models.CaseStatusPending {
			return ErrCaseNotPending
		}
		now := w.Clock.Now()
		result := tx.Model(&models.Case{}).
			Where("id = ? AND status = ?", c.ID, models.CaseStatusPending).
			Updates(map[string]interface{}{
				"status":            models.CaseStatusOpen,
				"approved_by_id":    caller.UserID,
				"approved_at":       now,
				"status_changed_at": now,
				"status_changed_by": caller.UserID,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to approve case: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCaseNotPending
		}
		c.Status = models.CaseStatusOpen
		c.ApprovedByID = strPtr(caller.UserID)
		c.ApprovedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionApprove, "Case", c.ID, c.CaseNumber, "Case approved",
		map[string]string{"status": models.CaseStatusPending}, map[string]string{"status": c.Status})
	return &c, nil
}

// UpdateCaseStatus moves an approved case among Open, Under Investigation, Resolved and Closed
func (w *Workflow) UpdateCaseStatus(caller Caller, caseID, status, notes string) (*models.Case, error) {
	if err := caller.require("update case status", caseStatusRoles...); err != nil {
		return nil, err
	}
	if !models.IsValidCaseStatus(status) {
		return nil, ErrInvalidCaseStatus
	}

	var (
		c         models.Case
		oldStatus string
	)
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", caseID).Error; err != nil {
			return notFoundOr(err, ErrCaseNotFound, "case")
		}
		if c.Status == models.CaseStatusPending {
			return ErrCaseAwaitingApproval
		}
		if err := checkTransition("case", models.CaseTransitions, c.Status, status); err != nil {
			return err
		}

		oldStatus = c.Status
		now := w.Clock.Now()
		updates := map[string]interface{}{
			"status":            status,
			"status_changed_at": now,
			"status_changed_by": caller.UserID,
		}
		if status == models.CaseStatusResolved || status == models.CaseStatusClosed {
			if c.ResolutionDate == nil {
				updates["resolution_date"] = now
				c.ResolutionDate = &now
			}
			if notes = SanitizeText(notes); notes != "" {
				updates["resolution_notes"] = notes
				c.ResolutionNotes = notes
			}
		}
		result := tx.Model(&models.Case{}).Where("id = ? AND status = ?", c.ID, oldStatus).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update case status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &TransitionError{Entity: "case", From: oldStatus, To: status}
		}
		c.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionTransition, "Case", c.ID, c.CaseNumber, "Case status changed",
		map[string]string{"status": oldStatus}, map[string]string{"status": c.Status})
	w.notify(c.AssignedDetectiveID, models.NotificationKindCaseUpdate, "Case Status Updated",
		fmt.Sprintf("Case %s is now %s.", c.CaseNumber, c.Status), strPtr(c.ID))
	return &c, nil
}

// AssignDetective sets the case detective; the target must hold the Detective role
func (w *Workflow) AssignDetective(caller Caller, caseID, detectiveID string) (*models.Case, error) {
	return w.assign(caller, caseID, detectiveID, models.RoleDetective, "assigned_detective_id")
}

// AssignSergeant sets the case sergeant; the target must hold the Sergeant role
func (w *Workflow) AssignSergeant(caller Caller, caseID, sergeantID string) (*models.Case, error) {
	return w.assign(caller, caseID, sergeantID, models.RoleSergeant, "assigned_sergeant_id")
}

func (w *Workflow) assign(caller Caller, caseID, userID, role, column string) (*models.Case, error) {
	if err := caller.require("assign cases", caseAssignerRoles...); err != nil {
		return nil, err
	}

	var c models.Case
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", caseID).Error; err != nil {
			return notFoundOr(err, ErrCaseNotFound, "case")
		}
		ok, err := userHasRole(tx, userID, role)
		if err != nil {
			return fmt.Errorf("failed to check role: %w", err)
		}
		if !ok {
			return &Error{Class: ErrValidation, Msg: fmt.Sprintf("user must have the %s role", role)}
		}
		if err := tx.Model(&c).Update(column, userID).Error; err != nil {
			return fmt.Errorf("failed to assign %s: %w", strings.ToLower(role), err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if role == models.RoleDetective {
		c.AssignedDetectiveID = strPtr(userID)
	} else {
		c.AssignedSergeantID = strPtr(userID)
	}

	w.audit(caller, models.AuditActionAssign, "Case", c.ID, c.CaseNumber, role+" assigned", nil, map[string]string{column: userID})
	w.notify(&userID, models.NotificationKindCaseUpdate, "Case Assigned",
		fmt.Sprintf("You have been assigned to case %s (%s) as %s.", c.CaseNumber, c.Title, role), strPtr(c.ID))
	return &c, nil
}

// CanViewCase applies the case visibility rule. Pending cases are visible to their
// creator, the chief or an administrator, and the assigned detective or sergeant. Other
// cases are visible to anyone holding a role besides Cadet.
func CanViewCase(caller Caller, c *models.Case) bool {
	if c.Status == models.CaseStatusPending {
		if c.CreatedByID == caller.UserID || caller.HasAny(caseAdminRoles...) {
			return true
		}
		return caller.HasAny(models.RoleDetective, models.RoleSergeant) && c.IsAssigned(caller.UserID)
	}
	return caller.HasNonCadetRole()
}

// VisibleCases scopes a case query to what the caller may see
func VisibleCases(caller Caller, db *gorm.DB) *gorm.DB {
	if !caller.HasNonCadetRole() {
		return db.Where("1 = 0")
	}
	if caller.HasAny(caseAdminRoles...) {
		return db
	}
	if caller.HasAny(models.RoleDetective, models.RoleSergeant) {
		return db.Where("status <> ? OR created_by_id = ? OR assigned_detective_id = ? OR assigned_sergeant_id = ?",
			models.CaseStatusPending, caller.UserID, caller.UserID, caller.UserID)
	}
	return db.Where("status <> ? OR created_by_id = ?", models.CaseStatusPending, caller.UserID)
}

// GetCase loads a case the caller may see. Invisible cases are reported as not found.
func (w *Workflow) GetCase(caller Caller, caseID string) (*models.Case, error) {
	var c models.Case
	err := w.DB.Preload("Complainants").Preload("Witnesses").
		Preload("AssignedDetective").Preload("AssignedSergeant").
		First(&c, "id = ?", caseID).Error
	if err != nil {
		return nil, notFoundOr(err, ErrCaseNotFound, "case")
	}
	if !CanViewCase(caller, &c) {
		return nil, ErrCaseNotFound
	}
	return &c, nil
}

// ListCases returns the cases visible to the caller, newest first
func (w *Workflow) ListCases(caller Caller, status string) ([]models.Case, error) {
	query := VisibleCases(caller, w.DB.Model(&models.Case{}))
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var cases []models.Case
	if err := query.Order("created_at DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// WitnessInput describes a case witness
type WitnessInput struct {
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
	Notes      string `json:"notes"`
}

// AddWitness attaches a witness to a visible case
func (w *Workflow) AddWitness(caller Caller, caseID string, input WitnessInput) (*models.CaseWitness, error) {
	if err := caller.require("add witnesses", witnessEditorRoles...); err != nil {
		return nil, err
	}
	c, err := w.GetCase(caller, caseID)
	if err != nil {
		return nil, err
	}
	name := SanitizeText(input.Name)
	if name == "" {
		return nil, validationError("witness name is required")
	}

	witness := &models.CaseWitness{
		CaseID:     c.ID,
		Name:       name,
		NationalID: strings.TrimSpace(input.NationalID),
		Phone:      strings.TrimSpace(input.Phone),
		Notes:      SanitizeText(input.Notes),
		AddedByID:  caller.UserID,
	}
	if err := w.DB.Create(witness).Error; err != nil {
		return nil, fmt.Errorf("failed to add witness: %w", err)
	}
	return witness, nil
}

// AddComplainant attaches another complainant user to a case
func (w *Workflow) AddComplainant(caller Caller, caseID, complainantID string) (*models.CaseComplainant, error) {
	if err := caller.require("add complainants", witnessEditorRoles...); err != nil {
		return nil, err
	}
	c, err := w.GetCase(caller, caseID)
	if err != nil {
		return nil, err
	}
	if err := w.DB.Select("id").First(&models.User{}, "id = ?", complainantID).Error; err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "user")
	}

	cc := &models.CaseComplainant{CaseID: c.ID, ComplainantID: complainantID, Status: models.ComplainantStatusPending}
	if err := w.DB.Create(cc).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateComplainant
		}
		return nil, fmt.Errorf("failed to add complainant: %w", err)
	}
	return cc, nil
}

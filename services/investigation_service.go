package services

import (
	"fmt"
	"strings"
	"time"

	"police_flow_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	investigatorRoles  = []string{models.RoleDetective, models.RoleSergeant}
	suspectStatusRoles = []string{models.RoleDetective, models.RoleSergeant, models.RoleCaptain}
)

// SuspectInput describes a suspect added to a case. UserID links a system identity;
// external suspects carry name, national id and phone instead.
type SuspectInput struct {
	UserID                *string    `json:"user_id"`
	Name                  string     `json:"name"`
	NationalID            string     `json:"national_id"`
	PhoneNumber           string     `json:"phone_number"`
	Notes                 string     `json:"notes"`
	SurveillanceStartDate *time.Time `json:"surveillance_start_date"`
}

// SuspectView is a suspect with its derived investigation figures
type SuspectView struct {
	models.Suspect
	DaysUnderInvestigation int         `json:"days_under_investigation"`
	Rank                   SuspectRank `json:"rank"`
}

// refreshSuspect applies lazy severe-surveillance escalation and persists it when it changes.
// Statuses may be stale between accesses.
func (w *Workflow) refreshSuspect(tx *gorm.DB, s *models.Suspect) error {
	next := Reclassify(s, w.Clock.Now())
	if next == s.Status {
		return nil
	}
	if err := checkTransition("suspect", models.SuspectTransitions, s.Status, next); err != nil {
		return err
	}
	err := tx.Model(&models.Suspect{}).
		Where("id = ? AND status = ?", s.ID, s.Status).
		Update("status", next).Error
	if err != nil {
		return fmt.Errorf("failed to reclassify suspect: %w", err)
	}
	zap.S().Infow("Suspect escalated", "suspect_id", s.ID, "from", s.Status, "to", next)
	s.Status = next
	return nil
}

// SweepSurveillance escalates every suspect whose investigation has outlasted the
// threshold, returning how many moved
func (w *Workflow) SweepSurveillance() (int, error) {
	var suspects []models.Suspect
	err := w.DB.Where("status = ? AND surveillance_start_date IS NOT NULL", models.SuspectStatusUnderInvestigation).
		Find(&suspects).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load suspects under investigation: %w", err)
	}
	moved := 0
	for i := range suspects {
		before := suspects[i].Status
		if err := w.refreshSuspect(w.DB, &suspects[i]); err != nil {
			return moved, err
		}
		if suspects[i].Status != before {
			moved++
		}
	}
	return moved, nil
}

// loadSuspect loads a suspect on a case the caller may see and refreshes it inside tx.
// Suspects of invisible cases are reported as not found.
func (w *Workflow) loadSuspect(tx *gorm.DB, caller Caller, suspectID string) (*models.Suspect, error) {
	var s models.Suspect
	if err := tx.Preload("Case").Preload("User").First(&s, "id = ?", suspectID).Error; err != nil {
		return nil, notFoundOr(err, ErrSuspectNotFound, "suspect")
	}
	if s.Case == nil || !CanViewCase(caller, s.Case) {
		return nil, ErrSuspectNotFound
	}
	if err := w.refreshSuspect(tx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AddSuspect records a person of interest on a case
func (w *Workflow) AddSuspect(caller Caller, caseID string, input SuspectInput) (*models.Suspect, error) {
	if err := caller.require("add suspects", investigatorRoles...); err != nil {
		return nil, err
	}
	c, err := w.GetCase(caller, caseID)
	if err != nil {
		return nil, err
	}

	hasUser := input.UserID != nil && *input.UserID != ""
	input.Name = SanitizeText(input.Name)
	input.NationalID = strings.TrimSpace(input.NationalID)
	if !hasUser && input.Name == "" && input.NationalID == "" {
		return nil, validationError("suspect needs a linked user or a name or national id")
	}
	if hasUser {
		if err := w.DB.Select("id").First(&models.User{}, "id = ?", *input.UserID).Error; err != nil {
			return nil, notFoundOr(err, ErrUserNotFound, "user")
		}
	}

	start := input.SurveillanceStartDate
	if start == nil {
		now := w.Clock.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		start = &today
	}

	s := &models.Suspect{
		CaseID:                c.ID,
		Name:                  input.Name,
		NationalID:            input.NationalID,
		PhoneNumber:           strings.TrimSpace(input.PhoneNumber),
		Notes:                 SanitizeText(input.Notes),
		Status:                models.SuspectStatusUnderInvestigation,
		SurveillanceStartDate: start,
		AddedByID:             caller.UserID,
	}
	if hasUser {
		s.UserID = input.UserID
	}
	s.Status = Reclassify(s, w.Clock.Now())

	if err := w.DB.Create(s).Error; err != nil {
		return nil, fmt.Errorf("failed to add suspect: %w", err)
	}

	w.audit(caller, models.AuditActionCreate, "Suspect", s.ID, s.Name, "Suspect added to case "+c.CaseNumber, nil, s)
	return s, nil
}

// GetSuspect loads a suspect, applying lazy escalation, with its ranking figures
func (w *Workflow) GetSuspect(caller Caller, suspectID string) (*SuspectView, error) {
	s, err := w.loadSuspect(w.DB, caller, suspectID)
	if err != nil {
		return nil, err
	}
	now := w.Clock.Now()
	rank, err := RankSuspect(w.DB, s, now)
	if err != nil {
		return nil, err
	}
	return &SuspectView{Suspect: *s, DaysUnderInvestigation: DaysUnderInvestigation(s, now), Rank: rank}, nil
}

// ListCaseSuspects returns a visible case's suspects in creation order
func (w *Workflow) ListCaseSuspects(caller Caller, caseID string) ([]models.Suspect, error) {
	if _, err := w.GetCase(caller, caseID); err != nil {
		return nil, err
	}
	var suspects []models.Suspect
	if err := w.DB.Where("case_id = ?", caseID).Order("created_at ASC, id ASC").Find(&suspects).Error; err != nil {
		return nil, fmt.Errorf("failed to list suspects: %w", err)
	}
	for i := range suspects {
		if err := w.refreshSuspect(w.DB, &suspects[i]); err != nil {
			return nil, err
		}
	}
	return suspects, nil
}

// UpdateSuspectStatus arrests or clears a suspect. Conviction only follows a Guilty verdict.
func (w *Workflow) UpdateSuspectStatus(caller Caller, suspectID, status string) (*models.Suspect, error) {
	if err := caller.require("change suspect status", suspectStatusRoles...); err != nil {
		return nil, err
	}
	if status != models.SuspectStatusArrested && status != models.SuspectStatusCleared {
		if status == models.SuspectStatusConvicted {
			return nil, workflowError("suspects are convicted only by a Guilty verdict")
		}
		return nil, validationErrorf("invalid suspect status %q", status)
	}

	var (
		s    *models.Suspect
		from string
	)
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if s, err = w.loadSuspect(tx, caller, suspectID); err != nil {
			return err
		}
		from = s.Status
		if err := checkTransition("suspect", models.SuspectTransitions, from, status); err != nil {
			return err
		}
		now := w.Clock.Now()
		updates := map[string]interface{}{"status": status}
		if status == models.SuspectStatusArrested {
			updates["arrest_date"] = now
			s.ArrestDate = &now
		} else {
			updates["cleared_date"] = now
			s.ClearedDate = &now
		}
		result := tx.Model(&models.Suspect{}).Where("id = ? AND status = ?", s.ID, from).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update suspect status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &TransitionError{Entity: "suspect", From: from, To: status}
		}
		s.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionTransition, "Suspect", s.ID, s.DisplayName(), "Suspect status changed",
		map[string]string{"status": from}, map[string]string{"status": s.Status})
	return s, nil
}

// AddGuiltScore records the caller's single 1-10 score for a suspect
func (w *Workflow) AddGuiltScore(caller Caller, suspectID string, score int, justification string) (*models.GuiltScore, error) {
	if err := caller.require("score suspects", investigatorRoles...); err != nil {
		return nil, err
	}
	if score < models.MinGuiltScore || score > models.MaxGuiltScore {
		return nil, ErrInvalidScore
	}
	justification = SanitizeText(justification)
	if justification == "" {
		return nil, validationError("justification is required")
	}

	s, err := w.loadSuspect(w.DB, caller, suspectID)
	if err != nil {
		return nil, err
	}

	gs := &models.GuiltScore{
		SuspectID:     s.ID,
		AssignedByID:  caller.UserID,
		CaseID:        s.CaseID,
		Score:         score,
		Justification: justification,
	}
	if err := w.DB.Create(gs).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateGuiltScore
		}
		return nil, fmt.Errorf("failed to record guilt score: %w", err)
	}

	w.audit(caller, models.AuditActionCreate, "GuiltScore", gs.ID, s.DisplayName(), fmt.Sprintf("Guilt score %d recorded", score), nil, gs)
	return gs, nil
}

// ListGuiltScores returns every score given for a suspect the caller may see
func (w *Workflow) ListGuiltScores(caller Caller, suspectID string) ([]models.GuiltScore, error) {
	if _, err := w.loadSuspect(w.DB, caller, suspectID); err != nil {
		return nil, err
	}
	var scores []models.GuiltScore
	err := w.DB.Where("suspect_id = ?", suspectID).Order("created_at ASC").Find(&scores).Error
	return scores, err
}

// InterrogationInput describes one questioning session
type InterrogationInput struct {
	ConductedAt     *time.Time `json:"conducted_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Transcript      string     `json:"transcript"`
	Notes           string     `json:"notes"`
}

// AddInterrogation records an interrogation of a suspect
func (w *Workflow) AddInterrogation(caller Caller, suspectID string, input InterrogationInput) (*models.Interrogation, error) {
	if err := caller.require("record interrogations", investigatorRoles...); err != nil {
		return nil, err
	}
	if input.DurationMinutes < 0 {
		return nil, validationError("duration cannot be negative")
	}
	s, err := w.loadSuspect(w.DB, caller, suspectID)
	if err != nil {
		return nil, err
	}

	conducted := w.Clock.Now()
	if input.ConductedAt != nil {
		conducted = *input.ConductedAt
	}
	record := &models.Interrogation{
		SuspectID:       s.ID,
		CaseID:          s.CaseID,
		InterrogatorID:  caller.UserID,
		ConductedAt:     conducted,
		DurationMinutes: input.DurationMinutes,
		Transcript:      SanitizeText(input.Transcript),
		Notes:           SanitizeText(input.Notes),
	}
	if err := w.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to record interrogation: %w", err)
	}
	return record, nil
}

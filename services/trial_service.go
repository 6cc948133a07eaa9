package services

import (
	"fmt"
	"time"

	"police_flow_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FineDueDays is how long a convicted suspect has to pay a court fine
const FineDueDays = 30

var trialSchedulerRoles = []string{models.RoleCaptain, models.RolePoliceChief}

// VerdictInput carries a judge's ruling
type VerdictInput struct {
	Verdict               string `json:"verdict"`
	PunishmentTitle       string `json:"punishment_title"`
	PunishmentDescription string `json:"punishment_description"`
	FineAmount            *int64 `json:"fine_amount"`
	Notes                 string `json:"notes"`
}

// VerdictResult is everything a verdict changed
type VerdictResult struct {
	Trial     *models.Trial    `json:"trial"`
	Case      *models.Case     `json:"case"`
	Convicted *models.Suspect  `json:"convicted,omitempty"`
	Fine      *models.BailFine `json:"fine,omitempty"`
}

// GetTrial loads a trial with its case and judge. Trials of cases the caller cannot
// see are reported as not found.
func (w *Workflow) GetTrial(caller Caller, trialID string) (*models.Trial, error) {
	var t models.Trial
	if err := w.DB.Preload("Case").Preload("Judge").First(&t, "id = ?", trialID).Error; err != nil {
		return nil, notFoundOr(err, ErrTrialNotFound, "trial")
	}
	if t.Case == nil || !CanViewCase(caller, t.Case) {
		return nil, ErrTrialNotFound
	}
	return &t, nil
}

// GetCaseTrial loads the trial of a case the caller may see
func (w *Workflow) GetCaseTrial(caller Caller, caseID string) (*models.Trial, error) {
	if _, err := w.GetCase(caller, caseID); err != nil {
		return nil, err
	}
	return w.caseTrial(caseID)
}

func (w *Workflow) caseTrial(caseID string) (*models.Trial, error) {
	var t models.Trial
	if err := w.DB.Preload("Judge").First(&t, "case_id = ?", caseID).Error; err != nil {
		return nil, notFoundOr(err, ErrTrialNotFound, "trial")
	}
	return &t, nil
}

// ScheduleTrial assigns the presiding judge and hearing date of a trial awaiting its verdict
func (w *Workflow) ScheduleTrial(caller Caller, trialID, judgeID string, trialDate *time.Time) (*models.Trial, error) {
	if err := caller.require("schedule trials", trialSchedulerRoles...); err != nil {
		return nil, err
	}

	var t models.Trial
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ?", trialID).Error; err != nil {
			return notFoundOr(err, ErrTrialNotFound, "trial")
		}
		if t.HasVerdict() {
			return ErrTrialComplete
		}
		ok, err := userHasRole(tx, judgeID, models.RoleJudge)
		if err != nil {
			return fmt.Errorf("failed to check role: %w", err)
		}
		if !ok {
			return ErrRoleRequired
		}
		updates := map[string]interface{}{"judge_id": judgeID}
		if trialDate != nil {
			updates["trial_date"] = *trialDate
			t.TrialDate = trialDate
		}
		res := tx.Model(&models.Trial{}).Where("id = ? AND verdict IS NULL", t.ID).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to schedule trial: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrTrialComplete
		}
		t.JudgeID = &judgeID
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionAssign, "Trial", t.ID, "", "Judge assigned", nil, map[string]string{"judge_id": judgeID})
	w.notify(&judgeID, models.NotificationKindCaseUpdate, "Trial Assigned", "You have been assigned to preside over a trial.", strPtr(t.CaseID))
	return &t, nil
}

// RecordVerdict records the assigned judge's single verdict. The case becomes Resolved
// with the verdict date. A Guilty verdict with a positive fine convicts the case's first
// suspect and opens a Pending Fine for them. All of it commits together.
func (w *Workflow) RecordVerdict(caller Caller, trialID string, input VerdictInput) (*VerdictResult, error) {
	if err := caller.require("record verdicts", models.RoleJudge); err != nil {
		return nil, err
	}
	if input.Verdict != models.VerdictGuilty && input.Verdict != models.VerdictNotGuilty {
		return nil, ErrInvalidVerdict
	}
	input.PunishmentTitle = SanitizeText(input.PunishmentTitle)
	input.PunishmentDescription = SanitizeText(input.PunishmentDescription)
	if input.Verdict == models.VerdictGuilty && (input.PunishmentTitle == "" || input.PunishmentDescription == "") {
		return nil, ErrMissingPunishment
	}
	if input.FineAmount != nil && *input.FineAmount < 0 {
		return nil, ErrInvalidAmount
	}
	fine := input.Verdict == models.VerdictGuilty && input.FineAmount != nil && *input.FineAmount > 0

	result := &VerdictResult{}
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		var t models.Trial
		if err := tx.Preload("Case").First(&t, "id = ?", trialID).Error; err != nil {
			return notFoundOr(err, ErrTrialNotFound, "trial")
		}
		if t.JudgeID == nil || *t.JudgeID != caller.UserID {
			return deny("record a verdict for a trial not assigned to you")
		}
		if t.HasVerdict() {
			return ErrTrialComplete
		}
		if err := checkTransition("trial", models.TrialTransitions, t.State(), input.Verdict); err != nil {
			return err
		}
		if t.Case == nil {
			return ErrCaseNotFound
		}
		c := t.Case
		if fine && !models.IsBailFineSeverity(c.Severity) {
			return ErrBailFineSeverity
		}

		now := w.Clock.Now()
		updates := map[string]interface{}{
			"verdict":                input.Verdict,
			"verdict_date":           now,
			"punishment_title":       input.PunishmentTitle,
			"punishment_description": input.PunishmentDescription,
			"notes":                  SanitizeText(input.Notes),
		}
		if input.Verdict == models.VerdictGuilty {
			updates["fine_amount"] = input.FineAmount
		}
		res := tx.Model(&models.Trial{}).Where("id = ? AND verdict IS NULL", t.ID).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to record verdict: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrTrialComplete
		}
		t.Verdict = &input.Verdict
		t.VerdictDate = &now
		t.PunishmentTitle = input.PunishmentTitle
		t.PunishmentDescription = input.PunishmentDescription
		if input.Verdict == models.VerdictGuilty {
			t.FineAmount = input.FineAmount
		}

		err := tx.Model(&models.Case{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
			"status":            models.CaseStatusResolved,
			"resolution_date":   now,
			"status_changed_at": now,
			"status_changed_by": caller.UserID,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to resolve case: %w", err)
		}
		c.Status = models.CaseStatusResolved
		c.ResolutionDate = &now
		result.Case = c
		t.Case = nil
		result.Trial = &t

		if !fine {
			return nil
		}
		suspect, err := firstSuspectByCreationOrder(tx, c.ID)
		if err != nil {
			return err
		}
		if suspect == nil {
			return validationError("case has no suspect to fine")
		}
		if err := convictSuspect(tx, suspect, now); err != nil {
			return err
		}
		result.Convicted = suspect

		due := now.AddDate(0, 0, FineDueDays)
		bf := &models.BailFine{
			SuspectID: suspect.ID,
			CaseID:    c.ID,
			TrialID:   &t.ID,
			Type:      models.BailFineTypeFine,
			Amount:    *input.FineAmount,
			Status:    models.BailFineStatusPending,
			DueDate:   &due,
			SetByID:   strPtr(caller.UserID),
		}
		if err := tx.Create(bf).Error; err != nil {
			return fmt.Errorf("failed to create fine: %w", err)
		}
		result.Fine = bf
		return nil
	})
	if err != nil {
		return nil, err
	}

	t, c := result.Trial, result.Case
	w.audit(caller, models.AuditActionVerdict, "Trial", t.ID, c.CaseNumber, "Verdict: "+input.Verdict,
		map[string]string{"verdict": models.TrialStateAwaitingVerdict}, map[string]string{"verdict": input.Verdict})
	if result.Convicted != nil {
		zap.S().Infow("Suspect convicted", "suspect_id", result.Convicted.ID, "case_id", c.ID)
	}
	w.notify(c.AssignedDetectiveID, models.NotificationKindCaseUpdate, "Verdict Recorded",
		fmt.Sprintf("Case %s: %s.", c.CaseNumber, input.Verdict), strPtr(c.ID))
	if result.Fine != nil && result.Convicted != nil && result.Convicted.UserID != nil {
		w.notify(result.Convicted.UserID, models.NotificationKindPaymentUpdate, "Fine Issued",
			fmt.Sprintf("A fine of %d IRR was issued for case %s.", result.Fine.Amount, c.CaseNumber), strPtr(c.ID))
	}
	return result, nil
}

// firstSuspectByCreationOrder picks the suspect a verdict's fine applies to: the earliest
// added suspect of the case that has not been cleared.
func firstSuspectByCreationOrder(tx *gorm.DB, caseID string) (*models.Suspect, error) {
	var suspects []models.Suspect
	err := tx.Where("case_id = ? AND status <> ?", caseID, models.SuspectStatusCleared).
		Order("created_at ASC, id ASC").
		Limit(1).
		Find(&suspects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load suspects: %w", err)
	}
	if len(suspects) == 0 {
		return nil, nil
	}
	return &suspects[0], nil
}

// convictSuspect moves a suspect to Convicted, arresting it first when still at large
func convictSuspect(tx *gorm.DB, s *models.Suspect, at time.Time) error {
	from := s.Status
	updates := map[string]interface{}{
		"status":         models.SuspectStatusConvicted,
		"convicted_date": at,
	}
	switch from {
	case models.SuspectStatusConvicted:
		return nil
	case models.SuspectStatusUnderInvestigation, models.SuspectStatusUnderSevereSurveillance:
		updates["arrest_date"] = at
		s.ArrestDate = &at
	case models.SuspectStatusArrested:
	default:
		return ErrSuspectNotConvictable
	}

	res := tx.Model(&models.Suspect{}).Where("id = ? AND status = ?", s.ID, from).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to convict suspect: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &TransitionError{Entity: "suspect", From: from, To: models.SuspectStatusConvicted}
	}
	s.Status = models.SuspectStatusConvicted
	s.ConvictedDate = &at
	return nil
}

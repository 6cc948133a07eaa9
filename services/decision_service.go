package services

import (
	"fmt"

	"police_flow_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DecisionResult is a captain decision and the trial it produced, if any
type DecisionResult struct {
	Decision *models.CaptainDecision `json:"decision"`
	Trial    *models.Trial           `json:"trial,omitempty"`
}

// CreateCaptainDecision records a captain's arrest ruling. Decisions on Critical cases
// wait for the Police Chief; an effective approval opens the case's trial.
func (w *Workflow) CreateCaptainDecision(caller Caller, suspectID, decision, comments string) (*DecisionResult, error) {
	if err := caller.require("record captain decisions", models.RoleCaptain); err != nil {
		return nil, err
	}
	if !models.IsValidDecision(decision) {
		return nil, ErrInvalidDecision
	}

	result := &DecisionResult{}
	var c *models.Case
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		s, err := w.loadSuspect(tx, caller, suspectID)
		if err != nil {
			return err
		}
		if s.Case == nil {
			return ErrCaseNotFound
		}
		c = s.Case
		if c.Status == models.CaseStatusPending {
			return ErrCaseAwaitingApproval
		}
		if s.Status == models.SuspectStatusCleared || s.Status == models.SuspectStatusConvicted {
			return ErrSuspectClosed
		}

		d := &models.CaptainDecision{
			SuspectID:             s.ID,
			CaseID:                c.ID,
			Decision:              decision,
			Comments:              SanitizeText(comments),
			DecidedByID:           caller.UserID,
			DecidedAt:             w.Clock.Now(),
			RequiresChiefApproval: c.Severity == models.SeverityCritical,
		}
		if err := tx.Create(d).Error; err != nil {
			return fmt.Errorf("failed to record decision: %w", err)
		}
		result.Decision = d

		if d.IsApproved() {
			trial, err := ensureTrial(tx, c.ID, d.ID)
			if err != nil {
				return err
			}
			result.Trial = trial
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d := result.Decision
	w.audit(caller, models.AuditActionCreate, "CaptainDecision", d.ID, c.CaseNumber, "Captain decision: "+d.Decision, nil, d)
	w.notify(c.AssignedDetectiveID, models.NotificationKindCaseUpdate, "Captain Decision",
		fmt.Sprintf("Captain decision on case %s: %s.", c.CaseNumber, d.Decision), strPtr(c.ID))
	if d.RequiresChiefApproval {
		w.notifyRole(models.RolePoliceChief, models.NotificationKindCaseUpdate, "Approval Required",
			fmt.Sprintf("Critical case %s has a captain decision awaiting your approval.", c.CaseNumber), strPtr(c.ID))
	}
	return result, nil
}

// ChiefApproveDecision records the Police Chief's one-time ruling on a decision that requires it
func (w *Workflow) ChiefApproveDecision(caller Caller, decisionID string, approve bool, comments string) (*DecisionResult, error) {
	if err := caller.require("approve captain decisions", models.RolePoliceChief); err != nil {
		return nil, err
	}

	result := &DecisionResult{}
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		var d models.CaptainDecision
		if err := tx.First(&d, "id = ?", decisionID).Error; err != nil {
			return notFoundOr(err, ErrDecisionNotFound, "decision")
		}
		if !d.RequiresChiefApproval {
			return ErrChiefApprovalNotRequired
		}
		if d.ChiefApproval != nil {
			return ErrChiefAlreadyDecided
		}
		target := models.ChiefApprovalRejected
		if approve {
			target = models.ChiefApprovalApproved
		}
		if err := checkTransition("chief approval", models.ChiefApprovalTransitions, d.ChiefApprovalState(), target); err != nil {
			return err
		}

		now := w.Clock.Now()
		comments = SanitizeText(comments)
		res := tx.Model(&models.CaptainDecision{}).
			Where("id = ? AND chief_approval IS NULL", d.ID).
			Updates(map[string]interface{}{
				"chief_approval":      approve,
				"chief_approver_id":   caller.UserID,
				"chief_approval_date": now,
				"chief_comments":      comments,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to record chief approval: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrChiefAlreadyDecided
		}
		d.ChiefApproval = &approve
		d.ChiefApproverID = strPtr(caller.UserID)
		d.ChiefApprovalDate = &now
		d.ChiefComments = comments
		result.Decision = &d

		if d.IsApproved() {
			trial, err := ensureTrial(tx, d.CaseID, d.ID)
			if err != nil {
				return err
			}
			result.Trial = trial
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d := result.Decision
	action, verb := models.AuditActionReject, "rejected"
	if approve {
		action, verb = models.AuditActionApprove, "approved"
	}
	w.audit(caller, action, "CaptainDecision", d.ID, d.Decision, "Chief ruling recorded",
		map[string]string{"chief_approval": models.ChiefApprovalPending},
		map[string]string{"chief_approval": d.ChiefApprovalState()})
	w.notify(&d.DecidedByID, models.NotificationKindCaseUpdate, "Chief Approval",
		"The Police Chief "+verb+" your decision.", strPtr(d.CaseID))
	return result, nil
}

// GetDecision loads a captain decision on a case the caller may see
func (w *Workflow) GetDecision(caller Caller, decisionID string) (*models.CaptainDecision, error) {
	var d models.CaptainDecision
	if err := w.DB.First(&d, "id = ?", decisionID).Error; err != nil {
		return nil, notFoundOr(err, ErrDecisionNotFound, "decision")
	}
	var c models.Case
	if err := w.DB.First(&c, "id = ?", d.CaseID).Error; err != nil {
		return nil, notFoundOr(err, ErrDecisionNotFound, "case")
	}
	if !CanViewCase(caller, &c) {
		return nil, ErrDecisionNotFound
	}
	return &d, nil
}

// ListSuspectDecisions returns the decisions on a visible suspect, oldest first
func (w *Workflow) ListSuspectDecisions(caller Caller, suspectID string) ([]models.CaptainDecision, error) {
	if _, err := w.loadSuspect(w.DB, caller, suspectID); err != nil {
		return nil, err
	}
	var decisions []models.CaptainDecision
	err := w.DB.Where("suspect_id = ?", suspectID).Order("decided_at ASC").Find(&decisions).Error
	return decisions, err
}

// ensureTrial returns the case's trial, creating it when none exists. The unique case_id
// index makes concurrent approvals converge on a single row.
func ensureTrial(tx *gorm.DB, caseID, decisionID string) (*models.Trial, error) {
	trial := &models.Trial{CaseID: caseID, DecisionID: &decisionID}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "case_id"}},
		DoNothing: true,
	}).Create(trial).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create trial: %w", err)
	}

	var existing models.Trial
	if err := tx.First(&existing, "case_id = ?", caseID).Error; err != nil {
		return nil, notFoundOr(err, ErrTrialNotFound, "trial")
	}
	return &existing, nil
}

// notifyRole notifies every active holder of role
func (w *Workflow) notifyRole(role, kind, title, message string, caseID *string) {
	var userIDs []string
	err := w.DB.Model(&models.UserRole{}).
		Where("role = ? AND is_active = ?", role, true).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		zap.S().Warnw("Failed to load role holders for notification", "role", role, "kind", kind, "error", err)
		return
	}
	for i := range userIDs {
		w.notify(&userIDs[i], kind, title, message, caseID)
	}
}

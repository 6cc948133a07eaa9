package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"police_flow_app_go/models"

	"gorm.io/gorm"
)

const (
	rewardCodePrefix   = "RWD-"
	rewardCodeLength   = 12
	rewardCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	rewardCodeAttempts = 5
)

var (
	rewardOfficerRoles   = []string{models.RolePoliceOfficer, models.RolePatrolOfficer}
	rewardDetectiveRoles = []string{models.RoleDetective}
	rewardLookupRoles    = []string{
		models.RolePoliceChief, models.RoleCaptain, models.RoleSergeant, models.RoleDetective,
		models.RolePoliceOfficer, models.RolePatrolOfficer,
	}
)

// GenerateRewardCode returns a fresh claim code, e.g. RWD-7K2Q9XAB3MZD
func GenerateRewardCode() (string, error) {
	var sb strings.Builder
	sb.WriteString(rewardCodePrefix)
	size := big.NewInt(int64(len(rewardCodeAlphabet)))
	for i := 0; i < rewardCodeLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to generate reward code: %w", err)
		}
		sb.WriteByte(rewardCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// SubmitRewardInfo files a citizen tip, optionally tied to a case
func (w *Workflow) SubmitRewardInfo(caller Caller, caseID *string, information string) (*models.RewardSubmission, error) {
	information = SanitizeText(information)
	if information == "" {
		return nil, validationError("information is required")
	}
	if caseID != nil && *caseID == "" {
		caseID = nil
	}
	if caseID != nil {
		if err := w.DB.Select("id").First(&models.Case{}, "id = ?", *caseID).Error; err != nil {
			return nil, notFoundOr(err, ErrCaseNotFound, "case")
		}
	}

	sub := &models.RewardSubmission{
		SubmittedByID: caller.UserID,
		CaseID:        caseID,
		Information:   information,
		Status:        models.RewardSubmissionStatusPending,
	}
	if err := w.DB.Create(sub).Error; err != nil {
		return nil, fmt.Errorf("failed to submit information: %w", err)
	}
	w.audit(caller, models.AuditActionCreate, "RewardSubmission", sub.ID, "", "Reward information submitted", nil, nil)
	return sub, nil
}

// moveSubmission applies one review step to a submission inside tx
func moveSubmission(tx *gorm.DB, sub *models.RewardSubmission, to string, updates map[string]interface{}) error {
	from := sub.Status
	if err := checkTransition("reward submission", models.RewardSubmissionTransitions, from, to); err != nil {
		return err
	}
	updates["status"] = to
	res := tx.Model(&models.RewardSubmission{}).Where("id = ? AND status = ?", sub.ID, from).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update submission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &TransitionError{Entity: "reward submission", From: from, To: to}
	}
	sub.Status = to
	return nil
}

// OfficerReviewSubmission screens a Pending tip: forward to a detective or reject
func (w *Workflow) OfficerReviewSubmission(caller Caller, submissionID string, approve bool, comments string) (*models.RewardSubmission, error) {
	if err := caller.require("screen reward submissions", rewardOfficerRoles...); err != nil {
		return nil, err
	}

	to := models.RewardSubmissionStatusRejected
	if approve {
		to = models.RewardSubmissionStatusUnderReview
	}
	var sub models.RewardSubmission
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", submissionID).Error; err != nil {
			return notFoundOr(err, ErrRewardSubmissionNotFound, "reward submission")
		}
		comments = SanitizeText(comments)
		sub.ReviewedByOfficerID = strPtr(caller.UserID)
		sub.ReviewComments = comments
		return moveSubmission(tx, &sub, to, map[string]interface{}{
			"reviewed_by_officer_id": caller.UserID,
			"review_comments":        comments,
		})
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionTransition, "RewardSubmission", sub.ID, "", "Officer review",
		map[string]string{"status": models.RewardSubmissionStatusPending}, map[string]string{"status": sub.Status})
	w.notify(&sub.SubmittedByID, models.NotificationKindRewardUpdate, "Submission Reviewed",
		"Your information is now "+sub.Status+".", sub.CaseID)
	return &sub, nil
}

// DetectiveReviewSubmission decides a tip under review. Approval issues the reward with
// a unique claim code in the same transaction.
func (w *Workflow) DetectiveReviewSubmission(caller Caller, submissionID string, approve bool, comments string) (*models.RewardSubmission, *models.Reward, error) {
	if err := caller.require("decide reward submissions", rewardDetectiveRoles...); err != nil {
		return nil, nil, err
	}

	to := models.RewardSubmissionStatusRejected
	if approve {
		to = models.RewardSubmissionStatusApproved
	}
	var (
		sub    models.RewardSubmission
		reward *models.Reward
	)
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", submissionID).Error; err != nil {
			return notFoundOr(err, ErrRewardSubmissionNotFound, "reward submission")
		}
		comments = SanitizeText(comments)
		sub.ReviewedByDetectiveID = strPtr(caller.UserID)
		sub.ReviewComments = comments
		err := moveSubmission(tx, &sub, to, map[string]interface{}{
			"reviewed_by_detective_id": caller.UserID,
			"review_comments":          comments,
		})
		if err != nil || !approve {
			return err
		}

		amount, err := w.rewardAmountForCase(tx, sub.CaseID)
		if err != nil {
			return err
		}
		code, err := uniqueRewardCode(tx)
		if err != nil {
			return err
		}
		reward = &models.Reward{
			SubmissionID: sub.ID,
			CaseID:       sub.CaseID,
			RecipientID:  sub.SubmittedByID,
			Amount:       amount,
			Code:         code,
			Status:       models.RewardStatusPending,
			CreatedByID:  caller.UserID,
		}
		if err := tx.Create(reward).Error; err != nil {
			if isUniqueViolation(err) {
				return workflowError("a reward was already issued for this submission")
			}
			return fmt.Errorf("failed to issue reward: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	w.audit(caller, models.AuditActionTransition, "RewardSubmission", sub.ID, "", "Detective review",
		map[string]string{"status": models.RewardSubmissionStatusUnderReview}, map[string]string{"status": sub.Status})
	message := "Your information was not approved for a reward."
	if reward != nil {
		w.audit(caller, models.AuditActionCreate, "Reward", reward.ID, "", fmt.Sprintf("Reward of %d IRR issued", reward.Amount), nil,
			map[string]interface{}{"amount": reward.Amount, "recipient_id": reward.RecipientID})
		message = fmt.Sprintf("Your information was approved. Reward: %d IRR. Claim code: %s", reward.Amount, reward.Code)
	}
	w.notify(&sub.SubmittedByID, models.NotificationKindRewardUpdate, "Reward Decision", message, sub.CaseID)
	return &sub, reward, nil
}

// rewardAmountForCase is the highest reward amount among the case's suspects, zero when
// the tip names no case or the case has no suspects
func (w *Workflow) rewardAmountForCase(tx *gorm.DB, caseID *string) (int64, error) {
	if caseID == nil {
		return 0, nil
	}
	var suspects []models.Suspect
	if err := tx.Where("case_id = ?", *caseID).Find(&suspects).Error; err != nil {
		return 0, fmt.Errorf("failed to load suspects: %w", err)
	}
	now := w.Clock.Now()
	var best int64
	for i := range suspects {
		rank, err := RankSuspect(tx, &suspects[i], now)
		if err != nil {
			return 0, err
		}
		if rank.RewardAmount > best {
			best = rank.RewardAmount
		}
	}
	return best, nil
}

func uniqueRewardCode(tx *gorm.DB) (string, error) {
	for i := 0; i < rewardCodeAttempts; i++ {
		code, err := GenerateRewardCode()
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.Model(&models.Reward{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check reward code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique reward code")
}

// RewardLookup is what station staff see when a citizen presents a code
type RewardLookup struct {
	Reward        models.Reward `json:"reward"`
	RecipientName string        `json:"recipient_name"`
}

// LookupReward finds a reward by its code and the recipient's national id
func (w *Workflow) LookupReward(caller Caller, code, nationalID string) (*RewardLookup, error) {
	if err := caller.require("look up rewards", rewardLookupRoles...); err != nil {
		return nil, err
	}
	nationalID = strings.TrimSpace(nationalID)
	if code == "" || nationalID == "" {
		return nil, validationError("code and national id are required")
	}

	var reward models.Reward
	err := w.DB.Preload("Recipient").
		Select("rewards.*").
		Joins("JOIN users ON users.id = rewards.recipient_id").
		Where("rewards.code = ? AND users.national_id = ?", code, nationalID).
		First(&reward).Error
	if err != nil {
		return nil, notFoundOr(err, ErrRewardNotFound, "reward")
	}
	return &RewardLookup{Reward: reward, RecipientName: reward.Recipient.Name}, nil
}

// ClaimReward pays out a Pending reward. The code is the sole credential and must match
// exactly; a mismatch fails without side effects.
func (w *Workflow) ClaimReward(caller Caller, rewardID, code, location string) (*models.Reward, error) {
	var reward models.Reward
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reward, "id = ?", rewardID).Error; err != nil {
			return notFoundOr(err, ErrRewardNotFound, "reward")
		}
		if code == "" || reward.Code != code {
			return ErrInvalidRewardCode
		}
		if reward.Status == models.RewardStatusClaimed {
			return ErrRewardAlreadyClaimed
		}
		if err := checkTransition("reward", models.RewardTransitions, reward.Status, models.RewardStatusClaimed); err != nil {
			return err
		}

		now := w.Clock.Now()
		location = SanitizeText(location)
		updates := map[string]interface{}{
			"status":              models.RewardStatusClaimed,
			"claimed_date":        now,
			"claimed_at_location": location,
		}
		if caller.HasAny(rewardLookupRoles...) {
			updates["claimed_by_officer"] = caller.UserID
			reward.ClaimedByOfficer = strPtr(caller.UserID)
		}
		res := tx.Model(&models.Reward{}).
			Where("id = ? AND status = ? AND code = ?", reward.ID, models.RewardStatusPending, code).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to claim reward: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRewardAlreadyClaimed
		}
		reward.Status = models.RewardStatusClaimed
		reward.ClaimedDate = &now
		reward.ClaimedAtLocation = location
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionClaim, "Reward", reward.ID, "", "Reward claimed",
		map[string]string{"status": models.RewardStatusPending}, map[string]string{"status": reward.Status})
	w.notify(&reward.RecipientID, models.NotificationKindRewardUpdate, "Reward Claimed",
		fmt.Sprintf("Your reward of %d IRR has been paid out.", reward.Amount), reward.CaseID)
	return &reward, nil
}

// RewardSubmissionView is a submission as its reader may see it. ClaimCode is filled
// only for the reward's recipient.
type RewardSubmissionView struct {
	models.RewardSubmission
	ClaimCode string `json:"claim_code,omitempty"`
}

// GetRewardSubmission loads a submission with its reward for its submitter or police
// staff. Anyone else gets not found.
func (w *Workflow) GetRewardSubmission(caller Caller, submissionID string) (*RewardSubmissionView, error) {
	var sub models.RewardSubmission
	if err := w.DB.Preload("Reward").First(&sub, "id = ?", submissionID).Error; err != nil {
		return nil, notFoundOr(err, ErrRewardSubmissionNotFound, "reward submission")
	}
	if sub.SubmittedByID != caller.UserID && !caller.HasAny(rewardLookupRoles...) {
		return nil, ErrRewardSubmissionNotFound
	}
	view := &RewardSubmissionView{RewardSubmission: sub}
	if sub.Reward != nil && sub.Reward.RecipientID == caller.UserID {
		view.ClaimCode = sub.Reward.Code
	}
	return view, nil
}

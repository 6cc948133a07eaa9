package services

import (
	"fmt"

	"police_flow_app_go/models"

	"gorm.io/gorm"
)

// Intern and officer review actions
const (
	InternActionReturn   = "return"
	InternActionForward  = "forward"
	OfficerActionApprove = "approve"
	OfficerActionReject  = "reject"
)

var (
	internRoles  = []string{models.RoleCadet}
	officerRoles = []string{models.RolePoliceOfficer, models.RolePatrolOfficer}
)

// SubmitComplaint records a new complaint from the caller
func (w *Workflow) SubmitComplaint(caller Caller, title, description string) (*models.Complaint, error) {
	title = SanitizeText(title)
	description = SanitizeText(description)
	if title == "" || description == "" {
		return nil, validationError("title and description are required")
	}

	complaint := &models.Complaint{
		Title:           title,
		Description:     description,
		SubmittedByID:   caller.UserID,
		SubmissionCount: 1,
		Status:          models.ComplaintStatusPending,
	}
	if err := w.DB.Create(complaint).Error; err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	w.audit(caller, models.AuditActionCreate, "Complaint", complaint.ID, complaint.Title, "Complaint submitted", nil, complaint)
	return complaint, nil
}

// loadComplaintForReview loads a complaint inside tx and rejects locked ones
func loadComplaintForReview(tx *gorm.DB, complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := tx.First(&complaint, "id = ?", complaintID).Error; err != nil {
		return nil, notFoundOr(err, ErrComplaintNotFound, "complaint")
	}
	if complaint.IsLocked() {
		return nil, ErrComplaintLocked
	}
	return &complaint, nil
}

// saveComplaintTransition writes the complaint only if it is still in fromStatus,
// then appends the review record
func saveComplaintTransition(tx *gorm.DB, complaint *models.Complaint, fromStatus string, review *models.ComplaintReview) error {
	result := tx.Model(&models.Complaint{}).
		Where("id = ? AND status = ? AND submission_count < ?", complaint.ID, fromStatus, models.MaxComplaintSubmissions).
		Select("title", "description", "status", "submission_count", "reviewed_by_intern_id", "reviewed_by_officer_id", "review_comments", "case_id").
		Updates(complaint)
	if result.Error != nil {
		return fmt.Errorf("failed to update complaint: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &TransitionError{Entity: "complaint", From: fromStatus, To: complaint.Status}
	}

	review.ComplaintID = complaint.ID
	review.FromStatus = fromStatus
	review.ToStatus = complaint.Status
	if err := tx.Create(review).Error; err != nil {
		return fmt.Errorf("failed to record complaint review: %w", err)
	}
	return nil
}

// InternReviewComplaint lets a cadet return a Pending complaint to its submitter, counting a
// strike, or forward it to an officer
func (w *Workflow) InternReviewComplaint(caller Caller, complaintID, action, comments string) (*models.Complaint, error) {
	if err := caller.require("review complaints as intern", internRoles...); err != nil {
		return nil, err
	}
	if action != InternActionReturn && action != InternActionForward {
		return nil, validationError("action must be 'return' or 'forward'")
	}
	comments = SanitizeText(comments)

	var complaint *models.Complaint
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		complaint, err = loadComplaintForReview(tx, complaintID)
		if err != nil {
			return err
		}
		if complaint.Status != models.ComplaintStatusPending {
			return ErrComplaintNotPending
		}

		from := complaint.Status
		review := &models.ComplaintReview{ReviewerID: strPtr(caller.UserID), Comments: comments, ReviewedAt: w.Clock.Now()}
		complaint.ReviewedByInternID = strPtr(caller.UserID)
		complaint.ReviewComments = comments

		if action == InternActionReturn {
			review.Action = models.ComplaintActionReturned
			complaint.IncrementSubmissionCount()
		} else {
			review.Action = models.ComplaintActionForwarded
			complaint.Status = models.ComplaintStatusUnderReview
		}
		if err := checkTransition("complaint", models.ComplaintTransitions, from, complaint.Status); err != nil {
			return err
		}
		return saveComplaintTransition(tx, complaint, from, review)
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionTransition, "Complaint", complaint.ID, complaint.Title, "Intern review: "+action, nil,
		map[string]interface{}{"status": complaint.Status, "submission_count": complaint.SubmissionCount})

	switch {
	case complaint.Status == models.ComplaintStatusPermanentlyRejected:
		w.notify(&complaint.SubmittedByID, models.NotificationKindComplaintReview, "Complaint Permanently Rejected",
			fmt.Sprintf("Your complaint %q was returned %d times and can no longer be resubmitted.", complaint.Title, complaint.SubmissionCount-1), nil)
	case action == InternActionReturn:
		w.notify(&complaint.SubmittedByID, models.NotificationKindComplaintReview, "Complaint Returned",
			fmt.Sprintf("Your complaint %q needs corrections: %s", complaint.Title, comments), nil)
	}
	return complaint, nil
}

// OfficerReviewComplaint lets an officer approve an Under Review complaint, opening a case
// for it, or send it back to the intern queue. Approval creates the case, attaches the
// submitter as complainant, links the complaint and marks it Approved in one transaction.
func (w *Workflow) OfficerReviewComplaint(caller Caller, complaintID, action, comments string, details *CaseInput) (*models.Complaint, error) {
	if err := caller.require("review complaints as officer", officerRoles...); err != nil {
		return nil, err
	}
	if action != OfficerActionApprove && action != OfficerActionReject {
		return nil, validationError("action must be 'approve' or 'reject'")
	}
	comments = SanitizeText(comments)

	var (
		complaint *models.Complaint
		created   *models.Case
	)
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		complaint, err = loadComplaintForReview(tx, complaintID)
		if err != nil {
			return err
		}
		if complaint.Status != models.ComplaintStatusUnderReview {
			return ErrComplaintNotUnderReview
		}

		from := complaint.Status
		review := &models.ComplaintReview{ReviewerID: strPtr(caller.UserID), Comments: comments, ReviewedAt: w.Clock.Now()}
		complaint.ReviewedByOfficerID = strPtr(caller.UserID)
		complaint.ReviewComments = comments

		if action == OfficerActionReject {
			review.Action = models.ComplaintActionRejected
			complaint.Status = models.ComplaintStatusPending
			return saveComplaintTransition(tx, complaint, from, review)
		}

		input := CaseInput{Title: complaint.Title, Description: complaint.Description}
		if details != nil {
			input.Severity = details.Severity
			input.IncidentDate = details.IncidentDate
			input.IncidentTime = details.IncidentTime
			input.IncidentLocation = details.IncidentLocation
		}
		created, err = w.createCase(tx, caller, input, models.CaseStatusOpen)
		if err != nil {
			return err
		}
		complainant := &models.CaseComplainant{
			CaseID:        created.ID,
			ComplainantID: complaint.SubmittedByID,
			Status:        models.ComplainantStatusApproved,
		}
		if err := tx.Create(complainant).Error; err != nil {
			return fmt.Errorf("failed to attach complainant: %w", err)
		}

		review.Action = models.ComplaintActionApproved
		complaint.Status = models.ComplaintStatusApproved
		complaint.CaseID = &created.ID
		if err := checkTransition("complaint", models.ComplaintTransitions, from, complaint.Status); err != nil {
			return err
		}
		return saveComplaintTransition(tx, complaint, from, review)
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionTransition, "Complaint", complaint.ID, complaint.Title, "Officer review: "+action, nil,
		map[string]interface{}{"status": complaint.Status, "case_id": complaint.CaseID})
	if created != nil {
		complaint.Case = created
		w.audit(caller, models.AuditActionCreate, "Case", created.ID, created.CaseNumber, "Case created from complaint "+complaint.ID, nil, created)
		w.notify(&complaint.SubmittedByID, models.NotificationKindComplaintReview, "Complaint Approved",
			fmt.Sprintf("Your complaint %q was approved and case %s has been opened.", complaint.Title, created.CaseNumber), &created.ID)
	}
	return complaint, nil
}

// ResubmitComplaint lets the original submitter send a corrected complaint back to the
// intern queue. The submission count is kept.
func (w *Workflow) ResubmitComplaint(caller Caller, complaintID, title, description string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&complaint, "id = ?", complaintID).Error; err != nil {
			return notFoundOr(err, ErrComplaintNotFound, "complaint")
		}
		if complaint.SubmittedByID != caller.UserID {
			return deny("resubmit another user's complaint")
		}
		if !complaint.CanBeResubmitted() || complaint.CaseID != nil {
			return ErrComplaintNotResubmitable
		}
		if complaint.Status != models.ComplaintStatusPending {
			return ErrComplaintNotPending
		}

		if t := SanitizeText(title); t != "" {
			complaint.Title = t
		}
		if d := SanitizeText(description); d != "" {
			complaint.Description = d
		}
		complaint.ReviewComments = ""

		from := complaint.Status
		complaint.Status = models.ComplaintStatusPending
		if err := checkTransition("complaint", models.ComplaintTransitions, from, complaint.Status); err != nil {
			return err
		}
		review := &models.ComplaintReview{
			ReviewerID: strPtr(caller.UserID),
			Action:     models.ComplaintActionResubmitted,
			ReviewedAt: w.Clock.Now(),
		}
		return saveComplaintTransition(tx, &complaint, from, review)
	})
	if err != nil {
		return nil, err
	}

	w.audit(caller, models.AuditActionTransition, "Complaint", complaint.ID, complaint.Title, "Complaint resubmitted", nil,
		map[string]interface{}{"submission_count": complaint.SubmissionCount})
	return &complaint, nil
}

// GetComplaint returns a complaint to its submitter or to police staff, with its review log
func (w *Workflow) GetComplaint(caller Caller, complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := w.DB.Preload("Reviews", func(db *gorm.DB) *gorm.DB {
		return db.Order("reviewed_at ASC, created_at ASC")
	}).First(&complaint, "id = ?", complaintID).Error
	if err != nil {
		return nil, notFoundOr(err, ErrComplaintNotFound, "complaint")
	}
	if complaint.SubmittedByID != caller.UserID && !caller.HasAny(policeStaffRoles...) {
		return nil, ErrComplaintNotFound
	}
	return &complaint, nil
}

// ListComplaintQueue returns the complaints awaiting the caller's review stage
func (w *Workflow) ListComplaintQueue(caller Caller) ([]models.Complaint, error) {
	var statuses []string
	if caller.HasAny(internRoles...) {
		statuses = append(statuses, models.ComplaintStatusPending)
	}
	if caller.HasAny(officerRoles...) {
		statuses = append(statuses, models.ComplaintStatusUnderReview)
	}
	query := w.DB.Model(&models.Complaint{})
	if len(statuses) == 0 {
		query = query.Where("submitted_by_id = ?", caller.UserID)
	} else {
		query = query.Where("status IN ?", statuses)
	}

	var complaints []models.Complaint
	if err := query.Order("created_at DESC").Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error classes. Every error returned by a workflow operation matches exactly one
// of them under errors.Is.
var (
	ErrWorkflowViolation   = errors.New("workflow violation")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failure")
	ErrExternalService     = errors.New("external service failure")
)

// Error is a workflow failure of a known class, optionally carrying its cause.
type Error struct {
	Class error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Class, e.Cause}
	}
	return []error{e.Class}
}

func workflowError(msg string) *Error   { return &Error{Class: ErrWorkflowViolation, Msg: msg} }
func notFoundError(msg string) *Error   { return &Error{Class: ErrNotFound, Msg: msg} }
func validationError(msg string) *Error { return &Error{Class: ErrValidation, Msg: msg} }

func validationErrorf(format string, args ...interface{}) *Error {
	return validationError(fmt.Sprintf(format, args...))
}

// deny builds an AuthorizationDenied error naming the refused action
func deny(action string) *Error {
	return &Error{Class: ErrAuthorizationDenied, Msg: "not permitted to " + action}
}

// Not found
var (
	ErrUserNotFound             = notFoundError("user not found")
	ErrCaseNotFound             = notFoundError("case not found")
	ErrComplaintNotFound        = notFoundError("complaint not found")
	ErrSuspectNotFound          = notFoundError("suspect not found")
	ErrDecisionNotFound         = notFoundError("captain decision not found")
	ErrTrialNotFound            = notFoundError("trial not found")
	ErrEvidenceNotFound         = notFoundError("evidence not found")
	ErrRewardSubmissionNotFound = notFoundError("reward submission not found")
	ErrRewardNotFound           = notFoundError("reward not found")
	ErrBailFineNotFound         = notFoundError("bail/fine not found")
	ErrTransactionNotFound      = notFoundError("payment transaction not found")
	ErrNotificationNotFound     = notFoundError("notification not found")
	ErrBoardNotFound            = notFoundError("detective board not found")
)

// Workflow violations
var (
	ErrComplaintLocked          = workflowError("complaint is permanently rejected or already linked to a case")
	ErrComplaintNotPending      = workflowError("complaint is not in Pending status")
	ErrComplaintNotUnderReview  = workflowError("complaint is not in Under Review status")
	ErrComplaintNotResubmitable = workflowError("complaint cannot be resubmitted (permanently rejected or max submissions reached)")
	ErrCaseNotPending           = workflowError("case is not pending")
	ErrCaseAwaitingApproval     = workflowError("case must be approved before its status can change")
	ErrDuplicateGuiltScore      = workflowError("suspect has already been scored by this officer")
	ErrChiefApprovalNotRequired = workflowError("this decision does not require Police Chief approval")
	ErrChiefAlreadyDecided      = workflowError("this decision has already been approved/rejected")
	ErrTrialComplete            = workflowError("trial already has a verdict")
	ErrTrialExists              = workflowError("case already has a trial")
	ErrSuspectNotConvictable    = workflowError("suspect has been cleared and cannot be convicted")
	ErrSuspectClosed            = workflowError("suspect has already been cleared or convicted")
	ErrEvidenceAlreadyVerified  = workflowError("evidence has already been verified")
	ErrInvalidRewardCode        = workflowError("invalid reward code")
	ErrRewardAlreadyClaimed     = workflowError("reward has already been claimed")
	ErrBailFineAlreadyPaid      = workflowError("bail/fine has already been paid")
	ErrPaymentNotPending        = workflowError("payment transaction is no longer pending")
	ErrDuplicateComplainant     = workflowError("complainant is already attached to this case")
	ErrBoardOwnedByOther        = workflowError("case board belongs to another detective")
)

// Validation failures
var (
	ErrInvalidScore        = validationError("score must be between 1 and 10")
	ErrInvalidSeverity     = validationError("invalid severity")
	ErrInvalidCaseStatus   = validationError("invalid case status")
	ErrInvalidDecision     = validationError("invalid captain decision")
	ErrInvalidVerdict      = validationError("verdict must be Guilty or Not Guilty")
	ErrMissingPunishment   = validationError("punishment title and description are required for a Guilty verdict")
	ErrBailFineSeverity    = validationError("bail and fines only apply to Level 2 & 3 crimes")
	ErrInvalidAmount       = validationError("amount must be positive")
	ErrInvalidReviewAction = validationError("invalid review action")
	ErrInvalidEvidenceType = validationError("invalid evidence type")
	ErrInvalidConnection   = validationError("invalid evidence connection type")
	ErrSelfConnection      = validationError("evidence cannot be connected to itself")
	ErrInvalidBoardLayout  = validationError("board layout must be a JSON object")
	ErrRoleRequired        = validationError("target user does not hold the required role")
)

// TransitionError reports a move that the entity's transition table does not list
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrWorkflowViolation
}

// isUniqueViolation reports whether err is a storage uniqueness failure
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFoundOr maps gorm.ErrRecordNotFound to the entity's NotFound error and wraps anything else
func notFoundOr(err error, notFound error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

package services

import (
	"police_flow_app_go/models"
	"police_flow_app_go/services/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Workflow runs the case workflow state machines. Each operation takes the caller
// explicitly, checks its roles, and performs its writes in one transaction; events
// (notifications, audit entries) are emitted only after the transaction commits.
type Workflow struct {
	DB       *gorm.DB
	Clock    Clock
	Notifier Notifier
	Gateway  payment.Gateway

	// PaymentCallbackURL is where the gateway returns the payer
	PaymentCallbackURL string

	// AuditSync writes audit entries before returning instead of in the background
	AuditSync bool
}

// NewWorkflow creates a workflow over db. A nil clock uses the wall clock and a nil
// notifier drops notifications.
func NewWorkflow(db *gorm.DB, clock Clock, notifier Notifier) *Workflow {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Workflow{DB: db, Clock: clock, Notifier: notifier}
}

// WithGateway sets the payment gateway and callback URL used for bail/fine settlement
func (w *Workflow) WithGateway(gateway payment.Gateway, callbackURL string) *Workflow {
	w.Gateway = gateway
	w.PaymentCallbackURL = callbackURL
	return w
}

// checkTransition validates a move against an entity's transition table
func checkTransition(entity string, table models.Transitions, from, to string) error {
	if !table.Allows(from, to) {
		return &TransitionError{Entity: entity, From: from, To: to}
	}
	return nil
}

// audit records a completed operation for the caller
func (w *Workflow) audit(caller Caller, action models.AuditAction, resourceType, resourceID, resourceName, description string, oldValues, newValues interface{}) {
	ctx := AuditContext{
		UserID:    caller.UserID,
		UserName:  caller.Name,
		UserRoles: caller.RoleList(),
	}
	entry := AuditEntry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ResourceName: resourceName,
		Description:  description,
		Old:          oldValues,
		New:          newValues,
	}
	if w.AuditSync {
		if err := writeAuditLog(w.DB, ctx, entry); err != nil {
			zap.S().Errorw("Failed to create audit log", "resource_type", resourceType, "resource_id", resourceID, "error", err)
		}
		return
	}
	LogAuditEvent(w.DB, ctx, entry)
}

// notify forwards an event to the notification sink, skipping empty recipients
func (w *Workflow) notify(userID *string, kind, title, message string, caseID *string) {
	if userID == nil || *userID == "" {
		return
	}
	w.Notifier.Notify(*userID, kind, title, message, caseID)
}

func strPtr(s string) *string {
	return &s
}

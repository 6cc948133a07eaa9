package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"police_flow_app_go/models"
	"police_flow_app_go/services/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// externalError wraps a gateway failure in the ExternalServiceFailure class
func externalError(err error) error {
	msg := "payment gateway unavailable"
	if payment.IsTimeout(err) {
		msg = "payment gateway timed out"
	}
	return &Error{Class: ErrExternalService, Msg: msg, Cause: err}
}

// IsRetryable reports whether the failed operation may simply be repeated
func IsRetryable(err error) bool {
	return errors.Is(err, ErrExternalService)
}

// BailFineInput describes a bail or fine set by a sergeant
type BailFineInput struct {
	Type    string     `json:"type"`
	Amount  int64      `json:"amount"`
	DueDate *time.Time `json:"due_date"`
}

// CreateBailFine sets bail or a fine on a suspect of a Level 2 or Level 3 case
func (w *Workflow) CreateBailFine(caller Caller, suspectID string, input BailFineInput) (*models.BailFine, error) {
	if err := caller.require("set bail or fines", models.RoleSergeant); err != nil {
		return nil, err
	}
	if input.Type != models.BailFineTypeBail && input.Type != models.BailFineTypeFine {
		return nil, validationErrorf("type must be %s or %s", models.BailFineTypeBail, models.BailFineTypeFine)
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	s, err := w.loadSuspect(w.DB, caller, suspectID)
	if err != nil {
		return nil, err
	}
	if s.Case == nil {
		return nil, ErrCaseNotFound
	}
	if !models.IsBailFineSeverity(s.Case.Severity) {
		return nil, ErrBailFineSeverity
	}

	bf := &models.BailFine{
		SuspectID: s.ID,
		CaseID:    s.CaseID,
		Type:      input.Type,
		Amount:    input.Amount,
		Status:    models.BailFineStatusPending,
		DueDate:   input.DueDate,
		SetByID:   strPtr(caller.UserID),
	}
	if err := w.DB.Create(bf).Error; err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", input.Type, err)
	}

	w.audit(caller, models.AuditActionCreate, "BailFine", bf.ID, s.DisplayName(), fmt.Sprintf("%s of %d IRR set", bf.Type, bf.Amount), nil, bf)
	w.notify(s.UserID, models.NotificationKindPaymentUpdate, bf.Type+" Set",
		fmt.Sprintf("A %s of %d IRR was set for case %s.", bf.Type, bf.Amount, s.Case.CaseNumber), strPtr(s.CaseID))
	return bf, nil
}

// GetBailFine loads a bail/fine with its transactions. It is visible to the suspect it
// was set on, to anyone who paid towards it, and to callers who may see its case.
func (w *Workflow) GetBailFine(caller Caller, bailFineID string) (*models.BailFine, error) {
	bf, err := w.loadBailFine(bailFineID)
	if err != nil {
		return nil, err
	}
	if bf.Suspect != nil && bf.Suspect.UserID != nil && *bf.Suspect.UserID == caller.UserID {
		return bf, nil
	}
	for _, txn := range bf.Transactions {
		if txn.PayerID == caller.UserID {
			return bf, nil
		}
	}
	var c models.Case
	if err := w.DB.First(&c, "id = ?", bf.CaseID).Error; err != nil {
		return nil, notFoundOr(err, ErrBailFineNotFound, "case")
	}
	if !CanViewCase(caller, &c) {
		return nil, ErrBailFineNotFound
	}
	return bf, nil
}

func (w *Workflow) loadBailFine(bailFineID string) (*models.BailFine, error) {
	var bf models.BailFine
	err := w.DB.Preload("Suspect").
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&bf, "id = ?", bailFineID).Error
	if err != nil {
		return nil, notFoundOr(err, ErrBailFineNotFound, "bail/fine")
	}
	return &bf, nil
}

func (w *Workflow) gateway() (payment.Gateway, error) {
	if w.Gateway == nil {
		return nil, &Error{Class: ErrExternalService, Msg: "no payment gateway configured"}
	}
	return w.Gateway, nil
}

// RequestPayment starts a gateway payment for an unpaid bail/fine. Nothing is stored
// when the gateway refuses or does not answer.
func (w *Workflow) RequestPayment(ctx context.Context, caller Caller, bailFineID string) (*models.PaymentTransaction, error) {
	gw, err := w.gateway()
	if err != nil {
		return nil, err
	}

	var bf models.BailFine
	if err := w.DB.First(&bf, "id = ?", bailFineID).Error; err != nil {
		return nil, notFoundOr(err, ErrBailFineNotFound, "bail/fine")
	}
	if bf.Status == models.BailFineStatusPaid {
		return nil, ErrBailFineAlreadyPaid
	}

	res, err := gw.Initiate(ctx, payment.InitiateRequest{
		Amount:      bf.Amount,
		Currency:    models.DefaultCurrency,
		CallbackURL: w.PaymentCallbackURL,
		OrderID:     bf.ID,
		Description: fmt.Sprintf("%s payment for case %s", bf.Type, bf.CaseID),
	})
	if err != nil {
		zap.S().Warnw("Payment request failed", "bail_fine_id", bf.ID, "provider", gw.Name(), "error", err)
		return nil, externalError(err)
	}

	txn := &models.PaymentTransaction{
		BailFineID:      bf.ID,
		PayerID:         caller.UserID,
		Provider:        gw.Name(),
		TransactionID:   res.TrackingID,
		Amount:          bf.Amount,
		Currency:        models.DefaultCurrency,
		Status:          models.PaymentStatusPending,
		RedirectURL:     res.RedirectURL,
		GatewayResponse: toJSON(res.Raw),
	}
	if err := w.DB.Create(txn).Error; err != nil {
		return nil, fmt.Errorf("failed to store payment transaction: %w", err)
	}

	w.audit(caller, models.AuditActionPayment, "PaymentTransaction", txn.ID, txn.TransactionID, "Payment requested", nil,
		map[string]interface{}{"bail_fine_id": bf.ID, "amount": bf.Amount, "provider": gw.Name()})
	return txn, nil
}

// PaymentResult is the state of a transaction and its bail/fine after verification
type PaymentResult struct {
	Transaction *models.PaymentTransaction `json:"transaction"`
	BailFine    *models.BailFine           `json:"bail_fine"`
	// Applied is set only for the call that moved the bail/fine to Paid
	Applied bool `json:"applied"`
}

func (w *Workflow) loadTransaction(db *gorm.DB, trackingID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := db.First(&txn, "transaction_id = ?", trackingID).Error; err != nil {
		return nil, notFoundOr(err, ErrTransactionNotFound, "payment transaction")
	}
	return &txn, nil
}

// VerifyPayment confirms a payment with the gateway and settles the bail/fine.
// It is idempotent: repeated calls, and success reported as already verified,
// settle the bail/fine exactly once. A gateway failure leaves everything unchanged.
func (w *Workflow) VerifyPayment(ctx context.Context, caller Caller, trackingID string) (*PaymentResult, error) {
	txn, err := w.loadTransaction(w.DB, trackingID)
	if err != nil {
		return nil, err
	}
	if txn.Status == models.PaymentStatusSuccess {
		bf, err := w.loadBailFine(txn.BailFineID)
		if err != nil {
			return nil, err
		}
		return &PaymentResult{Transaction: txn, BailFine: bf}, nil
	}
	if txn.Status != models.PaymentStatusPending {
		return nil, ErrPaymentNotPending
	}

	gw, err := w.gateway()
	if err != nil {
		return nil, err
	}
	outcome, err := gw.Verify(ctx, trackingID)
	if err != nil {
		zap.S().Warnw("Payment verification failed", "tracking_id", trackingID, "provider", gw.Name(), "error", err)
		return nil, externalError(err)
	}

	if !outcome.Outcome.Settled() {
		return w.failTransaction(caller, txn, outcome.Raw)
	}
	return w.settleTransaction(caller, txn, outcome.Raw)
}

// settleTransaction marks the transaction successful and the bail/fine paid, once
func (w *Workflow) settleTransaction(caller Caller, txn *models.PaymentTransaction, raw map[string]interface{}) (*PaymentResult, error) {
	result := &PaymentResult{}
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		now := w.Clock.Now()
		res := tx.Model(&models.PaymentTransaction{}).
			Where("id = ? AND status = ?", txn.ID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":           models.PaymentStatusSuccess,
				"completed_date":   now,
				"gateway_response": toJSON(raw),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to settle transaction: %w", res.Error)
		}

		var bf models.BailFine
		if err := tx.First(&bf, "id = ?", txn.BailFineID).Error; err != nil {
			return notFoundOr(err, ErrBailFineNotFound, "bail/fine")
		}
		if bf.Status != models.BailFineStatusPaid {
			if err := checkTransition("bail/fine", models.BailFineTransitions, bf.Status, models.BailFineStatusPaid); err != nil {
				return err
			}
			res = tx.Model(&models.BailFine{}).
				Where("id = ? AND status <> ?", bf.ID, models.BailFineStatusPaid).
				Updates(map[string]interface{}{
					"status":                 models.BailFineStatusPaid,
					"paid_date":              now,
					"payment_transaction_id": txn.ID,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to mark bail/fine paid: %w", res.Error)
			}
			if res.RowsAffected > 0 {
				result.Applied = true
				bf.Status = models.BailFineStatusPaid
				bf.PaidDate = &now
				bf.PaymentTransactionID = &txn.ID
			}
		}
		result.BailFine = &bf

		reloaded, err := w.loadTransaction(tx, txn.TransactionID)
		if err != nil {
			return err
		}
		result.Transaction = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Applied {
		bf := result.BailFine
		w.audit(caller, models.AuditActionPayment, "BailFine", bf.ID, txn.TransactionID, bf.Type+" paid",
			map[string]string{"status": models.BailFineStatusPending}, map[string]string{"status": models.BailFineStatusPaid})
		w.notify(&txn.PayerID, models.NotificationKindPaymentUpdate, "Payment Confirmed",
			fmt.Sprintf("Your payment of %d IRR was confirmed.", txn.Amount), strPtr(bf.CaseID))
	}
	return result, nil
}

// failTransaction records an explicit gateway failure; the bail/fine is untouched
func (w *Workflow) failTransaction(caller Caller, txn *models.PaymentTransaction, raw map[string]interface{}) (*PaymentResult, error) {
	now := w.Clock.Now()
	res := w.DB.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", txn.ID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":           models.PaymentStatusFailed,
			"completed_date":   now,
			"gateway_response": toJSON(raw),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to record failed payment: %w", res.Error)
	}

	reloaded, err := w.loadTransaction(w.DB, txn.TransactionID)
	if err != nil {
		return nil, err
	}
	bf, err := w.loadBailFine(txn.BailFineID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected > 0 {
		w.audit(caller, models.AuditActionPayment, "PaymentTransaction", txn.ID, txn.TransactionID, "Payment failed",
			map[string]string{"status": models.PaymentStatusPending}, map[string]string{"status": models.PaymentStatusFailed})
	}
	return &PaymentResult{Transaction: reloaded, BailFine: bf}, nil
}

// HandleCallback processes the payer's return from the gateway. A reported success is
// always confirmed with Verify before anything is settled.
func (w *Workflow) HandleCallback(ctx context.Context, trackingID string, success bool) (*PaymentResult, error) {
	txn, err := w.loadTransaction(w.DB, trackingID)
	if err != nil {
		return nil, err
	}
	caller := Caller{UserID: txn.PayerID, Name: "payment callback"}
	if success {
		return w.VerifyPayment(ctx, caller, trackingID)
	}
	if txn.Status != models.PaymentStatusPending {
		bf, err := w.loadBailFine(txn.BailFineID)
		if err != nil {
			return nil, err
		}
		return &PaymentResult{Transaction: txn, BailFine: bf}, nil
	}
	return w.failTransaction(caller, txn, map[string]interface{}{"callback_success": false})
}

// InquirePayment returns the gateway's view of a transaction without changing anything
func (w *Workflow) InquirePayment(ctx context.Context, trackingID string) (map[string]interface{}, error) {
	if _, err := w.loadTransaction(w.DB, trackingID); err != nil {
		return nil, err
	}
	gw, err := w.gateway()
	if err != nil {
		return nil, err
	}
	raw, err := gw.Inquire(ctx, trackingID)
	if err != nil {
		return nil, externalError(err)
	}
	return raw, nil
}

// MarkOverdueFines moves Pending bail/fines past their due date to Overdue
func (w *Workflow) MarkOverdueFines(now time.Time) (int64, error) {
	res := w.DB.Model(&models.BailFine{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", models.BailFineStatusPending, now).
		Update("status", models.BailFineStatusOverdue)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark overdue fines: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		zap.S().Infow("Marked bail/fines overdue", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

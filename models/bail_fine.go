package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Bail/fine type constants
const (
	BailFineTypeBail = "Bail"
	BailFineTypeFine = "Fine"
)

// Bail/fine status constants
const (
	BailFineStatusPending = "Pending"
	BailFineStatusPaid    = "Paid"
	BailFineStatusOverdue = "Overdue"
)

// BailFineTransitions: Paid is terminal; overdue fines remain payable
var BailFineTransitions = Transitions{
	BailFineStatusPending: {BailFineStatusPaid, BailFineStatusOverdue},
	BailFineStatusOverdue: {BailFineStatusPaid},
}

// IsBailFineSeverity reports whether bail and fines apply to the case severity
func IsBailFineSeverity(severity string) bool {
	return severity == SeverityLevel2 || severity == SeverityLevel3
}

// BailFine is a payable amount owed by a suspect
type BailFine struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SuspectID string     `gorm:"type:uuid;not null;index" json:"suspect_id"`
	CaseID    string     `gorm:"type:uuid;not null;index" json:"case_id"`
	TrialID   *string    `gorm:"type:uuid;uniqueIndex" json:"trial_id,omitempty"`
	Type      string     `gorm:"size:10;not null" json:"type"`
	Amount    int64      `gorm:"not null" json:"amount"`
	Status    string     `gorm:"size:10;not null;default:Pending;index" json:"status"`
	DueDate   *time.Time `gorm:"index" json:"due_date,omitempty"`
	PaidDate  *time.Time `json:"paid_date,omitempty"`
	SetByID   *string    `gorm:"type:uuid" json:"set_by_id,omitempty"`

	// Transaction that settled the fine
	PaymentTransactionID *string `gorm:"type:uuid" json:"payment_transaction_id,omitempty"`

	Suspect      *Suspect             `gorm:"foreignKey:SuspectID" json:"suspect,omitempty"`
	Transactions []PaymentTransaction `gorm:"foreignKey:BailFineID" json:"transactions,omitempty"`
}

func (b *BailFine) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

func (BailFine) TableName() string {
	return "bail_fines"
}

// Payment transaction status constants
const (
	PaymentStatusPending  = "Pending"
	PaymentStatusSuccess  = "Success"
	PaymentStatusFailed   = "Failed"
	PaymentStatusRefunded = "Refunded"
)

// PaymentTransactions is the gateway attempt state machine
var PaymentTransactions = Transitions{
	PaymentStatusPending: {PaymentStatusSuccess, PaymentStatusFailed},
	PaymentStatusSuccess: {PaymentStatusRefunded},
}

// DefaultCurrency is the currency of every ledger amount
const DefaultCurrency = "IRR"

// PaymentTransaction is one attempt to settle a BailFine through a gateway
type PaymentTransaction struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BailFineID string `gorm:"type:uuid;not null;index" json:"bail_fine_id"`
	PayerID    string `gorm:"type:uuid;index" json:"payer_id"`
	Provider   string `gorm:"size:20;not null" json:"provider"`
	// Gateway tracking id
	TransactionID string `gorm:"size:100;not null;uniqueIndex" json:"transaction_id"`
	Amount        int64  `gorm:"not null" json:"amount"`
	Currency      string `gorm:"size:3;not null;default:IRR" json:"currency"`
	Status        string `gorm:"size:10;not null;default:Pending;index" json:"status"`
	RedirectURL   string `gorm:"size:500" json:"redirect_url,omitempty"`

	GatewayResponse datatypes.JSON `json:"gateway_response,omitempty"`
	CompletedDate   *time.Time     `json:"completed_date,omitempty"`
}

func (p *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentRecordStatus is the closed set of payment states, mirroring
// gateway webhook events.
type PaymentRecordStatus string

const (
	PaymentStatusPending   PaymentRecordStatus = "Pending"
	PaymentStatusCompleted PaymentRecordStatus = "Completed"
	PaymentStatusFailed    PaymentRecordStatus = "Failed"
	PaymentStatusRefunded  PaymentRecordStatus = "Refunded"
)

// Terminal reports whether the status accepts no further webhook updates
// other than a refund.
func (s PaymentRecordStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

// PaymentMethod is the closed set of accepted payment instruments.
type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "Credit Card"
	MethodDebitCard    PaymentMethod = "Debit Card"
	MethodPaypal       PaymentMethod = "PayPal"
	MethodBankTransfer PaymentMethod = "Bank Transfer"
)

// Payment is the one-per-order payment document. TransactionID is the
// gateway's payment-intent id.
type Payment struct {
	ID            uuid.UUID           `json:"id" bson:"_id"`
	OrderID       uuid.UUID           `json:"order_id" bson:"order_id"`
	UserID        uuid.UUID           `json:"user_id" bson:"user_id"`
	Amount        float64             `json:"amount" bson:"amount"`
	Method        PaymentMethod       `json:"method" bson:"method"`
	Status        PaymentRecordStatus `json:"status" bson:"status"`
	TransactionID string              `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	RefundReason  string              `json:"refund_reason,omitempty" bson:"refund_reason,omitempty"`
	RefundedAt    *time.Time          `json:"refunded_at,omitempty" bson:"refunded_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" bson:"updated_at"`
}

// ProcessPaymentRequest initiates a gateway charge for an order.
type ProcessPaymentRequest struct {
	OrderID      uuid.UUID     `json:"order_id" binding:"required"`
	Method       PaymentMethod `json:"method" binding:"required,oneof='Credit Card' 'Debit Card' 'PayPal' 'Bank Transfer'"`
	PaymentToken string        `json:"payment_token" binding:"required"`
}

// RefundPaymentRequest requests a full refund of an order's payment.
type RefundPaymentRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Reason  string    `json:"reason" binding:"max=500"`
}

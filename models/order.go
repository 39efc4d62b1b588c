package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the closed set of order states.
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCanceled   OrderStatus = "Canceled"
)

// forwardSequence is the forward progression of an order. Canceled sits
// outside the sequence and is reachable from any non-delivered state.
var forwardSequence = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	if s == OrderCanceled {
		return true
	}
	_, ok := forwardSequence[s]
	return ok
}

// CanTransition reports whether an order may move from s to next.
// Forward moves (index >= current) are allowed; reverting is not.
// Canceled is reachable from anything except Delivered, and is terminal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == OrderCanceled {
		return false
	}
	if next == OrderCanceled {
		return s != OrderDelivered
	}
	return forwardSequence[next] >= forwardSequence[s]
}

// PaymentStatus tracks the payment side of an order.
type PaymentStatus string

const (
	PaymentUnpaid         PaymentStatus = "Unpaid"
	PaymentPaid           PaymentStatus = "Paid"
	PaymentFailedStatus   PaymentStatus = "Failed"
	PaymentRefundedStatus PaymentStatus = "Refunded"
)

// OrderItem is an immutable line snapshot frozen at purchase time.
// All future order views render from this copy, independent of later
// product edits.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id" bson:"product_id"`
	Quantity  int64     `json:"quantity" bson:"quantity"`
	Price     float64   `json:"price" bson:"price"`
	Name      string    `json:"name" bson:"name"`
	VendorID  uuid.UUID `json:"vendor_id" bson:"vendor_id"`
}

// Order is a placed order document. Orders are never deleted.
type Order struct {
	ID              uuid.UUID     `json:"id" bson:"_id"`
	UserID          uuid.UUID     `json:"user_id" bson:"user_id"`
	Items           []OrderItem   `json:"items" bson:"items"`
	ShippingAddress Address       `json:"shipping_address" bson:"shipping_address"`
	PaymentMethod   string        `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	Status          OrderStatus   `json:"status" bson:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status" bson:"payment_status"`
	TotalAmount     float64       `json:"total_amount" bson:"total_amount"`
	TaxAmount       float64       `json:"tax_amount" bson:"tax_amount"`
	ShippingAmount  float64       `json:"shipping_amount" bson:"shipping_amount"`
	IsPaid          bool          `json:"is_paid" bson:"is_paid"`
	PaidAt          *time.Time    `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	TransactionID   string        `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	IsDelivered     bool          `json:"is_delivered" bson:"is_delivered"`
	DeliveredAt     *time.Time    `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// GrandTotal derives the amount actually charged.
func (o *Order) GrandTotal() float64 {
	return o.TotalAmount + o.TaxAmount + o.ShippingAmount
}

// HasVendor reports whether vendorID owns at least one line of the order.
func (o *Order) HasVendor(vendorID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.VendorID == vendorID {
			return true
		}
	}
	return false
}

// PlaceOrderRequest is the payload for converting the cart into an order.
type PlaceOrderRequest struct {
	ShippingAddress Address `json:"shipping_address" binding:"required"`
	PaymentMethod   string  `json:"payment_method"`
}

// UpdateOrderStatusRequest sets a new order status.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"shopswift-api/apperrors"
	"shopswift-api/models"
	"shopswift-api/repository"
)

// PaymentService charges orders through the gateway and keeps payment and
// order documents in sync, both synchronously and via webhook.
type PaymentService interface {
	Process(ctx context.Context, req *models.ProcessPaymentRequest, requester *models.User) (*models.Payment, *apperrors.AppError)
	GetByOrder(ctx context.Context, orderID uuid.UUID, requester *models.User) (*models.Payment, *apperrors.AppError)
	Refund(ctx context.Context, req *models.RefundPaymentRequest, requester *models.User) (*models.Payment, *apperrors.AppError)
	HandleWebhook(ctx context.Context, event stripe.Event)
}

type paymentServiceImpl struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	gateway  PaymentGateway
	logger   *zap.Logger
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	gateway PaymentGateway,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		payments: payments,
		orders:   orders,
		gateway:  gateway,
		logger:   logger,
	}
}

// Process charges the order's grand total against the gateway. The order
// owner is the only one who can pay, each order gets at most one live
// payment, and the charge amount always derives from the order document,
// never from the request.
func (s *paymentServiceImpl) Process(ctx context.Context, req *models.ProcessPaymentRequest, requester *models.User) (*models.Payment, *apperrors.AppError) {
	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Internal(err)
	}
	if order.UserID != requester.ID {
		return nil, apperrors.Forbidden("Unauthorized to pay for this order")
	}
	if order.Status == models.OrderCanceled {
		return nil, apperrors.BadRequest("Cannot pay for a canceled order")
	}
	if order.PaymentStatus == models.PaymentPaid {
		return nil, apperrors.Conflict("Order is already paid")
	}

	existing, err := s.payments.FindByOrder(ctx, req.OrderID)
	if err == nil && (existing.Status == models.PaymentStatusCompleted || existing.Status == models.PaymentStatusPending) {
		return nil, apperrors.Conflict("A payment for this order already exists")
	}
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.Internal(err)
	}

	amountCents := int64(math.Round(order.GrandTotal() * 100))
	intent, gatewayErr := s.gateway.CreatePaymentIntent(amountCents, "usd", req.PaymentToken, map[string]string{
		"order_id": order.ID.String(),
		"user_id":  requester.ID.String(),
	})

	payment := &models.Payment{
		ID:      uuid.New(),
		OrderID: order.ID,
		UserID:  requester.ID,
		Amount:  order.GrandTotal(),
		Method:  req.Method,
		Status:  models.PaymentStatusPending,
	}

	if gatewayErr != nil {
		payment.Status = models.PaymentStatusFailed
		if createErr := s.payments.Create(ctx, payment); createErr != nil {
			s.logger.Error("Failed to record declined payment",
				zap.String("order_id", order.ID.String()),
				zap.Error(createErr),
			)
		}
		s.logger.Warn("Payment declined by gateway",
			zap.String("order_id", order.ID.String()),
			zap.Error(gatewayErr),
		)
		return nil, apperrors.BadRequest("Payment was declined")
	}

	payment.TransactionID = intent.ID
	if intent.Status == stripe.PaymentIntentStatusSucceeded {
		payment.Status = models.PaymentStatusCompleted
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("A payment for this order already exists")
		}
		return nil, apperrors.Internal(err)
	}

	if payment.Status == models.PaymentStatusCompleted {
		s.markOrderPaid(ctx, order)
	}

	s.logger.Info("Payment processed",
		zap.String("order_id", order.ID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("status", string(payment.Status)),
	)
	return payment, nil
}

// GetByOrder returns the payment for an order to its payer or an admin.
func (s *paymentServiceImpl) GetByOrder(ctx context.Context, orderID uuid.UUID, requester *models.User) (*models.Payment, *apperrors.AppError) {
	payment, err := s.payments.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Payment not found")
		}
		return nil, apperrors.Internal(err)
	}
	if payment.UserID != requester.ID && !requester.Role.CanAdminister() {
		return nil, apperrors.Forbidden("Unauthorized to view this payment")
	}
	return payment, nil
}

// Refund reverses a completed payment in full and cancels the order.
func (s *paymentServiceImpl) Refund(ctx context.Context, req *models.RefundPaymentRequest, requester *models.User) (*models.Payment, *apperrors.AppError) {
	payment, err := s.payments.FindByOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Payment not found")
		}
		return nil, apperrors.Internal(err)
	}
	if payment.UserID != requester.ID && !requester.Role.CanAdminister() {
		return nil, apperrors.Forbidden("Unauthorized to refund this payment")
	}
	if payment.Status == models.PaymentStatusRefunded {
		return nil, apperrors.BadRequest("Payment has already been refunded")
	}
	if payment.Status != models.PaymentStatusCompleted {
		return nil, apperrors.BadRequest("Only completed payments can be refunded")
	}

	if _, err := s.gateway.RefundPayment(payment.TransactionID, req.Reason); err != nil {
		return nil, apperrors.Wrap(502, "Refund was rejected by the payment provider", err)
	}

	now := time.Now().UTC()
	updates := bson.M{
		"status":      models.PaymentStatusRefunded,
		"refunded_at": now,
	}
	if req.Reason != "" {
		updates["refund_reason"] = req.Reason
	}
	if err := s.payments.Update(ctx, payment.ID, updates); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.orders.Update(ctx, payment.OrderID, bson.M{
		"payment_status": models.PaymentRefundedStatus,
		"status":         models.OrderCanceled,
	}); err != nil {
		s.logger.Error("Failed to cancel order after refund",
			zap.String("order_id", payment.OrderID.String()),
			zap.Error(err),
		)
	}

	payment.Status = models.PaymentStatusRefunded
	payment.RefundReason = req.Reason
	payment.RefundedAt = &now

	s.logger.Info("Payment refunded",
		zap.String("order_id", payment.OrderID.String()),
		zap.String("transaction_id", payment.TransactionID),
	)
	return payment, nil
}

// HandleWebhook dispatches a verified gateway event. Handlers log and
// swallow their own errors: the gateway retries on non-2xx, and a replay
// of an already-applied event must stay harmless.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, event stripe.Event) {
	s.logger.Info("Processing gateway webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	switch event.Type {
	case "payment_intent.succeeded":
		s.handleIntentOutcome(ctx, event, models.PaymentStatusCompleted)
	case "payment_intent.payment_failed":
		s.handleIntentOutcome(ctx, event, models.PaymentStatusFailed)
	case "charge.refunded":
		s.handleChargeRefunded(ctx, event)
	default:
		s.logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}
}

func (s *paymentServiceImpl) handleIntentOutcome(ctx context.Context, event stripe.Event, status models.PaymentRecordStatus) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		s.logger.Error("Failed to unmarshal payment intent", zap.Error(err))
		return
	}

	payment, err := s.payments.FindByTransaction(ctx, pi.ID)
	if err != nil {
		s.logger.Error("Payment not found for intent",
			zap.String("payment_intent_id", pi.ID),
			zap.Error(err),
		)
		return
	}

	if payment.Status.Terminal() {
		s.logger.Info("Skipping duplicate payment webhook",
			zap.String("payment_id", payment.ID.String()),
			zap.String("status", string(payment.Status)),
		)
		return
	}

	if err := s.payments.Update(ctx, payment.ID, bson.M{"status": status}); err != nil {
		s.logger.Error("Failed to update payment from webhook",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}

	order, err := s.orders.FindByID(ctx, payment.OrderID)
	if err != nil {
		s.logger.Error("Order not found for payment webhook",
			zap.String("order_id", payment.OrderID.String()),
			zap.Error(err),
		)
		return
	}

	switch status {
	case models.PaymentStatusCompleted:
		s.markOrderPaid(ctx, order)
	case models.PaymentStatusFailed:
		updates := bson.M{"payment_status": models.PaymentFailedStatus}
		if order.Status.CanTransition(models.OrderCanceled) {
			updates["status"] = models.OrderCanceled
		}
		if err := s.orders.Update(ctx, order.ID, updates); err != nil {
			s.logger.Error("Failed to mark order failed",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *paymentServiceImpl) handleChargeRefunded(ctx context.Context, event stripe.Event) {
	var ch stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
		s.logger.Error("Failed to unmarshal charge", zap.Error(err))
		return
	}
	if ch.PaymentIntent == nil {
		s.logger.Warn("Refunded charge carries no payment intent", zap.String("charge_id", ch.ID))
		return
	}

	payment, err := s.payments.FindByTransaction(ctx, ch.PaymentIntent.ID)
	if err != nil {
		s.logger.Error("Payment not found for refunded charge",
			zap.String("payment_intent_id", ch.PaymentIntent.ID),
			zap.Error(err),
		)
		return
	}

	if payment.Status == models.PaymentStatusRefunded {
		s.logger.Info("Skipping duplicate refund webhook",
			zap.String("payment_id", payment.ID.String()),
		)
		return
	}

	now := time.Now().UTC()
	if err := s.payments.Update(ctx, payment.ID, bson.M{
		"status":      models.PaymentStatusRefunded,
		"refunded_at": now,
	}); err != nil {
		s.logger.Error("Failed to mark payment refunded",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return
	}

	if err := s.orders.Update(ctx, payment.OrderID, bson.M{
		"payment_status": models.PaymentRefundedStatus,
		"status":         models.OrderCanceled,
	}); err != nil {
		s.logger.Error("Failed to cancel order after refund webhook",
			zap.String("order_id", payment.OrderID.String()),
			zap.Error(err),
		)
	}
}

func (s *paymentServiceImpl) markOrderPaid(ctx context.Context, order *models.Order) {
	now := time.Now().UTC()
	updates := bson.M{
		"payment_status": models.PaymentPaid,
		"is_paid":        true,
		"paid_at":        now,
	}
	if order.Status == models.OrderPending {
		updates["status"] = models.OrderProcessing
	}
	if err := s.orders.Update(ctx, order.ID, updates); err != nil {
		s.logger.Error("Failed to mark order paid",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

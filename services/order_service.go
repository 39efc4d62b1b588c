package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"shopswift-api/apperrors"
	"shopswift-api/models"
	"shopswift-api/repository"
	"shopswift-api/utils"
)

// OrderService converts carts into immutable orders and drives the order
// state machine.
type OrderService interface {
	Place(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest) (*models.Order, *apperrors.AppError)
	GetByID(ctx context.Context, orderID uuid.UUID, requester *models.User) (*models.Order, *apperrors.AppError)
	ListForUser(ctx context.Context, userID uuid.UUID, features *utils.QueryFeatures) ([]*models.Order, int64, *apperrors.AppError)
	ListAll(ctx context.Context, features *utils.QueryFeatures) ([]*models.Order, int64, *apperrors.AppError)
	ListForVendor(ctx context.Context, vendorID uuid.UUID, features *utils.QueryFeatures) ([]*models.Order, int64, *apperrors.AppError)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, requester *models.User) (*models.Order, *apperrors.AppError)
	MarkPaid(ctx context.Context, orderID uuid.UUID, transactionID string, requester *models.User) (*models.Order, *apperrors.AppError)
}

// Pricing holds the order amount configuration.
type Pricing struct {
	TaxRate               float64
	FreeShippingThreshold float64
	StandardShipping      float64
}

type orderServiceImpl struct {
	orders   repository.OrderRepository
	carts    repository.CartRepository
	products repository.ProductRepository
	pricing  Pricing
	logger   *zap.Logger
}

// NewOrderService creates an OrderService.
func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	products repository.ProductRepository,
	pricing Pricing,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:   orders,
		carts:    carts,
		products: products,
		pricing:  pricing,
		logger:   logger,
	}
}

// Place converts the user's cart into an order.
//
// Every line is re-validated against the live product before anything is
// written: the first missing product or stock shortfall aborts the whole
// placement, so no partial orders exist. Line prices come from the cart's
// snapshot, which is the price the buyer saw. Stock is then decremented
// with a conditional compare-and-swap per product; if any decrement loses
// the race after the order document is persisted, the already-applied
// decrements are compensated and the order removed.
func (s *orderServiceImpl) Place(ctx context.Context, userID uuid.UUID, req *models.PlaceOrderRequest) (*models.Order, *apperrors.AppError) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.BadRequest("Cart is empty")
		}
		return nil, apperrors.Internal(err)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.BadRequest("Cart is empty")
	}

	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	var totalAmount float64

	for _, line := range cart.Items {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperrors.BadRequest(fmt.Sprintf("Product %q is no longer available", line.Name))
			}
			return nil, apperrors.Internal(err)
		}
		if product.Stock < line.Quantity {
			return nil, apperrors.BadRequest(fmt.Sprintf(
				"Insufficient stock for %s. Available: %d", product.Name, product.Stock,
			))
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Name:      line.Name,
			VendorID:  product.VendorID,
		})
		totalAmount += float64(line.Quantity) * line.Price
	}

	shipping := s.pricing.StandardShipping
	if totalAmount >= s.pricing.FreeShippingThreshold {
		shipping = 0
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           orderItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          models.OrderPending,
		PaymentStatus:   models.PaymentUnpaid,
		TotalAmount:     utils.Round2(totalAmount),
		TaxAmount:       utils.Round2(totalAmount * s.pricing.TaxRate),
		ShippingAmount:  shipping,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.Internal(err)
	}

	if appErr := s.applyStockDecrements(ctx, order); appErr != nil {
		return nil, appErr
	}

	if err := s.carts.DeleteByUser(ctx, userID); err != nil {
		// The order is placed and stock is adjusted; a lingering cart is
		// recoverable and will age out through its TTL.
		s.logger.Warn("Failed to delete cart after placement",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("grand_total", order.GrandTotal()),
	)
	return order, nil
}

// applyStockDecrements walks the order lines with conditional decrements,
// compensating on the first failure: previously decremented lines are
// re-incremented and the order document is removed.
func (s *orderServiceImpl) applyStockDecrements(ctx context.Context, order *models.Order) *apperrors.AppError {
	for i, item := range order.Items {
		ok, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil && ok {
			continue
		}

		s.rollbackStockDecrements(ctx, order, i)

		if err != nil {
			return apperrors.Internal(err)
		}
		return apperrors.Conflict(fmt.Sprintf("Product %q sold out during checkout", item.Name))
	}
	return nil
}

func (s *orderServiceImpl) rollbackStockDecrements(ctx context.Context, order *models.Order, applied int) {
	for j := 0; j < applied; j++ {
		item := order.Items[j]
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Compensating stock increment failed",
				zap.String("order_id", order.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
		}
	}
	if err := s.orders.DeleteByID(ctx, order.ID); err != nil {
		s.logger.Error("Failed to remove order during rollback",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

// GetByID returns an order to its owner or an admin.
func (s *orderServiceImpl) GetByID(ctx context.Context, orderID uuid.UUID, requester *models.User) (*models.Order, *apperrors.AppError) {
	order, appErr := s.load(ctx, orderID)
	if appErr != nil {
		return nil, appErr
	}
	if order.UserID != requester.ID && !requester.Role.CanAdminister() {
		return nil, apperrors.Forbidden("Unauthorized to view this order")
	}
	return order, nil
}

func (s *orderServiceImpl) ListForUser(ctx context.Context, userID uuid.UUID, features *utils.QueryFeatures) ([]*models.Order, int64, *apperrors.AppError) {
	features.Filter["user_id"] = userID
	return s.list(ctx, features)
}

func (s *orderServiceImpl) ListAll(ctx context.Context, features *utils.QueryFeatures) ([]*models.Order, int64, *apperrors.AppError) {
	return s.list(ctx, features)
}

func (s *orderServiceImpl) ListForVendor(ctx context.Context, vendorID uuid.UUID, features *utils.QueryFeatures) ([]*models.Order, int64, *apperrors.AppError) {
	features.Filter["items.vendor_id"] = vendorID
	return s.list(ctx, features)
}

func (s *orderServiceImpl) list(ctx context.Context, features *utils.QueryFeatures) ([]*models.Order, int64, *apperrors.AppError) {
	orders, err := s.orders.Find(ctx, features.Filter, features.FindOptions())
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	total, err := s.orders.Count(ctx, features.Filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return orders, total, nil
}

// UpdateStatus moves an order along the state machine. Only an admin or a
// vendor owning at least one line may update; reverting a forward state
// or canceling a delivered order is rejected.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus, requester *models.User) (*models.Order, *apperrors.AppError) {
	if !status.Valid() {
		return nil, apperrors.BadRequest("Invalid order status")
	}

	order, appErr := s.load(ctx, orderID)
	if appErr != nil {
		return nil, appErr
	}

	if !requester.Role.CanAdminister() && !order.HasVendor(requester.ID) {
		return nil, apperrors.Forbidden("Unauthorized to update this order")
	}

	if !order.Status.CanTransition(status) {
		if status == models.OrderCanceled {
			return nil, apperrors.BadRequest("Cannot cancel a delivered order")
		}
		return nil, apperrors.BadRequest("Cannot revert order to a previous status")
	}

	updates := bson.M{"status": status}
	if status == models.OrderDelivered {
		now := time.Now().UTC()
		updates["is_delivered"] = true
		updates["delivered_at"] = now
		order.IsDelivered = true
		order.DeliveredAt = &now
	}

	if err := s.orders.Update(ctx, orderID, updates); err != nil {
		return nil, apperrors.Internal(err)
	}
	order.Status = status
	return order, nil
}

// MarkPaid flips the payment flags on an order, for out-of-band payment
// confirmation by the owner or an admin.
func (s *orderServiceImpl) MarkPaid(ctx context.Context, orderID uuid.UUID, transactionID string, requester *models.User) (*models.Order, *apperrors.AppError) {
	order, appErr := s.load(ctx, orderID)
	if appErr != nil {
		return nil, appErr
	}
	if order.UserID != requester.ID && !requester.Role.CanAdminister() {
		return nil, apperrors.Forbidden("Unauthorized to update this order")
	}

	now := time.Now().UTC()
	updates := bson.M{
		"payment_status": models.PaymentPaid,
		"is_paid":        true,
		"paid_at":        now,
	}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
		order.TransactionID = transactionID
	}
	if order.Status == models.OrderPending {
		updates["status"] = models.OrderProcessing
		order.Status = models.OrderProcessing
	}
	if err := s.orders.Update(ctx, orderID, updates); err != nil {
		return nil, apperrors.Internal(err)
	}

	order.PaymentStatus = models.PaymentPaid
	order.IsPaid = true
	order.PaidAt = &now
	return order, nil
}

func (s *orderServiceImpl) load(ctx context.Context, orderID uuid.UUID) (*models.Order, *apperrors.AppError) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Order not found")
		}
		return nil, apperrors.Internal(err)
	}
	return order, nil
}

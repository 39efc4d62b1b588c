package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"shopswift-api/models"
)

var testPricing = Pricing{
	TaxRate:               0.10,
	FreeShippingThreshold: 50,
	StandardShipping:      5.99,
}

func newOrderFixture() (*MockOrderRepository, *MockCartRepository, *MockProductRepository, OrderService) {
	orders := new(MockOrderRepository)
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	svc := NewOrderService(orders, carts, products, testPricing, zap.NewNop())
	return orders, carts, products, svc
}

func cartWith(userID uuid.UUID, items ...models.CartItem) *models.Cart {
	return &models.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     items,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	vendorID := uuid.New()

	t.Run("computes totals from cart snapshot prices", func(t *testing.T) {
		orders, carts, products, svc := newOrderFixture()

		productID := uuid.New()
		carts.On("FindByUser", mock.Anything, userID).Return(cartWith(userID, models.CartItem{
			ProductID: productID,
			Quantity:  5,
			Price:     5.00,
			Name:      "Mug",
		}), nil)
		// Live price has drifted upward; the snapshot must win.
		products.On("FindByID", mock.Anything, productID).Return(&models.Product{
			ID:       productID,
			Name:     "Mug",
			Price:    7.00,
			Stock:    10,
			VendorID: vendorID,
			IsActive: true,
		}, nil)
		orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil)
		products.On("DecrementStock", mock.Anything, productID, int64(5)).Return(true, nil)
		carts.On("DeleteByUser", mock.Anything, userID).Return(nil)

		order, appErr := svc.Place(ctx, userID, &models.PlaceOrderRequest{})

		assert.Nil(t, appErr)
		assert.Equal(t, 25.00, order.TotalAmount)
		assert.Equal(t, 2.50, order.TaxAmount)
		assert.Equal(t, 5.99, order.ShippingAmount)
		assert.InDelta(t, 33.49, order.GrandTotal(), 0.001)
		assert.Equal(t, models.OrderPending, order.Status)
		assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
		assert.Equal(t, vendorID, order.Items[0].VendorID)
		carts.AssertCalled(t, "DeleteByUser", mock.Anything, userID)
	})

	t.Run("waives shipping at the free threshold", func(t *testing.T) {
		orders, carts, products, svc := newOrderFixture()

		productID := uuid.New()
		carts.On("FindByUser", mock.Anything, userID).Return(cartWith(userID, models.CartItem{
			ProductID: productID,
			Quantity:  2,
			Price:     25.00,
			Name:      "Lamp",
		}), nil)
		products.On("FindByID", mock.Anything, productID).Return(&models.Product{
			ID: productID, Name: "Lamp", Price: 25.00, Stock: 5, VendorID: vendorID, IsActive: true,
		}, nil)
		orders.On("Create", mock.Anything, mock.Anything).Return(nil)
		products.On("DecrementStock", mock.Anything, productID, int64(2)).Return(true, nil)
		carts.On("DeleteByUser", mock.Anything, userID).Return(nil)

		order, appErr := svc.Place(ctx, userID, &models.PlaceOrderRequest{})

		assert.Nil(t, appErr)
		assert.Equal(t, 0.0, order.ShippingAmount)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		_, carts, _, svc := newOrderFixture()
		carts.On("FindByUser", mock.Anything, userID).Return(cartWith(userID), nil)

		order, appErr := svc.Place(ctx, userID, &models.PlaceOrderRequest{})

		assert.Nil(t, order)
		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	})

	t.Run("rejects a missing cart", func(t *testing.T) {
		_, carts, _, svc := newOrderFixture()
		carts.On("FindByUser", mock.Anything, userID).Return(nil, mongo.ErrNoDocuments)

		_, appErr := svc.Place(ctx, userID, &models.PlaceOrderRequest{})

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	})

	t.Run("aborts before writing when a line exceeds stock", func(t *testing.T) {
		orders, carts, products, svc := newOrderFixture()

		productID := uuid.New()
		carts.On("FindByUser", mock.Anything, userID).Return(cartWith(userID, models.CartItem{
			ProductID: productID, Quantity: 3, Price: 10, Name: "Pen",
		}), nil)
		products.On("FindByID", mock.Anything, productID).Return(&models.Product{
			ID: productID, Name: "Pen", Price: 10, Stock: 1, VendorID: vendorID, IsActive: true,
		}, nil)

		_, appErr := svc.Place(ctx, userID, &models.PlaceOrderRequest{})

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
		orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("compensates when a decrement loses the race", func(t *testing.T) {
		orders, carts, products, svc := newOrderFixture()

		first := uuid.New()
		second := uuid.New()
		carts.On("FindByUser", mock.Anything, userID).Return(cartWith(userID,
			models.CartItem{ProductID: first, Quantity: 1, Price: 10, Name: "A"},
			models.CartItem{ProductID: second, Quantity: 1, Price: 10, Name: "B"},
		), nil)
		products.On("FindByID", mock.Anything, first).Return(&models.Product{
			ID: first, Name: "A", Price: 10, Stock: 5, VendorID: vendorID, IsActive: true,
		}, nil)
		products.On("FindByID", mock.Anything, second).Return(&models.Product{
			ID: second, Name: "B", Price: 10, Stock: 5, VendorID: vendorID, IsActive: true,
		}, nil)
		orders.On("Create", mock.Anything, mock.Anything).Return(nil)
		products.On("DecrementStock", mock.Anything, first, int64(1)).Return(true, nil)
		products.On("DecrementStock", mock.Anything, second, int64(1)).Return(false, nil)
		products.On("IncrementStock", mock.Anything, first, int64(1)).Return(nil)
		orders.On("DeleteByID", mock.Anything, mock.Anything).Return(nil)

		order, appErr := svc.Place(ctx, userID, &models.PlaceOrderRequest{})

		assert.Nil(t, order)
		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
		products.AssertCalled(t, "IncrementStock", mock.Anything, first, int64(1))
		orders.AssertCalled(t, "DeleteByID", mock.Anything, mock.Anything)
		carts.AssertNotCalled(t, "DeleteByUser", mock.Anything, mock.Anything)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	t.Run("rejects reverting to a previous status", func(t *testing.T) {
		orders, _, _, svc := newOrderFixture()
		orderID := uuid.New()
		orders.On("FindByID", mock.Anything, orderID).Return(&models.Order{
			ID: orderID, Status: models.OrderShipped,
		}, nil)

		_, appErr := svc.UpdateStatus(ctx, orderID, models.OrderProcessing, admin)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	})

	t.Run("rejects canceling a delivered order", func(t *testing.T) {
		orders, _, _, svc := newOrderFixture()
		orderID := uuid.New()
		orders.On("FindByID", mock.Anything, orderID).Return(&models.Order{
			ID: orderID, Status: models.OrderDelivered,
		}, nil)

		_, appErr := svc.UpdateStatus(ctx, orderID, models.OrderCanceled, admin)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	})

	t.Run("marks delivery fields on Delivered", func(t *testing.T) {
		orders, _, _, svc := newOrderFixture()
		orderID := uuid.New()
		orders.On("FindByID", mock.Anything, orderID).Return(&models.Order{
			ID: orderID, Status: models.OrderShipped,
		}, nil)
		orders.On("Update", mock.Anything, orderID, mock.Anything).Return(nil)

		order, appErr := svc.UpdateStatus(ctx, orderID, models.OrderDelivered, admin)

		assert.Nil(t, appErr)
		assert.True(t, order.IsDelivered)
		assert.NotNil(t, order.DeliveredAt)
		assert.Equal(t, models.OrderDelivered, order.Status)
	})

	t.Run("forbids a customer who is neither owner vendor nor admin", func(t *testing.T) {
		orders, _, _, svc := newOrderFixture()
		orderID := uuid.New()
		orders.On("FindByID", mock.Anything, orderID).Return(&models.Order{
			ID: orderID, Status: models.OrderPending,
		}, nil)

		customer := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
		_, appErr := svc.UpdateStatus(ctx, orderID, models.OrderProcessing, customer)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
	})

	t.Run("allows a vendor owning a line", func(t *testing.T) {
		orders, _, _, svc := newOrderFixture()
		orderID := uuid.New()
		vendor := &models.User{ID: uuid.New(), Role: models.RoleVendor}
		orders.On("FindByID", mock.Anything, orderID).Return(&models.Order{
			ID:     orderID,
			Status: models.OrderProcessing,
			Items:  []models.OrderItem{{VendorID: vendor.ID}},
		}, nil)
		orders.On("Update", mock.Anything, orderID, mock.Anything).Return(nil)

		order, appErr := svc.UpdateStatus(ctx, orderID, models.OrderShipped, vendor)

		assert.Nil(t, appErr)
		assert.Equal(t, models.OrderShipped, order.Status)
	})
}

func TestGetOrderAuthorization(t *testing.T) {
	ctx := context.Background()
	orders, _, _, svc := newOrderFixture()

	owner := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
	orderID := uuid.New()
	orders.On("FindByID", mock.Anything, orderID).Return(&models.Order{
		ID: orderID, UserID: owner.ID, Status: models.OrderPending,
	}, nil)

	t.Run("owner can read", func(t *testing.T) {
		order, appErr := svc.GetByID(ctx, orderID, owner)
		assert.Nil(t, appErr)
		assert.Equal(t, orderID, order.ID)
	})

	t.Run("stranger cannot", func(t *testing.T) {
		stranger := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
		_, appErr := svc.GetByID(ctx, orderID, stranger)
		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
	})

	t.Run("admin can read anyone's", func(t *testing.T) {
		adminUser := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
		order, appErr := svc.GetByID(ctx, orderID, adminUser)
		assert.Nil(t, appErr)
		assert.Equal(t, orderID, order.ID)
	})
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the transaction and advances a pending order", func(t *testing.T) {
		orders, _, _, svc := newOrderFixture()
		owner := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
		orderID := uuid.New()
		orders.On("FindByID", mock.Anything, orderID).Return(&models.Order{
			ID: orderID, UserID: owner.ID, Status: models.OrderPending, PaymentStatus: models.PaymentUnpaid,
		}, nil)

		var captured bson.M
		orders.On("Update", mock.Anything, orderID, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(2).(bson.M)
		}).Return(nil)

		order, appErr := svc.MarkPaid(ctx, orderID, "txn_12345", owner)

		assert.Nil(t, appErr)
		assert.Equal(t, "txn_12345", captured["transaction_id"])
		assert.Equal(t, models.PaymentPaid, captured["payment_status"])
		assert.Equal(t, models.OrderProcessing, captured["status"])
		assert.Equal(t, "txn_12345", order.TransactionID)
		assert.True(t, order.IsPaid)
	})

	t.Run("omits the transaction field when none is given", func(t *testing.T) {
		orders, _, _, svc := newOrderFixture()
		owner := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
		orderID := uuid.New()
		orders.On("FindByID", mock.Anything, orderID).Return(&models.Order{
			ID: orderID, UserID: owner.ID, Status: models.OrderProcessing,
		}, nil)

		var captured bson.M
		orders.On("Update", mock.Anything, orderID, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(2).(bson.M)
		}).Return(nil)

		_, appErr := svc.MarkPaid(ctx, orderID, "", owner)

		assert.Nil(t, appErr)
		assert.NotContains(t, captured, "transaction_id")
	})

	t.Run("stranger cannot confirm payment", func(t *testing.T) {
		orders, _, _, svc := newOrderFixture()
		orderID := uuid.New()
		orders.On("FindByID", mock.Anything, orderID).Return(&models.Order{
			ID: orderID, UserID: uuid.New(), Status: models.OrderPending,
		}, nil)

		stranger := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
		_, appErr := svc.MarkPaid(ctx, orderID, "txn_12345", stranger)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
		orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

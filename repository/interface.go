package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopswift-api/models"
)

// UserRepository provides access to the users collection.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.User, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id uuid.UUID, updates bson.M) error
	Unset(ctx context.Context, id uuid.UUID, fields ...string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository provides access to the products collection.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Product, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uuid.UUID, updates bson.M) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically decrements stock only when stock >= qty.
	// It reports false when the guard did not match (missing product or
	// insufficient stock), so callers can distinguish a no-op from success.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int64) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int64) error
	UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int64) error
}

// CategoryRepository provides access to the categories collection.
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Category, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, id uuid.UUID, updates bson.M) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartRepository provides access to the carts collection. One cart per user.
type CartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// OrderRepository provides access to the orders collection. Orders are
// created and updated but never deleted; DeleteByID exists solely for the
// compensating rollback of a failed placement.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Order, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, id uuid.UUID, updates bson.M) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	HasDeliveredOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// PaymentRepository provides access to the payments collection.
type PaymentRepository interface {
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	FindByTransaction(ctx context.Context, transactionID string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, id uuid.UUID, updates bson.M) error
}

// ReviewRepository provides access to the reviews collection.
type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*models.Review, error)
	Find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Review, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, id uuid.UUID, updates bson.M) error
	Delete(ctx context.Context, id uuid.UUID) error

	// RatingStats aggregates average and count over active reviews of a product.
	RatingStats(ctx context.Context, productID uuid.UUID) (float64, int64, error)
}

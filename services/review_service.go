package services

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"shopswift-api/apperrors"
	"shopswift-api/models"
	"shopswift-api/repository"
	"shopswift-api/utils"
)

// ReviewService manages product reviews and keeps the denormalized rating
// aggregate on the product in sync.
type ReviewService interface {
	Create(ctx context.Context, userID, productID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, *apperrors.AppError)
	Update(ctx context.Context, reviewID uuid.UUID, req *models.UpdateReviewRequest, requester *models.User) (*models.Review, *apperrors.AppError)
	Delete(ctx context.Context, reviewID uuid.UUID, requester *models.User) *apperrors.AppError
	ListByProduct(ctx context.Context, productID uuid.UUID, features *utils.QueryFeatures) ([]*models.Review, int64, *apperrors.AppError)
}

type reviewServiceImpl struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	logger   *zap.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	logger *zap.Logger,
) ReviewService {
	return &reviewServiceImpl{
		reviews:  reviews,
		products: products,
		orders:   orders,
		logger:   logger,
	}
}

// Create adds a review for a product the user has not reviewed yet. A
// delivered order containing the product marks the review as a verified
// purchase.
func (s *reviewServiceImpl) Create(ctx context.Context, userID, productID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, *apperrors.AppError) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Internal(err)
	}

	if _, err := s.reviews.FindByUserAndProduct(ctx, userID, productID); err == nil {
		return nil, apperrors.Conflict("You have already reviewed this product")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.Internal(err)
	}

	verified, err := s.orders.HasDeliveredOrderWithProduct(ctx, userID, productID)
	if err != nil {
		s.logger.Warn("Failed to check purchase history for review",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	review := &models.Review{
		ID:                 uuid.New(),
		UserID:             userID,
		ProductID:          productID,
		Rating:             req.Rating,
		Title:              req.Title,
		Comment:            req.Comment,
		Images:             req.Images,
		IsVerifiedPurchase: verified,
		IsActive:           true,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("You have already reviewed this product")
		}
		return nil, apperrors.Internal(err)
	}

	s.recomputeRating(ctx, productID)
	return review, nil
}

// Update modifies a review; only its author may do so.
func (s *reviewServiceImpl) Update(ctx context.Context, reviewID uuid.UUID, req *models.UpdateReviewRequest, requester *models.User) (*models.Review, *apperrors.AppError) {
	review, appErr := s.load(ctx, reviewID)
	if appErr != nil {
		return nil, appErr
	}
	if review.UserID != requester.ID {
		return nil, apperrors.Forbidden("Unauthorized to update this review")
	}

	updates := bson.M{}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
		review.Rating = *req.Rating
	}
	if req.Title != nil {
		updates["title"] = *req.Title
		review.Title = *req.Title
	}
	if req.Comment != nil {
		updates["comment"] = *req.Comment
		review.Comment = *req.Comment
	}
	if req.Images != nil {
		updates["images"] = req.Images
		review.Images = req.Images
	}
	if len(updates) == 0 {
		return review, nil
	}

	if err := s.reviews.Update(ctx, reviewID, updates); err != nil {
		return nil, apperrors.Internal(err)
	}

	if req.Rating != nil {
		s.recomputeRating(ctx, review.ProductID)
	}
	return review, nil
}

// Delete removes a review; allowed to the author or an admin.
func (s *reviewServiceImpl) Delete(ctx context.Context, reviewID uuid.UUID, requester *models.User) *apperrors.AppError {
	review, appErr := s.load(ctx, reviewID)
	if appErr != nil {
		return appErr
	}
	if review.UserID != requester.ID && !requester.Role.CanAdminister() {
		return apperrors.Forbidden("Unauthorized to delete this review")
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return apperrors.Internal(err)
	}

	s.recomputeRating(ctx, review.ProductID)
	return nil
}

// ListByProduct returns active reviews for a product.
func (s *reviewServiceImpl) ListByProduct(ctx context.Context, productID uuid.UUID, features *utils.QueryFeatures) ([]*models.Review, int64, *apperrors.AppError) {
	features.Filter["product_id"] = productID
	features.Filter["is_active"] = true

	reviews, err := s.reviews.Find(ctx, features.Filter, features.FindOptions())
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	total, err := s.reviews.Count(ctx, features.Filter)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return reviews, total, nil
}

// recomputeRating re-aggregates the product's rating from active reviews.
// The average is kept to one decimal. Failures are logged, not surfaced:
// the review write already succeeded and the aggregate self-heals on the
// next change.
func (s *reviewServiceImpl) recomputeRating(ctx context.Context, productID uuid.UUID) {
	average, count, err := s.reviews.RatingStats(ctx, productID)
	if err != nil {
		s.logger.Error("Failed to aggregate product rating",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return
	}

	rounded := math.Round(average*10) / 10
	if err := s.products.UpdateRating(ctx, productID, rounded, count); err != nil {
		s.logger.Error("Failed to update product rating",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}

func (s *reviewServiceImpl) load(ctx context.Context, reviewID uuid.UUID) (*models.Review, *apperrors.AppError) {
	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Review not found")
		}
		return nil, apperrors.Internal(err)
	}
	return review, nil
}

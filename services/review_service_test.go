package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"shopswift-api/models"
)

func newReviewFixture() (*MockReviewRepository, *MockProductRepository, *MockOrderRepository, ReviewService) {
	reviews := new(MockReviewRepository)
	products := new(MockProductRepository)
	orders := new(MockOrderRepository)
	svc := NewReviewService(reviews, products, orders, zap.NewNop())
	return reviews, products, orders, svc
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()
	req := &models.CreateReviewRequest{Rating: 4, Comment: "Solid product, works as advertised"}

	t.Run("marks a delivered purchase as verified and recomputes the rating", func(t *testing.T) {
		reviews, products, orders, svc := newReviewFixture()

		products.On("FindByID", mock.Anything, productID).Return(&models.Product{ID: productID}, nil)
		reviews.On("FindByUserAndProduct", mock.Anything, userID, productID).Return(nil, mongo.ErrNoDocuments)
		orders.On("HasDeliveredOrderWithProduct", mock.Anything, userID, productID).Return(true, nil)
		reviews.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).Return(nil)
		reviews.On("RatingStats", mock.Anything, productID).Return(4.25, int64(4), nil)
		products.On("UpdateRating", mock.Anything, productID, 4.3, int64(4)).Return(nil)

		review, appErr := svc.Create(ctx, userID, productID, req)

		assert.Nil(t, appErr)
		assert.True(t, review.IsVerifiedPurchase)
		assert.True(t, review.IsActive)
		// Average is rounded to one decimal before denormalizing.
		products.AssertCalled(t, "UpdateRating", mock.Anything, productID, 4.3, int64(4))
	})

	t.Run("without a delivered order the review is unverified", func(t *testing.T) {
		reviews, products, orders, svc := newReviewFixture()

		products.On("FindByID", mock.Anything, productID).Return(&models.Product{ID: productID}, nil)
		reviews.On("FindByUserAndProduct", mock.Anything, userID, productID).Return(nil, mongo.ErrNoDocuments)
		orders.On("HasDeliveredOrderWithProduct", mock.Anything, userID, productID).Return(false, nil)
		reviews.On("Create", mock.Anything, mock.Anything).Return(nil)
		reviews.On("RatingStats", mock.Anything, productID).Return(4.0, int64(1), nil)
		products.On("UpdateRating", mock.Anything, productID, 4.0, int64(1)).Return(nil)

		review, appErr := svc.Create(ctx, userID, productID, req)

		assert.Nil(t, appErr)
		assert.False(t, review.IsVerifiedPurchase)
	})

	t.Run("rejects a second review from the same user", func(t *testing.T) {
		reviews, products, _, svc := newReviewFixture()

		products.On("FindByID", mock.Anything, productID).Return(&models.Product{ID: productID}, nil)
		reviews.On("FindByUserAndProduct", mock.Anything, userID, productID).Return(&models.Review{ID: uuid.New()}, nil)

		_, appErr := svc.Create(ctx, userID, productID, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
		reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("404s for a missing product", func(t *testing.T) {
		_, products, _, svc := newReviewFixture()

		products.On("FindByID", mock.Anything, productID).Return(nil, mongo.ErrNoDocuments)

		_, appErr := svc.Create(ctx, userID, productID, req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	})
}

func TestUpdateReview(t *testing.T) {
	ctx := context.Background()
	author := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
	productID := uuid.New()

	t.Run("only the author may edit", func(t *testing.T) {
		reviews, _, _, svc := newReviewFixture()
		reviewID := uuid.New()
		reviews.On("FindByID", mock.Anything, reviewID).Return(&models.Review{
			ID: reviewID, UserID: author.ID, ProductID: productID,
		}, nil)

		stranger := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
		rating := 2
		_, appErr := svc.Update(ctx, reviewID, &models.UpdateReviewRequest{Rating: &rating}, stranger)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
	})

	t.Run("a rating change triggers a recompute", func(t *testing.T) {
		reviews, products, _, svc := newReviewFixture()
		reviewID := uuid.New()
		reviews.On("FindByID", mock.Anything, reviewID).Return(&models.Review{
			ID: reviewID, UserID: author.ID, ProductID: productID, Rating: 4,
		}, nil)
		reviews.On("Update", mock.Anything, reviewID, mock.Anything).Return(nil)
		reviews.On("RatingStats", mock.Anything, productID).Return(3.5, int64(2), nil)
		products.On("UpdateRating", mock.Anything, productID, 3.5, int64(2)).Return(nil)

		rating := 3
		review, appErr := svc.Update(ctx, reviewID, &models.UpdateReviewRequest{Rating: &rating}, author)

		assert.Nil(t, appErr)
		assert.Equal(t, 3, review.Rating)
		products.AssertCalled(t, "UpdateRating", mock.Anything, productID, 3.5, int64(2))
	})

	t.Run("a comment-only change leaves the aggregate alone", func(t *testing.T) {
		reviews, products, _, svc := newReviewFixture()
		reviewID := uuid.New()
		reviews.On("FindByID", mock.Anything, reviewID).Return(&models.Review{
			ID: reviewID, UserID: author.ID, ProductID: productID, Rating: 4,
		}, nil)
		reviews.On("Update", mock.Anything, reviewID, mock.Anything).Return(nil)

		comment := "Updated after a month of daily use"
		_, appErr := svc.Update(ctx, reviewID, &models.UpdateReviewRequest{Comment: &comment}, author)

		assert.Nil(t, appErr)
		products.AssertNotCalled(t, "UpdateRating", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	author := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
	productID := uuid.New()

	t.Run("admin may delete someone else's review", func(t *testing.T) {
		reviews, products, _, svc := newReviewFixture()
		reviewID := uuid.New()
		reviews.On("FindByID", mock.Anything, reviewID).Return(&models.Review{
			ID: reviewID, UserID: author.ID, ProductID: productID,
		}, nil)
		reviews.On("Delete", mock.Anything, reviewID).Return(nil)
		reviews.On("RatingStats", mock.Anything, productID).Return(0.0, int64(0), nil)
		products.On("UpdateRating", mock.Anything, productID, 0.0, int64(0)).Return(nil)

		adminUser := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
		appErr := svc.Delete(ctx, reviewID, adminUser)

		assert.Nil(t, appErr)
	})

	t.Run("a stranger may not", func(t *testing.T) {
		reviews, _, _, svc := newReviewFixture()
		reviewID := uuid.New()
		reviews.On("FindByID", mock.Anything, reviewID).Return(&models.Review{
			ID: reviewID, UserID: author.ID, ProductID: productID,
		}, nil)

		stranger := &models.User{ID: uuid.New(), Role: models.RoleCustomer}
		appErr := svc.Delete(ctx, reviewID, stranger)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
		reviews.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

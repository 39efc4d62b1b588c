package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"shopswift-api/middleware"
	"shopswift-api/models"
	"shopswift-api/services"
	"shopswift-api/utils"
)

// ReviewController serves product reviews.
type ReviewController struct {
	reviews services.ReviewService
}

// NewReviewController creates a ReviewController.
func NewReviewController(reviews services.ReviewService) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// ListProductReviews returns the active reviews of a product.
func (rc *ReviewController) ListProductReviews(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{})
	reviews, total, appErr := rc.reviews.ListByProduct(c.Request.Context(), productID, features)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{
		"reviews":    reviews,
		"pagination": features.Meta(total),
	})
}

// CreateReview adds the user's review for a product.
func (rc *ReviewController) CreateReview(c *gin.Context) {
	productID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	review, appErr := rc.reviews.Create(c.Request.Context(), user.ID, productID, &req)
	if appErr != nil {
		fail(c, appErr)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, gin.H{"review": review})
}

// UpdateReview edits the user's own review.
func (rc *ReviewController) UpdateReview(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	review, appErr := rc.reviews.Update(c.Request.Context(), id, &req, middleware.CurrentUser(c))
	if appErr != nil {
		fail(c, appErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"review": review})
}

// DeleteReview removes a review, allowed to its author or an admin.
func (rc *ReviewController) DeleteReview(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if appErr := rc.reviews.Delete(c.Request.Context(), id, middleware.CurrentUser(c)); appErr != nil {
		fail(c, appErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Review deleted"})
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a product review. The (user, product) pair is unique.
type Review struct {
	ID                 uuid.UUID `json:"id" bson:"_id"`
	UserID             uuid.UUID `json:"user_id" bson:"user_id"`
	ProductID          uuid.UUID `json:"product_id" bson:"product_id"`
	Rating             int       `json:"rating" bson:"rating"`
	Title              string    `json:"title,omitempty" bson:"title,omitempty"`
	Comment            string    `json:"comment" bson:"comment"`
	Images             []string  `json:"images,omitempty" bson:"images,omitempty"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase" bson:"is_verified_purchase"`
	IsActive           bool      `json:"is_active" bson:"is_active"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at"`
}

// CreateReviewRequest is the payload for reviewing a product.
type CreateReviewRequest struct {
	Rating  int      `json:"rating" binding:"required,min=1,max=5"`
	Title   string   `json:"title" binding:"max=100"`
	Comment string   `json:"comment" binding:"required,min=10,max=1000"`
	Images  []string `json:"images" binding:"omitempty,dive,url"`
}

// UpdateReviewRequest carries the mutable review fields.
type UpdateReviewRequest struct {
	Rating  *int     `json:"rating" binding:"omitempty,min=1,max=5"`
	Title   *string  `json:"title" binding:"omitempty,max=100"`
	Comment *string  `json:"comment" binding:"omitempty,min=10,max=1000"`
	Images  []string `json:"images" binding:"omitempty,dive,url"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a catalog grouping, optionally nested one level under a parent.
type Category struct {
	ID          uuid.UUID  `json:"id" bson:"_id"`
	Name        string     `json:"name" bson:"name"`
	Slug        string     `json:"slug" bson:"slug"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Image       string     `json:"image,omitempty" bson:"image,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	IsActive    bool       `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// CreateCategoryRequest is the payload for category creation.
type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required,min=3,max=50"`
	Description string     `json:"description" binding:"max=500"`
	Image       string     `json:"image" binding:"omitempty,url"`
	ParentID    *uuid.UUID `json:"parent_id"`
	IsActive    *bool      `json:"is_active"`
}

// UpdateCategoryRequest carries the mutable category fields.
type UpdateCategoryRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=3,max=50"`
	Description *string    `json:"description" binding:"omitempty,max=500"`
	Image       *string    `json:"image" binding:"omitempty,url"`
	ParentID    *uuid.UUID `json:"parent_id"`
	IsActive    *bool      `json:"is_active"`
}

package models

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rating is the denormalized review aggregate kept on the product.
// It is maintained by the review write path, never by readers.
type Rating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int64   `json:"count" bson:"count"`
}

// Specification is a single name/value attribute of a product.
type Specification struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

// Product is a catalog document owned by a vendor.
type Product struct {
	ID              uuid.UUID       `json:"id" bson:"_id"`
	Name            string          `json:"name" bson:"name"`
	Slug            string          `json:"slug" bson:"slug"`
	Description     string          `json:"description" bson:"description"`
	Price           float64         `json:"price" bson:"price"`
	DiscountedPrice float64         `json:"discounted_price,omitempty" bson:"discounted_price,omitempty"`
	Stock           int64           `json:"stock" bson:"stock"`
	CategoryID      uuid.UUID       `json:"category_id" bson:"category_id"`
	VendorID        uuid.UUID       `json:"vendor_id" bson:"vendor_id"`
	Images          []string        `json:"images" bson:"images"`
	Tags            []string        `json:"tags,omitempty" bson:"tags,omitempty"`
	Specifications  []Specification `json:"specifications,omitempty" bson:"specifications,omitempty"`
	Ratings         Rating          `json:"ratings" bson:"ratings"`
	IsActive        bool            `json:"is_active" bson:"is_active"`
	Featured        bool            `json:"featured" bson:"featured"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updated_at"`
}

// InStock reports whether the product has any remaining stock.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// DiscountPercentage derives the rounded discount from the price pair.
func (p *Product) DiscountPercentage() int {
	if p.DiscountedPrice <= 0 || p.DiscountedPrice >= p.Price {
		return 0
	}
	return int(math.Round((p.Price - p.DiscountedPrice) / p.Price * 100))
}

// EffectivePrice is the price a buyer pays right now.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountedPrice > 0 && p.DiscountedPrice < p.Price {
		return p.DiscountedPrice
	}
	return p.Price
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a product or category name.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// CreateProductRequest is the payload for catalog creation.
type CreateProductRequest struct {
	Name            string          `json:"name" binding:"required,min=3,max=100"`
	Description     string          `json:"description" binding:"required,min=10,max=1000"`
	Price           float64         `json:"price" binding:"required,gt=0"`
	DiscountedPrice float64         `json:"discounted_price" binding:"omitempty,gt=0"`
	Stock           int64           `json:"stock" binding:"gte=0"`
	CategoryID      uuid.UUID       `json:"category_id" binding:"required"`
	VendorID        uuid.UUID       `json:"vendor_id"`
	Images          []string        `json:"images" binding:"omitempty,dive,url"`
	Tags            []string        `json:"tags"`
	Specifications  []Specification `json:"specifications"`
	Featured        bool            `json:"featured"`
}

// UpdateProductRequest carries the mutable product fields. Pointer fields
// distinguish "absent" from zero values.
type UpdateProductRequest struct {
	Name            *string         `json:"name" binding:"omitempty,min=3,max=100"`
	Description     *string         `json:"description" binding:"omitempty,min=10,max=1000"`
	Price           *float64        `json:"price" binding:"omitempty,gt=0"`
	DiscountedPrice *float64        `json:"discounted_price" binding:"omitempty,gte=0"`
	Stock           *int64          `json:"stock" binding:"omitempty,gte=0"`
	CategoryID      *uuid.UUID      `json:"category_id"`
	Images          []string        `json:"images" binding:"omitempty,dive,url"`
	Tags            []string        `json:"tags"`
	Specifications  []Specification `json:"specifications"`
	IsActive        *bool           `json:"is_active"`
	Featured        *bool           `json:"featured"`
}

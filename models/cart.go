package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is an owned line snapshot. Price, name and image are copied
// from the product at add-time so the cart renders stable values even
// if the product changes afterwards.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id" bson:"product_id"`
	Quantity  int64     `json:"quantity" bson:"quantity"`
	Price     float64   `json:"price" bson:"price"`
	Name      string    `json:"name" bson:"name"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
}

// Cart is the single per-user cart document. ExpiresAt backs a TTL
// index so abandoned carts age out on their own.
type Cart struct {
	ID        uuid.UUID  `json:"id" bson:"_id"`
	UserID    uuid.UUID  `json:"user_id" bson:"user_id"`
	Items     []CartItem `json:"items" bson:"items"`
	ExpiresAt time.Time  `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// TotalValue sums price x quantity across lines. The total is derived on
// every read and never stored.
func (c *Cart) TotalValue() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// FindItem returns the index of the line holding productID, or -1.
func (c *Cart) FindItem(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItemRequest is the payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"omitempty,min=1"`
}

// UpdateItemRequest sets an explicit quantity for a cart line.
// Quantity 0 removes the line.
type UpdateItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  *int64    `json:"quantity" binding:"required,gte=0"`
}

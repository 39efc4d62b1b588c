package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"shopswift-api/apperrors"
	"shopswift-api/models"
	"shopswift-api/repository"
)

// CartService mutates the per-user cart document. Line prices are
// snapshots refreshed whenever a line is touched; the cart total is
// always derived, never stored.
type CartService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, *apperrors.AppError)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, *apperrors.AppError)
	UpdateItem(ctx context.Context, userID uuid.UUID, req *models.UpdateItemRequest) (*models.Cart, *apperrors.AppError)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, *apperrors.AppError)
	Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, *apperrors.AppError)
}

type cartServiceImpl struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cartTTL  time.Duration
}

// NewCartService creates a CartService.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, cartTTL time.Duration) CartService {
	return &cartServiceImpl{carts: carts, products: products, cartTTL: cartTTL}
}

// GetOrCreate fetches the user's cart, creating an empty one lazily.
func (s *cartServiceImpl) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, *apperrors.AppError) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.Internal(err)
	}

	cart = s.newCart(userID)
	if saveErr := s.carts.Save(ctx, cart); saveErr != nil {
		return nil, apperrors.Internal(saveErr)
	}
	return cart, nil
}

// AddItem appends a product line or merges into an existing one, always
// re-checking current stock and refreshing the snapshotted price.
func (s *cartServiceImpl) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, *apperrors.AppError) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	product, appErr := s.loadProduct(ctx, req.ProductID)
	if appErr != nil {
		return nil, appErr
	}
	if product.Stock < quantity {
		return nil, apperrors.BadRequest("Not enough stock available")
	}

	cart, appErr := s.GetOrCreate(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}

	if idx := cart.FindItem(product.ID); idx >= 0 {
		newQuantity := cart.Items[idx].Quantity + quantity
		if newQuantity > product.Stock {
			return nil, apperrors.BadRequest("Requested quantity exceeds available stock")
		}
		cart.Items[idx].Quantity = newQuantity
		cart.Items[idx].Price = product.EffectivePrice()
	} else {
		item := models.CartItem{
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.EffectivePrice(),
			Name:      product.Name,
		}
		if len(product.Images) > 0 {
			item.Image = product.Images[0]
		}
		cart.Items = append(cart.Items, item)
	}

	cart.ExpiresAt = time.Now().UTC().Add(s.cartTTL)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, apperrors.Internal(err)
	}
	return cart, nil
}

// UpdateItem sets an explicit quantity on a line. Quantity 0 removes it.
func (s *cartServiceImpl) UpdateItem(ctx context.Context, userID uuid.UUID, req *models.UpdateItemRequest) (*models.Cart, *apperrors.AppError) {
	if req.Quantity == nil {
		return nil, apperrors.BadRequest("Quantity is required")
	}
	quantity := *req.Quantity

	product, appErr := s.loadProduct(ctx, req.ProductID)
	if appErr != nil {
		return nil, appErr
	}
	if quantity > product.Stock {
		return nil, apperrors.BadRequest("Requested quantity exceeds available stock")
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Cart not found")
		}
		return nil, apperrors.Internal(err)
	}

	idx := cart.FindItem(req.ProductID)
	if idx < 0 {
		return nil, apperrors.NotFound("Item not found in cart")
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
		cart.Items[idx].Price = product.EffectivePrice()
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, apperrors.Internal(err)
	}
	return cart, nil
}

// RemoveItem deletes one line from the cart.
func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, *apperrors.AppError) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Cart not found")
		}
		return nil, apperrors.Internal(err)
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("Item not found in cart")
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, apperrors.Internal(err)
	}
	return cart, nil
}

// Clear empties the cart's item array, keeping the document.
func (s *cartServiceImpl) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, *apperrors.AppError) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Cart not found")
		}
		return nil, apperrors.Internal(err)
	}

	cart.Items = []models.CartItem{}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, apperrors.Internal(err)
	}
	return cart, nil
}

func (s *cartServiceImpl) newCart(userID uuid.UUID) *models.Cart {
	return &models.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Items:     []models.CartItem{},
		ExpiresAt: time.Now().UTC().Add(s.cartTTL),
	}
}

func (s *cartServiceImpl) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, *apperrors.AppError) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to load product: %w", err))
	}
	if !product.IsActive {
		return nil, apperrors.NotFound("Product not found")
	}
	return product, nil
}

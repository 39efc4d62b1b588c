package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"shopswift-api/apperrors"
	"shopswift-api/middleware"
	"shopswift-api/models"
	"shopswift-api/repository"
	"shopswift-api/utils"
)

// ProductController serves the catalog surface. Reads are public and only
// ever see active products; writes require a vendor or admin.
type ProductController struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	logger     *zap.Logger
}

// NewProductController creates a ProductController.
func NewProductController(products repository.ProductRepository, categories repository.CategoryRepository, logger *zap.Logger) *ProductController {
	return &ProductController{products: products, categories: categories, logger: logger}
}

// ListProducts returns a filtered, paginated product list. Query params
// support pagination, sorting, projections and range comparisons such as
// price[lte]=100.
func (pc *ProductController) ListProducts(c *gin.Context) {
	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{"is_active": true})

	products, err := pc.products.Find(c.Request.Context(), features.Filter, features.FindOptions())
	if err != nil {
		fail(c, err)
		return
	}
	total, err := pc.products.Count(c.Request.Context(), features.Filter)
	if err != nil {
		fail(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{
		"products":   products,
		"pagination": features.Meta(total),
	})
}

// ListMyProducts returns the vendor's own products, inactive ones included.
func (pc *ProductController) ListMyProducts(c *gin.Context) {
	user := middleware.CurrentUser(c)
	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{"vendor_id": user.ID})

	products, err := pc.products.Find(c.Request.Context(), features.Filter, features.FindOptions())
	if err != nil {
		fail(c, err)
		return
	}
	total, err := pc.products.Count(c.Request.Context(), features.Filter)
	if err != nil {
		fail(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{
		"products":   products,
		"pagination": features.Meta(total),
	})
}

// ListVendorProducts returns a vendor's active products. Public storefront
// view, so inactive entries stay hidden.
func (pc *ProductController) ListVendorProducts(c *gin.Context) {
	vendorID, ok := uuidParam(c, "vendorId")
	if !ok {
		return
	}
	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{
		"vendor_id": vendorID,
		"is_active": true,
	})

	products, err := pc.products.Find(c.Request.Context(), features.Filter, features.FindOptions())
	if err != nil {
		fail(c, err)
		return
	}
	total, err := pc.products.Count(c.Request.Context(), features.Filter)
	if err != nil {
		fail(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{
		"products":   products,
		"pagination": features.Meta(total),
	})
}

// GetProductBySlug fetches one active product by its slug.
func (pc *ProductController) GetProductBySlug(c *gin.Context) {
	product, err := pc.products.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.NotFound("Product not found"))
			return
		}
		fail(c, err)
		return
	}
	if !product.IsActive {
		fail(c, apperrors.NotFound("Product not found"))
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"product": product})
}

// GetProduct fetches one product by UUID or slug.
func (pc *ProductController) GetProduct(c *gin.Context) {
	raw := c.Param("id")

	var product *models.Product
	var err error
	if id, parseErr := uuid.Parse(raw); parseErr == nil {
		product, err = pc.products.FindByID(c.Request.Context(), id)
	} else {
		product, err = pc.products.FindBySlug(c.Request.Context(), raw)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.NotFound("Product not found"))
			return
		}
		fail(c, err)
		return
	}
	if !product.IsActive {
		fail(c, apperrors.NotFound("Product not found"))
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{"product": product})
}

// CreateProduct adds a catalog entry owned by the requesting vendor.
// Admins may create on behalf of another vendor by setting vendor_id.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if req.DiscountedPrice > 0 && req.DiscountedPrice >= req.Price {
		fail(c, apperrors.BadRequest("Discounted price must be lower than the price"))
		return
	}

	if _, err := pc.categories.FindByID(c.Request.Context(), req.CategoryID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.BadRequest("Category does not exist"))
			return
		}
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	vendorID := user.ID
	if req.VendorID != uuid.Nil && user.Role.CanAdminister() {
		vendorID = req.VendorID
	}

	slug := models.Slugify(req.Name)
	if _, err := pc.products.FindBySlug(c.Request.Context(), slug); err == nil {
		fail(c, apperrors.Conflict("A product with this name already exists"))
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		fail(c, err)
		return
	}

	product := &models.Product{
		ID:              uuid.New(),
		Name:            req.Name,
		Slug:            slug,
		Description:     req.Description,
		Price:           req.Price,
		DiscountedPrice: req.DiscountedPrice,
		Stock:           req.Stock,
		CategoryID:      req.CategoryID,
		VendorID:        vendorID,
		Images:          req.Images,
		Tags:            req.Tags,
		Specifications:  req.Specifications,
		Featured:        req.Featured,
		IsActive:        true,
	}

	if err := pc.products.Create(c.Request.Context(), product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			fail(c, apperrors.Conflict("A product with this name already exists"))
			return
		}
		fail(c, err)
		return
	}

	pc.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("vendor_id", vendorID.String()),
	)
	utils.SendSuccess(c, http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct applies a partial update to a product owned by the
// requester; admins may update any product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	product, err := pc.products.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.NotFound("Product not found"))
			return
		}
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if product.VendorID != user.ID && !user.Role.CanAdminister() {
		fail(c, apperrors.Forbidden("Unauthorized to update this product"))
		return
	}

	price := product.Price
	if req.Price != nil {
		price = *req.Price
	}
	discounted := product.DiscountedPrice
	if req.DiscountedPrice != nil {
		discounted = *req.DiscountedPrice
	}
	if discounted > 0 && discounted >= price {
		fail(c, apperrors.BadRequest("Discounted price must be lower than the price"))
		return
	}

	updates := bson.M{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = models.Slugify(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DiscountedPrice != nil {
		updates["discounted_price"] = *req.DiscountedPrice
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.CategoryID != nil {
		if _, err := pc.categories.FindByID(c.Request.Context(), *req.CategoryID); err != nil {
			fail(c, apperrors.BadRequest("Category does not exist"))
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}
	if req.Tags != nil {
		updates["tags"] = req.Tags
	}
	if req.Specifications != nil {
		updates["specifications"] = req.Specifications
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}
	if len(updates) == 0 {
		fail(c, apperrors.BadRequest("No updatable fields provided"))
		return
	}

	if err := pc.products.Update(c.Request.Context(), id, updates); err != nil {
		fail(c, err)
		return
	}

	updated, err := pc.products.FindByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"product": updated})
}

// DeleteProduct removes a catalog entry. Orders keep rendering through
// their own line snapshots, so deletion never touches order history.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := pc.products.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.NotFound("Product not found"))
			return
		}
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if product.VendorID != user.ID && !user.Role.CanAdminister() {
		fail(c, apperrors.Forbidden("Unauthorized to delete this product"))
		return
	}

	if err := pc.products.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	pc.logger.Info("Product deleted", zap.String("product_id", id.String()))
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Product deleted"})
}

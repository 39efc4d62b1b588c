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
	"shopswift-api/models"
	"shopswift-api/repository"
	"shopswift-api/utils"
)

// CategoryController serves the category tree. Reads are public, writes
// are admin-only.
type CategoryController struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	logger     *zap.Logger
}

// NewCategoryController creates a CategoryController.
func NewCategoryController(categories repository.CategoryRepository, products repository.ProductRepository, logger *zap.Logger) *CategoryController {
	return &CategoryController{categories: categories, products: products, logger: logger}
}

// ListCategories returns active categories.
func (cc *CategoryController) ListCategories(c *gin.Context) {
	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{"is_active": true})

	categories, err := cc.categories.Find(c.Request.Context(), features.Filter, features.FindOptions())
	if err != nil {
		fail(c, err)
		return
	}
	total, err := cc.categories.Count(c.Request.Context(), features.Filter)
	if err != nil {
		fail(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{
		"categories": categories,
		"pagination": features.Meta(total),
	})
}

// GetCategory fetches one category by id.
func (cc *CategoryController) GetCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	category, err := cc.categories.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.NotFound("Category not found"))
			return
		}
		fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"category": category})
}

// ListCategoryProducts returns the active products of a category and its
// direct subcategories.
func (cc *CategoryController) ListCategoryProducts(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if _, err := cc.categories.FindByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.NotFound("Category not found"))
			return
		}
		fail(c, err)
		return
	}

	children, err := cc.categories.Find(c.Request.Context(), bson.M{"parent_id": id, "is_active": true}, nil)
	if err != nil {
		fail(c, err)
		return
	}
	categoryIDs := []uuid.UUID{id}
	for _, child := range children {
		categoryIDs = append(categoryIDs, child.ID)
	}

	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{
		"category_id": bson.M{"$in": categoryIDs},
		"is_active":   true,
	})

	products, err := cc.products.Find(c.Request.Context(), features.Filter, features.FindOptions())
	if err != nil {
		fail(c, err)
		return
	}
	total, err := cc.products.Count(c.Request.Context(), features.Filter)
	if err != nil {
		fail(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{
		"products":   products,
		"pagination": features.Meta(total),
	})
}

// CreateCategory adds a category, optionally nested under an active parent.
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	if req.ParentID != nil {
		parent, err := cc.categories.FindByID(c.Request.Context(), *req.ParentID)
		if err != nil || !parent.IsActive {
			fail(c, apperrors.BadRequest("Parent category does not exist or is inactive"))
			return
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	category := &models.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        models.Slugify(req.Name),
		Description: req.Description,
		Image:       req.Image,
		ParentID:    req.ParentID,
		IsActive:    active,
	}

	if err := cc.categories.Create(c.Request.Context(), category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			fail(c, apperrors.Conflict("A category with this name already exists"))
			return
		}
		fail(c, err)
		return
	}

	cc.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	utils.SendSuccess(c, http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory applies a partial update. A category can never become
// its own parent.
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	if _, err := cc.categories.FindByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.NotFound("Category not found"))
			return
		}
		fail(c, err)
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
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			fail(c, apperrors.BadRequest("A category cannot be its own parent"))
			return
		}
		parent, err := cc.categories.FindByID(c.Request.Context(), *req.ParentID)
		if err != nil || !parent.IsActive {
			fail(c, apperrors.BadRequest("Parent category does not exist or is inactive"))
			return
		}
		updates["parent_id"] = *req.ParentID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		fail(c, apperrors.BadRequest("No updatable fields provided"))
		return
	}

	if err := cc.categories.Update(c.Request.Context(), id, updates); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			fail(c, apperrors.Conflict("A category with this name already exists"))
			return
		}
		fail(c, err)
		return
	}

	updated, err := cc.categories.FindByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"category": updated})
}

// DeleteCategory removes a category with no children and no products.
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if _, err := cc.categories.FindByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.NotFound("Category not found"))
			return
		}
		fail(c, err)
		return
	}

	children, err := cc.categories.Count(c.Request.Context(), bson.M{"parent_id": id})
	if err != nil {
		fail(c, err)
		return
	}
	if children > 0 {
		fail(c, apperrors.BadRequest("Category has subcategories and cannot be deleted"))
		return
	}

	productCount, err := cc.products.Count(c.Request.Context(), bson.M{"category_id": id})
	if err != nil {
		fail(c, err)
		return
	}
	if productCount > 0 {
		fail(c, apperrors.BadRequest("Category has products and cannot be deleted"))
		return
	}

	if err := cc.categories.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}

	cc.logger.Info("Category deleted", zap.String("category_id", id.String()))
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Category deleted"})
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"shopswift-api/apperrors"
	"shopswift-api/middleware"
	"shopswift-api/models"
	"shopswift-api/repository"
	"shopswift-api/utils"
)

// UserController serves profile endpoints and the admin user surface.
type UserController struct {
	users    repository.UserRepository
	orders   repository.OrderRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewUserController creates a UserController.
func NewUserController(
	users repository.UserRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	logger *zap.Logger,
) *UserController {
	return &UserController{users: users, orders: orders, products: products, logger: logger}
}

// GetMe returns the authenticated user's profile.
func (uc *UserController) GetMe(c *gin.Context) {
	utils.SendSuccess(c, http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}

// UpdateMe updates the whitelisted profile fields. Role, password and the
// token secrets are not reachable through this endpoint.
func (uc *UserController) UpdateMe(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	updates := bson.M{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.PhoneNumber != "" {
		updates["phone_number"] = req.PhoneNumber
	}
	if req.Address != nil {
		updates["address"] = req.Address
	}
	if req.Avatar != "" {
		updates["avatar"] = req.Avatar
	}
	if len(updates) == 0 {
		fail(c, apperrors.BadRequest("No updatable fields provided"))
		return
	}

	if err := uc.users.Update(c.Request.Context(), user.ID, updates); err != nil {
		fail(c, err)
		return
	}

	updated, err := uc.users.FindByID(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"user": updated})
}

// DeactivateMe soft-deletes the authenticated account.
func (uc *UserController) DeactivateMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	updates := bson.M{"is_active": false}
	if err := uc.users.Update(c.Request.Context(), user.ID, updates); err != nil {
		fail(c, err)
		return
	}
	if err := uc.users.Unset(c.Request.Context(), user.ID, "refresh_token"); err != nil {
		uc.logger.Warn("Failed to clear refresh token on deactivation", zap.Error(err))
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Account deactivated"})
}

// ListUsers returns a filtered, paginated user list for admins.
func (uc *UserController) ListUsers(c *gin.Context) {
	features := utils.ParseQuery(c.Request.URL.Query(), bson.M{})

	users, err := uc.users.Find(c.Request.Context(), features.Filter, features.FindOptions())
	if err != nil {
		fail(c, err)
		return
	}
	total, err := uc.users.Count(c.Request.Context(), features.Filter)
	if err != nil {
		fail(c, err)
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{
		"users":      users,
		"pagination": features.Meta(total),
	})
}

// GetUser returns one user by id for admins.
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := uc.users.FindByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"user": user})
}

// UpdateUserRole changes an account's role. Granting Admin or Superadmin
// requires a Superadmin requester.
func (uc *UserController) UpdateUserRole(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	if !req.Role.Valid() {
		fail(c, apperrors.BadRequest("Invalid role specified"))
		return
	}

	requester := middleware.CurrentUser(c)
	if !requester.Role.CanGrantRole(req.Role) {
		fail(c, apperrors.Forbidden("Only superadmins can grant admin roles"))
		return
	}

	if err := uc.users.Update(c.Request.Context(), id, bson.M{"role": req.Role}); err != nil {
		fail(c, err)
		return
	}

	uc.logger.Info("User role updated",
		zap.String("user_id", id.String()),
		zap.String("role", string(req.Role)),
		zap.String("by", requester.ID.String()),
	)
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Role updated"})
}

// DeleteUser removes an account. Accounts referenced by orders or catalog
// products are deactivated instead of deleted, so history stays intact.
func (uc *UserController) DeleteUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if _, err := uc.users.FindByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			fail(c, apperrors.NotFound("User not found"))
			return
		}
		fail(c, err)
		return
	}

	orderCount, err := uc.orders.Count(c.Request.Context(), bson.M{"user_id": id})
	if err != nil {
		fail(c, err)
		return
	}
	productCount, err := uc.products.Count(c.Request.Context(), bson.M{"vendor_id": id})
	if err != nil {
		fail(c, err)
		return
	}

	if orderCount > 0 || productCount > 0 {
		if err := uc.users.Update(c.Request.Context(), id, bson.M{"is_active": false}); err != nil {
			fail(c, err)
			return
		}
		utils.SendSuccess(c, http.StatusOK, gin.H{
			"message": "User has order or catalog history and was deactivated instead of deleted",
		})
		return
	}

	if err := uc.users.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "User deleted"})
}

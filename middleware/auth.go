package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"shopswift-api/apperrors"
	"shopswift-api/models"
	"shopswift-api/repository"
	"shopswift-api/services"
)

const userContextKey = "currentUser"

// Protect authenticates the request from a Bearer header or the
// access_token cookie and loads the full user into the context. Tokens in
// query strings are not accepted: they leak through logs and referrers.
func Protect(tokens *services.TokenService, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abort(c, apperrors.Unauthorized("You are not logged in. Please log in to get access"))
			return
		}

		userID, err := tokens.VerifyAccessToken(tokenString)
		if err != nil {
			abort(c, apperrors.Classify(err))
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			abort(c, apperrors.Unauthorized("The user belonging to this token no longer exists"))
			return
		}
		if !user.IsActive {
			abort(c, apperrors.Unauthorized("Your account is deactivated. Please contact support"))
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

// RequireAdmin allows only Admin and Superadmin accounts through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.Role.CanAdminister() {
			abort(c, apperrors.Forbidden("You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// RequireCatalogManager allows vendors and admins through.
func RequireCatalogManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.Role.CanManageCatalog() {
			abort(c, apperrors.Forbidden("You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// SetCurrentUser stores the authenticated user on the request context.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userContextKey, user)
}

// CurrentUser returns the authenticated user set by Protect, or nil.
func CurrentUser(c *gin.Context) *models.User {
	val, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie
	}
	return ""
}

func abort(c *gin.Context, err *apperrors.AppError) {
	_ = c.Error(err)
	c.Abort()
}

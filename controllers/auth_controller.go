package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopswift-api/middleware"
	"shopswift-api/models"
	"shopswift-api/services"
	"shopswift-api/utils"
)

// AuthController exposes signup, signin and the token/password lifecycle.
type AuthController struct {
	auth      services.AuthService
	tokens    *services.TokenService
	secureEnv bool
}

// NewAuthController creates an AuthController. secureEnv marks cookies
// Secure, which should hold everywhere except local development.
func NewAuthController(auth services.AuthService, tokens *services.TokenService, secureEnv bool) *AuthController {
	return &AuthController{auth: auth, tokens: tokens, secureEnv: secureEnv}
}

// Signup registers a new account and signs it in.
func (ac *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	user, pair, appErr := ac.auth.Signup(c.Request.Context(), &req, middleware.CurrentUser(c))
	if appErr != nil {
		fail(c, appErr)
		return
	}

	ac.setAuthCookies(c, pair)
	utils.SendSuccess(c, http.StatusCreated, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// Signin verifies credentials and issues a token pair.
func (ac *AuthController) Signin(c *gin.Context) {
	var req models.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	user, pair, appErr := ac.auth.Signin(c.Request.Context(), &req)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	ac.setAuthCookies(c, pair)
	utils.SendSuccess(c, http.StatusOK, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// Refresh exchanges a refresh token (cookie or body) for a new pair.
func (ac *AuthController) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie("refresh_token")
	if refreshToken == "" {
		var req models.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	user, pair, appErr := ac.auth.Refresh(c.Request.Context(), refreshToken)
	if appErr != nil {
		fail(c, appErr)
		return
	}

	ac.setAuthCookies(c, pair)
	utils.SendSuccess(c, http.StatusOK, gin.H{
		"user":   user,
		"tokens": pair,
	})
}

// Logout invalidates the stored refresh token and clears cookies.
func (ac *AuthController) Logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if appErr := ac.auth.Logout(c.Request.Context(), user.ID); appErr != nil {
		fail(c, appErr)
		return
	}

	ac.clearAuthCookies(c)
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ForgotPassword mails a reset link to the account's address.
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	if appErr := ac.auth.ForgotPassword(c.Request.Context(), req.Email); appErr != nil {
		fail(c, appErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Password reset email sent"})
}

// ResetPassword consumes the emailed token and sets a new password.
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	if appErr := ac.auth.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); appErr != nil {
		fail(c, appErr)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Password reset successfully. Please log in again"})
}

// UpdatePassword changes the password of the logged-in user.
func (ac *AuthController) UpdatePassword(c *gin.Context) {
	var req models.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if appErr := ac.auth.UpdatePassword(c.Request.Context(), user.ID, req.CurrentPassword, req.NewPassword); appErr != nil {
		fail(c, appErr)
		return
	}

	ac.clearAuthCookies(c)
	utils.SendSuccess(c, http.StatusOK, gin.H{"message": "Password updated successfully. Please log in again"})
}

func (ac *AuthController) setAuthCookies(c *gin.Context, pair *models.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("access_token", pair.AccessToken, int(ac.tokens.AccessTTL().Seconds()), "/", "", ac.secureEnv, true)
	c.SetCookie("refresh_token", pair.RefreshToken, int(ac.tokens.RefreshTTL().Seconds()), "/", "", ac.secureEnv, true)
}

func (ac *AuthController) clearAuthCookies(c *gin.Context) {
	c.SetCookie("access_token", "", -1, "/", "", ac.secureEnv, true)
	c.SetCookie("refresh_token", "", -1, "/", "", ac.secureEnv, true)
}

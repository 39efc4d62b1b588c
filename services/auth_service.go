package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shopswift-api/apperrors"
	"shopswift-api/models"
	"shopswift-api/repository"
)

// Credential failures deliberately share one message so responses do not
// reveal whether the email exists.
const invalidCredentialsMsg = "Invalid email or password"

// AuthService handles credential verification and the token lifecycle.
type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest, requester *models.User) (*models.User, *models.TokenPair, *apperrors.AppError)
	Signin(ctx context.Context, req *models.SigninRequest) (*models.User, *models.TokenPair, *apperrors.AppError)
	Refresh(ctx context.Context, refreshToken string) (*models.User, *models.TokenPair, *apperrors.AppError)
	Logout(ctx context.Context, userID uuid.UUID) *apperrors.AppError
	ForgotPassword(ctx context.Context, email string) *apperrors.AppError
	ResetPassword(ctx context.Context, rawToken, newPassword string) *apperrors.AppError
	UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) *apperrors.AppError
}

type authServiceImpl struct {
	users       repository.UserRepository
	tokens      *TokenService
	mailer      Mailer
	resetTTL    time.Duration
	frontendURL string
	logger      *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users repository.UserRepository,
	tokens *TokenService,
	mailer Mailer,
	resetTTL time.Duration,
	frontendURL string,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		users:       users,
		tokens:      tokens,
		mailer:      mailer,
		resetTTL:    resetTTL,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Signup registers a new account. Elevation to Admin or Superadmin is
// reserved for Superadmin requesters.
func (s *authServiceImpl) Signup(ctx context.Context, req *models.SignupRequest, requester *models.User) (*models.User, *models.TokenPair, *apperrors.AppError) {
	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !role.Valid() {
		return nil, nil, apperrors.BadRequest("Invalid role specified")
	}

	requesterRole := models.RoleCustomer
	if requester != nil {
		requesterRole = requester.Role
	}
	if !requesterRole.CanGrantRole(role) {
		return nil, nil, apperrors.Forbidden("Only superadmins can create admin accounts")
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, nil, apperrors.Conflict("An account with this email already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, apperrors.Internal(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperrors.Internal(err)
	}

	user := &models.User{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       req.Email,
		Password:    string(hashed),
		Role:        role,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		IsActive:    true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, nil, apperrors.Conflict("An account with this email already exists")
		}
		return nil, nil, apperrors.Internal(err)
	}

	pair, appErr := s.issueTokens(ctx, user)
	if appErr != nil {
		return nil, nil, appErr
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, pair, nil
}

// Signin verifies credentials and rotates the stored refresh token.
func (s *authServiceImpl) Signin(ctx context.Context, req *models.SigninRequest) (*models.User, *models.TokenPair, *apperrors.AppError) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, apperrors.Unauthorized(invalidCredentialsMsg)
		}
		return nil, nil, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized(invalidCredentialsMsg)
	}

	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized("Your account is deactivated. Please contact support")
	}

	pair, appErr := s.issueTokens(ctx, user)
	if appErr != nil {
		return nil, nil, appErr
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user.ID, bson.M{"last_login": now}); err != nil {
		s.logger.Warn("Failed to record last login", zap.Error(err))
	}

	return user, pair, nil
}

// Refresh validates a refresh token against the stored copy and issues a
// new pair. Matching against storage means a rotated or stolen token is
// usable at most once.
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*models.User, *models.TokenPair, *apperrors.AppError) {
	if refreshToken == "" {
		return nil, nil, apperrors.Unauthorized("No refresh token provided")
	}

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("Invalid or expired refresh token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, apperrors.Unauthorized("Invalid or expired refresh token")
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, nil, apperrors.Unauthorized("Invalid or expired refresh token")
	}

	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized("Your account is deactivated. Please contact support")
	}

	pair, appErr := s.issueTokens(ctx, user)
	if appErr != nil {
		return nil, nil, appErr
	}
	return user, pair, nil
}

// Logout clears the stored refresh token.
func (s *authServiceImpl) Logout(ctx context.Context, userID uuid.UUID) *apperrors.AppError {
	if err := s.users.Unset(ctx, userID, "refresh_token"); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// ForgotPassword generates a reset token, stores only its hash with a
// short expiry, and mails the raw token.
func (s *authServiceImpl) ForgotPassword(ctx context.Context, email string) *apperrors.AppError {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("No account found with this email")
		}
		return apperrors.Internal(err)
	}

	rawToken, err := generateResetToken()
	if err != nil {
		return apperrors.Internal(err)
	}

	expiry := time.Now().UTC().Add(s.resetTTL)
	updates := bson.M{
		"password_reset_token":  hashResetToken(rawToken),
		"password_reset_expiry": expiry,
	}
	if err := s.users.Update(ctx, user.ID, updates); err != nil {
		return apperrors.Internal(err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, rawToken)
	body := fmt.Sprintf(
		"Password Reset Request\n\nUse the following link to reset your password:\n%s\n\nThis link expires in %d minutes. If you didn't request this, ignore this email.",
		resetURL, int(s.resetTTL.Minutes()),
	)

	if err := s.mailer.Send(user.Email, "Password Reset Request", body); err != nil {
		// Roll the token back so a half-completed request leaves no live token.
		if unsetErr := s.users.Unset(ctx, user.ID, "password_reset_token", "password_reset_expiry"); unsetErr != nil {
			s.logger.Error("Failed to clear reset token after mail failure", zap.Error(unsetErr))
		}
		return apperrors.Wrap(500, "Failed to send password reset email. Please try again later", err)
	}

	return nil
}

// ResetPassword consumes a reset token. The token is matched by hash with
// an expiry check and cleared on success, so it works exactly once.
func (s *authServiceImpl) ResetPassword(ctx context.Context, rawToken, newPassword string) *apperrors.AppError {
	user, err := s.users.FindByResetToken(ctx, hashResetToken(rawToken))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.BadRequest("Invalid or expired reset token")
		}
		return apperrors.Internal(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal(err)
	}

	if err := s.users.Update(ctx, user.ID, bson.M{"password": string(hashed)}); err != nil {
		return apperrors.Internal(err)
	}
	// Clearing the refresh token forces re-login everywhere.
	if err := s.users.Unset(ctx, user.ID, "password_reset_token", "password_reset_expiry", "refresh_token"); err != nil {
		return apperrors.Internal(err)
	}

	s.logger.Info("Password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}

// UpdatePassword changes the password of a logged-in user after verifying
// the current one.
func (s *authServiceImpl) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) *apperrors.AppError {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return apperrors.Unauthorized("Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal(err)
	}

	if err := s.users.Update(ctx, userID, bson.M{"password": string(hashed)}); err != nil {
		return apperrors.Internal(err)
	}
	if err := s.users.Unset(ctx, userID, "refresh_token"); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// issueTokens generates a pair and persists the refresh token on the user
// record, so only the latest refresh token is ever valid.
func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*models.TokenPair, *apperrors.AppError) {
	pair, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.users.Update(ctx, user.ID, bson.M{"refresh_token": pair.RefreshToken}); err != nil {
		return nil, apperrors.Internal(err)
	}
	user.RefreshToken = pair.RefreshToken
	return pair, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

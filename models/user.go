package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account roles. Authorization decisions go
// through the capability methods below rather than ad-hoc string checks.
type Role string

const (
	RoleCustomer   Role = "Customer"
	RoleVendor     Role = "Vendor"
	RoleAdmin      Role = "Admin"
	RoleSuperadmin Role = "Superadmin"
)

// roleRank orders roles by privilege for AtLeast comparisons.
var roleRank = map[Role]int{
	RoleCustomer:   0,
	RoleVendor:     1,
	RoleAdmin:      2,
	RoleSuperadmin: 3,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return roleRank[r] >= roleRank[other]
}

// CanManageCatalog reports whether the role may create or edit products.
func (r Role) CanManageCatalog() bool {
	return r == RoleVendor || r.AtLeast(RoleAdmin)
}

// CanAdminister reports whether the role may perform admin-only actions.
func (r Role) CanAdminister() bool {
	return r.AtLeast(RoleAdmin)
}

// CanGrantRole reports whether the role may assign target to another account.
// Only superadmins may mint Admin or Superadmin accounts.
func (r Role) CanGrantRole(target Role) bool {
	if target == RoleAdmin || target == RoleSuperadmin {
		return r == RoleSuperadmin
	}
	return true
}

// Address is an embedded location value object.
type Address struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Zip     string `json:"zip" bson:"zip"`
	Country string `json:"country" bson:"country"`
}

// User is an account document. Password and the token/reset secrets are
// never serialized to JSON.
type User struct {
	ID          uuid.UUID  `json:"id" bson:"_id"`
	Name        string     `json:"name" bson:"name"`
	Email       string     `json:"email" bson:"email"`
	Password    string     `json:"-" bson:"password"`
	Role        Role       `json:"role" bson:"role"`
	PhoneNumber string     `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Address     *Address   `json:"address,omitempty" bson:"address,omitempty"`
	Avatar      string     `json:"avatar,omitempty" bson:"avatar,omitempty"`
	IsActive    bool       `json:"is_active" bson:"is_active"`
	LastLogin   *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`

	RefreshToken        string     `json:"-" bson:"refresh_token,omitempty"`
	PasswordResetToken  string     `json:"-" bson:"password_reset_token,omitempty"`
	PasswordResetExpiry *time.Time `json:"-" bson:"password_reset_expiry,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// SignupRequest is the payload for account registration.
type SignupRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=50"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=8"`
	PhoneNumber string   `json:"phone_number"`
	Address     *Address `json:"address"`
	Role        Role     `json:"role"`
}

// SigninRequest is the payload for login.
type SigninRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token for clients that do not use cookies.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordRequest starts the password-reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the password-reset flow.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

// UpdatePasswordRequest changes the password of a logged-in user.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UpdateProfileRequest carries the whitelisted profile fields.
type UpdateProfileRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phone_number"`
	Address     *Address `json:"address"`
	Avatar      string   `json:"avatar"`
}

// TokenPair is an access/refresh token set returned to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppError is an operational error safe to surface to clients.
type AppError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given status code and message.
func New(statusCode int, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message}
}

// Wrap attaches an underlying cause to an operational error.
func Wrap(statusCode int, message string, err error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}

func Internal(err error) *AppError {
	return Wrap(http.StatusInternalServerError, "Something went wrong", err)
}

// Classify maps known database, token and validation error shapes into
// the operational taxonomy. Unrecognized errors come back as opaque 500s
// so their details never leak to clients.
func Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return Wrap(http.StatusNotFound, "Resource not found", err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return Wrap(http.StatusConflict, "Duplicate value for a unique field", err)
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return Wrap(http.StatusUnauthorized, "Your token has expired. Please log in again", err)
	}
	var jwtErr *jwt.ValidationError
	if errors.As(err, &jwtErr) {
		return Wrap(http.StatusUnauthorized, "Invalid token. Please log in again", err)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Wrap(http.StatusBadRequest, validationMessage(validationErrs), err)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return Wrap(http.StatusBadRequest, "Request body contains invalid JSON", err)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field != "" {
			return Wrap(http.StatusBadRequest, fmt.Sprintf("Field '%s' has an invalid type", typeErr.Field), err)
		}
		return Wrap(http.StatusBadRequest, "Request body contains invalid JSON", err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Wrap(http.StatusBadRequest, "Request body is empty or truncated", err)
	}

	return Internal(err)
}

func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Invalid input data"
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("Field '%s' is below the minimum of %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' exceeds the maximum of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Field '%s' is invalid", fe.Field())
	}
}

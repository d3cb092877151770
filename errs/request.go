package errs

import (
	"errors"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrMissingToken      = errors.New("missing access token")
	ErrInvalidToken      = errors.New("invalid access token")
	ErrInsufficientRole  = errors.New("insufficient role")
	ErrDuplicateEmail    = errors.New("user with this email already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrMissingDetails    = errors.New("missing details")
	ErrAlreadyVerified   = errors.New("account already verified")
)

// One-time code errors
var (
	ErrOtpMismatch         = errors.New("otp does not match")
	ErrOtpExpired          = errors.New("otp has expired")
	ErrOtpInvalidOrExpired = errors.New("otp is invalid or expired")
	ErrNoActiveOtp         = errors.New("no active otp")
)

// Validation failures of domain input (empty title, empty comment, ...).
var ErrValidation = errors.New("validation error")

var (
	Unauthorized = &ApiErr{StatusCode: http.StatusUnauthorized, err: ErrNotAuthenticated}
)

func NewValidationError(field, details string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    details,
		Field:      field,
	}
}

func NewMissingDetailsError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrMissingDetails}
}

// Authentication & Authorization Error Constructors
func NewNotAuthenticatedError(details string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrNotAuthenticated,
		Details:    details,
		Field:      "token",
	}
}

func NewMissingTokenError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrNotAuthenticated,
		Details:    ErrMissingToken.Error(),
		Field:      "token",
		Cause:      ErrMissingToken,
	}
}

func NewInvalidTokenError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        ErrNotAuthenticated,
		Details:    ErrInvalidToken.Error(),
		Field:      "token",
		Cause:      cause,
	}
}

func NewInsufficientRoleError(details string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusForbidden,
		err:        ErrForbidden,
		Details:    details,
		Cause:      ErrInsufficientRole,
	}
}

func NewDuplicateEmailError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusConflict, err: ErrDuplicateEmail, Field: "email"}
}

func NewUserNotFoundError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: ErrUserNotFound}
}

func NewIncorrectPasswordError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusUnauthorized, err: ErrIncorrectPassword, Field: "password"}
}

func NewAlreadyVerifiedError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrAlreadyVerified}
}

// One-time code error constructors
func NewOtpMismatchError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrOtpMismatch, Field: "otp"}
}

func NewOtpExpiredError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrOtpExpired, Field: "otp"}
}

func NewOtpInvalidOrExpiredError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrOtpInvalidOrExpired, Field: "otp"}
}

func NewNoActiveOtpError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrNoActiveOtp, Field: "otp"}
}

package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Callers match with errors.Is; concrete errors wrap one of these.
var (
	ErrValidation      = errors.New("validation failed")
	ErrAuthentication  = errors.New("invalid email or password")
	ErrTokenInvalid    = errors.New("invalid or expired token")
	ErrAuthorization   = errors.New("not allowed")
	ErrNotFound        = errors.New("not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCartChanged     = errors.New("cart no longer matches the payment")
	ErrPaymentRequired = errors.New("payment not confirmed")
	ErrUpstream        = errors.New("upstream failure")
)

// ValidationError carries the first violated rule for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFound wraps ErrNotFound with the missing resource name.
func NotFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

// Upstream wraps a persistence or provider failure. Both the kind and the
// cause stay reachable through errors.Is / errors.As.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}

// Status maps an error to the HTTP status the boundary should answer with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrTokenInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrCartChanged):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show to end users. Internal detail of
// upstream and unexpected failures never leaves the process.
func PublicMessage(err error) string {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrAuthentication):
		return ErrAuthentication.Error()
	case errors.Is(err, ErrTokenInvalid):
		return ErrTokenInvalid.Error()
	case errors.Is(err, ErrAuthorization):
		return ErrAuthorization.Error()
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrEmptyCart):
		return ErrEmptyCart.Error()
	case errors.Is(err, ErrCartChanged):
		return ErrCartChanged.Error()
	case errors.Is(err, ErrPaymentRequired):
		return ErrPaymentRequired.Error()
	default:
		return "something went wrong, please try again later"
	}
}

// IsClientError reports whether err is an expected, user-caused failure that
// does not need to be logged as an error.
func IsClientError(err error) bool {
	s := Status(err)
	return s >= 400 && s < 500
}

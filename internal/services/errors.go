package services

import (
	"errors"
	"net/http"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrRetryNotAllowed     = errors.New("retry not allowed in current status")
	ErrNoUpload            = errors.New("no uploaded photo found for order")
	ErrRetryCreditRequired = errors.New("no free preview attempts left")
	ErrConflict            = errors.New("order was modified concurrently")
	ErrUpstream            = errors.New("upstream provider error")
	ErrPhotoNotFound       = errors.New("no phone photo found yet")
	ErrInvalidToken        = errors.New("unknown or expired upload token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotConfigured       = errors.New("not configured")
)

// HTTPStatus maps service errors onto response codes. Anything unrecognised
// is an internal error.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrRetryNotAllowed),
		errors.Is(err, ErrNoUpload),
		errors.Is(err, ErrPhotoNotFound):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRetryCreditRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

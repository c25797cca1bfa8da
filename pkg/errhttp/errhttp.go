// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/lostfound/pkg/auth"
	"github.com/ghuser/lostfound/pkg/httpx"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	WriteSafeError(w, err, false)
}

// WriteSafeError is WriteError with 5xx messages masked when production is set.
func WriteSafeError(w http.ResponseWriter, err error, production bool) {
	status := mapErrorToStatus(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, production))
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, itemdomain.ErrValidation):
		return http.StatusBadRequest // 400
	case errors.Is(err, itemdomain.ErrUnauthorized),
		errors.Is(err, auth.ErrNotAdmin),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized // 401
	case errors.Is(err, itemdomain.ErrItemNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, itemdomain.ErrItemAlreadyExists):
		return http.StatusConflict // 409
	default:
		// ErrBlobStore, ErrRepository and anything unrecognized.
		return http.StatusInternalServerError // 500
	}
}

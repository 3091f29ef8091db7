package handlers

import (
	"net/http"

	"rental-system/internal/status"

	"github.com/pocketbase/pocketbase/apis"
)

// toAPIError translates engine error codes to the HTTP boundary exactly
// once. Uncoded errors stay opaque 500s.
func toAPIError(err error) error {
	switch status.CodeOf(err) {
	case status.CodeNotFound:
		return apis.NewNotFoundError(err.Error(), nil)
	case status.CodeForbidden:
		return apis.NewForbiddenError(err.Error(), nil)
	case status.CodeInvalidInput, status.CodeInvalidState:
		return apis.NewBadRequestError(err.Error(), nil)
	case status.CodeConflict:
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)
	case status.CodeUnavailable:
		return apis.NewApiError(http.StatusServiceUnavailable, err.Error(), nil)
	default:
		return apis.NewInternalServerError("internal error", err)
	}
}

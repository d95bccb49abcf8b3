package ui

import (
	"errors"

	"github.com/tvo/listkeeper/internal/auth"
	"github.com/tvo/listkeeper/internal/store"
)

// FriendlyError maps store errors to the short messages shown in view
// banners.
func FriendlyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrConflict):
		return "Changed by someone else, view refreshed. Try again."
	case errors.Is(err, store.ErrNotFound):
		return "Not found. It may have been deleted."
	case errors.Is(err, store.ErrIntegrity):
		return err.Error()
	case errors.Is(err, store.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, auth.ErrBadCredentials),
		errors.Is(err, auth.ErrInactive),
		errors.Is(err, auth.ErrRegistrationClosed):
		return err.Error()
	default:
		return "Something went wrong: " + err.Error()
	}
}

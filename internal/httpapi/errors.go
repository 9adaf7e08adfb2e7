package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/middleware"
	"github.com/mmynk/invoicer/internal/service"
	"github.com/mmynk/invoicer/internal/storage"
)

// respondError maps a service error onto a status and writes it. resource
// names the entity in not-found and conflict messages.
func respondError(c *gin.Context, resource string, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong):
		middleware.Abort(c, http.StatusBadRequest, middleware.CodeInvalidRequest, err.Error(), nil)
	case errors.Is(err, auth.ErrEmailExists):
		middleware.Abort(c, http.StatusBadRequest, middleware.CodeInvalidRequest, "email already registered", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.Abort(c, http.StatusUnauthorized, middleware.CodeUnauthorized, "incorrect email or password", nil)
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		middleware.Abort(c, http.StatusUnauthorized, middleware.CodeUnauthorized, err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		middleware.Abort(c, http.StatusForbidden, middleware.CodeForbidden, "not enough permissions", nil)
	case errors.Is(err, storage.ErrNotFound):
		middleware.Abort(c, http.StatusNotFound, middleware.CodeNotFound, resource+" not found", nil)
	case errors.Is(err, storage.ErrConflict):
		middleware.Abort(c, http.StatusConflict, middleware.CodeConflict, resource+" is still referenced by other records", nil)
	default:
		slog.Error("Request failed", "route", c.FullPath(), "error", err)
		middleware.Abort(c, http.StatusInternalServerError, middleware.CodeInternal, "internal server error", nil)
	}
}

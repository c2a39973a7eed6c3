package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
	"github.com/iliyamo/vehicle-tag-registry/internal/service"
)

// PublicHandler serves the anonymous scan path.
type PublicHandler struct {
	Resolver *service.Resolver
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(resolver *service.Resolver) *PublicHandler {
	if resolver == nil {
		panic("nil resolver passed to NewPublicHandler")
	}
	return &PublicHandler{Resolver: resolver}
}

// Resolve handles GET /v1/resolve?id=...&location=... The id query
// parameter may be an obfuscated QR payload, a printed code or an
// internal id. The payload's base64 can contain '/', so it travels as
// a query parameter rather than a path segment. A blank tag scanned
// outside the companion app answers 423 with no tag data.
func (h *PublicHandler) Resolve(c echo.Context) error {
	identifier := c.QueryParam("id")
	if identifier == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id is required"})
	}
	view, err := h.Resolver.Resolve(c.Request().Context(), identifier,
		appTrusted(c), c.QueryParam("location"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, view)
	case errors.Is(err, service.ErrLocked):
		return c.JSON(http.StatusLocked, echo.Map{
			"error":   "tag not activated",
			"message": "Scan this tag with the companion app to activate it.",
		})
	case errors.Is(err, repository.ErrTagNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
	default:
		c.Logger().Errorf("resolve: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

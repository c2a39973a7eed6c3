package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
	"github.com/iliyamo/vehicle-tag-registry/internal/service"
)

// AdminHandler serves batch issuance, sheet rendering and tag
// reactivation. All routes require the ADMIN role.
type AdminHandler struct {
	Issuer    *service.Issuer
	Lifecycle *service.Lifecycle
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(issuer *service.Issuer, lifecycle *service.Lifecycle) *AdminHandler {
	if issuer == nil || lifecycle == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Issuer: issuer, Lifecycle: lifecycle}
}

// CreateBatch handles POST /v1/admin/batches. The response carries the
// batch id and every code with its QR payload, so the print shop can
// be fed without a second request.
func (h *AdminHandler) CreateBatch(c echo.Context) error {
	var body struct {
		Count int `json:"count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	result, err := h.Issuer.IssueBatch(c.Request().Context(), body.Count)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, result)
	case errors.Is(err, service.ErrBatchSize):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("issue batch: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// Sheet handles GET /v1/admin/batches/:id/sheet and renders the
// printable HTML sheet for an existing batch.
func (h *AdminHandler) Sheet(c echo.Context) error {
	batchID := c.Param("id")
	tags, err := h.Issuer.SheetForBatch(c.Request().Context(), batchID)
	switch {
	case err == nil:
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(http.StatusOK)
		return service.WriteSheet(c.Response(), batchID, tags)
	case errors.Is(err, service.ErrBatchNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "batch not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// Reactivate handles POST /v1/admin/tags/:id/reactivate, moving a
// disabled tag back to active. 409 means the tag is not disabled.
func (h *AdminHandler) Reactivate(c echo.Context) error {
	tagID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag id"})
	}
	tag, err := h.Lifecycle.Reactivate(c.Request().Context(), tagID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"tag": tag})
	case errors.Is(err, repository.ErrTagNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "tag is not disabled"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

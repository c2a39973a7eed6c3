package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-tag-registry/internal/model"
	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
	"github.com/iliyamo/vehicle-tag-registry/internal/service"
)

// TagHandler serves the authenticated owner API: claiming, editing,
// privacy toggles, disabling and scan history. Phone changes are not
// handled here; they belong to OTPHandler.
type TagHandler struct {
	Lifecycle *service.Lifecycle
	ScanLimit int // default page size for scan history
}

// NewTagHandler constructs a TagHandler.
func NewTagHandler(lifecycle *service.Lifecycle, scanLimit int) *TagHandler {
	if lifecycle == nil {
		panic("nil lifecycle passed to NewTagHandler")
	}
	if scanLimit <= 0 {
		scanLimit = 50
	}
	return &TagHandler{Lifecycle: lifecycle, ScanLimit: scanLimit}
}

// Claim handles POST /v1/tags/claim. It binds a blank tag to the
// caller. 409 means the tag is already bound; clients fall back to
// their register-as-new flow on that answer.
func (h *TagHandler) Claim(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Code        string `json:"code"`
		Nickname    string `json:"nickname"`
		PlateNumber string `json:"plate_number"`
		VehicleType string `json:"vehicle_type"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	tag, err := h.Lifecycle.Claim(c.Request().Context(), body.Code, userID,
		body.Nickname, body.PlateNumber, body.VehicleType)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"tag": tag})
	case errors.Is(err, service.ErrPlateRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plate number is required"})
	case errors.Is(err, repository.ErrTagNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
	case errors.Is(err, repository.ErrAlreadyClaimed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "tag already claimed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// Update handles PATCH /v1/tags/:id. A patch naming a new emergency
// phone is not applied at all: the caller receives otp_required and
// must resubmit the same patch through the OTP flow.
func (h *TagHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tagID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag id"})
	}
	var patch model.TagPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tag, err := h.Lifecycle.UpdateFields(c.Request().Context(), tagID, userID, patch)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"tag": tag})
	case errors.Is(err, service.ErrOTPRequired):
		return c.JSON(http.StatusAccepted, echo.Map{"otp_required": true})
	case errors.Is(err, repository.ErrTagNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// ToggleFlag handles POST /v1/tags/:id/flags/:flag. Only the closed
// set of privacy flags is togglable and only by the owner.
func (h *TagHandler) ToggleFlag(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tagID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag id"})
	}
	tag, err := h.Lifecycle.ToggleFlag(c.Request().Context(), tagID, userID, c.Param("flag"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"tag": tag})
	case errors.Is(err, repository.ErrUnknownFlag):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown privacy flag"})
	case errors.Is(err, repository.ErrTagNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// Disable handles POST /v1/tags/:id/disable. Disabling is terminal for
// owners; reactivation is an admin operation.
func (h *TagHandler) Disable(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tagID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag id"})
	}
	err = h.Lifecycle.Disable(c.Request().Context(), tagID, userID)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrTagNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// List handles GET /v1/tags and returns the caller's tags.
func (h *TagHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tags, err := h.Lifecycle.ListTags(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tags})
}

// Scans handles GET /v1/tags/:id/scans. It returns the most recent
// scan events (the ?limit parameter is capped by the configured page
// size) plus the total count.
func (h *TagHandler) Scans(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tagID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag id"})
	}
	limit := h.ScanLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	events, total, err := h.Lifecycle.Scans(c.Request().Context(), tagID, userID, limit)
	switch {
	case err == nil:
		if events == nil {
			events = []model.ScanEvent{}
		}
		return c.JSON(http.StatusOK, echo.Map{"items": events, "total": total})
	case errors.Is(err, repository.ErrTagNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

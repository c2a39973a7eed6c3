package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-tag-registry/internal/model"
	"github.com/iliyamo/vehicle-tag-registry/internal/repository"
	"github.com/iliyamo/vehicle-tag-registry/internal/service"
)

// OTPHandler serves the two-step emergency-phone change: send a code
// to the new number, then verify it and commit the parked edit.
type OTPHandler struct {
	Gate *service.OTPGate
}

// NewOTPHandler constructs an OTPHandler.
func NewOTPHandler(gate *service.OTPGate) *OTPHandler {
	if gate == nil {
		panic("nil gate passed to NewOTPHandler")
	}
	return &OTPHandler{Gate: gate}
}

// Send handles POST /v1/tags/:id/phone/otp. The request carries the
// new phone and the rest of the proposed edit; nothing is persisted
// until the code is verified.
func (h *OTPHandler) Send(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tagID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag id"})
	}
	var body struct {
		Phone string         `json:"phone"`
		Patch model.TagPatch `json:"patch"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	err = h.Gate.SendOTP(c.Request().Context(), tagID, userID, body.Phone, body.Patch)
	switch {
	case err == nil:
		return c.JSON(http.StatusAccepted, echo.Map{"message": "verification code sent"})
	case errors.Is(err, service.ErrPhoneRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone number is required"})
	case errors.Is(err, repository.ErrTagNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		c.Logger().Errorf("send otp: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not send verification code"})
	}
}

// Verify handles POST /v1/tags/:id/phone/verify. On a matching code
// the edit captured at send time, merged with any patch submitted now,
// is committed together with the verified phone.
func (h *OTPHandler) Verify(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tagID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tag id"})
	}
	var body struct {
		Phone string         `json:"phone"`
		Code  string         `json:"code"`
		Patch model.TagPatch `json:"patch"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tag, err := h.Gate.VerifyAndCommit(c.Request().Context(), tagID, userID,
		body.Phone, body.Code, body.Patch)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"tag": tag})
	case errors.Is(err, service.ErrNoPendingOTP):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no pending verification for this number"})
	case errors.Is(err, service.ErrOTPExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "verification code expired, request a new one"})
	case errors.Is(err, service.ErrInvalidOTP):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid verification code"})
	case errors.Is(err, repository.ErrTagNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tag not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

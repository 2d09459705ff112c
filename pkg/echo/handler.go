// Package echo exposes the tip pipeline to an echo-based web app,
// mirroring the gin adapter.
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorjar/creatorjar"
)

// Handler adapts the tip service and access gate to echo routes.
type Handler struct {
	service *creatorjar.TipService
	gate    creatorjar.AccessGate
}

// NewHandler creates a handler over the given service and gate.
func NewHandler(service *creatorjar.TipService, gate creatorjar.AccessGate) *Handler {
	return &Handler{service: service, gate: gate}
}

// Register mounts the tip routes.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/tips/split", h.split)
	e.POST("/tips", h.send)
	e.GET("/access", h.access)
}

func (h *Handler) split(c echo.Context) error {
	split, err := h.service.CalculateSplit(c.QueryParam("amount"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}
	return c.JSON(http.StatusOK, split)
}

func (h *Handler) send(c echo.Context) error {
	var intent creatorjar.PaymentIntent
	if err := c.Bind(&intent); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_request", "message": err.Error()})
	}

	receipt, err := h.service.SendTip(c.Request().Context(), intent)
	if err != nil {
		switch creatorjar.CodeOf(err) {
		case creatorjar.ErrCodeConfirmationTimeout:
			return c.JSON(http.StatusAccepted, map[string]any{"receipt": receipt, "error": errorBody(err)})
		case creatorjar.ErrCodeRecordFailed:
			return c.JSON(http.StatusOK, map[string]any{"receipt": receipt, "warning": errorBody(err)})
		}
		return c.JSON(statusForCode(creatorjar.CodeOf(err)), errorBody(err))
	}
	return c.JSON(http.StatusOK, receipt)
}

func (h *Handler) access(c echo.Context) error {
	tipper := creatorjar.Address(c.QueryParam("tipper"))
	creator := creatorjar.Address(c.QueryParam("creator"))
	if tipper == "" || creator == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"code": "invalid_request", "message": "tipper and creator are required"})
	}

	ok, err := h.gate.HasAccess(c.Request().Context(), tipper, creator)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err))
	}
	return c.JSON(http.StatusOK, map[string]bool{"hasAccess": ok})
}

func statusForCode(code string) int {
	switch code {
	case creatorjar.ErrCodeInvalidRequest, creatorjar.ErrCodeInvalidAmount, creatorjar.ErrCodeAmountTooSmall:
		return http.StatusBadRequest
	case creatorjar.ErrCodeUserRejected:
		return http.StatusConflict
	case creatorjar.ErrCodeSubmissionRejected:
		return http.StatusUnprocessableEntity
	case creatorjar.ErrCodeNetworkUnavailable, creatorjar.ErrCodeConnectionFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorBody(err error) any {
	var te *creatorjar.TipError
	if errors.As(err, &te) {
		return te
	}
	return map[string]string{"code": "internal", "message": err.Error()}
}

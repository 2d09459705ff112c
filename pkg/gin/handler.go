// Package gin exposes the tip pipeline to a gin-based web app:
// fee-breakdown display, tip submission, and access-gate checks.
package gin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creatorjar/creatorjar"
)

// Handler adapts the tip service and access gate to gin routes.
type Handler struct {
	service *creatorjar.TipService
	gate    creatorjar.AccessGate
}

// NewHandler creates a handler over the given service and gate.
func NewHandler(service *creatorjar.TipService, gate creatorjar.AccessGate) *Handler {
	return &Handler{service: service, gate: gate}
}

// Register mounts the tip routes on the given router group.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/tips/split", h.split)
	r.POST("/tips", h.send)
	r.GET("/access", h.access)
}

func (h *Handler) split(c *gin.Context) {
	split, err := h.service.CalculateSplit(c.Query("amount"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, split)
}

func (h *Handler) send(c *gin.Context) {
	var intent creatorjar.PaymentIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": err.Error()})
		return
	}

	receipt, err := h.service.SendTip(c.Request.Context(), intent)
	if err != nil {
		switch creatorjar.CodeOf(err) {
		case creatorjar.ErrCodeConfirmationTimeout:
			// Not a failure: the payment may still commit. Hand back the
			// proof reference for a later status check.
			c.JSON(http.StatusAccepted, gin.H{"receipt": receipt, "error": errorBody(err)})
		case creatorjar.ErrCodeRecordFailed:
			// The payment succeeded; only the bookkeeping write failed.
			c.JSON(http.StatusOK, gin.H{"receipt": receipt, "warning": errorBody(err)})
		default:
			c.JSON(statusForCode(creatorjar.CodeOf(err)), errorBody(err))
		}
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *Handler) access(c *gin.Context) {
	tipper := creatorjar.Address(c.Query("tipper"))
	creator := creatorjar.Address(c.Query("creator"))
	if tipper == "" || creator == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "message": "tipper and creator are required"})
		return
	}

	ok, err := h.gate.HasAccess(c.Request.Context(), tipper, creator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasAccess": ok})
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

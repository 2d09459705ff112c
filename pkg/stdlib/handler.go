// Package stdlib exposes the tip pipeline over net/http without any
// framework dependency.
package stdlib

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/creatorjar/creatorjar"
)

// Handler adapts the tip service and access gate to net/http.
type Handler struct {
	service *creatorjar.TipService
	gate    creatorjar.AccessGate
}

// NewHandler creates a handler over the given service and gate.
func NewHandler(service *creatorjar.TipService, gate creatorjar.AccessGate) *Handler {
	return &Handler{service: service, gate: gate}
}

// Register mounts the tip routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /tips/split", h.split)
	mux.HandleFunc("POST /tips", h.send)
	mux.HandleFunc("GET /access", h.access)
}

func (h *Handler) split(w http.ResponseWriter, r *http.Request) {
	split, err := h.service.CalculateSplit(r.URL.Query().Get("amount"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err))
		return
	}
	writeJSON(w, http.StatusOK, split)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var intent creatorjar.PaymentIntent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "invalid_request", "message": err.Error()})
		return
	}

	receipt, err := h.service.SendTip(r.Context(), intent)
	if err != nil {
		switch creatorjar.CodeOf(err) {
		case creatorjar.ErrCodeConfirmationTimeout:
			writeJSON(w, http.StatusAccepted, map[string]any{"receipt": receipt, "error": errorBody(err)})
		case creatorjar.ErrCodeRecordFailed:
			writeJSON(w, http.StatusOK, map[string]any{"receipt": receipt, "warning": errorBody(err)})
		default:
			writeJSON(w, statusForCode(creatorjar.CodeOf(err)), errorBody(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (h *Handler) access(w http.ResponseWriter, r *http.Request) {
	tipper := creatorjar.Address(r.URL.Query().Get("tipper"))
	creator := creatorjar.Address(r.URL.Query().Get("creator"))
	if tipper == "" || creator == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "invalid_request", "message": "tipper and creator are required"})
		return
	}

	ok, err := h.gate.HasAccess(r.Context(), tipper, creator)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasAccess": ok})
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

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

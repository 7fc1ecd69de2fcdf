package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

// Signup rule violations are reported as 500 with the rule message.

func (h *Handler) joinActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.signupCaller(w, r)
	if !ok {
		return
	}
	signup, err := h.signups.Join(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	h.publish(r.Context(), domain.SignupChangedEvent(*signup))
	writeData(w, http.StatusCreated, newSignupView(*signup))
}

func (h *Handler) cancelSignup(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.signupCaller(w, r)
	if !ok {
		return
	}
	signup, err := h.signups.Cancel(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	h.publish(r.Context(), domain.SignupChangedEvent(*signup))
	writeData(w, http.StatusOK, newSignupView(*signup))
}

// signupCaller requires an identity and an empty JSON object body.
func (h *Handler) signupCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := viewerFrom(r).UserID
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	if !emptyObjectBody(r) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return "", false
	}
	return userID, true
}

// emptyObjectBody accepts a missing or unparseable body as {} and rejects any
// JSON value other than an object without fields.
func emptyObjectBody(r *http.Request) bool {
	if r.Body == nil {
		return true
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		return true
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return false
	}
	return len(fields) == 0
}

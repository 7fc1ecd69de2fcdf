package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Maqingtian/campus-hub/internal/persistence"
)

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := viewerFrom(r).UserID
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		limit = parsed
	}
	cursor, err := persistence.DecodeCursor(query.Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	page, err := h.notifications.ListNotifications(r.Context(), userID, limit, cursor)
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	writeData(w, http.StatusOK, newNotificationPageView(page))
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID := viewerFrom(r).UserID
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.notifications.MarkRead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"read": true})
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID := viewerFrom(r).UserID
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	updated, err := h.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"updated": updated})
}

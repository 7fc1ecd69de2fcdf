package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Maqingtian/campus-hub/internal/domain"
)

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFrom(r)
	filter := domain.ActivityFilter{IncludeHidden: viewer.Admin}
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		activityType, ok := domain.ParseActivityType(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		filter.Type = activityType
	}

	activities, err := h.activities.ListActivities(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	views := make([]ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, newActivityView(a))
	}
	writeData(w, http.StatusOK, views)
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if !h.decode(w, r, &req) {
		return
	}

	activity, err := h.activities.CreateActivity(r.Context(), domain.CreateActivityInput{
		Type:        domain.ActivityType(req.Type),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		CreatorID:   viewerFrom(r).UserID,
	})
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	h.publish(r.Context(), domain.ActivityCreatedEvent(*activity))
	writeData(w, http.StatusCreated, newActivityView(*activity))
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request) {
	activity, state, err := h.activities.GetActivity(r.Context(), chi.URLParam(r, "id"), viewerFrom(r))
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	writeData(w, http.StatusOK, ActivityDetailView{
		ActivityView: newActivityView(*activity),
		IsJoined:     state.IsJoined,
	})
}

func (h *Handler) setActivityHidden(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFrom(r)
	if viewer.UserID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req SetHiddenRequest
	if !h.decode(w, r, &req) {
		return
	}

	activity, err := h.activities.SetActivityHidden(r.Context(), chi.URLParam(r, "id"), *req.Hidden, viewer)
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	h.publish(r.Context(), domain.ActivityVisibilityChangedEvent(*activity))
	writeData(w, http.StatusOK, newActivityView(*activity))
}

func (h *Handler) listActivitiesAdmin(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFrom(r)
	if viewer.UserID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "Invalid request")
			return
		}
		limit = parsed
	}

	items, err := h.activities.ListActivitiesAdmin(r.Context(), limit, viewer)
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	views := make([]ActivityOverviewView, 0, len(items))
	for _, item := range items {
		views = append(views, ActivityOverviewView{
			ActivityView:  newActivityView(item.Activity),
			CanceledCount: item.CanceledCount,
		})
	}
	writeData(w, http.StatusOK, views)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	viewer := viewerFrom(r)
	if viewer.UserID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	stats, err := h.activities.Stats(r.Context(), viewer)
	if err != nil {
		h.writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	writeData(w, http.StatusOK, StatsView{
		Activities:    stats.Activities,
		Signups:       stats.Signups,
		Notifications: stats.Notifications,
	})
}

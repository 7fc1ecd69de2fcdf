// Package api exposes the campus-hub HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Maqingtian/campus-hub/internal/auth"
	"github.com/Maqingtian/campus-hub/internal/domain"
)

// Option configures optional handler dependencies.
type Option func(*Handler)

// WithLogger overrides the logger used for unexpected errors and publish failures.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithHealthCheck makes /healthz report 503 while check fails.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(h *Handler) {
		h.health = check
	}
}

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	activities    *domain.ActivityService
	signups       *domain.SignupService
	notifications *domain.NotificationService
	publisher     domain.EventPublisher
	validator     *requestValidator
	logger        *log.Logger
	health        func(context.Context) error
}

// NewHandler builds a Handler. A nil publisher discards events.
func NewHandler(activities *domain.ActivityService, signups *domain.SignupService, notifications *domain.NotificationService, publisher domain.EventPublisher, opts ...Option) *Handler {
	if publisher == nil {
		publisher = domain.NoopPublisher{}
	}
	h := &Handler{
		activities:    activities,
		signups:       signups,
		notifications: notifications,
		publisher:     publisher,
		validator:     newRequestValidator(),
		logger:        log.New(log.Writer(), "[api] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/activities", func(r chi.Router) {
			r.Get("/", h.listActivities)
			r.Post("/", h.createActivity)
			r.Get("/{id}", h.getActivity)
			r.Post("/{id}/signup", h.joinActivity)
			r.Delete("/{id}/signup", h.cancelSignup)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Get("/activities", h.listActivitiesAdmin)
			r.Post("/activities/{id}/hide", h.setActivityHidden)
			r.Get("/stats", h.stats)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.listNotifications)
			r.Post("/read-all", h.markAllNotificationsRead)
			r.Post("/{id}/read", h.markNotificationRead)
		})
	})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Service unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// publish hands a committed change to the event pipeline. Failures are logged,
// never returned: the unit of work has already committed.
func (h *Handler) publish(ctx context.Context, event domain.Event) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Printf("publish %s (aggregate=%s) failed: %v", event.Type, event.AggregateID, err)
	}
}

func viewerFrom(r *http.Request) domain.Viewer {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		return domain.Viewer{}
	}
	return domain.Viewer{UserID: claims.Subject, Admin: claims.IsAdmin()}
}

// errorStatus maps domain errors onto status codes. ruleStatus is used for
// business-rule violations; the signup endpoints report those as 500.
func errorStatus(err error, ruleStatus int) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, "Service unavailable"
	case errors.Is(err, domain.ErrActivityNotFound):
		return ruleStatus, "Activity not found"
	case errors.Is(err, domain.ErrAlreadyJoined):
		return ruleStatus, "Already joined"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return ruleStatus, "Activity is full"
	case errors.Is(err, domain.ErrSignupNotFound):
		return ruleStatus, "Signup not found"
	case errors.Is(err, domain.ErrNotificationNotFound):
		return ruleStatus, "Notification not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error, ruleStatus int) {
	status, message := errorStatus(err, ruleStatus)
	if status == http.StatusInternalServerError && message == "Internal server error" {
		h.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeError(w, status, message)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}

type envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{OK: false, Error: message})
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{OK: true, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

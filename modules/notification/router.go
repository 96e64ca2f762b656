package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// RouterOptions configures the notification module router. Service is
// required; Scheduler is optional and enables the admin endpoints when set.
type RouterOptions struct {
	Service   *Service
	Scheduler *Scheduler
}

// Router returns the module's HTTP surface, meant to be mounted by the
// dashboard's API layer:
//
//	r := chi.NewRouter()
//	r.Mount("/notifications", notification.Router(notification.RouterOptions{
//	    Service:   svc,
//	    Scheduler: sched,
//	}))
//
// Authentication is the host application's concern; handlers trust the
// user_id query parameter the host injects after authenticating.
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Get("/", listNotifications(opts.Service))
	r.Post("/read-all", markAllAsRead(opts.Service))
	r.Post("/{id}/read", markAsRead(opts.Service))
	r.Delete("/{id}", deleteNotification(opts.Service))
	r.Put("/preferences/{type}", updatePreferences(opts.Service))

	if opts.Scheduler != nil {
		r.Route("/scheduler", func(admin chi.Router) {
			admin.Get("/status", schedulerStatus(opts.Scheduler))
			admin.Post("/start", schedulerStart(opts.Scheduler))
			admin.Post("/stop", schedulerStop(opts.Scheduler))
			admin.Post("/run", schedulerRunOnce(opts.Scheduler))
		})
	}

	return r
}

func listNotifications(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := queryUserID(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		filter := ListFilter{
			Channel:    Channel(q.Get("channel")),
			Status:     Status(q.Get("status")),
			UnreadOnly: q.Get("unread_only") == "true",
		}
		filter.Limit, _ = strconv.Atoi(q.Get("limit"))
		filter.Offset, _ = strconv.Atoi(q.Get("offset"))

		items, total, err := svc.GetUserNotifications(r.Context(), userID, filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"notifications": items,
			"total":         total,
		})
	}
}

func markAsRead(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := queryUserID(w, r)
		if !ok {
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "invalid notification id", http.StatusBadRequest)
			return
		}
		if err := svc.MarkAsRead(r.Context(), id, userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func markAllAsRead(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := queryUserID(w, r)
		if !ok {
			return
		}
		count, err := svc.MarkAllAsRead(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"marked": count})
	}
}

func deleteNotification(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := queryUserID(w, r)
		if !ok {
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "invalid notification id", http.StatusBadRequest)
			return
		}
		if err := svc.DeleteNotification(r.Context(), id, userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func updatePreferences(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := queryUserID(w, r)
		if !ok {
			return
		}
		notifType := chi.URLParam(r, "type")

		var patch PreferencePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		pref, err := svc.UpdatePreferences(r.Context(), userID, notifType, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pref)
	}
}

func schedulerStatus(sched *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sched.Status())
	}
}

func schedulerStart(sched *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The polling loop must outlive this request, so it runs on the
		// background context rather than the request's.
		if err := sched.Start(context.Background()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sched.Status())
	}
}

func schedulerStop(sched *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sched.Stop()
		writeJSON(w, http.StatusOK, sched.Status())
	}
}

func schedulerRunOnce(sched *Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := sched.RunOnce(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func queryUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		http.Error(w, "invalid or missing user_id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotificationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidDispatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrSchedulerRunning), errors.Is(err, ErrPassInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

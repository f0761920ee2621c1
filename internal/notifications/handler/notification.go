package handler

import (
	"net/http"

	"rentora/internal/notifications/service"
	httputil "rentora/pkg/http"
	"rentora/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type NotificationHandler struct {
	service service.NotificationService
	log     *logger.Logger
}

func NewNotificationHandler(service service.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log,
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/notifications", h.List)
	router.POST("/api/v1/notifications/read-all", h.MarkAllRead)
	router.PUT("/api/v1/notifications/:id/read", h.MarkRead)
	router.DELETE("/api/v1/notifications/:id", h.Delete)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, total, err := h.service.ListByUser(r.Context(), actor.ID, unreadOnly, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, notifications, total, limit, offset)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.MarkRead(r.Context(), actor.ID, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	count, err := h.service.MarkAllRead(r.Context(), actor.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]int64{"marked_read": count})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor.ID, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

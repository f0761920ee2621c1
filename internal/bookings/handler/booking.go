package handler

import (
	"encoding/json"
	"net/http"

	"rentora/internal/bookings/service"
	"rentora/internal/lifecycle"
	httputil "rentora/pkg/http"
	"rentora/pkg/logger"
	"rentora/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service     service.BookingService
	coordinator lifecycle.Coordinator
	log         *logger.Logger
}

func NewBookingHandler(service service.BookingService, coordinator lifecycle.Coordinator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:     service,
		coordinator: coordinator,
		log:         log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.POST("/api/v1/bookings/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/:id/approve", h.Approve)
	router.POST("/api/v1/bookings/:id/reject", h.Reject)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), actor, &booking); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

// List returns the actor's bookings. Tenants see the requests they made;
// with view=landlord a landlord sees the requests made against their rooms,
// optionally filtered by status.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

	var bookings []*model.Booking
	var total int64
	if r.URL.Query().Get("view") == "landlord" {
		status := model.BookingStatus(r.URL.Query().Get("status"))
		bookings, total, err = h.service.ListByLandlord(r.Context(), actor.ID, status, limit, offset)
	} else {
		bookings, total, err = h.service.ListByTenant(r.Context(), actor.ID, limit, offset)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, offset)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Cancel(r.Context(), actor, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, rental, err := h.coordinator.Approve(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, approveResponse{Booking: booking, Rental: rental})
}

type approveResponse struct {
	Booking *model.Booking `json:"booking"`
	Rental  *model.Rental  `json:"rental"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req rejectRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
			return
		}
	}

	if err := h.coordinator.Reject(r.Context(), actor, ps.ByName("id"), req.Reason); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

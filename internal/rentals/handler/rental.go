package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"rentora/internal/lifecycle"
	"rentora/internal/rentals/service"
	httputil "rentora/pkg/http"
	"rentora/pkg/logger"
	"rentora/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RentalHandler struct {
	service     service.RentalService
	coordinator lifecycle.Coordinator
	log         *logger.Logger
}

func NewRentalHandler(service service.RentalService, coordinator lifecycle.Coordinator, log *logger.Logger) *RentalHandler {
	return &RentalHandler{
		service:     service,
		coordinator: coordinator,
		log:         log,
	}
}

func (h *RentalHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/rentals", h.List)
	router.GET("/api/v1/rentals/:id", h.GetByID)
	router.POST("/api/v1/rentals/:id/terminate", h.Terminate)
	router.POST("/api/v1/rentals/:id/complete", h.Complete)
}

// List returns the actor's rentals. Tenants see the rooms they rent; with
// view=landlord a landlord sees the rentals on their properties, optionally
// filtered by status. With room_id the response is the room's active rental.
func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if roomID := r.URL.Query().Get("room_id"); roomID != "" {
		rental, err := h.service.GetActiveByRoom(r.Context(), actor, roomID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteSuccess(w, rental)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var rentals []*model.Rental
	var total int64
	if r.URL.Query().Get("view") == "landlord" {
		status := model.RentalStatus(r.URL.Query().Get("status"))
		rentals, total, err = h.service.ListByLandlord(r.Context(), actor.ID, status, limit, offset)
	} else {
		rentals, total, err = h.service.ListByTenant(r.Context(), actor.ID, limit, offset)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, rentals, total, limit, offset)
}

func (h *RentalHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rental, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, rental)
}

type terminateRequest struct {
	Reason          string    `json:"reason"`
	EndDate         time.Time `json:"end_date"`
	DepositReturned bool      `json:"deposit_returned"`
}

func (h *RentalHandler) Terminate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req terminateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
			return
		}
	}

	if err := h.coordinator.Terminate(r.Context(), actor, ps.ByName("id"), req.Reason, req.EndDate, req.DepositReturned); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

type completeRequest struct {
	DepositReturned bool `json:"deposit_returned"`
}

func (h *RentalHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req completeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
			return
		}
	}

	if err := h.coordinator.Complete(r.Context(), actor, ps.ByName("id"), req.DepositReturned); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

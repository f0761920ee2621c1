package handler

import (
	"encoding/json"
	"net/http"

	"rentora/internal/properties/service"
	httputil "rentora/pkg/http"
	"rentora/pkg/logger"
	"rentora/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PropertyHandler struct {
	service service.PropertyService
	log     *logger.Logger
}

func NewPropertyHandler(service service.PropertyService, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		service: service,
		log:     log,
	}
}

func (h *PropertyHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/properties", h.Create)
	router.GET("/api/v1/properties", h.List)
	router.GET("/api/v1/properties/:id", h.GetByID)
	router.DELETE("/api/v1/properties/:id", h.Delete)

	router.POST("/api/v1/properties/:id/rooms", h.AddRoom)
	router.GET("/api/v1/properties/:id/rooms", h.ListRooms)
	router.GET("/api/v1/rooms/:id", h.GetRoom)
	router.PUT("/api/v1/rooms/:id/maintenance", h.SetMaintenance)
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var property model.Property
	if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), actor, &property); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, property)
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

	ownerID := actor.ID
	if actor.IsAdmin() {
		if q := r.URL.Query().Get("owner_id"); q != "" {
			ownerID = q
		}
	}

	properties, total, err := h.service.ListByOwner(r.Context(), ownerID, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, properties, total, limit, offset)
}

func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	property, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, property)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), actor, ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PropertyHandler) AddRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var room model.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}
	room.PropertyID = ps.ByName("id")

	if err := h.service.AddRoom(r.Context(), actor, &room); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, room)
}

func (h *PropertyHandler) ListRooms(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rooms, err := h.service.ListRooms(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, rooms)
}

func (h *PropertyHandler) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.GetRoom(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, room)
}

type maintenanceRequest struct {
	Enable bool `json:"enable"`
}

func (h *PropertyHandler) SetMaintenance(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req maintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.SetRoomMaintenance(r.Context(), actor, ps.ByName("id"), req.Enable); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

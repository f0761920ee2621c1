package handler

import (
	"encoding/json"
	"net/http"

	"rentora/internal/payments/service"
	httputil "rentora/pkg/http"
	"rentora/pkg/logger"
	"rentora/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments", h.Create)
	router.GET("/api/v1/payments", h.List)
	router.POST("/api/v1/payment-runs", h.Generate)
	router.GET("/api/v1/payments/:id", h.GetByID)
	router.POST("/api/v1/payments/:id/confirm", h.Confirm)
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var payment model.Payment
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Create(r.Context(), actor, &payment); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, payment)
}

// List returns payments the actor is a party to. With rental_id the listing
// is scoped to one rental; otherwise the actor's own payments as tenant,
// optionally filtered by status.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

	var payments []*model.Payment
	var total int64
	if rentalID := r.URL.Query().Get("rental_id"); rentalID != "" {
		payments, total, err = h.service.ListByRental(r.Context(), actor, rentalID, limit, offset)
	} else {
		status := model.PaymentStatus(r.URL.Query().Get("status"))
		payments, total, err = h.service.ListByTenant(r.Context(), actor.ID, status, limit, offset)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, payments, total, limit, offset)
}

type generateRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (h *PaymentHandler) Generate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	result, err := h.service.GenerateMonthly(r.Context(), actor, req.Month, req.Year)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, result)
}

func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	payment, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, payment)
}

type confirmRequest struct {
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ExtractActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req confirmRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			})
			return
		}
	}

	payment, err := h.service.Confirm(r.Context(), actor, ps.ByName("id"), req.Method, req.TransactionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, payment)
}

package handler

import (
	"encoding/json"
	"net/http"

	"hallbook/internal/bookings/service"
	apperrors "hallbook/pkg/errors"
	httputil "hallbook/pkg/http"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	summary, err := h.service.Create(r.Context(), ps.ByName("resourceId"), requesterID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, summary); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requesterID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	summaries, err := h.service.ListByRequester(r.Context(), requesterID)
	if err != nil {
		h.writeError(w, "ListMine", err)
		return
	}

	if err := httputil.WriteList(w, summaries, len(summaries)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListMine", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	summary, err := h.service.GetByID(r.Context(), ps.ByName("id"), requesterID)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", summary)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requesterID, err := httputil.ExtractUserID(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	summary, err := h.service.Cancel(r.Context(), ps.ByName("id"), requesterID)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	h.writeSuccess(w, "Cancel", summary)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	start := query.Get("start")
	end := query.Get("end")

	if start == "" || end == "" {
		h.writeError(w, "Availability", apperrors.InvalidInput("Both 'start' and 'end' query parameters are required"))
		return
	}

	availability, err := h.service.Availability(r.Context(), ps.ByName("resourceId"), start, end)
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}

	h.writeSuccess(w, "Availability", availability)
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/resources/:resourceId/bookings", h.Create)
	router.GET("/api/v1/resources/:resourceId/availability", h.Availability)
	router.GET("/api/v1/bookings/me", h.ListMine)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
}

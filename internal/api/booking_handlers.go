package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"urbpark/internal/entities"
	apperrors "urbpark/internal/errors"
)

// BookingService is the reservation surface the handlers call into.
type BookingService interface {
	CreateBooking(req *entities.BookingRequest) (*entities.BookingResponse, error)
	GetBooking(id int) (*entities.BookingResponse, error)
	GetBookingByToken(token string) (*entities.BookingResponse, error)
	ListUserBookings(userID int) ([]*entities.BookingResponse, error)
	ListBookings(date, status string) ([]*entities.BookingResponse, error)
	ConfirmBooking(id int, req *entities.ConfirmRequest) (*entities.BookingResponse, error)
	CancelBooking(ctx context.Context, id int) (*entities.CancelResponse, error)
	CreateExtensionCharge(ctx context.Context, id int, req *entities.ExtensionOrderRequest) (*entities.ExtensionOrderResponse, error)
	ConfirmExtension(ctx context.Context, id int, req *entities.ConfirmExtensionRequest) (*entities.BookingResponse, error)
	SlotStatus(areaID int, start, end *time.Time) (*entities.SlotStatusResponse, error)
	SessionStatus(id int) (*entities.SessionStatusResponse, error)
	EntryScan(id int) (*entities.BookingResponse, error)
	ExitScan(id int) (*entities.BookingResponse, error)
}

type BookingHandler struct {
	Service BookingService
}

func NewBookingHandler(svc BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Validation("invalid request body"))
		return
	}
	booking, err := h.Service.CreateBooking(&req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	booking, err := h.Service.GetBooking(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// GetBookingByToken resolves a booking by its opaque token, the identifier
// embedded in the QR code.
func (h *BookingHandler) GetBookingByToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	if token == "" {
		respondError(w, apperrors.Validation("invalid token"))
		return
	}
	booking, err := h.Service.GetBookingByToken(token)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ListUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	bookings, err := h.Service.ListUserBookings(userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entities.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Validation("invalid request body"))
		return
	}
	booking, err := h.Service.ConfirmBooking(id, &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.Service.CancelBooking(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *BookingHandler) CreateExtensionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entities.ExtensionOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Validation("invalid request body"))
		return
	}
	order, err := h.Service.CreateExtensionCharge(r.Context(), id, &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *BookingHandler) ConfirmExtension(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req entities.ConfirmExtensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Validation("invalid request body"))
		return
	}
	booking, err := h.Service.ConfirmExtension(r.Context(), id, &req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	status, err := h.Service.SessionStatus(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (h *BookingHandler) EntryScan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	booking, err := h.Service.EntryScan(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ExitScan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	booking, err := h.Service.ExitScan(id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// SlotStatus renders per-slot availability for an area. start_time/end_time
// are optional; without them every slot reports AVAILABLE.
func (h *BookingHandler) SlotStatus(w http.ResponseWriter, r *http.Request) {
	areaID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var start, end *time.Time
	startParam := r.URL.Query().Get("start_time")
	endParam := r.URL.Query().Get("end_time")
	if startParam != "" || endParam != "" {
		s, err := time.Parse(time.RFC3339, startParam)
		if err != nil {
			respondError(w, apperrors.Validation("start_time must be RFC3339"))
			return
		}
		e, err := time.Parse(time.RFC3339, endParam)
		if err != nil {
			respondError(w, apperrors.Validation("end_time must be RFC3339"))
			return
		}
		start, end = &s, &e
	}

	status, err := h.Service.SlotStatus(areaID, start, end)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (h *BookingHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		respondError(w, apperrors.Validation("invalid "+name))
		return 0, false
	}
	return id, true
}

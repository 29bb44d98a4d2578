package api

import (
	"log"
	"net/http"

	"urbpark/internal/service"
)

type AdminHandler struct {
	Service BookingService
	Jobs    *service.JobService
}

func NewAdminHandler(svc BookingService, jobs *service.JobService) *AdminHandler {
	return &AdminHandler{Service: svc, Jobs: jobs}
}

// ListBookings returns all bookings, optionally filtered by ?date=YYYY-MM-DD
// and ?status=.
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")

	bookings, err := h.Service.ListBookings(date, status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, bookings)
}

// RunSweeps triggers both ledger sweeps immediately instead of waiting for the
// next scheduled tick.
func (h *AdminHandler) RunSweeps(w http.ResponseWriter, r *http.Request) {
	if err := h.Jobs.ExpireStalePendingBookings(); err != nil {
		log.Printf("Manual sweep: %v", err)
		respondError(w, err)
		return
	}
	if err := h.Jobs.CompleteFinishedBookings(); err != nil {
		log.Printf("Manual sweep: %v", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "sweeps completed"})
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbpark/internal/entities"
	apperrors "urbpark/internal/errors"
)

// stubBookingService lets each test pin the result of the method under test.
type stubBookingService struct {
	booking *entities.BookingResponse
	cancel  *entities.CancelResponse
	err     error
}

func (s *stubBookingService) CreateBooking(req *entities.BookingRequest) (*entities.BookingResponse, error) {
	return s.booking, s.err
}

func (s *stubBookingService) GetBooking(id int) (*entities.BookingResponse, error) {
	return s.booking, s.err
}

func (s *stubBookingService) GetBookingByToken(token string) (*entities.BookingResponse, error) {
	return s.booking, s.err
}

func (s *stubBookingService) ListUserBookings(userID int) ([]*entities.BookingResponse, error) {
	return []*entities.BookingResponse{s.booking}, s.err
}

func (s *stubBookingService) ListBookings(date, status string) ([]*entities.BookingResponse, error) {
	return []*entities.BookingResponse{s.booking}, s.err
}

func (s *stubBookingService) ConfirmBooking(id int, req *entities.ConfirmRequest) (*entities.BookingResponse, error) {
	return s.booking, s.err
}

func (s *stubBookingService) CancelBooking(ctx context.Context, id int) (*entities.CancelResponse, error) {
	return s.cancel, s.err
}

func (s *stubBookingService) CreateExtensionCharge(ctx context.Context, id int, req *entities.ExtensionOrderRequest) (*entities.ExtensionOrderResponse, error) {
	return nil, s.err
}

func (s *stubBookingService) ConfirmExtension(ctx context.Context, id int, req *entities.ConfirmExtensionRequest) (*entities.BookingResponse, error) {
	return s.booking, s.err
}

func (s *stubBookingService) SlotStatus(areaID int, start, end *time.Time) (*entities.SlotStatusResponse, error) {
	return &entities.SlotStatusResponse{AreaID: areaID}, s.err
}

func (s *stubBookingService) SessionStatus(id int) (*entities.SessionStatusResponse, error) {
	return nil, s.err
}

func (s *stubBookingService) EntryScan(id int) (*entities.BookingResponse, error) {
	return s.booking, s.err
}

func (s *stubBookingService) ExitScan(id int) (*entities.BookingResponse, error) {
	return s.booking, s.err
}

func newTestRouter(svc BookingService) *mux.Router {
	h := NewBookingHandler(svc)
	r := mux.NewRouter()
	r.HandleFunc("/api/bookings", h.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{id}", h.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{id}/cancel", h.CancelBooking).Methods("POST")
	r.HandleFunc("/api/parking-areas/{id}/slots-status", h.SlotStatus).Methods("GET")
	return r
}

func TestCreateBookingRejectsMalformedBody(t *testing.T) {
	r := newTestRouter(&stubBookingService{})

	req := httptest.NewRequest("POST", "/api/bookings", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeValidation, body["code"])
}

func TestCreateBookingReturnsCreated(t *testing.T) {
	svc := &stubBookingService{booking: &entities.BookingResponse{ID: 42, BookingStatus: "PENDING"}}
	r := newTestRouter(svc)

	req := httptest.NewRequest("POST", "/api/bookings", strings.NewReader(`{"slot_id":1}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body entities.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 42, body.ID)
}

func TestGetBookingMapsServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.NotFound("booking"), http.StatusNotFound, apperrors.CodeNotFound},
		{"conflict", apperrors.Conflict("slot not available"), http.StatusConflict, apperrors.CodeConflict},
		{"expired", apperrors.Expired("booking expired"), http.StatusGone, apperrors.CodeExpired},
		{"unexpected", assert.AnError, http.StatusInternalServerError, apperrors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubBookingService{err: tt.err})

			req := httptest.NewRequest("GET", "/api/bookings/1", nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestGetBookingRejectsNonNumericID(t *testing.T) {
	r := newTestRouter(&stubBookingService{})

	req := httptest.NewRequest("GET", "/api/bookings/abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlotStatusRejectsBadWindow(t *testing.T) {
	r := newTestRouter(&stubBookingService{})

	req := httptest.NewRequest("GET", "/api/parking-areas/1/slots-status?start_time=yesterday&end_time=today", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

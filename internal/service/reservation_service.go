package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"urbpark/internal/db"
	"urbpark/internal/entities"
	apperrors "urbpark/internal/errors"
)

const (
	currency       = "inr"
	gatewayTimeout = 10 * time.Second
)

// BookingStore is what the reservation service needs from the booking ledger.
type BookingStore interface {
	CreateBooking(b *db.Booking) error
	GetBookingByID(id int) (*db.Booking, error)
	GetBookingByToken(token string) (*db.Booking, error)
	ListBookingsByUser(userID int) ([]*db.Booking, error)
	ListBookings(date, status string) ([]*db.Booking, error)
	ConflictingSlotIDs(areaID int, start, end time.Time, statuses []string) ([]int, error)
	SlotHasConflict(slotID int, start, end time.Time, excludeBookingID int) (bool, error)
	ExpireIfDue(id int, now time.Time) (bool, error)
	ConfirmBooking(id int, paymentID, paymentMethod string, now time.Time) (bool, error)
	CancelBooking(id int, paymentStatus string, refundID sql.NullString, refundAmount sql.NullFloat64, refundedAt sql.NullTime, now time.Time) (bool, error)
	ExtendBooking(id int, newEnd time.Time, newAmount float64, paymentID string, now time.Time) (bool, error)
	MarkEntry(id int, now time.Time) (bool, error)
	MarkExit(id int, now time.Time) (bool, error)
}

// SlotStore serves the slot inventory, which is read-only here.
type SlotStore interface {
	GetAreaByID(id int) (*db.ParkingArea, error)
	ListSlotsByArea(areaID int) ([]db.Slot, error)
	GetSlotWithRate(slotID int) (*db.Slot, float64, error)
}

type ReservationService struct {
	bookings BookingStore
	slots    SlotStore
	gateway  PaymentGateway
	validate *validator.Validate
	now      func() time.Time
}

func NewReservationService(bookings BookingStore, slots SlotStore, gateway PaymentGateway) *ReservationService {
	return &ReservationService{
		bookings: bookings,
		slots:    slots,
		gateway:  gateway,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var activeStatuses = []string{db.BookingPending, db.BookingConfirmed}

// CreateBooking places a PENDING hold on the slot for the requested window.
// The conflict check and insert are serialized per slot by the store.
func (s *ReservationService) CreateBooking(req *entities.BookingRequest) (*entities.BookingResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.Validation("end_time must be after start_time")
	}

	_, rate, err := s.slots.GetSlotWithRate(req.SlotID)
	if err != nil {
		return nil, err
	}
	if rate <= 0 {
		return nil, apperrors.Validation("parking area has no valid hourly rate")
	}

	now := s.now()
	booking := &db.Booking{
		Token:         uuid.NewString(),
		SlotID:        req.SlotID,
		Phone:         req.Phone,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Amount:        ComputeAmount(req.StartTime, req.EndTime, rate),
		BookingStatus: db.BookingPending,
		PaymentStatus: db.PaymentPending,
		ExpiresAt:     now.Add(db.PendingTTL),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.UserID != nil {
		booking.UserID = sql.NullInt64{Int64: int64(*req.UserID), Valid: true}
	}
	if req.VehicleNumber != "" {
		booking.VehicleNumber = sql.NullString{String: req.VehicleNumber, Valid: true}
	}

	if err := s.bookings.CreateBooking(booking); err != nil {
		return nil, err
	}
	return entities.NewBookingResponse(booking), nil
}

func (s *ReservationService) GetBooking(id int) (*entities.BookingResponse, error) {
	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	return entities.NewBookingResponse(booking), nil
}

func (s *ReservationService) GetBookingByToken(token string) (*entities.BookingResponse, error) {
	booking, err := s.bookings.GetBookingByToken(token)
	if err != nil {
		return nil, err
	}
	booking, err = s.expireIfDue(booking)
	if err != nil {
		return nil, err
	}
	return entities.NewBookingResponse(booking), nil
}

func (s *ReservationService) ListUserBookings(userID int) ([]*entities.BookingResponse, error) {
	bookings, err := s.bookings.ListBookingsByUser(userID)
	if err != nil {
		return nil, err
	}
	responses := make([]*entities.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		b, err = s.expireIfDue(b)
		if err != nil {
			return nil, err
		}
		responses = append(responses, entities.NewBookingResponse(b))
	}
	return responses, nil
}

func (s *ReservationService) ListBookings(date, status string) ([]*entities.BookingResponse, error) {
	bookings, err := s.bookings.ListBookings(date, status)
	if err != nil {
		return nil, err
	}
	responses := make([]*entities.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, entities.NewBookingResponse(b))
	}
	return responses, nil
}

// ConfirmBooking applies PENDING -> CONFIRMED once payment succeeded. An
// expired hold is transitioned to EXPIRED before the confirm is rejected.
func (s *ReservationService) ConfirmBooking(id int, req *entities.ConfirmRequest) (*entities.BookingResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	booking, err := s.bookings.GetBookingByID(id)
	if err != nil {
		return nil, err
	}

	if booking.BookingStatus == db.BookingPending && s.now().After(booking.ExpiresAt) {
		if _, err := s.bookings.ExpireIfDue(id, s.now()); err != nil {
			return nil, err
		}
		return nil, apperrors.Expired("booking expired")
	}
	if booking.BookingStatus != db.BookingPending {
		return nil, apperrors.InvalidState("booking is not in pending state")
	}

	applied, err := s.bookings.ConfirmBooking(id, req.PaymentID, req.PaymentMethod, s.now())
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.InvalidState("booking is not in pending state")
	}

	confirmed, err := s.bookings.GetBookingByID(id)
	if err != nil {
		return nil, err
	}
	return entities.NewBookingResponse(confirmed), nil
}

// CancelBooking cancels an active booking and computes the tiered refund.
// Gateway refund failures downgrade the reported refund outcome but never
// block the cancellation itself.
func (s *ReservationService) CancelBooking(ctx context.Context, id int) (*entities.CancelResponse, error) {
	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}

	if booking.IsTerminal() {
		return nil, apperrors.InvalidState("cannot cancel this booking")
	}
	if booking.EntryScanned {
		return nil, apperrors.EntryAlreadyScanned()
	}

	now := s.now()
	var refundAmount float64
	var refundPercentage int
	if booking.PaymentStatus == db.PaymentPaid {
		refundAmount, refundPercentage = ComputeRefund(now, booking.StartTime, booking.EndTime, booking.Amount, booking.EntryScanned)
	}

	refundStatus := entities.RefundNone
	var refundID sql.NullString
	if refundAmount > 0 {
		refundStatus = entities.RefundSuccess
		if booking.PaymentID.Valid {
			rctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
			defer cancel()

			gatewayRefundID, err := s.gateway.Refund(rctx, booking.PaymentID.String, refundAmount, map[string]string{
				"booking_id":        fmt.Sprintf("%d", booking.ID),
				"reason":            "cancellation before entry",
				"refund_percentage": fmt.Sprintf("%d", refundPercentage),
			})
			if err != nil {
				log.Printf("Refund for booking %d failed: %v", booking.ID, err)
				refundStatus = entities.RefundFailed
				if errors.Is(err, ErrGatewayUnavailable) {
					refundStatus = entities.RefundPending
				}
			} else {
				refundID = sql.NullString{String: gatewayRefundID, Valid: true}
			}
		}
	}

	paymentStatus := db.PaymentFailed
	var refundAmountCol sql.NullFloat64
	var refundedAt sql.NullTime
	if refundAmount > 0 {
		paymentStatus = db.PaymentPartialRefund
		if refundPercentage == 100 {
			paymentStatus = db.PaymentRefunded
		}
		refundAmountCol = sql.NullFloat64{Float64: refundAmount, Valid: true}
		refundedAt = sql.NullTime{Time: now, Valid: true}
	}

	applied, err := s.bookings.CancelBooking(id, paymentStatus, refundID, refundAmountCol, refundedAt, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.InvalidState("cannot cancel this booking")
	}

	cancelled, err := s.bookings.GetBookingByID(id)
	if err != nil {
		return nil, err
	}

	resp := &entities.CancelResponse{
		Booking:          entities.NewBookingResponse(cancelled),
		RefundAmount:     refundAmount,
		RefundPercentage: refundPercentage,
		RefundStatus:     refundStatus,
		Message:          "Booking cancelled.",
	}
	if refundID.Valid {
		resp.RefundID = &refundID.String
	}
	if refundAmount > 0 {
		verb := "initiated"
		if refundStatus == entities.RefundPending {
			verb = "pending"
		} else if refundStatus == entities.RefundFailed {
			verb = "failed, will be retried"
		}
		resp.Message = fmt.Sprintf("Booking cancelled. %d%% refund %s.", refundPercentage, verb)
	}
	return resp, nil
}

// CreateExtensionCharge prices the requested extension and opens a charge
// intent for it with the payment gateway.
func (s *ReservationService) CreateExtensionCharge(ctx context.Context, id int, req *entities.ExtensionOrderRequest) (*entities.ExtensionOrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, apperrors.InvalidState("cannot extend this booking")
	}

	_, rate, err := s.slots.GetSlotWithRate(booking.SlotID)
	if err != nil {
		return nil, err
	}
	amount := ExtensionAmount(rate, req.ExtraMinutes)
	if amount <= 0 {
		return nil, apperrors.Validation("extension amount must be greater than 0")
	}

	gctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	reference := fmt.Sprintf("booking-ext-%d-%d", booking.ID, s.now().Unix())
	orderID, err := s.gateway.CreateChargeIntent(gctx, amount, currency, reference)
	if err != nil {
		return nil, err
	}

	return &entities.ExtensionOrderResponse{
		OrderID:  orderID,
		Amount:   amount,
		Currency: currency,
	}, nil
}

// ConfirmExtension verifies the payment signature, re-checks the extended
// interval for conflicts on the slot, then moves end_time forward.
func (s *ReservationService) ConfirmExtension(ctx context.Context, id int, req *entities.ConfirmExtensionRequest) (*entities.BookingResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return nil, apperrors.PaymentVerificationFailed()
	}

	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, apperrors.InvalidState("cannot extend this booking")
	}

	newEnd := booking.EndTime.Add(time.Duration(req.ExtraMinutes) * time.Minute)
	conflict, err := s.bookings.SlotHasConflict(booking.SlotID, booking.StartTime, newEnd, booking.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("extended window overlaps another booking on this slot")
	}

	_, rate, err := s.slots.GetSlotWithRate(booking.SlotID)
	if err != nil {
		return nil, err
	}
	newAmount := booking.Amount + ExtensionAmount(rate, req.ExtraMinutes)

	applied, err := s.bookings.ExtendBooking(id, newEnd, newAmount, req.PaymentID, s.now())
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.InvalidState("cannot extend this booking")
	}

	extended, err := s.bookings.GetBookingByID(id)
	if err != nil {
		return nil, err
	}
	return entities.NewBookingResponse(extended), nil
}

// SlotStatus renders per-slot availability for a window. With no window every
// slot reports AVAILABLE and no occupancy query runs.
func (s *ReservationService) SlotStatus(areaID int, start, end *time.Time) (*entities.SlotStatusResponse, error) {
	if _, err := s.slots.GetAreaByID(areaID); err != nil {
		return nil, err
	}
	slots, err := s.slots.ListSlotsByArea(areaID)
	if err != nil {
		return nil, err
	}

	occupied := map[int]bool{}
	if start != nil && end != nil {
		if !end.After(*start) {
			return nil, apperrors.Validation("end_time must be after start_time")
		}
		ids, err := s.bookings.ConflictingSlotIDs(areaID, *start, *end, activeStatuses)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			occupied[id] = true
		}
	}

	resp := &entities.SlotStatusResponse{AreaID: areaID, Slots: make([]entities.SlotStatus, 0, len(slots))}
	for _, slot := range slots {
		status := entities.SlotAvailable
		if occupied[slot.ID] {
			status = entities.SlotOccupied
		}
		resp.Slots = append(resp.Slots, entities.SlotStatus{
			SlotID:   slot.ID,
			Number:   slot.Number,
			Category: slot.Category,
			Status:   status,
		})
	}
	return resp, nil
}

// SessionStatus is the QR-screen view of a booking.
func (s *ReservationService) SessionStatus(id int) (*entities.SessionStatusResponse, error) {
	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resp := &entities.SessionStatusResponse{
		SessionStatus: entities.SessionInactive,
		Booking:       entities.NewBookingResponse(booking),
	}

	switch booking.BookingStatus {
	case db.BookingCancelled:
		resp.SessionStatus = entities.SessionCancelled
		resp.StatusMessage = "Booking cancelled"
		if booking.RefundAmount.Valid {
			resp.StatusMessage = fmt.Sprintf("Cancelled, refund of %.0f initiated", booking.RefundAmount.Float64)
		}
	case db.BookingExpired:
		resp.SessionStatus = entities.SessionExpired
		resp.StatusMessage = "Booking expired"
	case db.BookingCompleted:
		resp.SessionStatus = entities.SessionCompleted
		resp.StatusMessage = "Parking session completed"
	case db.BookingConfirmed:
		switch {
		case now.Before(booking.StartTime):
			resp.SessionStatus = entities.SessionUpcoming
			minutesUntil := int(booking.StartTime.Sub(now).Minutes()) + 1
			resp.StatusMessage = fmt.Sprintf("Available in %d minutes", minutesUntil)
		case now.After(booking.EndTime):
			resp.SessionStatus = entities.SessionExpired
			resp.StatusMessage = "Session ended"
		default:
			resp.ShowQR = true
			resp.SessionStatus = entities.SessionActive
			resp.StatusMessage = "Active, scan at entry"
			if booking.EntryScanned {
				resp.StatusMessage = "Active, vehicle inside"
			}
		}
	default:
		resp.StatusMessage = "Awaiting payment"
	}
	return resp, nil
}

// EntryScan records the gate entry scan on a confirmed booking inside its
// window.
func (s *ReservationService) EntryScan(id int) (*entities.BookingResponse, error) {
	booking, err := s.loadBooking(id)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus != db.BookingConfirmed {
		return nil, apperrors.InvalidState("booking is not confirmed")
	}
	if booking.EntryScanned {
		return nil, apperrors.InvalidState("entry already scanned")
	}

	now := s.now()
	if now.Before(booking.StartTime) || now.After(booking.EndTime) {
		return nil, apperrors.InvalidState("session is not active")
	}

	applied, err := s.bookings.MarkEntry(id, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.InvalidState("entry already scanned")
	}

	scanned, err := s.bookings.GetBookingByID(id)
	if err != nil {
		return nil, err
	}
	return entities.NewBookingResponse(scanned), nil
}

// ExitScan records the gate exit scan and completes the session.
func (s *ReservationService) ExitScan(id int) (*entities.BookingResponse, error) {
	booking, err := s.bookings.GetBookingByID(id)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus != db.BookingConfirmed || !booking.EntryScanned {
		return nil, apperrors.InvalidState("no active parking session to close")
	}

	applied, err := s.bookings.MarkExit(id, s.now())
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperrors.InvalidState("no active parking session to close")
	}

	completed, err := s.bookings.GetBookingByID(id)
	if err != nil {
		return nil, err
	}
	return entities.NewBookingResponse(completed), nil
}

// loadBooking reads a booking and lazily expires a PENDING hold past its
// deadline before anything else sees it.
func (s *ReservationService) loadBooking(id int) (*db.Booking, error) {
	booking, err := s.bookings.GetBookingByID(id)
	if err != nil {
		return nil, err
	}
	return s.expireIfDue(booking)
}

func (s *ReservationService) expireIfDue(booking *db.Booking) (*db.Booking, error) {
	if booking.BookingStatus != db.BookingPending || !s.now().After(booking.ExpiresAt) {
		return booking, nil
	}
	applied, err := s.bookings.ExpireIfDue(booking.ID, s.now())
	if err != nil {
		return nil, err
	}
	if applied {
		booking.BookingStatus = db.BookingExpired
	}
	return booking, nil
}

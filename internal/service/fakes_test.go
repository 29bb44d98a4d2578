package service

import (
	"context"
	"database/sql"
	"time"

	"urbpark/internal/db"
	apperrors "urbpark/internal/errors"
)

// fakeBookingStore keeps bookings in memory and applies the same guarded
// transitions the SQL store does.
type fakeBookingStore struct {
	nextID   int
	bookings map[int]*db.Booking
	slotArea map[int]int
}

func newFakeBookingStore(slotArea map[int]int) *fakeBookingStore {
	return &fakeBookingStore{nextID: 1, bookings: map[int]*db.Booking{}, slotArea: slotArea}
}

func (f *fakeBookingStore) isActive(status string) bool {
	return status == db.BookingPending || status == db.BookingConfirmed
}

func (f *fakeBookingStore) CreateBooking(b *db.Booking) error {
	if _, ok := f.slotArea[b.SlotID]; !ok {
		return apperrors.NotFound("parking slot")
	}
	for _, other := range f.bookings {
		if other.SlotID == b.SlotID && f.isActive(other.BookingStatus) &&
			Overlaps(b.StartTime, b.EndTime, other.StartTime, other.EndTime) {
			return apperrors.Conflict("slot not available for selected time")
		}
	}
	b.ID = f.nextID
	f.nextID++
	stored := *b
	f.bookings[b.ID] = &stored
	return nil
}

func (f *fakeBookingStore) GetBookingByID(id int) (*db.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking")
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingStore) GetBookingByToken(token string) (*db.Booking, error) {
	for _, b := range f.bookings {
		if b.Token == token {
			copied := *b
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("booking")
}

func (f *fakeBookingStore) ListBookingsByUser(userID int) ([]*db.Booking, error) {
	var out []*db.Booking
	for _, b := range f.bookings {
		if b.UserID.Valid && int(b.UserID.Int64) == userID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListBookings(date, status string) ([]*db.Booking, error) {
	var out []*db.Booking
	for _, b := range f.bookings {
		if status != "" && b.BookingStatus != status {
			continue
		}
		if date != "" && b.StartTime.Format("2006-01-02") != date {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeBookingStore) ConflictingSlotIDs(areaID int, start, end time.Time, statuses []string) ([]int, error) {
	inStatuses := func(s string) bool {
		for _, st := range statuses {
			if st == s {
				return true
			}
		}
		return false
	}
	var ids []int
	for _, b := range f.bookings {
		if f.slotArea[b.SlotID] == areaID && inStatuses(b.BookingStatus) &&
			Overlaps(start, end, b.StartTime, b.EndTime) {
			ids = append(ids, b.SlotID)
		}
	}
	return ids, nil
}

func (f *fakeBookingStore) SlotHasConflict(slotID int, start, end time.Time, excludeBookingID int) (bool, error) {
	for _, b := range f.bookings {
		if b.ID == excludeBookingID || b.SlotID != slotID || !f.isActive(b.BookingStatus) {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingStore) ExpireIfDue(id int, now time.Time) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.BookingStatus != db.BookingPending || !now.After(b.ExpiresAt) {
		return false, nil
	}
	b.BookingStatus = db.BookingExpired
	b.UpdatedAt = now
	return true, nil
}

func (f *fakeBookingStore) ConfirmBooking(id int, paymentID, paymentMethod string, now time.Time) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.BookingStatus != db.BookingPending {
		return false, nil
	}
	b.BookingStatus = db.BookingConfirmed
	b.PaymentStatus = db.PaymentPaid
	b.PaymentID = sql.NullString{String: paymentID, Valid: true}
	b.PaymentMethod = sql.NullString{String: paymentMethod, Valid: true}
	b.UpdatedAt = now
	return true, nil
}

func (f *fakeBookingStore) CancelBooking(id int, paymentStatus string, refundID sql.NullString, refundAmount sql.NullFloat64, refundedAt sql.NullTime, now time.Time) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || !f.isActive(b.BookingStatus) {
		return false, nil
	}
	b.BookingStatus = db.BookingCancelled
	b.PaymentStatus = paymentStatus
	b.RefundID = refundID
	b.RefundAmount = refundAmount
	b.RefundedAt = refundedAt
	b.UpdatedAt = now
	return true, nil
}

func (f *fakeBookingStore) ExtendBooking(id int, newEnd time.Time, newAmount float64, paymentID string, now time.Time) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.IsTerminal() {
		return false, nil
	}
	b.EndTime = newEnd
	b.Amount = newAmount
	b.PaymentID = sql.NullString{String: paymentID, Valid: true}
	b.UpdatedAt = now
	return true, nil
}

func (f *fakeBookingStore) MarkEntry(id int, now time.Time) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.BookingStatus != db.BookingConfirmed || b.EntryScanned {
		return false, nil
	}
	b.EntryScanned = true
	b.EntryTime = sql.NullTime{Time: now, Valid: true}
	b.UpdatedAt = now
	return true, nil
}

func (f *fakeBookingStore) MarkExit(id int, now time.Time) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.BookingStatus != db.BookingConfirmed || !b.EntryScanned || b.ExitScanned {
		return false, nil
	}
	b.ExitScanned = true
	b.ExitTime = sql.NullTime{Time: now, Valid: true}
	b.BookingStatus = db.BookingCompleted
	b.UpdatedAt = now
	return true, nil
}

type fakeSlotStore struct {
	areas map[int]*db.ParkingArea
	slots map[int]*db.Slot
}

func (f *fakeSlotStore) GetAreaByID(id int) (*db.ParkingArea, error) {
	area, ok := f.areas[id]
	if !ok {
		return nil, apperrors.NotFound("parking area")
	}
	return area, nil
}

func (f *fakeSlotStore) ListSlotsByArea(areaID int) ([]db.Slot, error) {
	var out []db.Slot
	for _, s := range f.slots {
		if s.AreaID == areaID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSlotStore) GetSlotWithRate(slotID int) (*db.Slot, float64, error) {
	slot, ok := f.slots[slotID]
	if !ok {
		return nil, 0, apperrors.NotFound("parking slot")
	}
	area, ok := f.areas[slot.AreaID]
	if !ok {
		return nil, 0, apperrors.NotFound("parking area")
	}
	return slot, area.PricePerHour, nil
}

type fakeGateway struct {
	chargeID     string
	chargeErr    error
	refundID     string
	refundErr    error
	signatureOK  bool
	refundCalls  int
	lastRefunded float64
}

func (g *fakeGateway) CreateChargeIntent(ctx context.Context, amount float64, currency, reference string) (string, error) {
	if g.chargeErr != nil {
		return "", g.chargeErr
	}
	return g.chargeID, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return g.signatureOK
}

func (g *fakeGateway) Refund(ctx context.Context, paymentID string, amount float64, notes map[string]string) (string, error) {
	g.refundCalls++
	g.lastRefunded = amount
	if g.refundErr != nil {
		return "", g.refundErr
	}
	return g.refundID, nil
}

package db

import (
	"database/sql"
	"time"
)

// Booking lifecycle states. PENDING may move to CONFIRMED, CANCELLED or
// EXPIRED; CONFIRMED may move to CANCELLED or COMPLETED. The last three are
// terminal.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingExpired   = "EXPIRED"
	BookingCompleted = "COMPLETED"
)

// Payment states carried on a booking.
const (
	PaymentPending       = "PENDING"
	PaymentPaid          = "PAID"
	PaymentFailed        = "FAILED"
	PaymentRefunded      = "REFUNDED"
	PaymentPartialRefund = "PARTIAL_REFUND"
)

// Slot categories. The category is an explicit column on the slot row, set
// when the slot is seeded.
const (
	CategoryRegular    = "REGULAR"
	CategoryEV         = "EV"
	CategoryAccessible = "ACCESSIBLE"
)

// PendingTTL is how long a PENDING booking holds its slot before it expires.
const PendingTTL = 15 * time.Minute

type ParkingArea struct {
	ID           int
	City         string
	Name         string
	Address      string
	TotalSlots   int
	PricePerHour float64
	Lat          float64
	Long         float64
}

type Slot struct {
	ID       int
	AreaID   int
	Number   string
	Category string
}

type Booking struct {
	ID            int
	Token         string
	SlotID        int
	UserID        sql.NullInt64
	Phone         string
	VehicleNumber sql.NullString
	StartTime     time.Time
	EndTime       time.Time
	Amount        float64
	BookingStatus string
	PaymentStatus string
	PaymentID     sql.NullString
	PaymentMethod sql.NullString
	RefundID      sql.NullString
	RefundAmount  sql.NullFloat64
	RefundedAt    sql.NullTime
	EntryScanned  bool
	EntryTime     sql.NullTime
	ExitScanned   bool
	ExitTime      sql.NullTime
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTerminal reports whether the booking can no longer change state.
func (b *Booking) IsTerminal() bool {
	switch b.BookingStatus {
	case BookingCancelled, BookingExpired, BookingCompleted:
		return true
	}
	return false
}

type AdminUser struct {
	ID           int
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

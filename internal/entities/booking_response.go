package entities

import (
	"time"

	"urbpark/internal/db"
)

type BookingResponse struct {
	ID            int        `json:"id"`
	Token         string     `json:"token"`
	SlotID        int        `json:"slot_id"`
	UserID        *int64     `json:"user_id,omitempty"`
	Phone         string     `json:"phone"`
	VehicleNumber *string    `json:"vehicle_number,omitempty"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	Amount        float64    `json:"amount"`
	BookingStatus string     `json:"booking_status"`
	PaymentStatus string     `json:"payment_status"`
	PaymentID     *string    `json:"payment_id,omitempty"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	RefundID      *string    `json:"refund_id,omitempty"`
	RefundAmount  *float64   `json:"refund_amount,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	EntryScanned  bool       `json:"entry_scanned"`
	EntryTime     *time.Time `json:"entry_time,omitempty"`
	ExitScanned   bool       `json:"exit_scanned"`
	ExitTime      *time.Time `json:"exit_time,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewBookingResponse flattens the nullable columns into optional JSON fields.
func NewBookingResponse(b *db.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:            b.ID,
		Token:         b.Token,
		SlotID:        b.SlotID,
		Phone:         b.Phone,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Amount:        b.Amount,
		BookingStatus: b.BookingStatus,
		PaymentStatus: b.PaymentStatus,
		EntryScanned:  b.EntryScanned,
		ExitScanned:   b.ExitScanned,
		ExpiresAt:     b.ExpiresAt,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.UserID.Valid {
		resp.UserID = &b.UserID.Int64
	}
	if b.VehicleNumber.Valid {
		resp.VehicleNumber = &b.VehicleNumber.String
	}
	if b.PaymentID.Valid {
		resp.PaymentID = &b.PaymentID.String
	}
	if b.PaymentMethod.Valid {
		resp.PaymentMethod = &b.PaymentMethod.String
	}
	if b.RefundID.Valid {
		resp.RefundID = &b.RefundID.String
	}
	if b.RefundAmount.Valid {
		resp.RefundAmount = &b.RefundAmount.Float64
	}
	if b.RefundedAt.Valid {
		resp.RefundedAt = &b.RefundedAt.Time
	}
	if b.EntryTime.Valid {
		resp.EntryTime = &b.EntryTime.Time
	}
	if b.ExitTime.Valid {
		resp.ExitTime = &b.ExitTime.Time
	}
	return resp
}

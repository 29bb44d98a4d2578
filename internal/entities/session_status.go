package entities

// Session view states shown alongside the booking's entry QR code.
const (
	SessionActive    = "ACTIVE"
	SessionUpcoming  = "UPCOMING"
	SessionExpired   = "EXPIRED"
	SessionCancelled = "CANCELLED"
	SessionCompleted = "COMPLETED"
	SessionInactive  = "INACTIVE"
)

type SessionStatusResponse struct {
	ShowQR        bool             `json:"show_qr"`
	SessionStatus string           `json:"session_status"`
	StatusMessage string           `json:"status_message"`
	Booking       *BookingResponse `json:"booking"`
}

package entities

// Refund outcome reported on cancellation. The cancellation itself succeeds
// even when the gateway refund does not.
const (
	RefundNone    = "NONE"
	RefundSuccess = "SUCCESS"
	RefundPending = "PENDING"
	RefundFailed  = "FAILED"
)

type CancelResponse struct {
	Booking          *BookingResponse `json:"booking"`
	RefundAmount     float64          `json:"refund_amount"`
	RefundPercentage int              `json:"refund_percentage"`
	RefundStatus     string           `json:"refund_status"`
	RefundID         *string          `json:"refund_id,omitempty"`
	Message          string           `json:"message"`
}

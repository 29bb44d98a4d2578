package entities

import "time"

type BookingRequest struct {
	SlotID        int       `json:"slot_id" validate:"required,gt=0"`
	UserID        *int      `json:"user_id"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
	Phone         string    `json:"phone" validate:"required"`
	VehicleNumber string    `json:"vehicle_number"`
}

type ConfirmRequest struct {
	PaymentID     string `json:"payment_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

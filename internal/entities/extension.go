package entities

type ExtensionOrderRequest struct {
	ExtraMinutes int `json:"extra_minutes" validate:"required,gt=0"`
}

type ExtensionOrderResponse struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type ConfirmExtensionRequest struct {
	ExtraMinutes int    `json:"extra_minutes" validate:"required,gt=0"`
	PaymentID    string `json:"payment_id" validate:"required"`
	OrderID      string `json:"order_id" validate:"required"`
	Signature    string `json:"signature" validate:"required"`
}

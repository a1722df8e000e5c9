package order

// CheckoutLine is one cart entry in a checkout request.
// swagger:model CheckoutLine
type CheckoutLine struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity"  validate:"required,min=1" example:"2"`
	Name      string  `json:"name"      validate:"required"`
	Price     float64 `json:"price"     validate:"gte=0" example:"10"`
	Image     string  `json:"image"`
}

// CheckoutRequest payload for session creation.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	Products      []CheckoutLine `json:"products"      validate:"required,min=1,dive"`
	Email         string         `json:"email"         validate:"required,email"`
	CustomerName  string         `json:"customerName"  validate:"required"`
	CustomerPhone string         `json:"customerPhone" validate:"required"`
	Country       string         `json:"country"       validate:"required"`
	Wilayat       string         `json:"wilayat"       validate:"required"`
	Description   string         `json:"description"`
	Currency      string         `json:"currency"      validate:"omitempty,oneof=OMR AED"`
}

// ConfirmPaymentRequest payload for payment reconciliation.
// swagger:model ConfirmPaymentRequest
type ConfirmPaymentRequest struct {
	ClientReferenceID string `json:"client_reference_id" validate:"required"`
}

// UpdateStatusRequest payload for the administrative status update.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed"`
}

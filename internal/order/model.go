package order

import "time"

// Order statuses. Every status write is validated against this set.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Supported display currencies.
const (
	CurrencyOMR = "OMR"
	CurrencyAED = "AED"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Line is one snapshotted cart entry. It is copied at order-creation time
// so later catalog edits never retroactively alter historical orders.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name"`
	// NUMERIC -> string
	Price string `json:"price"`
	Image string `json:"image"`
}

type Order struct {
	ID string `json:"id"`
	// OrderID is the payment-session identifier issued by the provider;
	// it is the natural external key (unique, exactly one order per id).
	OrderID string `json:"orderId"`
	// ClientReferenceID is the locally generated correlation id attached
	// to the payment session, persisted so reconciliation can resolve the
	// session without re-scanning the provider's listing.
	ClientReferenceID string    `json:"clientReferenceId,omitempty"`
	Products          []Line    `json:"products"`
	Amount            string    `json:"amount"`
	ShippingFee       string    `json:"shippingFee"`
	CustomerName      string    `json:"customerName,omitempty"`
	CustomerPhone     string    `json:"customerPhone,omitempty"`
	Country           string    `json:"country,omitempty"`
	Wilayat           string    `json:"wilayat,omitempty"`
	Description       string    `json:"description,omitempty"`
	Email             string    `json:"email,omitempty"`
	Status            string    `json:"status"`
	Currency          string    `json:"currency"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Package checkout orchestrates payment-session creation and payment
// reconciliation against the external provider.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/henna-burgund/shop-api/internal/order"
	"github.com/henna-burgund/shop-api/internal/payment"
)

var (
	ErrEmptyCart           = errors.New("invalid or empty products array")
	ErrMissingReference    = errors.New("client reference id is required")
	ErrPaymentNotCompleted = errors.New("payment not successful")
)

// HigherFeeCountry pays the raised flat shipping fee; everywhere else pays
// the base fee. A fixed two-tier table, not a rate engine.
const HigherFeeCountry = "الإمارات"

// shippingLineName is the synthetic line item added to every session.
const shippingLineName = "رسوم الشحن"

// Metadata defaults for optional customer fields.
const (
	unspecifiedEmail = "غير محدد"
	noDescription    = "لا يوجد وصف"
)

type Service struct {
	orders   order.Repository
	payments payment.API

	checkoutBaseURL string
	publishableKey  string
	successURL      string
	cancelURL       string

	now func() time.Time
}

func NewService(orders order.Repository, payments payment.API, checkoutBaseURL, publishableKey, successURL, cancelURL string) *Service {
	return &Service{
		orders:          orders,
		payments:        payments,
		checkoutBaseURL: checkoutBaseURL,
		publishableKey:  publishableKey,
		successURL:      successURL,
		cancelURL:       cancelURL,
		now:             time.Now,
	}
}

// Result is returned to the storefront after session creation.
type Result struct {
	SessionID   string `json:"id"`
	PaymentLink string `json:"paymentLink"`
}

// ShippingFee is 4 for the designated higher-fee country, 2 otherwise.
func ShippingFee(country string) decimal.Decimal {
	if country == HigherFeeCountry {
		return decimal.NewFromInt(4)
	}
	return decimal.NewFromInt(2)
}

// toMinorUnits converts a display-currency amount to the provider's minor
// unit (1/1000), rounded half-up to the nearest integer.
func toMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(3).Round(0).IntPart()
}

func fromMinorUnits(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(-3)
}

// CreateSession computes totals, creates the provider session, persists the
// pending order keyed by the provider's session id, and returns the payment
// link. On any provider failure nothing is persisted.
func (s *Service) CreateSession(ctx context.Context, req *order.CheckoutRequest) (*Result, error) {
	if len(req.Products) == 0 {
		return nil, ErrEmptyCart
	}

	fee := ShippingFee(req.Country)
	subtotal := decimal.Zero
	lineItems := make([]payment.SessionProduct, 0, len(req.Products)+1)
	snapshot := make([]order.Line, 0, len(req.Products))
	for _, p := range req.Products {
		price := decimal.NewFromFloat(p.Price)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(p.Quantity))))
		lineItems = append(lineItems, payment.SessionProduct{
			Name:       p.Name,
			ProductID:  p.ProductID,
			Quantity:   p.Quantity,
			UnitAmount: toMinorUnits(price),
		})
		snapshot = append(snapshot, order.Line{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Name:      p.Name,
			Price:     price.String(),
			Image:     p.Image,
		})
	}
	total := subtotal.Add(fee)
	lineItems = append(lineItems, payment.SessionProduct{
		Name:       shippingLineName,
		Quantity:   1,
		UnitAmount: toMinorUnits(fee),
	})

	ref := strconv.FormatInt(s.now().UnixMilli(), 10)

	email := req.Email
	if email == "" {
		email = unspecifiedEmail
	}
	description := req.Description
	if description == "" {
		description = noDescription
	}

	sess, err := s.payments.CreateSession(ctx, &payment.SessionRequest{
		ClientReferenceID: ref,
		Mode:              "payment",
		Products:          lineItems,
		SuccessURL:        s.successURL + "?client_reference_id=" + ref,
		CancelURL:         s.cancelURL,
		Metadata: map[string]string{
			"customer_name":     req.CustomerName,
			"customer_phone":    req.CustomerPhone,
			"email":             email,
			"country":           req.Country,
			"wilayat":           req.Wilayat,
			"description":       description,
			"internal_order_id": ref,
			"source":            "shop-api",
		},
	})
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = order.CurrencyOMR
	}

	o := &order.Order{
		ID:                uuid.NewString(),
		OrderID:           sess.SessionID,
		ClientReferenceID: ref,
		Products:          snapshot,
		Amount:            total.String(),
		ShippingFee:       fee.String(),
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		Country:           req.Country,
		Wilayat:           req.Wilayat,
		Description:       req.Description,
		Email:             req.Email,
		Status:            order.StatusPending,
		Currency:          currency,
	}
	if err := s.orders.Insert(ctx, o); err != nil {
		return nil, err
	}

	return &Result{
		SessionID:   sess.SessionID,
		PaymentLink: fmt.Sprintf("%s/pay/%s?key=%s", s.checkoutBaseURL, sess.SessionID, s.publishableKey),
	}, nil
}

// ConfirmPayment reconciles the local order with the provider's view of the
// session identified by the client reference. The session id is resolved
// from the locally persisted order first; the provider listing scan is only
// the fallback. The upsert is find-then-update on orderId, never a blind
// insert, so confirming an already-paid session twice leaves exactly one
// completed order.
func (s *Service) ConfirmPayment(ctx context.Context, ref string) (*order.Order, error) {
	if ref == "" {
		return nil, ErrMissingReference
	}

	var sessionID string
	local, err := s.orders.GetByClientReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if local != nil {
		sessionID = local.OrderID
	} else {
		sess, err := s.payments.FindByClientReference(ctx, ref)
		if err != nil {
			return nil, err
		}
		sessionID = sess.SessionID
	}

	detail, err := s.payments.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if detail.PaymentStatus != payment.PaymentStatusPaid {
		return nil, ErrPaymentNotCompleted
	}

	existing, err := s.orders.GetByOrderID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == order.StatusCompleted {
			return existing, nil
		}
		return s.orders.UpdateStatusByOrderID(ctx, sessionID, order.StatusCompleted)
	}

	// No local order (created outside this backend): rebuild it from the
	// provider's line items, converting minor units back to display
	// currency.
	fee := decimal.NewFromInt(2)
	lines := make([]order.Line, 0, len(detail.Products))
	for _, p := range detail.Products {
		if p.Name == shippingLineName {
			fee = fromMinorUnits(p.UnitAmount)
			continue
		}
		lines = append(lines, order.Line{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Name:      p.Name,
			Price:     fromMinorUnits(p.UnitAmount).String(),
		})
	}

	clientRef := detail.ClientReferenceID
	if clientRef == "" {
		clientRef = ref
	}

	o := &order.Order{
		ID:                uuid.NewString(),
		OrderID:           sessionID,
		ClientReferenceID: clientRef,
		Products:          lines,
		Amount:            fromMinorUnits(detail.TotalAmount).String(),
		ShippingFee:       fee.String(),
		Status:            order.StatusCompleted,
		Currency:          order.CurrencyOMR,
	}
	if err := s.orders.Insert(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

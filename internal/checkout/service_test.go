package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/henna-burgund/shop-api/internal/order"
	"github.com/henna-burgund/shop-api/internal/payment"
)

type stubOrderRepo struct {
	orders []*order.Order
}

func (s *stubOrderRepo) Insert(_ context.Context, o *order.Order) error {
	cp := *o
	s.orders = append(s.orders, &cp)
	return nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, order.ErrNotFound
}

func (s *stubOrderRepo) GetByOrderID(_ context.Context, orderID string) (*order.Order, error) {
	for _, o := range s.orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return nil, nil
}

func (s *stubOrderRepo) GetByClientReference(_ context.Context, ref string) (*order.Order, error) {
	for _, o := range s.orders {
		if o.ClientReferenceID == ref {
			return o, nil
		}
	}
	return nil, nil
}

func (s *stubOrderRepo) ListByEmail(_ context.Context, email string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range s.orders {
		if o.Email == email {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) ListByStatus(_ context.Context, status string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range s.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id, status string) (*order.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			o.Status = status
			return o, nil
		}
	}
	return nil, order.ErrNotFound
}

func (s *stubOrderRepo) UpdateStatusByOrderID(_ context.Context, orderID, status string) (*order.Order, error) {
	for _, o := range s.orders {
		if o.OrderID == orderID {
			o.Status = status
			return o, nil
		}
	}
	return nil, order.ErrNotFound
}

func (s *stubOrderRepo) Delete(_ context.Context, id string) (bool, error) {
	for i, o := range s.orders {
		if o.ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakePaymentAPI struct {
	sessions   map[string]*payment.Session
	createErr  error
	created    []*payment.SessionRequest
	nextID     string
	nextStatus string
}

func newFakePaymentAPI() *fakePaymentAPI {
	return &fakePaymentAPI{
		sessions:   map[string]*payment.Session{},
		nextID:     "sess_1",
		nextStatus: "unpaid",
	}
}

func (f *fakePaymentAPI) CreateSession(_ context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	var total int64
	for _, p := range req.Products {
		total += p.UnitAmount * int64(p.Quantity)
	}
	sess := &payment.Session{
		SessionID:         f.nextID,
		ClientReferenceID: req.ClientReferenceID,
		PaymentStatus:     f.nextStatus,
		TotalAmount:       total,
		Products:          req.Products,
	}
	f.sessions[sess.SessionID] = sess
	return sess, nil
}

func (f *fakePaymentAPI) GetSession(_ context.Context, sessionID string) (*payment.Session, error) {
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, payment.ErrSessionNotFound
	}
	return sess, nil
}

func (f *fakePaymentAPI) ListSessions(_ context.Context, limit, skip int) ([]payment.Session, error) {
	var out []payment.Session
	for _, s := range f.sessions {
		out = append(out, *s)
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePaymentAPI) FindByClientReference(_ context.Context, ref string) (*payment.Session, error) {
	for _, s := range f.sessions {
		if s.ClientReferenceID == ref {
			return s, nil
		}
	}
	return nil, payment.ErrSessionNotFound
}

func newTestService(repo *stubOrderRepo, api *fakePaymentAPI) *Service {
	svc := NewService(repo, api,
		"https://checkout.example.com", "pk_test", "https://shop.example.com/success", "https://shop.example.com/cancel")
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

func checkoutReq() *order.CheckoutRequest {
	return &order.CheckoutRequest{
		Products: []order.CheckoutLine{
			{ProductID: "p1", Quantity: 2, Name: "حناء بودر - وسط", Price: 10},
			{ProductID: "p2", Quantity: 1, Name: "مشط خشبي", Price: 5},
		},
		Email:         "buyer@example.com",
		CustomerName:  "سالم",
		CustomerPhone: "99887766",
		Country:       "عمان",
		Wilayat:       "نزوى",
	}
}

func TestShippingFee(t *testing.T) {
	if got := ShippingFee("الإمارات"); got.String() != "4" {
		t.Fatalf("higher-tier fee = %s, want 4", got)
	}
	if got := ShippingFee("عمان"); got.String() != "2" {
		t.Fatalf("base fee = %s, want 2", got)
	}
	if got := ShippingFee(""); got.String() != "2" {
		t.Fatalf("empty-country fee = %s, want 2", got)
	}
}

func TestCreateSessionTotals(t *testing.T) {
	repo := &stubOrderRepo{}
	api := newFakePaymentAPI()
	svc := newTestService(repo, api)

	res, err := svc.CreateSession(context.Background(), checkoutReq())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if res.SessionID != "sess_1" {
		t.Fatalf("session id = %q", res.SessionID)
	}
	wantLink := "https://checkout.example.com/pay/sess_1?key=pk_test"
	if res.PaymentLink != wantLink {
		t.Fatalf("payment link = %q, want %q", res.PaymentLink, wantLink)
	}

	if len(repo.orders) != 1 {
		t.Fatalf("orders persisted = %d, want 1", len(repo.orders))
	}
	o := repo.orders[0]
	// subtotal 25 + base fee 2
	if o.Amount != "27" {
		t.Fatalf("amount = %s, want 27", o.Amount)
	}
	if o.ShippingFee != "2" {
		t.Fatalf("shipping fee = %s, want 2", o.ShippingFee)
	}
	if o.Status != order.StatusPending {
		t.Fatalf("status = %s, want pending", o.Status)
	}
	if o.Currency != order.CurrencyOMR {
		t.Fatalf("currency = %s, want OMR", o.Currency)
	}
	if o.OrderID != "sess_1" {
		t.Fatalf("orderId = %s, want sess_1", o.OrderID)
	}
	if o.ClientReferenceID != "1700000000000" {
		t.Fatalf("clientReferenceId = %s", o.ClientReferenceID)
	}
}

func TestCreateSessionHigherFeeCountry(t *testing.T) {
	repo := &stubOrderRepo{}
	api := newFakePaymentAPI()
	svc := newTestService(repo, api)

	req := checkoutReq()
	req.Country = "الإمارات"
	req.Currency = order.CurrencyAED
	if _, err := svc.CreateSession(context.Background(), req); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	o := repo.orders[0]
	// subtotal 25 + raised fee 4
	if o.Amount != "29" {
		t.Fatalf("amount = %s, want 29", o.Amount)
	}
	if o.ShippingFee != "4" {
		t.Fatalf("shipping fee = %s, want 4", o.ShippingFee)
	}
	if o.Currency != order.CurrencyAED {
		t.Fatalf("currency = %s, want AED", o.Currency)
	}
}

func TestCreateSessionMinorUnits(t *testing.T) {
	repo := &stubOrderRepo{}
	api := newFakePaymentAPI()
	svc := newTestService(repo, api)

	req := checkoutReq()
	req.Products = []order.CheckoutLine{
		{ProductID: "p1", Quantity: 1, Name: "عطر دهن العود", Price: 2.5755},
	}
	if _, err := svc.CreateSession(context.Background(), req); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	sent := api.created[0]
	if len(sent.Products) != 2 {
		t.Fatalf("provider lines = %d, want product + shipping", len(sent.Products))
	}
	// 2.5755 * 1000 rounds half-up to 2576
	if sent.Products[0].UnitAmount != 2576 {
		t.Fatalf("unit amount = %d, want 2576", sent.Products[0].UnitAmount)
	}
	ship := sent.Products[1]
	if ship.Name != "رسوم الشحن" || ship.Quantity != 1 || ship.UnitAmount != 2000 {
		t.Fatalf("shipping line = %+v", ship)
	}
	if sent.Mode != "payment" {
		t.Fatalf("mode = %q", sent.Mode)
	}
	if sent.SuccessURL != "https://shop.example.com/success?client_reference_id=1700000000000" {
		t.Fatalf("success url = %q", sent.SuccessURL)
	}
}

func TestCreateSessionMetadataDefaults(t *testing.T) {
	repo := &stubOrderRepo{}
	api := newFakePaymentAPI()
	svc := newTestService(repo, api)

	req := checkoutReq()
	req.Email = ""
	req.Description = ""
	if _, err := svc.CreateSession(context.Background(), req); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	md := api.created[0].Metadata
	if md["email"] != "غير محدد" {
		t.Fatalf("email metadata = %q", md["email"])
	}
	if md["description"] != "لا يوجد وصف" {
		t.Fatalf("description metadata = %q", md["description"])
	}
}

func TestCreateSessionEmptyCart(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := newTestService(repo, newFakePaymentAPI())

	req := checkoutReq()
	req.Products = nil
	_, err := svc.CreateSession(context.Background(), req)
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if len(repo.orders) != 0 {
		t.Fatalf("order persisted for empty cart")
	}
}

func TestCreateSessionProviderFailurePersistsNothing(t *testing.T) {
	repo := &stubOrderRepo{}
	api := newFakePaymentAPI()
	api.createErr = errors.New("provider error (500 Internal Server Error): boom")
	svc := newTestService(repo, api)

	_, err := svc.CreateSession(context.Background(), checkoutReq())
	if err == nil {
		t.Fatal("expected provider error")
	}
	if len(repo.orders) != 0 {
		t.Fatalf("order persisted despite provider failure")
	}
}

func TestConfirmPaymentCompletesPendingOrder(t *testing.T) {
	repo := &stubOrderRepo{}
	api := newFakePaymentAPI()
	svc := newTestService(repo, api)

	if _, err := svc.CreateSession(context.Background(), checkoutReq()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	api.sessions["sess_1"].PaymentStatus = payment.PaymentStatusPaid

	o, err := svc.ConfirmPayment(context.Background(), "1700000000000")
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if o.Status != order.StatusCompleted {
		t.Fatalf("status = %s, want completed", o.Status)
	}
	if len(repo.orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(repo.orders))
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	repo := &stubOrderRepo{}
	api := newFakePaymentAPI()
	svc := newTestService(repo, api)

	if _, err := svc.CreateSession(context.Background(), checkoutReq()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	api.sessions["sess_1"].PaymentStatus = payment.PaymentStatusPaid

	first, err := svc.ConfirmPayment(context.Background(), "1700000000000")
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	second, err := svc.ConfirmPayment(context.Background(), "1700000000000")
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if len(repo.orders) != 1 {
		t.Fatalf("orders = %d after double confirm, want 1", len(repo.orders))
	}
	if first.ID != second.ID || second.Status != order.StatusCompleted {
		t.Fatalf("second confirm returned %+v", second)
	}
}

func TestConfirmPaymentUnpaidSession(t *testing.T) {
	repo := &stubOrderRepo{}
	api := newFakePaymentAPI()
	svc := newTestService(repo, api)

	if _, err := svc.CreateSession(context.Background(), checkoutReq()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	_, err := svc.ConfirmPayment(context.Background(), "1700000000000")
	if !errors.Is(err, ErrPaymentNotCompleted) {
		t.Fatalf("err = %v, want ErrPaymentNotCompleted", err)
	}
	if repo.orders[0].Status != order.StatusPending {
		t.Fatalf("status mutated to %s on failed confirm", repo.orders[0].Status)
	}
}

func TestConfirmPaymentUnknownReference(t *testing.T) {
	svc := newTestService(&stubOrderRepo{}, newFakePaymentAPI())

	_, err := svc.ConfirmPayment(context.Background(), "does-not-exist")
	if !errors.Is(err, payment.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestConfirmPaymentMissingReference(t *testing.T) {
	svc := newTestService(&stubOrderRepo{}, newFakePaymentAPI())

	_, err := svc.ConfirmPayment(context.Background(), "")
	if !errors.Is(err, ErrMissingReference) {
		t.Fatalf("err = %v, want ErrMissingReference", err)
	}
}

func TestConfirmPaymentRebuildsForeignOrder(t *testing.T) {
	repo := &stubOrderRepo{}
	api := newFakePaymentAPI()
	svc := newTestService(repo, api)

	// Session exists at the provider but was never persisted locally.
	api.sessions["sess_x"] = &payment.Session{
		SessionID:         "sess_x",
		ClientReferenceID: "1699999999999",
		PaymentStatus:     payment.PaymentStatusPaid,
		TotalAmount:       27000,
		Products: []payment.SessionProduct{
			{Name: "حناء بودر - كبير", ProductID: "p9", Quantity: 1, UnitAmount: 25000},
			{Name: "رسوم الشحن", Quantity: 1, UnitAmount: 2000},
		},
	}

	o, err := svc.ConfirmPayment(context.Background(), "1699999999999")
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if o.Status != order.StatusCompleted {
		t.Fatalf("status = %s", o.Status)
	}
	if o.Amount != "27" {
		t.Fatalf("amount = %s, want 27", o.Amount)
	}
	if o.ShippingFee != "2" {
		t.Fatalf("shipping fee = %s, want 2", o.ShippingFee)
	}
	if len(o.Products) != 1 || o.Products[0].Price != "25" {
		t.Fatalf("rebuilt lines = %+v", o.Products)
	}
	if len(repo.orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(repo.orders))
	}
}

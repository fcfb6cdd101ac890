package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/payment"
	"github.com/LavaJover/shvark-donation-service/internal/usecase/links"
	"github.com/LavaJover/shvark-donation-service/internal/usecase/usecasetest"
)

func newUsecase() (*DefaultPaymentUsecase, *usecasetest.Gateway, *usecasetest.MemoryRepository) {
	gateway := usecasetest.NewGateway()
	repo := usecasetest.NewMemoryRepository()
	uc := NewDefaultPaymentUsecase(gateway, repo, &usecasetest.SchemaGuard{}, nil, nil, nil, Settings{
		Amounts: domain.AmountRange{Min: 1000, Max: 1000000},
	})
	return uc, gateway, repo
}

func seedReceipt(repo *usecasetest.MemoryRepository, id int64, method domain.PaymentMethod, amount string) {
	donatedAt := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)
	repo.Put(&domain.Receipt{
		ID:            id,
		CertificateNo: domain.CertificateNumber(donatedAt, id),
		DonorName:     "山田 太郎",
		DonorEmail:    "taro@example.com",
		Amount:        amount,
		PaymentMethod: method,
		DonatedAt:     donatedAt,
		Status:        domain.StatusAwaitingPayment,
	})
}

var testLinks = links.Builder{Origin: "https://example.org", Prefix: "/donation"}

func int64Ptr(v int64) *int64 { return &v }

func TestCreateCheckoutSession(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 42, domain.MethodCreditCard, "¥1,500")

	out, err := uc.CreateCheckoutSession(context.Background(), &paymentdto.CheckoutInput{
		ReceiptID: int64Ptr(42),
		Links:     testLinks,
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	if out.SessionID == "" || out.CheckoutURL == "" {
		t.Fatalf("unexpected output %+v", out)
	}

	req := gateway.Requests[0]
	if req.AmountYen != 1500 {
		t.Fatalf("amount: got %d", req.AmountYen)
	}
	if req.SuccessURL != "https://example.org/donation/payment/success?session_id={CHECKOUT_SESSION_ID}" {
		t.Fatalf("success url: got %q", req.SuccessURL)
	}
	if req.CancelURL != "https://example.org/donation/payment/cancel" {
		t.Fatalf("cancel url: got %q", req.CancelURL)
	}

	row, _ := repo.Row(42)
	if row.Status != domain.StatusCheckoutCreated {
		t.Fatalf("status: got %q", row.Status)
	}
	if row.StripeCheckoutSessionID == nil || *row.StripeCheckoutSessionID != out.SessionID {
		t.Fatalf("session id not stored: %v", row.StripeCheckoutSessionID)
	}
}

func TestCreateCheckoutSessionByCertificate(t *testing.T) {
	uc, _, repo := newUsecase()
	seedReceipt(repo, 7, domain.MethodCreditCard, "3000")
	uc.Settings.SuccessURL = "https://pay.example.org/ok"

	_, err := uc.CreateCheckoutSession(context.Background(), &paymentdto.CheckoutInput{
		CertificateNo: " RCPT-2025-000007 ",
		Links:         testLinks,
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
}

func TestCreateCheckoutSessionRejections(t *testing.T) {
	cases := []struct {
		name   string
		method domain.PaymentMethod
		amount string
		input  *paymentdto.CheckoutInput
		kind   error
	}{
		{name: "no identifier", method: domain.MethodCreditCard, amount: "5000", input: &paymentdto.CheckoutInput{}, kind: domain.ErrValidation},
		{name: "unknown receipt", method: domain.MethodCreditCard, amount: "5000", input: &paymentdto.CheckoutInput{ReceiptID: int64Ptr(99)}, kind: domain.ErrNotFound},
		{name: "cash receipt", method: domain.MethodCash, amount: "5000", input: &paymentdto.CheckoutInput{ReceiptID: int64Ptr(1)}, kind: domain.ErrValidation},
		{name: "below minimum", method: domain.MethodCreditCard, amount: "999", input: &paymentdto.CheckoutInput{ReceiptID: int64Ptr(1)}, kind: domain.ErrValidation},
		{name: "above maximum", method: domain.MethodCreditCard, amount: "1000001", input: &paymentdto.CheckoutInput{ReceiptID: int64Ptr(1)}, kind: domain.ErrValidation},
	}

	for _, tc := range cases {
		uc, gateway, repo := newUsecase()
		seedReceipt(repo, 1, tc.method, tc.amount)

		_, err := uc.CreateCheckoutSession(context.Background(), tc.input)
		if !errors.Is(err, tc.kind) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.kind, err)
		}
		if len(gateway.Requests) != 0 {
			t.Fatalf("%s: no session must be opened", tc.name)
		}
		row, _ := repo.Row(1)
		if row.Status != domain.StatusAwaitingPayment {
			t.Fatalf("%s: status must be unchanged, got %q", tc.name, row.Status)
		}
	}
}

func TestCreateCheckoutSessionMessages(t *testing.T) {
	uc, _, repo := newUsecase()
	seedReceipt(repo, 1, domain.MethodCash, "5000")

	_, err := uc.CreateCheckoutSession(context.Background(), &paymentdto.CheckoutInput{ReceiptID: int64Ptr(1)})
	if err == nil || err.Error() != "クレジットカード決済のデータではありません。" {
		t.Fatalf("unexpected error %v", err)
	}

	_, err = uc.CreateCheckoutSession(context.Background(), &paymentdto.CheckoutInput{ReceiptID: int64Ptr(2)})
	if err == nil || err.Error() != "対象の寄付データが見つかりません。" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCreateCheckoutSessionMisconfigured(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 1, domain.MethodCreditCard, "5000")
	gateway.ReadyErr = domain.NewMisconfigured("Stripeテスト設定が未完了です。")

	_, err := uc.CreateCheckoutSession(context.Background(), &paymentdto.CheckoutInput{ReceiptID: int64Ptr(1)})
	if !errors.Is(err, domain.ErrMisconfigured) {
		t.Fatalf("expected misconfigured, got %v", err)
	}
}

func TestCreateCheckoutSessionGatewayFailure(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 1, domain.MethodCreditCard, "5000")
	gateway.CreateErr = errors.New("stripe: api_connection_error")

	_, err := uc.CreateCheckoutSession(context.Background(), &paymentdto.CheckoutInput{ReceiptID: int64Ptr(1)})
	if err == nil {
		t.Fatalf("expected error")
	}
	row, _ := repo.Row(1)
	if row.StripeCheckoutSessionID != nil {
		t.Fatalf("no session must be stored")
	}
}

func TestWebhookCheckoutCompletedMarksPaid(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 42, domain.MethodCreditCard, "5000")
	gateway.Event = &domain.PaymentEvent{
		ID:              "evt_1",
		Type:            domain.EventCheckoutCompleted,
		ObjectID:        "cs_test_1",
		PaymentIntentID: "pi_1",
		Metadata:        map[string]string{"receipt_id": "42"},
	}

	out, err := uc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if out.Outcome != paymentdto.OutcomeApplied || out.ReceiptID != 42 {
		t.Fatalf("unexpected outcome %+v", out)
	}

	row, _ := repo.Row(42)
	if row.Status != domain.StatusPaid {
		t.Fatalf("status: got %q", row.Status)
	}
	if row.PaidAt == nil {
		t.Fatalf("paid_at must be set")
	}
	if *row.StripeLastEventID != "evt_1" || *row.StripePaymentIntentID != "pi_1" || *row.StripeCheckoutSessionID != "cs_test_1" {
		t.Fatalf("processor ids not stored: %+v", row)
	}
	paidAt := *row.PaidAt

	// replay
	out, err = uc.HandleWebhook(context.Background(), []byte("{}"), "sig")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if out.Outcome != paymentdto.OutcomeDuplicate {
		t.Fatalf("replay outcome: got %q", out.Outcome)
	}
	row, _ = repo.Row(42)
	if row.Status != domain.StatusPaid || !row.PaidAt.Equal(paidAt) {
		t.Fatalf("replay must not change the row: %+v", row)
	}
}

func TestWebhookPaidAtSetOnce(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 42, domain.MethodCreditCard, "5000")
	first := time.Date(2025, time.March, 4, 12, 0, 0, 0, time.UTC)
	repo.Now = func() time.Time { return first }

	gateway.Event = &domain.PaymentEvent{ID: "evt_1", Type: domain.EventCheckoutCompleted, Metadata: map[string]string{"receipt_id": "42"}}
	if _, err := uc.HandleWebhook(context.Background(), nil, ""); err != nil {
		t.Fatalf("first event: %v", err)
	}

	repo.Now = func() time.Time { return first.Add(time.Hour) }
	gateway.Event = &domain.PaymentEvent{ID: "evt_2", Type: domain.EventPaymentIntentSucceeded, PaymentIntentID: "pi_1", Metadata: map[string]string{"receipt_id": "42"}}
	if _, err := uc.HandleWebhook(context.Background(), nil, ""); err != nil {
		t.Fatalf("second event: %v", err)
	}

	row, _ := repo.Row(42)
	if !row.PaidAt.Equal(first) {
		t.Fatalf("paid_at overwritten: %v", row.PaidAt)
	}
	if *row.StripeLastEventID != "evt_2" {
		t.Fatalf("last event: got %q", *row.StripeLastEventID)
	}
}

func TestWebhookPaymentFailedResolvesByIntent(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 5, domain.MethodCreditCard, "5000")
	intent := "pi_5"
	row, _ := repo.Row(5)
	row.StripePaymentIntentID = &intent
	repo.Put(row)

	gateway.Event = &domain.PaymentEvent{ID: "evt_9", Type: domain.EventPaymentIntentFailed, ObjectID: "pi_5", PaymentIntentID: "pi_5"}
	out, err := uc.HandleWebhook(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if out.Outcome != paymentdto.OutcomeApplied || out.ReceiptID != 5 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	row, _ = repo.Row(5)
	if row.Status != domain.StatusPaymentFailed || row.PaidAt != nil {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestWebhookIgnoresUnknownAndUnmatched(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 1, domain.MethodCreditCard, "5000")

	events := []*domain.PaymentEvent{
		{ID: "evt_a", Type: "customer.created"},
		{ID: "evt_b", Type: domain.EventCheckoutCompleted, Metadata: map[string]string{"receipt_id": "abc"}},
		{ID: "evt_c", Type: domain.EventCheckoutCompleted, Metadata: map[string]string{"receipt_id": "404"}},
		{ID: "evt_d", Type: domain.EventPaymentIntentSucceeded, PaymentIntentID: "pi_unknown"},
	}
	for _, event := range events {
		gateway.Event = event
		out, err := uc.HandleWebhook(context.Background(), nil, "")
		if err != nil {
			t.Fatalf("%s: %v", event.ID, err)
		}
		if out.Outcome != paymentdto.OutcomeIgnored {
			t.Fatalf("%s: outcome %q", event.ID, out.Outcome)
		}
	}
	row, _ := repo.Row(1)
	if row.Status != domain.StatusAwaitingPayment || row.StripeLastEventID != nil {
		t.Fatalf("row must be untouched: %+v", row)
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	uc, gateway, _ := newUsecase()
	gateway.ParseErr = domain.NewValidation("Invalid signature")

	_, err := uc.HandleWebhook(context.Background(), []byte("{}"), "t=1,v1=bad")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWebhookStoreFailure(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 42, domain.MethodCreditCard, "5000")
	repo.Err = errors.New("connection refused")
	gateway.Event = &domain.PaymentEvent{ID: "evt_1", Type: domain.EventCheckoutCompleted, Metadata: map[string]string{"receipt_id": "42"}}

	if _, err := uc.HandleWebhook(context.Background(), nil, ""); err == nil {
		t.Fatalf("store failure must surface so the processor retries")
	}
}

func TestSuccessPage(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 42, domain.MethodCreditCard, "5000")
	token := "tok123"
	row, _ := repo.Row(42)
	row.DownloadToken = &token
	repo.Put(row)

	session, _ := gateway.CreateCheckoutSession(context.Background(), domain.CheckoutSessionRequest{
		ReceiptID:     42,
		CertificateNo: row.CertificateNo,
		DonorName:     row.DonorName,
	})
	session.PaymentStatus = "paid"

	out := uc.SuccessPage(context.Background(), session.ID)
	if out.CertificateNo != row.CertificateNo || out.DonorName != "山田 太郎" || out.PaymentStatus != "paid" {
		t.Fatalf("unexpected page data %+v", out)
	}
	if out.DownloadToken != token {
		t.Fatalf("token: got %q", out.DownloadToken)
	}
}

func TestSuccessPageDefaults(t *testing.T) {
	uc, gateway, _ := newUsecase()

	out := uc.SuccessPage(context.Background(), "")
	if out.DonorName != defaultDonorName || out.CertificateNo != "" {
		t.Fatalf("unexpected defaults %+v", out)
	}

	out = uc.SuccessPage(context.Background(), "cs_missing")
	if out.DonorName != defaultDonorName || out.SessionID != "cs_missing" {
		t.Fatalf("lookup failure must keep defaults: %+v", out)
	}

	gateway.ReadyErr = domain.NewMisconfigured("not ready")
	out = uc.SuccessPage(context.Background(), "cs_test_1")
	if out.PaymentStatus != "" {
		t.Fatalf("unconfigured gateway must skip lookup: %+v", out)
	}
}

func TestWebhookAppliesOnCancelledContext(t *testing.T) {
	uc, gateway, repo := newUsecase()
	seedReceipt(repo, 42, domain.MethodCreditCard, "5000")
	gateway.Event = &domain.PaymentEvent{
		ID:       "evt_cancel",
		Type:     domain.EventCheckoutCompleted,
		ObjectID: "cs_test_9",
		Metadata: map[string]string{"receipt_id": "42"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := uc.HandleWebhook(ctx, []byte("{}"), "sig")
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if out.Outcome != paymentdto.OutcomeApplied {
		t.Fatalf("outcome: got %q", out.Outcome)
	}
	row, _ := repo.Row(42)
	if row.Status != domain.StatusPaid {
		t.Fatalf("status: got %q", row.Status)
	}
}

func TestCreateCheckoutSessionStoresSessionOnCancelledContext(t *testing.T) {
	uc, _, repo := newUsecase()
	seedReceipt(repo, 42, domain.MethodCreditCard, "5000")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := uc.CreateCheckoutSession(ctx, &paymentdto.CheckoutInput{ReceiptID: int64Ptr(42), Links: testLinks})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}
	row, _ := repo.Row(42)
	if row.Status != domain.StatusCheckoutCreated {
		t.Fatalf("status: got %q", row.Status)
	}
	if row.StripeCheckoutSessionID == nil || *row.StripeCheckoutSessionID != out.SessionID {
		t.Fatalf("session id not stored: %v", row.StripeCheckoutSessionID)
	}
}

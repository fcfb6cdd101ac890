package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/LavaJover/shvark-donation-service/internal/config"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	stripego "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

// Gateway wraps the Stripe API client for hosted Checkout and webhook
// verification. Keys are resolved from the configured mode.
type Gateway struct {
	mode          string
	currency      string
	secretKey     string
	publishable   string
	webhookSecret string
	api           *client.API
}

func NewGateway(cfg config.Stripe) *Gateway {
	secret, publishable, webhookSecret := cfg.Keys()
	g := &Gateway{
		mode:          config.NormalizeStripeMode(cfg.Mode),
		currency:      cfg.Currency,
		secretKey:     secret,
		publishable:   publishable,
		webhookSecret: webhookSecret,
	}
	if g.currency == "" {
		g.currency = "jpy"
	}
	if secret != "" {
		g.api = client.New(secret, nil)
	}
	return g
}

func (g *Gateway) Mode() string {
	return g.mode
}

func (g *Gateway) PublishableKey() string {
	return g.publishable
}

// Ready checks that both keys are present and belong to the active mode.
func (g *Gateway) Ready() error {
	if g.secretKey == "" || g.publishable == "" {
		if g.mode == "live" {
			return domain.NewMisconfigured("Stripe本番設定が未完了です。STRIPE_LIVE_SECRET_KEY / STRIPE_LIVE_PUBLISHABLE_KEY を設定してください。")
		}
		return domain.NewMisconfigured("Stripeテスト設定が未完了です。STRIPE_TEST_SECRET_KEY / STRIPE_TEST_PUBLISHABLE_KEY を設定してください。")
	}
	if g.mode == "test" {
		if !strings.HasPrefix(g.secretKey, "sk_test_") {
			return domain.NewMisconfigured("テストモードでは STRIPE_TEST_SECRET_KEY に sk_test_ を設定してください。")
		}
		if !strings.HasPrefix(g.publishable, "pk_test_") {
			return domain.NewMisconfigured("テストモードでは STRIPE_TEST_PUBLISHABLE_KEY に pk_test_ を設定してください。")
		}
		return nil
	}
	if !strings.HasPrefix(g.secretKey, "sk_live_") {
		return domain.NewMisconfigured("本番モードでは STRIPE_LIVE_SECRET_KEY に sk_live_ を設定してください。")
	}
	if !strings.HasPrefix(g.publishable, "pk_live_") {
		return domain.NewMisconfigured("本番モードでは STRIPE_LIVE_PUBLISHABLE_KEY に pk_live_ を設定してください。")
	}
	return nil
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	if g.api == nil {
		return nil, g.Ready()
	}

	params := &stripego.CheckoutSessionParams{
		Mode:               stripego.String(string(stripego.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		Locale:             stripego.String("ja"),
		CustomerEmail:      stripego.String(req.DonorEmail),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{
				Quantity: stripego.Int64(1),
				PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripego.String(g.currency),
					UnitAmount: stripego.Int64(req.AmountYen),
					ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripego.String(fmt.Sprintf("寄付金 (%s)", req.CertificateNo)),
					},
				},
			},
		},
		SuccessURL: stripego.String(req.SuccessURL),
		CancelURL:  stripego.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("receipt_id", strconv.FormatInt(req.ReceiptID, 10))
	params.AddMetadata("certificate_no", req.CertificateNo)
	params.AddMetadata("donor_email", req.DonorEmail)
	params.AddMetadata("donor_name", req.DonorName)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return toCheckoutSession(session), nil
}

func (g *Gateway) GetCheckoutSession(ctx context.Context, sessionID string) (*domain.CheckoutSession, error) {
	if g.api == nil {
		return nil, g.Ready()
	}

	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx
	session, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, err)
	}
	return toCheckoutSession(session), nil
}

func toCheckoutSession(s *stripego.CheckoutSession) *domain.CheckoutSession {
	return &domain.CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		Metadata:      s.Metadata,
	}
}

// eventObject covers the fields read from both checkout sessions and payment
// intents. payment_intent is a bare id unless expanded.
type eventObject struct {
	ID            string            `json:"id"`
	Metadata      map[string]string `json:"metadata"`
	PaymentIntent json.RawMessage   `json:"payment_intent"`
}

// ParseWebhook verifies the Stripe-Signature header and reduces the event.
// Any verification or decoding failure is a validation error.
func (g *Gateway) ParseWebhook(payload []byte, signature string) (*domain.PaymentEvent, error) {
	if g.webhookSecret == "" {
		return nil, domain.NewMisconfigured("STRIPE_WEBHOOK_SECRET が未設定です。")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, &domain.Error{Kind: domain.ErrValidation, Message: "Invalid signature", Err: err}
	}
	if event.Data == nil {
		return nil, domain.NewValidation("Invalid payload")
	}

	var obj eventObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, &domain.Error{Kind: domain.ErrValidation, Message: "Invalid payload", Err: err}
	}

	result := &domain.PaymentEvent{
		ID:       event.ID,
		Type:     domain.PaymentEventType(event.Type),
		ObjectID: obj.ID,
		Metadata: obj.Metadata,
	}
	switch result.Type {
	case domain.EventCheckoutCompleted:
		result.PaymentIntentID = paymentIntentID(obj.PaymentIntent)
	case domain.EventPaymentIntentSucceeded, domain.EventPaymentIntentFailed:
		result.PaymentIntentID = obj.ID
	}
	return result, nil
}

func paymentIntentID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var expanded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &expanded); err == nil {
		return expanded.ID
	}
	return ""
}

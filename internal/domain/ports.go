package domain

import (
	"context"
	"io"
	"time"
)

type ReceiptDocument struct {
	CertificateNo string
	DonorName     string
	DonorAddress  string
	Amount        string
	PaymentMethod PaymentMethod
	DonatedAt     time.Time
}

type ReceiptRenderer interface {
	Render(doc ReceiptDocument) ([]byte, error)
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type EmailMessage struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// ReceiptStorage keeps rendered PDFs addressed by their download token.
type ReceiptStorage interface {
	Save(ctx context.Context, data []byte) (string, error)
	Open(ctx context.Context, token string) (io.ReadCloser, error)
	Cleanup(ctx context.Context) (int, error)
}

type ReceiptEvent struct {
	ReceiptID     int64
	CertificateNo string
	Status        ReceiptStatus
	PaymentMethod PaymentMethod
	Amount        string
	OccurredAt    time.Time
}

type ReceiptEventPublisher interface {
	PublishReceipt(ctx context.Context, event ReceiptEvent) error
}

type CheckoutSessionRequest struct {
	ReceiptID     int64
	CertificateNo string
	DonorName     string
	DonorEmail    string
	AmountYen     int64
	SuccessURL    string
	CancelURL     string
}

type CheckoutSession struct {
	ID            string
	URL           string
	PaymentStatus string
	Metadata      map[string]string
}

type PaymentEventType string

const (
	EventCheckoutCompleted      PaymentEventType = "checkout.session.completed"
	EventPaymentIntentSucceeded PaymentEventType = "payment_intent.succeeded"
	EventPaymentIntentFailed    PaymentEventType = "payment_intent.payment_failed"
)

// PaymentEvent is a verified processor webhook reduced to the fields the
// reconciliation needs.
type PaymentEvent struct {
	ID              string
	Type            PaymentEventType
	ObjectID        string
	PaymentIntentID string
	Metadata        map[string]string
}

type PaymentGateway interface {
	Ready() error
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}

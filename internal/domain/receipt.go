package domain

import (
	"context"
	"fmt"
	"time"
)

type ReceiptStatus string

const (
	StatusCreated         ReceiptStatus = "created"
	StatusIssued          ReceiptStatus = "issued"
	StatusAwaitingPayment ReceiptStatus = "awaiting_payment"
	StatusMailFailed      ReceiptStatus = "mail_failed"
	StatusCheckoutCreated ReceiptStatus = "checkout_created"
	StatusPaid            ReceiptStatus = "paid"
	StatusPaymentFailed   ReceiptStatus = "payment_failed"
)

const AnonymousDonor = "匿名"

type Receipt struct {
	ID              int64
	CertificateNo   string
	DonorName       string
	DonorPostalCode string
	DonorAddress    string
	DonorEmail      string
	Amount          string
	PaymentMethod   PaymentMethod
	DonatedAt       time.Time
	DownloadToken   *string
	Status          ReceiptStatus

	IsChecked bool
	CheckedAt *time.Time
	CheckedBy *string

	IsDeleted bool
	DeletedAt *time.Time
	DeletedBy *string

	CreatedAt time.Time

	StripeCheckoutSessionID *string
	StripePaymentIntentID   *string
	StripeLastEventID       *string
	PaidAt                  *time.Time
}

// CertificateNumber is the final human readable number stamped after insert.
func CertificateNumber(donatedAt time.Time, id int64) string {
	return fmt.Sprintf("RCPT-%d-%06d", donatedAt.Year(), id)
}

// PaymentUpdate carries the optional processor correlation fields of a
// payment status change. Nil pointers keep the stored value.
type PaymentUpdate struct {
	Status    ReceiptStatus
	SessionID *string
	IntentID  *string
	EventID   *string
}

type ReceiptEdit struct {
	DonorName       string
	DonorPostalCode string
	DonorAddress    string
	DonorEmail      string
	Amount          string
	PaymentMethod   PaymentMethod
	Status          ReceiptStatus
	DonatedAt       time.Time
	CreatedAt       time.Time
}

type ReceiptCounters struct {
	Active  int64
	Deleted int64
}

type DBDiagnostics struct {
	Database    string
	User        string
	TableExists bool
}

type ReceiptRepository interface {
	Create(ctx context.Context, receipt *Receipt) (int64, string, error)
	UpdateStatus(ctx context.Context, receiptID int64, status ReceiptStatus, token *string) error
	UpdatePaymentStatus(ctx context.Context, receiptID int64, update PaymentUpdate) error
	GetByID(ctx context.Context, receiptID int64) (*Receipt, error)
	GetByCertificateNo(ctx context.Context, certificateNo string) (*Receipt, error)
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*Receipt, error)
	ListActive(ctx context.Context, limit int) ([]*Receipt, int64, error)
	SetChecked(ctx context.Context, receiptID int64, checked bool, actor string) error
	SoftDelete(ctx context.Context, receiptID int64, actor string) error
	EditFields(ctx context.Context, receiptID int64, edit ReceiptEdit) error
	Counters(ctx context.Context) (ReceiptCounters, error)
	Diagnostics(ctx context.Context) (DBDiagnostics, error)
}

type SchemaGuard interface {
	Ensure(ctx context.Context) error
}

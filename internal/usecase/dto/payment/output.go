package paymentdto

type CheckoutOutput struct {
	CheckoutURL string
	SessionID   string
}

type WebhookOutcome string

const (
	OutcomeApplied   WebhookOutcome = "applied"
	OutcomeDuplicate WebhookOutcome = "duplicate"
	OutcomeIgnored   WebhookOutcome = "ignored"
)

type WebhookOutput struct {
	EventID   string
	EventType string
	ReceiptID int64
	Outcome   WebhookOutcome
}

type SuccessOutput struct {
	SessionID     string
	CertificateNo string
	DonorName     string
	PaymentStatus string
	DownloadToken string
}

package submissiondto

import "github.com/LavaJover/shvark-donation-service/internal/domain"

type SubmitOutput struct {
	ReceiptID        int64
	CertificateNo    string
	DonorName        string
	DownloadToken    string
	PaymentMethod    domain.PaymentMethod
	PaymentKind      domain.PaymentKind
	Status           domain.ReceiptStatus
	BankTransferInfo string
	// RedirectURL is set for card payments only.
	RedirectURL string
}

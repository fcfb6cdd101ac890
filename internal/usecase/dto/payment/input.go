package paymentdto

import "github.com/LavaJover/shvark-donation-service/internal/usecase/links"

type CheckoutInput struct {
	ReceiptID     *int64
	CertificateNo string
	Links         links.Builder
}

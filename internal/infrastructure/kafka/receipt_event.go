package kafka

import (
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
)

type ReceiptEvent struct {
	ReceiptID     int64     `json:"receipt_id"`
	CertificateNo string    `json:"certificate_no"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	Amount        string    `json:"amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func toReceiptEvent(e domain.ReceiptEvent) ReceiptEvent {
	return ReceiptEvent{
		ReceiptID:     e.ReceiptID,
		CertificateNo: e.CertificateNo,
		Status:        string(e.Status),
		PaymentMethod: string(e.PaymentMethod),
		Amount:        e.Amount,
		OccurredAt:    e.OccurredAt,
	}
}

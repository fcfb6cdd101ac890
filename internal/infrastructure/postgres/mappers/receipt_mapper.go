package mappers

import (
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/postgres/models"
)

func ToDomainReceipt(model *models.ReceiptModel) *domain.Receipt {
	return &domain.Receipt{
		ID:                      model.ID,
		CertificateNo:           model.CertificateNo,
		DonorName:               model.DonorName,
		DonorPostalCode:         model.DonorPostalCode,
		DonorAddress:            model.DonorAddress,
		DonorEmail:              model.DonorEmail,
		Amount:                  model.Amount,
		PaymentMethod:           model.PaymentMethod,
		DonatedAt:               model.DonatedAt,
		DownloadToken:           model.DownloadToken,
		Status:                  model.Status,
		IsChecked:               model.IsChecked,
		CheckedAt:               model.CheckedAt,
		CheckedBy:               model.CheckedBy,
		IsDeleted:               model.IsDeleted,
		DeletedAt:               model.DeletedAt,
		DeletedBy:               model.DeletedBy,
		CreatedAt:               model.CreatedAt,
		StripeCheckoutSessionID: model.StripeCheckoutSessionID,
		StripePaymentIntentID:   model.StripePaymentIntentID,
		StripeLastEventID:       model.StripeLastEventID,
		PaidAt:                  model.PaidAt,
	}
}

func ToGORMReceipt(receipt *domain.Receipt) *models.ReceiptModel {
	return &models.ReceiptModel{
		ID:                      receipt.ID,
		CertificateNo:           receipt.CertificateNo,
		DonorName:               receipt.DonorName,
		DonorPostalCode:         receipt.DonorPostalCode,
		DonorAddress:            receipt.DonorAddress,
		DonorEmail:              receipt.DonorEmail,
		Amount:                  receipt.Amount,
		PaymentMethod:           receipt.PaymentMethod,
		DonatedAt:               receipt.DonatedAt,
		DownloadToken:           receipt.DownloadToken,
		Status:                  receipt.Status,
		IsChecked:               receipt.IsChecked,
		CheckedAt:               receipt.CheckedAt,
		CheckedBy:               receipt.CheckedBy,
		IsDeleted:               receipt.IsDeleted,
		DeletedAt:               receipt.DeletedAt,
		DeletedBy:               receipt.DeletedBy,
		CreatedAt:               receipt.CreatedAt,
		StripeCheckoutSessionID: receipt.StripeCheckoutSessionID,
		StripePaymentIntentID:   receipt.StripePaymentIntentID,
		StripeLastEventID:       receipt.StripeLastEventID,
		PaidAt:                  receipt.PaidAt,
	}
}

func ToDomainReceipts(rows []models.ReceiptModel) []*domain.Receipt {
	receipts := make([]*domain.Receipt, 0, len(rows))
	for i := range rows {
		receipts = append(receipts, ToDomainReceipt(&rows[i]))
	}
	return receipts
}

package models

import (
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
)

type ReceiptModel struct {
	ID              int64                `gorm:"primaryKey;autoIncrement"`
	CertificateNo   string               `gorm:"size:32;not null;uniqueIndex:uk_certificate_no"`
	DonorName       string               `gorm:"size:255;not null"`
	DonorPostalCode string               `gorm:"size:16;not null;default:''"`
	DonorAddress    string               `gorm:"size:255;not null;default:''"`
	DonorEmail      string               `gorm:"size:255;not null"`
	Amount          string               `gorm:"column:amount_yen;size:64;not null"`
	PaymentMethod   domain.PaymentMethod `gorm:"size:64;not null"`
	DonatedAt       time.Time            `gorm:"not null"`
	DownloadToken   *string              `gorm:"size:64;uniqueIndex:uk_download_token"`
	Status          domain.ReceiptStatus `gorm:"size:32;not null;default:created"`

	IsChecked bool `gorm:"not null;default:false"`
	CheckedAt *time.Time
	CheckedBy *string `gorm:"size:64"`

	IsDeleted bool `gorm:"not null;default:false"`
	DeletedAt *time.Time
	DeletedBy *string `gorm:"size:64"`

	CreatedAt time.Time

	StripeCheckoutSessionID *string `gorm:"size:255"`
	StripePaymentIntentID   *string `gorm:"size:255"`
	StripeLastEventID       *string `gorm:"size:255"`
	PaidAt                  *time.Time
}

func (ReceiptModel) TableName() string {
	return "donation_receipts"
}

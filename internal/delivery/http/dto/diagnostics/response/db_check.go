package response

import (
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
)

type DBResult struct {
	OK   int    `json:"ok"`
	DB   string `json:"db"`
	User string `json:"user"`
}

type DBCheckResponse struct {
	OK                     bool     `json:"ok"`
	DBResult               DBResult `json:"db_result"`
	DonationReceiptsExists bool     `json:"donation_receipts_exists"`
}

type ReceiptsCheckResponse struct {
	OK           bool         `json:"ok"`
	Total        int64        `json:"total"`
	TotalDeleted int64        `json:"total_deleted"`
	Rows         []ReceiptRow `json:"rows"`
}

type ReceiptRow struct {
	ID              int64      `json:"id"`
	CertificateNo   string     `json:"certificate_no"`
	DonorName       string     `json:"donor_name"`
	DonorPostalCode string     `json:"donor_postal_code"`
	DonorAddress    string     `json:"donor_address"`
	DonorEmail      string     `json:"donor_email"`
	AmountYen       string     `json:"amount_yen"`
	PaymentMethod   string     `json:"payment_method"`
	Status          string     `json:"status"`
	IsChecked       bool       `json:"is_checked"`
	CheckedAt       *time.Time `json:"checked_at"`
	CheckedBy       *string    `json:"checked_by"`
	IsDeleted       bool       `json:"is_deleted"`
	DeletedAt       *time.Time `json:"deleted_at"`
	DeletedBy       *string    `json:"deleted_by"`
	DonatedAt       time.Time  `json:"donated_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

func ToReceiptRows(receipts []*domain.Receipt) []ReceiptRow {
	rows := make([]ReceiptRow, 0, len(receipts))
	for _, r := range receipts {
		rows = append(rows, ReceiptRow{
			ID:              r.ID,
			CertificateNo:   r.CertificateNo,
			DonorName:       r.DonorName,
			DonorPostalCode: r.DonorPostalCode,
			DonorAddress:    r.DonorAddress,
			DonorEmail:      r.DonorEmail,
			AmountYen:       r.Amount,
			PaymentMethod:   string(r.PaymentMethod),
			Status:          string(r.Status),
			IsChecked:       r.IsChecked,
			CheckedAt:       r.CheckedAt,
			CheckedBy:       r.CheckedBy,
			IsDeleted:       r.IsDeleted,
			DeletedAt:       r.DeletedAt,
			DeletedBy:       r.DeletedBy,
			DonatedAt:       r.DonatedAt,
			CreatedAt:       r.CreatedAt,
		})
	}
	return rows
}

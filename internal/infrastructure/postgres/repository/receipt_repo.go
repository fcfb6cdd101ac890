package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DefaultReceiptRepository struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewDefaultReceiptRepository(db *gorm.DB, loc *time.Location) *DefaultReceiptRepository {
	return &DefaultReceiptRepository{
		DB:  db,
		Now: func() time.Time { return time.Now().In(loc) },
	}
}

// temporaryCertificateNo fits the VARCHAR(32) column until the real number is
// stamped.
func temporaryCertificateNo() string {
	return "TEMP-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:27]
}

// Create inserts the row with a placeholder certificate number and then stamps
// the number derived from the generated id.
func (r *DefaultReceiptRepository) Create(ctx context.Context, receipt *domain.Receipt) (int64, string, error) {
	model := mappers.ToGORMReceipt(receipt)
	model.ID = 0
	model.CertificateNo = temporaryCertificateNo()
	model.Status = domain.StatusCreated
	if model.CreatedAt.IsZero() {
		model.CreatedAt = r.Now()
	}

	var certificateNo string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("insert receipt: %w", err)
		}
		certificateNo = domain.CertificateNumber(receipt.DonatedAt, model.ID)
		return tx.Model(&models.ReceiptModel{}).
			Where("id = ?", model.ID).
			Update("certificate_no", certificateNo).Error
	})
	if err != nil {
		return 0, "", err
	}

	return model.ID, certificateNo, nil
}

func (r *DefaultReceiptRepository) UpdateStatus(ctx context.Context, receiptID int64, status domain.ReceiptStatus, token *string) error {
	return r.DB.WithContext(ctx).Exec(
		`UPDATE donation_receipts
		SET status = ?, download_token = COALESCE(?, download_token)
		WHERE id = ?`,
		string(status), token, receiptID,
	).Error
}

// UpdatePaymentStatus keeps stored correlation ids for nil fields and stamps
// paid_at only the first time the row becomes paid. Event idempotence is the
// caller's job.
func (r *DefaultReceiptRepository) UpdatePaymentStatus(ctx context.Context, receiptID int64, update domain.PaymentUpdate) error {
	return r.DB.WithContext(ctx).Exec(
		`UPDATE donation_receipts
		SET
			status = ?,
			stripe_checkout_session_id = COALESCE(?, stripe_checkout_session_id),
			stripe_payment_intent_id = COALESCE(?, stripe_payment_intent_id),
			stripe_last_event_id = COALESCE(?, stripe_last_event_id),
			paid_at = CASE WHEN ? = 'paid' THEN COALESCE(paid_at, ?) ELSE paid_at END
		WHERE id = ?`,
		string(update.Status),
		update.SessionID,
		update.IntentID,
		update.EventID,
		string(update.Status),
		r.Now(),
		receiptID,
	).Error
}

func (r *DefaultReceiptRepository) GetByID(ctx context.Context, receiptID int64) (*domain.Receipt, error) {
	return r.first(ctx, "id = ? AND is_deleted = ?", receiptID, false)
}

func (r *DefaultReceiptRepository) GetByCertificateNo(ctx context.Context, certificateNo string) (*domain.Receipt, error) {
	return r.first(ctx, "certificate_no = ? AND is_deleted = ?", certificateNo, false)
}

// GetByPaymentIntent does not filter deleted rows: a late payment event must
// still reach a receipt staff already removed.
func (r *DefaultReceiptRepository) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Receipt, error) {
	return r.first(ctx, "stripe_payment_intent_id = ?", paymentIntentID)
}

func (r *DefaultReceiptRepository) first(ctx context.Context, query string, args ...interface{}) (*domain.Receipt, error) {
	var model models.ReceiptModel
	if err := r.DB.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, err
	}
	return mappers.ToDomainReceipt(&model), nil
}

func (r *DefaultReceiptRepository) ListActive(ctx context.Context, limit int) ([]*domain.Receipt, int64, error) {
	var total int64
	base := r.DB.WithContext(ctx).Model(&models.ReceiptModel{}).Where("is_deleted = ?", false)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReceiptModel
	if err := r.DB.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return mappers.ToDomainReceipts(rows), total, nil
}

func (r *DefaultReceiptRepository) SetChecked(ctx context.Context, receiptID int64, checked bool, actor string) error {
	updates := map[string]interface{}{
		"is_checked": false,
		"checked_at": nil,
		"checked_by": nil,
	}
	if checked {
		updates = map[string]interface{}{
			"is_checked": true,
			"checked_at": r.Now(),
			"checked_by": actor,
		}
	}
	return r.updateActive(ctx, receiptID, updates)
}

func (r *DefaultReceiptRepository) SoftDelete(ctx context.Context, receiptID int64, actor string) error {
	return r.updateActive(ctx, receiptID, map[string]interface{}{
		"is_deleted": true,
		"deleted_at": r.Now(),
		"deleted_by": actor,
	})
}

func (r *DefaultReceiptRepository) EditFields(ctx context.Context, receiptID int64, edit domain.ReceiptEdit) error {
	return r.updateActive(ctx, receiptID, map[string]interface{}{
		"donor_name":        edit.DonorName,
		"donor_postal_code": edit.DonorPostalCode,
		"donor_address":     edit.DonorAddress,
		"donor_email":       edit.DonorEmail,
		"amount_yen":        edit.Amount,
		"payment_method":    string(edit.PaymentMethod),
		"status":            string(edit.Status),
		"donated_at":        edit.DonatedAt,
		"created_at":        edit.CreatedAt,
	})
}

func (r *DefaultReceiptRepository) updateActive(ctx context.Context, receiptID int64, updates map[string]interface{}) error {
	result := r.DB.WithContext(ctx).
		Model(&models.ReceiptModel{}).
		Where("id = ? AND is_deleted = ?", receiptID, false).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrReceiptNotFound
	}
	return nil
}

func (r *DefaultReceiptRepository) Counters(ctx context.Context) (domain.ReceiptCounters, error) {
	var counters domain.ReceiptCounters
	db := r.DB.WithContext(ctx).Model(&models.ReceiptModel{})
	if err := db.Where("is_deleted = ?", false).Count(&counters.Active).Error; err != nil {
		return counters, err
	}
	db = r.DB.WithContext(ctx).Model(&models.ReceiptModel{})
	if err := db.Where("is_deleted = ?", true).Count(&counters.Deleted).Error; err != nil {
		return counters, err
	}
	return counters, nil
}

func (r *DefaultReceiptRepository) Diagnostics(ctx context.Context) (domain.DBDiagnostics, error) {
	var diag domain.DBDiagnostics
	row := r.DB.WithContext(ctx).Raw("SELECT current_database(), current_user").Row()
	if err := row.Scan(&diag.Database, &diag.User); err != nil {
		return diag, err
	}

	var count int64
	err := r.DB.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = ?`,
		models.ReceiptModel{}.TableName(),
	).Scan(&count).Error
	if err != nil {
		return diag, err
	}
	diag.TableExists = count > 0
	return diag, nil
}

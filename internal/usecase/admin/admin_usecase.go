package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/security"
	admindto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/admin"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = domain.NewUnauthorized("ユーザー名またはパスワードが違います。")

func (uc *DefaultAdminUsecase) Authenticate(username, password string) error {
	stored, ok := uc.Users[strings.TrimSpace(username)]
	if !ok || !security.CheckPassword(stored, password) {
		return ErrInvalidCredentials
	}
	return nil
}

func (uc *DefaultAdminUsecase) List(ctx context.Context) (*admindto.ListOutput, error) {
	if err := uc.Schema.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("ensure receipts table: %w", err)
	}
	receipts, total, err := uc.Receipts.ListActive(ctx, uc.ListLimit)
	if err != nil {
		return nil, err
	}
	return &admindto.ListOutput{Total: total, Receipts: receipts}, nil
}

func (uc *DefaultAdminUsecase) Get(ctx context.Context, receiptID int64) (*domain.Receipt, error) {
	if err := uc.Schema.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("ensure receipts table: %w", err)
	}
	receipt, err := uc.Receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, notFound(err)
	}
	return receipt, nil
}

func (uc *DefaultAdminUsecase) SetChecked(ctx context.Context, receiptID int64, checked bool, actor string) error {
	if err := uc.Schema.Ensure(ctx); err != nil {
		return fmt.Errorf("ensure receipts table: %w", err)
	}
	if err := uc.Receipts.SetChecked(ctx, receiptID, checked, actor); err != nil {
		return notFound(err)
	}
	uc.Log.Info("receipt check toggled",
		zap.Int64("receipt_id", receiptID),
		zap.Bool("checked", checked),
		zap.String("actor", actor),
	)
	return nil
}

func (uc *DefaultAdminUsecase) SoftDelete(ctx context.Context, receiptID int64, actor string) error {
	if err := uc.Schema.Ensure(ctx); err != nil {
		return fmt.Errorf("ensure receipts table: %w", err)
	}
	if err := uc.Receipts.SoftDelete(ctx, receiptID, actor); err != nil {
		return notFound(err)
	}
	uc.Log.Info("receipt soft-deleted", zap.Int64("receipt_id", receiptID), zap.String("actor", actor))
	return nil
}

// Edit overwrites the editable fields. Every field but the donor name is
// required; an empty name is stored as anonymous.
func (uc *DefaultAdminUsecase) Edit(ctx context.Context, receiptID int64, input *admindto.EditInput) error {
	edit, err := uc.parseEdit(input)
	if err != nil {
		return err
	}
	if err := uc.Schema.Ensure(ctx); err != nil {
		return fmt.Errorf("ensure receipts table: %w", err)
	}
	if err := uc.Receipts.EditFields(ctx, receiptID, edit); err != nil {
		return notFound(err)
	}
	uc.Log.Info("receipt edited", zap.Int64("receipt_id", receiptID))
	return nil
}

func (uc *DefaultAdminUsecase) parseEdit(input *admindto.EditInput) (domain.ReceiptEdit, error) {
	edit := domain.ReceiptEdit{
		DonorName:       strings.TrimSpace(input.DonorName),
		DonorPostalCode: strings.TrimSpace(input.DonorPostalCode),
		DonorAddress:    strings.TrimSpace(input.DonorAddress),
		DonorEmail:      strings.TrimSpace(input.DonorEmail),
		Amount:          strings.TrimSpace(input.Amount),
		PaymentMethod:   domain.PaymentMethod(strings.TrimSpace(input.PaymentMethod)),
		Status:          domain.ReceiptStatus(strings.TrimSpace(input.Status)),
	}
	if edit.DonorName == "" {
		edit.DonorName = domain.AnonymousDonor
	}
	donatedAt := strings.TrimSpace(input.DonatedAt)
	createdAt := strings.TrimSpace(input.CreatedAt)

	if edit.DonorPostalCode == "" || edit.DonorAddress == "" || edit.DonorEmail == "" ||
		edit.Amount == "" || edit.PaymentMethod == "" || edit.Status == "" ||
		donatedAt == "" || createdAt == "" {
		return edit, domain.NewValidation("必須項目が未入力です。")
	}
	if !edit.PaymentMethod.Valid() {
		return edit, domain.NewValidation("支払方法は 現金 / 振込 / クレジットカード から選択してください。")
	}

	var err error
	if edit.DonatedAt, err = ParseDateTime(donatedAt, uc.Location); err != nil {
		return edit, err
	}
	if edit.CreatedAt, err = ParseDateTime(createdAt, uc.Location); err != nil {
		return edit, err
	}
	return edit, nil
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
}

// ParseDateTime accepts ISO dates with an optional time, separated by "T" or a
// space, and reads them in loc.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), " ", "T")
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.NewValidation("日時形式が不正です。")
}

func (uc *DefaultAdminUsecase) DBCheck(ctx context.Context) (*admindto.DBCheckOutput, error) {
	diag, err := uc.Receipts.Diagnostics(ctx)
	if err != nil {
		return nil, err
	}
	return &admindto.DBCheckOutput{
		Database:    diag.Database,
		User:        diag.User,
		TableExists: diag.TableExists,
	}, nil
}

func (uc *DefaultAdminUsecase) ReceiptsCheck(ctx context.Context) (*admindto.ReceiptsCheckOutput, error) {
	if err := uc.Schema.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("ensure receipts table: %w", err)
	}
	counters, err := uc.Receipts.Counters(ctx)
	if err != nil {
		return nil, err
	}
	receipts, _, err := uc.Receipts.ListActive(ctx, diagnosticsLimit)
	if err != nil {
		return nil, err
	}
	return &admindto.ReceiptsCheckOutput{
		Total:        counters.Active,
		TotalDeleted: counters.Deleted,
		Receipts:     receipts,
	}, nil
}

func notFound(err error) error {
	if errors.Is(err, domain.ErrReceiptNotFound) {
		return domain.NewNotFound(receiptMissingText, nil)
	}
	return err
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/usecase"
	paymentdto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/payment"
	"go.uber.org/zap"
)

const checkoutSessionPlaceholder = "{CHECKOUT_SESSION_ID}"

func (uc *DefaultPaymentUsecase) CreateCheckoutSession(ctx context.Context, input *paymentdto.CheckoutInput) (*paymentdto.CheckoutOutput, error) {
	// An opened Stripe session must reach the store even if the caller left.
	ctx = context.WithoutCancel(ctx)

	if err := uc.Gateway.Ready(); err != nil {
		return nil, err
	}

	certificateNo := strings.TrimSpace(input.CertificateNo)
	if input.ReceiptID == nil && certificateNo == "" {
		return nil, domain.NewValidation("receipt_id または certificate_no を指定してください。")
	}

	if err := uc.Schema.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("ensure receipts table: %w", err)
	}

	var (
		receipt *domain.Receipt
		err     error
	)
	if input.ReceiptID != nil {
		receipt, err = uc.Receipts.GetByID(ctx, *input.ReceiptID)
	} else {
		receipt, err = uc.Receipts.GetByCertificateNo(ctx, certificateNo)
	}
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return nil, domain.NewNotFound("対象の寄付データが見つかりません。", nil)
		}
		return nil, err
	}

	if receipt.PaymentMethod.Kind() != domain.KindCreditCard {
		return nil, domain.NewValidation("クレジットカード決済のデータではありません。")
	}
	amount, err := domain.ParseAmount(receipt.Amount, uc.Settings.Amounts)
	if err != nil {
		return nil, err
	}

	successURL := uc.Settings.SuccessURL
	if successURL == "" {
		successURL = input.Links.URL("/payment/success") + "?session_id=" + checkoutSessionPlaceholder
	}
	cancelURL := uc.Settings.CancelURL
	if cancelURL == "" {
		cancelURL = input.Links.URL("/payment/cancel")
	}

	session, err := uc.Gateway.CreateCheckoutSession(ctx, domain.CheckoutSessionRequest{
		ReceiptID:     receipt.ID,
		CertificateNo: receipt.CertificateNo,
		DonorName:     receipt.DonorName,
		DonorEmail:    receipt.DonorEmail,
		AmountYen:     amount,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	})
	uc.Metrics.RecordCheckoutSession(err)
	if err != nil {
		uc.Log.Error("failed to create checkout session", zap.Int64("receipt_id", receipt.ID), zap.Error(err))
		return nil, err
	}

	sessionID := session.ID
	err = uc.Receipts.UpdatePaymentStatus(ctx, receipt.ID, domain.PaymentUpdate{
		Status:    domain.StatusCheckoutCreated,
		SessionID: &sessionID,
	})
	if err != nil {
		uc.Log.Error("failed to store checkout session", zap.Int64("receipt_id", receipt.ID), zap.Error(err))
		return nil, err
	}
	uc.Metrics.RecordStatus(string(domain.StatusCheckoutCreated))
	uc.publish(receipt, domain.StatusCheckoutCreated)

	uc.Log.Info("checkout session created",
		zap.Int64("receipt_id", receipt.ID),
		zap.String("session_id", sessionID),
		zap.Int64("amount_yen", amount),
	)

	return &paymentdto.CheckoutOutput{
		CheckoutURL: session.URL,
		SessionID:   sessionID,
	}, nil
}

func (uc *DefaultPaymentUsecase) publish(receipt *domain.Receipt, status domain.ReceiptStatus) {
	usecase.PublishReceiptEvent(uc.Publisher, uc.Log, domain.ReceiptEvent{
		ReceiptID:     receipt.ID,
		CertificateNo: receipt.CertificateNo,
		Status:        status,
		PaymentMethod: receipt.PaymentMethod,
		Amount:        receipt.Amount,
		OccurredAt:    time.Now().In(uc.Settings.Location),
	})
}

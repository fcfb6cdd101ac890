package payment

import (
	"context"
	"strings"

	paymentdto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/payment"
	"go.uber.org/zap"
)

const defaultDonorName = "ご寄付者"

// SuccessPage collects what the post-checkout page shows. Lookup failures are
// logged and leave the fields empty.
func (uc *DefaultPaymentUsecase) SuccessPage(ctx context.Context, sessionID string) *paymentdto.SuccessOutput {
	out := &paymentdto.SuccessOutput{
		SessionID: strings.TrimSpace(sessionID),
		DonorName: defaultDonorName,
	}
	if out.SessionID == "" {
		return out
	}
	if err := uc.Gateway.Ready(); err != nil {
		return out
	}

	session, err := uc.Gateway.GetCheckoutSession(ctx, out.SessionID)
	if err != nil {
		uc.Log.Error("failed to retrieve checkout session for success page", zap.String("session_id", out.SessionID), zap.Error(err))
		return out
	}
	out.CertificateNo = session.Metadata["certificate_no"]
	if name, ok := session.Metadata["donor_name"]; ok {
		out.DonorName = name
	}
	out.PaymentStatus = session.PaymentStatus

	receiptID := metadataReceiptID(session.Metadata)
	if receiptID == 0 {
		return out
	}
	if err := uc.Schema.Ensure(ctx); err != nil {
		uc.Log.Error("failed to load receipt token for success page", zap.Error(err))
		return out
	}
	receipt, err := uc.Receipts.GetByID(ctx, receiptID)
	if err != nil {
		uc.Log.Error("failed to load receipt token for success page", zap.Int64("receipt_id", receiptID), zap.Error(err))
		return out
	}
	if receipt.DownloadToken != nil {
		out.DownloadToken = *receipt.DownloadToken
	}
	return out
}

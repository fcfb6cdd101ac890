package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	paymentdto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/payment"
	"go.uber.org/zap"
)

// HandleWebhook verifies and applies one processor event. Replays of the last
// applied event and unknown event types succeed without touching the store.
func (uc *DefaultPaymentUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) (*paymentdto.WebhookOutput, error) {
	ctx = context.WithoutCancel(ctx)

	if err := uc.Gateway.Ready(); err != nil {
		return nil, err
	}
	event, err := uc.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		return nil, err
	}

	out := &paymentdto.WebhookOutput{
		EventID:   event.ID,
		EventType: string(event.Type),
		Outcome:   paymentdto.OutcomeIgnored,
	}
	log := uc.Log.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

	if err := uc.Schema.Ensure(ctx); err != nil {
		uc.Metrics.RecordWebhook(string(event.Type), "error")
		return nil, fmt.Errorf("ensure receipts table: %w", err)
	}

	update := domain.PaymentUpdate{EventID: &event.ID}
	if event.PaymentIntentID != "" {
		intentID := event.PaymentIntentID
		update.IntentID = &intentID
	}

	var receiptID int64
	switch event.Type {
	case domain.EventCheckoutCompleted:
		receiptID = metadataReceiptID(event.Metadata)
		update.Status = domain.StatusPaid
		if event.ObjectID != "" {
			sessionID := event.ObjectID
			update.SessionID = &sessionID
		}
	case domain.EventPaymentIntentSucceeded, domain.EventPaymentIntentFailed:
		update.Status = domain.StatusPaid
		if event.Type == domain.EventPaymentIntentFailed {
			update.Status = domain.StatusPaymentFailed
		}
		receiptID = metadataReceiptID(event.Metadata)
		if receiptID == 0 && event.PaymentIntentID != "" {
			receiptID, err = uc.receiptIDByIntent(ctx, event.PaymentIntentID)
			if err != nil {
				uc.Metrics.RecordWebhook(string(event.Type), "error")
				return nil, err
			}
		}
	default:
		log.Debug("ignoring webhook event")
		uc.Metrics.RecordWebhook(string(event.Type), string(out.Outcome))
		return out, nil
	}

	if receiptID == 0 {
		log.Warn("webhook event has no matching receipt")
		uc.Metrics.RecordWebhook(string(event.Type), string(out.Outcome))
		return out, nil
	}
	out.ReceiptID = receiptID

	receipt, err := uc.Receipts.GetByID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			log.Warn("webhook receipt not found", zap.Int64("receipt_id", receiptID))
			uc.Metrics.RecordWebhook(string(event.Type), string(out.Outcome))
			return out, nil
		}
		uc.Metrics.RecordWebhook(string(event.Type), "error")
		return nil, err
	}

	if domain.AlreadyApplied(receipt, event.ID) {
		out.Outcome = paymentdto.OutcomeDuplicate
		log.Info("webhook event already applied", zap.Int64("receipt_id", receiptID))
		uc.Metrics.RecordWebhook(string(event.Type), string(out.Outcome))
		return out, nil
	}

	if err := uc.Receipts.UpdatePaymentStatus(ctx, receiptID, update); err != nil {
		log.Error("failed to apply webhook event", zap.Int64("receipt_id", receiptID), zap.Error(err))
		uc.Metrics.RecordWebhook(string(event.Type), "error")
		return nil, err
	}

	out.Outcome = paymentdto.OutcomeApplied
	uc.Metrics.RecordWebhook(string(event.Type), string(out.Outcome))
	uc.Metrics.RecordStatus(string(update.Status))
	uc.publish(receipt, update.Status)
	log.Info("webhook event applied", zap.Int64("receipt_id", receiptID), zap.String("status", string(update.Status)))

	return out, nil
}

func (uc *DefaultPaymentUsecase) receiptIDByIntent(ctx context.Context, intentID string) (int64, error) {
	receipt, err := uc.Receipts.GetByPaymentIntent(ctx, intentID)
	if errors.Is(err, domain.ErrReceiptNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return receipt.ID, nil
}

// metadataReceiptID returns 0 when receipt_id is absent or not a number.
func metadataReceiptID(metadata map[string]string) int64 {
	raw := metadata["receipt_id"]
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

package usecase

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

// PublishReceiptEvent sends the event in the background; a broker outage is
// logged and never fails the request.
func PublishReceiptEvent(publisher domain.ReceiptEventPublisher, log *zap.Logger, event domain.ReceiptEvent) {
	if publisher == nil {
		return
	}
	go func(event domain.ReceiptEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := publisher.PublishReceipt(ctx, event); err != nil {
			log.Error("failed to publish receipt event",
				zap.Int64("receipt_id", event.ReceiptID),
				zap.String("status", string(event.Status)),
				zap.Error(err),
			)
		}
	}(event)
}

package payment

import (
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Settings holds the checkout parameters. SuccessURL and CancelURL override
// the built-in pages when set.
type Settings struct {
	Amounts    domain.AmountRange
	SuccessURL string
	CancelURL  string
	Location   *time.Location
}

type DefaultPaymentUsecase struct {
	Gateway   domain.PaymentGateway
	Receipts  domain.ReceiptRepository
	Schema    domain.SchemaGuard
	Publisher domain.ReceiptEventPublisher
	Metrics   *metrics.ReceiptMetrics
	Log       *zap.Logger
	Settings  Settings
}

func NewDefaultPaymentUsecase(
	gateway domain.PaymentGateway,
	receipts domain.ReceiptRepository,
	schema domain.SchemaGuard,
	publisher domain.ReceiptEventPublisher,
	receiptMetrics *metrics.ReceiptMetrics,
	log *zap.Logger,
	settings Settings,
) *DefaultPaymentUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	if settings.Location == nil {
		settings.Location = time.FixedZone("JST", 9*60*60)
	}
	return &DefaultPaymentUsecase{
		Gateway:   gateway,
		Receipts:  receipts,
		Schema:    schema,
		Publisher: publisher,
		Metrics:   receiptMetrics,
		Log:       log,
		Settings:  settings,
	}
}

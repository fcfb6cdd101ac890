package submission

import (
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

type Settings struct {
	Location           *time.Location
	BankTransferInfo   string
	CreditCardInputURL string
}

type DefaultSubmissionUsecase struct {
	Schema    domain.SchemaGuard
	Receipts  domain.ReceiptRepository
	Renderer  domain.ReceiptRenderer
	Mailer    domain.Mailer
	Storage   domain.ReceiptStorage
	Publisher domain.ReceiptEventPublisher
	Metrics   *metrics.ReceiptMetrics
	Log       *zap.Logger
	Settings  Settings
	Now       func() time.Time
}

func NewDefaultSubmissionUsecase(
	schema domain.SchemaGuard,
	receipts domain.ReceiptRepository,
	renderer domain.ReceiptRenderer,
	mailer domain.Mailer,
	storage domain.ReceiptStorage,
	publisher domain.ReceiptEventPublisher,
	receiptMetrics *metrics.ReceiptMetrics,
	log *zap.Logger,
	settings Settings,
) *DefaultSubmissionUsecase {
	if settings.Location == nil {
		settings.Location = time.FixedZone("JST", 9*60*60)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultSubmissionUsecase{
		Schema:    schema,
		Receipts:  receipts,
		Renderer:  renderer,
		Mailer:    mailer,
		Storage:   storage,
		Publisher: publisher,
		Metrics:   receiptMetrics,
		Log:       log,
		Settings:  settings,
		Now:       time.Now,
	}
}

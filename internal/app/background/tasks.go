package background

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	defaultCleanupInterval = time.Hour
	healthRefreshInterval  = 15 * time.Second
)

type BackgroundTasks struct {
	Storage         domain.ReceiptStorage
	Health          *grpcapi.HealthHandler
	Metrics         *metrics.ReceiptMetrics
	Log             *zap.Logger
	CleanupInterval time.Duration
}

func NewBackgroundTasks(
	storage domain.ReceiptStorage,
	health *grpcapi.HealthHandler,
	receiptMetrics *metrics.ReceiptMetrics,
	log *zap.Logger,
	cleanupInterval time.Duration,
) *BackgroundTasks {
	if log == nil {
		log = zap.NewNop()
	}
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}
	return &BackgroundTasks{
		Storage:         storage,
		Health:          health,
		Metrics:         receiptMetrics,
		Log:             log,
		CleanupInterval: cleanupInterval,
	}
}

// StartAll launches the loops; every one of them returns when ctx is done.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startReceiptCleanup(ctx)
	if bt.Health != nil {
		go bt.startHealthRefresh(ctx)
	}
}

func (bt *BackgroundTasks) startReceiptCleanup(ctx context.Context) {
	ticker := time.NewTicker(bt.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.cleanupReceipts(ctx)
		}
	}
}

func (bt *BackgroundTasks) cleanupReceipts(ctx context.Context) int {
	removed, err := bt.Storage.Cleanup(ctx)
	if err != nil {
		bt.Log.Warn("receipt cleanup failed", zap.Error(err))
		bt.Metrics.RecordError("receipt_cleanup")
	}
	if removed > 0 {
		bt.Metrics.RecordFilesCleaned(removed)
		bt.Log.Info("expired receipts removed", zap.Int("count", removed))
	}
	return removed
}

func (bt *BackgroundTasks) startHealthRefresh(ctx context.Context) {
	bt.Health.Refresh(ctx)

	ticker := time.NewTicker(healthRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.Health.Refresh(ctx)
		}
	}
}

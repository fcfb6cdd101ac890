package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/config"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/mailer"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/pdf"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/security"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/storage"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/stripe"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.DonationConfig
	DB           *gorm.DB
	Log          *zap.Logger
	Location     *time.Location
	Metrics      *metrics.ReceiptMetrics
	Repositories *Repositories
	Storage      domain.ReceiptStorage
	Publisher    domain.ReceiptEventPublisher
	Gateway      *stripe.Gateway
	Mailer       *mailer.SMTPMailer
	Renderer     *pdf.Renderer
	Sessions     *security.SessionManager

	closers []func() error
}

type Repositories struct {
	ReceiptRepo domain.ReceiptRepository
	Schema      domain.SchemaGuard
}

func InitializeDependencies(ctx context.Context, cfg *config.DonationConfig, log *zap.Logger) (*Dependencies, error) {
	loc := cfg.Receipts.Location()

	db, err := postgres.InitDB(cfg.DonationDB)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	if cfg.DonationDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.DonationDB.MigrationsPath, log); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	repos := &Repositories{
		ReceiptRepo: repository.NewDefaultReceiptRepository(db, loc),
		Schema:      postgres.NewSchemaGuard(db),
	}
	if err := repos.Schema.Ensure(ctx); err != nil {
		// Requests retry the guard, so a cold database does not stop startup.
		log.Warn("schema guard failed at startup", zap.Error(err))
	}

	receiptStorage, err := initStorage(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("receipt storage: %w", err)
	}

	renderer, err := pdf.NewRenderer(cfg.Issuer, loc, log)
	if err != nil {
		return nil, fmt.Errorf("pdf renderer: %w", err)
	}

	deps := &Dependencies{
		Config:       cfg,
		DB:           db,
		Log:          log,
		Location:     loc,
		Metrics:      metrics.NewReceiptMetrics(prometheus.DefaultRegisterer),
		Repositories: repos,
		Storage:      receiptStorage,
		Gateway:      stripe.NewGateway(cfg.Stripe),
		Mailer:       mailer.NewSMTPMailer(cfg.SMTP),
		Renderer:     renderer,
		Sessions:     security.NewSessionManager(cfg.Dashboard.SessionSecret, cfg.Dashboard.SessionTTL),
	}
	deps.Publisher = deps.initPublisher()

	if err := deps.Gateway.Ready(); err != nil {
		log.Warn("stripe is not configured", zap.String("mode", deps.Gateway.Mode()), zap.Error(err))
	}
	if !deps.Mailer.Configured() {
		log.Warn("smtp credentials are not configured, receipt emails will fail")
	}
	if cfg.Dashboard.AdminPassword == "" {
		log.Warn("ADMIN_PASSWORD is empty, the donation form rejects every request")
	}

	return deps, nil
}

// initStorage picks the bucket backend when S3_ENDPOINT is set and the local
// receipt directory otherwise.
func initStorage(ctx context.Context, cfg *config.DonationConfig, log *zap.Logger) (domain.ReceiptStorage, error) {
	if cfg.ObjectStorage.Endpoint == "" {
		return storage.NewFileStorage(cfg.Receipts.Dir, cfg.Receipts.Retention, log)
	}

	client, err := storage.NewS3Client(cfg.ObjectStorage)
	if err != nil {
		return nil, err
	}
	s3, err := storage.NewS3Storage(client, cfg.ObjectStorage.Bucket, cfg.Receipts.Retention)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("receipts stored in object storage",
		zap.String("endpoint", cfg.ObjectStorage.Endpoint),
		zap.String("bucket", cfg.ObjectStorage.Bucket),
	)
	return s3, nil
}

func (d *Dependencies) initPublisher() domain.ReceiptEventPublisher {
	brokers := kafka.ParseBrokers(d.Config.KafkaService.Brokers)
	if len(brokers) == 0 {
		return kafka.NopPublisher{}
	}
	pub := kafka.NewKafkaPublisher(brokers, d.Config.KafkaService.Topic)
	d.closers = append(d.closers, pub.Close)
	return pub
}

// Close releases the publisher and the database pool.
func (d *Dependencies) Close() {
	for _, closeFn := range d.closers {
		if err := closeFn(); err != nil {
			d.Log.Warn("close dependency", zap.Error(err))
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			d.Log.Warn("close database", zap.Error(err))
		}
	}
}

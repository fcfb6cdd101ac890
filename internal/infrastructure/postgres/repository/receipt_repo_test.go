package repository

import (
	"context"
	"errors"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/config"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/postgres"
)

var certificatePattern = regexp.MustCompile(`^RCPT-\d{4}-\d{6,}$`)

// newTestRepository needs a disposable database, e.g.
// DONATION_TEST_DSN="host=localhost user=postgres dbname=donation_test sslmode=disable".
func newTestRepository(t *testing.T) *DefaultReceiptRepository {
	t.Helper()

	dsn := os.Getenv("DONATION_TEST_DSN")
	if dsn == "" {
		t.Skip("DONATION_TEST_DSN not set")
	}
	db, err := postgres.InitDB(config.DonationDB{Dsn: dsn})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := postgres.NewSchemaGuard(db).Ensure(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return NewDefaultReceiptRepository(db, time.FixedZone("JST", 9*60*60))
}

func createTestReceipt(t *testing.T, repo *DefaultReceiptRepository) (int64, string) {
	t.Helper()

	id, certificateNo, err := repo.Create(context.Background(), &domain.Receipt{
		DonorName:       "山田 太郎",
		DonorPostalCode: "612-8403",
		DonorAddress:    "京都市伏見区",
		DonorEmail:      "taro@example.com",
		Amount:          "5000",
		PaymentMethod:   domain.MethodCreditCard,
		DonatedAt:       time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return id, certificateNo
}

func TestCreateStampsCertificateNumber(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id, certificateNo := createTestReceipt(t, repo)
	if certificateNo != domain.CertificateNumber(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), id) {
		t.Fatalf("unexpected certificate number %s for id %d", certificateNo, id)
	}
	if !certificatePattern.MatchString(certificateNo) {
		t.Fatalf("certificate number %s does not match format", certificateNo)
	}

	receipt, err := repo.GetByCertificateNo(ctx, certificateNo)
	if err != nil {
		t.Fatalf("get by certificate: %v", err)
	}
	if receipt.ID != id || receipt.Status != domain.StatusCreated {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
}

func TestPaidAtIsStampedOnce(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	id, _ := createTestReceipt(t, repo)

	first := "evt_first"
	intent := "pi_123"
	if err := repo.UpdatePaymentStatus(ctx, id, domain.PaymentUpdate{Status: domain.StatusPaid, IntentID: &intent, EventID: &first}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	receipt, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if receipt.PaidAt == nil {
		t.Fatalf("paid_at must be set")
	}
	paidAt := *receipt.PaidAt

	second := "evt_second"
	if err := repo.UpdatePaymentStatus(ctx, id, domain.PaymentUpdate{Status: domain.StatusPaid, EventID: &second}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	receipt, err = repo.GetByPaymentIntent(ctx, intent)
	if err != nil {
		t.Fatalf("get by intent: %v", err)
	}
	if !receipt.PaidAt.Equal(paidAt) {
		t.Fatalf("paid_at changed from %v to %v", paidAt, *receipt.PaidAt)
	}
	if receipt.StripeLastEventID == nil || *receipt.StripeLastEventID != second {
		t.Fatalf("last event id not updated")
	}
}

func TestSoftDeletedReceiptsAreHidden(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	id, certificateNo := createTestReceipt(t, repo)

	if err := repo.SoftDelete(ctx, id, "admin"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := repo.GetByID(ctx, id); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("GetByID: expected not found, got %v", err)
	}
	if _, err := repo.GetByCertificateNo(ctx, certificateNo); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("GetByCertificateNo: expected not found, got %v", err)
	}
	rows, _, err := repo.ListActive(ctx, 1000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, row := range rows {
		if row.ID == id {
			t.Fatalf("deleted receipt listed")
		}
	}
	if err := repo.SetChecked(ctx, id, true, "admin"); !errors.Is(err, domain.ErrReceiptNotFound) {
		t.Fatalf("SetChecked on deleted row: expected not found, got %v", err)
	}
}

func TestUpdateStatusKeepsTokenWhenNil(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	id, _ := createTestReceipt(t, repo)

	token := "tok-" + time.Now().Format("150405.000000")
	if err := repo.UpdateStatus(ctx, id, domain.StatusAwaitingPayment, &token); err != nil {
		t.Fatalf("update with token: %v", err)
	}
	if err := repo.UpdateStatus(ctx, id, domain.StatusMailFailed, nil); err != nil {
		t.Fatalf("update without token: %v", err)
	}

	receipt, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if receipt.DownloadToken == nil || *receipt.DownloadToken != token {
		t.Fatalf("token lost: %v", receipt.DownloadToken)
	}
	if receipt.Status != domain.StatusMailFailed {
		t.Fatalf("status: got %s", receipt.Status)
	}
}

// Package usecasetest holds in-memory fakes of the receipt ports for use case
// and handler tests.
package usecasetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
)

// MemoryRepository mirrors the filtering rules of the Postgres repository:
// deleted rows are hidden from every lookup except by payment intent.
type MemoryRepository struct {
	mu     sync.Mutex
	rows   map[int64]*domain.Receipt
	nextID int64

	Now func() time.Time

	// Err, when set, is returned by every method.
	Err error
}

// fail mimics gorm: a finished context aborts the query.
func (r *MemoryRepository) fail(ctx context.Context) error {
	if r.Err != nil {
		return r.Err
	}
	return ctx.Err()
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows: make(map[int64]*domain.Receipt),
		Now:  time.Now,
	}
}

// Put stores a copy of receipt as is, for seeding tests.
func (r *MemoryRepository) Put(receipt *domain.Receipt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *receipt
	r.rows[c.ID] = &c
	if c.ID > r.nextID {
		r.nextID = c.ID
	}
}

// Row returns a copy of the stored receipt regardless of deletion.
func (r *MemoryRepository) Row(id int64) (*domain.Receipt, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, false
	}
	c := *row
	return &c, true
}

func (r *MemoryRepository) Create(ctx context.Context, receipt *domain.Receipt) (int64, string, error) {
	if err := r.fail(ctx); err != nil {
		return 0, "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := *receipt
	c.ID = r.nextID
	c.CertificateNo = domain.CertificateNumber(c.DonatedAt, c.ID)
	if c.Status == "" {
		c.Status = domain.StatusCreated
	}
	r.rows[c.ID] = &c
	return c.ID, c.CertificateNo, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, receiptID int64, status domain.ReceiptStatus, token *string) error {
	if err := r.fail(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[receiptID]
	if !ok {
		return nil
	}
	row.Status = status
	if token != nil {
		t := *token
		row.DownloadToken = &t
	}
	return nil
}

func (r *MemoryRepository) UpdatePaymentStatus(ctx context.Context, receiptID int64, update domain.PaymentUpdate) error {
	if err := r.fail(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[receiptID]
	if !ok {
		return nil
	}
	row.Status = update.Status
	if update.SessionID != nil {
		v := *update.SessionID
		row.StripeCheckoutSessionID = &v
	}
	if update.IntentID != nil {
		v := *update.IntentID
		row.StripePaymentIntentID = &v
	}
	if update.EventID != nil {
		v := *update.EventID
		row.StripeLastEventID = &v
	}
	if update.Status == domain.StatusPaid && row.PaidAt == nil {
		now := r.Now()
		row.PaidAt = &now
	}
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, receiptID int64) (*domain.Receipt, error) {
	return r.find(ctx, func(row *domain.Receipt) bool { return row.ID == receiptID && !row.IsDeleted })
}

func (r *MemoryRepository) GetByCertificateNo(ctx context.Context, certificateNo string) (*domain.Receipt, error) {
	return r.find(ctx, func(row *domain.Receipt) bool { return row.CertificateNo == certificateNo && !row.IsDeleted })
}

func (r *MemoryRepository) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Receipt, error) {
	return r.find(ctx, func(row *domain.Receipt) bool {
		return row.StripePaymentIntentID != nil && *row.StripePaymentIntentID == paymentIntentID
	})
}

func (r *MemoryRepository) find(ctx context.Context, match func(*domain.Receipt) bool) (*domain.Receipt, error) {
	if err := r.fail(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.sortedIDs() {
		if row := r.rows[id]; match(row) {
			c := *row
			return &c, nil
		}
	}
	return nil, domain.ErrReceiptNotFound
}

func (r *MemoryRepository) ListActive(ctx context.Context, limit int) ([]*domain.Receipt, int64, error) {
	if err := r.fail(ctx); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.sortedIDs()
	var (
		out   []*domain.Receipt
		total int64
	)
	for i := len(ids) - 1; i >= 0; i-- {
		row := r.rows[ids[i]]
		if row.IsDeleted {
			continue
		}
		total++
		if len(out) < limit {
			c := *row
			out = append(out, &c)
		}
	}
	return out, total, nil
}

func (r *MemoryRepository) SetChecked(ctx context.Context, receiptID int64, checked bool, actor string) error {
	return r.updateActive(ctx, receiptID, func(row *domain.Receipt) {
		row.IsChecked = checked
		if checked {
			now := r.Now()
			by := actor
			row.CheckedAt = &now
			row.CheckedBy = &by
		} else {
			row.CheckedAt = nil
			row.CheckedBy = nil
		}
	})
}

func (r *MemoryRepository) SoftDelete(ctx context.Context, receiptID int64, actor string) error {
	return r.updateActive(ctx, receiptID, func(row *domain.Receipt) {
		now := r.Now()
		by := actor
		row.IsDeleted = true
		row.DeletedAt = &now
		row.DeletedBy = &by
	})
}

func (r *MemoryRepository) EditFields(ctx context.Context, receiptID int64, edit domain.ReceiptEdit) error {
	return r.updateActive(ctx, receiptID, func(row *domain.Receipt) {
		row.DonorName = edit.DonorName
		row.DonorPostalCode = edit.DonorPostalCode
		row.DonorAddress = edit.DonorAddress
		row.DonorEmail = edit.DonorEmail
		row.Amount = edit.Amount
		row.PaymentMethod = edit.PaymentMethod
		row.Status = edit.Status
		row.DonatedAt = edit.DonatedAt
		row.CreatedAt = edit.CreatedAt
	})
}

func (r *MemoryRepository) updateActive(ctx context.Context, receiptID int64, apply func(*domain.Receipt)) error {
	if err := r.fail(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[receiptID]
	if !ok || row.IsDeleted {
		return domain.ErrReceiptNotFound
	}
	apply(row)
	return nil
}

func (r *MemoryRepository) Counters(ctx context.Context) (domain.ReceiptCounters, error) {
	if err := r.fail(ctx); err != nil {
		return domain.ReceiptCounters{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var c domain.ReceiptCounters
	for _, row := range r.rows {
		if row.IsDeleted {
			c.Deleted++
		} else {
			c.Active++
		}
	}
	return c, nil
}

func (r *MemoryRepository) Diagnostics(ctx context.Context) (domain.DBDiagnostics, error) {
	if err := r.fail(ctx); err != nil {
		return domain.DBDiagnostics{}, err
	}
	return domain.DBDiagnostics{Database: "memory", User: "test", TableExists: true}, nil
}

func (r *MemoryRepository) sortedIDs() []int64 {
	ids := make([]int64, 0, len(r.rows))
	for id := range r.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

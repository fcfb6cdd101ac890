package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReceiptMetrics holds the counters of the donation flow. A nil receiver is
// valid and records nothing.
type ReceiptMetrics struct {
	// Submissions
	ReceiptsSubmittedTotal *prometheus.CounterVec
	DonationAmountTotal    *prometheus.CounterVec
	ReceiptStatusTotal     *prometheus.CounterVec

	// Formatter
	PDFRenderDuration *prometheus.HistogramVec
	EmailsTotal       *prometheus.CounterVec

	// Payments
	CheckoutSessionsTotal *prometheus.CounterVec
	WebhookEventsTotal    *prometheus.CounterVec

	// Storage
	ReceiptFilesCleanedTotal prometheus.Counter

	// Errors
	ReceiptErrorsTotal *prometheus.CounterVec
}

// NewReceiptMetrics registers on reg, or on the default registry when reg is
// nil.
func NewReceiptMetrics(reg prometheus.Registerer) *ReceiptMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &ReceiptMetrics{
		ReceiptsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_receipts_submitted_total",
				Help: "Donation forms accepted and stored",
			},
			[]string{"payment_method"},
		),

		DonationAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_amount_yen_total",
				Help: "Sum of submitted donation amounts in yen",
			},
			[]string{"payment_method"},
		),

		ReceiptStatusTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_receipt_status_total",
				Help: "Receipt status transitions",
			},
			[]string{"status"},
		),

		PDFRenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "donation_receipt_pdf_render_duration_seconds",
				Help:    "Time spent rendering receipt PDFs",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"result"},
		),

		EmailsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_receipt_emails_total",
				Help: "Receipt emails by result",
			},
			[]string{"result"},
		),

		CheckoutSessionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_checkout_sessions_total",
				Help: "Checkout session creation attempts by result",
			},
			[]string{"result"},
		),

		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_webhook_events_total",
				Help: "Payment webhook events by type and outcome",
			},
			[]string{"event_type", "outcome"},
		),

		ReceiptFilesCleanedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "donation_receipt_files_cleaned_total",
				Help: "Expired receipt PDFs removed from storage",
			},
		),

		ReceiptErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_receipt_errors_total",
				Help: "Errors by operation",
			},
			[]string{"operation"},
		),
	}
}

func (m *ReceiptMetrics) RecordSubmitted(paymentMethod string, amountYen int64) {
	if m == nil {
		return
	}
	m.ReceiptsSubmittedTotal.WithLabelValues(paymentMethod).Inc()
	if amountYen > 0 {
		m.DonationAmountTotal.WithLabelValues(paymentMethod).Add(float64(amountYen))
	}
}

func (m *ReceiptMetrics) RecordStatus(status string) {
	if m == nil {
		return
	}
	m.ReceiptStatusTotal.WithLabelValues(status).Inc()
}

func (m *ReceiptMetrics) RecordPDFRender(started time.Time, err error) {
	if m == nil {
		return
	}
	m.PDFRenderDuration.WithLabelValues(result(err)).Observe(time.Since(started).Seconds())
}

func (m *ReceiptMetrics) RecordEmail(err error) {
	if m == nil {
		return
	}
	m.EmailsTotal.WithLabelValues(result(err)).Inc()
}

func (m *ReceiptMetrics) RecordCheckoutSession(err error) {
	if m == nil {
		return
	}
	m.CheckoutSessionsTotal.WithLabelValues(result(err)).Inc()
}

func (m *ReceiptMetrics) RecordWebhook(eventType, outcome string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func (m *ReceiptMetrics) RecordFilesCleaned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ReceiptFilesCleanedTotal.Add(float64(n))
}

func (m *ReceiptMetrics) RecordError(operation string) {
	if m == nil {
		return
	}
	m.ReceiptErrorsTotal.WithLabelValues(operation).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSubmittedCountsAmount(t *testing.T) {
	m := NewReceiptMetrics(prometheus.NewRegistry())

	m.RecordSubmitted("現金", 1500)
	m.RecordSubmitted("現金", 2500)

	if got := testutil.ToFloat64(m.ReceiptsSubmittedTotal.WithLabelValues("現金")); got != 2 {
		t.Fatalf("submitted: got %v", got)
	}
	if got := testutil.ToFloat64(m.DonationAmountTotal.WithLabelValues("現金")); got != 4000 {
		t.Fatalf("amount: got %v", got)
	}
}

func TestRecordEmailSplitsByResult(t *testing.T) {
	m := NewReceiptMetrics(prometheus.NewRegistry())

	m.RecordEmail(nil)
	m.RecordEmail(errors.New("smtp down"))
	m.RecordEmail(errors.New("smtp down"))

	if got := testutil.ToFloat64(m.EmailsTotal.WithLabelValues("error")); got != 2 {
		t.Fatalf("errors: got %v", got)
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *ReceiptMetrics
	m.RecordSubmitted("現金", 1000)
	m.RecordWebhook("checkout.session.completed", "applied")
	m.RecordFilesCleaned(3)
}

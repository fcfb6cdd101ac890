package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseAmountStripsNonDigits(t *testing.T) {
	limits := AmountRange{Min: 1000, Max: 1000000}

	cases := []struct {
		raw  string
		want int64
	}{
		{raw: "¥1,500", want: 1500},
		{raw: " 3000 ", want: 3000},
		{raw: "10,000円", want: 10000},
		{raw: "1000", want: 1000},
		{raw: "1000000", want: 1000000},
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.raw, limits)
		if err != nil {
			t.Fatalf("ParseAmount(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAmount(%q): got %d want %d", tc.raw, got, tc.want)
		}
	}
}

func TestParseAmountRejectsOutOfRange(t *testing.T) {
	limits := AmountRange{Min: 1000, Max: 1000000}

	for _, raw := range []string{"999", "1000001", "", "abc", "¥"} {
		_, err := ParseAmount(raw, limits)
		if err == nil {
			t.Fatalf("ParseAmount(%q) expected error", raw)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("ParseAmount(%q) expected validation error, got %v", raw, err)
		}
	}
}

func TestPaymentMethodKind(t *testing.T) {
	cases := map[PaymentMethod]PaymentKind{
		MethodCash:         KindCash,
		MethodBankTransfer: KindBankTransfer,
		"銀行振込":             KindBankTransfer,
		"振り込み":             KindBankTransfer,
		MethodCreditCard:   KindCreditCard,
		"未指定":              KindCash,
	}
	for method, want := range cases {
		if got := method.Kind(); got != want {
			t.Fatalf("%q.Kind(): got %q want %q", method, got, want)
		}
	}
}

func TestPaymentMethodValid(t *testing.T) {
	for _, m := range AllowedPaymentMethods {
		if !m.Valid() {
			t.Fatalf("%q must be valid", m)
		}
	}
	if PaymentMethod("銀行振込").Valid() {
		t.Fatalf("legacy label must not be accepted from forms")
	}
}

func TestAlreadyApplied(t *testing.T) {
	eventID := "evt_1"
	receipt := &Receipt{ID: 1}

	if AlreadyApplied(receipt, eventID) {
		t.Fatalf("receipt without stored event must not be applied")
	}

	receipt.StripeLastEventID = &eventID
	if !AlreadyApplied(receipt, "evt_1") {
		t.Fatalf("same event id must be reported as applied")
	}
	if AlreadyApplied(receipt, "evt_2") {
		t.Fatalf("different event id must not be reported as applied")
	}
	if AlreadyApplied(nil, "evt_1") {
		t.Fatalf("nil receipt must not be reported as applied")
	}
}

func TestCertificateNumber(t *testing.T) {
	donatedAt := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)

	if got := CertificateNumber(donatedAt, 42); got != "RCPT-2025-000042" {
		t.Fatalf("unexpected certificate number: %s", got)
	}
	if got := CertificateNumber(donatedAt, 1234567); got != "RCPT-2025-1234567" {
		t.Fatalf("unexpected certificate number for wide id: %s", got)
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("smtp: 535 auth failed")
	err := NewUpstream("send receipt email", cause)

	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream kind")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause")
	}
	if err.Error() != "send receipt email: smtp: 535 auth failed" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}

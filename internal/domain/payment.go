package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "現金"
	MethodBankTransfer PaymentMethod = "振込"
	MethodCreditCard   PaymentMethod = "クレジットカード"
)

// AllowedPaymentMethods is the enumerated set accepted from donors and staff.
var AllowedPaymentMethods = []PaymentMethod{MethodCash, MethodBankTransfer, MethodCreditCard}

func (m PaymentMethod) Valid() bool {
	for _, allowed := range AllowedPaymentMethods {
		if m == allowed {
			return true
		}
	}
	return false
}

type PaymentKind string

const (
	KindCash         PaymentKind = "cash"
	KindBankTransfer PaymentKind = "bank_transfer"
	KindCreditCard   PaymentKind = "credit_card"
)

// Kind maps stored method labels, including legacy spellings of bank
// transfer, onto the three payment flows. Unknown labels are cash.
func (m PaymentMethod) Kind() PaymentKind {
	switch strings.TrimSpace(string(m)) {
	case "銀行振込", "振込", "振り込み":
		return KindBankTransfer
	case "クレジットカード":
		return KindCreditCard
	default:
		return KindCash
	}
}

// AlreadyApplied reports whether a processor event was the last one applied to
// the receipt. Every mutating webhook branch checks it first.
func AlreadyApplied(receipt *Receipt, eventID string) bool {
	if receipt == nil || receipt.StripeLastEventID == nil {
		return false
	}
	return *receipt.StripeLastEventID == eventID
}

type AmountRange struct {
	Min int64
	Max int64
}

// ParseAmount strips everything but digits ("¥1,500" -> 1500) and checks the
// configured range.
func ParseAmount(raw string, limits AmountRange) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(raw))
	if digits == "" {
		return 0, NewValidation("寄付金額が不正です。")
	}

	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, NewValidation("寄付金額が不正です。")
	}
	if amount < limits.Min || amount > limits.Max {
		return 0, NewValidation(fmt.Sprintf("寄付金額は %d 〜 %d 円で指定してください。", limits.Min, limits.Max))
	}

	return amount, nil
}

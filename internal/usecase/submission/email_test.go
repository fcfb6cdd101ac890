package submission

import (
	"strings"
	"testing"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
)

func TestComposeEmailBankTransfer(t *testing.T) {
	msg := ComposeEmail(EmailInput{
		DonorName:        "山田 太郎",
		DonorEmail:       "taro@example.com",
		PDF:              []byte("%PDF"),
		PaymentMethod:    domain.MethodBankTransfer,
		BankTransferInfo: "京都銀行\n普通 1234567",
	})

	want := strings.Join([]string{
		"山田 太郎 様",
		"",
		"この度はご寄附ありがとうございます。",
		"受領書をPDFにてお送りいたします。",
		"",
		"【お振込先情報】",
		"京都銀行\n普通 1234567",
		"",
		"NPO法人ほっこり",
	}, "\n")
	if msg.Body != want {
		t.Fatalf("body mismatch:\n%s", msg.Body)
	}
	if msg.Attachments[0].ContentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", msg.Attachments[0].ContentType)
	}
}

func TestComposeEmailBankTransferWithoutInfo(t *testing.T) {
	msg := ComposeEmail(EmailInput{DonorName: "匿名", PaymentMethod: "銀行振込"})
	if !strings.Contains(msg.Body, bankInfoMissing) {
		t.Fatalf("expected not-configured notice:\n%s", msg.Body)
	}
}

func TestComposeEmailCreditCard(t *testing.T) {
	msg := ComposeEmail(EmailInput{
		DonorName:          "匿名",
		PaymentMethod:      domain.MethodCreditCard,
		CreditCardInputURL: "https://example.org/donation/payment/credit-card?certificate_no=RCPT-2025-000001&receipt_id=1",
	})
	if !strings.Contains(msg.Body, "【クレジットカード情報入力】\n以下のページからカード情報をご入力ください。\nhttps://example.org/") {
		t.Fatalf("missing card section:\n%s", msg.Body)
	}
	if strings.Contains(msg.Body, "【お振込先情報】") {
		t.Fatalf("card mail must not carry bank section")
	}
}

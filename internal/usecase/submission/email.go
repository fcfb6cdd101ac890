package submission

import (
	"strings"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
)

const (
	EmailSubject       = "【NPO法人ほっこり】寄付受領書"
	AttachmentFilename = "寄付受領書.pdf"

	bankInfoMissing = "振込先情報が未設定です。運営までお問い合わせください。"
	emailSignature  = "NPO法人ほっこり"
)

type EmailInput struct {
	DonorName          string
	DonorEmail         string
	PDF                []byte
	PaymentMethod      domain.PaymentMethod
	BankTransferInfo   string
	CreditCardInputURL string
}

// ComposeEmail builds the receipt mail. Bank transfer adds the account text,
// credit card adds the card entry link.
func ComposeEmail(in EmailInput) domain.EmailMessage {
	lines := []string{
		in.DonorName + " 様",
		"",
		"この度はご寄附ありがとうございます。",
		"受領書をPDFにてお送りいたします。",
		"",
	}

	switch in.PaymentMethod.Kind() {
	case domain.KindBankTransfer:
		info := in.BankTransferInfo
		if info == "" {
			info = bankInfoMissing
		}
		lines = append(lines, "【お振込先情報】", info, "")
	case domain.KindCreditCard:
		lines = append(lines,
			"【クレジットカード情報入力】",
			"以下のページからカード情報をご入力ください。",
			in.CreditCardInputURL,
			"",
		)
	}
	lines = append(lines, emailSignature)

	return domain.EmailMessage{
		To:      in.DonorEmail,
		Subject: EmailSubject,
		Body:    strings.Join(lines, "\n"),
		Attachments: []domain.Attachment{
			{Filename: AttachmentFilename, ContentType: "application/pdf", Data: in.PDF},
		},
	}
}

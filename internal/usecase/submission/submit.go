package submission

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/usecase"
	submissiondto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/submission"
	"go.uber.org/zap"
)

// Submit stores the donation, renders and mails the receipt, then keeps the
// PDF under a download token. A mail failure leaves the row as mail_failed.
// Once started it runs to completion even if the caller goes away.
func (uc *DefaultSubmissionUsecase) Submit(ctx context.Context, input *submissiondto.SubmitInput) (*submissiondto.SubmitOutput, error) {
	ctx = context.WithoutCancel(ctx)

	form, err := normalizeForm(input)
	if err != nil {
		return nil, err
	}

	if err := uc.Schema.Ensure(ctx); err != nil {
		uc.Metrics.RecordError("schema")
		return nil, fmt.Errorf("ensure receipts table: %w", err)
	}

	donatedAt := uc.Now().In(uc.Settings.Location)
	receipt := &domain.Receipt{
		DonorName:       form.Name,
		DonorPostalCode: form.PostalCode,
		DonorAddress:    form.Address,
		DonorEmail:      form.Email,
		Amount:          form.Amount,
		PaymentMethod:   form.Method,
		DonatedAt:       donatedAt,
		Status:          domain.StatusCreated,
		CreatedAt:       donatedAt,
	}
	receiptID, certificateNo, err := uc.Receipts.Create(ctx, receipt)
	if err != nil {
		uc.Log.Error("failed to create receipt record", zap.Error(err))
		uc.Metrics.RecordError("create")
		return nil, err
	}
	log := uc.Log.With(zap.Int64("receipt_id", receiptID), zap.String("certificate_no", certificateNo))
	uc.Metrics.RecordSubmitted(string(form.Method), amountForMetrics(form.Amount))

	started := time.Now()
	pdf, err := uc.Renderer.Render(domain.ReceiptDocument{
		CertificateNo: certificateNo,
		DonorName:     form.Name,
		DonorAddress:  form.Address,
		Amount:        form.Amount,
		PaymentMethod: form.Method,
		DonatedAt:     donatedAt,
	})
	uc.Metrics.RecordPDFRender(started, err)
	if err != nil {
		log.Error("failed to render receipt pdf", zap.Error(err))
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}

	kind := form.Method.Kind()
	cardURL := input.Links.CreditCardInput(uc.Settings.CreditCardInputURL, certificateNo, receiptID)

	msg := ComposeEmail(EmailInput{
		DonorName:          form.Name,
		DonorEmail:         form.Email,
		PDF:                pdf,
		PaymentMethod:      form.Method,
		BankTransferInfo:   uc.Settings.BankTransferInfo,
		CreditCardInputURL: cardURL,
	})
	err = uc.Mailer.Send(ctx, msg)
	uc.Metrics.RecordEmail(err)
	if err != nil {
		log.Error("failed to send receipt email", zap.Error(err))
		if updErr := uc.Receipts.UpdateStatus(ctx, receiptID, domain.StatusMailFailed, nil); updErr != nil {
			log.Error("failed to mark receipt mail_failed", zap.Error(updErr))
		}
		uc.Metrics.RecordStatus(string(domain.StatusMailFailed))
		uc.publish(receiptID, certificateNo, domain.StatusMailFailed, form)
		return nil, domain.NewUpstream("受領書メールの送信に失敗しました", err)
	}

	token, err := uc.Storage.Save(ctx, pdf)
	if err != nil {
		log.Error("failed to save receipt pdf", zap.Error(err))
		uc.Metrics.RecordError("storage")
		return nil, fmt.Errorf("save receipt pdf: %w", err)
	}

	status := domain.StatusIssued
	if kind == domain.KindCreditCard {
		status = domain.StatusAwaitingPayment
	}
	if err := uc.Receipts.UpdateStatus(ctx, receiptID, status, &token); err != nil {
		log.Error("failed to update receipt status", zap.String("status", string(status)), zap.Error(err))
	}
	uc.Metrics.RecordStatus(string(status))
	uc.publish(receiptID, certificateNo, status, form)

	log.Info("receipt issued", zap.String("status", string(status)), zap.String("payment_method", string(form.Method)))

	out := &submissiondto.SubmitOutput{
		ReceiptID:        receiptID,
		CertificateNo:    certificateNo,
		DonorName:        form.Name,
		DownloadToken:    token,
		PaymentMethod:    form.Method,
		PaymentKind:      kind,
		Status:           status,
		BankTransferInfo: uc.Settings.BankTransferInfo,
	}
	if kind == domain.KindCreditCard {
		out.RedirectURL = cardURL
	}
	return out, nil
}

type donationForm struct {
	Name       string
	PostalCode string
	Address    string
	Email      string
	Amount     string
	Method     domain.PaymentMethod
}

func normalizeForm(input *submissiondto.SubmitInput) (donationForm, error) {
	form := donationForm{
		Name:       strings.TrimSpace(input.Name),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Address:    strings.TrimSpace(input.Address),
		Email:      strings.TrimSpace(input.Email),
		Amount:     strings.TrimSpace(input.Amount),
		Method:     domain.PaymentMethod(strings.TrimSpace(input.PaymentMethod)),
	}
	if form.Name == "" {
		form.Name = domain.AnonymousDonor
	}

	if form.PostalCode == "" || form.Address == "" || form.Email == "" || form.Amount == "" {
		return form, domain.NewValidation("postal_code / address / email / amount は必須です。")
	}
	if !form.Method.Valid() {
		return form, domain.NewValidation("payment_method は 現金 / 振込 / クレジットカード のみ指定できます。")
	}
	return form, nil
}

func (uc *DefaultSubmissionUsecase) publish(receiptID int64, certificateNo string, status domain.ReceiptStatus, form donationForm) {
	usecase.PublishReceiptEvent(uc.Publisher, uc.Log, domain.ReceiptEvent{
		ReceiptID:     receiptID,
		CertificateNo: certificateNo,
		Status:        status,
		PaymentMethod: form.Method,
		Amount:        form.Amount,
		OccurredAt:    uc.Now().In(uc.Settings.Location),
	})
}

// amountForMetrics is lenient: the stored amount is free text and only
// validated at checkout.
func amountForMetrics(raw string) int64 {
	amount, err := domain.ParseAmount(raw, domain.AmountRange{Min: 0, Max: math.MaxInt64})
	if err != nil {
		return 0
	}
	return amount
}

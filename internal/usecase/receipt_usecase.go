package usecase

import (
	"context"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	admindto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/admin"
	paymentdto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/payment"
	submissiondto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/submission"
)

type SubmissionUsecase interface {
	Submit(ctx context.Context, input *submissiondto.SubmitInput) (*submissiondto.SubmitOutput, error)
}

type PaymentUsecase interface {
	CreateCheckoutSession(ctx context.Context, input *paymentdto.CheckoutInput) (*paymentdto.CheckoutOutput, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*paymentdto.WebhookOutput, error)
	SuccessPage(ctx context.Context, sessionID string) *paymentdto.SuccessOutput
}

type AdminUsecase interface {
	Authenticate(username, password string) error
	List(ctx context.Context) (*admindto.ListOutput, error)
	Get(ctx context.Context, receiptID int64) (*domain.Receipt, error)
	SetChecked(ctx context.Context, receiptID int64, checked bool, actor string) error
	SoftDelete(ctx context.Context, receiptID int64, actor string) error
	Edit(ctx context.Context, receiptID int64, input *admindto.EditInput) error
	DBCheck(ctx context.Context) (*admindto.DBCheckOutput, error)
	ReceiptsCheck(ctx context.Context) (*admindto.ReceiptsCheckOutput, error)
}

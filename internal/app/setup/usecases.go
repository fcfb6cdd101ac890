package setup

import (
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/usecase"
	"github.com/LavaJover/shvark-donation-service/internal/usecase/admin"
	"github.com/LavaJover/shvark-donation-service/internal/usecase/payment"
	"github.com/LavaJover/shvark-donation-service/internal/usecase/submission"
)

type UseCases struct {
	SubmissionUsecase usecase.SubmissionUsecase
	PaymentUsecase    usecase.PaymentUsecase
	AdminUsecase      usecase.AdminUsecase
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	cfg := deps.Config
	repos := deps.Repositories

	submissionUsecase := submission.NewDefaultSubmissionUsecase(
		repos.Schema,
		repos.ReceiptRepo,
		deps.Renderer,
		deps.Mailer,
		deps.Storage,
		deps.Publisher,
		deps.Metrics,
		deps.Log.Named("submission"),
		submission.Settings{
			Location:           deps.Location,
			BankTransferInfo:   cfg.Receipts.BankTransferInfo,
			CreditCardInputURL: cfg.Receipts.CreditCardInputURL,
		},
	)

	paymentUsecase := payment.NewDefaultPaymentUsecase(
		deps.Gateway,
		repos.ReceiptRepo,
		repos.Schema,
		deps.Publisher,
		deps.Metrics,
		deps.Log.Named("payment"),
		payment.Settings{
			Amounts: domain.AmountRange{
				Min: cfg.Receipts.MinAmount,
				Max: cfg.Receipts.MaxAmount,
			},
			SuccessURL: cfg.Stripe.SuccessURL,
			CancelURL:  cfg.Stripe.CancelURL,
			Location:   deps.Location,
		},
	)

	adminUsecase := admin.NewDefaultAdminUsecase(
		cfg.Dashboard.Users(),
		repos.ReceiptRepo,
		repos.Schema,
		deps.Log.Named("admin"),
		cfg.Dashboard.ListLimit,
		deps.Location,
	)

	return &UseCases{
		SubmissionUsecase: submissionUsecase,
		PaymentUsecase:    paymentUsecase,
		AdminUsecase:      adminUsecase,
	}
}

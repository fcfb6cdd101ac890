package admin

import (
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultListLimit   = 100
	diagnosticsLimit   = 20
	receiptMissingText = "対象データが見つかりません。"
)

type DefaultAdminUsecase struct {
	// Users maps dashboard usernames to plain or bcrypt-hashed passwords.
	Users     map[string]string
	Receipts  domain.ReceiptRepository
	Schema    domain.SchemaGuard
	Log       *zap.Logger
	ListLimit int
	Location  *time.Location
}

func NewDefaultAdminUsecase(
	users map[string]string,
	receipts domain.ReceiptRepository,
	schema domain.SchemaGuard,
	log *zap.Logger,
	listLimit int,
	loc *time.Location,
) *DefaultAdminUsecase {
	if listLimit <= 0 {
		listLimit = defaultListLimit
	}
	if loc == nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DefaultAdminUsecase{
		Users:     users,
		Receipts:  receipts,
		Schema:    schema,
		Log:       log,
		ListLimit: listLimit,
		Location:  loc,
	}
}

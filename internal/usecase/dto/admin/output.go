package admindto

import "github.com/LavaJover/shvark-donation-service/internal/domain"

type ListOutput struct {
	Total    int64
	Receipts []*domain.Receipt
}

type DBCheckOutput struct {
	Database    string
	User        string
	TableExists bool
}

type ReceiptsCheckOutput struct {
	Total        int64
	TotalDeleted int64
	Receipts     []*domain.Receipt
}

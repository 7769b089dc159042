package movements

import (
	"context"
	"time"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindTopUp    Kind = "TOPUP"
	KindPurchase Kind = "PURCHASE"
)

// Movement is one append-only ledger line. Amount is signed: positive for
// top-ups, negative for purchases.
type Movement struct {
	ID                int64
	AccountID         int64
	Kind              Kind
	Amount            decimal.Decimal
	RelatedPurchaseID *int64
	ResultingBalance  decimal.Decimal
	CreatedAt         time.Time
}

type Movements interface {
	Append(ctx context.Context, tx pgutils.DBTX, m Movement) (Movement, error)
	ListByUsername(ctx context.Context, username string) ([]Movement, error)
}

package purchases

import (
	"context"
	"fmt"
	"time"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/items"
	"github.com/shopspring/decimal"
)

var ErrItemAlreadyPurchased = fmt.Errorf("%w: item already has a purchase", apperr.ErrItemUnavailable)

type Purchase struct {
	ID        int64
	AccountID int64
	ItemID    int64
	PricePaid decimal.Decimal
	CreatedAt time.Time
}

// PurchasedItem pairs a purchase with the item it bought.
type PurchasedItem struct {
	Item     items.Item
	Purchase Purchase
}

type Purchases interface {
	Insert(ctx context.Context, tx pgutils.DBTX, accountID, itemID int64, price decimal.Decimal) (Purchase, error)
	ListByUsername(ctx context.Context, username string) ([]PurchasedItem, error)
}

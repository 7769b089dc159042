package items

import (
	"context"
	"fmt"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound = fmt.Errorf("item %w", apperr.ErrNotFound)
	ErrItemSold     = fmt.Errorf("%w: item already sold", apperr.ErrItemUnavailable)
)

// Item is a catalog entry ("obra"). Available flips to false exactly once,
// when it is purchased.
type Item struct {
	ID              int64
	Title           string
	AuthorName      string
	PublicationYear int
	Price           decimal.Decimal
	ImageKey        string
	Available       bool
}

type Items interface {
	ListAvailable(ctx context.Context) ([]Item, error)
	ListAll(ctx context.Context) ([]Item, error)
	LockByID(ctx context.Context, tx pgutils.DBTX, itemID int64) (Item, error)
	MarkSold(ctx context.Context, tx pgutils.DBTX, itemID int64) error
}

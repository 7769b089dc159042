package purchases

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/purchases"
	"github.com/shopspring/decimal"
)

var _ purchases.Purchases = (*purchasesRepo)(nil)

type purchasesRepo struct{ db *sql.DB }

func New(db *sql.DB) *purchasesRepo {
	return &purchasesRepo{db: db}
}

func (r *purchasesRepo) Insert(ctx context.Context, tx pgutils.DBTX, accountID, itemID int64, price decimal.Decimal) (purchases.Purchase, error) {
	p := purchases.Purchase{AccountID: accountID, ItemID: itemID}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO purchases (account_id, item_id, price_paid)
		VALUES ($1, $2, $3)
		RETURNING id, price_paid, created_at
	`, accountID, itemID, price).Scan(&p.ID, &p.PricePaid, &p.CreatedAt)
	if err != nil {
		_, unique := pgutils.IsUniqueViolation(err)
		if unique {
			return purchases.Purchase{}, purchases.ErrItemAlreadyPurchased
		}

		return purchases.Purchase{}, fmt.Errorf("insert purchase: %w", err)
	}

	return p, nil
}

// ListByUsername returns the account's purchases joined with their items,
// newest purchase first. Unknown usernames yield an empty list.
func (r *purchasesRepo) ListByUsername(ctx context.Context, username string) ([]purchases.PurchasedItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.id, i.title, i.author_name, i.publication_year, i.price, i.image_key, i.available,
		       p.id, p.account_id, p.item_id, p.price_paid, p.created_at
		FROM purchases p
		JOIN items i ON i.id = p.item_id
		JOIN accounts a ON a.id = p.account_id
		WHERE a.username = $1
		ORDER BY p.id DESC
	`, username)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", pgutils.Classify(err))
	}
	defer rows.Close()

	out := make([]purchases.PurchasedItem, 0)

	for rows.Next() {
		var pi purchases.PurchasedItem

		err = rows.Scan(
			&pi.Item.ID, &pi.Item.Title, &pi.Item.AuthorName, &pi.Item.PublicationYear,
			&pi.Item.Price, &pi.Item.ImageKey, &pi.Item.Available,
			&pi.Purchase.ID, &pi.Purchase.AccountID, &pi.Purchase.ItemID,
			&pi.Purchase.PricePaid, &pi.Purchase.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}

		out = append(out, pi)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", pgutils.Classify(err))
	}

	return out, nil
}

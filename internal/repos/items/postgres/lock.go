package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/items"
)

// LockByID reads the item and holds its row lock until tx ends. A second
// buyer blocks here and then observes available = false.
func (r *itemsRepo) LockByID(ctx context.Context, tx pgutils.DBTX, itemID int64) (items.Item, error) {
	it, err := scanItem(tx.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE id = $1
		FOR UPDATE
	`, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return items.Item{}, items.ErrItemNotFound
		}

		return items.Item{}, fmt.Errorf("lock/get item: %w", err)
	}

	return it, nil
}

// MarkSold flips available to false. It fails with ErrItemSold when the item
// was already sold, so it never reports success twice for one item.
func (r *itemsRepo) MarkSold(ctx context.Context, tx pgutils.DBTX, itemID int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE items
		SET available = FALSE
		WHERE id = $1
		  AND available
	`, itemID)
	if err != nil {
		return fmt.Errorf("mark sold: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return items.ErrItemSold
	}

	return nil
}

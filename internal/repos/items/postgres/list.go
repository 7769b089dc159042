package items

import (
	"context"
	"fmt"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/items"
)

// ListAvailable returns unsold items, newest id first.
func (r *itemsRepo) ListAvailable(ctx context.Context) ([]items.Item, error) {
	return r.list(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE available
		ORDER BY id DESC
	`)
}

// ListAll returns the whole gallery, sold items included, newest id first.
func (r *itemsRepo) ListAll(ctx context.Context) ([]items.Item, error) {
	return r.list(ctx, `
		SELECT `+itemColumns+`
		FROM items
		ORDER BY id DESC
	`)
}

func (r *itemsRepo) list(ctx context.Context, query string) ([]items.Item, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", pgutils.Classify(err))
	}
	defer rows.Close()

	out := make([]items.Item, 0)

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		out = append(out, it)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate items: %w", pgutils.Classify(err))
	}

	return out, nil
}

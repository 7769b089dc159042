package items

import (
	"database/sql"

	"github.com/fastprodman/artmarket/internal/repos/items"
)

var _ items.Items = (*itemsRepo)(nil)

const itemColumns = `id, title, author_name, publication_year, price, image_key, available`

type itemsRepo struct{ db *sql.DB }

func New(db *sql.DB) *itemsRepo {
	return &itemsRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (items.Item, error) {
	var it items.Item

	err := row.Scan(&it.ID, &it.Title, &it.AuthorName, &it.PublicationYear, &it.Price, &it.ImageKey, &it.Available)

	return it, err
}

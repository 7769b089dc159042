package movements

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/movements"
)

var _ movements.Movements = (*movementsRepo)(nil)

type movementsRepo struct{ db *sql.DB }

func New(db *sql.DB) *movementsRepo {
	return &movementsRepo{db: db}
}

func (r *movementsRepo) Append(ctx context.Context, tx pgutils.DBTX, m movements.Movement) (movements.Movement, error) {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO balance_movements (account_id, kind, amount, related_purchase_id, resulting_balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, m.AccountID, string(m.Kind), m.Amount, m.RelatedPurchaseID, m.ResultingBalance).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return movements.Movement{}, fmt.Errorf("insert movement: %w", err)
	}

	return m, nil
}

// ListByUsername returns the account's ledger, newest first.
func (r *movementsRepo) ListByUsername(ctx context.Context, username string) ([]movements.Movement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.account_id, m.kind, m.amount, m.related_purchase_id, m.resulting_balance, m.created_at
		FROM balance_movements m
		JOIN accounts a ON a.id = m.account_id
		WHERE a.username = $1
		ORDER BY m.id DESC
	`, username)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", pgutils.Classify(err))
	}
	defer rows.Close()

	out := make([]movements.Movement, 0)

	for rows.Next() {
		var (
			m       movements.Movement
			kind    string
			related sql.NullInt64
		)

		err = rows.Scan(&m.ID, &m.AccountID, &kind, &m.Amount, &related, &m.ResultingBalance, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}

		m.Kind = movements.Kind(kind)
		if related.Valid {
			m.RelatedPurchaseID = &related.Int64
		}

		out = append(out, m)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate movements: %w", pgutils.Classify(err))
	}

	return out, nil
}

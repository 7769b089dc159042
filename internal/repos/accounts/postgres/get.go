package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/accounts"
)

// GetByUsername reads an account without locking it.
func (r *accountsRepo) GetByUsername(ctx context.Context, username string) (accounts.Account, error) {
	acc, err := scanAccount(r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE username = $1
	`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Account{}, accounts.ErrAccountNotFound
		}

		return accounts.Account{}, fmt.Errorf("get account: %w", pgutils.Classify(err))
	}

	return acc, nil
}

func (r *accountsRepo) UsernameExists(ctx context.Context, tx pgutils.DBTX, username string) (bool, error) {
	var exists bool

	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)
	`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}

	return exists, nil
}

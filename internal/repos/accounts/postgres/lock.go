package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/accounts"
)

// LockByUsername reads the account and holds its row lock (FOR UPDATE) until
// tx ends. Concurrent balance mutations on the same account queue here.
func (r *accountsRepo) LockByUsername(ctx context.Context, tx pgutils.DBTX, username string) (accounts.Account, error) {
	acc, err := scanAccount(tx.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE username = $1
		FOR UPDATE
	`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Account{}, accounts.ErrAccountNotFound
		}

		return accounts.Account{}, fmt.Errorf("lock/get account: %w", err)
	}

	return acc, nil
}

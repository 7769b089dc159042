package accounts

import (
	"context"
	"fmt"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/accounts"
)

func (r *accountsRepo) Create(ctx context.Context, tx pgutils.DBTX, acc accounts.NewAccount) (accounts.Account, error) {
	created, err := scanAccount(tx.QueryRowContext(ctx, `
		INSERT INTO accounts (username, display_name, credential_hash, profile_image_key, balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+accountColumns,
		acc.Username, acc.DisplayName, acc.CredentialHash, acc.ProfileImageKey, acc.Balance,
	))
	if err != nil {
		_, unique := pgutils.IsUniqueViolation(err)
		if unique {
			return accounts.Account{}, accounts.ErrUsernameTaken
		}

		return accounts.Account{}, fmt.Errorf("insert account: %w", err)
	}

	return created, nil
}

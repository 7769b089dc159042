package accounts

import (
	"context"
	"fmt"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/accounts"
	"github.com/shopspring/decimal"
)

// SetBalance overwrites the balance of an account whose row the caller
// already holds locked.
func (r *accountsRepo) SetBalance(ctx context.Context, tx pgutils.DBTX, accountID int64, balance decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $2
		WHERE id = $1
	`, accountID, balance)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrAccountNotFound
	}

	return nil
}

// UpdateProfile applies only the non-nil fields of patch.
func (r *accountsRepo) UpdateProfile(ctx context.Context, tx pgutils.DBTX, accountID int64, patch accounts.ProfilePatch) error {
	if patch.Empty() {
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET username          = COALESCE($2, username),
		    display_name      = COALESCE($3, display_name),
		    profile_image_key = COALESCE($4, profile_image_key)
		WHERE id = $1
	`, accountID, patch.Username, patch.DisplayName, patch.ProfileImageKey)
	if err != nil {
		_, unique := pgutils.IsUniqueViolation(err)
		if unique {
			return accounts.ErrUsernameTaken
		}

		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

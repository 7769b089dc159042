package accounts

import (
	"database/sql"

	"github.com/fastprodman/artmarket/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

const accountColumns = `id, username, display_name, credential_hash, profile_image_key, balance, created_at`

type accountsRepo struct{ db *sql.DB }

func New(db *sql.DB) *accountsRepo {
	return &accountsRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (accounts.Account, error) {
	var (
		acc      accounts.Account
		imageKey sql.NullString
	)

	err := row.Scan(
		&acc.ID, &acc.Username, &acc.DisplayName, &acc.CredentialHash,
		&imageKey, &acc.Balance, &acc.CreatedAt,
	)
	if err != nil {
		return accounts.Account{}, err
	}

	if imageKey.Valid {
		acc.ProfileImageKey = &imageKey.String
	}

	return acc, nil
}

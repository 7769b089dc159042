package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound = fmt.Errorf("account %w", apperr.ErrNotFound)
	ErrUsernameTaken   = fmt.Errorf("%w: username already exists", apperr.ErrConflict)
)

type Account struct {
	ID              int64
	Username        string
	DisplayName     string
	CredentialHash  string
	ProfileImageKey *string
	Balance         decimal.Decimal
	CreatedAt       time.Time
}

type NewAccount struct {
	Username        string
	DisplayName     string
	CredentialHash  string
	ProfileImageKey *string
	Balance         decimal.Decimal
}

// ProfilePatch carries a partial update: nil fields are left untouched.
type ProfilePatch struct {
	Username        *string
	DisplayName     *string
	ProfileImageKey *string
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.Username == nil && p.DisplayName == nil && p.ProfileImageKey == nil
}

type Accounts interface {
	GetByUsername(ctx context.Context, username string) (Account, error)
	UsernameExists(ctx context.Context, tx pgutils.DBTX, username string) (bool, error)
	Create(ctx context.Context, tx pgutils.DBTX, acc NewAccount) (Account, error)
	LockByUsername(ctx context.Context, tx pgutils.DBTX, username string) (Account, error)
	SetBalance(ctx context.Context, tx pgutils.DBTX, accountID int64, balance decimal.Decimal) error
	UpdateProfile(ctx context.Context, tx pgutils.DBTX, accountID int64, patch ProfilePatch) error
}

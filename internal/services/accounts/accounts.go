// Package accounts registers, authenticates and edits marketplace accounts.
// Balances are only read here; every balance change goes through the
// wallet engine.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/money"
	"github.com/fastprodman/artmarket/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/artmarket/internal/repos/accounts/postgres"
	"github.com/shopspring/decimal"
)

// Summary is the public view of an account.
type Summary struct {
	Username        string
	DisplayName     string
	ProfileImageKey *string
	Balance         decimal.Decimal
}

type RegisterInput struct {
	Username        string
	DisplayName     string
	Credential      string
	ProfileImageKey *string
}

// ProfilePatch names the fields to change; nil means keep.
type ProfilePatch struct {
	NewUsername    *string
	NewDisplayName *string
	NewImageKey    *string
}

type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	hasher   Hasher
	txOpts   pgutils.TxOptions

	dummyOnce sync.Once
	dummyHash string
}

func New(db *sql.DB, hasher Hasher, txOpts pgutils.TxOptions) *Service {
	return &Service{
		db:       db,
		accounts: pgaccounts.New(db),
		hasher:   hasher,
		txOpts:   txOpts,
	}
}

// Register creates an account holding money.InitialBalance.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Summary, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if in.Username == "" || in.DisplayName == "" || in.Credential == "" {
		return Summary{}, fmt.Errorf("%w: username, display name and credential are required", apperr.ErrInvalidInput)
	}

	if len(in.Credential) > maxCredentialBytes {
		return Summary{}, fmt.Errorf("%w: credential longer than %d bytes", apperr.ErrInvalidInput, maxCredentialBytes)
	}

	hash, err := s.hasher.Hash(in.Credential)
	if err != nil {
		return Summary{}, fmt.Errorf("hash credential: %w", err)
	}

	var acc accounts.Account

	err = pgutils.WithTx(ctx, s.db, s.txOpts, func(ctx context.Context, tx pgutils.DBTX) error {
		exists, err := s.accounts.UsernameExists(ctx, tx, in.Username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}

		if exists {
			return accounts.ErrUsernameTaken
		}

		// A concurrent registration that slips past the check above is
		// caught by the unique constraint and mapped to the same error.
		acc, err = s.accounts.Create(ctx, tx, accounts.NewAccount{
			Username:        in.Username,
			DisplayName:     in.DisplayName,
			CredentialHash:  hash,
			ProfileImageKey: in.ProfileImageKey,
			Balance:         money.InitialBalance,
		})
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("register: %w", err)
	}

	slog.InfoContext(ctx, "account registered", "username", acc.Username, "account_id", acc.ID)

	return summarize(acc), nil
}

// Authenticate verifies the credential. Unknown usernames and wrong
// credentials are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, credential string) (Summary, error) {
	acc, err := s.accounts.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, accounts.ErrAccountNotFound) {
			return Summary{}, fmt.Errorf("get account: %w", err)
		}

		// Pay for one comparison anyway so timing does not reveal which
		// usernames exist.
		_ = s.hasher.Compare(s.dummy(), credential)

		return Summary{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}

	err = s.hasher.Compare(acc.CredentialHash, credential)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}

	return summarize(acc), nil
}

// UpdateProfile applies patch after re-verifying the credential, with the
// account row locked for the duration.
func (s *Service) UpdateProfile(ctx context.Context, username, confirmCredential string, patch ProfilePatch) (Summary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Summary{}, fmt.Errorf("%w: username required", apperr.ErrInvalidInput)
	}

	repoPatch, err := patch.normalize()
	if err != nil {
		return Summary{}, err
	}

	var acc accounts.Account

	err = pgutils.WithTx(ctx, s.db, s.txOpts, func(ctx context.Context, tx pgutils.DBTX) error {
		acc, err = s.accounts.LockByUsername(ctx, tx, username)
		if err != nil {
			if errors.Is(err, accounts.ErrAccountNotFound) {
				_ = s.hasher.Compare(s.dummy(), confirmCredential)

				return fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
			}

			return fmt.Errorf("lock account: %w", err)
		}

		err = s.hasher.Compare(acc.CredentialHash, confirmCredential)
		if err != nil {
			return fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
		}

		err = s.accounts.UpdateProfile(ctx, tx, acc.ID, repoPatch)
		if err != nil {
			return fmt.Errorf("apply patch: %w", err)
		}

		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("update profile: %w", err)
	}

	acc = applyPatch(acc, repoPatch)

	slog.InfoContext(ctx, "profile updated", "account_id", acc.ID, "username", acc.Username)

	return summarize(acc), nil
}

// Profile returns the current view of the account.
func (s *Service) Profile(ctx context.Context, username string) (Summary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Summary{}, fmt.Errorf("%w: username required", apperr.ErrInvalidInput)
	}

	acc, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return Summary{}, fmt.Errorf("get profile: %w", err)
	}

	return summarize(acc), nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-credential")
		if err == nil {
			s.dummyHash = h
		}
	})

	return s.dummyHash
}

func (p ProfilePatch) normalize() (accounts.ProfilePatch, error) {
	var out accounts.ProfilePatch

	if p.NewUsername != nil {
		v := strings.TrimSpace(*p.NewUsername)
		if v == "" {
			return out, fmt.Errorf("%w: new username must not be blank", apperr.ErrInvalidInput)
		}

		out.Username = &v
	}

	if p.NewDisplayName != nil {
		v := strings.TrimSpace(*p.NewDisplayName)
		if v == "" {
			return out, fmt.Errorf("%w: new display name must not be blank", apperr.ErrInvalidInput)
		}

		out.DisplayName = &v
	}

	if p.NewImageKey != nil {
		v := strings.TrimSpace(*p.NewImageKey)
		out.ProfileImageKey = &v
	}

	return out, nil
}

func applyPatch(acc accounts.Account, p accounts.ProfilePatch) accounts.Account {
	if p.Username != nil {
		acc.Username = *p.Username
	}

	if p.DisplayName != nil {
		acc.DisplayName = *p.DisplayName
	}

	if p.ProfileImageKey != nil {
		acc.ProfileImageKey = p.ProfileImageKey
	}

	return acc
}

func summarize(acc accounts.Account) Summary {
	return Summary{
		Username:        acc.Username,
		DisplayName:     acc.DisplayName,
		ProfileImageKey: acc.ProfileImageKey,
		Balance:         acc.Balance,
	}
}

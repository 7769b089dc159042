// Package wallet is the transaction engine behind every balance change.
// Each operation runs in a single database transaction that locks the
// account row (and, for purchases, the item row after it) so that balances
// are always reconcilable with the movement ledger.
package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/config"
	"github.com/fastprodman/artmarket/internal/infra/metrics"
	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/money"
	"github.com/fastprodman/artmarket/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/artmarket/internal/repos/accounts/postgres"
	"github.com/fastprodman/artmarket/internal/repos/items"
	pgitems "github.com/fastprodman/artmarket/internal/repos/items/postgres"
	"github.com/fastprodman/artmarket/internal/repos/movements"
	pgmovements "github.com/fastprodman/artmarket/internal/repos/movements/postgres"
	"github.com/fastprodman/artmarket/internal/repos/purchases"
	pgpurchases "github.com/fastprodman/artmarket/internal/repos/purchases/postgres"
	"github.com/shopspring/decimal"
)

const (
	OpTopUp    = "topup"
	OpPurchase = "purchase"
)

type Engine struct {
	db        *sql.DB
	accounts  accounts.Accounts
	items     items.Items
	purchases purchases.Purchases
	movements movements.Movements
	txOpts    pgutils.TxOptions
	metrics   *metrics.Metrics
	log       *slog.Logger
}

func New(db *sql.DB, cfg config.WalletConfig, m *metrics.Metrics) *Engine {
	return &Engine{
		db:        db,
		accounts:  pgaccounts.New(db),
		items:     pgitems.New(db),
		purchases: pgpurchases.New(db),
		movements: pgmovements.New(db),
		txOpts: pgutils.TxOptions{
			AcquireTimeout:   cfg.AcquireTimeout,
			LockTimeout:      cfg.LockTimeout,
			StatementTimeout: cfg.StatementTimeout,
		},
		metrics: m,
		log:     slog.Default(),
	}
}

// TopUp credits amount to the account and returns the new balance.
//
// The amount is rounded once to two places (half away from zero) and the
// rounded value must lie in (0, money.MaxTopUp]. The resulting balance may
// not exceed money.MaxBalance. The balance update and the TOPUP movement are
// committed together or not at all.
func (e *Engine) TopUp(ctx context.Context, username string, amount decimal.Decimal) (balance decimal.Decimal, err error) {
	username = strings.TrimSpace(username)

	defer e.observe(ctx, OpTopUp, time.Now(), username, &err)

	if username == "" {
		return decimal.Zero, fmt.Errorf("%w: username required", apperr.ErrInvalidInput)
	}

	amount = money.Round(amount)
	if !amount.IsPositive() || amount.GreaterThan(money.MaxTopUp) {
		return decimal.Zero, fmt.Errorf("%w: top-up must be greater than 0 and at most %s",
			apperr.ErrInvalidAmount, money.Format(money.MaxTopUp))
	}

	err = pgutils.WithTx(ctx, e.db, e.txOpts, func(ctx context.Context, tx pgutils.DBTX) error {
		acc, err := e.accounts.LockByUsername(ctx, tx, username)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		balance = money.Round(acc.Balance.Add(amount))
		if balance.GreaterThan(money.MaxBalance) {
			return fmt.Errorf("%w: balance would exceed %s",
				apperr.ErrInvalidAmount, money.Format(money.MaxBalance))
		}

		err = e.accounts.SetBalance(ctx, tx, acc.ID, balance)
		if err != nil {
			return fmt.Errorf("set balance: %w", err)
		}

		_, err = e.movements.Append(ctx, tx, movements.Movement{
			AccountID:        acc.ID,
			Kind:             movements.KindTopUp,
			Amount:           amount,
			ResultingBalance: balance,
		})
		if err != nil {
			return fmt.Errorf("append movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("top up: %w", err)
	}

	return balance, nil
}

// Purchase buys itemID for the account and returns the new balance.
//
// The account row is locked before the item row, always in that order. A
// missing or already sold item is reported as apperr.ErrItemUnavailable so
// that of N concurrent buyers exactly one succeeds.
func (e *Engine) Purchase(ctx context.Context, username string, itemID int64) (balance decimal.Decimal, err error) {
	username = strings.TrimSpace(username)

	defer e.observe(ctx, OpPurchase, time.Now(), username, &err)

	if username == "" {
		return decimal.Zero, fmt.Errorf("%w: username required", apperr.ErrInvalidInput)
	}

	if itemID <= 0 {
		return decimal.Zero, fmt.Errorf("%w: item id must be positive", apperr.ErrInvalidInput)
	}

	err = pgutils.WithTx(ctx, e.db, e.txOpts, func(ctx context.Context, tx pgutils.DBTX) error {
		acc, err := e.accounts.LockByUsername(ctx, tx, username)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		item, err := e.items.LockByID(ctx, tx, itemID)
		if err != nil {
			if errors.Is(err, items.ErrItemNotFound) {
				return fmt.Errorf("%w: item %d does not exist", apperr.ErrItemUnavailable, itemID)
			}

			return fmt.Errorf("lock item: %w", err)
		}

		if !item.Available {
			return fmt.Errorf("item %d: %w", itemID, items.ErrItemSold)
		}

		if acc.Balance.LessThan(item.Price) {
			return fmt.Errorf("%w: balance %s, price %s",
				apperr.ErrInsufficientFunds, money.Format(acc.Balance), money.Format(item.Price))
		}

		p, err := e.purchases.Insert(ctx, tx, acc.ID, item.ID, item.Price)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		balance = money.Round(acc.Balance.Sub(item.Price))

		err = e.accounts.SetBalance(ctx, tx, acc.ID, balance)
		if err != nil {
			return fmt.Errorf("set balance: %w", err)
		}

		err = e.items.MarkSold(ctx, tx, item.ID)
		if err != nil {
			return fmt.Errorf("mark sold: %w", err)
		}

		_, err = e.movements.Append(ctx, tx, movements.Movement{
			AccountID:         acc.ID,
			Kind:              movements.KindPurchase,
			Amount:            item.Price.Neg(),
			RelatedPurchaseID: &p.ID,
			ResultingBalance:  balance,
		})
		if err != nil {
			return fmt.Errorf("append movement: %w", err)
		}

		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("purchase: %w", err)
	}

	return balance, nil
}

func (e *Engine) observe(ctx context.Context, op string, start time.Time, username string, errp *error) {
	err := *errp
	elapsed := time.Since(start)

	e.metrics.ObserveWallet(op, err, elapsed)

	switch kind := apperr.KindOf(err); kind {
	case apperr.KindNone:
		e.log.InfoContext(ctx, "wallet operation applied", "op", op, "username", username, "elapsed", elapsed)
	case apperr.KindInternal, apperr.KindStoreUnavailable:
		e.log.ErrorContext(ctx, "wallet operation failed", "op", op, "username", username, "kind", kind, "error", err)
	case apperr.KindCanceled:
		e.log.InfoContext(ctx, "wallet operation abandoned by caller", "op", op, "username", username, "elapsed", elapsed)
	default:
		e.log.InfoContext(ctx, "wallet operation rejected", "op", op, "username", username, "kind", kind, "error", err)
	}
}

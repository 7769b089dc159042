package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/repos/items"
	pgitems "github.com/fastprodman/artmarket/internal/repos/items/postgres"
	"github.com/fastprodman/artmarket/internal/repos/movements"
	pgmovements "github.com/fastprodman/artmarket/internal/repos/movements/postgres"
	"github.com/fastprodman/artmarket/internal/repos/purchases"
	pgpurchases "github.com/fastprodman/artmarket/internal/repos/purchases/postgres"
)

// Service serves read-only views. Nothing here takes locks.
type Service struct {
	items     items.Items
	purchases purchases.Purchases
	movements movements.Movements
}

func New(db *sql.DB) *Service {
	return &Service{
		items:     pgitems.New(db),
		purchases: pgpurchases.New(db),
		movements: pgmovements.New(db),
	}
}

func (s *Service) ListAvailable(ctx context.Context) ([]items.Item, error) {
	out, err := s.items.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available items: %w", err)
	}

	return out, nil
}

// ListAll includes sold items; callers render their availability flag.
func (s *Service) ListAll(ctx context.Context) ([]items.Item, error) {
	out, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return out, nil
}

func (s *Service) ListPurchased(ctx context.Context, username string) ([]purchases.PurchasedItem, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username required", apperr.ErrInvalidInput)
	}

	out, err := s.purchases.ListByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	return out, nil
}

func (s *Service) ListMovements(ctx context.Context, username string) ([]movements.Movement, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username required", apperr.ErrInvalidInput)
	}

	out, err := s.movements.ListByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	return out, nil
}

package api

import (
	"context"
	"io"

	"github.com/fastprodman/artmarket/internal/repos/items"
	"github.com/fastprodman/artmarket/internal/repos/movements"
	"github.com/fastprodman/artmarket/internal/repos/purchases"
	"github.com/fastprodman/artmarket/internal/services/accounts"
	"github.com/shopspring/decimal"
)

// The handlers depend on these narrow views of the services so that they
// can be exercised with fakes.

type AccountService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (accounts.Summary, error)
	Authenticate(ctx context.Context, username, credential string) (accounts.Summary, error)
	UpdateProfile(ctx context.Context, username, confirmCredential string, patch accounts.ProfilePatch) (accounts.Summary, error)
	Profile(ctx context.Context, username string) (accounts.Summary, error)
}

type WalletService interface {
	TopUp(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error)
	Purchase(ctx context.Context, username string, itemID int64) (decimal.Decimal, error)
}

type CatalogService interface {
	ListAvailable(ctx context.Context) ([]items.Item, error)
	ListAll(ctx context.Context) ([]items.Item, error)
	ListPurchased(ctx context.Context, username string) ([]purchases.PurchasedItem, error)
	ListMovements(ctx context.Context, username string) ([]movements.Movement, error)
}

type UploadService interface {
	UploadProfileImage(ctx context.Context, subject, contentType string, body io.Reader, size int64) (string, error)
	PresignProfile(ctx context.Context, subject, contentType string) (string, string, error)
	PresignGeneric(ctx context.Context, folder, filename, contentType string) (string, string, error)
}

// PingFunc reports whether the store answers.
type PingFunc func(ctx context.Context) error

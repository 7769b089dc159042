package api

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/repos/items"
	"github.com/fastprodman/artmarket/internal/repos/movements"
	"github.com/fastprodman/artmarket/internal/repos/purchases"
	"github.com/fastprodman/artmarket/internal/services/accounts"
	"github.com/shopspring/decimal"
)

type fakeAccounts struct {
	err         error
	lastPatch   accounts.ProfilePatch
	lastConfirm string
}

func (f *fakeAccounts) Register(_ context.Context, in accounts.RegisterInput) (accounts.Summary, error) {
	if f.err != nil {
		return accounts.Summary{}, f.err
	}

	return accounts.Summary{Username: in.Username, DisplayName: in.DisplayName, Balance: decimal.New(100, 0)}, nil
}

func (f *fakeAccounts) Authenticate(_ context.Context, username, credential string) (accounts.Summary, error) {
	if credential != "pw" {
		return accounts.Summary{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}

	return accounts.Summary{Username: username, Balance: decimal.New(100, 0)}, nil
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, username, confirm string, p accounts.ProfilePatch) (accounts.Summary, error) {
	f.lastPatch, f.lastConfirm = p, confirm
	if f.err != nil {
		return accounts.Summary{}, f.err
	}

	return accounts.Summary{Username: username, Balance: decimal.New(100, 0)}, nil
}

func (f *fakeAccounts) Profile(_ context.Context, username string) (accounts.Summary, error) {
	if username == "" {
		return accounts.Summary{}, fmt.Errorf("%w: username required", apperr.ErrInvalidInput)
	}

	if username != "ana" {
		return accounts.Summary{}, fmt.Errorf("account %w", apperr.ErrNotFound)
	}

	key := "profile-photos/ana.png"

	return accounts.Summary{Username: "ana", DisplayName: "Ana", ProfileImageKey: &key, Balance: decimal.RequireFromString("70")}, nil
}

type fakeWallet struct {
	err        error
	lastAmount decimal.Decimal
	lastItem   int64
}

func (f *fakeWallet) TopUp(_ context.Context, _ string, amount decimal.Decimal) (decimal.Decimal, error) {
	f.lastAmount = amount
	if f.err != nil {
		return decimal.Zero, f.err
	}

	return decimal.New(100, 0).Add(amount.Round(2)), nil
}

func (f *fakeWallet) Purchase(_ context.Context, _ string, itemID int64) (decimal.Decimal, error) {
	f.lastItem = itemID
	if f.err != nil {
		return decimal.Zero, f.err
	}

	return decimal.New(70, 0), nil
}

type fakeCatalog struct{}

func (fakeCatalog) ListAvailable(context.Context) ([]items.Item, error) {
	return []items.Item{{ID: 2, Title: "B", Price: decimal.RequireFromString("45.5"), Available: true}}, nil
}

func (fakeCatalog) ListAll(context.Context) ([]items.Item, error) {
	return []items.Item{
		{ID: 2, Title: "B", Price: decimal.RequireFromString("45.5"), Available: true},
		{ID: 1, Title: "A", Price: decimal.New(30, 0), Available: false},
	}, nil
}

func (fakeCatalog) ListPurchased(_ context.Context, username string) ([]purchases.PurchasedItem, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username required", apperr.ErrInvalidInput)
	}

	return []purchases.PurchasedItem{{
		Item:     items.Item{ID: 1, Title: "A", Price: decimal.New(30, 0)},
		Purchase: purchases.Purchase{ID: 9, ItemID: 1, PricePaid: decimal.New(30, 0), CreatedAt: time.Unix(0, 0).UTC()},
	}}, nil
}

func (fakeCatalog) ListMovements(context.Context, string) ([]movements.Movement, error) {
	pid := int64(9)

	return []movements.Movement{
		{ID: 2, Kind: movements.KindPurchase, Amount: decimal.New(-30, 0), RelatedPurchaseID: &pid, ResultingBalance: decimal.New(70, 0)},
	}, nil
}

type fakeUploads struct {
	subject string
	size    int64
}

func (f *fakeUploads) UploadProfileImage(_ context.Context, subject, contentType string, body io.Reader, size int64) (string, error) {
	f.subject, f.size = subject, size
	_, _ = io.Copy(io.Discard, body)

	if contentType != "image/png" {
		return "", fmt.Errorf("%w: %s", apperr.ErrUnsupportedMediaType, contentType)
	}

	return "profile-photos/" + subject + ".png", nil
}

func (f *fakeUploads) PresignProfile(_ context.Context, subject, _ string) (string, string, error) {
	f.subject = subject

	return "https://s3/x", "profile-photos/" + subject + ".png", nil
}

func (f *fakeUploads) PresignGeneric(_ context.Context, folder, filename, _ string) (string, string, error) {
	return "https://s3/y", folder + "/" + filename, nil
}

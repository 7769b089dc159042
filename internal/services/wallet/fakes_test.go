package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/repos/accounts"
	"github.com/fastprodman/artmarket/internal/repos/items"
	"github.com/fastprodman/artmarket/internal/repos/movements"
	"github.com/fastprodman/artmarket/internal/repos/purchases"
	"github.com/shopspring/decimal"
)

// fakeStore backs the in-memory repositories. It does not roll back; tests
// that need rollback semantics run against Postgres.
type fakeStore struct {
	mu        sync.Mutex
	accounts  map[string]accounts.Account
	items     map[int64]items.Item
	purchases []purchases.Purchase
	movements []movements.Movement

	lockErr   error
	appendErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: map[string]accounts.Account{},
		items:    map[int64]items.Item{},
	}
}

func (s *fakeStore) addAccount(id int64, username, balance string) {
	s.accounts[username] = accounts.Account{ID: id, Username: username, Balance: decimal.RequireFromString(balance)}
}

func (s *fakeStore) addItem(id int64, price string, available bool) {
	s.items[id] = items.Item{ID: id, Title: "item", Price: decimal.RequireFromString(price), Available: available}
}

func (s *fakeStore) balanceOf(username string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.accounts[username].Balance
}

type fakeAccounts struct{ s *fakeStore }

func (f fakeAccounts) GetByUsername(_ context.Context, username string) (accounts.Account, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	acc, ok := f.s.accounts[username]
	if !ok {
		return accounts.Account{}, accounts.ErrAccountNotFound
	}

	return acc, nil
}

func (f fakeAccounts) UsernameExists(_ context.Context, _ pgutils.DBTX, username string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	_, ok := f.s.accounts[username]

	return ok, nil
}

func (f fakeAccounts) Create(context.Context, pgutils.DBTX, accounts.NewAccount) (accounts.Account, error) {
	panic("not used by the wallet")
}

func (f fakeAccounts) LockByUsername(ctx context.Context, _ pgutils.DBTX, username string) (accounts.Account, error) {
	if f.s.lockErr != nil {
		return accounts.Account{}, f.s.lockErr
	}

	return f.GetByUsername(ctx, username)
}

func (f fakeAccounts) SetBalance(_ context.Context, _ pgutils.DBTX, accountID int64, balance decimal.Decimal) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for name, acc := range f.s.accounts {
		if acc.ID == accountID {
			acc.Balance = balance
			f.s.accounts[name] = acc

			return nil
		}
	}

	return accounts.ErrAccountNotFound
}

func (f fakeAccounts) UpdateProfile(context.Context, pgutils.DBTX, int64, accounts.ProfilePatch) error {
	panic("not used by the wallet")
}

type fakeItems struct{ s *fakeStore }

func (f fakeItems) ListAvailable(context.Context) ([]items.Item, error) { return nil, nil }

func (f fakeItems) ListAll(context.Context) ([]items.Item, error) { return nil, nil }

func (f fakeItems) LockByID(_ context.Context, _ pgutils.DBTX, itemID int64) (items.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	it, ok := f.s.items[itemID]
	if !ok {
		return items.Item{}, items.ErrItemNotFound
	}

	return it, nil
}

func (f fakeItems) MarkSold(_ context.Context, _ pgutils.DBTX, itemID int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	it, ok := f.s.items[itemID]
	if !ok || !it.Available {
		return items.ErrItemSold
	}

	it.Available = false
	f.s.items[itemID] = it

	return nil
}

type fakePurchases struct{ s *fakeStore }

func (f fakePurchases) Insert(_ context.Context, _ pgutils.DBTX, accountID, itemID int64, price decimal.Decimal) (purchases.Purchase, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, p := range f.s.purchases {
		if p.ItemID == itemID {
			return purchases.Purchase{}, purchases.ErrItemAlreadyPurchased
		}
	}

	p := purchases.Purchase{
		ID:        int64(len(f.s.purchases) + 1),
		AccountID: accountID,
		ItemID:    itemID,
		PricePaid: price,
		CreatedAt: time.Now(),
	}
	f.s.purchases = append(f.s.purchases, p)

	return p, nil
}

func (f fakePurchases) ListByUsername(context.Context, string) ([]purchases.PurchasedItem, error) {
	return nil, nil
}

type fakeMovements struct{ s *fakeStore }

func (f fakeMovements) Append(_ context.Context, _ pgutils.DBTX, m movements.Movement) (movements.Movement, error) {
	if f.s.appendErr != nil {
		return movements.Movement{}, f.s.appendErr
	}

	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	m.ID = int64(len(f.s.movements) + 1)
	m.CreatedAt = time.Now()
	f.s.movements = append(f.s.movements, m)

	return m, nil
}

func (f fakeMovements) ListByUsername(context.Context, string) ([]movements.Movement, error) {
	return nil, nil
}

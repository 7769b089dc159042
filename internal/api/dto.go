package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fastprodman/artmarket/internal/money"
	"github.com/fastprodman/artmarket/internal/repos/items"
	"github.com/fastprodman/artmarket/internal/repos/movements"
	"github.com/fastprodman/artmarket/internal/repos/purchases"
	"github.com/fastprodman/artmarket/internal/services/accounts"
	"github.com/shopspring/decimal"
)

// Amount accepts a JSON number (12.5) or string ("12.50") and never goes
// through float64.
type Amount struct {
	decimal.Decimal
	Set bool
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		err := json.Unmarshal(b, &raw)
		if err != nil {
			return err
		}
	}

	d, err := money.Parse(raw)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	a.Decimal, a.Set = d, true

	return nil
}

type registerRequest struct {
	Username        string  `json:"username" validate:"required,max=64"`
	DisplayName     string  `json:"displayName" validate:"required,max=128"`
	Password        string  `json:"password" validate:"required"`
	ProfileImageKey *string `json:"profileImageKey" validate:"omitempty,max=512"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Username        string  `json:"username" validate:"required"`
	PasswordConfirm string  `json:"passwordConfirm" validate:"required"`
	NewUsername     *string `json:"newUsername" validate:"omitempty,max=64"`
	DisplayName     *string `json:"displayName" validate:"omitempty,max=128"`
	ProfileImageKey *string `json:"profileImageKey" validate:"omitempty,max=512"`
}

type topUpRequest struct {
	Username string `json:"username" validate:"required"`
	Amount   Amount `json:"amount"`
}

type purchaseRequest struct {
	Username string `json:"username" validate:"required"`
	ItemID   int64  `json:"itemId" validate:"required,gt=0"`
}

type presignRequest struct {
	Folder      string `json:"folder" validate:"required"`
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType"`
}

type presignProfileRequest struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	ContentType string `json:"contentType" validate:"required"`
}

type accountResponse struct {
	Username        string  `json:"username"`
	DisplayName     string  `json:"displayName"`
	ProfileImageKey *string `json:"profileImageKey"`
	Balance         string  `json:"balance"`
}

func toAccountResponse(s accounts.Summary) accountResponse {
	return accountResponse{
		Username:        s.Username,
		DisplayName:     s.DisplayName,
		ProfileImageKey: s.ProfileImageKey,
		Balance:         money.Format(s.Balance),
	}
}

type itemResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	AuthorName      string `json:"authorName"`
	PublicationYear int    `json:"publicationYear"`
	Price           string `json:"price"`
	ImageKey        string `json:"imageKey"`
	Available       bool   `json:"available"`
}

func toItemResponses(in []items.Item) []itemResponse {
	out := make([]itemResponse, 0, len(in))
	for _, it := range in {
		out = append(out, toItemResponse(it))
	}

	return out
}

func toItemResponse(it items.Item) itemResponse {
	return itemResponse{
		ID:              it.ID,
		Title:           it.Title,
		AuthorName:      it.AuthorName,
		PublicationYear: it.PublicationYear,
		Price:           money.Format(it.Price),
		ImageKey:        it.ImageKey,
		Available:       it.Available,
	}
}

type purchasedItemResponse struct {
	itemResponse
	PurchaseID  int64     `json:"purchaseId"`
	PricePaid   string    `json:"pricePaid"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

func toPurchasedResponses(in []purchases.PurchasedItem) []purchasedItemResponse {
	out := make([]purchasedItemResponse, 0, len(in))
	for _, p := range in {
		out = append(out, purchasedItemResponse{
			itemResponse: toItemResponse(p.Item),
			PurchaseID:   p.Purchase.ID,
			PricePaid:    money.Format(p.Purchase.PricePaid),
			PurchasedAt:  p.Purchase.CreatedAt,
		})
	}

	return out
}

type movementResponse struct {
	ID                int64     `json:"id"`
	Kind              string    `json:"kind"`
	Amount            string    `json:"amount"`
	RelatedPurchaseID *int64    `json:"relatedPurchaseId"`
	ResultingBalance  string    `json:"resultingBalance"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toMovementResponses(in []movements.Movement) []movementResponse {
	out := make([]movementResponse, 0, len(in))
	for _, m := range in {
		out = append(out, movementResponse{
			ID:                m.ID,
			Kind:              string(m.Kind),
			Amount:            money.Format(m.Amount),
			RelatedPurchaseID: m.RelatedPurchaseID,
			ResultingBalance:  money.Format(m.ResultingBalance),
			CreatedAt:         m.CreatedAt,
		})
	}

	return out
}

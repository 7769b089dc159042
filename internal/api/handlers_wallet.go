package api

import (
	"fmt"
	"net/http"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/money"
)

// TopUpHandler handles POST /profile/topup
func (h *HandlerProvider) TopUpHandler(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest

	err := h.decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !req.Amount.Set {
		writeError(w, r, fmt.Errorf("%w: amount is required", apperr.ErrInvalidAmount))
		return
	}

	bal, err := h.wallet.TopUp(r.Context(), req.Username, req.Amount.Decimal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"balance": money.Format(bal)})
}

// PurchaseHandler handles POST /purchase. Every domain refusal (unknown
// account, unavailable item, insufficient funds) is a 400.
func (h *HandlerProvider) PurchaseHandler(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest

	err := h.decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bal, err := h.wallet.Purchase(r.Context(), req.Username, req.ItemID)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			status = http.StatusBadRequest
		}

		writeErrorStatus(w, r, status, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "purchase completed",
		"balance": money.Format(bal),
	})
}

package api

import (
	"net/http"

	"github.com/fastprodman/artmarket/internal/services/accounts"
)

// ProfileHandler handles GET /profile/me?username=
func (h *HandlerProvider) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	sum, err := h.accounts.Profile(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(sum))
}

// PurchasedHandler handles GET /profile/purchased?username=
func (h *HandlerProvider) PurchasedHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListPurchased(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPurchasedResponses(list))
}

// MovementsHandler handles GET /profile/movements?username=
func (h *HandlerProvider) MovementsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListMovements(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toMovementResponses(list))
}

// UpdateProfileHandler handles PUT /profile
func (h *HandlerProvider) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest

	err := h.decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sum, err := h.accounts.UpdateProfile(r.Context(), req.Username, req.PasswordConfirm, accounts.ProfilePatch{
		NewUsername:    req.NewUsername,
		NewDisplayName: req.DisplayName,
		NewImageKey:    req.ProfileImageKey,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "profile updated",
		"user":    toAccountResponse(sum),
	})
}

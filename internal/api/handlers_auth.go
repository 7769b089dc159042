package api

import (
	"net/http"

	"github.com/fastprodman/artmarket/internal/services/accounts"
)

// RegisterHandler handles POST /auth/register
func (h *HandlerProvider) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest

	err := h.decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sum, err := h.accounts.Register(r.Context(), accounts.RegisterInput{
		Username:        req.Username,
		DisplayName:     req.DisplayName,
		Credential:      req.Password,
		ProfileImageKey: req.ProfileImageKey,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "account created",
		"user":    toAccountResponse(sum),
	})
}

// LoginHandler handles POST /auth/login
func (h *HandlerProvider) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	err := h.decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sum, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "login ok",
		"user":    toAccountResponse(sum),
	})
}

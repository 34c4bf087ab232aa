package handlers

import (
	"context"
	"net/http"

	"github.com/tabletop/backend/internal/models"
	"github.com/tabletop/backend/internal/services"
)

type AccountHandler struct {
	accounts *services.AccountService
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// DeleteAccount removes the caller's data and identity. The response lists
// image URLs that belonged to the account.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), services.AccountTimeout)
	defer cancel()

	result, err := h.accounts.Delete(ctx, identity.UserID)
	if err != nil {
		writeServerError(w, r, err, "Failed to delete account")
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(result))
}

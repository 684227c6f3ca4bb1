package handler

import (
	"net/http"

	"github.com/heimu09/ApartXCleaning/internal/application/account"
	"github.com/heimu09/ApartXCleaning/internal/application/resource"
	"github.com/heimu09/ApartXCleaning/internal/domain"
	"github.com/heimu09/ApartXCleaning/internal/transport/http/middleware"
)

// AccountHandler handles endpoints acting on the caller's own account.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler { return &AccountHandler{svc: svc} }

func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.Profile(r.Context(), ident)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeUser(u))
}

func (h *AccountHandler) SelectRole(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.SelectRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SelectRole(r.Context(), ident, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authEnvelope("Role has been selected.", res.Tokens, res.User))
}

// Permissions lists what the caller's role may do with marketplace resources.
func (h *AccountHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Role        string                `json:"role"`
		Permissions []resource.Permission `json:"permissions"`
	}{ident.Role, resource.PolicyFor(ident.Role)})
}

// ListRoles lists the roles a user may select.
func ListRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Roles)
}

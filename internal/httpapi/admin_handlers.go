package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"suvidha.org/internal/audit"
	"suvidha.org/internal/auth"
)

type updateUserRequest struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Active     *bool   `json:"active"`
	Password   *string `json:"password"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.auth.ListAccounts(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := a.auth.UpdateAccount(r.Context(), chi.URLParam(r, "id"), auth.UpdateInput{
		Name:         req.Name,
		Role:         req.Role,
		DepartmentID: req.Department,
		Active:       req.Active,
		Password:     req.Password,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	a.recordFor(r, auth.ActionUserUpdated, fmt.Sprintf("Updated: %s", account.Email))
	writeJSON(w, http.StatusOK, map[string]any{"user": account})
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	account, err := a.auth.DeleteAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	a.recordFor(r, auth.ActionUserDeleted, fmt.Sprintf("Deleted: %s", account.Email))
	writeJSON(w, http.StatusOK, map[string]any{"message": "User deleted."})
}

func (a *API) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{
		Action: q.Get("action"),
		User:   q.Get("user"),
		Page:   intQuery(q.Get("page"), 1),
		Limit:  intQuery(q.Get("limit"), 50),
	}
	logs, total, err := a.audit.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if logs == nil {
		logs = []*audit.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "logs": logs})
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

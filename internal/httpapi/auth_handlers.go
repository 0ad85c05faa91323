package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"suvidha.org/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *auth.Account `json:"user"`
}

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}
	result, err := a.auth.Login(r.Context(), req.Email, req.Password, clientIP(r))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.Account,
	})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account, err := a.auth.Register(r.Context(), auth.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		DepartmentID: req.Department,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	a.recordFor(r, auth.ActionUserCreated,
		fmt.Sprintf("Created user: %s (%s)", account.Email, account.Role))
	writeJSON(w, http.StatusCreated, map[string]any{"user": account})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	account, _ := auth.AccountFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"user": account})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	account, _ := auth.AccountFromContext(r.Context())
	token, expiresAt, err := a.auth.Refresh(account)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expiresAt,
	})
}

// handleLogout changes no server state: tokens are stateless and expire on
// their own. The attempt is still audited.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.recordFor(r, auth.ActionLogout, "Client token discarded")
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out."})
}

// recordFor writes an audit entry attributed to the authenticated caller.
func (a *API) recordFor(r *http.Request, action, detail string) {
	actorEmail, actorRole := "", ""
	if account, ok := auth.AccountFromContext(r.Context()); ok {
		actorEmail = account.Email
		actorRole = string(account.Role)
	}
	a.audit.Record(r.Context(), action, actorEmail, actorRole, clientIP(r), detail)
}

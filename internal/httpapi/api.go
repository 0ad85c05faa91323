package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"suvidha.org/internal/audit"
	"suvidha.org/internal/auth"
	"suvidha.org/internal/console"
	"suvidha.org/internal/obs"
)

// ReadyProbe pings the backing database for the readiness endpoint.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer of the admin console.
type API struct {
	auth       *auth.Service
	console    *console.Service
	audit      *audit.Recorder
	readyProbe ReadyProbe
	router     chi.Router
	version    string
}

// New wires services and routes.
func New(authSvc *auth.Service, consoleSvc *console.Service, recorder *audit.Recorder, rp ReadyProbe, version string) *API {
	a := &API{
		auth:       authSvc,
		console:    consoleSvc,
		audit:      recorder,
		readyProbe: rp,
		version:    version,
	}

	r := chi.NewRouter()
	r.Get("/healthz", a.handleHealthz)
	r.Get("/readyz", a.handleReady)
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	r.Post("/auth/login", a.handleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(a.withAuth)
		pr.Get("/auth/me", a.handleMe)
		pr.Post("/auth/refresh", a.handleRefresh)
		pr.Post("/auth/logout", a.handleLogout)
		pr.With(requireRole(auth.RoleSuperAdmin)).Post("/auth/register", a.handleRegister)

		pr.Route("/admin", func(ar chi.Router) {
			sa := ar.With(requireRole(auth.RoleSuperAdmin))
			sa.Get("/users", a.handleListUsers)
			sa.Put("/users/{id}", a.handleUpdateUser)
			sa.Delete("/users/{id}", a.handleDeleteUser)
			sa.Get("/audit-logs", a.handleAuditLogs)
			sa.Get("/settings", a.handleGetSettings)
			sa.Put("/settings", a.handleUpdateSettings)

			ar.With(requireRole(auth.RoleDepartmentAdmin)).Get("/departments", a.handleListDepartments)
			ar.With(requireRole(auth.RoleDepartmentAdmin)).Get("/departments/{id}", a.handleGetDepartment)
			sa.Post("/departments", a.handleCreateDepartment)
			sa.Put("/departments/{id}", a.handleUpdateDepartment)
			sa.Delete("/departments/{id}", a.handleDeleteDepartment)
		})
	})

	a.router = r
	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.router
	h = RateLimit(h, 20, 10)
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = Logging(h)
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "suvidha-admin-api",
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{"message": message})
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

// handleDomainError maps auth/console errors onto HTTP statuses without
// leaking internals. Unknown email and wrong password intentionally share
// one body.
func handleDomainError(w http.ResponseWriter, err error) {
	var locked *auth.LockedError
	switch {
	case errors.As(err, &locked):
		w.Header().Set("Retry-After", strconv.Itoa(locked.RetryAfterMinutes()*60))
		writeJSON(w, http.StatusLocked, map[string]any{
			"message":             locked.Error(),
			"retry_after_minutes": locked.RetryAfterMinutes(),
		})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials.")
	case errors.Is(err, auth.ErrAccountDisabled):
		writeError(w, http.StatusForbidden, "Account deactivated. Contact Super Admin.")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Invalid or expired token.")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "Insufficient role.")
	case errors.Is(err, auth.ErrConflict), errors.Is(err, console.ErrConflict):
		writeError(w, http.StatusBadRequest, "Already registered.")
	case errors.Is(err, auth.ErrInvalidInput), errors.Is(err, console.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, console.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found.")
	default:
		writeError(w, http.StatusInternalServerError, "Internal error.")
	}
}

package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"suvidha.org/internal/console"
)

const (
	actionDepartmentCreated = "Department created"
	actionDepartmentUpdated = "Department updated"
	actionDepartmentDeleted = "Department deleted"
	actionConfigChanged     = "Config changed"
)

type departmentRequest struct {
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	Color        string `json:"color"`
	Description  string `json:"description"`
	ServiceHours string `json:"service_hours"`
}

type updateDepartmentRequest struct {
	Name         *string `json:"name"`
	Icon         *string `json:"icon"`
	Color        *string `json:"color"`
	Description  *string `json:"description"`
	ServiceHours *string `json:"service_hours"`
	Enabled      *bool   `json:"enabled"`
}

func (a *API) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := a.console.ListDepartments(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"departments": departments})
}

func (a *API) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	department, err := a.console.GetDepartment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"department": department})
}

func (a *API) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	department, err := a.console.CreateDepartment(r.Context(), console.Department{
		Name:         req.Name,
		Icon:         req.Icon,
		Color:        req.Color,
		Description:  req.Description,
		ServiceHours: req.ServiceHours,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	a.recordFor(r, actionDepartmentCreated, department.Name)
	writeJSON(w, http.StatusCreated, map[string]any{"department": department})
}

func (a *API) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var req updateDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	department, err := a.console.UpdateDepartment(r.Context(), chi.URLParam(r, "id"), console.DepartmentUpdate{
		Name:         req.Name,
		Icon:         req.Icon,
		Color:        req.Color,
		Description:  req.Description,
		ServiceHours: req.ServiceHours,
		Enabled:      req.Enabled,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	a.recordFor(r, actionDepartmentUpdated, department.Name)
	writeJSON(w, http.StatusOK, map[string]any{"department": department})
}

func (a *API) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.console.DeleteDepartment(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	a.recordFor(r, actionDepartmentDeleted, id)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Department deleted."})
}

func (a *API) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.console.GetSettings(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (a *API) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req console.Settings
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	settings, err := a.console.UpdateSettings(r.Context(), req)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	a.recordFor(r, actionConfigChanged, fmt.Sprintf("Settings updated, payment mode: %s", settings.PaymentMode))
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

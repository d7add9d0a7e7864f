/*
handlers.go - HTTP API handlers for the HRM engine

PURPOSE:
  Exposes the HRM engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the domain packages.

ENDPOINTS:
  Status:
    GET    /api/status                       Health probe

  Auth:
    POST   /api/auth/login                   Authenticate and open a session
    POST   /api/auth/logout                  Close the session
    GET    /api/auth/me                      The acting identity

  Employees:
    GET    /api/employees                    Active roster (visibility-filtered)
    POST   /api/employees                    Create employee
    GET    /api/employees/past               Soft-deleted roster
    GET    /api/employees/export             Roster CSV
    POST   /api/employees/import             Roster CSV import (?mode=overwrite)
    POST   /api/employees/sweep              Purge expired past employees now
    GET    /api/employees/{id}               Get one record
    PUT    /api/employees/{id}               Update one record
    POST   /api/employees/{id}/past          Soft delete
    POST   /api/employees/{id}/rejoin        Reactivate
    GET    /api/employees/{id}/balances      Leave balances

  Packages:
    GET    /api/packages                     List templates with totals
    POST   /api/packages                     Create/replace a template
    DELETE /api/packages/{id}                Remove a template

  Leave:
    GET    /api/leaves                       Requests (visibility-filtered)
    POST   /api/leaves                       Apply
    POST   /api/leaves/{id}/approve          Approve
    POST   /api/leaves/{id}/reject           Reject

  Payroll:
    GET    /api/payroll/{month}              Monthly table
    GET    /api/payroll/{month}/export       Monthly CSV
    POST   /api/payroll/{month}/bonuses      Bonus CSV import
    PUT    /api/payroll/{month}/{id}         Set override
    GET    /api/payroll/{month}/{id}/payslip Payslip PDF

  Attendance:
    GET    /api/attendance/report            All sessions, grouped
    GET    /api/attendance/day/{day}         One day, grouped
    GET    /api/attendance/heatmap           Calendar heat-map
    GET    /api/attendance/monthly/{month}   Present-day counts per employee
    GET    /api/attendance/export            Report CSV

  Preferences:
    GET    /api/prefs                        Persisted view preferences
    PUT    /api/prefs                        Replace view preferences

  Traffic:
    GET    /api/traffic                      Live sheet
    POST   /api/traffic/increment            Bump one cell
    POST   /api/traffic/save                 Merge into today's history
    POST   /api/traffic/reset                Clear the live sheet
    GET    /api/traffic/summary/{month}      Monthly roll-up

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: No session where one is required
  - 404: Record not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Background expiry sweeping
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gravity/hrm-engine/attendance"
	"github.com/gravity/hrm-engine/hierarchy"
	"github.com/gravity/hrm-engine/hrm"
	"github.com/gravity/hrm-engine/leave"
	"github.com/gravity/hrm-engine/payroll"
	"github.com/gravity/hrm-engine/roster"
	"github.com/gravity/hrm-engine/traffic"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         *hrm.Store
	Counter       *traffic.Counter
	PayrollPolicy payroll.Policy
	Logger        *slog.Logger

	// Clock is swappable for tests; defaults to time.Now.
	Clock func() time.Time
}

// NewHandler creates a handler over the given store.
func NewHandler(store *hrm.Store, logger *slog.Logger) *Handler {
	return &Handler{
		Store:   store,
		Counter: traffic.NewCounter(time.Now()),
		Logger:  logger,
		Clock:   time.Now,
	}
}

// Bootstrap seeds default packages and restores the live traffic sheet.
// Call once at startup, before serving.
func (h *Handler) Bootstrap(ctx context.Context) error {
	st, err := h.Store.LoadState(ctx)
	if err != nil {
		return err
	}
	if roster.SeedPackages(st) {
		if err := h.Store.SaveState(ctx, st); err != nil {
			return err
		}
		h.Logger.Info("seeded default salary packages", "count", len(st.Packages))
	}

	rows, err := traffic.LoadLiveRows(ctx, h.Store.KV())
	if err != nil {
		return err
	}
	if rows != nil {
		h.Counter.Load(rows, h.Clock())
		h.Logger.Info("restored live traffic sheet", "total", h.Counter.Total())
	}
	return nil
}

func (h *Handler) now() time.Time { return h.Clock() }

// =============================================================================
// STATUS
// =============================================================================

// Status reports server liveness.
// GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "Server is running",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// =============================================================================
// AUTH
// =============================================================================

// Login authenticates and opens an attendance session.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	user, err := roster.Login(r.Context(), h.Store, st, req.ID, req.Pin, h.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toIdentityDTO(user))
}

// Logout closes the open attendance session and clears the identity.
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := roster.Logout(r.Context(), h.Store, h.now()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to log out", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the acting identity.
// GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toIdentityDTO(*user))
}

// requireIdentity loads the acting user, writing 401 when nobody is logged in.
func (h *Handler) requireIdentity(w http.ResponseWriter, r *http.Request) (*hrm.Identity, bool) {
	user, err := h.Store.LoadIdentity(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load identity", err)
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not logged in", nil)
		return nil, false
	}
	return user, true
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the active roster, filtered to what the acting user
// may see.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	access := hierarchy.Resolve(*user, st.Employees)
	visible := access.Filter(roster.ActiveEmployees(st))
	writeJSON(w, http.StatusOK, toEmployeeDTOs(visible))
}

// ListPastEmployees returns the soft-deleted roster.
// GET /api/employees/past
func (h *Handler) ListPastEmployees(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(roster.PastEmployees(st)))
}

// CreateEmployee adds a roster record.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req UpsertEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	emp, err := roster.Add(st, employeeFromRequest(req))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns one roster record.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	emp := st.FindEmployee(id)
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// UpdateEmployee replaces one roster record.
// PUT /api/employees/{id}
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpsertEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = id

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	existing := st.FindEmployee(id)
	if existing == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	updated := employeeFromRequest(req)
	// Lifecycle fields are managed by their own endpoints.
	updated.Status = existing.Status
	updated.Expiry = existing.Expiry
	if updated.SecretCode == "" {
		updated.SecretCode = existing.SecretCode
	}

	if err := roster.Update(st, updated); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(updated))
}

// MoveEmployeeToPast soft-deletes an employee.
// POST /api/employees/{id}/past
func (h *Handler) MoveEmployeeToPast(w http.ResponseWriter, r *http.Request) {
	h.mutateEmployee(w, r, func(st *hrm.State, id string) error {
		return roster.MoveToPast(st, id, h.now())
	})
}

// RejoinEmployee reactivates a past employee.
// POST /api/employees/{id}/rejoin
func (h *Handler) RejoinEmployee(w http.ResponseWriter, r *http.Request) {
	h.mutateEmployee(w, r, roster.Rejoin)
}

func (h *Handler) mutateEmployee(w http.ResponseWriter, r *http.Request, op func(*hrm.State, string) error) {
	id := chi.URLParam(r, "id")

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}
	if err := op(st, id); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}

	emp := st.FindEmployee(id)
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// SweepExpired purges past employees whose retention elapsed.
// POST /api/employees/sweep
func (h *Handler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	removed := roster.SweepExpired(st, h.now())
	if removed > 0 {
		if err := h.Store.SaveState(r.Context(), st); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save state", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// ExportEmployees streams the roster CSV.
// GET /api/employees/export
func (h *Handler) ExportEmployees(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="employees.csv"`)
	if err := roster.Export(st.Employees, w); err != nil {
		h.Logger.Error("roster export failed", "error", err)
	}
}

// ImportEmployees parses a roster CSV from the request body.
// POST /api/employees/import?mode=overwrite
func (h *Handler) ImportEmployees(w http.ResponseWriter, r *http.Request) {
	mode := roster.ImportAdd
	if r.URL.Query().Get("mode") == "overwrite" {
		mode = roster.ImportOverwrite
	}

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	count, err := roster.Import(st, r.Body, mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse CSV", err)
		return
	}
	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": count})
}

// GetLeaveBalances returns the derived leave position for one employee.
// GET /api/employees/{id}/balances
func (h *Handler) GetLeaveBalances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	emp := st.FindEmployee(id)
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	balances := leave.ComputeBalances(*emp, st.Leaves, h.now())
	writeJSON(w, http.StatusOK, toBalancesDTO(id, balances))
}

func employeeFromRequest(req UpsertEmployeeRequest) hrm.Employee {
	return hrm.Employee{
		ID:            req.ID,
		Name:          req.Name,
		Role:          req.Role,
		Designation:   req.Designation,
		DOJ:           req.DOJ,
		Education:     req.Education,
		Mobile:        req.Mobile,
		DOB:           req.DOB,
		Email:         req.Email,
		SecretCode:    req.SecretCode,
		SalaryPackage: req.SalaryPackage,
		ManagerID:     req.ManagerID,
		TeamLeaderID:  req.TeamLeaderID,
		ReportsTo:     req.ReportsTo,
		BloodGroup:    req.BloodGroup,
	}
}

// =============================================================================
// SALARY PACKAGE HANDLERS
// =============================================================================

// ListPackages returns the package templates with derived totals.
// GET /api/packages
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	dtos := make([]PackageDTO, len(st.Packages))
	for i, p := range st.Packages {
		dtos[i] = toPackageDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertPackage creates or replaces a package template.
// POST /api/packages
func (h *Handler) UpsertPackage(w http.ResponseWriter, r *http.Request) {
	var req UpsertPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Package id and name are required", nil)
		return
	}

	pkg, err := packageFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	if existing := st.FindPackage(pkg.ID); existing != nil {
		*existing = pkg
	} else {
		st.Packages = append(st.Packages, pkg)
	}

	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusOK, toPackageDTO(pkg))
}

// DeletePackage removes a package template. Employee references to the
// removed id dangle and render as "Not Assigned".
// DELETE /api/packages/{id}
func (h *Handler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	kept := st.Packages[:0]
	found := false
	for _, p := range st.Packages {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		writeError(w, http.StatusNotFound, "Package not found", nil)
		return
	}
	st.Packages = kept

	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func packageFromRequest(req UpsertPackageRequest) (hrm.SalaryPackage, error) {
	parse := func(s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	}

	pkg := hrm.SalaryPackage{ID: req.ID, Name: req.Name}
	var err error
	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&pkg.Basic, req.Basic}, {&pkg.HRA, req.HRA},
		{&pkg.Conveyance, req.Conveyance}, {&pkg.Medical, req.Medical},
		{&pkg.Special, req.Special}, {&pkg.Bonus, req.Bonus},
		{&pkg.DA, req.DA}, {&pkg.Variable, req.Variable},
		{&pkg.PF, req.PF}, {&pkg.Tax, req.Tax},
	}
	for _, f := range fields {
		if *f.dst, err = parse(f.src); err != nil {
			return hrm.SalaryPackage{}, err
		}
	}
	return pkg, nil
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// ListLeaves returns leave requests visible to the acting user.
// GET /api/leaves
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	access := hierarchy.Resolve(*user, st.Employees)
	dtos := []LeaveDTO{}
	for _, req := range st.Leaves {
		if !access.Contains(req.EmpID) {
			continue
		}
		name := ""
		if emp := st.FindEmployee(req.EmpID); emp != nil {
			name = emp.Name
		}
		dtos = append(dtos, toLeaveDTO(req, name))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApplyLeave submits a new leave application.
// POST /api/leaves
func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var req ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}
	if st.FindEmployee(req.EmpID) == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	request, err := leave.Apply(req.EmpID, req.Type, req.Start, req.End, req.Reason, h.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	st.Leaves = append(st.Leaves, request)
	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(request, ""))
}

// ApproveLeave marks a request Approved.
// POST /api/leaves/{id}/approve
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.decideLeave(w, r, hrm.LeaveApproved)
}

// RejectLeave marks a request Rejected.
// POST /api/leaves/{id}/reject
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.decideLeave(w, r, hrm.LeaveRejected)
}

func (h *Handler) decideLeave(w http.ResponseWriter, r *http.Request, status hrm.LeaveStatus) {
	id := chi.URLParam(r, "id")

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	if err := leave.Decide(st.Leaves, id, status); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GetPayrollMonth returns the computed table for one month.
// GET /api/payroll/{month}
func (h *Handler) GetPayrollMonth(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "month")

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	rows := []PayrollRowDTO{}
	for _, emp := range roster.ActiveEmployees(st) {
		pkg := st.PackageFor(emp)
		override := st.PayrollHistory.Override(monthKey, emp.ID)
		res := payroll.ComputeWithPolicy(pkg, override, h.PayrollPolicy)

		pkgName := payroll.NotAssigned
		if pkg != nil {
			pkgName = pkg.Name
		}
		rows = append(rows, PayrollRowDTO{
			EmpID:         emp.ID,
			Name:          emp.Name,
			Designation:   emp.Designation,
			PackageName:   pkgName,
			ProRatedNet:   money(res.ProRatedNet),
			SpecialBonus:  money(res.SpecialBonus),
			NetPayable:    money(res.NetPayable),
			DaysPayable:   res.DaysPayable,
			ProRatedGross: money(res.ProRatedGross),
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

// SetPayrollOverride adjusts one employee's pay for one month.
// PUT /api/payroll/{month}/{id}
func (h *Handler) SetPayrollOverride(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "month")
	empID := chi.URLParam(r, "id")

	var req SetOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	bonus := decimal.Zero
	if req.SpecialBonus != "" {
		var err error
		if bonus, err = decimal.NewFromString(req.SpecialBonus); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid special bonus", err)
			return
		}
	}

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}
	if st.FindEmployee(empID) == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	// Merge into the existing entry; an import's bonus count and a frozen
	// snapshot must survive a days-only edit.
	override := st.PayrollHistory.Override(monthKey, empID)
	if req.SpecialBonus != "" {
		override.SpecialBonus = bonus
	}
	if req.DaysPayable > 0 {
		override.DaysPayable = req.DaysPayable
	}
	st.PayrollHistory.Set(monthKey, empID, override)

	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ImportBonuses merges a bonus CSV into the month's overrides.
// POST /api/payroll/{month}/bonuses
func (h *Handler) ImportBonuses(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "month")

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	result, err := payroll.ImportBonuses(st, monthKey, r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse CSV", err)
		return
	}
	if err := h.Store.SaveState(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save state", err)
		return
	}
	writeJSON(w, http.StatusOK, BonusImportResultDTO{Applied: result.Applied, Skipped: result.Skipped})
}

// ExportPayroll streams the monthly payroll CSV.
// GET /api/payroll/{month}/export
func (h *Handler) ExportPayroll(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "month")

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payroll-%s.csv"`, monthKey))
	if err := payroll.Export(st, monthKey, roster.ActiveEmployees(st), w); err != nil {
		h.Logger.Error("payroll export failed", "month", monthKey, "error", err)
	}
}

// GetPayslip renders one employee-month as a PDF. Under the
// freeze-at-generation policy the first render pins the figures.
// GET /api/payroll/{month}/{id}/payslip
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "month")
	empID := chi.URLParam(r, "id")

	st, err := h.Store.LoadState(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load state", err)
		return
	}

	emp := st.FindEmployee(empID)
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	pkg := st.PackageFor(*emp)
	override := st.PayrollHistory.Override(monthKey, empID)

	if h.PayrollPolicy == payroll.PolicyFreezeAtGeneration && override.Frozen == nil && pkg != nil {
		frozen := payroll.Freeze(pkg, override, h.now())
		override.Frozen = &frozen
		st.PayrollHistory.Set(monthKey, empID, override)
		if err := h.Store.SaveState(r.Context(), st); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save state", err)
			return
		}
	}

	slip, err := payroll.BuildPayslip(*emp, pkg, override, monthKey, h.PayrollPolicy)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payslip-%s-%s.pdf"`, empID, monthKey))
	if err := payroll.RenderPDF(slip, w); err != nil {
		h.Logger.Error("payslip render failed", "employee", empID, "month", monthKey, "error", err)
	}
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// AttendanceReport returns all sessions grouped by employee.
// GET /api/attendance/report
func (h *Handler) AttendanceReport(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Store.LoadSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load sessions", err)
		return
	}

	now := h.now()
	groups := attendance.Aggregate(sessions, now)
	dtos := make([]AttendanceGroupDTO, len(groups))
	for i, g := range groups {
		dtos[i] = h.groupDTO(g, now)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AttendanceDay returns one local day grouped by employee.
// GET /api/attendance/day/{day}
func (h *Handler) AttendanceDay(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")

	sessions, err := h.Store.LoadSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load sessions", err)
		return
	}

	now := h.now()
	groups := attendance.AggregateDay(sessions, day, now)
	dtos := make([]AttendanceGroupDTO, len(groups))
	for i, g := range groups {
		dtos[i] = h.groupDTO(g, now)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) groupDTO(g attendance.Group, now time.Time) AttendanceGroupDTO {
	dto := toAttendanceGroupDTO(g)
	for i, s := range g.Sessions {
		dto.Sessions[i].Duration = attendance.FormatDuration(attendance.SessionDuration(s, now))
	}
	return dto
}

// AttendanceHeatmap returns the day-level calendar marks.
// GET /api/attendance/heatmap
func (h *Handler) AttendanceHeatmap(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Store.LoadSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, attendance.DayHeat(sessions, h.now()))
}

// AttendanceMonthly returns per-employee Present-day counts for a month.
// GET /api/attendance/monthly/{month}
func (h *Handler) AttendanceMonthly(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "month")

	sessions, err := h.Store.LoadSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load sessions", err)
		return
	}
	presence := attendance.MonthlyPresence(sessions, monthKey, h.now())
	out := make([]PresenceDTO, len(presence))
	for i, p := range presence {
		out[i] = PresenceDTO{EmpID: p.EmployeeID, Name: p.Name, Days: p.Days}
	}
	writeJSON(w, http.StatusOK, out)
}

// ExportAttendance streams the attendance report CSV.
// GET /api/attendance/export
func (h *Handler) ExportAttendance(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Store.LoadSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load sessions", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance.csv"`)
	if err := attendance.Export(sessions, h.now(), w); err != nil {
		h.Logger.Error("attendance export failed", "error", err)
	}
}

// =============================================================================
// TRAFFIC HANDLERS
// =============================================================================

// GetTraffic returns the live counting sheet.
// GET /api/traffic
func (h *Handler) GetTraffic(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TrafficStateDTO{
		Rows:      h.Counter.Rows(),
		Total:     h.Counter.Total(),
		StartedAt: h.Counter.StartedAt().UTC().Format(time.RFC3339),
	})
}

// IncrementTraffic bumps one cell and persists the live sheet. Inputs inside
// the cooldown window are dropped silently (accepted=false).
// POST /api/traffic/increment
func (h *Handler) IncrementTraffic(w http.ResponseWriter, r *http.Request) {
	var req IncrementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	accepted := h.Counter.Increment(req.Direction, traffic.VehicleClass(req.Class), h.now())
	if accepted {
		if err := traffic.SaveLiveRows(r.Context(), h.Store.KV(), h.Counter.Rows()); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to persist sheet", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accepted": accepted,
		"total":    h.Counter.Total(),
	})
}

// SaveTraffic merges the live sheet into today's history entry and records a
// counting session under the acting user. The sheet keeps its counts; the
// session clock restarts.
// POST /api/traffic/save
func (h *Handler) SaveTraffic(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}

	history, err := traffic.LoadHistory(r.Context(), h.Store.KV())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}

	now := h.now()
	day := hrm.LocalDay(now)
	rows := h.Counter.Rows()
	entry := history.RecordSession(day, rows, *user, h.Counter.StartedAt(), now)

	if err := traffic.SaveHistory(r.Context(), h.Store.KV(), history); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save history", err)
		return
	}

	h.Counter.Load(rows, now)
	writeJSON(w, http.StatusOK, TrafficSaveResultDTO{
		Date:  day,
		Total: entry.Total,
		Peak:  traffic.PeakDirection(entry.Breakdown),
	})
}

// ResetTraffic zeroes the live sheet and removes its persisted key. History
// is untouched.
// POST /api/traffic/reset
func (h *Handler) ResetTraffic(w http.ResponseWriter, r *http.Request) {
	h.Counter.Reset(h.now())
	if err := traffic.ClearLiveRows(r.Context(), h.Store.KV()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear sheet", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// TrafficSummary returns the monthly roll-up.
// GET /api/traffic/summary/{month}
func (h *Handler) TrafficSummary(w http.ResponseWriter, r *http.Request) {
	monthKey := chi.URLParam(r, "month")

	history, err := traffic.LoadHistory(r.Context(), h.Store.KV())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load history", err)
		return
	}

	dto := toTrafficMonthDTO(monthKey, traffic.Summarize(history, monthKey))
	for _, day := range dto.Days {
		sort.Slice(day.Contributors, func(i, j int) bool {
			return day.Contributors[i].ID < day.Contributors[j].ID
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// VIEW PREFERENCES
// =============================================================================

// GetPrefs returns the persisted view preferences.
// GET /api/prefs
func (h *Handler) GetPrefs(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Store.LoadPrefs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, PrefsDTO{
		DashboardSection: prefs.DashboardSection,
		PayrollMonth:     prefs.PayrollMonth,
	})
}

// SetPrefs replaces the persisted view preferences.
// PUT /api/prefs
func (h *Handler) SetPrefs(w http.ResponseWriter, r *http.Request) {
	var req PrefsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	prefs := hrm.UIPrefs{DashboardSection: req.DashboardSection, PayrollMonth: req.PayrollMonth}
	if err := h.Store.SavePrefs(r.Context(), prefs); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, PrefsDTO(prefs))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Code = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hrm.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error(), nil)
	case hrm.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case hrm.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: Structured request logs (httplog, ECS schema)
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for the frontend

STATIC FILE SERVING:
  Serves the frontend from the configured static directory. The root path
  redirects to the login page; unknown paths under the static dir 404.

SECURITY NOTE:
  The only gate is the session identity persisted at login. This system is
  designed for a single trusted machine, not the open internet.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewRouter creates a router with all routes configured. staticDir may be
// empty or missing; API routes work regardless.
func NewRouter(h *Handler, logger *slog.Logger, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:5000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Status)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/past", h.ListPastEmployees)
			r.Get("/export", h.ExportEmployees)
			r.Post("/import", h.ImportEmployees)
			r.Post("/sweep", h.SweepExpired)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Post("/{id}/past", h.MoveEmployeeToPast)
			r.Post("/{id}/rejoin", h.RejoinEmployee)
			r.Get("/{id}/balances", h.GetLeaveBalances)
		})

		r.Route("/packages", func(r chi.Router) {
			r.Get("/", h.ListPackages)
			r.Post("/", h.UpsertPackage)
			r.Delete("/{id}", h.DeletePackage)
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Get("/", h.ListLeaves)
			r.Post("/", h.ApplyLeave)
			r.Post("/{id}/approve", h.ApproveLeave)
			r.Post("/{id}/reject", h.RejectLeave)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Get("/{month}", h.GetPayrollMonth)
			r.Get("/{month}/export", h.ExportPayroll)
			r.Post("/{month}/bonuses", h.ImportBonuses)
			r.Put("/{month}/{id}", h.SetPayrollOverride)
			r.Get("/{month}/{id}/payslip", h.GetPayslip)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/report", h.AttendanceReport)
			r.Get("/day/{day}", h.AttendanceDay)
			r.Get("/heatmap", h.AttendanceHeatmap)
			r.Get("/monthly/{month}", h.AttendanceMonthly)
			r.Get("/export", h.ExportAttendance)
		})

		r.Route("/prefs", func(r chi.Router) {
			r.Get("/", h.GetPrefs)
			r.Put("/", h.SetPrefs)
		})

		r.Route("/traffic", func(r chi.Router) {
			r.Get("/", h.GetTraffic)
			r.Post("/increment", h.IncrementTraffic)
			r.Post("/save", h.SaveTraffic)
			r.Post("/reset", h.ResetTraffic)
			r.Get("/summary/{month}", h.TrafficSummary)
		})
	})

	// Static frontend
	if staticDir != "" {
		if _, err := os.Stat(staticDir); err == nil {
			fileServer := http.FileServer(http.Dir(staticDir))
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/login.html", http.StatusFound)
			})
			r.Get("/*", fileServer.ServeHTTP)
		}
	}

	return r
}

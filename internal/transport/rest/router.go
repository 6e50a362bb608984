package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/personal-finance/internal/auth"
	"github.com/frahmantamala/personal-finance/internal/budget"
	"github.com/frahmantamala/personal-finance/internal/report"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/frahmantamala/personal-finance/internal/transport/middleware"
	"github.com/frahmantamala/personal-finance/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Dependencies are the handlers and shared resources the router mounts.
type Dependencies struct {
	DB                 *sql.DB
	DBDriver           string
	AllowedOrigins     []string
	OpenAPISpec        []byte
	AuthHandler        *auth.Handler
	TransactionHandler *transaction.Handler
	BudgetHandler      *budget.Handler
	ReportHandler      *report.Handler
	Logger             *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	healthHandler := NewHealthHandler(deps.DB, deps.DBDriver)
	base := transport.NewBaseHandler(logger)

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.LoggingMiddleware(logger))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if deps.OpenAPISpec != nil {
		router.Get(swagger.SpecPath, swagger.SpecHandler(deps.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Post("/login", deps.AuthHandler.Login)
		r.Post("/logout", deps.AuthHandler.Logout)

		r.Group(func(pr chi.Router) {
			pr.Use(deps.AuthHandler.AuthMiddleware)

			pr.Route("/transactions", func(tr chi.Router) {
				tr.Get("/", deps.TransactionHandler.ListTransactions)
				tr.Post("/", deps.TransactionHandler.CreateTransaction)
				tr.Patch("/", deps.TransactionHandler.PatchTransaction)
				tr.Delete("/", deps.TransactionHandler.DeleteTransaction)
			})

			pr.Route("/budgets", func(br chi.Router) {
				br.Get("/", deps.BudgetHandler.GetBudgets)
				br.Post("/", deps.BudgetHandler.SaveBudgets)
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/monthly", deps.ReportHandler.GetMonthly)
				rr.Get("/categories", deps.ReportHandler.GetCategories)
				rr.Get("/summary", deps.ReportHandler.GetSummary)
				rr.Get("/breakdown", deps.ReportHandler.GetBreakdown)
			})
		})
	})
}

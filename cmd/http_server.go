package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/personal-finance/api"
	"github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/auth"
	"github.com/frahmantamala/personal-finance/internal/budget"
	budgetRepo "github.com/frahmantamala/personal-finance/internal/budget/postgres"
	"github.com/frahmantamala/personal-finance/internal/core/events"
	"github.com/frahmantamala/personal-finance/internal/report"
	"github.com/frahmantamala/personal-finance/internal/transaction"
	transactionRepo "github.com/frahmantamala/personal-finance/internal/transaction/postgres"
	"github.com/frahmantamala/personal-finance/internal/transport/rest"
	"github.com/frahmantamala/personal-finance/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

// Services are the domain services behind the router; exposed so the seeder can reuse them.
type Services struct {
	Bus          *events.EventBus
	Transactions *transaction.Service
	Budgets      *budget.Service
	Reports      *report.Service
	Auth         *auth.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			_ = deps.DB.Close()
			os.Exit(1)
		}
	}

	if err := deps.DB.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}
	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	lg := logger.LoggerWrapper()

	if _, err := api.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := openGorm(config.Database.Driver, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	services, err := buildServices(config, gdb, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Gorm:   gdb,
		Router: newRouter(config, db, services, lg),
	}, nil
}

// buildServices wires repositories, services and the event bus on top of gdb.
func buildServices(cfg *internal.Config, gdb *gorm.DB, lg *slog.Logger) (*Services, error) {
	bus := events.NewEventBus(lg)

	transactionService := transaction.NewService(transactionRepo.NewTransactionRepository(gdb), bus, lg)
	budgetService := budget.NewService(budgetRepo.NewBudgetRepository(gdb), bus, lg)

	reportService := report.NewService(transactionService, budgetService.Totals, cfg.Reports.CacheTTL, lg)
	reportService.Subscribe(bus)

	credentials, err := auth.NewStaticCredentials(cfg.Security.Username, cfg.Security.Password, cfg.Security.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare credentials: %w", err)
	}
	tokenGen := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenDuration)

	return &Services{
		Bus:          bus,
		Transactions: transactionService,
		Budgets:      budgetService,
		Reports:      reportService,
		Auth:         auth.NewService(credentials, tokenGen, lg),
	}, nil
}

func newRouter(cfg *internal.Config, db *sqlx.DB, services *Services, lg *slog.Logger) *chi.Mux {
	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Dependencies{
		DB:                 db.DB,
		DBDriver:           cfg.Database.Driver,
		AllowedOrigins:     cfg.Server.Origins(),
		OpenAPISpec:        api.Spec,
		AuthHandler:        auth.NewHandler(services.Auth, cfg.Security.CookieSecure),
		TransactionHandler: transaction.NewHandler(services.Transactions),
		BudgetHandler:      budget.NewHandler(services.Budgets),
		ReportHandler:      report.NewHandler(services.Reports),
		Logger:             lg,
	})
	return router
}

// initDB opens the shared connection pool; gorm and goose both run on top of it.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	driver := cfg.SQLDriverName()

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := internal.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()
	if err := dbConn.PingContext(pingCtx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func openGorm(driver string, db *sqlx.DB) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.New(sqlite.Config{Conn: db.DB})
	default:
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:  gormLogger.Default.LogMode(gormLogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
}

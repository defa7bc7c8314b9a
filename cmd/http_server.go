package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/resource-management/internal"
	"github.com/frahmantamala/resource-management/internal/allocation"
	allocationPostgres "github.com/frahmantamala/resource-management/internal/allocation/postgres"
	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/core/events"
	"github.com/frahmantamala/resource-management/internal/department"
	departmentPostgres "github.com/frahmantamala/resource-management/internal/department/postgres"
	"github.com/frahmantamala/resource-management/internal/employee"
	employeePostgres "github.com/frahmantamala/resource-management/internal/employee/postgres"
	"github.com/frahmantamala/resource-management/internal/notification"
	"github.com/frahmantamala/resource-management/internal/project"
	projectPostgres "github.com/frahmantamala/resource-management/internal/project/postgres"
	"github.com/frahmantamala/resource-management/internal/transport"
	"github.com/frahmantamala/resource-management/internal/transport/rest"
	"github.com/frahmantamala/resource-management/internal/utilization"
	utilizationPostgres "github.com/frahmantamala/resource-management/internal/utilization/postgres"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
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
	Config     *internal.Config
	GormDB     *gorm.DB
	DB         *sqlx.DB
	Router     *chi.Mux
	EventBus   *events.EventBus
	Services   *Services
	Dispatcher *notification.Dispatcher
	Logger     *slog.Logger
}

type Services struct {
	Department  *department.Service
	Employee    *employee.Service
	Project     *project.Service
	Allocation  *allocation.Service
	Utilization *utilization.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	cfg := deps.Config.Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Close()
	deps.Logger.Info("Server stopped")
}

// Close drains in-flight event handlers, stops notification workers and
// closes the database.
func (d *Dependencies) Close() {
	d.EventBus.Wait()
	if d.Dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.Dispatcher.Drain(ctx); err != nil {
			d.Logger.Warn("alert delivery did not finish", "error", err)
		}
		d.Dispatcher.Shutdown()
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, buildHandlers(deps.Services, deps.Logger), rest.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsEnabled: cfg.Observability.Metrics.Enabled,
		MetricsPath:    cfg.Observability.Metrics.Path,
		RequestLogging: logLevelIsDebug(cfg),
	}, deps.Logger)
}

func logLevelIsDebug(cfg *internal.Config) bool {
	return cfg.Observability.Logging.Level == "debug"
}

func initializeDependencies() (*Dependencies, error) {
	config, lg, err := setup()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	gormDB, db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := events.NewEventBus(lg)
	services := buildServices(gormDB, db, bus, config, lg)

	var dispatcher *notification.Dispatcher
	if config.Notification.Enabled {
		dispatcher = newDispatcher(config.Notification, lg)
		dispatcher.RegisterEventHandlers(bus)
	}

	return &Dependencies{
		Config:     config,
		GormDB:     gormDB,
		DB:         db,
		Router:     chi.NewRouter(),
		EventBus:   bus,
		Services:   services,
		Dispatcher: dispatcher,
		Logger:     lg,
	}, nil
}

// buildServices wires repositories and services. Allocation changes flow
// through bus into the utilization service.
func buildServices(gormDB *gorm.DB, db *sqlx.DB, bus *events.EventBus, cfg *internal.Config, lg *slog.Logger) *Services {
	util := cfg.Utilization

	departments := department.NewService(departmentPostgres.NewDepartmentRepository(gormDB), lg)
	employees := employee.NewService(employeePostgres.NewEmployeeRepository(gormDB), departments, lg).
		WithDefaultCapacity(util.DefaultWeeklyCapacity)

	allocationRepo := allocationPostgres.NewAllocationRepository(gormDB)
	projects := project.NewService(projectPostgres.NewProjectRepository(gormDB), allocationRepo, lg)

	calculator := capacity.NewCalculator(
		capacity.WithSeverityPolicy(util.SeverityPolicy()),
		capacity.WithInactiveAllocations(util.IncludeInactive),
	)
	utilizationService := utilization.NewService(utilizationPostgres.NewSnapshotReader(db), calculator, lg).
		WithLimits(util.MaxRangeDays, util.DefaultLookaheadWeeks).
		WithPublisher(bus, util.EvaluateOnChange)
	utilizationService.RegisterEventHandlers(bus)

	allocations := allocation.NewService(allocationRepo, employees, projects, lg).
		WithOverAllocationChecker(utilizationService.AllocationChecker()).
		WithPublisher(bus)

	return &Services{
		Department:  departments,
		Employee:    employees,
		Project:     projects,
		Allocation:  allocations,
		Utilization: utilizationService,
	}
}

func buildHandlers(s *Services, lg *slog.Logger) rest.Handlers {
	base := transport.NewBaseHandler(lg)
	return rest.Handlers{
		Department:  department.NewHandler(base, s.Department),
		Employee:    employee.NewHandler(base, s.Employee),
		Project:     project.NewHandler(base, s.Project),
		Allocation:  allocation.NewHandler(base, s.Allocation),
		Utilization: utilization.NewHandler(base, s.Utilization),
	}
}

func newDispatcher(cfg internal.NotificationConfig, lg *slog.Logger) *notification.Dispatcher {
	return notification.NewDispatcher(notification.Config{
		MaxWorkers:     cfg.MaxWorkers,
		JobQueueSize:   cfg.JobQueueSize,
		WorkerPoolSize: cfg.WorkerPoolSize,
		RatePerMinute:  cfg.RatePerMinute,
		Burst:          cfg.Burst,
		MaxAttempts:    cfg.MaxAttempts,
		RetryBackoff:   cfg.RetryBackoff,
	}, notification.NewWebhookSender(cfg.WebhookURL, cfg.Timeout), lg)
}

// initDB opens gorm on pgx and shares its pool with sqlx for the read side.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	const driver = "pgx"

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN:        cfg.GetDSN(),
		DriverName: driver,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	ctx, cancel := internal.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gormDB, sqlx.NewDb(sqlDB, driver), nil
}

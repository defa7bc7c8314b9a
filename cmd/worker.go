package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/core/events"
	"github.com/frahmantamala/resource-management/internal/notification"
	"github.com/frahmantamala/resource-management/internal/utilization"
	utilizationPostgres "github.com/frahmantamala/resource-management/internal/utilization/postgres"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers such as the over-allocation notification worker.`,
}

// Notification worker command
var notificationWorkerCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Start the over-allocation notification worker",
	Long:  `Periodically scan utilization and deliver over-allocation alerts to the configured webhook`,
	Run: func(cmd *cobra.Command, args []string) {
		startNotificationWorker()
	},
}

var (
	maxWorkers     int
	jobQueueSize   int
	workerPoolSize int
	webhookURL     string
	scanInterval   time.Duration
	scanOnce       bool
)

func startNotificationWorker() {
	config, logger, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Use command line flags if provided, otherwise use config values
	notificationConfig := config.Notification
	notificationConfig.WebhookURL = getStringFlag(webhookURL, notificationConfig.WebhookURL)
	notificationConfig.MaxWorkers = getIntFlag(maxWorkers, notificationConfig.MaxWorkers)
	notificationConfig.JobQueueSize = getIntFlag(jobQueueSize, notificationConfig.JobQueueSize)
	notificationConfig.WorkerPoolSize = getIntFlag(workerPoolSize, notificationConfig.WorkerPoolSize)
	interval := getDurationFlag(scanInterval, notificationConfig.ScanInterval)

	if notificationConfig.WebhookURL == "" {
		fmt.Fprintln(os.Stderr, "notification webhook URL is not configured")
		os.Exit(1)
	}

	_, db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("starting notification worker",
		"max_workers", notificationConfig.MaxWorkers,
		"job_queue_size", notificationConfig.JobQueueSize,
		"worker_pool_size", notificationConfig.WorkerPoolSize,
		"scan_interval", interval.String(),
		"webhook_url", notificationConfig.WebhookURL)

	util := config.Utilization
	calculator := capacity.NewCalculator(
		capacity.WithSeverityPolicy(util.SeverityPolicy()),
		capacity.WithInactiveAllocations(util.IncludeInactive),
	)
	utilizationService := utilization.NewService(utilizationPostgres.NewSnapshotReader(db), calculator, logger).
		WithLimits(util.MaxRangeDays, util.DefaultLookaheadWeeks)

	bus := events.NewEventBus(logger)
	dispatcher := newDispatcher(notificationConfig, logger)
	dispatcher.RegisterEventHandlers(bus)

	scanner := notification.NewScanner(utilizationService, bus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if scanOnce {
		if _, err := scanner.Scan(ctx); err != nil {
			logger.Error("utilization scan failed", "error", err)
		}
	} else {
		logger.Info("notification worker is running. Press Ctrl+C to stop.")
		_ = scanner.Run(ctx, interval)
		logger.Info("received signal, shutting down notification worker")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		bus.Wait()
		if err := dispatcher.Drain(shutdownCtx); err != nil {
			logger.Warn("alert delivery did not finish", "error", err)
		}
		dispatcher.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		logger.Info("notification worker shutdown complete")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout reached, forcing exit")
	}
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	notificationWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	notificationWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	notificationWorkerCmd.Flags().IntVar(&workerPoolSize, "worker-pool-size", 0, "Worker pool channel size (overrides config)")
	notificationWorkerCmd.Flags().StringVar(&webhookURL, "webhook-url", "", "Alert webhook URL (overrides config)")
	notificationWorkerCmd.Flags().DurationVar(&scanInterval, "interval", 0, "Utilization scan interval (overrides config)")
	notificationWorkerCmd.Flags().BoolVar(&scanOnce, "once", false, "Run a single scan and exit")

	workerCmd.AddCommand(notificationWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}

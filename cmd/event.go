package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/resource-management/internal/core/events"
	"github.com/frahmantamala/resource-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish sample resource events and check alert delivery`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample event",
	Long: `Publish a sample event to an in-process event bus for testing and debugging.
Known types are allocation.changed and employee.overallocated; any other type is
published as a generic event.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishSampleEvent(args[0])
	},
}

var (
	eventData       string
	eventEmployeeID string
	eventSeverity   string
	eventDeliver    bool
)

func sampleEvent(eventType string, now time.Time) events.Event {
	switch eventType {
	case events.EventTypeAllocationChanged:
		return events.NewAllocationChangedEvent("sample-allocation", eventEmployeeID, "sample-project",
			events.AllocationActionCreated, now, now.AddDate(0, 0, 13))
	case events.EventTypeEmployeeOverAllocated:
		return events.NewEmployeeOverAllocatedEvent(eventEmployeeID, "Sample Employee", 125, 10, eventSeverity,
			[]string{fmt.Sprintf("Week of %s: 50.0h allocated against 40.0h capacity (125.0%%)", now.Format("2006-01-02"))})
	default:
		return events.BaseEvent{
			ID:        fmt.Sprintf("test-%d", now.Unix()),
			Type:      eventType,
			Timestamp: now,
			Data: map[string]interface{}{
				"message": eventData,
				"source":  "cli-command",
			},
		}
	}
}

func publishSampleEvent(eventType string) {
	lg := logger.LoggerWrapper()
	eventBus := events.NewEventBus(lg)

	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	if eventDeliver {
		cfg, configured, err := setup()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		if cfg.Notification.WebhookURL == "" {
			fmt.Fprintln(os.Stderr, "notification webhook URL is not configured")
			os.Exit(1)
		}
		lg = configured
		dispatcher := newDispatcher(cfg.Notification, lg)
		dispatcher.RegisterEventHandlers(eventBus)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Notification.Timeout*time.Duration(cfg.Notification.MaxAttempts+1))
			defer cancel()
			if err := dispatcher.Drain(ctx); err != nil {
				lg.Warn("alert delivery did not finish", "error", err)
			}
			dispatcher.Shutdown()
		}()
	}

	event := sampleEvent(eventType, time.Now().UTC())
	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	ctx := context.Background()
	if err := eventBus.Publish(ctx, event); err != nil {
		lg.Error("failed to publish event", "error", err)
		return
	}

	eventBus.Wait()
	lg.Info("test event published successfully")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	publishEventCmd.Flags().StringVar(&eventEmployeeID, "employee-id", "sample-employee", "Employee id for resource events")
	publishEventCmd.Flags().StringVar(&eventSeverity, "severity", "critical", "Severity for employee.overallocated events")
	publishEventCmd.Flags().BoolVar(&eventDeliver, "deliver", false, "Deliver over-allocation alerts to the configured webhook")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}

package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/core/events"
)

// SummaryLister is satisfied by the utilization service.
type SummaryLister interface {
	DefaultWindow() capacity.DateRange
	Summaries(ctx context.Context, window *capacity.DateRange, departmentID string) ([]capacity.OverAllocationSummary, error)
}

// Scanner periodically evaluates every employee over the default window and
// publishes an alert when an employee becomes over-allocated or their
// severity changes. It backs the standalone notification worker, which has
// no in-process allocation events to react to.
type Scanner struct {
	lister    SummaryLister
	publisher events.Publisher
	logger    *slog.Logger

	mu   sync.Mutex
	last map[string]capacity.Severity
}

func NewScanner(lister SummaryLister, publisher events.Publisher, logger *slog.Logger) *Scanner {
	return &Scanner{
		lister:    lister,
		publisher: publisher,
		logger:    logger,
		last:      make(map[string]capacity.Severity),
	}
}

// Scan runs one evaluation and returns the number of alerts published.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	window := s.lister.DefaultWindow()
	summaries, err := s.lister.Summaries(ctx, &window, "")
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	published := 0
	current := make(map[string]capacity.Severity, len(summaries))
	for _, summary := range summaries {
		if !summary.HasOverAllocation {
			continue
		}
		current[summary.EmployeeID] = summary.Severity
		if s.last[summary.EmployeeID] == summary.Severity {
			continue
		}

		event := events.NewEmployeeOverAllocatedEvent(
			summary.EmployeeID,
			summary.EmployeeName,
			summary.MaxUtilizationRate,
			summary.TotalOverAllocationHours,
			string(summary.Severity),
			summary.Warnings,
		)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish over-allocation alert", "error", err, "employee_id", summary.EmployeeID)
			delete(current, summary.EmployeeID)
			continue
		}
		published++
	}
	s.last = current

	s.logger.Info("utilization scan complete",
		"window", window.String(),
		"employees", len(summaries),
		"over_allocated", len(current),
		"alerts", published)
	return published, nil
}

// Run scans immediately and then on every tick until ctx is done.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Scan(ctx); err != nil {
			s.logger.Error("utilization scan failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

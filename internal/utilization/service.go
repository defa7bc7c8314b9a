package utilization

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/resource-management/internal"
	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/core/events"
	"github.com/frahmantamala/resource-management/internal/metrics"
)

const (
	OperationBatch     = "batch"
	OperationEmployee  = "employee"
	OperationWeek      = "week"
	OperationConflicts = "conflicts"
)

type Service struct {
	reader           SnapshotReader
	calculator       *capacity.Calculator
	publisher        events.Publisher
	maxRangeDays     int
	lookaheadWeeks   int
	evaluateOnChange bool
	now              func() time.Time
	logger           *slog.Logger
}

func NewService(reader SnapshotReader, calculator *capacity.Calculator, logger *slog.Logger) *Service {
	return &Service{
		reader:           reader,
		calculator:       calculator,
		maxRangeDays:     731,
		lookaheadWeeks:   12,
		evaluateOnChange: true,
		now:              time.Now,
		logger:           logger,
	}
}

// WithLimits sets the longest accepted window and the number of weeks
// evaluated when a request names none.
func (s *Service) WithLimits(maxRangeDays, lookaheadWeeks int) *Service {
	if maxRangeDays > 0 {
		s.maxRangeDays = maxRangeDays
	}
	if lookaheadWeeks > 0 {
		s.lookaheadWeeks = lookaheadWeeks
	}
	return s
}

// WithPublisher makes re-evaluations publish employee.overallocated events.
func (s *Service) WithPublisher(publisher events.Publisher, evaluateOnChange bool) *Service {
	s.publisher = publisher
	s.evaluateOnChange = evaluateOnChange
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// DefaultWindow covers the current week and the configured lookahead.
func (s *Service) DefaultWindow() capacity.DateRange {
	start := capacity.WeekStart(s.now())
	return capacity.DateRange{
		Start: start,
		End:   start.AddDate(0, 0, 7*s.lookaheadWeeks-1),
	}
}

func (s *Service) checkWindow(window *capacity.DateRange) error {
	if window == nil {
		return nil
	}
	if !window.Valid() {
		return internal.ErrInvalidDateRange
	}
	if window.Days() > s.maxRangeDays {
		return internal.ErrRangeTooLong
	}
	return nil
}

// Summaries evaluates every active employee, optionally within one
// department, in employee-name order.
func (s *Service) Summaries(ctx context.Context, window *capacity.DateRange, departmentID string) ([]capacity.OverAllocationSummary, error) {
	defer metrics.ObserveCalculation(OperationBatch, time.Now())

	if window == nil {
		w := s.DefaultWindow()
		window = &w
	}
	if err := s.checkWindow(window); err != nil {
		return nil, err
	}

	snapshot, err := s.load(ctx, SnapshotQuery{
		DepartmentID: departmentID,
		Window:       window,
	})
	if err != nil {
		return nil, err
	}

	summaries := s.calculator.MultipleEmployeeOverAllocation(snapshot.Employees, snapshot.Allocations, window)

	over := 0
	for _, summary := range summaries {
		if summary.HasOverAllocation {
			over++
		}
	}
	if departmentID == "" {
		metrics.OverAllocatedEmployees.Set(float64(over))
	}

	s.logger.Info("utilization calculated",
		"window", window.String(),
		"department_id", departmentID,
		"employees", len(summaries),
		"over_allocated", over)
	return summaries, nil
}

// EmployeeSummary evaluates one employee, active or not. A nil window spans
// the employee's allocations.
func (s *Service) EmployeeSummary(ctx context.Context, employeeID string, window *capacity.DateRange) (*capacity.OverAllocationSummary, error) {
	if err := s.checkWindow(window); err != nil {
		return nil, err
	}
	return s.employeeSummary(ctx, employeeID, window)
}

func (s *Service) employeeSummary(ctx context.Context, employeeID string, window *capacity.DateRange) (*capacity.OverAllocationSummary, error) {
	defer metrics.ObserveCalculation(OperationEmployee, time.Now())

	if window != nil && !window.Valid() {
		return nil, internal.ErrInvalidDateRange
	}

	employee, snapshot, err := s.loadEmployee(ctx, employeeID, window)
	if err != nil {
		return nil, err
	}

	summary := s.calculator.EmployeeOverAllocation(*employee, snapshot.Allocations, window)
	return &summary, nil
}

// EmployeeWeek aggregates one employee's allocations for the week containing weekStart.
func (s *Service) EmployeeWeek(ctx context.Context, employeeID string, weekStart time.Time) (*capacity.WeeklyAllocation, error) {
	defer metrics.ObserveCalculation(OperationWeek, time.Now())

	week := capacity.WeekRange(weekStart)
	employee, snapshot, err := s.loadEmployee(ctx, employeeID, &week)
	if err != nil {
		return nil, err
	}

	weekly := s.calculator.WeeklyOverAllocation(employee.EmployeeID, week.Start, employee.WeeklyCapacity, snapshot.Allocations)
	return &weekly, nil
}

// Conflicts detects overlapping allocations that together exceed capacity.
// A nil window considers every allocation.
func (s *Service) Conflicts(ctx context.Context, window *capacity.DateRange, departmentID string) ([]capacity.AllocationConflict, error) {
	defer metrics.ObserveCalculation(OperationConflicts, time.Now())

	if err := s.checkWindow(window); err != nil {
		return nil, err
	}

	snapshot, err := s.load(ctx, SnapshotQuery{
		DepartmentID: departmentID,
		Window:       window,
	})
	if err != nil {
		return nil, err
	}

	conflicts := s.calculator.DetectConflicts(snapshot.Employees, snapshot.Allocations)

	if departmentID == "" && window == nil {
		bySeverity := map[capacity.Severity]int{
			capacity.SeverityMedium:   0,
			capacity.SeverityHigh:     0,
			capacity.SeverityCritical: 0,
		}
		for _, c := range conflicts {
			bySeverity[c.Severity]++
		}
		for severity, n := range bySeverity {
			metrics.ConflictsDetected.WithLabelValues(string(severity)).Set(float64(n))
		}
	}

	s.logger.Info("conflicts detected", "department_id", departmentID, "conflicts", len(conflicts))
	return conflicts, nil
}

func (s *Service) load(ctx context.Context, query SnapshotQuery) (*Snapshot, error) {
	query.ActiveAllocationsOnly = !s.calculator.IncludesInactive()
	// the calculator counts every allocation touching a week the window touches
	if query.Window != nil {
		weeks := capacity.WholeWeeks(*query.Window)
		query.Window = &weeks
	}

	snapshot, err := s.reader.Load(ctx, query)
	if err != nil {
		metrics.SnapshotErrors.Inc()
		s.logger.Error("failed to load allocation snapshot", "error", err, "department_id", query.DepartmentID)
		return nil, internal.NewInternalError("Failed to load allocations", err)
	}
	return snapshot, nil
}

func (s *Service) loadEmployee(ctx context.Context, employeeID string, window *capacity.DateRange) (*capacity.EmployeeCapacity, *Snapshot, error) {
	snapshot, err := s.load(ctx, SnapshotQuery{
		EmployeeIDs:              []string{employeeID},
		Window:                   window,
		IncludeInactiveEmployees: true,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(snapshot.Employees) == 0 {
		return nil, nil, internal.ErrEmployeeNotFound
	}
	employee := snapshot.Employees[0]
	return &employee, snapshot, nil
}

// AllocationChecker summarizes employees after allocation writes. Unlike
// EmployeeSummary it accepts windows longer than the request limit, since
// an allocation may legitimately span several years.
type AllocationChecker struct {
	service *Service
}

func (s *Service) AllocationChecker() *AllocationChecker {
	return &AllocationChecker{service: s}
}

func (c *AllocationChecker) EmployeeSummary(ctx context.Context, employeeID string, window *capacity.DateRange) (*capacity.OverAllocationSummary, error) {
	return c.service.employeeSummary(ctx, employeeID, window)
}

package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/utilization"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type SnapshotReader struct {
	db *sqlx.DB
}

func NewSnapshotReader(db *sqlx.DB) *SnapshotReader {
	return &SnapshotReader{db: db}
}

type employeeRow struct {
	ID             string  `db:"id"`
	Name           string  `db:"name"`
	WeeklyCapacity float64 `db:"weekly_capacity"`
}

type allocationRow struct {
	ID             string    `db:"id"`
	EmployeeID     string    `db:"employee_id"`
	ProjectID      string    `db:"project_id"`
	StartDate      time.Time `db:"start_date"`
	EndDate        time.Time `db:"end_date"`
	AllocatedHours float64   `db:"allocated_hours"`
	IsActive       bool      `db:"is_active"`
}

// Load runs the employee and allocation queries concurrently. Both apply the
// same employee filter, so allocations always belong to listed employees.
func (r *SnapshotReader) Load(ctx context.Context, query utilization.SnapshotQuery) (*utilization.Snapshot, error) {
	var (
		employees   []employeeRow
		allocations []allocationRow
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, args, err := r.employeeQuery(query)
		if err != nil {
			return err
		}
		if err := r.db.SelectContext(gctx, &employees, q, args...); err != nil {
			return fmt.Errorf("load employees: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		q, args, err := r.allocationQuery(query)
		if err != nil {
			return err
		}
		if err := r.db.SelectContext(gctx, &allocations, q, args...); err != nil {
			return fmt.Errorf("load allocations: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := &utilization.Snapshot{
		Employees:   make([]capacity.EmployeeCapacity, 0, len(employees)),
		Allocations: make([]capacity.Allocation, 0, len(allocations)),
	}
	for _, e := range employees {
		snapshot.Employees = append(snapshot.Employees, capacity.EmployeeCapacity{
			EmployeeID:     e.ID,
			EmployeeName:   e.Name,
			WeeklyCapacity: e.WeeklyCapacity,
		})
	}
	for _, a := range allocations {
		snapshot.Allocations = append(snapshot.Allocations, capacity.Allocation{
			ID:             a.ID,
			EmployeeID:     a.EmployeeID,
			ProjectID:      a.ProjectID,
			StartDate:      capacity.Date(a.StartDate),
			EndDate:        capacity.Date(a.EndDate),
			AllocatedHours: a.AllocatedHours,
			IsActive:       a.IsActive,
		})
	}
	return snapshot, nil
}

func (r *SnapshotReader) employeeQuery(query utilization.SnapshotQuery) (string, []interface{}, error) {
	where, args := employeeConditions("e", query)

	q := "SELECT e.id, e.name, e.weekly_capacity FROM employees e"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY e.name, e.id"

	return r.bind(q, args)
}

func (r *SnapshotReader) allocationQuery(query utilization.SnapshotQuery) (string, []interface{}, error) {
	where, args := employeeConditions("e", query)

	if query.ActiveAllocationsOnly {
		where = append(where, "a.is_active = ?")
		args = append(args, true)
	}
	if query.Window != nil {
		where = append(where, "a.end_date >= ?", "a.start_date <= ?")
		args = append(args, capacity.Date(query.Window.Start), capacity.Date(query.Window.End))
	}

	q := `SELECT a.id, a.employee_id, a.project_id, a.start_date, a.end_date, a.allocated_hours, a.is_active
		FROM allocations a
		JOIN employees e ON e.id = a.employee_id`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY a.employee_id, a.start_date, a.id"

	return r.bind(q, args)
}

func employeeConditions(alias string, query utilization.SnapshotQuery) ([]string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if !query.IncludeInactiveEmployees {
		where = append(where, alias+".is_active = ?")
		args = append(args, true)
	}
	if query.DepartmentID != "" {
		where = append(where, alias+".department_id = ?")
		args = append(args, query.DepartmentID)
	}
	if len(query.EmployeeIDs) > 0 {
		where = append(where, alias+".id IN (?)")
		args = append(args, query.EmployeeIDs)
	}
	return where, args
}

// bind expands IN clauses and rewrites placeholders for the driver.
func (r *SnapshotReader) bind(q string, args []interface{}) (string, []interface{}, error) {
	expanded, expandedArgs, err := sqlx.In(q, args...)
	if err != nil {
		return "", nil, fmt.Errorf("build snapshot query: %w", err)
	}
	return r.db.Rebind(expanded), expandedArgs, nil
}

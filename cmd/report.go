package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/frahmantamala/resource-management/internal/capacity"
	"github.com/frahmantamala/resource-management/internal/utilization"
	utilizationPostgres "github.com/frahmantamala/resource-management/internal/utilization/postgres"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print utilization reports",
	Long:  `Print over-allocation and conflict reports straight from the database`,
}

var (
	reportStart      string
	reportEnd        string
	reportDepartment string
	reportOverOnly   bool
	reportJSON       bool
)

var utilizationReportCmd = &cobra.Command{
	Use:   "utilization",
	Short: "Per-employee utilization over a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUtilization(cmd.Context(), func(ctx context.Context, s *utilization.Service) error {
			window, err := reportWindow(s)
			if err != nil {
				return err
			}
			summaries, err := s.Summaries(ctx, &window, reportDepartment)
			if err != nil {
				return err
			}
			resp := utilization.NewUtilizationResponse(window, reportDepartment, summaries)
			if reportJSON {
				return printJSON(os.Stdout, resp)
			}
			renderUtilization(os.Stdout, resp, reportOverOnly)
			return nil
		})
	},
}

var conflictsReportCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Overlapping allocations that exceed capacity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUtilization(cmd.Context(), func(ctx context.Context, s *utilization.Service) error {
			window, err := utilization.ParseWindow(reportStart, reportEnd)
			if err != nil {
				return err
			}
			conflicts, err := s.Conflicts(ctx, window, reportDepartment)
			if err != nil {
				return err
			}
			if reportJSON {
				return printJSON(os.Stdout, utilization.ConflictsResponse{
					Window:       window,
					DepartmentID: reportDepartment,
					Conflicts:    conflicts,
					Count:        len(conflicts),
				})
			}
			renderConflicts(os.Stdout, conflicts)
			return nil
		})
	},
}

func withUtilization(ctx context.Context, fn func(context.Context, *utilization.Service) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, lg, err := setup()
	if err != nil {
		return err
	}
	_, db, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	util := cfg.Utilization
	calculator := capacity.NewCalculator(
		capacity.WithSeverityPolicy(util.SeverityPolicy()),
		capacity.WithInactiveAllocations(util.IncludeInactive),
	)
	s := utilization.NewService(utilizationPostgres.NewSnapshotReader(db), calculator, lg).
		WithLimits(util.MaxRangeDays, util.DefaultLookaheadWeeks)
	return fn(ctx, s)
}

func reportWindow(s *utilization.Service) (capacity.DateRange, error) {
	window, err := utilization.ParseWindow(reportStart, reportEnd)
	if err != nil {
		return capacity.DateRange{}, err
	}
	if window == nil {
		return s.DefaultWindow(), nil
	}
	return *window, nil
}

func renderUtilization(w io.Writer, resp utilization.UtilizationResponse, overOnly bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Utilization " + resp.Window.String())
	tw.AppendHeader(table.Row{"Employee", "Peak %", "Over Hours", "Weeks Over", "Peak Week", "Severity"})
	for _, s := range resp.Summaries {
		if overOnly && !s.HasOverAllocation {
			continue
		}
		peak := "-"
		if s.PeakWeekStart != nil {
			peak = s.PeakWeekStart.Format(capacity.DateLayout)
		}
		tw.AppendRow(table.Row{
			s.EmployeeName,
			fmt.Sprintf("%.1f", s.MaxUtilizationRate),
			fmt.Sprintf("%.1f", s.TotalOverAllocationHours),
			s.OverAllocatedWeeks,
			peak,
			strings.ToUpper(string(s.Severity)),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "Over-allocated", resp.OverAllocatedCount})
	tw.Render()
}

func renderConflicts(w io.Writer, conflicts []capacity.AllocationConflict) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Employee", "Allocations", "Overlap", "Hours", "Capacity", "Rate %", "Severity"})
	for _, c := range conflicts {
		tw.AppendRow(table.Row{
			c.EmployeeID,
			strings.Join(c.AllocationIDs, ", "),
			c.Overlap.String(),
			fmt.Sprintf("%.1f", c.CombinedHours),
			fmt.Sprintf("%.1f", c.WeeklyCapacity),
			fmt.Sprintf("%.1f", c.UtilizationRate),
			strings.ToUpper(string(c.Severity)),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "Conflicts", len(conflicts)})
	tw.Render()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{utilizationReportCmd, conflictsReportCmd} {
		c.Flags().StringVar(&reportStart, "start", "", "window start date (YYYY-MM-DD)")
		c.Flags().StringVar(&reportEnd, "end", "", "window end date (YYYY-MM-DD)")
		c.Flags().StringVar(&reportDepartment, "department", "", "department id filter")
		c.Flags().BoolVar(&reportJSON, "json", false, "print JSON instead of a table")
	}
	utilizationReportCmd.Flags().BoolVar(&reportOverOnly, "over-only", false, "only list over-allocated employees")

	reportCmd.AddCommand(utilizationReportCmd)
	reportCmd.AddCommand(conflictsReportCmd)

	rootCmd.AddCommand(reportCmd)
}

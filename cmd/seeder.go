package cmd

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"os"

	"github.com/frahmantamala/resource-management/internal/allocation"
	"github.com/frahmantamala/resource-management/internal/core/events"
	"github.com/frahmantamala/resource-management/internal/department"
	"github.com/frahmantamala/resource-management/internal/employee"
	"github.com/frahmantamala/resource-management/internal/project"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures/seed.yml
var defaultSeed []byte

var (
	seedFile  string
	seedClear bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample departments, employees, projects and allocations for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, lg, err := setup()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		fixture, err := readSeedFixture(seedFile)
		if err != nil {
			log.Fatalf("failed to read seed fixture: %v", err)
		}

		gormDB, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		ctx := context.Background()
		if seedClear {
			if err := clearSeedTables(gormDB); err != nil {
				log.Fatalf("failed to clear tables: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		var count int64
		if err := gormDB.Table("departments").Count(&count).Error; err != nil {
			log.Fatalf("failed to inspect departments: %v", err)
		}
		if count > 0 {
			fmt.Println("database already has data; rerun with --clear to reseed")
			return
		}

		bus := events.NewEventBus(lg)
		services := buildServices(gormDB, db, bus, cfg, lg)
		result, err := seedData(ctx, services, fixture)
		bus.Wait()
		if err != nil {
			log.Fatalf("failed to seed: %v", err)
		}

		fmt.Printf("Seeded %d departments, %d employees, %d projects, %d allocations\n",
			result.Departments, result.Employees, result.Projects, result.Allocations)
		for _, warning := range result.Warnings {
			fmt.Println("warning:", warning)
		}
	},
}

type seedFixture struct {
	Departments []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"departments"`
	Employees []struct {
		Name           string   `yaml:"name"`
		Email          string   `yaml:"email"`
		Position       string   `yaml:"position"`
		Department     string   `yaml:"department"`
		WeeklyCapacity *float64 `yaml:"weekly_capacity"`
	} `yaml:"employees"`
	Projects []struct {
		Name        string  `yaml:"name"`
		Description string  `yaml:"description"`
		ClientName  string  `yaml:"client_name"`
		Status      string  `yaml:"status"`
		StartDate   *string `yaml:"start_date"`
		EndDate     *string `yaml:"end_date"`
	} `yaml:"projects"`
	Allocations []struct {
		Employee       string  `yaml:"employee"`
		Project        string  `yaml:"project"`
		StartDate      string  `yaml:"start_date"`
		EndDate        string  `yaml:"end_date"`
		AllocatedHours float64 `yaml:"allocated_hours"`
		Role           string  `yaml:"role"`
		Notes          string  `yaml:"notes"`
	} `yaml:"allocations"`
}

type seedResult struct {
	Departments int
	Employees   int
	Projects    int
	Allocations int
	// Warnings lists the over-allocation warnings raised while seeding.
	Warnings []string
}

func readSeedFixture(path string) (*seedFixture, error) {
	data := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return parseSeedFixture(data)
}

func parseSeedFixture(data []byte) (*seedFixture, error) {
	var fixture seedFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("invalid seed fixture: %w", err)
	}
	return &fixture, nil
}

// seedData creates the fixture through the services so every record goes
// through the same validation as the API. References between records are
// by department name, employee email and project name.
func seedData(ctx context.Context, s *Services, fixture *seedFixture) (*seedResult, error) {
	result := &seedResult{}

	departments := make(map[string]string)
	for _, d := range fixture.Departments {
		created, err := s.Department.Create(ctx, department.CreateDepartmentDTO{Name: d.Name, Description: d.Description})
		if err != nil {
			return nil, fmt.Errorf("department %q: %w", d.Name, err)
		}
		departments[d.Name] = created.ID
		result.Departments++
	}

	employees := make(map[string]string)
	for _, e := range fixture.Employees {
		dto := employee.CreateEmployeeDTO{
			Name:           e.Name,
			Email:          e.Email,
			Position:       e.Position,
			WeeklyCapacity: e.WeeklyCapacity,
		}
		if e.Department != "" {
			id, ok := departments[e.Department]
			if !ok {
				return nil, fmt.Errorf("employee %q: unknown department %q", e.Email, e.Department)
			}
			dto.DepartmentID = &id
		}
		created, err := s.Employee.Create(ctx, dto)
		if err != nil {
			return nil, fmt.Errorf("employee %q: %w", e.Email, err)
		}
		employees[e.Email] = created.ID
		result.Employees++
	}

	projects := make(map[string]string)
	for _, p := range fixture.Projects {
		created, err := s.Project.Create(ctx, project.CreateProjectDTO{
			Name:        p.Name,
			Description: p.Description,
			ClientName:  p.ClientName,
			Status:      p.Status,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
		})
		if err != nil {
			return nil, fmt.Errorf("project %q: %w", p.Name, err)
		}
		projects[p.Name] = created.ID
		result.Projects++
	}

	for i, a := range fixture.Allocations {
		employeeID, ok := employees[a.Employee]
		if !ok {
			return nil, fmt.Errorf("allocation %d: unknown employee %q", i, a.Employee)
		}
		projectID, ok := projects[a.Project]
		if !ok {
			return nil, fmt.Errorf("allocation %d: unknown project %q", i, a.Project)
		}
		resp, err := s.Allocation.Create(ctx, allocation.CreateAllocationDTO{
			EmployeeID:     employeeID,
			ProjectID:      projectID,
			StartDate:      a.StartDate,
			EndDate:        a.EndDate,
			AllocatedHours: a.AllocatedHours,
			Role:           a.Role,
			Notes:          a.Notes,
		})
		if err != nil {
			return nil, fmt.Errorf("allocation %d: %w", i, err)
		}
		if resp.OverAllocation != nil {
			result.Warnings = append(result.Warnings, resp.OverAllocation.Warnings...)
		}
		result.Allocations++
	}

	return result, nil
}

func clearSeedTables(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"allocations", "projects", "employees", "departments"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed fixture file (defaults to the embedded dataset)")
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "delete existing data before seeding")
}

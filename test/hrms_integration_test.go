//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ogurasousui/hrms-lite/internal/app"
	"github.com/ogurasousui/hrms-lite/internal/core/attendance"
	"github.com/ogurasousui/hrms-lite/internal/core/employee"
	"github.com/ogurasousui/hrms-lite/internal/platform/config"
	"github.com/ogurasousui/hrms-lite/internal/platform/db/mongodb"
	"github.com/rs/zerolog"
)

const migrationsDir = "../assets/migrations"

func TestEmployeeAttendanceIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := resetStore(ctx, &cfg.Database); err != nil {
		t.Fatalf("failed to reset store: %v", err)
	}

	backend, err := app.OpenBackend(ctx, cfg.Database, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open backend: %v", err)
	}
	t.Cleanup(func() { _ = backend.Close(context.Background()) })

	employees := backend.EmployeeService()
	records := backend.AttendanceService()

	created, err := employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
		EmployeeID: "E1",
		FullName:   "A B",
		Email:      "A@B.com",
		Department: "Eng",
	})
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() || created.Email != "a@b.com" {
		t.Fatalf("unexpected employee %+v", created)
	}

	if _, err := employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
		EmployeeID: "E2", FullName: "C D", Email: "a@b.com", Department: "Ops",
	}); !errors.Is(err, employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := records.MarkAttendance(ctx, attendance.MarkAttendanceInput{EmployeeID: created.ID, Status: attendance.StatusPresent, Date: day})
	if err != nil {
		t.Fatalf("MarkAttendance error: %v", err)
	}
	second, err := records.MarkAttendance(ctx, attendance.MarkAttendanceInput{EmployeeID: created.ID, Status: attendance.StatusAbsent, Date: day.Add(15 * time.Hour)})
	if err != nil {
		t.Fatalf("MarkAttendance (resubmit) error: %v", err)
	}
	if second.ID != first.ID || second.Status != attendance.StatusAbsent {
		t.Fatalf("expected same record with Absent, got %+v (first %+v)", second, first)
	}

	if _, err := records.MarkAttendance(ctx, attendance.MarkAttendanceInput{EmployeeID: created.ID, Status: attendance.StatusPresent, Date: day.AddDate(0, 0, 1)}); err != nil {
		t.Fatalf("MarkAttendance (next day) error: %v", err)
	}

	listed, err := records.ListAttendance(ctx, attendance.ListAttendanceInput{EmployeeID: created.ID})
	if err != nil {
		t.Fatalf("ListAttendance error: %v", err)
	}
	if len(listed) != 2 || !listed[0].Date.After(listed[1].Date) {
		t.Fatalf("expected 2 records newest first, got %+v", listed)
	}

	result, err := employees.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: created.ID})
	if err != nil {
		t.Fatalf("DeleteEmployee error: %v", err)
	}
	if result.RemovedAttendance != 2 {
		t.Fatalf("expected 2 removed attendance records, got %d", result.RemovedAttendance)
	}

	if _, err := records.MarkAttendance(ctx, attendance.MarkAttendanceInput{EmployeeID: created.ID, Status: attendance.StatusPresent, Date: day}); !errors.Is(err, attendance.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound after delete, got %v", err)
	}

	sweep, err := records.ReconcileOrphans(ctx)
	if err != nil {
		t.Fatalf("ReconcileOrphans error: %v", err)
	}
	if sweep.RemovedRecords != 0 {
		t.Fatalf("expected no orphans after cascade, got %+v", sweep)
	}
}

func resetStore(ctx context.Context, cfg *config.DatabaseConfig) error {
	switch cfg.Driver {
	case config.DriverMongo:
		cfg.Mongo.Name += "_integration"
		client, err := mongodb.NewClient(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		return client.Database(cfg.Mongo.Name).Drop(ctx)
	case config.DriverPostgres:
		return resetMigrations(cfg.Postgres.DSN(), migrationsDir)
	default:
		return errors.New("unsupported driver " + cfg.Driver)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}

package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrms-lite/internal/core/employee"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var employeeRowColumns = []string{"id", "employee_id", "full_name", "email", "department", "created_at"}

const employeeUUID = "7f9c2ad4-3b8e-4f6a-9d1c-2e5b8a0c4d11"

type stubEmployeeRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubEmployeeRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanEmployee(row)
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	idErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: employeesEmployeeIDConstraint}
	if !errors.Is(translateEmployeePgError(idErr), employee.ErrEmployeeIDAlreadyExists) {
		t.Fatalf("expected employee id constraint to map to ErrEmployeeIDAlreadyExists")
	}

	emailErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: employeesEmailConstraint}
	if !errors.Is(translateEmployeePgError(emailErr), employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected email constraint to map to ErrEmailAlreadyExists")
	}

	unknown := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_pkey"}
	if translateEmployeePgError(unknown) != error(unknown) {
		t.Fatalf("unexpected translation for unknown constraint")
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestEmployeeRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	createdAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO employees (id, employee_id, full_name, email, department, created_at)`)).
		WithArgs(pgxmock.AnyArg(), "E001", "Taro Yamada", "taro@example.com", "Engineering", createdAt).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(employeeUUID, "E001", "Taro Yamada", "taro@example.com", "Engineering", createdAt))

	created, err := repo.Create(context.Background(), &employee.Employee{
		EmployeeID: "E001",
		FullName:   "Taro Yamada",
		Email:      "taro@example.com",
		Department: "Engineering",
		CreatedAt:  createdAt,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != employeeUUID || !created.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected employee %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO employees`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: employeesEmailConstraint})

	_, err = repo.Create(context.Background(), &employee.Employee{EmployeeID: "E002", Email: "taro@example.com"})
	if !errors.Is(err, employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_FindByID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).
		WithArgs(employeeUUID).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(employeeUUID, "E001", "Taro Yamada", "taro@example.com", "Engineering", now))

	found, err := repo.FindByID(context.Background(), employeeUUID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if found.EmployeeID != "E001" {
		t.Fatalf("unexpected employee %+v", found)
	}

	if _, err := repo.FindByID(context.Background(), "665f1c2ab3e4d5f6a7b8c9d0"); !errors.Is(err, employee.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID for non-UUID id, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_FindByEmployeeID_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE employee_id = $1`)).
		WithArgs("E404").
		WillReturnRows(pgxmock.NewRows(employeeRowColumns))

	if _, err := repo.FindByEmployeeID(context.Background(), "E404"); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_FindByEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1`)).
		WithArgs("taro@example.com").
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(employeeUUID, "E001", "Taro Yamada", "taro@example.com", "Engineering", now))

	found, err := repo.FindByEmail(context.Background(), "taro@example.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if found.ID != employeeUUID {
		t.Fatalf("unexpected employee %+v", found)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Delete(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM employees WHERE id = $1`)).
		WithArgs(employeeUUID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM employees WHERE id = $1`)).
		WithArgs(employeeUUID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), employeeUUID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := repo.Delete(context.Background(), employeeUUID); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), "bad-id"); !errors.Is(err, employee.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_List(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at ASC, id ASC`)).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow(employeeUUID, "E001", "Taro Yamada", "taro@example.com", "Engineering", now).
			AddRow("0b6f4d7e-1c2a-4e3b-8f9d-5a6b7c8d9e0f", "E002", "Hanako Sato", "hanako@example.com", "Sales", now.Add(time.Second)))

	employees, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(employees) != 2 || employees[1].EmployeeID != "E002" {
		t.Fatalf("unexpected employees %+v", employees)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package postgres

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrms-lite/internal/core/attendance"
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

var attendanceRowColumns = []string{"id", "employee_ref", "status", "attendance_date"}

const recordUUID = "3c1e9b2a-6d4f-4a8e-b7c5-0f2d1e3a4b5c"

func TestAttendanceRepository_FindByEmployeeAndDay(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE employee_ref = $1 AND attendance_date = $2`)).
		WithArgs(employeeUUID, day).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns).
			AddRow(recordUUID, employeeUUID, "Present", day))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE employee_ref = $1 AND attendance_date = $2`)).
		WithArgs(employeeUUID, day).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns))

	found, err := repo.FindByEmployeeAndDay(context.Background(), employeeUUID, day.Add(17*time.Hour))
	if err != nil {
		t.Fatalf("FindByEmployeeAndDay returned error: %v", err)
	}
	if found.ID != recordUUID || found.Status != attendance.StatusPresent {
		t.Fatalf("unexpected record %+v", found)
	}

	if _, err := repo.FindByEmployeeAndDay(context.Background(), employeeUUID, day); !errors.Is(err, attendance.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (employee_ref, attendance_date) DO NOTHING`)).
		WithArgs(pgxmock.AnyArg(), employeeUUID, "Absent", day).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns).
			AddRow(recordUUID, employeeUUID, "Absent", day))

	created, err := repo.Create(context.Background(), &attendance.Record{
		EmployeeID: employeeUUID,
		Status:     attendance.StatusAbsent,
		Date:       day.Add(9 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != recordUUID || !created.Date.Equal(day) {
		t.Fatalf("unexpected record %+v", created)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRepository_Create_Conflict(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO attendance`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns))

	_, err = repo.Create(context.Background(), &attendance.Record{EmployeeID: employeeUUID, Status: attendance.StatusPresent, Date: time.Now()})
	if !errors.Is(err, attendance.ErrRecordAlreadyExists) {
		t.Fatalf("expected ErrRecordAlreadyExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRepository_Replace(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE attendance`)).
		WithArgs(employeeUUID, "Present", day, recordUUID).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns).
			AddRow(recordUUID, employeeUUID, "Present", day))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE attendance`)).
		WithArgs(employeeUUID, "Present", day, recordUUID).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns))

	in := &attendance.Record{ID: recordUUID, EmployeeID: employeeUUID, Status: attendance.StatusPresent, Date: day}
	updated, err := repo.Replace(context.Background(), in)
	if err != nil {
		t.Fatalf("Replace returned error: %v", err)
	}
	if updated.ID != recordUUID {
		t.Fatalf("expected id to be preserved, got %s", updated.ID)
	}

	if _, err := repo.Replace(context.Background(), in); !errors.Is(err, attendance.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := repo.Replace(context.Background(), &attendance.Record{ID: "nope"}); !errors.Is(err, errInvalidRecordID) {
		t.Fatalf("expected errInvalidRecordID, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRepository_List(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)
	d1 := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM attendance WHERE employee_ref = $1 ORDER BY attendance_date DESC, id DESC`)).
		WithArgs(employeeUUID).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns).
			AddRow(recordUUID, employeeUUID, "Present", d1).
			AddRow("9a8b7c6d-5e4f-4a3b-2c1d-0e9f8a7b6c5d", employeeUUID, "Absent", d2))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM attendance ORDER BY attendance_date DESC, id DESC`)).
		WillReturnRows(pgxmock.NewRows(attendanceRowColumns))

	records, err := repo.List(context.Background(), attendance.ListFilter{EmployeeID: employeeUUID})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 2 || !records[0].Date.Equal(d1) || records[1].Status != attendance.StatusAbsent {
		t.Fatalf("unexpected records %+v", records)
	}

	all, err := repo.List(context.Background(), attendance.ListFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", all)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRepository_DeleteByEmployee(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM attendance WHERE employee_ref = ANY($1)`)).
		WithArgs([]string{employeeUUID, "E001"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	removed, err := repo.DeleteByEmployee(context.Background(), employeeUUID, "", "E001")
	if err != nil {
		t.Fatalf("DeleteByEmployee returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	removed, err = repo.DeleteByEmployee(context.Background())
	if err != nil || removed != 0 {
		t.Fatalf("expected no-op, got removed=%d err=%v", removed, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttendanceRepository_ListEmployeeRefs(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAttendanceRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT employee_ref FROM attendance`)).
		WillReturnRows(pgxmock.NewRows([]string{"employee_ref"}).AddRow("E001").AddRow(employeeUUID))

	refs, err := repo.ListEmployeeRefs(context.Background())
	if err != nil {
		t.Fatalf("ListEmployeeRefs returned error: %v", err)
	}
	if !reflect.DeepEqual(refs, []string{"E001", employeeUUID}) {
		t.Fatalf("unexpected refs %v", refs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTranslateAttendancePgError(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: attendanceEmployeeDayConstraint}
	if !errors.Is(translateAttendancePgError(dup), attendance.ErrRecordAlreadyExists) {
		t.Fatalf("expected unique violation to map to ErrRecordAlreadyExists")
	}

	check := &pgconn.PgError{Code: checkViolationCode, Message: "violates check constraint"}
	if !errors.Is(translateAttendancePgError(check), attendance.ErrInvalidStatus) {
		t.Fatalf("expected check violation to map to ErrInvalidStatus")
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrms-lite/internal/core/attendance"
	pgdb "github.com/ogurasousui/hrms-lite/internal/platform/db/postgres"
)

const attendanceEmployeeDayConstraint = "attendance_employee_day_key"

const attendanceColumns = `id, employee_ref, status, attendance_date`

var errInvalidRecordID = errors.New("postgres: invalid attendance id")

// AttendanceRepository は PostgreSQL を利用した勤怠記録の永続化です。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// FindByEmployeeAndDay は社員参照と日付で勤怠記録を検索します。
func (r *AttendanceRepository) FindByEmployeeAndDay(ctx context.Context, employeeRef string, day time.Time) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+attendanceColumns+`
          FROM attendance
         WHERE employee_ref = $1 AND attendance_date = $2
         LIMIT 1
    `, employeeRef, attendance.StartOfDay(day))

	found, err := scanRecord(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return found, nil
}

// Create は勤怠記録を新規作成します。
// 同日の記録が既に存在する場合はトランザクションを中断させずに ErrRecordAlreadyExists を返します。
func (r *AttendanceRepository) Create(ctx context.Context, record *attendance.Record) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO attendance (id, employee_ref, status, attendance_date)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (employee_ref, attendance_date) DO NOTHING
        RETURNING `+attendanceColumns,
		uuid.NewString(),
		record.EmployeeID,
		string(record.Status),
		attendance.StartOfDay(record.Date),
	)

	created, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, attendance.ErrRecordAlreadyExists
	}
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return created, nil
}

// Replace は ID を保ったまま勤怠記録を置き換えます。
func (r *AttendanceRepository) Replace(ctx context.Context, record *attendance.Record) (*attendance.Record, error) {
	if _, err := uuid.Parse(record.ID); err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidRecordID, record.ID)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE attendance
           SET employee_ref = $1,
               status = $2,
               attendance_date = $3
         WHERE id = $4
        RETURNING `+attendanceColumns,
		record.EmployeeID,
		string(record.Status),
		attendance.StartOfDay(record.Date),
		record.ID,
	)

	updated, err := scanRecord(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return updated, nil
}

// List は勤怠記録を日付の降順、同日内は ID の降順で取得します。
func (r *AttendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Record, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance`
	args := make([]any, 0, 1)
	if filter.EmployeeID != "" {
		query += ` WHERE employee_ref = $1`
		args = append(args, filter.EmployeeID)
	}
	query += ` ORDER BY attendance_date DESC, id DESC`

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	defer rows.Close()

	records := make([]*attendance.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, translateAttendancePgError(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, translateAttendancePgError(err)
	}

	return records, nil
}

// DeleteByEmployee は refs のいずれかを参照する勤怠記録を削除し、削除件数を返します。
func (r *AttendanceRepository) DeleteByEmployee(ctx context.Context, refs ...string) (int64, error) {
	refs = nonEmpty(refs)
	if len(refs) == 0 {
		return 0, nil
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM attendance WHERE employee_ref = ANY($1)`, refs)
	if err != nil {
		return 0, translateAttendancePgError(err)
	}
	return tag.RowsAffected(), nil
}

// ListEmployeeRefs は勤怠記録が参照している社員参照を重複なく返します。
func (r *AttendanceRepository) ListEmployeeRefs(ctx context.Context) ([]string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `SELECT DISTINCT employee_ref FROM attendance ORDER BY employee_ref`)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	defer rows.Close()

	refs := make([]string, 0)
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return refs, nil
}

func scanRecord(row pgx.Row) (*attendance.Record, error) {
	var (
		rec    attendance.Record
		status string
		date   time.Time
	)

	if err := row.Scan(&rec.ID, &rec.EmployeeID, &status, &date); err != nil {
		return nil, err
	}

	rec.Status = attendance.Status(status)
	rec.Date = attendance.StartOfDay(date)
	return &rec, nil
}

func translateAttendancePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == attendanceEmployeeDayConstraint:
			return attendance.ErrRecordAlreadyExists
		case pgErr.Code == checkViolationCode:
			return fmt.Errorf("%w: %s", attendance.ErrInvalidStatus, pgErr.Message)
		}
	}

	return err
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/hrms-lite/internal/core/employee"
	pgdb "github.com/ogurasousui/hrms-lite/internal/platform/db/postgres"
)

const (
	uniqueViolationCode = "23505"
	checkViolationCode  = "23514"

	employeesEmployeeIDConstraint = "employees_employee_id_key"
	employeesEmailConstraint      = "employees_email_key"
)

const employeeColumns = `id, employee_id, full_name, email, department, created_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。ID は UUID を採番します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (id, employee_id, full_name, email, department, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+employeeColumns,
		uuid.NewString(),
		e.EmployeeID,
		e.FullName,
		e.Email,
		e.Department,
		e.CreatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return employee.ErrInvalidID
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, parsed.String())
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。大文字や波括弧付きの UUID も正規形に直して検索します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, employee.ErrInvalidID
	}
	return r.findOne(ctx, `WHERE id = $1`, parsed.String())
}

// FindByEmployeeID は社員番号で検索します。
func (r *EmployeeRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*employee.Employee, error) {
	return r.findOne(ctx, `WHERE employee_id = $1`, employeeID)
}

// FindByEmail はメールアドレスで検索します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return r.findOne(ctx, `WHERE email = $1`, email)
}

// List は全社員を作成順に取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         ORDER BY created_at ASC, id ASC
    `)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

func (r *EmployeeRepository) findOne(ctx context.Context, where string, arg any) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         `+where+`
         LIMIT 1
    `, arg)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		emp       employee.Employee
		createdAt time.Time
	)

	if err := row.Scan(
		&emp.ID,
		&emp.EmployeeID,
		&emp.FullName,
		&emp.Email,
		&emp.Department,
		&createdAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	emp.CreatedAt = createdAt.UTC()
	return &emp, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case employeesEmployeeIDConstraint:
			return employee.ErrEmployeeIDAlreadyExists
		case employeesEmailConstraint:
			return employee.ErrEmailAlreadyExists
		}
	}

	return err
}

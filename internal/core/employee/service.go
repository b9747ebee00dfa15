package employee

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo       Repository
	attendance AttendancePurger
	clock      Clock
	tx         TransactionManager
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	ListEmployees(ctx context.Context) ([]*Employee, error)
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) (*DeleteEmployeeResult, error)
}

// NewService は Service を生成します。attendance が nil の場合は勤怠の連鎖削除を行いません。
func NewService(repo Repository, attendance AttendancePurger, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, attendance: attendance, clock: clock, tx: tx}
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	EmployeeID string
	FullName   string
	Email      string
	Department string
}

// DeleteEmployeeInput は社員削除時の入力です。ID はストアの識別子です。
type DeleteEmployeeInput struct {
	ID string
}

// DeleteEmployeeResult は社員削除の結果です。
type DeleteEmployeeResult struct {
	Employee          *Employee
	RemovedAttendance int64
}

// ListEmployees は全社員を取得します。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, err
	}

	if employees == nil {
		employees = []*Employee{}
	}
	return employees, nil
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	employeeID, err := normalizeRequired(in.EmployeeID, ErrInvalidEmployeeID)
	if err != nil {
		return nil, err
	}

	fullName, err := normalizeRequired(in.FullName, ErrInvalidFullName)
	if err != nil {
		return nil, err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	department, err := normalizeRequired(in.Department, ErrInvalidDepartment)
	if err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmployeeIDNotExists(txCtx, employeeID); err != nil {
			return err
		}
		if err := s.ensureEmailNotExists(txCtx, email); err != nil {
			return err
		}

		result, err := s.repo.Create(txCtx, &Employee{
			EmployeeID: employeeID,
			FullName:   fullName,
			Email:      email,
			Department: department,
			CreatedAt:  s.clock.Now(),
		})
		if err != nil {
			return describeDuplicate(err, employeeID, email)
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// DeleteEmployee は社員を削除し、その社員のストア識別子を参照する勤怠記録をすべて削除します。
// 業務上の社員番号で保存された古い記録は対象外で、孤立記録の掃除で削除されます。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) (*DeleteEmployeeResult, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	result := &DeleteEmployeeResult{}
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(txCtx, existing.ID); err != nil {
			return err
		}
		result.Employee = existing

		if s.attendance == nil {
			return nil
		}

		removed, err := s.attendance.DeleteByEmployee(txCtx, existing.ID)
		if err != nil {
			return fmt.Errorf("employee: delete attendance of %s: %w", existing.ID, err)
		}
		result.RemovedAttendance = removed
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) ensureEmployeeIDNotExists(ctx context.Context, employeeID string) error {
	emp, err := s.repo.FindByEmployeeID(ctx, employeeID)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return fmt.Errorf("%w: %q", ErrEmployeeIDAlreadyExists, employeeID)
	}
	return nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	emp, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return fmt.Errorf("%w: %q", ErrEmailAlreadyExists, email)
	}
	return nil
}

// 一意インデックス違反はチェック後に競合した書き込みによるものです。
func describeDuplicate(err error, employeeID, email string) error {
	switch {
	case errors.Is(err, ErrEmployeeIDAlreadyExists):
		return fmt.Errorf("%w: %q", ErrEmployeeIDAlreadyExists, employeeID)
	case errors.Is(err, ErrEmailAlreadyExists):
		return fmt.Errorf("%w: %q", ErrEmailAlreadyExists, email)
	default:
		return err
	}
}

func normalizeRequired(raw string, invalid error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalid
	}
	return trimmed, nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	if !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

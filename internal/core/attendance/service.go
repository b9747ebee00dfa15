package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/hrms-lite/internal/core/employee"
)

// EmployeeFinder は勤怠が参照する社員を解決します。
type EmployeeFinder interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*employee.Employee, error)
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

// Service は勤怠に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	employees EmployeeFinder
	tx        TransactionManager
}

// UseCase は勤怠ユースケースの公開インターフェースです。
type UseCase interface {
	ListAttendance(ctx context.Context, in ListAttendanceInput) ([]*Record, error)
	MarkAttendance(ctx context.Context, in MarkAttendanceInput) (*Record, error)
	ReconcileOrphans(ctx context.Context) (*ReconcileResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, employees EmployeeFinder, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, employees: employees, tx: tx}
}

// ListAttendanceInput は一覧取得時の入力です。EmployeeID が空なら全件です。
type ListAttendanceInput struct {
	EmployeeID string
}

// MarkAttendanceInput は出欠登録時の入力です。
type MarkAttendanceInput struct {
	EmployeeID string
	Status     Status
	Date       time.Time
}

// ReconcileResult は孤立した勤怠記録の掃除結果です。
type ReconcileResult struct {
	ScannedRefs    int
	OrphanRefs     []string
	RemovedRecords int64
}

// ListAttendance は勤怠記録を日付の降順で取得します。
func (s *Service) ListAttendance(ctx context.Context, in ListAttendanceInput) ([]*Record, error) {
	filter := ListFilter{EmployeeID: strings.TrimSpace(in.EmployeeID)}

	var records []*Record
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		records = found
		return nil
	}); err != nil {
		return nil, err
	}

	if records == nil {
		records = []*Record{}
	}
	return records, nil
}

// MarkAttendance は社員のその日の出欠を登録します。同日の記録があれば ID を保ったまま置き換えます。
func (s *Service) MarkAttendance(ctx context.Context, in MarkAttendanceInput) (*Record, error) {
	if !isValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	ref := strings.TrimSpace(in.EmployeeID)
	if ref == "" {
		return nil, ErrEmployeeIDRequired
	}

	if in.Date.IsZero() {
		return nil, ErrInvalidDate
	}
	day := StartOfDay(in.Date)

	var result *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.resolveEmployee(txCtx, ref)
		if err != nil {
			return err
		}

		// 記録はストアが返した正規形の ID で保存します。
		record, err := s.upsert(txCtx, emp.ID, in.Status, day)
		if err != nil {
			return err
		}
		result = record
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ReconcileOrphans はどの社員にも対応しない参照を持つ勤怠記録を削除します。
func (s *Service) ReconcileOrphans(ctx context.Context) (*ReconcileResult, error) {
	refs, err := s.repo.ListEmployeeRefs(ctx)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{ScannedRefs: len(refs), OrphanRefs: []string{}}
	for _, ref := range refs {
		orphan, err := s.isOrphan(ctx, ref)
		if err != nil {
			return nil, err
		}
		if !orphan {
			continue
		}

		removed, err := s.repo.DeleteByEmployee(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("attendance: delete orphans of %q: %w", ref, err)
		}
		result.OrphanRefs = append(result.OrphanRefs, ref)
		result.RemovedRecords += removed
	}

	return result, nil
}

func (s *Service) upsert(ctx context.Context, ref string, status Status, day time.Time) (*Record, error) {
	existing, err := s.repo.FindByEmployeeAndDay(ctx, ref, day)
	switch {
	case err == nil:
		return s.replace(ctx, existing, status, day)
	case !errors.Is(err, ErrRecordNotFound):
		return nil, err
	}

	created, err := s.repo.Create(ctx, &Record{EmployeeID: ref, Status: status, Date: day})
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ErrRecordAlreadyExists) {
		return nil, err
	}

	// 同日の記録を別リクエストが先に作成した。
	existing, err = s.repo.FindByEmployeeAndDay(ctx, ref, day)
	if err != nil {
		return nil, err
	}
	return s.replace(ctx, existing, status, day)
}

func (s *Service) replace(ctx context.Context, existing *Record, status Status, day time.Time) (*Record, error) {
	updated := *existing
	updated.Status = status
	updated.Date = day
	return s.repo.Replace(ctx, &updated)
}

func (s *Service) resolveEmployee(ctx context.Context, ref string) (*employee.Employee, error) {
	emp, err := s.employees.FindByID(ctx, ref)
	switch {
	case err == nil:
		return emp, nil
	case errors.Is(err, employee.ErrInvalidID):
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmployeeID, ref)
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return nil, ErrEmployeeNotFound
	default:
		return nil, err
	}
}

func (s *Service) isOrphan(ctx context.Context, ref string) (bool, error) {
	_, err := s.employees.FindByID(ctx, ref)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, employee.ErrInvalidID) && !errors.Is(err, employee.ErrEmployeeNotFound):
		return false, err
	}

	_, err = s.employees.FindByEmployeeID(ctx, ref)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return true, nil
	default:
		return false, err
	}
}

// StartOfDay は t を UTC の日付の 0 時に切り詰めます。
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseStatus は文字列を Status に変換します。
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(raw))
	if !isValidStatus(status) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPresent, StatusAbsent:
		return true
	default:
		return false
	}
}

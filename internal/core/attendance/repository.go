package attendance

import (
	"context"
	"time"
)

// Repository は勤怠記録の永続化の抽象です。
type Repository interface {
	// FindByEmployeeAndDay は [day, day+24h) に含まれる記録を返します。存在しなければ ErrRecordNotFound です。
	FindByEmployeeAndDay(ctx context.Context, employeeRef string, day time.Time) (*Record, error)
	// Create は一意制約に違反した場合 ErrRecordAlreadyExists を返します。
	Create(ctx context.Context, record *Record) (*Record, error)
	Replace(ctx context.Context, record *Record) (*Record, error)
	// List は日付の降順、同日内は ID の降順で返します。
	List(ctx context.Context, filter ListFilter) ([]*Record, error)
	DeleteByEmployee(ctx context.Context, refs ...string) (int64, error)
	ListEmployeeRefs(ctx context.Context) ([]string, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	EmployeeID string
}

package employee

import "context"

// Repository は社員永続化の抽象です。
//
// FindByID と Delete はストアの識別子形式に合わない id に対して ErrInvalidID を返します。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
}

// AttendancePurger は社員削除時に勤怠記録を削除する抽象です。
type AttendancePurger interface {
	DeleteByEmployee(ctx context.Context, refs ...string) (int64, error)
}

package app

import (
	"context"
	"fmt"

	mongorepo "github.com/ogurasousui/hrms-lite/internal/adapters/repository/mongodb"
	pgrepo "github.com/ogurasousui/hrms-lite/internal/adapters/repository/postgres"
	"github.com/ogurasousui/hrms-lite/internal/core/attendance"
	"github.com/ogurasousui/hrms-lite/internal/core/employee"
	"github.com/ogurasousui/hrms-lite/internal/platform/config"
	"github.com/ogurasousui/hrms-lite/internal/platform/db/mongodb"
	pg "github.com/ogurasousui/hrms-lite/internal/platform/db/postgres"
	"github.com/ogurasousui/hrms-lite/internal/platform/server"
	"github.com/rs/zerolog"
)

// AttendanceStore は勤怠サービスと社員サービスの両方から使われる勤怠リポジトリです。
type AttendanceStore interface {
	attendance.Repository
	employee.AttendancePurger
}

// Backend は選択されたストアに対するリポジトリ群とトランザクション制御です。
type Backend struct {
	Employees  employee.Repository
	Attendance AttendanceStore
	// EmployeeTx と AttendanceTx は nil の場合トランザクションなしで実行されます。
	EmployeeTx   employee.TransactionManager
	AttendanceTx attendance.TransactionManager
	Pinger       server.Pinger

	closeFn func(context.Context) error
}

// Close はストアへの接続を閉じます。
func (b *Backend) Close(ctx context.Context) error {
	if b == nil || b.closeFn == nil {
		return nil
	}
	return b.closeFn(ctx)
}

// EmployeeService は Backend 上に社員サービスを構築します。
func (b *Backend) EmployeeService() *employee.Service {
	return employee.NewService(b.Employees, b.Attendance, nil, b.EmployeeTx)
}

// AttendanceService は Backend 上に勤怠サービスを構築します。
func (b *Backend) AttendanceService() *attendance.Service {
	return attendance.NewService(b.Attendance, b.Employees, b.AttendanceTx)
}

// OpenBackend は database.driver に従ってストアへ接続し、Backend を返します。
func OpenBackend(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Backend, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return openMongo(ctx, cfg.Mongo, logger)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("app: unsupported database driver %q", cfg.Driver)
	}
}

func openMongo(ctx context.Context, cfg config.MongoConfig, logger zerolog.Logger) (*Backend, error) {
	client, err := mongodb.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.Name)
	indexes, err := mongodb.EnsureIndexes(ctx, db)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logger.Info().Str("database", cfg.Name).Strs("indexes", indexes).Msg("connected to MongoDB")

	store := mongodb.NewStore(db)
	b := &Backend{
		Employees:  mongorepo.NewEmployeeRepository(store),
		Attendance: mongorepo.NewAttendanceRepository(store),
		Pinger:     mongodb.NewPinger(client),
		closeFn:    client.Disconnect,
	}

	// 重複キーエラーは MongoDB のトランザクションを中断させるため、勤怠の upsert はトランザクション外で行います。
	if cfg.Transactions {
		b.EmployeeTx = mongodb.NewTransactionManager(client)
	}
	return b, nil
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig, logger zerolog.Logger) (*Backend, error) {
	pool, err := pg.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("connected to PostgreSQL")

	tx := pg.NewTransactionManager(pool)
	return &Backend{
		Employees:    pgrepo.NewEmployeeRepository(pool),
		Attendance:   pgrepo.NewAttendanceRepository(pool),
		EmployeeTx:   tx,
		AttendanceTx: tx,
		Pinger:       pool,
		closeFn: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	IndexEmployeesEmployeeID   = "uniq_employees_employeeId"
	IndexEmployeesEmail        = "uniq_employees_email"
	IndexAttendanceEmployeeDay = "uniq_attendance_employee_day"
	IndexAttendanceDate        = "idx_attendance_date"
)

// EmployeeIndexes は employees コレクションの一意インデックスです。
var EmployeeIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "employeeId", Value: 1}},
		Options: options.Index().SetName(IndexEmployeesEmployeeID).SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName(IndexEmployeesEmail).SetUnique(true),
	},
}

// AttendanceIndexes は attendance コレクションのインデックスです。
// date は UTC の 0 時に正規化して保存するため、(employeeId, date) の一意性が 1 日 1 件を保証します。
var AttendanceIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "employeeId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetName(IndexAttendanceEmployeeDay).SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName(IndexAttendanceDate),
	},
}

// EnsureIndexes は両コレクションのインデックスを作成します。既存の同名インデックスはそのままです。
func EnsureIndexes(ctx context.Context, db *mongo.Database) ([]string, error) {
	var created []string

	names, err := db.Collection(EmployeesCollection).Indexes().CreateMany(ctx, EmployeeIndexes)
	if err != nil {
		return nil, fmt.Errorf("mongodb: create %s indexes: %w", EmployeesCollection, err)
	}
	created = append(created, names...)

	names, err = db.Collection(AttendanceCollection).Indexes().CreateMany(ctx, AttendanceIndexes)
	if err != nil {
		return nil, fmt.Errorf("mongodb: create %s indexes: %w", AttendanceCollection, err)
	}
	created = append(created, names...)

	return created, nil
}

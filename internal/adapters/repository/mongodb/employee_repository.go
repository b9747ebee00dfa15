package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ogurasousui/hrms-lite/internal/core/employee"
	mdb "github.com/ogurasousui/hrms-lite/internal/platform/db/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type employeeDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID string             `bson:"employeeId"`
	FullName   string             `bson:"fullName"`
	Email      string             `bson:"email"`
	Department string             `bson:"department"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// EmployeeRepository は MongoDB を利用した社員永続化の実装です。
type EmployeeRepository struct {
	gw mdb.Gateway
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(gw mdb.Gateway) *EmployeeRepository {
	return &EmployeeRepository{gw: gw}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	doc := employeeDocument{
		EmployeeID: e.EmployeeID,
		FullName:   e.FullName,
		Email:      e.Email,
		Department: e.Department,
		CreatedAt:  e.CreatedAt.UTC(),
	}

	id, err := r.gw.InsertOne(ctx, mdb.EmployeesCollection, doc)
	if err != nil {
		return nil, translateEmployeeError(err)
	}

	created := *e
	created.ID = id
	created.CreatedAt = doc.CreatedAt
	return &created, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, employee.ErrInvalidID)
	if err != nil {
		return err
	}

	deleted, err := r.gw.DeleteOne(ctx, mdb.EmployeesCollection, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return translateEmployeeError(err)
	}
	if deleted == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	oid, err := parseObjectID(id, employee.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// FindByEmployeeID は社員番号で検索します。
func (r *EmployeeRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*employee.Employee, error) {
	return r.findOne(ctx, bson.D{{Key: "employeeId", Value: employeeID}})
}

// FindByEmail はメールアドレスで検索します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// List は全社員を格納順に取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	var docs []employeeDocument
	if err := r.gw.Find(ctx, mdb.EmployeesCollection, bson.D{}, nil, &docs); err != nil {
		return nil, translateEmployeeError(err)
	}

	employees := make([]*employee.Employee, 0, len(docs))
	for i := range docs {
		employees = append(employees, docs[i].toEntity())
	}
	return employees, nil
}

func (r *EmployeeRepository) findOne(ctx context.Context, filter bson.D) (*employee.Employee, error) {
	var doc employeeDocument
	if err := r.gw.FindOne(ctx, mdb.EmployeesCollection, filter, &doc); err != nil {
		return nil, translateEmployeeError(err)
	}
	return doc.toEntity(), nil
}

func (d *employeeDocument) toEntity() *employee.Employee {
	return &employee.Employee{
		ID:         d.ID.Hex(),
		EmployeeID: d.EmployeeID,
		FullName:   d.FullName,
		Email:      d.Email,
		Department: d.Department,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

func translateEmployeeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mdb.ErrNotFound) {
		return employee.ErrEmployeeNotFound
	}

	var dup *mdb.DuplicateKeyError
	if errors.As(err, &dup) {
		switch dup.Index {
		case mdb.IndexEmployeesEmployeeID:
			return employee.ErrEmployeeIDAlreadyExists
		case mdb.IndexEmployeesEmail:
			return employee.ErrEmailAlreadyExists
		}
	}

	return err
}

func parseObjectID(id string, invalid error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, invalid
	}
	return oid, nil
}

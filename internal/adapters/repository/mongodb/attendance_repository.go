package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ogurasousui/hrms-lite/internal/core/attendance"
	mdb "github.com/ogurasousui/hrms-lite/internal/platform/db/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errInvalidRecordID = errors.New("mongodb: invalid attendance id")

type attendanceDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID string             `bson:"employeeId"`
	Status     string             `bson:"status"`
	Date       time.Time          `bson:"date"`
}

// AttendanceRepository は MongoDB を利用した勤怠記録の永続化です。
type AttendanceRepository struct {
	gw mdb.Gateway
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(gw mdb.Gateway) *AttendanceRepository {
	return &AttendanceRepository{gw: gw}
}

// FindByEmployeeAndDay は社員参照と日付で勤怠記録を検索します。
func (r *AttendanceRepository) FindByEmployeeAndDay(ctx context.Context, employeeRef string, day time.Time) (*attendance.Record, error) {
	start := attendance.StartOfDay(day)
	filter := bson.D{
		{Key: "employeeId", Value: employeeRef},
		{Key: "date", Value: bson.D{
			{Key: "$gte", Value: start},
			{Key: "$lt", Value: start.AddDate(0, 0, 1)},
		}},
	}

	var doc attendanceDocument
	if err := r.gw.FindOne(ctx, mdb.AttendanceCollection, filter, &doc); err != nil {
		return nil, translateAttendanceError(err)
	}
	return doc.toEntity(), nil
}

// Create は勤怠記録を新規作成します。
func (r *AttendanceRepository) Create(ctx context.Context, record *attendance.Record) (*attendance.Record, error) {
	doc := attendanceDocument{
		EmployeeID: record.EmployeeID,
		Status:     string(record.Status),
		Date:       attendance.StartOfDay(record.Date),
	}

	id, err := r.gw.InsertOne(ctx, mdb.AttendanceCollection, doc)
	if err != nil {
		return nil, translateAttendanceError(err)
	}

	doc.ID, err = primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidRecordID, id)
	}
	return doc.toEntity(), nil
}

// Replace は ID を保ったまま勤怠記録を置き換えます。
func (r *AttendanceRepository) Replace(ctx context.Context, record *attendance.Record) (*attendance.Record, error) {
	oid, err := parseObjectID(record.ID, errInvalidRecordID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, record.ID)
	}

	doc := attendanceDocument{
		ID:         oid,
		EmployeeID: record.EmployeeID,
		Status:     string(record.Status),
		Date:       attendance.StartOfDay(record.Date),
	}

	matched, err := r.gw.ReplaceOne(ctx, mdb.AttendanceCollection, bson.D{{Key: "_id", Value: oid}}, doc)
	if err != nil {
		return nil, translateAttendanceError(err)
	}
	if matched == 0 {
		return nil, attendance.ErrRecordNotFound
	}
	return doc.toEntity(), nil
}

// List は勤怠記録を日付の降順で取得します。
func (r *AttendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Record, error) {
	query := bson.D{}
	if filter.EmployeeID != "" {
		query = append(query, bson.E{Key: "employeeId", Value: filter.EmployeeID})
	}
	order := bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}

	var docs []attendanceDocument
	if err := r.gw.Find(ctx, mdb.AttendanceCollection, query, order, &docs); err != nil {
		return nil, translateAttendanceError(err)
	}

	records := make([]*attendance.Record, 0, len(docs))
	for i := range docs {
		records = append(records, docs[i].toEntity())
	}
	return records, nil
}

// DeleteByEmployee は refs のいずれかを参照する勤怠記録を削除し、削除件数を返します。
func (r *AttendanceRepository) DeleteByEmployee(ctx context.Context, refs ...string) (int64, error) {
	refs = uniqueNonEmpty(refs)
	if len(refs) == 0 {
		return 0, nil
	}

	filter := bson.D{{Key: "employeeId", Value: bson.D{{Key: "$in", Value: refs}}}}
	deleted, err := r.gw.DeleteMany(ctx, mdb.AttendanceCollection, filter)
	if err != nil {
		return 0, translateAttendanceError(err)
	}
	return deleted, nil
}

// ListEmployeeRefs は勤怠記録が参照している社員参照を重複なく返します。
func (r *AttendanceRepository) ListEmployeeRefs(ctx context.Context) ([]string, error) {
	values, err := r.gw.Distinct(ctx, mdb.AttendanceCollection, "employeeId", bson.D{})
	if err != nil {
		return nil, translateAttendanceError(err)
	}

	refs := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			refs = append(refs, s)
		}
	}
	sort.Strings(refs)
	return refs, nil
}

func (d *attendanceDocument) toEntity() *attendance.Record {
	return &attendance.Record{
		ID:         d.ID.Hex(),
		EmployeeID: d.EmployeeID,
		Status:     attendance.Status(d.Status),
		Date:       d.Date.UTC(),
	}
}

func translateAttendanceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mdb.ErrNotFound) {
		return attendance.ErrRecordNotFound
	}

	var dup *mdb.DuplicateKeyError
	if errors.As(err, &dup) && dup.Index == mdb.IndexAttendanceEmployeeDay {
		return attendance.ErrRecordAlreadyExists
	}

	return err
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

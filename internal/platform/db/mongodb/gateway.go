package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EmployeesCollection  = "employees"
	AttendanceCollection = "attendance"
)

// ErrNotFound は FindOne で一致するドキュメントがない場合に返却されます。
var ErrNotFound = errors.New("mongodb: document not found")

// DuplicateKeyError は一意インデックス違反を表します。
type DuplicateKeyError struct {
	Collection string
	Index      string
	Err        error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("mongodb: duplicate key on %s (index %s): %v", e.Collection, e.Index, e.Err)
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// Gateway はコレクション単位のドキュメント操作を提供します。
//
// ctx がセッションを保持している場合、操作はそのトランザクションに参加します。
type Gateway interface {
	Find(ctx context.Context, collection string, filter, sort any, out any) error
	FindOne(ctx context.Context, collection string, filter any, out any) error
	InsertOne(ctx context.Context, collection string, doc any) (string, error)
	ReplaceOne(ctx context.Context, collection string, filter, doc any) (int64, error)
	DeleteOne(ctx context.Context, collection string, filter any) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter any) (int64, error)
	Distinct(ctx context.Context, collection, field string, filter any) ([]any, error)
}

// Store は mongo.Database を利用した Gateway の実装です。
type Store struct {
	db *mongo.Database
}

// NewStore は Store を生成します。
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Find は filter に一致するドキュメントを sort 順に out へデコードします。out はスライスへのポインタです。
func (s *Store) Find(ctx context.Context, collection string, filter, sort any, out any) error {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}

	cur, err := s.db.Collection(collection).Find(ctx, orEmpty(filter), opts)
	if err != nil {
		return fmt.Errorf("mongodb: find %s: %w", collection, err)
	}

	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("mongodb: decode %s: %w", collection, err)
	}
	return nil
}

// FindOne は filter に一致する最初のドキュメントを out へデコードします。
func (s *Store) FindOne(ctx context.Context, collection string, filter any, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, orEmpty(filter)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mongodb: find one %s: %w", collection, err)
	}
	return nil
}

// InsertOne はドキュメントを挿入し、採番された _id を文字列で返します。
func (s *Store) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", s.translateWriteError(collection, "insert", err)
	}
	return idString(res.InsertedID), nil
}

// ReplaceOne は filter に一致するドキュメントを置き換え、一致件数を返します。
func (s *Store) ReplaceOne(ctx context.Context, collection string, filter, doc any) (int64, error) {
	res, err := s.db.Collection(collection).ReplaceOne(ctx, orEmpty(filter), doc)
	if err != nil {
		return 0, s.translateWriteError(collection, "replace", err)
	}
	return res.MatchedCount, nil
}

// DeleteOne は filter に一致するドキュメントを 1 件削除します。
func (s *Store) DeleteOne(ctx context.Context, collection string, filter any) (int64, error) {
	res, err := s.db.Collection(collection).DeleteOne(ctx, orEmpty(filter))
	if err != nil {
		return 0, fmt.Errorf("mongodb: delete one %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

// DeleteMany は filter に一致するドキュメントをすべて削除します。
func (s *Store) DeleteMany(ctx context.Context, collection string, filter any) (int64, error) {
	res, err := s.db.Collection(collection).DeleteMany(ctx, orEmpty(filter))
	if err != nil {
		return 0, fmt.Errorf("mongodb: delete many %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

// Distinct は field の重複しない値を返します。
func (s *Store) Distinct(ctx context.Context, collection, field string, filter any) ([]any, error) {
	values, err := s.db.Collection(collection).Distinct(ctx, field, orEmpty(filter))
	if err != nil {
		return nil, fmt.Errorf("mongodb: distinct %s.%s: %w", collection, field, err)
	}
	return values, nil
}

func (s *Store) translateWriteError(collection, op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{Collection: collection, Index: duplicateIndex(err), Err: err}
	}
	return fmt.Errorf("mongodb: %s %s: %w", op, collection, err)
}

// duplicateIndex は E11000 のメッセージからインデックス名を取り出します。
func duplicateIndex(err error) string {
	msg := err.Error()
	var we mongo.WriteException
	if errors.As(err, &we) && len(we.WriteErrors) > 0 {
		msg = we.WriteErrors[0].Message
	}

	const marker = "index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	name := msg[i+len(marker):]
	if j := strings.IndexByte(name, ' '); j >= 0 {
		name = name[:j]
	}
	return name
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func orEmpty(filter any) any {
	if filter == nil {
		return bson.D{}
	}
	return filter
}

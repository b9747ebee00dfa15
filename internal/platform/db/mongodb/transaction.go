package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type sessionStarter interface {
	StartSession(opts ...*options.SessionOptions) (mongo.Session, error)
}

// TransactionManager は MongoDB のセッションを用いたトランザクション制御を提供します。
// レプリカセット構成でのみ利用できます。
type TransactionManager struct {
	client sessionStarter
}

// NewTransactionManager は TransactionManager を生成します。
func NewTransactionManager(client sessionStarter) *TransactionManager {
	if client == nil {
		return nil
	}
	return &TransactionManager{client: client}
}

// WithinReadOnly はスナップショット読み取りのトランザクションで fn を実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetReadPreference(readpref.Primary())
	return m.within(ctx, opts, fn)
}

// WithinReadWrite は majority 書き込みのトランザクションで fn を実行します。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	opts := options.Transaction().
		SetReadConcern(readconcern.Majority()).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary())
	return m.within(ctx, opts, fn)
}

func (m *TransactionManager) within(ctx context.Context, opts *options.TransactionOptions, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("mongodb: transaction function is required")
	}

	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongodb: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	return err
}

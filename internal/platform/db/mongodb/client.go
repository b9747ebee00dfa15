package mongodb

import (
	"context"
	"fmt"

	"github.com/ogurasousui/hrms-lite/internal/platform/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// BuildClientOptions は database.mongo 設定から options.ClientOptions を構築します。
func BuildClientOptions(cfg config.MongoConfig) *options.ClientOptions {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	return opts
}

// NewClient は mongo.Client を生成し疎通確認を行います。
func NewClient(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	opts := BuildClientOptions(cfg)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("mongodb: invalid options: %w", err)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	return client, nil
}

// Pinger はプライマリへの疎通確認を行います。ヘルスチェックで利用します。
type Pinger struct {
	client *mongo.Client
}

// NewPinger は Pinger を生成します。
func NewPinger(client *mongo.Client) *Pinger {
	return &Pinger{client: client}
}

// Ping はプライマリへ ping を送ります。
func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig は HTTP サーバーおよびヘルスチェック用 gRPC サーバーの設定です。
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`
	HealthListenAddr   string        `yaml:"health_listen_addr"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
	ReadTimeout        time.Duration `yaml:"-"`
	WriteTimeout       time.Duration `yaml:"-"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	HealthInterval     time.Duration `yaml:"-"`
	ReadTimeoutRaw     string        `yaml:"read_timeout"`
	WriteTimeoutRaw    string        `yaml:"write_timeout"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
	HealthIntervalRaw  string        `yaml:"health_interval"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig は永続化バックエンドの設定です。
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MongoConfig は MongoDB 接続に関する設定です。
type MongoConfig struct {
	URI               string        `yaml:"uri"`
	Name              string        `yaml:"name"`
	Transactions      bool          `yaml:"transactions"`
	ConnectTimeout    time.Duration `yaml:"-"`
	ConnectTimeoutRaw string        `yaml:"connect_timeout"`
}

// PostgresConfig は PostgreSQL 接続に関する設定です。
type PostgresConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	return Parse(b, os.LookupEnv)
}

// Parse は YAML を解釈し、lookup で得られる環境変数を適用します。
func Parse(b []byte, lookup func(string) (string, bool)) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if lookup != nil {
		cfg.applyEnv(lookup)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("MONGODB_URL"); ok && v != "" {
		c.Database.Mongo.URI = v
	}
	if v, ok := lookup("DATABASE_NAME"); ok && v != "" {
		c.Database.Mongo.Name = v
		c.Database.Postgres.Name = v
	}
	if v, ok := lookup("HTTP_LISTEN_ADDR"); ok && v != "" {
		c.Server.ListenAddr = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}

	c.Log.normalize()

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	if len(s.AllowedOrigins) == 0 {
		s.AllowedOrigins = []string{"*"}
	}

	var err error
	if s.ReadTimeout, err = parseDurationDefault(s.ReadTimeoutRaw, 10*time.Second); err != nil {
		return fmt.Errorf("config: server.read_timeout: %w", err)
	}
	if s.WriteTimeout, err = parseDurationDefault(s.WriteTimeoutRaw, 15*time.Second); err != nil {
		return fmt.Errorf("config: server.write_timeout: %w", err)
	}
	if s.ShutdownTimeout, err = parseDurationDefault(s.ShutdownTimeoutRaw, 10*time.Second); err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if s.HealthInterval, err = parseDurationDefault(s.HealthIntervalRaw, 10*time.Second); err != nil {
		return fmt.Errorf("config: server.health_interval: %w", err)
	}
	return nil
}

func (l *LogConfig) normalize() {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	if l.Format == "" {
		l.Format = "json"
	}
}

func (d *DatabaseConfig) validateAndNormalize() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	if d.Driver == "" {
		d.Driver = DriverMongo
	}

	switch d.Driver {
	case DriverMongo:
		return d.Mongo.validateAndNormalize()
	case DriverPostgres:
		return d.Postgres.validateAndNormalize()
	default:
		return fmt.Errorf("config: database.driver %q is not supported", d.Driver)
	}
}

func (m *MongoConfig) validateAndNormalize() error {
	if m.URI == "" {
		return fmt.Errorf("config: database.mongo.uri must be set")
	}
	if m.Name == "" {
		m.Name = "hrms_lite"
	}

	timeout, err := parseDurationDefault(m.ConnectTimeoutRaw, 10*time.Second)
	if err != nil {
		return fmt.Errorf("config: database.mongo.connect_timeout: %w", err)
	}
	m.ConnectTimeout = timeout
	return nil
}

func (d *PostgresConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.postgres.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.postgres.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.postgres.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.postgres.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.postgres.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationDefault(d.ConnMaxLifetimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.postgres.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationDefault(d.ConnMaxIdleTimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.postgres.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationDefault(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx および golang-migrate 用の接続文字列を返します。
func (d PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

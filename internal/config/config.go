// Package config は環境変数と .env ファイルからアプリケーション設定を読み込みます。
package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// サポートするデータベースドライバー名 (database/sql に登録される名前と一致)
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// MaxVisitorRetentionDays は訪問者の保持日数として受け付ける上限 (約100年) です。
const MaxVisitorRetentionDays = 36500

// DatabaseConfig はデータベース接続の設定です。
type DatabaseConfig struct {
	Driver          string
	URL             string
	Host            string
	Port            string
	User            string
	Pass            string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Config はアプリケーション全体の設定です。
type Config struct {
	Port                 string
	GinMode              string
	CORSAllowedOrigins   []string
	ShutdownTimeout      time.Duration
	VisitorRetentionDays int
	Database             DatabaseConfig
}

// Load は .env を読み込んだ上で環境変数から設定を構築します。
// .env が存在しない場合はエラーにせず、環境変数のみを使います。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", "5000")
	v.SetDefault("gin_mode", "")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("visitor_retention_days", 30)

	v.SetDefault("database_url", "")
	v.SetDefault("db_driver", "")
	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", "")
	v.SetDefault("db_user", "")
	v.SetDefault("db_pass", "")
	v.SetDefault("db_name", "")
	v.SetDefault("db_sslmode", "require")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 25)
	v.SetDefault("db_conn_max_lifetime", "5m")
	return v
}

// FromViper は与えられた viper インスタンスから Config を組み立てます。
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                 v.GetString("port"),
		GinMode:              v.GetString("gin_mode"),
		CORSAllowedOrigins:   splitList(v.GetString("cors_allowed_origins")),
		ShutdownTimeout:      v.GetDuration("shutdown_timeout"),
		VisitorRetentionDays: v.GetInt("visitor_retention_days"),
		Database: DatabaseConfig{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("db_driver"))),
			URL:             strings.TrimSpace(v.GetString("database_url")),
			Host:            v.GetString("db_host"),
			Port:            v.GetString("db_port"),
			User:            v.GetString("db_user"),
			Pass:            v.GetString("db_pass"),
			Name:            v.GetString("db_name"),
			SSLMode:         v.GetString("db_sslmode"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		},
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = inferDriver(cfg.Database.URL)
	}
	switch cfg.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Database.URL == "" && cfg.Database.Name == "" {
		return nil, fmt.Errorf("DATABASE_URL or DB_NAME must be set")
	}
	if cfg.VisitorRetentionDays <= 0 || cfg.VisitorRetentionDays > MaxVisitorRetentionDays {
		return nil, fmt.Errorf("VISITOR_RETENTION_DAYS must be between 1 and %d, got %d", MaxVisitorRetentionDays, cfg.VisitorRetentionDays)
	}

	return cfg, nil
}

// inferDriver は DATABASE_URL のスキームからドライバーを推測します。
func inferDriver(rawURL string) string {
	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPostgres
	}
	return DriverMySQL
}

// DSN はドライバーごとの接続文字列を返します。DATABASE_URL が設定されていればそれを優先します。
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		if c.Driver == DriverMySQL {
			return NormalizeMySQLDSN(c.URL)
		}
		return c.URL
	}

	switch c.Driver {
	case DriverPostgres:
		port := c.Port
		if port == "" {
			port = "5432"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Pass),
			Host:     c.Host + ":" + port,
			Path:     "/" + c.Name,
			RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
		}
		return u.String()
	case DriverSQLite:
		// 時刻を SQLite の日付関数と互換のある形式で書き込む
		sep := "?"
		if strings.Contains(c.Name, "?") {
			sep = "&"
		}
		return c.Name + sep + "_time_format=sqlite"
	default:
		port := c.Port
		if port == "" {
			port = "3306"
		}
		// 例: user:pass@tcp(db:3306)/dbname?parseTime=true
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Pass
		mc.Net = "tcp"
		mc.Addr = c.Host + ":" + port
		mc.DBName = c.Name
		return NormalizeMySQLDSN(mc.FormatDSN())
	}
}

// NormalizeMySQLDSN は MySQL の DSN に parseTime と clientFoundRows を強制します。
// clientFoundRows により、値が変わらない UPDATE でも一致した行数が返ります。
func NormalizeMySQLDSN(dsn string) string {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return dsn
	}
	mc.ParseTime = true
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

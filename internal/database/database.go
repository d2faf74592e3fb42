// Package database はデータベース接続プールとスキーマを管理します。
package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"go-todo-api/backend/internal/config"
)

// Open はデータベース接続プールを初期化し、Ping で疎通を確認します。
// 呼び出し側がプロセス終了時に Close する責任を持ちます。
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("could not open database connection: %w", err)
	}

	if cfg.Driver == config.DriverSQLite && isMemoryDSN(cfg.DSN()) {
		// インメモリDBは接続ごとに別物になるため、1本の接続を使い回す
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}

	log.Printf("Successfully connected to %s database!", cfg.Driver)
	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// InsertID は INSERT 文を実行し、自動採番された ID を返します。
// Postgres は LastInsertId をサポートしないため RETURNING id を使います。
func InsertID(ctx context.Context, db sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if db.DriverName() == config.DriverPostgres {
		var id int64
		if err := db.QueryRowxContext(ctx, db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not get last insert ID: %w", err)
	}
	return id, nil
}

// Now は DB に書き込む現在時刻を返します。
// どのドライバーでも同じ精度になるようマイクロ秒で切り捨てます。
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

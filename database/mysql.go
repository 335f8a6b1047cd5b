package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	MYSQL_CONN_MAX_LIFETIME = 5 * time.Minute
	MYSQL_MAX_OPEN_CONNS    = 10
	MYSQL_MAX_IDLE_CONNS    = 10
	MYSQL_TIMEOUT           = 10 * time.Second
)

// OpenMySQL opens the legacy ledger pool. It returns nil, nil when uri is
// empty so callers can treat the legacy source as optional.
func OpenMySQL(ctx context.Context, uri string) (*sql.DB, error) {
	if uri == "" {
		return nil, nil
	}

	dsn, err := mysqlDSN(uri)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("[MySQL] open: %w", err)
	}
	db.SetConnMaxLifetime(MYSQL_CONN_MAX_LIFETIME)
	db.SetMaxOpenConns(MYSQL_MAX_OPEN_CONNS)
	db.SetMaxIdleConns(MYSQL_MAX_IDLE_CONNS)

	pingCtx, cancel := context.WithTimeout(ctx, MYSQL_TIMEOUT)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("[MySQL] ping: %w", err)
	}
	return db, nil
}

// mysqlDSN forces parseTime so DATETIME columns scan into time values.
func mysqlDSN(uri string) (string, error) {
	cfg, err := mysql.ParseDSN(uri)
	if err != nil {
		return "", fmt.Errorf("[MySQL] dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

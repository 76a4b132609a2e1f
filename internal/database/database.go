package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"notesapi/internal/config"
)

const pingTimeout = 5 * time.Second

// seam for tests
var sqlOpen = sql.Open

// BuildPostgresDSN assembles a postgres:// URL from the config. Password and
// sslmode are optional; everything else is required.
func BuildPostgresDSN(c config.DatabaseConfig) (string, error) {
	if c.Host == "" || c.Port == "" || c.User == "" || c.Name == "" {
		return "", fmt.Errorf("invalid database config: host, port, user, and name are required")
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.User(c.User),
		Host:   c.Host + ":" + c.Port,
		Path:   c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}

	return u.String(), nil
}

// NewPostgres opens a pooled database/sql handle through the pgx stdlib
// driver, wrapped with otelsql so every query is traced. The connection is
// verified with a bounded ping before it is handed out.
func NewPostgres(c config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := BuildPostgresDSN(c)
	if err != nil {
		return nil, err
	}

	driverName, err := otelsql.Register("pgx",
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register otelsql: %w", err)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	configurePool(db, c)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func configurePool(db *sql.DB, c config.DatabaseConfig) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}
}

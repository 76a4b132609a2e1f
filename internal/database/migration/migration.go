package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email         TEXT        NOT NULL UNIQUE,
  name          TEXT        NOT NULL,
  password_hash TEXT        NOT NULL,
  role          TEXT        NOT NULL DEFAULT 'STUDENT' CHECK (role IN ('STUDENT', 'ADMIN')),
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title         TEXT        NOT NULL,
  description   TEXT        NOT NULL DEFAULT '',
  tags          TEXT        NOT NULL DEFAULT '',
  storage_path  TEXT        NOT NULL UNIQUE,
  original_name TEXT        NOT NULL,
  mime_type     TEXT        NOT NULL,
  size          BIGINT      NOT NULL CHECK (size >= 0),
  status        TEXT        NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
  downloads     BIGINT      NOT NULL DEFAULT 0 CHECK (downloads >= 0),
  uploader_id   UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (status);`,
	},
	{
		Name: "create_index_documents_uploader_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_uploader_id ON documents (uploader_id);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
	{
		Name: "create_index_documents_downloads",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_downloads ON documents (downloads DESC);`,
	},
}

// EnsureMigrated runs the schema steps once. The documents table doubles as
// the sentinel: when it already exists the whole run is skipped, so steps
// must stay idempotent (IF NOT EXISTS) for partially migrated databases.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	m := migrator{loc: loc, host: dbHost, start: time.Now()}
	m.log("db_migration_check", "starting", nil)

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.documents') IS NOT NULL").Scan(&exists); err != nil {
		m.log("db_migration_failed", "error", map[string]any{"error_message": err.Error()})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}
	if exists {
		m.log("db_migration_skip", "success", map[string]any{"msg": "schema already exists, skipping migration"})
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			m.log("db_migration_failed", "error", map[string]any{
				"migration_step": step.Name,
				"error_message":  err.Error(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		m.log("db_migration_step", "success", map[string]any{
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	m.log("db_migration_success", "success", nil)
	return nil
}

type migrator struct {
	loc   *time.Location
	host  string
	start time.Time
}

func (m migrator) log(event, status string, fields map[string]any) {
	entry := map[string]any{
		"ts":          time.Now().In(m.loc).Format(time.RFC3339Nano),
		"level":       "info",
		"component":   "database",
		"event":       event,
		"status":      status,
		"db_host":     m.host,
		"duration_ms": time.Since(m.start).Milliseconds(),
	}
	if status == "error" {
		entry["level"] = "error"
	}
	for k, v := range fields {
		entry[k] = v
	}

	b, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}

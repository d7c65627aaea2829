package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// EnsureDocumentTable creates a keyed JSONB document table if it is missing.
func EnsureDocumentTable(ctx context.Context, pool Pool, table string) error {
	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key        TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, sanitizeTable(table))
	if _, err := pool.Exec(ctx, sql); err != nil {
		return eris.Wrapf(err, "db: create table %s", table)
	}
	return nil
}

// UpsertDocument inserts doc under key, or merges its top-level fields into
// the stored document. Fields absent from doc are kept.
func UpsertDocument(ctx context.Context, pool Pool, table, key string, doc []byte) error {
	if key == "" {
		return eris.New("db: upsert: empty key")
	}
	t := sanitizeTable(table)
	sql := fmt.Sprintf(
		"INSERT INTO %s (key, doc) VALUES ($1, $2::jsonb) ON CONFLICT (key) DO UPDATE SET doc = %s.doc || EXCLUDED.doc, updated_at = now()",
		t, t,
	)
	if _, err := pool.Exec(ctx, sql, key, string(doc)); err != nil {
		return eris.Wrapf(err, "db: upsert %s key %s", table, key)
	}
	return nil
}

// sanitizeTable handles schema-qualified table names like "fatego.skills".
func sanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLite stores each collection as a keyed JSON table in a local file.
type SQLite struct {
	db *sql.DB

	mu      sync.Mutex
	ensured map[string]bool
}

// NewSQLite opens the database at dsn and configures WAL mode.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLite{db: db, ensured: make(map[string]bool)}, nil
}

// Upsert implements Sink. Existing documents are merged with json_patch.
func (s *SQLite) Upsert(ctx context.Context, collection string, filter map[string]any, doc any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	key, err := filterKey(filter)
	if err != nil {
		return err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "sink: encode document")
	}
	if err := s.ensure(ctx, collection); err != nil {
		return err
	}

	q := fmt.Sprintf(`INSERT INTO %[1]q (key, doc) VALUES (?, json(?))
ON CONFLICT(key) DO UPDATE SET doc = json_patch(%[1]q.doc, excluded.doc), updated_at = datetime('now')`, collection)
	if _, err := s.db.ExecContext(ctx, q, key, string(b)); err != nil {
		return eris.Wrapf(err, "sqlite: upsert %s key %s", collection, key)
	}
	return nil
}

func (s *SQLite) ensure(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured[collection] {
		return nil
	}
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
	key        TEXT PRIMARY KEY,
	doc        TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
)`, collection)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return eris.Wrapf(err, "sqlite: create table %s", collection)
	}
	s.ensured[collection] = true
	return nil
}

// Close implements Sink.
func (s *SQLite) Close(context.Context) error {
	return s.db.Close()
}

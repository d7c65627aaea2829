package sink

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fgo-harvest/internal/db"
)

// Postgres stores each collection as a keyed JSONB table.
type Postgres struct {
	pool db.Pool

	mu      sync.Mutex
	ensured map[string]bool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool db.Pool) *Postgres {
	return &Postgres{pool: pool, ensured: make(map[string]bool)}
}

// Upsert implements Sink.
func (p *Postgres) Upsert(ctx context.Context, collection string, filter map[string]any, doc any) error {
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
	if err := p.ensure(ctx, collection); err != nil {
		return err
	}
	return db.UpsertDocument(ctx, p.pool, collection, key, b)
}

func (p *Postgres) ensure(ctx context.Context, collection string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ensured[collection] {
		return nil
	}
	if err := db.EnsureDocumentTable(ctx, p.pool, collection); err != nil {
		return err
	}
	p.ensured[collection] = true
	return nil
}

// Close implements Sink.
func (p *Postgres) Close(context.Context) error {
	p.pool.Close()
	return nil
}

// Package sink persists clean records into a keyed document store.
package sink

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fgo-harvest/internal/config"
	"github.com/sells-group/fgo-harvest/internal/db"
)

// Collection names.
const (
	CollectionServants = "servants"
	CollectionSkills   = "skills"
)

// Sink upserts documents into named collections. filter identifies the
// document; an existing document has doc's top-level fields merged into it
// and keeps every field doc does not mention.
type Sink interface {
	Upsert(ctx context.Context, collection string, filter map[string]any, doc any) error
	Close(ctx context.Context) error
}

// Open connects the sink named by cfg.Driver.
func Open(ctx context.Context, cfg config.SinkConfig) (Sink, error) {
	switch cfg.Driver {
	case "mongo":
		return NewMongo(ctx, cfg.MongoURI, cfg.Database)
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "sink: open postgres")
		}
		return NewPostgres(pool), nil
	case "sqlite":
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, eris.Errorf("sink: unknown driver %q", cfg.Driver)
	}
}

var collectionRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkCollection(name string) error {
	if !collectionRe.MatchString(name) {
		return eris.Errorf("sink: invalid collection name %q", name)
	}
	return nil
}

// filterKey flattens a filter into the primary key used by the SQL sinks.
// Single-field filters use the bare value.
func filterKey(filter map[string]any) (string, error) {
	switch len(filter) {
	case 0:
		return "", eris.New("sink: empty filter")
	case 1:
		for _, v := range filter {
			return fmt.Sprint(v), nil
		}
	}
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, filter[k])
	}
	return strings.Join(parts, "&"), nil
}

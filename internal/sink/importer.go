package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/model"
)

// ImportResult counts per-record outcomes of an import.
type ImportResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Import upserts every doc into collection. keyFn returns the document's
// filter and a display name for logging. A failed record is logged and
// counted; it never stops the import.
func Import[T any](ctx context.Context, s Sink, collection string, docs []T, keyFn func(T) (map[string]any, string)) ImportResult {
	log := zap.L().With(zap.String("component", "sink.import"), zap.String("collection", collection))

	var res ImportResult
	for _, d := range docs {
		filter, name := keyFn(d)
		if err := s.Upsert(ctx, collection, filter, d); err != nil {
			log.Error("insert failed", zap.String("name", name), zap.Error(err))
			res.Failed++
			continue
		}
		log.Info("insert success", zap.String("name", name))
		res.Succeeded++
	}
	log.Info("import complete", zap.Int("succeeded", res.Succeeded), zap.Int("failed", res.Failed))
	return res
}

// ImportServants upserts servants keyed by servantId.
func ImportServants(ctx context.Context, s Sink, docs []model.CleanServant) ImportResult {
	return Import(ctx, s, CollectionServants, docs, func(d model.CleanServant) (map[string]any, string) {
		return map[string]any{"servantId": d.ServantID}, d.Name
	})
}

// ImportSkills upserts skills keyed by name.
func ImportSkills(ctx context.Context, s Sink, docs []model.CleanSkill) ImportResult {
	return Import(ctx, s, CollectionSkills, docs, func(d model.CleanSkill) (map[string]any, string) {
		return map[string]any{"name": d.Name}, d.Name
	})
}

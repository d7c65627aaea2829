package normalize

import (
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/model"
)

const (
	attackPrefix = "field_atk_"
	hpPrefix     = "field_hp_"
)

// Servants converts combed servants into clean documents. Excluded names
// are dropped. Servants whose stats never populated keep empty stats.
func Servants(records []model.Servant, ex Exclusions) []model.CleanServant {
	log := zap.L().With(zap.String("component", "normalize.servants"))

	out := make([]model.CleanServant, 0, len(records))
	for _, r := range records {
		if ex.Contains(r.Name) {
			log.Info("dropping excluded servant", zap.String("name", r.Name))
			continue
		}
		if !r.Stats.IsPopulated() {
			log.Warn("servant has no stats", zap.String("name", r.Name), zap.String("state", string(r.Stats.State)))
		}
		out = append(out, model.CleanServant{
			ServantID: r.ServantID,
			Name:      r.Name,
			Class:     Classify(r.Class),
			Release:   r.Release,
			Rating:    r.Rating,
			Stats:     levelStats(r.Stats),
		})
	}
	return out
}

func levelStats(d model.Detail[model.RawStats]) model.LevelStats {
	if !d.IsPopulated() || len(*d.Data) == 0 {
		return model.LevelStats{Attack: []*int{}, HP: []*int{}}
	}
	fields := (*d.Data)[0]
	return model.LevelStats{
		Attack: LevelValues(fields, attackPrefix),
		HP:     LevelValues(fields, hpPrefix),
	}
}

// Skills converts combed skills into clean documents, dropping excluded
// names and every skill whose growth table could not be fetched.
func Skills(records []model.Skill, ex Exclusions) []model.CleanSkill {
	log := zap.L().With(zap.String("component", "normalize.skills"))

	out := make([]model.CleanSkill, 0, len(records))
	for _, r := range records {
		if ex.Contains(r.Name) {
			log.Info("dropping excluded skill", zap.String("name", r.Name))
			continue
		}
		if !r.Leveling.IsPopulated() {
			fields := []zap.Field{zap.String("name", r.Name), zap.String("state", string(r.Leveling.State))}
			if f := r.Leveling.Failure; f != nil {
				fields = append(fields, zap.String("kind", string(f.Kind)), zap.String("tag", f.Tag))
			}
			log.Info("dropping skill without growth data", fields...)
			continue
		}
		effects := r.Effects
		if effects == nil {
			effects = []string{}
		}
		out = append(out, model.CleanSkill{
			Name:     r.Name,
			Meta:     r.Meta,
			Effects:  effects,
			Leveling: *r.Leveling.Data,
		})
	}
	return out
}

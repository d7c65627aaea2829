package harvest

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/endpoint"
	"github.com/sells-group/fgo-harvest/internal/fetcher"
	"github.com/sells-group/fgo-harvest/internal/model"
	"github.com/sells-group/fgo-harvest/internal/normalize"
	"github.com/sells-group/fgo-harvest/internal/snapshot"
)

// Entity names, also used as snapshot file prefixes.
const (
	EntityServants = "servants"
	EntitySkills   = "skills"
	EntityAll      = "all"
)

// Options configures a Pipeline.
type Options struct {
	BaseURL       string
	Servants      Source
	Skills        Source
	Pacer         Pacer
	Concurrency   int
	MaxIterations int
	Exclusions    normalize.Exclusions
}

// Pipeline runs the staged harvest for servants and skills.
type Pipeline struct {
	fetcher  fetcher.Fetcher
	resolver *endpoint.Resolver
	store    *snapshot.Store
	opts     Options
}

// NewPipeline creates a Pipeline. resolver may be nil when every Source
// carries a ListURL.
func NewPipeline(f fetcher.Fetcher, resolver *endpoint.Resolver, store *snapshot.Store, opts Options) *Pipeline {
	if opts.Exclusions == nil {
		opts.Exclusions = normalize.DefaultExclusions()
	}
	return &Pipeline{fetcher: f, resolver: resolver, store: store, opts: opts}
}

// Run harvests the named entity ("servants", "skills" or "all").
func (p *Pipeline) Run(ctx context.Context, entity string) error {
	log := zap.L().With(
		zap.String("component", "harvest.pipeline"),
		zap.String("run_id", uuid.NewString()),
	)

	if err := p.store.EnsureDir(); err != nil {
		return err
	}

	switch entity {
	case EntityServants:
		_, err := p.servants(ctx, log)
		return err
	case EntitySkills:
		_, err := p.skills(ctx, log)
		return err
	case EntityAll:
		if _, err := p.servants(ctx, log); err != nil {
			return err
		}
		_, err := p.skills(ctx, log)
		return err
	default:
		return eris.Errorf("harvest: unknown entity %q", entity)
	}
}

// Servants runs the servant stages and returns the clean records.
func (p *Pipeline) Servants(ctx context.Context) ([]model.CleanServant, error) {
	return p.servants(ctx, zap.L().With(zap.String("component", "harvest.pipeline"), zap.String("run_id", uuid.NewString())))
}

// Skills runs the skill stages and returns the clean records.
func (p *Pipeline) Skills(ctx context.Context) ([]model.CleanSkill, error) {
	return p.skills(ctx, zap.L().With(zap.String("component", "harvest.pipeline"), zap.String("run_id", uuid.NewString())))
}

func (p *Pipeline) servants(ctx context.Context, log *zap.Logger) ([]model.CleanServant, error) {
	log = log.With(zap.String("entity", EntityServants))
	name := func(s model.Servant) string { return s.Name }
	fetch := func(ctx context.Context, s model.Servant) model.Servant {
		return p.FetchServantStats(ctx, log, s)
	}
	fan := func(ctx context.Context, in []model.Servant) ([]model.Servant, error) {
		return fanOut(ctx, log, p.opts.Pacer, p.opts.Concurrency, in, name, fetch)
	}

	stages := []stage[model.Servant]{
		{snapshot.TagBasic, func(ctx context.Context, _ []model.Servant) ([]model.Servant, error) {
			return p.FetchServants(ctx, p.opts.Servants)
		}},
		{snapshot.TagStat, fan},
		{snapshot.TagComb, func(ctx context.Context, in []model.Servant) ([]model.Servant, error) {
			out, _, err := comb(ctx, log, in, p.opts.MaxIterations,
				func(s model.Servant) bool { return s.Stats.IsRetryable() }, fan)
			return out, err
		}},
	}
	clean := func(in []model.Servant) []model.CleanServant {
		return normalize.Servants(in, p.opts.Exclusions)
	}
	return runStages(ctx, log, p.store, EntityServants, p.opts.Servants.Version, stages, clean)
}

func (p *Pipeline) skills(ctx context.Context, log *zap.Logger) ([]model.CleanSkill, error) {
	log = log.With(zap.String("entity", EntitySkills))
	name := func(s model.Skill) string { return s.Name }
	fetch := func(ctx context.Context, s model.Skill) model.Skill {
		return p.FetchSkillGrowth(ctx, log, s)
	}
	fan := func(ctx context.Context, in []model.Skill) ([]model.Skill, error) {
		return fanOut(ctx, log, p.opts.Pacer, p.opts.Concurrency, in, name, fetch)
	}

	stages := []stage[model.Skill]{
		{snapshot.TagBasic, func(ctx context.Context, _ []model.Skill) ([]model.Skill, error) {
			return p.FetchSkills(ctx, p.opts.Skills)
		}},
		{snapshot.TagDetail, fan},
		{snapshot.TagFilter, func(_ context.Context, in []model.Skill) ([]model.Skill, error) {
			return Triage(log, in), nil
		}},
		{snapshot.TagComb, func(ctx context.Context, in []model.Skill) ([]model.Skill, error) {
			out, _, err := comb(ctx, log, in, p.opts.MaxIterations,
				func(s model.Skill) bool { return s.Leveling.IsRetryable() }, fan)
			return out, err
		}},
	}
	clean := func(in []model.Skill) []model.CleanSkill {
		return normalize.Skills(in, p.opts.Exclusions)
	}
	return runStages(ctx, log, p.store, EntitySkills, p.opts.Skills.Version, stages, clean)
}

type stage[T any] struct {
	tag string
	run func(context.Context, []T) ([]T, error)
}

// runStages resumes from the latest snapshot on disk. An existing clean
// snapshot is returned as is; otherwise the stages after the latest
// snapshot run in order, each one saved before the next starts.
func runStages[T, C any](
	ctx context.Context,
	log *zap.Logger,
	store *snapshot.Store,
	entity, version string,
	stages []stage[T],
	clean func([]T) []C,
) ([]C, error) {
	if store.Exists(entity, version, snapshot.TagClean) {
		var out []C
		if err := store.Load(entity, version, snapshot.TagClean, &out); err != nil {
			return nil, err
		}
		log.Info("reusing clean snapshot", zap.Int("records", len(out)))
		return out, nil
	}

	var records []T
	start := 0
	for i := len(stages) - 1; i >= 0; i-- {
		if !store.Exists(entity, version, stages[i].tag) {
			continue
		}
		if err := store.Load(entity, version, stages[i].tag, &records); err != nil {
			return nil, err
		}
		log.Info("resuming from snapshot", zap.String("tag", stages[i].tag), zap.Int("records", len(records)))
		start = i + 1
		break
	}

	for _, st := range stages[start:] {
		log.Info("running stage", zap.String("tag", st.tag))
		out, err := st.run(ctx, records)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			return nil, eris.Wrapf(err, "harvest: %s stage %s", entity, st.tag)
		}
		if err := store.Save(entity, version, st.tag, out); err != nil {
			return nil, err
		}
		records = out
	}

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "harvest: %s stage %s", entity, snapshot.TagClean)
	}
	out := clean(records)
	if err := store.Save(entity, version, snapshot.TagClean, out); err != nil {
		return nil, err
	}
	log.Info("stage complete", zap.String("tag", snapshot.TagClean), zap.Int("records", len(out)))
	return out, nil
}

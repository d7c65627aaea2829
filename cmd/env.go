package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/config"
	"github.com/sells-group/fgo-harvest/internal/endpoint"
	"github.com/sells-group/fgo-harvest/internal/fetcher"
	"github.com/sells-group/fgo-harvest/internal/harvest"
	"github.com/sells-group/fgo-harvest/internal/model"
	"github.com/sells-group/fgo-harvest/internal/normalize"
	"github.com/sells-group/fgo-harvest/internal/snapshot"
)

// newPipeline wires the fetcher, resolver, snapshot store and exclusions
// from configuration.
func newPipeline(c *config.Config) (*harvest.Pipeline, error) {
	ex, err := normalize.LoadExclusions(c.Normalize.ExclusionsFile)
	if err != nil {
		return nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:         c.HTTP.UserAgent,
		Timeout:           time.Duration(c.HTTP.TimeoutSecs) * time.Second,
		MaxRetries:        c.HTTP.MaxRetries,
		RequestsPerSecond: c.HTTP.RequestsPerSecond,
	})

	var resolver *endpoint.Resolver
	if c.Site.DirectoryURL != "" {
		resolver = endpoint.NewResolver(f, c.Site.DirectoryURL)
	}

	return harvest.NewPipeline(f, resolver, snapshot.NewStore(c.DataDir), harvest.Options{
		BaseURL:       c.Site.BaseURL,
		Servants:      source(c.Servants),
		Skills:        source(c.Skills),
		Pacer:         harvest.Pacer{Every: c.Pacing.Every, Pause: time.Duration(c.Pacing.PauseMS) * time.Millisecond},
		Concurrency:   c.Pacing.Concurrency,
		MaxIterations: c.Comb.MaxIterations,
		Exclusions:    ex,
	}), nil
}

func source(e config.EntityConfig) harvest.Source {
	return harvest.Source{Version: e.Version, ListURL: e.ListURL, ListKeyword: e.ListKeyword}
}

// cleanRecords loads the clean snapshots for the requested entity. With
// optional set, a missing snapshot yields no records instead of an error.
func cleanRecords(store *snapshot.Store, c *config.Config, entity string, optional bool) ([]model.CleanServant, []model.CleanSkill, error) {
	var servants []model.CleanServant
	var skills []model.CleanSkill

	load := func(name, version string, v any) error {
		if !store.Exists(name, version, snapshot.TagClean) {
			if optional {
				zap.L().Warn("clean snapshot missing", zap.String("entity", name), zap.String("path", store.Path(name, version, snapshot.TagClean)))
				return nil
			}
			return eris.Errorf("no clean %s snapshot at %s; run harvest first", name, store.Path(name, version, snapshot.TagClean))
		}
		return store.Load(name, version, snapshot.TagClean, v)
	}

	if entity == harvest.EntityServants || entity == harvest.EntityAll {
		if err := load(harvest.EntityServants, c.Servants.Version, &servants); err != nil {
			return nil, nil, err
		}
	}
	if entity == harvest.EntitySkills || entity == harvest.EntityAll {
		if err := load(harvest.EntitySkills, c.Skills.Version, &skills); err != nil {
			return nil, nil, err
		}
	}
	return servants, skills, nil
}

func entityArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return harvest.EntityAll
}

var entityArgs = []string{harvest.EntityServants, harvest.EntitySkills, harvest.EntityAll}

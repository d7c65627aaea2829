package harvest

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/htmlx"
	"github.com/sells-group/fgo-harvest/internal/model"
	"github.com/sells-group/fgo-harvest/internal/resilience"
)

var (
	errNoReference   = eris.New("skill has no reference")
	errAbsoluteRef   = eris.New("skill reference is absolute")
	errNoGrowthTable = eris.New("growth page has no table")
)

// ParseGrowth reads a growth table grid. Row 0 column 1 holds the
// enhancement descriptor; every later row is level, effect, cooldown.
func ParseGrowth(grid [][]string) (model.Leveling, bool) {
	if len(grid) == 0 || len(grid[0]) < 2 {
		return model.Leveling{}, false
	}

	lv := model.Leveling{
		Enhancement: strings.TrimSpace(grid[0][1]),
		Growth:      make([]model.Growth, 0, len(grid)-1),
	}
	for _, row := range grid[1:] {
		lv.Growth = append(lv.Growth, model.Growth{
			Level:    cell(row, 0),
			Effect:   strings.TrimSpace(cell(row, 1)),
			Cooldown: cell(row, 2),
		})
	}
	return lv, true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// FetchSkillGrowth fetches the growth page named by the skill's captured
// reference. A missing or absolute reference fails terminally without a
// network call.
func (p *Pipeline) FetchSkillGrowth(ctx context.Context, log *zap.Logger, s model.Skill) model.Skill {
	switch {
	case s.Ref == "":
		s.Leveling = failed[model.Leveling](log, s.Name, "", "",
			resilience.NewTerminalError(resilience.TagNoReference, errNoReference))
		return s
	case strings.Contains(s.Ref, "http"):
		s.Leveling = failed[model.Leveling](log, s.Name, s.Ref, s.Ref,
			resilience.NewTerminalError(resilience.TagMalformedRef, errAbsoluteRef))
		return s
	}

	growth := p.opts.BaseURL + s.Ref
	page, err := p.fetcher.Get(ctx, growth)
	if err != nil {
		s.Leveling = failed[model.Leveling](log, s.Name, growth, s.Ref, err)
		return s
	}

	lv, ok := ParseGrowth(htmlx.TableGrid(string(page)))
	if !ok {
		s.Leveling = failed[model.Leveling](log, s.Name, growth, s.Ref,
			resilience.NewTerminalError(resilience.TagUnparseable, errNoGrowthTable))
		return s
	}

	s.Leveling = model.Populated(lv)
	return s
}

// Triage reclassifies retryable skills that carry no reference as terminal,
// since the comb loop would have nothing to re-fetch. All records are kept.
func Triage(log *zap.Logger, skills []model.Skill) []model.Skill {
	out := make([]model.Skill, len(skills))
	var populated, retryable, terminal int
	for i, s := range skills {
		if s.Leveling.IsRetryable() && s.Leveling.Failure.Ref == "" {
			s.Leveling = model.Terminal[model.Leveling](resilience.TagNoReference, s.Leveling.Failure.Status)
		}
		switch {
		case s.Leveling.IsPopulated():
			populated++
		case s.Leveling.IsRetryable():
			retryable++
		case s.Leveling.IsTerminal():
			terminal++
		}
		out[i] = s
	}
	log.Info("skills triaged",
		zap.Int("populated", populated),
		zap.Int("retryable", retryable),
		zap.Int("terminal", terminal),
	)
	return out
}

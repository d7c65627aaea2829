package harvest

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fgo-harvest/internal/fetcher"
	"github.com/sells-group/fgo-harvest/internal/htmlx"
	"github.com/sells-group/fgo-harvest/internal/model"
	"github.com/sells-group/fgo-harvest/internal/resilience"
)

var errNoNodeID = eris.New("profile page has no node id")

var (
	slugStrip = strings.NewReplacer("(", "", ")", "", "'", "", "/", "", "&", "")
	slugSpace = regexp.MustCompile(`\s+`)
)

// Slug derives the profile page slug from a servant display name.
func Slug(name string) string {
	s := slugStrip.Replace(name)
	s = strings.ReplaceAll(s, " of ", " ")
	s = strings.ReplaceAll(s, " the ", " ")
	s = slugSpace.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}

func (p *Pipeline) profileURL(name string) string {
	return p.opts.BaseURL + "/servant/" + Slug(name)
}

func (p *Pipeline) statsURL(nid string) string {
	return p.opts.BaseURL + "/calc-stats?_format=json&nid=" + url.QueryEscape(nid)
}

// FetchServantStats fetches the profile page, reads its node id and then
// the stats payload. Failures are recorded on the servant, never returned.
func (p *Pipeline) FetchServantStats(ctx context.Context, log *zap.Logger, s model.Servant) model.Servant {
	profile := p.profileURL(s.Name)

	page, err := p.fetcher.Get(ctx, profile)
	if err != nil {
		s.Stats = failed[model.RawStats](log, s.Name, profile, profile, err)
		return s
	}

	nid, ok := htmlx.NodeID(string(page))
	if !ok {
		s.Stats = failed[model.RawStats](log, s.Name, profile, profile,
			resilience.NewTerminalError(resilience.TagUnparseable, errNoNodeID))
		return s
	}

	stats := p.statsURL(nid)
	raw, err := fetcher.GetJSON[model.RawStats](ctx, p.fetcher, stats)
	if err != nil {
		s.Stats = failed[model.RawStats](log, s.Name, stats, profile, err)
		return s
	}
	if raw == nil {
		raw = model.RawStats{}
	}

	s.Stats = model.Populated(raw)
	return s
}

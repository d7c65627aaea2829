package harvest

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fgo-harvest/internal/fetcher"
	"github.com/sells-group/fgo-harvest/internal/htmlx"
	"github.com/sells-group/fgo-harvest/internal/model"
)

// Source locates the bulk list endpoint for one entity kind. ListURL wins
// over ListKeyword; the keyword is resolved through the site directory.
type Source struct {
	Version     string
	ListURL     string
	ListKeyword string
}

// VersionedURL appends version to raw as a bare query token so the CDN
// serves a fresh copy.
func VersionedURL(raw, version string) string {
	if version == "" {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + url.QueryEscape(version)
}

func (p *Pipeline) listURL(ctx context.Context, src Source) (string, error) {
	base := src.ListURL
	if base == "" {
		if src.ListKeyword == "" {
			return "", eris.New("harvest: list url or keyword is required")
		}
		if p.resolver == nil {
			return "", eris.Errorf("harvest: no directory to resolve %q", src.ListKeyword)
		}
		resolved, err := p.resolver.Resolve(ctx, src.ListKeyword)
		if err != nil {
			return "", err
		}
		base = resolved
	}
	return VersionedURL(base, src.Version), nil
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return eris.Wrapf(err, "harvest: parse id %s", b)
	}
	*n = flexInt(v)
	return nil
}

type servantItem struct {
	Title         string  `json:"title"`
	FieldClass    string  `json:"field_class"`
	ServantID     flexInt `json:"servant_id"`
	ReleaseStatus string  `json:"release_status"`
	Stars         string  `json:"stars"`
}

type skillItem struct {
	Title             string `json:"title"`
	TitlePlain        string `json:"title_plain"`
	SkillType         string `json:"skill_type"`
	SkillTypeSpecific string `json:"skill_type_specific"`
}

// FetchServants fetches the servant list and projects each item into a
// record with pending stats.
func (p *Pipeline) FetchServants(ctx context.Context, src Source) ([]model.Servant, error) {
	u, err := p.listURL(ctx, src)
	if err != nil {
		return nil, eris.Wrap(err, "harvest: servants list endpoint")
	}
	items, err := fetcher.GetJSON[[]servantItem](ctx, p.fetcher, u)
	if err != nil {
		return nil, eris.Wrap(err, "harvest: fetch servants list")
	}

	out := make([]model.Servant, 0, len(items))
	for _, it := range items {
		out = append(out, model.Servant{
			ServantID: int(it.ServantID),
			Name:      htmlx.AnchorText(it.Title),
			Class:     strings.Join(strings.Fields(it.FieldClass), ""),
			Release:   it.ReleaseStatus,
			Rating:    rating(it.Stars),
			Stats:     model.Pending[model.RawStats](),
		})
	}
	return out, nil
}

// rating keeps the text before the first space, e.g. "4 <span>..." -> "4".
func rating(stars string) string {
	before, _, _ := strings.Cut(strings.TrimSpace(stars), " ")
	return before
}

// FetchSkills fetches the skill list and projects each item into a record
// with pending leveling data and the captured growth-page reference.
func (p *Pipeline) FetchSkills(ctx context.Context, src Source) ([]model.Skill, error) {
	u, err := p.listURL(ctx, src)
	if err != nil {
		return nil, eris.Wrap(err, "harvest: skills list endpoint")
	}
	items, err := fetcher.GetJSON[[]skillItem](ctx, p.fetcher, u)
	if err != nil {
		return nil, eris.Wrap(err, "harvest: fetch skills list")
	}

	out := make([]model.Skill, 0, len(items))
	for _, it := range items {
		out = append(out, model.Skill{
			Name: model.NormalizeName(htmlx.DecodeEntities(it.TitlePlain)),
			Meta: model.SkillMeta{
				Type:     it.SkillType,
				Category: it.SkillTypeSpecific,
			},
			Effects:  htmlx.ParagraphLines(it.Title),
			Ref:      htmlx.AnchorHref(it.Title),
			Leveling: model.Pending[model.Leveling](),
		})
	}
	return out, nil
}

// Package htmlx extracts anchors, paragraphs, node ids and table grids from
// HTML fragments. All functions are pure and perform no I/O.
package htmlx

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func parse(fragment string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return doc
}

// AnchorText returns the trimmed text of the fragment's anchor. Callers
// pass fragments holding exactly one anchor; with several, the first wins.
func AnchorText(fragment string) string {
	return strings.TrimSpace(parse(fragment).Find("a").First().Text())
}

// AnchorHref returns the href attribute of the fragment's anchor.
func AnchorHref(fragment string) string {
	href, _ := parse(fragment).Find("a").First().Attr("href")
	return href
}

// ParagraphLines joins the text of every <p> element and splits it on newlines.
func ParagraphLines(fragment string) []string {
	text := parse(fragment).Find("p").Text()
	if text == "" {
		return []string{}
	}
	return strings.Split(text, "\n")
}

// DecodeEntities decodes numeric and named HTML entities.
func DecodeEntities(text string) string {
	return html.UnescapeString(text)
}

var nodeIDRe = regexp.MustCompile(`^node-(\d+)$`)

// NodeID returns the numeric id carried by a `node-<id>` element id,
// preferring <article> elements.
func NodeID(page string) (string, bool) {
	doc := parse(page)
	for _, sel := range []string{"article[id]", "[id^='node-']"} {
		var id string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr("id")
			if m := nodeIDRe.FindStringSubmatch(v); m != nil {
				id = m[1]
				return false
			}
			return true
		})
		if id != "" {
			return id, true
		}
	}
	return "", false
}

// TableGrid parses the first <table> into a row-major grid of trimmed cell
// text. Cells spanning several rows or columns are copied into every slot
// they cover. The grid is rectangular; slots no cell covers are empty.
func TableGrid(fragment string) [][]string {
	table := parse(fragment).Find("table").First()
	if table.Length() == 0 {
		return nil
	}

	// Rows of nested tables belong to those tables, not this one.
	var rows []*goquery.Selection
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Closest("table").IsSelection(table) {
			rows = append(rows, tr)
		}
	})

	g := &grid{}
	for r, tr := range rows {
		g.ensureRow(r)
		c := 0
		tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			for g.filled(r, c) {
				c++
			}
			text := strings.TrimSpace(cell.Text())
			rowSpan := spanAttr(cell, "rowspan", maxRowSpan)
			colSpan := spanAttr(cell, "colspan", maxColSpan)
			for dr := 0; dr < rowSpan && r+dr < len(rows); dr++ {
				for dc := 0; dc < colSpan; dc++ {
					g.set(r+dr, c+dc, text)
				}
			}
			c += colSpan
		})
	}
	return g.rectangular(len(rows))
}

// Span limits from the HTML table model; larger values are clamped.
const (
	maxColSpan = 1000
	maxRowSpan = 65534
)

func spanAttr(cell *goquery.Selection, name string, limit int) int {
	v, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, limit)
}

type grid struct {
	cells [][]string
	taken [][]bool
	width int
}

func (g *grid) ensureRow(r int) {
	for len(g.cells) <= r {
		g.cells = append(g.cells, nil)
		g.taken = append(g.taken, nil)
	}
}

func (g *grid) filled(r, c int) bool {
	if r >= len(g.taken) || c >= len(g.taken[r]) {
		return false
	}
	return g.taken[r][c]
}

func (g *grid) set(r, c int, v string) {
	g.ensureRow(r)
	if grow := c + 1 - len(g.cells[r]); grow > 0 {
		g.cells[r] = append(g.cells[r], make([]string, grow)...)
		g.taken[r] = append(g.taken[r], make([]bool, grow)...)
	}
	g.cells[r][c] = v
	g.taken[r][c] = true
	if c+1 > g.width {
		g.width = c + 1
	}
}

func (g *grid) rectangular(rows int) [][]string {
	out := make([][]string, rows)
	for r := range rows {
		row := make([]string, g.width)
		if r < len(g.cells) {
			copy(row, g.cells[r])
		}
		out[r] = row
	}
	return out
}

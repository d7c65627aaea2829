package normalize

import (
	"math"
	"strconv"
	"strings"
)

// MaxLevel bounds the level suffix accepted by LevelValues. Fields with a
// larger suffix are ignored.
const MaxLevel = 1000

// LevelValues collects fields named <prefix><n> into a 0-based slice where
// index n-1 holds the parsed integer value. The slice is sized to the
// highest level observed; missing levels and unparseable values stay nil.
func LevelValues(fields map[string]any, prefix string) []*int {
	values := make(map[int]*int)
	maxLevel := 0
	for key, raw := range fields {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		level, err := strconv.Atoi(key[len(prefix):])
		if err != nil || level < 1 || level > MaxLevel {
			continue
		}
		if level > maxLevel {
			maxLevel = level
		}
		values[level-1] = parseValue(raw)
	}

	out := make([]*int, maxLevel)
	for i, v := range values {
		out[i] = v
	}
	return out
}

// parseValue reads an integer from a JSON value. Strings are parsed by
// their leading integer, so "1,234" yields 1 and "abc" yields nil.
func parseValue(raw any) *int {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		n := int(v)
		return &n
	case int:
		return &v
	case string:
		return leadingInt(v)
	default:
		return nil
	}
}

func leadingInt(s string) *int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return nil
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &n
}

package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SkillMeta classifies a skill.
type SkillMeta struct {
	Type     string `json:"type"`
	Category string `json:"category"`
}

// Growth is one level row of a skill's growth table.
type Growth struct {
	Level    string `json:"level"`
	Effect   string `json:"effect"`
	Cooldown string `json:"cooldown"`
}

// Leveling is the growth-table detail of a skill.
type Leveling struct {
	Enhancement string   `json:"enhancement"`
	Growth      []Growth `json:"growth"`
}

// Skill is an ability record as it moves through the pipeline. Name is the
// identity key and is always stored normalized.
type Skill struct {
	Name     string           `json:"name"`
	Meta     SkillMeta        `json:"meta"`
	Effects  []string         `json:"effects"`
	Ref      string           `json:"ref,omitempty"`
	Leveling Detail[Leveling] `json:"leveling"`
}

// CleanSkill is the normalized ability document written to the sink.
type CleanSkill struct {
	Name     string    `json:"name"`
	Meta     SkillMeta `json:"meta"`
	Effects  []string  `json:"effects"`
	Leveling Leveling  `json:"leveling"`
}

// NormalizeName returns the canonical form of a display name: NFC
// normalized, trimmed, inner whitespace collapsed to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

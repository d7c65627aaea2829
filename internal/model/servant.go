package model

// RawStats is the calc-stats response body: an array of objects keyed by
// level-indexed field names such as field_atk_1 or field_hp_90.
type RawStats []map[string]any

// Servant is a character record as it moves through the pipeline.
type Servant struct {
	ServantID int              `json:"servantId"`
	Name      string           `json:"name"`
	Class     string           `json:"class"`
	Release   string           `json:"release"`
	Rating    string           `json:"rating"`
	Stats     Detail[RawStats] `json:"stats"`
}

// LevelStats holds per-level values in 0-based level order. Nil entries
// are levels the source did not report.
type LevelStats struct {
	Attack []*int `json:"attack"`
	HP     []*int `json:"hp"`
}

// CleanServant is the normalized character document written to the sink.
type CleanServant struct {
	ServantID int        `json:"servantId"`
	Name      string     `json:"name"`
	Class     string     `json:"class"`
	Release   string     `json:"release"`
	Rating    string     `json:"rating"`
	Stats     LevelStats `json:"stats"`
}

// Package snapshot persists stage checkpoints of the harvest pipeline as
// pretty-printed JSON files named <entity>[_<version>].<tag>.json.
package snapshot

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/rotisserie/eris"
)

// Stage tags in pipeline order.
const (
	TagBasic  = "basic"
	TagStat   = "stat"
	TagDetail = "detail"
	TagFilter = "filter"
	TagComb   = "comb"
	TagClean  = "clean"
)

// Info describes a snapshot file found on disk.
type Info struct {
	Entity  string    `json:"entity"`
	Version string    `json:"version,omitempty"`
	Tag     string    `json:"tag"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

var versionRe = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

// ValidVersion reports whether v can be used as a version token in a
// snapshot file name. The empty version is valid.
func ValidVersion(v string) bool {
	return versionRe.MatchString(v)
}

// Store reads and writes snapshots under a data directory. Concurrent runs
// against the same directory are not supported.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// EnsureDir creates the data directory if needed.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return eris.Wrapf(err, "snapshot: create data dir %s", s.dir)
	}
	return nil
}

// Path returns the file path for the given entity, version and stage tag.
func (s *Store) Path(entity, version, tag string) string {
	name := entity
	if version != "" {
		name += "_" + version
	}
	return filepath.Join(s.dir, name+"."+tag+".json")
}

// Exists reports whether the snapshot file is present.
func (s *Store) Exists(entity, version, tag string) bool {
	_, err := os.Stat(s.Path(entity, version, tag))
	return err == nil
}

// Load decodes the snapshot into v.
func (s *Store) Load(entity, version, tag string, v any) error {
	if !ValidVersion(version) {
		return eris.Errorf("snapshot: invalid version %q", version)
	}
	path := s.Path(entity, version, tag)
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "snapshot: read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "snapshot: decode %s", path)
	}
	return nil
}

// Save writes v as 2-space indented JSON. The file is written to a
// temporary name and renamed so readers never observe a partial snapshot.
func (s *Store) Save(entity, version, tag string, v any) error {
	if !ValidVersion(version) {
		return eris.Errorf("snapshot: invalid version %q", version)
	}
	path := s.Path(entity, version, tag)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "snapshot: encode %s", path)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return eris.Wrap(err, "snapshot: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "snapshot: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "snapshot: close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "snapshot: rename %s", path)
	}
	return nil
}

var fileRe = regexp.MustCompile(`^([a-z]+)(?:_([A-Za-z0-9_-]+))?\.([a-z]+)\.json$`)

// List returns every snapshot in the data directory, sorted by file name.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "snapshot: list %s", s.dir)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Entity:  m[1],
			Version: m[2],
			Tag:     m[3],
			Path:    filepath.Join(s.dir, e.Name()),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

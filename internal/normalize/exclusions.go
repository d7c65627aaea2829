package normalize

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Exclusions is the set of record names dropped from clean output.
type Exclusions map[string]struct{}

// DefaultExclusions returns the built-in list of known bad data points.
func DefaultExclusions() Exclusions {
	return Exclusions{
		"Solomon (Grand Caster)": {},
	}
}

// Contains reports whether name is excluded.
func (e Exclusions) Contains(name string) bool {
	_, ok := e[name]
	return ok
}

// LoadExclusions reads a YAML file of the form
//
//	exclusions:
//	  - Solomon (Grand Caster)
//
// and returns the union with the defaults. An empty path returns the defaults.
func LoadExclusions(path string) (Exclusions, error) {
	ex := DefaultExclusions()
	if path == "" {
		return ex, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "normalize: read exclusions %s", path)
	}

	var file struct {
		Exclusions []string `yaml:"exclusions"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "normalize: parse exclusions")
	}
	for _, name := range file.Exclusions {
		ex[name] = struct{}{}
	}
	return ex, nil
}

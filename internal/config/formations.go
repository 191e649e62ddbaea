package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fcmerged/pitchbot/internal/lineup"
)

type formationsFile struct {
	Formations []lineup.Formation `yaml:"formations"`
}

// LoadFormations returns the built-in formations merged with those in path.
// A formation in the file replaces the built-in with the same name; new names
// are appended. An empty path yields the built-ins only.
func LoadFormations(path string) ([]lineup.Formation, error) {
	formations := lineup.Builtin()
	if path == "" {
		return formations, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read formations: %w", err)
	}

	var file formationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}

	for _, f := range file.Formations {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		replaced := false
		for i := range formations {
			if strings.EqualFold(formations[i].Name, f.Name) {
				formations[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			formations = append(formations, f)
		}
	}
	return formations, nil
}

// FindFormation looks a formation up by name, case-insensitively.
func FindFormation(formations []lineup.Formation, name string) (lineup.Formation, bool) {
	if len(formations) == 0 {
		return lineup.Formation{}, false
	}
	if name == "" {
		return formations[0], true
	}
	for _, f := range formations {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return lineup.Formation{}, false
}

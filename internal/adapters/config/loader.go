// Package config provides the build specification loader.
package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/fcomp/internal/core/domain"
	"go.trai.ch/fcomp/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the build specification read when no path is given.
const DefaultPath = "fcompile.json"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader reads a build specification from a JSON or YAML file.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and validates the build specification. The path "-" reads
// JSON from stdin; an empty path falls back to DefaultPath. Targets are
// returned in deterministic (name-sorted) order, which is the tie-break
// for equal scheduling priorities.
func (l *Loader) Load(path string) ([]domain.Target, error) {
	if path == "" {
		path = DefaultPath
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // Path is provided by the user
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrSpecMalformed, err.Error()), "path", path)
	}
	return Parse(data, isYAML(path))
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Parse decodes and validates specification bytes.
func Parse(data []byte, asYAML bool) ([]domain.Target, error) {
	var spec Specfile
	var err error
	if asYAML {
		err = yaml.Unmarshal(data, &spec)
	} else {
		err = json.Unmarshal(data, &spec)
	}
	if err != nil {
		return nil, zerr.Wrap(domain.ErrSpecMalformed, err.Error())
	}

	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	slices.Sort(names)

	targets := make([]domain.Target, 0, len(spec))
	for _, name := range names {
		dto := spec[name]
		if dto.Source == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrSpecMalformed, "target is missing a source file"), "target", name)
		}
		if len(dto.Args) == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrSpecMalformed, "target is missing compile arguments"), "target", name)
		}
		targets = append(targets, domain.Target{
			Name:     domain.NewInternedString(name),
			Source:   dto.Source,
			Args:     slices.Clone(dto.Args),
			Includes: slices.Clone(dto.Includes),
		})
	}
	return targets, nil
}

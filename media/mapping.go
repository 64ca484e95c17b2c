package media

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dwrenner/wp-sync/internal/atomicfile"
)

// MapFilename is the name of the side file a Mapping persists to, scoped to
// one content item's directory.
const MapFilename = "media-map.yaml"

// Mapping is the bidirectional table for one content item.  It's consulted
// before re-downloading or re-uploading, which makes interrupted runs
// resumable.  Deliberately per-item rather than process-wide: two unrelated
// items' assets must never collide silently.
type Mapping struct {
	// Downloads maps remote asset URL → local filename (export direction).
	Downloads map[string]string `yaml:"downloads,omitempty"`

	// Uploads maps local filename → new remote URL (import direction).
	Uploads map[string]string `yaml:"uploads,omitempty"`
}

func NewMapping() *Mapping {
	return &Mapping{
		Downloads: map[string]string{},
		Uploads:   map[string]string{},
	}
}

// LoadMapping reads the side file at path.  A missing file is not an error;
// it just means nothing has been transferred yet.
func LoadMapping(path string) (*Mapping, error) {
	source, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewMapping(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("media: couldn't read mapping file %s: %w", path, err)
	}

	m := NewMapping()
	if err := yaml.Unmarshal(source, m); err != nil {
		return nil, fmt.Errorf("media: couldn't parse mapping file %s: %w", path, err)
	}
	if m.Downloads == nil {
		m.Downloads = map[string]string{}
	}
	if m.Uploads == nil {
		m.Uploads = map[string]string{}
	}

	return m, nil
}

// Write persists the mapping.  Atomic replace; the mapping file is
// read-then-written by at most one operation per run, so no further locking
// discipline is needed.
func (m *Mapping) Write(path string) error {
	encoded, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("media: couldn't marshal mapping: %w", err)
	}

	if err := atomicfile.WriteFile(path, encoded, 0644); err != nil {
		return fmt.Errorf("media: couldn't write mapping file: %w", err)
	}

	return nil
}

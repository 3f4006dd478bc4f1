// Package scene loads and validates the YAML scene descriptions replayed by
// batchsim.
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andrew-d/drawbatch"
)

// Scene validation errors.
var (
	ErrInvalidScene  = errors.New("invalid scene")
	ErrNoPipelines   = errors.New("scene has no pipelines")
	ErrDuplicateName = errors.New("duplicate name")
)

// Defaults applied to fields left unset.
const (
	DefaultFrames    = 60
	DefaultProducers = 4
	DefaultChunkSize = 32
)

// Scene describes a synthetic workload: which pipelines draw which meshes,
// with how many instances, for how many frames.
type Scene struct {
	Name string `yaml:"name"`

	// Frames is the number of frames to replay.
	Frames int `yaml:"frames"`
	// Producers is the number of goroutines extracting instances per frame.
	Producers int `yaml:"producers"`
	// ChunkSize is the number of instances a producer submits at once.
	// Smaller chunks mean more merges per batch.
	ChunkSize int `yaml:"chunk_size"`
	// PruneEvery prunes idle pipelines every n frames; 0 never prunes.
	PruneEvery int `yaml:"prune_every"`
	// ScanWindow overrides the store's merge scan window.
	ScanWindow *int `yaml:"scan_window"`

	Pipelines []Pipeline `yaml:"pipelines"`
}

// Pipeline is a primary batching key and the meshes drawn with it.
type Pipeline struct {
	Name   string `yaml:"name"`
	Meshes []Mesh `yaml:"meshes"`
}

// Mesh is a secondary batching key.
type Mesh struct {
	Name      string `yaml:"name"`
	Instances int    `yaml:"instances"`
	// Every draws the mesh only on frames divisible by Every.
	Every int `yaml:"every"`
}

// Visible reports whether m is drawn on the given frame.
func (m Mesh) Visible(frame int) bool {
	return frame%m.Every == 0
}

// Window returns the scan window to configure the store with.
func (s *Scene) Window() int {
	if s.ScanWindow == nil {
		return drawbatch.DefaultScanWindow
	}
	return *s.ScanWindow
}

// Load reads, defaults and validates the scene at path. A scene without a
// name is named after its file.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Parse reads, defaults and validates a scene from r.
func Parse(r io.Reader) (*Scene, error) {
	s, err := decode(r)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func decode(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scene
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScene)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	s.applyDefaults()
	return &s, nil
}

func (s *Scene) applyDefaults() {
	if s.Frames == 0 {
		s.Frames = DefaultFrames
	}
	if s.Producers == 0 {
		s.Producers = DefaultProducers
	}
	if s.ChunkSize == 0 {
		s.ChunkSize = DefaultChunkSize
	}
	for i := range s.Pipelines {
		for j := range s.Pipelines[i].Meshes {
			if s.Pipelines[i].Meshes[j].Every == 0 {
				s.Pipelines[i].Meshes[j].Every = 1
			}
		}
	}
}

// Validate checks s for values the simulation cannot run with.
func (s *Scene) Validate() error {
	switch {
	case s.Frames < 0:
		return fmt.Errorf("%w: frames must be >= 0, got %d", ErrInvalidScene, s.Frames)
	case s.Producers < 0:
		return fmt.Errorf("%w: producers must be >= 0, got %d", ErrInvalidScene, s.Producers)
	case s.ChunkSize < 0:
		return fmt.Errorf("%w: chunk_size must be >= 0, got %d", ErrInvalidScene, s.ChunkSize)
	case s.PruneEvery < 0:
		return fmt.Errorf("%w: prune_every must be >= 0, got %d", ErrInvalidScene, s.PruneEvery)
	case s.ScanWindow != nil && *s.ScanWindow < 0:
		return fmt.Errorf("%w: scan_window must be >= 0, got %d", ErrInvalidScene, *s.ScanWindow)
	case len(s.Pipelines) == 0:
		return ErrNoPipelines
	}

	pipelines := make(map[string]bool, len(s.Pipelines))
	for _, p := range s.Pipelines {
		if p.Name == "" {
			return fmt.Errorf("%w: pipeline without a name", ErrInvalidScene)
		}
		if pipelines[p.Name] {
			return fmt.Errorf("%w: pipeline %q", ErrDuplicateName, p.Name)
		}
		pipelines[p.Name] = true

		meshes := make(map[string]bool, len(p.Meshes))
		for _, m := range p.Meshes {
			if m.Name == "" {
				return fmt.Errorf("%w: pipeline %q has a mesh without a name", ErrInvalidScene, p.Name)
			}
			if meshes[m.Name] {
				return fmt.Errorf("%w: mesh %q in pipeline %q", ErrDuplicateName, m.Name, p.Name)
			}
			meshes[m.Name] = true

			if m.Instances < 0 {
				return fmt.Errorf("%w: mesh %q: instances must be >= 0, got %d", ErrInvalidScene, m.Name, m.Instances)
			}
			if m.Every < 1 {
				return fmt.Errorf("%w: mesh %q: every must be >= 1, got %d", ErrInvalidScene, m.Name, m.Every)
			}
		}
	}
	return nil
}

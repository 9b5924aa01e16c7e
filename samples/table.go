package samples

import (
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/beatgrid/beatgrid"
	"github.com/ossrs/go-oryx-lib/errors"
	"gopkg.in/yaml.v3"
)

type (
	// Sample is a piece of reference audio a track can play. Its metadata is
	// immutable; the decoded audio arrives asynchronously and is published
	// exactly once through an atomic pointer, so the scheduler can read it at
	// any time without blocking. A nil Buffer means "not decoded yet".
	Sample struct {
		ID   string
		Kind string
		Path string

		buffer atomic.Pointer[beatgrid.Buffer]
	}

	// Table is the read-mostly set of samples known to the application,
	// indexed by id.
	Table struct {
		samples []*Sample
		byID    map[string]*Sample
	}

	// Kit is the on-disk description of a sample table. Sample ids are their
	// positions in the list.
	Kit struct {
		Samples []KitEntry `yaml:"samples"`
	}

	KitEntry struct {
		Kind string `yaml:"kind"`
		Path string `yaml:"path"`
	}
)

// Buffer returns the decoded audio, or nil if it is not decoded yet.
func (s *Sample) Buffer() *beatgrid.Buffer { return s.buffer.Load() }

// SetBuffer publishes the decoded audio.
func (s *Sample) SetBuffer(b *beatgrid.Buffer) { s.buffer.Store(b) }

// Ref returns the metadata of the sample.
func (s *Sample) Ref() beatgrid.SampleRef {
	return beatgrid.SampleRef{ID: s.ID, Kind: s.Kind, Path: s.Path}
}

// NewTable returns a table of undecoded samples.
func NewTable(refs []beatgrid.SampleRef) *Table {
	t := &Table{byID: make(map[string]*Sample, len(refs))}
	for _, r := range refs {
		s := &Sample{ID: r.ID, Kind: r.Kind, Path: r.Path}
		t.samples = append(t.samples, s)
		t.byID[s.ID] = s
	}
	return t
}

// Sample returns the sample with the given id.
func (t *Table) Sample(id string) (*Sample, bool) {
	s, ok := t.byID[id]
	return s, ok
}

// SampleBuffer returns the decoded audio of a sample. The buffer is nil while
// the sample is still being decoded, or if decoding failed.
func (t *Table) SampleBuffer(id string) (*beatgrid.Buffer, bool) {
	s, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return s.Buffer(), true
}

// All returns the samples in table order.
func (t *Table) All() []*Sample { return t.samples }

// Refs returns the metadata of every sample in table order.
func (t *Table) Refs() []beatgrid.SampleRef {
	ret := make([]beatgrid.SampleRef, len(t.samples))
	for i, s := range t.samples {
		ret[i] = s.Ref()
	}
	return ret
}

// Loaded returns how many samples have their audio decoded.
func (t *Table) Loaded() int {
	n := 0
	for _, s := range t.samples {
		if s.Buffer() != nil {
			n++
		}
	}
	return n
}

// Table builds a sample table from the kit. Relative paths are resolved
// against dir.
func (k Kit) Table(dir string) *Table {
	refs := make([]beatgrid.SampleRef, len(k.Samples))
	for i, e := range k.Samples {
		p := e.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		refs[i] = beatgrid.SampleRef{ID: strconv.Itoa(i), Kind: e.Kind, Path: p}
	}
	return NewTable(refs)
}

// ReadKit reads a kit file and returns its sample table, with sample paths
// relative to the kit file.
func ReadKit(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read kit %v", path)
	}
	var k Kit
	if err := yaml.Unmarshal(b, &k); err != nil {
		return nil, errors.Wrapf(err, "parse kit %v", path)
	}
	return k.Table(filepath.Dir(path)), nil
}

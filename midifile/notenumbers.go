package midifile

import (
	_ "embed"
	"os"

	"github.com/ossrs/go-oryx-lib/errors"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

type (
	// Candidates are the note numbers a sample kind may be mapped to, in
	// order of preference.
	Candidates []uint8

	// NoteNumberMap maps sample kinds to candidate note numbers. Kinds are
	// matched case-insensitively.
	NoteNumberMap map[string]Candidates
)

//go:embed gm.yml
var gmYaml []byte

// UnmarshalYAML accepts either a single note number or a list of them.
func (c *Candidates) UnmarshalYAML(value *yaml.Node) error {
	var numbers []int
	switch value.Kind {
	case yaml.ScalarNode:
		var n int
		if err := value.Decode(&n); err != nil {
			return err
		}
		numbers = []int{n}
	case yaml.SequenceNode:
		if err := value.Decode(&numbers); err != nil {
			return err
		}
	default:
		return errors.Errorf("line %v: expected a note number or a list of them", value.Line)
	}
	ret := make(Candidates, len(numbers))
	for i, n := range numbers {
		if n < 0 || n > maxNoteNumber {
			return errors.Errorf("line %v: note number %v out of range", value.Line, n)
		}
		ret[i] = uint8(n)
	}
	*c = ret
	return nil
}

// ParseNoteNumberMap parses a YAML note number map.
func ParseNoteNumberMap(b []byte) (NoteNumberMap, error) {
	var raw map[string]Candidates
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrapf(err, "parse note number map")
	}
	ret := make(NoteNumberMap, len(raw))
	for k, v := range raw {
		ret[foldKind(k)] = v
	}
	return ret, nil
}

// ReadNoteNumberMap reads a note number map file.
func ReadNoteNumberMap(path string) (NoteNumberMap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read note number map %v", path)
	}
	return ParseNoteNumberMap(b)
}

// GeneralMIDI returns the built-in map of drum kinds to General MIDI
// percussion keys.
func GeneralMIDI() NoteNumberMap {
	m, err := ParseNoteNumberMap(gmYaml)
	if err != nil {
		panic(err)
	}
	return m
}

// Lookup returns the candidates of a kind.
func (m NoteNumberMap) Lookup(kind string) (Candidates, bool) {
	c, ok := m[foldKind(kind)]
	return c, ok
}

func foldKind(kind string) string {
	return cases.Fold().String(kind)
}

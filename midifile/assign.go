package midifile

import (
	"github.com/beatgrid/beatgrid"
	"github.com/ossrs/go-oryx-lib/errors"
)

const (
	maxNoteNumber = 127
	// General MIDI percussion keys span 27..87; fallback numbers grow
	// outward from this range
	gmLowest  = 27
	gmHighest = 87
)

var ErrNoteNumbersExhausted = errors.New("all MIDI note numbers are in use")

// Mapping is a one-to-one mapping between tracks and MIDI note numbers.
type Mapping struct {
	byNumber map[uint8]string
	byTrack  map[string]uint8
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{byNumber: map[uint8]string{}, byTrack: map[string]uint8{}}
}

// Note returns the note number of a track.
func (m *Mapping) Note(trackID string) (uint8, bool) {
	n, ok := m.byTrack[trackID]
	return n, ok
}

// Track returns the track of a note number.
func (m *Mapping) Track(number uint8) (string, bool) {
	t, ok := m.byNumber[number]
	return t, ok
}

// Len returns the number of mapped tracks.
func (m *Mapping) Len() int { return len(m.byTrack) }

func (m *Mapping) used(number uint8) bool {
	_, ok := m.byNumber[number]
	return ok
}

func (m *Mapping) set(trackID string, number uint8) {
	m.byNumber[number] = trackID
	m.byTrack[trackID] = number
}

// nextAvailable grows the used range outward from the General MIDI
// percussion range, downward first.
func (m *Mapping) nextAvailable() (uint8, error) {
	lo, hi := gmLowest, gmHighest
	for n := range m.byNumber {
		lo = min(lo, int(n))
		hi = max(hi, int(n))
	}
	switch {
	case lo > 0:
		return uint8(lo - 1), nil
	case hi < maxNoteNumber:
		return uint8(hi + 1), nil
	}
	return 0, ErrNoteNumbersExhausted
}

// Assign gives every track a distinct note number, processing tracks in
// order: the first free candidate of the track's sample kind, or else the
// next available number. The result depends on the order of the tracks.
// Tracks whose sample or kind is unknown get the next available number.
func Assign(numbers NoteNumberMap, tracks []beatgrid.Track, samples []beatgrid.SampleRef) (*Mapping, error) {
	kinds := make(map[string]string, len(samples))
	for _, s := range samples {
		kinds[s.ID] = s.Kind
	}
	m := NewMapping()
	for _, t := range tracks {
		if _, ok := m.byTrack[t.ID]; ok {
			continue
		}
		var candidates Candidates
		if kind, ok := kinds[t.SampleID]; ok {
			candidates, _ = numbers.Lookup(kind)
		}
		assigned := false
		for _, c := range candidates {
			if !m.used(c) {
				m.set(t.ID, c)
				assigned = true
				break
			}
		}
		if assigned {
			continue
		}
		n, err := m.nextAvailable()
		if err != nil {
			return nil, errors.Wrapf(err, "track %v (%v)", t.ID, t.Name)
		}
		m.set(t.ID, n)
	}
	return m, nil
}

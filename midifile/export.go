// Package midifile exports a drum pattern as a Standard MIDI File.
//
// Every track of the pattern is given its own note number (see Assign), and
// all hits go to a single MIDI track on the General MIDI percussion channel.
// Identical inputs always produce identical bytes.
package midifile

import (
	"cmp"
	"io"
	"math"
	"slices"

	"github.com/beatgrid/beatgrid"
	"github.com/ossrs/go-oryx-lib/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Channel is the zero-based MIDI channel of the export: channel 10, General
// MIDI percussion.
const Channel = 9

// defaultQuantize is used for the note length of tracks without a grid.
const defaultQuantize = 16

type (
	// Event is a note on or note off at an absolute Time in ticks. Delta is
	// the distance in ticks from the previous event.
	Event struct {
		On       bool
		Key      uint8
		Velocity uint8
		Time     uint32
		Delta    uint32
	}

	// Export is everything written to the MIDI file.
	Export struct {
		Tempo   float64
		PPQN    int
		Events  []Event
		Tracks  []beatgrid.Track
		Mapping *Mapping
	}
)

// Events turns notes into delta-timed note on and note off events. Each note
// lasts one grid step of its track. Events are ordered by time; events at
// the same time keep the order of the notes sorted by start, a note's off
// before the next note's on. Notes of tracks missing from tracks or mapping
// are skipped.
func Events(notes []beatgrid.Note, tracks []beatgrid.Track, mapping *Mapping, ppqn int) []Event {
	byID := make(map[string]beatgrid.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}
	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, func(a, b beatgrid.Note) int { return cmp.Compare(a.Start, b.Start) })

	events := make([]Event, 0, 2*len(sorted))
	for _, n := range sorted {
		t, ok := byID[n.TrackID]
		if !ok {
			continue
		}
		key, ok := mapping.Note(n.TrackID)
		if !ok {
			continue
		}
		q := t.Quantize
		if q <= 0 {
			q = defaultQuantize
		}
		on := math.Round(math.Max(0, n.Start))
		off := math.Round(math.Max(0, n.Start+beatgrid.TicksPerStep(ppqn, q)))
		vel := uint8(max(1, min(n.Velocity, beatgrid.MaxVelocity)))
		events = append(events,
			Event{On: true, Key: key, Velocity: vel, Time: uint32(on)},
			Event{On: false, Key: key, Velocity: 0, Time: uint32(off)},
		)
	}
	slices.SortStableFunc(events, func(a, b Event) int { return cmp.Compare(a.Time, b.Time) })
	for i := range events {
		if i > 0 {
			events[i].Delta = events[i].Time - events[i-1].Time
		}
	}
	return events
}

// Write writes the export as a single track Standard MIDI File.
func Write(w io.Writer, e Export) error {
	if e.PPQN <= 0 || e.PPQN > math.MaxUint16 {
		return errors.Errorf("invalid ppqn %v", e.PPQN)
	}
	if e.Tempo <= 0 {
		return errors.Errorf("invalid tempo %v", e.Tempo)
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(e.PPQN)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(e.Tempo))
	for _, ev := range e.Events {
		if ev.On {
			tr.Add(ev.Delta, midi.NoteOn(Channel, ev.Key, ev.Velocity))
		} else {
			tr.Add(ev.Delta, midi.NoteOff(Channel, ev.Key))
		}
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		return errors.Wrapf(err, "add track")
	}
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrapf(err, "write midi")
	}
	return nil
}

// ExportProject applies the project swing to the notes, assigns note numbers
// to the tracks and writes the MIDI file. Running out of note numbers aborts
// the export before anything is written.
func ExportProject(w io.Writer, p beatgrid.Project, samples []beatgrid.SampleRef, numbers NoteNumberMap, ppqn int) (Export, error) {
	mapping, err := Assign(numbers, p.Tracks, samples)
	if err != nil {
		return Export{}, errors.Wrapf(err, "assign note numbers")
	}
	notes := beatgrid.SwingNotes(p.Notes, p.Swing, ppqn)
	e := Export{
		Tempo:   p.Tempo,
		PPQN:    ppqn,
		Events:  Events(notes, p.Tracks, mapping, ppqn),
		Tracks:  p.Tracks,
		Mapping: mapping,
	}
	if err := Write(w, e); err != nil {
		return Export{}, err
	}
	return e, nil
}

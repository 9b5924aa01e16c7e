package beatgrid

import (
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SampleRef is the metadata of a sample that project edits need: which
// sample a track plays and what kind of percussion it is.
type SampleRef struct {
	ID   string
	Kind string
	Path string
}

// TogglePad adds a full-velocity note at start, or removes the note that is
// already there.
func (p *Project) TogglePad(trackID string, start float64) {
	if i := p.noteIndex(trackID, start); i != -1 {
		p.Notes = append(p.Notes[:i:i], p.Notes[i+1:]...)
		return
	}
	p.Notes = append(p.Notes, Note{TrackID: trackID, Start: start, Velocity: MaxVelocity})
}

// SetNoteVelocity sets the velocity of the note at start, adding the note if
// needed. A velocity of zero removes the note.
func (p *Project) SetNoteVelocity(trackID string, start float64, velocity int) {
	velocity = clamp(velocity, 0, MaxVelocity)
	i := p.noteIndex(trackID, start)
	switch {
	case i == -1 && velocity > 0:
		p.Notes = append(p.Notes, Note{TrackID: trackID, Start: start, Velocity: velocity})
	case i == -1:
	case velocity == 0:
		p.Notes = append(p.Notes[:i:i], p.Notes[i+1:]...)
	default:
		p.Notes[i].Velocity = velocity
	}
}

// SetTempo sets the tempo, clamped to MinTempo..MaxTempo.
func (p *Project) SetTempo(tempo float64) {
	p.Tempo = min(max(tempo, MinTempo), MaxTempo)
}

// SetSwing sets the swing amount, clamped to 0..1.
func (p *Project) SetSwing(swing float64) {
	p.Swing = min(max(swing, 0), 1)
}

// SetTimeSignature sets the measure length. Notes are kept as they are.
func (p *Project) SetTimeSignature(ts TimeSignature) {
	p.BeatUnitsPerMeasure = ts.BeatUnitsPerMeasure
	p.BeatUnit = ts.BeatUnit
}

// ChangeTrackQuantize changes the grid of a track and remaps its notes onto
// the new grid, see RequantizeNotes.
func (p *Project) ChangeTrackQuantize(trackID string, quantize, ppqn int) {
	i := p.trackIndex(trackID)
	if i == -1 {
		return
	}
	prev := p.Tracks[i].Quantize
	p.Tracks[i].Quantize = quantize
	p.Notes = RequantizeNotes(p.Notes, trackID, prev, quantize, ppqn)
}

// AddTrack appends a new track playing the given sample and returns its id.
// The track is named after the sample file.
func (p *Project) AddTrack(sample SampleRef) string {
	id := uuid.NewString()
	base := filepath.Base(sample.Path)
	p.Tracks = append(p.Tracks, Track{
		ID:       id,
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		SampleID: sample.ID,
		Quantize: 16,
		Volume:   1,
		Pan:      0,
		Pitch:    0.5,
	})
	return id
}

// DuplicateTrack inserts a copy of the track right after it, together with
// copies of its notes, and returns the id of the copy.
func (p *Project) DuplicateTrack(trackID string) (string, bool) {
	i := p.trackIndex(trackID)
	if i == -1 {
		return "", false
	}
	t := p.Tracks[i]
	t.ID = uuid.NewString()
	p.Tracks = append(p.Tracks[:i+1:i+1], append([]Track{t}, p.Tracks[i+1:]...)...)
	for _, n := range p.Notes {
		if n.TrackID == trackID {
			n.TrackID = t.ID
			p.Notes = append(p.Notes, n)
		}
	}
	return t.ID, true
}

// DeleteTrack removes a track and all its notes.
func (p *Project) DeleteTrack(trackID string) {
	tracks := p.Tracks[:0:0]
	for _, t := range p.Tracks {
		if t.ID != trackID {
			tracks = append(tracks, t)
		}
	}
	p.Tracks = tracks
	p.ClearTrackNotes(trackID)
}

// ClearTrackNotes removes every note of a track.
func (p *Project) ClearTrackNotes(trackID string) {
	notes := p.Notes[:0:0]
	for _, n := range p.Notes {
		if n.TrackID != trackID {
			notes = append(notes, n)
		}
	}
	p.Notes = notes
}

// UpdateTrack applies f to the track with the given id, if it exists.
func (p *Project) UpdateTrack(trackID string, f func(t *Track)) {
	if i := p.trackIndex(trackID); i != -1 {
		f(&p.Tracks[i])
	}
}

// SetTrackSample changes the sample a track plays.
func (p *Project) SetTrackSample(trackID, sampleID string) {
	p.UpdateTrack(trackID, func(t *Track) { t.SampleID = sampleID })
}

// SetTrackVolume sets the track volume, clamped to 0..1.
func (p *Project) SetTrackVolume(trackID string, volume float64) {
	p.UpdateTrack(trackID, func(t *Track) { t.Volume = min(max(volume, 0), 1) })
}

// SetTrackPan sets the track pan, clamped to -1..1.
func (p *Project) SetTrackPan(trackID string, pan float64) {
	p.UpdateTrack(trackID, func(t *Track) { t.Pan = min(max(pan, -1), 1) })
}

// SetTrackPitch sets the track pitch, clamped to 0..1. 0.5 is the original pitch.
func (p *Project) SetTrackPitch(trackID string, pitch float64) {
	p.UpdateTrack(trackID, func(t *Track) { t.Pitch = min(max(pitch, 0), 1) })
}

// SetTrackSolo solos or unsolos a track.
func (p *Project) SetTrackSolo(trackID string, solo bool) {
	p.UpdateTrack(trackID, func(t *Track) { t.Solo = solo })
}

// SetTrackMute mutes or unmutes a track.
func (p *Project) SetTrackMute(trackID string, mute bool) {
	p.UpdateTrack(trackID, func(t *Track) { t.Mute = mute })
}

// DoublePattern appends a copy of every note shifted by the current pattern
// length, doubling the number of measures.
func (p *Project) DoublePattern(ppqn int) {
	offset := p.LoopTicks(ppqn)
	n := len(p.Notes)
	for _, note := range p.Notes[:n] {
		note.Start += offset
		p.Notes = append(p.Notes, note)
	}
}

// ClearPattern removes every note of every track.
func (p *Project) ClearPattern() {
	p.Notes = nil
}

// RandomizeKit gives every track a random sample of the same kind as its
// current one. Tracks whose sample is unknown keep it.
func (p *Project) RandomizeKit(samples []SampleRef, r *rand.Rand) {
	byID := make(map[string]SampleRef, len(samples))
	byKind := make(map[string][]SampleRef)
	for _, s := range samples {
		byID[s.ID] = s
		byKind[s.Kind] = append(byKind[s.Kind], s)
	}
	for i, t := range p.Tracks {
		old, ok := byID[t.SampleID]
		if !ok {
			continue
		}
		candidates := byKind[old.Kind]
		p.Tracks[i].SampleID = candidates[r.IntN(len(candidates))].ID
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

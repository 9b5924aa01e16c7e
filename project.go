package beatgrid

type (
	// Project is the unit of persistence: the tempo and feel of the pattern,
	// its time signature, the tracks and the notes placed on the tracks. The
	// engine treats a Project as read-only; edits happen through the functions
	// in edit.go, usually via a ProjectStore, and produce a new snapshot that
	// the player reads on its next tick.
	Project struct {
		Tempo               float64 `json:"tempo" yaml:"tempo"`
		Swing               float64 `json:"swing" yaml:"swing"`
		BeatUnitsPerMeasure int     `json:"beat_units_per_measure" yaml:"beat_units_per_measure"`
		BeatUnit            int     `json:"beat_unit" yaml:"beat_unit"`
		Tracks              []Track `json:"tracks" yaml:"tracks"`
		Notes               []Note  `json:"notes" yaml:"notes"`
	}

	// Track is one row of the drum grid. It plays a single sample, and its
	// Quantize sets the grid resolution of the row in steps per whole note
	// (4 = quarter notes, 16 = sixteenths, 6/12/24/48 = triplets). Volume is in
	// [0,1], Pan in [-1,1] and Pitch in [0,1] with 0.5 meaning the original
	// pitch.
	Track struct {
		ID       string  `json:"id" yaml:"id"`
		Name     string  `json:"name" yaml:"name"`
		SampleID string  `json:"sample_id" yaml:"sample_id"`
		Quantize int     `json:"quantize" yaml:"quantize"`
		Volume   float64 `json:"volume" yaml:"volume"`
		Pan      float64 `json:"pan" yaml:"pan"`
		Pitch    float64 `json:"pitch" yaml:"pitch"`
		Solo     bool    `json:"solo" yaml:"solo"`
		Mute     bool    `json:"mute" yaml:"mute"`
	}

	// Note is a hit on a track. Start is in ticks from the beginning of the
	// pattern and can be fractional for triplet grids. A note with zero
	// velocity does not exist; there is at most one note per (TrackID, Start).
	Note struct {
		TrackID  string  `json:"track_id" yaml:"track_id"`
		Start    float64 `json:"start" yaml:"start"`
		Velocity int     `json:"velocity" yaml:"velocity"`
	}

	// QuantizeOption is a selectable grid resolution with its display label.
	QuantizeOption struct {
		Value int
		Label string
	}

	// TimeSignature is a selectable time signature.
	TimeSignature struct {
		BeatUnitsPerMeasure int
		BeatUnit            int
	}
)

const (
	PPQN         = 480 // pulses (ticks) per quarter note
	MaxVelocity  = 127
	MinTempo     = 30
	MaxTempo     = 240
	DefaultTempo = 120
)

var Quantizes = []QuantizeOption{
	{4, "1/4"},
	{6, "1/4T"},
	{8, "1/8"},
	{12, "1/8T"},
	{16, "1/16"},
	{24, "1/16T"},
	{32, "1/32"},
	{48, "1/32T"},
}

var TimeSignatures = []TimeSignature{
	{1, 4}, {2, 4}, {3, 4}, {4, 4}, {5, 4}, {6, 4}, {7, 4}, {8, 4},
}

// NewProject returns an empty 4/4 project at the default tempo.
func NewProject() Project {
	return Project{
		Tempo:               DefaultTempo,
		BeatUnitsPerMeasure: 4,
		BeatUnit:            4,
	}
}

// Tick returns the start of the note truncated toward zero. Fractional starts
// only happen on triplet grids, and playback matches on the truncated tick.
func (n Note) Tick() int {
	return int(n.Start)
}

// Track returns the track with the given id.
func (p *Project) Track(id string) (Track, bool) {
	for _, t := range p.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}

func (p *Project) trackIndex(id string) int {
	for i, t := range p.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (p *Project) noteIndex(trackID string, start float64) int {
	for i, n := range p.Notes {
		if n.TrackID == trackID && n.Start == start {
			return i
		}
	}
	return -1
}

// AnySolo reports whether at least one track is soloed. When true, all tracks
// that are not soloed are silent regardless of their mute flag.
func (p *Project) AnySolo() bool {
	for _, t := range p.Tracks {
		if t.Solo {
			return true
		}
	}
	return false
}

// Audible reports whether t should sound given the solo override.
func (t Track) Audible(anySolo bool) bool {
	if t.Mute && !t.Solo {
		return false
	}
	if anySolo && !t.Solo {
		return false
	}
	return true
}

// Copy returns a deep copy of the project, so that the copy can be edited
// without affecting snapshots that other goroutines may be reading.
func (p Project) Copy() Project {
	ret := p
	ret.Tracks = append([]Track(nil), p.Tracks...)
	ret.Notes = append([]Note(nil), p.Notes...)
	return ret
}

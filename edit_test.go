package beatgrid_test

import (
	"bytes"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"

	"github.com/beatgrid/beatgrid"
)

func twoTrackProject() beatgrid.Project {
	p := beatgrid.NewProject()
	p.Tracks = []beatgrid.Track{
		{ID: "kick", Name: "kick", SampleID: "0", Quantize: 16, Volume: 1, Pitch: 0.5},
		{ID: "snare", Name: "snare", SampleID: "1", Quantize: 16, Volume: 1, Pitch: 0.5},
	}
	p.Notes = []beatgrid.Note{
		{TrackID: "kick", Start: 0, Velocity: 127},
		{TrackID: "snare", Start: 480, Velocity: 100},
	}
	return p
}

func TestTogglePad(t *testing.T) {
	p := twoTrackProject()
	p.TogglePad("kick", 960)
	if len(p.Notes) != 3 || p.Notes[2] != (beatgrid.Note{TrackID: "kick", Start: 960, Velocity: beatgrid.MaxVelocity}) {
		t.Fatalf("pad not added: %v", p.Notes)
	}
	p.TogglePad("kick", 0)
	if want := []float64{960}; !reflect.DeepEqual(starts(p.Notes, "kick"), want) {
		t.Fatalf("pad not removed: %v", p.Notes)
	}
}

func TestSetNoteVelocity(t *testing.T) {
	p := twoTrackProject()
	p.SetNoteVelocity("snare", 480, 64)
	if p.Notes[1].Velocity != 64 {
		t.Fatalf("velocity = %d, want 64", p.Notes[1].Velocity)
	}
	p.SetNoteVelocity("snare", 480, 0)
	if len(starts(p.Notes, "snare")) != 0 {
		t.Fatalf("zero velocity did not remove the note: %v", p.Notes)
	}
	p.SetNoteVelocity("snare", 720, 0)
	if len(starts(p.Notes, "snare")) != 0 {
		t.Fatalf("zero velocity created a note: %v", p.Notes)
	}
	p.SetNoteVelocity("snare", 720, 300)
	if n := p.Notes[len(p.Notes)-1]; n.Start != 720 || n.Velocity != beatgrid.MaxVelocity {
		t.Fatalf("note = %v, want clamped velocity at 720", n)
	}
}

func TestSetTempoClamps(t *testing.T) {
	p := beatgrid.NewProject()
	p.SetTempo(10)
	if p.Tempo != beatgrid.MinTempo {
		t.Fatalf("tempo = %v, want %v", p.Tempo, beatgrid.MinTempo)
	}
	p.SetTempo(1000)
	if p.Tempo != beatgrid.MaxTempo {
		t.Fatalf("tempo = %v, want %v", p.Tempo, beatgrid.MaxTempo)
	}
}

func TestChangeTrackQuantize(t *testing.T) {
	p := twoTrackProject()
	p.Notes = append(p.Notes, beatgrid.Note{TrackID: "kick", Start: 120, Velocity: 127})
	p.ChangeTrackQuantize("kick", 8, beatgrid.PPQN)
	tr, _ := p.Track("kick")
	if tr.Quantize != 8 {
		t.Fatalf("quantize = %d, want 8", tr.Quantize)
	}
	if want := []float64{0}; !reflect.DeepEqual(starts(p.Notes, "kick"), want) {
		t.Fatalf("kick notes = %v, want %v", starts(p.Notes, "kick"), want)
	}
	if want := []float64{480}; !reflect.DeepEqual(starts(p.Notes, "snare"), want) {
		t.Fatalf("snare notes = %v, want %v", starts(p.Notes, "snare"), want)
	}
}

func TestAddDuplicateDeleteTrack(t *testing.T) {
	p := twoTrackProject()
	id := p.AddTrack(beatgrid.SampleRef{ID: "7", Kind: "clap", Path: "samples/909/clap.wav"})
	tr, ok := p.Track(id)
	if !ok || tr.Name != "clap" || tr.Quantize != 16 || tr.Pitch != 0.5 || tr.Volume != 1 {
		t.Fatalf("added track = %+v", tr)
	}
	dup, ok := p.DuplicateTrack("kick")
	if !ok || dup == "kick" {
		t.Fatalf("DuplicateTrack = %q, %v", dup, ok)
	}
	if p.Tracks[1].ID != dup {
		t.Fatalf("duplicate not inserted after the original: %v", p.Tracks)
	}
	if want := []float64{0}; !reflect.DeepEqual(starts(p.Notes, dup), want) {
		t.Fatalf("duplicate notes = %v", starts(p.Notes, dup))
	}
	p.DeleteTrack("kick")
	if _, ok := p.Track("kick"); ok {
		t.Fatalf("track not deleted")
	}
	if len(starts(p.Notes, "kick")) != 0 {
		t.Fatalf("notes of deleted track remain")
	}
	if len(starts(p.Notes, dup)) != 1 {
		t.Fatalf("deleting the original removed notes of the copy")
	}
}

func TestDoublePattern(t *testing.T) {
	p := twoTrackProject()
	p.DoublePattern(beatgrid.PPQN)
	if want := []float64{0, 1920}; !reflect.DeepEqual(starts(p.Notes, "kick"), want) {
		t.Fatalf("kick = %v, want %v", starts(p.Notes, "kick"), want)
	}
	if got := beatgrid.NumMeasures(p.Notes, beatgrid.PPQN, 4, 4); got != 2 {
		t.Fatalf("measures = %d, want 2", got)
	}
	p.ClearPattern()
	if len(p.Notes) != 0 {
		t.Fatalf("pattern not cleared")
	}
}

func TestRandomizeKitKeepsKind(t *testing.T) {
	samples := []beatgrid.SampleRef{
		{ID: "0", Kind: "kick"}, {ID: "1", Kind: "snare"}, {ID: "2", Kind: "kick"}, {ID: "3", Kind: "snare"},
	}
	kinds := map[string]string{"0": "kick", "1": "snare", "2": "kick", "3": "snare"}
	p := twoTrackProject()
	p.Tracks = append(p.Tracks, beatgrid.Track{ID: "x", SampleID: "missing"})
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		p.RandomizeKit(samples, r)
		if kinds[p.Tracks[0].SampleID] != "kick" || kinds[p.Tracks[1].SampleID] != "snare" {
			t.Fatalf("kind changed: %v", p.Tracks)
		}
		if p.Tracks[2].SampleID != "missing" {
			t.Fatalf("unknown sample was replaced")
		}
	}
}

func TestProjectStoreSnapshots(t *testing.T) {
	s := beatgrid.NewProjectStore(twoTrackProject())
	before := s.Project()
	calls := 0
	s.OnChange(func(beatgrid.Project) { calls++ })
	s.Update(func(p *beatgrid.Project) { p.SetNoteVelocity("kick", 0, 10) })
	if before.Notes[0].Velocity != 127 {
		t.Fatalf("update modified an earlier snapshot")
	}
	if got := s.Project().Notes[0].Velocity; got != 10 {
		t.Fatalf("velocity = %d, want 10", got)
	}
	if calls != 1 {
		t.Fatalf("listener called %d times, want 1", calls)
	}
}

func TestReadWriteProject(t *testing.T) {
	const doc = `{
  "tempo": 96,
  "swing": 0.25,
  "beat_units_per_measure": 3,
  "beat_unit": 4,
  "tracks": [{"id": "0", "name": "kick", "sample_id": "3", "quantize": 12, "volume": 0.8, "pan": -0.5, "pitch": 0.5, "solo": false, "mute": true}],
  "notes": [{"start": 106.66666666666667, "velocity": 127, "track_id": "0"}]
}`
	p, err := beatgrid.ReadProject(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadProject failed: %v", err)
	}
	if p.Tempo != 96 || p.BeatUnitsPerMeasure != 3 || !p.Tracks[0].Mute || p.Tracks[0].Quantize != 12 || p.Notes[0].Tick() != 106 {
		t.Fatalf("unexpected project %+v", p)
	}
	var buf bytes.Buffer
	if err := beatgrid.WriteProject(&buf, p, true); err != nil {
		t.Fatalf("WriteProject failed: %v", err)
	}
	back, err := beatgrid.ReadProject(&buf)
	if err != nil {
		t.Fatalf("reading yaml back failed: %v", err)
	}
	if !reflect.DeepEqual(back, p) {
		t.Fatalf("yaml round trip = %+v, want %+v", back, p)
	}
	if _, err := beatgrid.ReadProject(strings.NewReader("{not: [valid")); err == nil {
		t.Fatalf("expected an error for malformed input")
	}
}

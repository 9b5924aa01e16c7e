package sequencer_test

import (
	"math"
	"testing"

	"github.com/beatgrid/beatgrid"
	"github.com/beatgrid/beatgrid/sequencer"
)

func newScheduler(now float64) (*sequencer.Scheduler, *fakeClock, *fakeOutput) {
	clock := &fakeClock{now: now}
	out := &fakeOutput{}
	s := sequencer.NewScheduler(clock, out, sampleRate, beatgrid.PPQN)
	s.Reset()
	return s, clock, out
}

func TestSoloSuppressesUnsoloedTracks(t *testing.T) {
	a, b := track("A", "a"), track("B", "b")
	a.Solo = true
	p := project([]beatgrid.Track{a, b}, note("A", 0), note("B", 0), note("B", 200))
	s, clock, out := newScheduler(0)

	if n := s.Advance(p, kit()); n != 1 {
		t.Fatalf("scheduled %d voices, want only the soloed one", n)
	}
	// turning solo off takes effect from the next pass
	p.SetTrackSolo("A", false)
	clock.Set(0.15)
	if n := s.Advance(p, kit()); n != 1 {
		t.Fatalf("scheduled %d voices after unsolo, want 1", n)
	}
	voices := out.Voices()
	if !almostEqual(voices[1].Start, 200*tickSeconds) {
		t.Fatalf("B starts at %v, want %v", voices[1].Start, 200*tickSeconds)
	}
}

func TestSoloKeepsSuppressing(t *testing.T) {
	a, b := track("A", "a"), track("B", "b")
	a.Solo = true
	p := project([]beatgrid.Track{a, b}, note("B", 0), note("B", 200))
	s, clock, _ := newScheduler(0)
	s.Advance(p, kit())
	clock.Set(0.15)
	if n := s.Advance(p, kit()); n != 0 {
		t.Fatalf("scheduled %d voices of a suppressed track", n)
	}
}

func TestMuteAndSoloPrecedence(t *testing.T) {
	a, b := track("A", "a"), track("B", "b")
	a.Mute, a.Solo = true, true
	b.Mute = true
	p := project([]beatgrid.Track{a, b}, note("A", 0), note("B", 0))
	s, _, out := newScheduler(0)
	k := kit()
	if n := s.Advance(p, k); n != 1 {
		t.Fatalf("scheduled %d voices, want 1", n)
	}
	if out.Voices()[0].Buffer != k["a"] {
		t.Fatalf("muted but soloed track did not play")
	}
}

func TestOrphansAndUnknownSamplesAreSkipped(t *testing.T) {
	p := project([]beatgrid.Track{track("A", "nope")}, note("A", 0), note("deleted", 0))
	s, _, out := newScheduler(0)
	if n := s.Advance(p, kit()); n != 0 || len(out.Voices()) != 0 {
		t.Fatalf("scheduled %d voices, want none", n)
	}
}

func TestUndecodedSamplePlaysSilence(t *testing.T) {
	p := project([]beatgrid.Track{track("A", "undecoded")}, note("A", 0))
	s, _, out := newScheduler(1)
	if n := s.Advance(p, kit()); n != 1 {
		t.Fatalf("scheduled %d voices, want 1", n)
	}
	v := out.Voices()[0]
	if v.Buffer == nil || v.Buffer.Duration() != beatgrid.SilentPlaceholderSeconds {
		t.Fatalf("placeholder = %+v", v.Buffer)
	}
	for _, f := range v.Buffer.Frames {
		if f != [2]float32{} {
			t.Fatalf("placeholder is not silent")
		}
	}
	if !almostEqual(v.Stop-v.Start, beatgrid.SilentPlaceholderSeconds) {
		t.Fatalf("voice lasts %v", v.Stop-v.Start)
	}
}

func TestVolumeAndSwing(t *testing.T) {
	a := track("A", "a")
	a.Volume = 0.5
	p := project([]beatgrid.Track{a},
		beatgrid.Note{TrackID: "A", Start: 0, Velocity: 64},
		beatgrid.Note{TrackID: "A", Start: 60, Velocity: 127},
	)
	p.Swing = 1
	s, _, out := newScheduler(0)
	if n := s.Advance(p, kit()); n != 2 {
		t.Fatalf("scheduled %d voices, want 2", n)
	}
	voices := out.Voices()
	if want := 0.5 * 64 / 127.0 * sequencer.OutputHeadroom; !almostEqual(voices[0].Gain, want) {
		t.Fatalf("gain = %v, want %v", voices[0].Gain, want)
	}
	// tick 0 is pulled 30 ticks early and clamped to the start of the clock
	if voices[0].Start != 0 {
		t.Fatalf("first start = %v, want 0", voices[0].Start)
	}
	// tick 60 is off the half-beat grid and pushed 30 ticks late
	if want := 90 * tickSeconds; !almostEqual(voices[1].Start, want) {
		t.Fatalf("second start = %v, want %v", voices[1].Start, want)
	}
}

func TestFractionalStartsAreTruncated(t *testing.T) {
	p := project([]beatgrid.Track{track("A", "a")}, note("A", 53.33))
	s, _, out := newScheduler(0)
	s.Advance(p, kit())
	if v := out.Voices(); len(v) != 1 || !almostEqual(v[0].Start, 53*tickSeconds) {
		t.Fatalf("voices = %+v, want one at tick 53", v)
	}
}

func TestCursorWraps(t *testing.T) {
	p := project([]beatgrid.Track{track("A", "a")}, note("A", 0))
	loop := p.LoopTicks(beatgrid.PPQN)
	s, clock, out := newScheduler(0)
	for now := 0.0; now < 4.5; now += 0.05 {
		clock.Set(now)
		s.Advance(p, kit())
		if tick := s.Cursor().Tick; tick < 0 || float64(tick) >= loop {
			t.Fatalf("cursor tick %d outside [0,%v)", tick, loop)
		}
	}
	voices := out.Voices()
	if len(voices) != 3 {
		t.Fatalf("scheduled %d voices, want 3 loops", len(voices))
	}
	for i, v := range voices {
		if want := float64(i) * loop * tickSeconds; math.Abs(v.Start-want) > 1e-6 {
			t.Fatalf("loop %d starts at %v, want %v", i, v.Start, want)
		}
	}
}

func TestEmptyProjectSchedulesNothing(t *testing.T) {
	p := beatgrid.NewProject()
	s, clock, _ := newScheduler(0)
	for now := 0.0; now < 3; now += 0.1 {
		clock.Set(now)
		if n := s.Advance(p, kit()); n != 0 {
			t.Fatalf("scheduled %d voices in an empty project", n)
		}
	}
	if s.Cursor().Tick >= int(beatgrid.TicksPerMeasure(beatgrid.PPQN, 4, 4)) {
		t.Fatalf("cursor did not wrap at one measure: %d", s.Cursor().Tick)
	}
}

func TestWindowIsFilledOnce(t *testing.T) {
	p := project([]beatgrid.Track{track("A", "a")}, note("A", 0))
	s, _, _ := newScheduler(0)
	s.Advance(p, kit())
	c := s.Cursor()
	if c.NextNoteTime < sequencer.ScheduleAheadSeconds {
		t.Fatalf("window not filled: next note at %v", c.NextNoteTime)
	}
	if n := s.Advance(p, kit()); n != 0 || s.Cursor() != c {
		t.Fatalf("a second pass at the same time moved the cursor")
	}
}

func TestLimitStopsScheduling(t *testing.T) {
	p := project([]beatgrid.Track{track("A", "a")}, note("A", 0))
	s, clock, out := newScheduler(0)
	s.SetLimit(int(p.LoopTicks(beatgrid.PPQN)))
	for now := 0.0; now < 5; now += 0.05 {
		clock.Set(now)
		s.Advance(p, kit())
	}
	if !s.Done() || len(out.Voices()) != 1 {
		t.Fatalf("done = %v, voices = %d, want one loop only", s.Done(), len(out.Voices()))
	}
	s.Reset()
	if s.Done() {
		t.Fatalf("reset did not clear the limit counter")
	}
}

func TestZeroLengthMeasureSchedulesNothing(t *testing.T) {
	for _, sig := range [][2]int{{0, 4}, {4, 0}} {
		p := project([]beatgrid.Track{track("A", "a")}, note("A", 0))
		p.BeatUnitsPerMeasure, p.BeatUnit = sig[0], sig[1]
		s, clock, out := newScheduler(0)
		for now := 0.0; now < 1; now += 0.05 {
			clock.Set(now)
			s.Advance(p, kit())
		}
		if n := len(out.Voices()); n != 0 {
			t.Fatalf("signature %v/%v: scheduled %d voices, want none", sig[0], sig[1], n)
		}
		if c := s.Cursor(); c.Tick != 0 {
			t.Fatalf("signature %v/%v: cursor moved to tick %d", sig[0], sig[1], c.Tick)
		}
	}
}

func TestLoopLengthFollowsNoteChanges(t *testing.T) {
	tpm := beatgrid.TicksPerMeasure(beatgrid.PPQN, 4, 4) // 1920 ticks, 2 s
	p := project([]beatgrid.Track{track("A", "a")}, note("A", 0))
	s, clock, out := newScheduler(0)
	for now := 0.0; now < 1.5; now += 0.05 {
		clock.Set(now)
		s.Advance(p, kit())
	}
	// a note in the second measure extends the loop while playing
	p.Notes = append(p.Notes, note("A", 2400))
	for now := 1.5; now < 2.6; now += 0.05 {
		clock.Set(now)
		s.Advance(p, kit())
	}
	if tick := s.Cursor().Tick; float64(tick) <= tpm {
		t.Fatalf("cursor tick %d did not run past the first measure", tick)
	}
	voices := out.Voices()
	if len(voices) != 2 || !almostEqual(voices[1].Start, 2400*tickSeconds) {
		t.Fatalf("voices = %+v, want the added note at tick 2400", voices)
	}
	// removing it shrinks the loop back to one measure on the next pass
	p.Notes = p.Notes[:1]
	clock.Set(2.65)
	s.Advance(p, kit())
	if tick := s.Cursor().Tick; tick < 0 || float64(tick) >= tpm {
		t.Fatalf("cursor tick %d outside [0,%v) after the note was removed", tick, tpm)
	}
}

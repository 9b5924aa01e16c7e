package sequencer

import (
	"github.com/beatgrid/beatgrid"
)

// ScheduleAheadSeconds is the look-ahead window: every note starting before
// now+ScheduleAheadSeconds on the audio clock is scheduled on the next Tick.
const ScheduleAheadSeconds = 0.1

type (
	// Clock is the monotonic audio clock, in seconds.
	Clock interface {
		Now() float64
	}

	// SampleSource resolves sample ids to decoded audio. ok is false when the
	// id is unknown; a known sample that is not decoded yet returns a nil
	// buffer and ok == true.
	SampleSource interface {
		SampleBuffer(id string) (buf *beatgrid.Buffer, ok bool)
	}

	// ProjectSource returns the current project snapshot.
	ProjectSource interface {
		Project() beatgrid.Project
	}

	// Cursor is the playback position: the next tick to schedule and the
	// audio clock time at which it plays.
	Cursor struct {
		Tick         int
		NextNoteTime float64
	}

	// Scheduler is the look-ahead loop. It is not safe for concurrent use;
	// the Player owns it and is the only goroutine touching the cursor.
	Scheduler struct {
		clock      Clock
		out        VoiceOutput
		sampleRate int
		ppqn       int
		cursor     Cursor

		elapsed int // ticks advanced since Reset
		limit   int // stop after this many ticks, 0 for never
	}
)

// NewScheduler returns a scheduler that triggers voices on out, timed by clock.
func NewScheduler(clock Clock, out VoiceOutput, sampleRate, ppqn int) *Scheduler {
	return &Scheduler{clock: clock, out: out, sampleRate: sampleRate, ppqn: ppqn}
}

// Reset rewinds the cursor to tick 0, playing now.
func (s *Scheduler) Reset() {
	s.cursor = Cursor{Tick: 0, NextNoteTime: s.clock.Now()}
	s.elapsed = 0
}

// SetLimit makes the scheduler stop after ticks ticks since the last Reset.
// Used for offline rendering of a fixed number of loops.
func (s *Scheduler) SetLimit(ticks int) { s.limit = ticks }

// Done reports whether the tick limit has been reached.
func (s *Scheduler) Done() bool { return s.limit > 0 && s.elapsed >= s.limit }

// Cursor returns the current playback position.
func (s *Scheduler) Cursor() Cursor { return s.cursor }

// Advance schedules every note between the cursor and the end of the
// look-ahead window and moves the cursor past it. The project and the sample
// table are read afresh on every call and never retained. It returns the
// number of voices scheduled.
func (s *Scheduler) Advance(p beatgrid.Project, samples SampleSource) int {
	if p.Tempo <= 0 || s.ppqn <= 0 {
		return 0
	}
	// a zero-length measure would wrap on every tick and retrigger tick 0
	if beatgrid.TicksPerMeasure(s.ppqn, p.BeatUnitsPerMeasure, p.BeatUnit) <= 0 {
		return 0
	}
	spt := beatgrid.SecondsPerTick(s.ppqn, p.Tempo)
	scheduled := 0
	for !s.Done() && s.cursor.NextNoteTime < s.clock.Now()+ScheduleAheadSeconds {
		anySolo := p.AnySolo()
		for _, n := range p.Notes {
			if n.Tick() != s.cursor.Tick {
				continue
			}
			track, ok := p.Track(n.TrackID)
			if !ok || !track.Audible(anySolo) {
				continue
			}
			buf, ok := samples.SampleBuffer(track.SampleID)
			if !ok {
				continue
			}
			swing := beatgrid.SwingSeconds(p.Swing, float64(s.cursor.Tick), s.ppqn, p.Tempo)
			volume := track.Volume * float64(n.Velocity) / beatgrid.MaxVelocity
			Trigger(s.out, s.cursor.NextNoteTime, buf, s.sampleRate, volume, track.Pan, track.Pitch, swing)
			scheduled++
		}
		s.cursor.NextNoteTime += spt
		s.cursor.Tick++
		s.elapsed++
		// the notes may have changed since the last pass, so the loop length
		// is recomputed every tick
		if float64(s.cursor.Tick) >= p.LoopTicks(s.ppqn) {
			s.cursor.Tick = 0
		}
	}
	return scheduled
}

package sequencer_test

import (
	"math"
	"sync"

	"github.com/beatgrid/beatgrid"
	"github.com/beatgrid/beatgrid/sequencer"
)

const sampleRate = 44100

type fakeClock struct {
	mu  sync.Mutex
	now float64
}

func (c *fakeClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now float64) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

type fakeOutput struct {
	mu     sync.Mutex
	voices []sequencer.Voice
}

func (o *fakeOutput) ScheduleVoice(v sequencer.Voice) {
	o.mu.Lock()
	o.voices = append(o.voices, v)
	o.mu.Unlock()
}

func (o *fakeOutput) Voices() []sequencer.Voice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]sequencer.Voice(nil), o.voices...)
}

// fakeSamples maps sample ids to buffers; a nil buffer is a sample that is
// not decoded yet.
type fakeSamples map[string]*beatgrid.Buffer

func (s fakeSamples) SampleBuffer(id string) (*beatgrid.Buffer, bool) {
	b, ok := s[id]
	return b, ok
}

func oneSecond() *beatgrid.Buffer {
	return &beatgrid.Buffer{SampleRate: sampleRate, Frames: make(beatgrid.AudioBuffer, sampleRate)}
}

func kit() fakeSamples {
	return fakeSamples{"a": oneSecond(), "b": oneSecond(), "undecoded": nil}
}

func track(id, sample string) beatgrid.Track {
	return beatgrid.Track{ID: id, Name: id, SampleID: sample, Quantize: 16, Volume: 1, Pitch: 0.5}
}

func project(tracks []beatgrid.Track, notes ...beatgrid.Note) beatgrid.Project {
	p := beatgrid.NewProject()
	p.Tracks = tracks
	p.Notes = notes
	return p
}

func note(trackID string, start float64) beatgrid.Note {
	return beatgrid.Note{TrackID: trackID, Start: start, Velocity: beatgrid.MaxVelocity}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// at 120 bpm and 480 ppqn a tick lasts 1/960 s
const tickSeconds = 1.0 / 960

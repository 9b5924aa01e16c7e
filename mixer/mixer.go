// Package mixer is the audio subsystem: it accepts scheduled voices, renders
// them into stereo frames and owns the audio clock the scheduler plans
// against.
package mixer

import (
	"sync"
	"sync/atomic"

	"github.com/beatgrid/beatgrid"
	"github.com/beatgrid/beatgrid/sequencer"
	"github.com/viterin/vek/vek32"
)

const blockSize = 512

type Mixer struct {
	sampleRate int
	rendered   atomic.Int64 // frames rendered so far; the clock

	mu     sync.Mutex
	voices []sequencer.Voice

	// scratch blocks, only used by ReadAudio
	left, right, tmp []float32
}

// New returns an empty mixer rendering at sampleRate.
func New(sampleRate int) *Mixer {
	return &Mixer{
		sampleRate: sampleRate,
		left:       make([]float32, blockSize),
		right:      make([]float32, blockSize),
		tmp:        make([]float32, blockSize),
	}
}

// SampleRate returns the output sample rate in Hz.
func (m *Mixer) SampleRate() int { return m.sampleRate }

// Now returns the audio clock in seconds: the time of the next frame to be
// rendered.
func (m *Mixer) Now() float64 {
	return float64(m.rendered.Load()) / float64(m.sampleRate)
}

// ScheduleVoice queues a voice. Voices whose start time has already passed
// start immediately, partway into their buffer.
func (m *Mixer) ScheduleVoice(v sequencer.Voice) {
	if v.Buffer == nil || v.Stop <= v.Start {
		return
	}
	m.mu.Lock()
	m.voices = append(m.voices, v)
	m.mu.Unlock()
}

// Active returns the number of voices that have not finished yet.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// ReadAudio renders the next len(buffer) frames and advances the clock.
func (m *Mixer) ReadAudio(buffer beatgrid.AudioBuffer) error {
	for len(buffer) > 0 {
		n := min(len(buffer), blockSize)
		m.renderBlock(buffer[:n])
		buffer = buffer[n:]
	}
	return nil
}

func (m *Mixer) renderBlock(out beatgrid.AudioBuffer) {
	n := len(out)
	first := m.rendered.Load()
	left, right := m.left[:n], m.right[:n]
	clear(left)
	clear(right)

	m.mu.Lock()
	end := float64(first+int64(n)) / float64(m.sampleRate)
	kept := m.voices[:0]
	for _, v := range m.voices {
		m.mixVoice(v, first, left, right)
		if v.Stop > end {
			kept = append(kept, v)
		}
	}
	clear(m.voices[len(kept):])
	m.voices = kept
	m.mu.Unlock()

	for i := range out {
		out[i] = [2]float32{left[i], right[i]}
	}
	m.rendered.Add(int64(n))
}

// mixVoice adds the part of v that falls into the block starting at frame
// first into left and right.
func (m *Mixer) mixVoice(v sequencer.Voice, first int64, left, right []float32) {
	n := len(left)
	sr := float64(m.sampleRate)
	startFrame := int64(v.Start * sr)
	stopFrame := int64(v.Stop * sr)
	lo := max(startFrame-first, 0)
	hi := min(stopFrame-first, int64(n))
	if lo >= hi {
		return
	}
	// source frames advance by step per output frame
	step := v.Rate * float64(v.Buffer.SampleRate) / sr
	frames := v.Buffer.Frames
	tmp := m.tmp[:n]
	for ch, dst := range [][]float32{left, right} {
		clear(tmp)
		for i := lo; i < hi; i++ {
			tmp[i] = sampleAt(frames, float64(first+i-startFrame)*step, ch)
		}
		pan := v.Left
		if ch == 1 {
			pan = v.Right
		}
		vek32.MulNumber_Inplace(tmp, float32(v.Gain*pan))
		vek32.Add_Inplace(dst, tmp)
	}
}

// sampleAt reads channel ch at a fractional frame position with linear
// interpolation; positions outside the buffer are silent.
func sampleAt(frames beatgrid.AudioBuffer, pos float64, ch int) float32 {
	i := int(pos)
	if pos < 0 || i >= len(frames) {
		return 0
	}
	a := frames[i][ch]
	if i+1 >= len(frames) {
		return a
	}
	frac := float32(pos - float64(i))
	return a + (frames[i+1][ch]-a)*frac
}

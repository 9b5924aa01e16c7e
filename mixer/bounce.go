package mixer

import (
	"io"
	"math"

	"github.com/beatgrid/beatgrid"
	"github.com/beatgrid/beatgrid/sequencer"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ossrs/go-oryx-lib/errors"
)

// maxTailSeconds bounds how long Bounce keeps rendering after the last loop
// for ringing voices.
const maxTailSeconds = 10

// Bounce renders loops repetitions of the pattern offline, through the same
// scheduler used for realtime playback, and writes them to ws as a 16-bit
// stereo WAV file. Voices still sounding at the end of the last loop are
// rendered to their end.
func Bounce(ws io.WriteSeeker, p beatgrid.Project, samples sequencer.SampleSource, sampleRate, ppqn, loops int) error {
	if loops <= 0 {
		return errors.Errorf("invalid number of loops %v", loops)
	}
	if p.Tempo <= 0 {
		return errors.Errorf("invalid tempo %v", p.Tempo)
	}
	m := New(sampleRate)
	ticks := loops * int(math.Ceil(p.LoopTicks(ppqn)))
	s := sequencer.NewScheduler(m, m, sampleRate, ppqn)
	s.Reset()
	s.SetLimit(ticks)

	enc := wav.NewEncoder(ws, sampleRate, 16, 2, 1)
	block := make(beatgrid.AudioBuffer, blockSize)
	ints := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:           make([]int, 0, 2*blockSize),
		SourceBitDepth: 16,
	}
	end := float64(ticks) * beatgrid.SecondsPerTick(ppqn, p.Tempo)
	endFrame := int64(math.Round(end * float64(sampleRate)))
	tailFrame := endFrame + maxTailSeconds*int64(sampleRate)
	for {
		frame := m.rendered.Load()
		if frame >= endFrame && (m.Active() == 0 || frame >= tailFrame) {
			break
		}
		n := int64(blockSize)
		if frame < endFrame {
			s.Advance(p, samples)
			// stop exactly at the loop end so the file length is exact
			n = min(n, endFrame-frame)
		}
		if err := m.ReadAudio(block[:n]); err != nil {
			return errors.Wrapf(err, "render")
		}
		ints.Data = appendPCM16(ints.Data[:0], block[:n])
		if err := enc.Write(ints); err != nil {
			return errors.Wrapf(err, "write wav")
		}
	}
	if err := enc.Close(); err != nil {
		return errors.Wrapf(err, "close wav")
	}
	return nil
}

// appendPCM16 converts frames to interleaved 16-bit integer samples,
// clipping at full scale.
func appendPCM16(dst []int, frames beatgrid.AudioBuffer) []int {
	for _, f := range frames {
		for _, v := range f {
			v = max(-1, min(1, v))
			dst = append(dst, int(v*math.MaxInt16))
		}
	}
	return dst
}

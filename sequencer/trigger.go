package sequencer

import (
	"math"

	"github.com/beatgrid/beatgrid"
)

// OutputHeadroom scales every voice so that a fully panned hit at full volume
// does not clip.
const OutputHeadroom = 0.8

type (
	// Voice is one scheduled playback of a sample buffer. Start and Stop are
	// seconds on the audio clock; Rate is the playback rate (1 = original
	// pitch). Left and Right are the equal-power pan gains and Gain the
	// overall gain.
	Voice struct {
		Buffer      *beatgrid.Buffer
		Start, Stop float64
		Rate        float64
		Gain        float64
		Left, Right float64
	}

	// VoiceOutput is the audio subsystem. ScheduleVoice is fire-and-forget:
	// a scheduled voice can not be cancelled.
	VoiceOutput interface {
		ScheduleVoice(v Voice)
	}
)

// PlaybackRate maps a normalized pitch in [0,1] to a rate in [0.5,2], with
// 0.5 being the original pitch.
func PlaybackRate(pitch float64) float64 {
	return math.Pow(2, 2*(pitch-0.5))
}

// PanGains returns the left and right gains of the equal-power pan law for a
// pan in [-1,1].
func PanGains(pan float64) (left, right float64) {
	angle := (pan + 1) * math.Pi / 4
	return math.Cos(angle), math.Sin(angle)
}

// NewVoice computes the playback parameters of a hit at time at (seconds on
// the audio clock). A nil buffer means the sample is not decoded yet; the
// voice then plays a silent placeholder so that scheduling never waits for
// decoding.
func NewVoice(at float64, buffer *beatgrid.Buffer, sampleRate int, volume, pan, pitch, swingSeconds float64) Voice {
	if buffer == nil {
		buffer = beatgrid.Silence(sampleRate)
	}
	rate := PlaybackRate(pitch)
	left, right := PanGains(pan)
	start := math.Max(0, at+swingSeconds)
	return Voice{
		Buffer: buffer,
		Start:  start,
		Stop:   start + buffer.Duration()/rate,
		Rate:   rate,
		Gain:   volume * OutputHeadroom,
		Left:   left,
		Right:  right,
	}
}

// Trigger hands a new voice to out.
func Trigger(out VoiceOutput, at float64, buffer *beatgrid.Buffer, sampleRate int, volume, pan, pitch, swingSeconds float64) {
	out.ScheduleVoice(NewVoice(at, buffer, sampleRate, volume, pan, pitch, swingSeconds))
}

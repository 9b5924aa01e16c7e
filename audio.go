package beatgrid

type (
	// AudioBuffer is a buffer of stereo frames, left and right channel
	// interleaved per frame.
	AudioBuffer [][2]float32

	// Buffer is decoded sample audio together with its sample rate.
	Buffer struct {
		SampleRate int
		Frames     AudioBuffer
	}

	// AudioSource renders audio into a buffer, filling it completely.
	AudioSource interface {
		ReadAudio(buffer AudioBuffer) error
	}

	// AudioContext opens an output that pulls audio from a source until
	// the returned CloserWaiter is closed.
	AudioContext interface {
		Play(src AudioSource) CloserWaiter
		Close() error
	}

	CloserWaiter interface {
		Close() error
		Wait()
	}
)

// SilentPlaceholderSeconds is the length of the silence played instead of a
// sample whose audio has not been decoded yet.
const SilentPlaceholderSeconds = 0.5

// Duration returns the length of the buffer in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Frames)) / float64(b.SampleRate)
}

// Silence returns a silent buffer of SilentPlaceholderSeconds.
func Silence(sampleRate int) *Buffer {
	return &Buffer{
		SampleRate: sampleRate,
		Frames:     make(AudioBuffer, int(float64(sampleRate)*SilentPlaceholderSeconds)),
	}
}

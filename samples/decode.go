package samples

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beatgrid/beatgrid"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/go-audio/wav"
	"github.com/ossrs/go-oryx-lib/errors"
)

const resampleQuality = 4

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported sample format")

// DecodeFile decodes the sample at path into stereo frames at sampleRate.
// WAV, MP3 and Ogg Vorbis files are supported; mono files are duplicated to
// both channels.
func DecodeFile(path string, sampleRate int) (*beatgrid.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %v", path)
	}
	defer f.Close()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		return decodeWav(f, sampleRate)
	case ".mp3":
		s, format, err := mp3.Decode(io.NopCloser(f))
		if err != nil {
			return nil, errors.Wrapf(err, "decode mp3 %v", path)
		}
		return drain(s, format.SampleRate, sampleRate)
	case ".ogg":
		s, format, err := vorbis.Decode(io.NopCloser(f))
		if err != nil {
			return nil, errors.Wrapf(err, "decode ogg %v", path)
		}
		return drain(s, format.SampleRate, sampleRate)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%v", ext)
	}
}

func decodeWav(r io.ReadSeeker, sampleRate int) (*beatgrid.Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrapf(err, "decode wav")
	}
	channels := pcm.Format.NumChannels
	if channels <= 0 {
		return nil, errors.Errorf("wav has %v channels", channels)
	}
	depth := pcm.SourceBitDepth
	if depth == 0 {
		depth = int(dec.BitDepth)
	}
	scale := 1 / float64(int(1)<<(depth-1))
	offset := 0
	if depth == 8 {
		offset = 128 // 8-bit wav is unsigned
	}
	frames := make([][2]float64, len(pcm.Data)/channels)
	for i := range frames {
		l := float64(pcm.Data[i*channels]-offset) * scale
		r := l
		if channels > 1 {
			r = float64(pcm.Data[i*channels+1]-offset) * scale
		}
		frames[i] = [2]float64{l, r}
	}
	return drain(&frameStreamer{frames: frames}, beep.SampleRate(pcm.Format.SampleRate), sampleRate)
}

// drain reads a streamer to its end, resampling it to sampleRate if needed.
func drain(s beep.Streamer, from beep.SampleRate, sampleRate int) (*beatgrid.Buffer, error) {
	if from != beep.SampleRate(sampleRate) {
		s = beep.Resample(resampleQuality, from, beep.SampleRate(sampleRate), s)
	}
	ret := &beatgrid.Buffer{SampleRate: sampleRate}
	tmp := make([][2]float64, 1024)
	for {
		n, ok := s.Stream(tmp)
		for _, f := range tmp[:n] {
			ret.Frames = append(ret.Frames, [2]float32{float32(f[0]), float32(f[1])})
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "stream")
	}
	return ret, nil
}

// frameStreamer adapts already decoded frames to beep.Streamer so they can
// go through beep's resampler.
type frameStreamer struct {
	frames [][2]float64
	pos    int
}

func (s *frameStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	n = copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, true
}

func (s *frameStreamer) Err() error { return nil }

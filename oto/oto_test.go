package oto

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/beatgrid/beatgrid"
)

func TestAppendPCM16LE(t *testing.T) {
	got := AppendPCM16LE(nil, beatgrid.AudioBuffer{{0, 1}, {-2, 0.5}})
	want := []byte{0, 0, 0xff, 0x7f, 0x01, 0x80, 0xff, 0x3f}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

type rampSource struct {
	next  float32
	fail  bool
	calls int
}

func (s *rampSource) ReadAudio(buf beatgrid.AudioBuffer) error {
	s.calls++
	if s.fail {
		return errors.New("broken")
	}
	for i := range buf {
		buf[i] = [2]float32{s.next, s.next}
	}
	s.next += 0.25
	return nil
}

func TestSourceReaderKeepsLeftovers(t *testing.T) {
	src := &rampSource{}
	r := &sourceReader{src: src, frames: make(beatgrid.AudioBuffer, 2)}
	p := make([]byte, 6)
	if n, err := r.Read(p); n != 6 || err != nil {
		t.Fatalf("Read = %d, %v", n, err)
	}
	p = make([]byte, 8)
	if n, _ := r.Read(p); n != 8 {
		t.Fatalf("Read = %d", n)
	}
	// two leftover bytes of the first render, then three samples of 0.25
	want := []byte{0, 0, 0xff, 0x1f, 0xff, 0x1f, 0xff, 0x1f}
	if !bytes.Equal(p, want) {
		t.Fatalf("got % x, want % x", p, want)
	}
	if src.calls != 2 {
		t.Fatalf("rendered %d times, want 2", src.calls)
	}
}

func TestSourceReaderStopsOnError(t *testing.T) {
	r := &sourceReader{src: &rampSource{fail: true}, frames: make(beatgrid.AudioBuffer, 2)}
	if _, err := r.Read(make([]byte, 4)); err != io.EOF {
		t.Fatalf("err = %v, want EOF", err)
	}
	if r.Err() == nil {
		t.Fatalf("source error not kept")
	}
}

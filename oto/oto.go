// Package oto plays an audio source through the system audio output.
package oto

import (
	"io"
	"sync"
	"time"

	"github.com/beatgrid/beatgrid"
	"github.com/ebitengine/oto/v3"
	"github.com/ossrs/go-oryx-lib/errors"
)

const (
	renderFrames = 512
)

type (
	// OtoContext is a beatgrid.AudioContext writing 16-bit stereo audio at a
	// fixed sample rate.
	OtoContext struct {
		context *oto.Context
	}

	// OtoOutput is a single stream playing from an AudioSource.
	OtoOutput struct {
		player *oto.Player
		reader *sourceReader
		done   chan struct{}
		once   sync.Once
	}

	// sourceReader pulls frames from the source as oto asks for bytes.
	sourceReader struct {
		src     beatgrid.AudioSource
		frames  beatgrid.AudioBuffer
		pending []byte
		mu      sync.Mutex
		err     error
	}
)

// NewContext opens the audio device. bufferFrames sets the device buffer
// length; zero selects the driver default.
func NewContext(sampleRate, bufferFrames int) (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	if bufferFrames > 0 {
		op.BufferSize = time.Duration(bufferFrames) * time.Second / time.Duration(sampleRate)
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create oto context")
	}
	<-ready
	return &OtoContext{context: context}, nil
}

// Play starts pulling audio from src until the returned output is closed.
func (c *OtoContext) Play(src beatgrid.AudioSource) beatgrid.CloserWaiter {
	r := &sourceReader{src: src, frames: make(beatgrid.AudioBuffer, renderFrames)}
	o := &OtoOutput{player: c.context.NewPlayer(r), reader: r, done: make(chan struct{})}
	o.player.Play()
	return o
}

// Close suspends the device; oto contexts live as long as the process.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return errors.Wrapf(err, "cannot suspend oto context")
	}
	return nil
}

// Close stops the stream and returns the first error of the source, if any.
func (o *OtoOutput) Close() error {
	var err error
	o.once.Do(func() {
		if e := o.player.Close(); e != nil {
			err = errors.Wrapf(e, "cannot close oto player")
		}
		close(o.done)
	})
	if err != nil {
		return err
	}
	return o.reader.Err()
}

// Wait blocks until the stream is closed.
func (o *OtoOutput) Wait() {
	<-o.done
}

func (r *sourceReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, io.EOF
	}
	for len(r.pending) < len(p) {
		if err := r.src.ReadAudio(r.frames); err != nil {
			r.err = errors.Wrapf(err, "read audio")
			return 0, io.EOF
		}
		r.pending = AppendPCM16LE(r.pending, r.frames)
	}
	n := copy(p, r.pending)
	r.pending = r.pending[:copy(r.pending, r.pending[n:])]
	return n, nil
}

func (r *sourceReader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

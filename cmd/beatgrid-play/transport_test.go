package main

import (
	"strings"
	"testing"

	"github.com/beatgrid/beatgrid"
	"github.com/beatgrid/beatgrid/sequencer"
	"github.com/eiannone/keyboard"
)

func newTransport() (*transport, chan any) {
	p := beatgrid.NewProject()
	p.AddTrack(beatgrid.SampleRef{ID: "0", Kind: "kick", Path: "kick.wav"})
	p.AddTrack(beatgrid.SampleRef{ID: "1", Kind: "snare", Path: "snare.wav"})
	c := make(chan any, 8)
	return &transport{store: beatgrid.NewProjectStore(p), toPlay: c}, c
}

func TestSpaceTogglesPlayback(t *testing.T) {
	tr, c := newTransport()
	tr.handle(keyboard.KeyEvent{Key: keyboard.KeySpace})
	tr.handle(keyboard.KeyEvent{Key: keyboard.KeySpace})
	if _, ok := (<-c).(sequencer.PlayMsg); !ok {
		t.Fatalf("first space did not play")
	}
	if _, ok := (<-c).(sequencer.StopMsg); !ok {
		t.Fatalf("second space did not stop")
	}
}

func TestStopIsNotDroppedWhenQueueIsFull(t *testing.T) {
	tr, _ := newTransport()
	c := make(chan any, 1)
	tr.toPlay = c
	tr.playing = true
	c <- sequencer.Tick{}
	done := make(chan struct{})
	go func() {
		tr.handle(keyboard.KeyEvent{Key: keyboard.KeySpace})
		close(done)
	}()
	if _, ok := (<-c).(sequencer.Tick); !ok {
		t.Fatalf("expected the queued tick first")
	}
	if _, ok := (<-c).(sequencer.StopMsg); !ok {
		t.Fatalf("stop was not delivered")
	}
	<-done
	if tr.playing {
		t.Fatalf("transport still playing")
	}
}

func TestTempoAndSwingKeys(t *testing.T) {
	tr, _ := newTransport()
	tr.handle(keyboard.KeyEvent{Rune: '+'})
	tr.handle(keyboard.KeyEvent{Rune: ']'})
	p := tr.store.Project()
	if p.Tempo != beatgrid.DefaultTempo+tempoStep || p.Swing != swingStep {
		t.Fatalf("tempo %v, swing %v", p.Tempo, p.Swing)
	}
	for i := 0; i < 100; i++ {
		tr.handle(keyboard.KeyEvent{Rune: '-'})
	}
	if p := tr.store.Project(); p.Tempo != beatgrid.MinTempo {
		t.Fatalf("tempo = %v, want the minimum", p.Tempo)
	}
}

func TestPreviewAndQuitKeys(t *testing.T) {
	tr, c := newTransport()
	tr.handle(keyboard.KeyEvent{Rune: '2'})
	tr.handle(keyboard.KeyEvent{Rune: '9'})
	m, ok := (<-c).(sequencer.PreviewMsg)
	if !ok || m.TrackID != tr.store.Project().Tracks[1].ID {
		t.Fatalf("preview = %+v", m)
	}
	if len(c) != 0 {
		t.Fatalf("preview of a missing track was sent")
	}
	if !tr.handle(keyboard.KeyEvent{Rune: 'q'}) || !tr.handle(keyboard.KeyEvent{Key: keyboard.KeyEsc}) {
		t.Fatalf("quit keys did not quit")
	}
}

func TestStatus(t *testing.T) {
	p := beatgrid.NewProject()
	p.AddTrack(beatgrid.SampleRef{ID: "0", Path: "kick.wav"})
	p.Tracks[0].Solo = true
	s := status(p, sequencer.MsgToModel{Playing: true, Tick: 1920 + 960}, beatgrid.PPQN)
	for _, want := range []string{"playing", "120 bpm", "4/4", "2.3", "solo kick"} {
		if !strings.Contains(s, want) {
			t.Errorf("status %q does not contain %q", s, want)
		}
	}
}

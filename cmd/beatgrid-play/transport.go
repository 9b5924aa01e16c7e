package main

import (
	"fmt"
	"strings"

	"github.com/beatgrid/beatgrid"
	"github.com/beatgrid/beatgrid/sequencer"
	"github.com/eiannone/keyboard"
)

const (
	tempoStep = 5
	swingStep = 0.1
)

// transport maps key presses to player messages and project edits.
type transport struct {
	store   *beatgrid.ProjectStore
	toPlay  chan<- any
	playing bool
}

// handle processes one key and reports whether the program should quit.
func (t *transport) handle(ev keyboard.KeyEvent) (quit bool) {
	switch {
	case ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC || ev.Rune == 'q':
		return true
	case ev.Key == keyboard.KeySpace:
		// play and stop share the queue with the timer ticks, so they are
		// sent blocking; the player drains the queue continuously
		t.playing = !t.playing
		if t.playing {
			t.toPlay <- sequencer.PlayMsg{}
		} else {
			t.toPlay <- sequencer.StopMsg{}
		}
	case ev.Rune == '+' || ev.Rune == '=':
		t.store.Update(func(p *beatgrid.Project) { p.SetTempo(p.Tempo + tempoStep) })
	case ev.Rune == '-':
		t.store.Update(func(p *beatgrid.Project) { p.SetTempo(p.Tempo - tempoStep) })
	case ev.Rune == ']':
		t.store.Update(func(p *beatgrid.Project) { p.SetSwing(p.Swing + swingStep) })
	case ev.Rune == '[':
		t.store.Update(func(p *beatgrid.Project) { p.SetSwing(p.Swing - swingStep) })
	case ev.Rune >= '1' && ev.Rune <= '9':
		tracks := t.store.Project().Tracks
		if i := int(ev.Rune - '1'); i < len(tracks) {
			sequencer.TrySend(t.toPlay, any(sequencer.PreviewMsg{TrackID: tracks[i].ID}))
		}
	case ev.Rune == 'm' || ev.Rune == 'M':
		// m mutes, M solos the first track, handy for checking a kit
		tracks := t.store.Project().Tracks
		if len(tracks) > 0 {
			id := tracks[0].ID
			if ev.Rune == 'm' {
				t.store.Update(func(p *beatgrid.Project) { p.SetTrackMute(id, !tracks[0].Mute) })
			} else {
				t.store.Update(func(p *beatgrid.Project) { p.SetTrackSolo(id, !tracks[0].Solo) })
			}
		}
	}
	return false
}

// status renders the one line shown under the help text.
func status(p beatgrid.Project, m sequencer.MsgToModel, ppqn int) string {
	state := "stopped"
	if m.Playing {
		state = "playing"
	}
	tpm := beatgrid.TicksPerMeasure(ppqn, p.BeatUnitsPerMeasure, p.BeatUnit)
	measure, beat := 1, 1
	if tpm > 0 {
		measure = int(float64(m.Tick)/tpm) + 1
		beat = int((float64(m.Tick)-float64(measure-1)*tpm)/(tpm/float64(p.BeatUnitsPerMeasure))) + 1
	}
	var solo []string
	for _, t := range p.Tracks {
		if t.Solo {
			solo = append(solo, t.Name)
		}
	}
	line := fmt.Sprintf("%-7s %3.0f bpm  swing %.1f  %d/%d  %d.%d", state, p.Tempo, p.Swing, p.BeatUnitsPerMeasure, p.BeatUnit, measure, beat)
	if len(solo) > 0 {
		line += "  solo " + strings.Join(solo, ",")
	}
	return line
}

const help = "space play/stop  +/- tempo  [/] swing  1-9 preview  m mute  M solo  q quit"

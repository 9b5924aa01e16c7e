package sequencer

import (
	"context"
	"time"

	"github.com/beatgrid/beatgrid"
	"github.com/ossrs/go-oryx-lib/logger"
)

type (
	// Player is the Stopped/Playing state machine, run in its own goroutine.
	// It is controlled by messages on Broker.ToPlayer and drives the timer
	// through Broker.ToTimer. The scheduler cursor lives here and is only
	// touched from Run, so a reconfiguration can never interleave with a
	// look-ahead pass.
	Player struct {
		broker    *Broker
		clock     Clock
		out       VoiceOutput
		project   ProjectSource
		samples   SampleSource
		scheduler *Scheduler
		playing   bool

		sampleRate int
		ppqn       int
	}

	// PlayMsg starts playback from the beginning of the pattern. There is no
	// resume: playing always rewinds.
	PlayMsg struct{}
	// StopMsg stops the timer. Voices already scheduled still sound.
	StopMsg struct{}
	// ReconfigureMsg tells the player that the project changed, typically
	// the tempo or the time signature. The timer interval is recomputed; the
	// cursor is kept.
	ReconfigureMsg struct{}
	// PreviewMsg plays a sample immediately with the parameters of a track.
	// An empty SampleID plays the track's own sample.
	PreviewMsg struct {
		TrackID  string
		SampleID string
	}
)

// NewPlayer returns a stopped player. Run it in its own goroutine.
func NewPlayer(broker *Broker, clock Clock, out VoiceOutput, project ProjectSource, samples SampleSource, sampleRate, ppqn int) *Player {
	return &Player{
		broker:     broker,
		clock:      clock,
		out:        out,
		project:    project,
		samples:    samples,
		scheduler:  NewScheduler(clock, out, sampleRate, ppqn),
		sampleRate: sampleRate,
		ppqn:       ppqn,
	}
}

// Run handles messages until ClosePlayer is signalled. The timer is stopped
// on the way out.
func (p *Player) Run(ctx context.Context) {
	defer close(p.broker.FinishedPlayer)
	ctx = logger.WithContext(ctx)
	for {
		select {
		case <-p.broker.ClosePlayer:
			TrySend(p.broker.ToTimer, any(TimerStop{}))
			logger.Tf(ctx, "player closed")
			return
		case <-ctx.Done():
			TrySend(p.broker.ToTimer, any(TimerStop{}))
			return
		case msg := <-p.broker.ToPlayer:
			p.handle(ctx, msg)
		}
	}
}

func (p *Player) handle(ctx context.Context, msg any) {
	scheduled := 0
	switch m := msg.(type) {
	case PlayMsg:
		p.scheduler.Reset()
		p.playing = true
		p.sendInterval()
		TrySend(p.broker.ToTimer, any(TimerStart{}))
		scheduled = p.scheduler.Advance(p.project.Project(), p.samples)
		logger.Tf(ctx, "playing from tick 0 at %.3fs", p.scheduler.Cursor().NextNoteTime)
	case StopMsg:
		if p.playing {
			TrySend(p.broker.ToTimer, any(TimerStop{}))
			p.playing = false
			logger.Tf(ctx, "stopped at tick %v", p.scheduler.Cursor().Tick)
		}
	case ReconfigureMsg:
		p.sendInterval()
	case Tick:
		// ticks queued before a stop are stale
		if p.playing {
			scheduled = p.scheduler.Advance(p.project.Project(), p.samples)
		}
	case PreviewMsg:
		scheduled = p.preview(ctx, m)
	default:
		logger.Wf(ctx, "player ignores message %T", msg)
		return
	}
	TrySend(p.broker.ToModel, MsgToModel{Playing: p.playing, Tick: p.scheduler.Cursor().Tick, Scheduled: scheduled})
}

func (p *Player) preview(ctx context.Context, m PreviewMsg) int {
	project := p.project.Project()
	track, ok := project.Track(m.TrackID)
	if !ok {
		logger.Wf(ctx, "preview of unknown track %v", m.TrackID)
		return 0
	}
	id := m.SampleID
	if id == "" {
		id = track.SampleID
	}
	buf, ok := p.samples.SampleBuffer(id)
	if !ok {
		return 0
	}
	Trigger(p.out, p.clock.Now(), buf, p.sampleRate, track.Volume, track.Pan, track.Pitch, 0)
	return 1
}

func (p *Player) sendInterval() {
	tempo := p.project.Project().Tempo
	d := time.Duration(0)
	if tempo > 0 {
		d = time.Duration(beatgrid.MillisecondsPerTick(p.ppqn, tempo) * float64(time.Millisecond))
	}
	TrySend(p.broker.ToTimer, any(TimerInterval{Interval: d}))
}

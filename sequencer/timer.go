package sequencer

import (
	"context"
	"time"

	"github.com/ossrs/go-oryx-lib/logger"
)

type (
	// TimerStart starts the periodic Tick signal.
	TimerStart struct{}
	// TimerStop stops it. Ticks already queued to the player are not recalled.
	TimerStop struct{}
	// TimerInterval changes the period; a running timer keeps running with the
	// new period. Non-positive values select DefaultTimerInterval.
	TimerInterval struct{ Interval time.Duration }

	// Tick is the opaque signal sent by the timer to the player.
	Tick struct{}
)

const DefaultTimerInterval = 100 * time.Millisecond

// RunTimer runs the coarse timer until CloseTimer is signalled. It is meant
// to run in its own goroutine.
func RunTimer(ctx context.Context, b *Broker) {
	defer close(b.FinishedTimer)
	ctx = logger.WithContext(ctx)

	interval := DefaultTimerInterval
	var ticker *time.Ticker
	var tick <-chan time.Time
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stop()

	for {
		select {
		case <-b.CloseTimer:
			logger.Tf(ctx, "timer closed")
			return
		case <-ctx.Done():
			return
		case msg := <-b.ToTimer:
			switch m := msg.(type) {
			case TimerStart:
				if ticker == nil {
					ticker = time.NewTicker(interval)
					tick = ticker.C
				}
			case TimerStop:
				stop()
			case TimerInterval:
				interval = m.Interval
				if interval <= 0 {
					interval = DefaultTimerInterval
				}
				if ticker != nil {
					ticker.Reset(interval)
				}
			default:
				logger.Wf(ctx, "timer ignores message %T", msg)
			}
		case <-tick:
			// a full player queue means it is behind anyway; the next tick
			// catches up since the look-ahead loop runs until the window is full
			TrySend(b.ToPlayer, any(Tick{}))
		}
	}
}

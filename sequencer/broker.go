package sequencer

import (
	"time"
)

type (
	// Broker connects the player, the timer and whoever controls them. Every
	// recipient has one buffered channel. The timer and the player use TrySend
	// so that neither can block the other; PlayMsg and StopMsg must not be
	// lost and are sent blocking by the controller.
	//
	// For closing goroutines, the broker has two channels for each goroutine:
	// CloseXXX and FinishedXXX. CloseXXX has a capacity of 1, so an empty
	// struct can always be sent to it without blocking; if it is already
	// full, someone else has requested the closure and dropping the message
	// is fine. FinishedXXX is only ever closed, once the goroutine has
	// cleaned up. Wait for it with a timeout to avoid deadlocks:
	//    select {
	//      case <-FinishedXXX:
	//      case <-time.After(3 * time.Second):
	//    }
	Broker struct {
		ToPlayer chan any
		ToTimer  chan any
		ToModel  chan MsgToModel

		ClosePlayer chan struct{}
		CloseTimer  chan struct{}

		FinishedPlayer chan struct{}
		FinishedTimer  chan struct{}
	}

	// MsgToModel reports the player state after it handled a message.
	MsgToModel struct {
		Playing   bool
		Tick      int // current tick of the scheduler cursor
		Scheduled int // voices scheduled while handling the message
	}
)

// NewBroker returns a broker with all channels allocated.
func NewBroker() *Broker {
	return &Broker{
		ToPlayer:       make(chan any, 1024),
		ToTimer:        make(chan any, 64),
		ToModel:        make(chan MsgToModel, 1024),
		ClosePlayer:    make(chan struct{}, 1),
		CloseTimer:     make(chan struct{}, 1),
		FinishedPlayer: make(chan struct{}),
		FinishedTimer:  make(chan struct{}),
	}
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}

// Close asks the player and the timer to quit and waits for both, at most
// timeout each.
func (b *Broker) Close(timeout time.Duration) {
	TrySend(b.ClosePlayer, struct{}{})
	TrySend(b.CloseTimer, struct{}{})
	TimeoutReceive(b.FinishedPlayer, timeout)
	TimeoutReceive(b.FinishedTimer, timeout)
}

/*
Package sequencer plays a beatgrid.Project against an audio clock.

Playback is split between two goroutines that talk only through the channels
of a Broker. The timer goroutine (RunTimer) is a coarse, imprecise periodic
signal: it receives TimerStart, TimerStop and TimerInterval messages and emits
opaque Tick values. The player goroutine (Player.Run) owns the Scheduler and
is the only writer of its cursor. On every Tick, the scheduler reads the
current project snapshot and schedules every note that falls inside the
look-ahead window, computing the exact start time of each voice from the
audio clock rather than from the time the Tick arrived. The timer only has to
fire often enough to keep the window full; jitter in its delivery does not
reach the audio.

Voices handed to a VoiceOutput are never cancelled. Stopping playback only
stops the timer.
*/
package sequencer

package beatgrid

import "math"

const maxSwingTicks = 30

// SwingTicks returns the timing offset of a note at tick, in ticks. Notes on
// the half-beat grid are pulled early and all other subdivisions pushed late,
// by up to 30 ticks at full swing.
func SwingTicks(swing, tick float64, ppqn int) int {
	if swing == 0 {
		return 0
	}
	if math.Mod(tick, float64(ppqn)/2) != 0 {
		return int(math.Ceil(swing * maxSwingTicks))
	}
	return int(math.Ceil(swing * -maxSwingTicks))
}

// SwingSeconds is SwingTicks converted to seconds at the given tempo.
func SwingSeconds(swing, tick float64, ppqn int, tempo float64) float64 {
	if swing == 0 {
		return 0
	}
	return float64(SwingTicks(swing, tick, ppqn)) * SecondsPerTick(ppqn, tempo)
}

// SwingNotes returns copies of the notes with the swing offset baked into
// their start, clamped so no note starts before tick 0. The input is not
// modified.
func SwingNotes(notes []Note, swing float64, ppqn int) []Note {
	ret := make([]Note, len(notes))
	for i, n := range notes {
		n.Start = math.Max(0, n.Start+float64(SwingTicks(swing, n.Start, ppqn)))
		ret[i] = n
	}
	return ret
}

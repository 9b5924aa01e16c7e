package beatgrid

import "math"

// TicksPerMeasure returns the length of one measure in ticks. A beat unit of
// zero or less yields 0.
func TicksPerMeasure(ppqn, beatUnitsPerMeasure, beatUnit int) float64 {
	if beatUnit <= 0 {
		return 0
	}
	return float64(ppqn) * 4 * float64(beatUnitsPerMeasure) / float64(beatUnit)
}

// SecondsPerTick returns the duration of one tick at the given tempo.
func SecondsPerTick(ppqn int, tempo float64) float64 {
	return 60 / (tempo * float64(ppqn))
}

// MillisecondsPerTick is SecondsPerTick in milliseconds. It is used to size
// the interval of the coarse timer.
func MillisecondsPerTick(ppqn int, tempo float64) float64 {
	return 60000 / (tempo * float64(ppqn))
}

// TicksPerStep returns the length of one grid step of a track quantized to
// quantize steps per whole note, e.g. 120 ticks for sixteenths at 480 ppqn.
func TicksPerStep(ppqn, quantize int) float64 {
	return float64(ppqn) / (float64(quantize) / 4)
}

// NumMeasures returns how many measures the pattern spans: enough to contain
// the last note, and never less than one.
func NumMeasures(notes []Note, ppqn, beatUnitsPerMeasure, beatUnit int) int {
	tpm := TicksPerMeasure(ppqn, beatUnitsPerMeasure, beatUnit)
	if len(notes) == 0 || tpm <= 0 {
		return 1
	}
	tickMax := notes[0].Start
	for _, n := range notes[1:] {
		tickMax = math.Max(tickMax, n.Start)
	}
	return max(1, int(math.Ceil((tickMax+1)/tpm)))
}

// LoopTicks returns the length of the whole looping pattern in ticks.
func (p *Project) LoopTicks(ppqn int) float64 {
	tpm := TicksPerMeasure(ppqn, p.BeatUnitsPerMeasure, p.BeatUnit)
	return tpm * float64(NumMeasures(p.Notes, ppqn, p.BeatUnitsPerMeasure, p.BeatUnit))
}

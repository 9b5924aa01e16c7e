package beatgrid

import "math"

// RequantizeNotes remaps the notes of one track after its grid resolution
// changed from prev to next steps per whole note, returning a new slice.
// Notes of other tracks are passed through untouched.
//
// Coarsening (next < prev) keeps only the notes that sit exactly on the new,
// wider grid. Refining (next > prev) leaves notes already on the new grid
// alone and moves every other note to floor(start/oldStep) steps of the new
// grid, i.e. it snaps down on the old grid and re-expresses the step index on
// the new one. A snapped note never replaces a note that was already on the
// new grid. Refining is therefore lossy for notes that were off the old
// grid, and coarsening followed by refining does not restore dropped notes.
func RequantizeNotes(notes []Note, trackID string, prev, next, ppqn int) []Note {
	ret := make([]Note, 0, len(notes))
	switch {
	case next < prev:
		step := TicksPerStep(ppqn, next)
		for _, n := range notes {
			if n.TrackID == trackID && math.Mod(n.Start, step) != 0 {
				continue
			}
			ret = append(ret, n)
		}
	case next > prev:
		step := TicksPerStep(ppqn, next)
		prevStep := TicksPerStep(ppqn, prev)
		// a note that is already on the new grid keeps its step; snapped
		// notes landing on an occupied step are dropped, first one wins
		aligned := make(map[float64]bool)
		for _, n := range notes {
			if n.TrackID == trackID && math.Mod(n.Start, step) == 0 {
				aligned[n.Start] = true
			}
		}
		seen := make(map[float64]bool)
		for _, n := range notes {
			if n.TrackID == trackID {
				if math.Mod(n.Start, step) != 0 {
					n.Start = step * math.Floor(n.Start/prevStep)
					if aligned[n.Start] {
						continue
					}
				}
				if seen[n.Start] {
					continue
				}
				seen[n.Start] = true
			}
			ret = append(ret, n)
		}
	default:
		ret = append(ret, notes...)
	}
	return ret
}

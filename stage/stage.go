// Package stage distributes an account over {S1,S2,S3,WO} through time,
// from the cumulative transition matrix and the segment's StageMap, with
// a watchlist override for the first TimeInWatchlist horizons (C9).
package stage

// Probabilities holds, per horizon, the four stage probabilities
// [S1, S2, S3, WO].
type Probabilities [][4]float64

// Build computes the stage-probability curve for horizons [0, horizons).
// stageIndices carries only the S1/S2/S3 buckets (StageMap's first three
// tuples); WO probability is read directly from the cumulative matrix's
// woColumn, since WO is a structural absorbing state, not a StageMap
// entry. watchlist is 0 for "not on watchlist", else one of {1,2,3}.
func Build(
	cumulativeAt func(t int) [][]float64,
	stageIndices [4][]int,
	woColumn int,
	currentRating int,
	watchlist int,
	timeInWatchlist int,
	horizons int,
) Probabilities {
	out := make(Probabilities, horizons)

	for t := 0; t < horizons; t++ {
		cum := cumulativeAt(t)[currentRating]
		var p [4]float64
		for s := 0; s < 3; s++ {
			for _, j := range stageIndices[s] {
				p[s] += cum[j]
			}
		}
		p[3] = cum[woColumn]
		out[t] = p
	}

	if watchlist >= 1 && watchlist <= 3 {
		for t := 0; t < horizons && t < timeInWatchlist; t++ {
			var p [4]float64
			p[watchlist-1] = 1
			out[t] = p
		}
	}

	return out
}

package track

import "github.com/tfeld/trackdb/internal/database"

// Summary aggregates statistics across a set of tracks. Combining is
// pairwise and associative so any filtered subset can be reduced in
// one pass.
type Summary struct {
	Tracks          int
	DistanceM       float64
	DurationS       int64
	MovingDurationS int64
	ElevationGainM  float64
	ElevationLossM  float64
	MaxSpeedKMH     float64

	avgSpeedSumKMH float64
}

// Summarize lifts one statistics row into a single-track Summary.
// Absent durations count as zero toward the totals.
func Summarize(st database.TrackStatistics) Summary {
	sum := Summary{
		Tracks:         1,
		DistanceM:      st.DistanceM,
		ElevationGainM: st.ElevationGainM,
		ElevationLossM: st.ElevationLossM,
		MaxSpeedKMH:    st.MaxSpeedKMH,
		avgSpeedSumKMH: st.AvgSpeedKMH,
	}
	if st.DurationS != nil {
		sum.DurationS = *st.DurationS
	}
	if st.MovingDurationS != nil {
		sum.MovingDurationS = *st.MovingDurationS
	}
	return sum
}

// Combine merges two summaries.
func Combine(a, b Summary) Summary {
	c := Summary{
		Tracks:          a.Tracks + b.Tracks,
		DistanceM:       a.DistanceM + b.DistanceM,
		DurationS:       a.DurationS + b.DurationS,
		MovingDurationS: a.MovingDurationS + b.MovingDurationS,
		ElevationGainM:  a.ElevationGainM + b.ElevationGainM,
		ElevationLossM:  a.ElevationLossM + b.ElevationLossM,
		MaxSpeedKMH:     a.MaxSpeedKMH,
		avgSpeedSumKMH:  a.avgSpeedSumKMH + b.avgSpeedSumKMH,
	}
	if b.MaxSpeedKMH > c.MaxSpeedKMH {
		c.MaxSpeedKMH = b.MaxSpeedKMH
	}
	return c
}

// Overall reduces a statistics set into one Summary.
func Overall(stats []database.TrackStatistics) Summary {
	var total Summary
	for _, st := range stats {
		total = Combine(total, Summarize(st))
	}
	return total
}

// AvgSpeedKMH is the mean of the per-track average speeds.
func (s Summary) AvgSpeedKMH() float64 {
	if s.Tracks == 0 {
		return 0
	}
	return s.avgSpeedSumKMH / float64(s.Tracks)
}

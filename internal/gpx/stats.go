package gpx

import (
	"math"
	"time"
)

const (
	// earthRadiusM is the mean Earth radius used by the haversine formula.
	earthRadiusM = 6371000

	// minMovementM is the distance two consecutive points must be apart
	// for the interval between them to count as moving time. Shorter
	// hops are treated as standing still with GPS jitter.
	minMovementM = 1.0

	// maxPlausibleSpeedMS caps per-pair speeds; anything faster than
	// 30 m/s (108 km/h) on a recorded track is a GPS glitch and is
	// excluded from the speed metrics.
	maxPlausibleSpeedMS = 30.0

	msToKMH = 3.6
)

// Stats holds the metrics derived from one trackpoint sequence. It is
// computed fresh on every call and never mutated.
//
// Duration metrics are only meaningful when HasDuration is true; GPX
// permits tracks without time data, in which case they stay zero.
// MinElevation/MaxElevation are nil when no point carries an elevation.
// No rounding happens here; formatting is a presentation concern.
type Stats struct {
	Distance       float64       // meters
	Duration       time.Duration // last timestamp minus first
	MovingDuration time.Duration // time spent actually moving
	HasDuration    bool
	ElevationGain  float64 // meters, sum of positive deltas
	ElevationLoss  float64 // meters, sum of negative deltas (positive value)
	MinElevation   *float64
	MaxElevation   *float64
	AvgSpeed       float64 // km/h over moving time
	MaxSpeed       float64 // km/h
}

// ComputeStats derives Stats from an ordered trackpoint sequence.
// It returns ErrEmptyTrack for a zero-length sequence.
func ComputeStats(points []Trackpoint) (Stats, error) {
	if len(points) == 0 {
		return Stats{}, ErrEmptyTrack
	}

	var s Stats

	for _, p := range points {
		if p.Elevation == nil {
			continue
		}
		ele := *p.Elevation
		if s.MinElevation == nil || ele < *s.MinElevation {
			v := ele
			s.MinElevation = &v
		}
		if s.MaxElevation == nil || ele > *s.MaxElevation {
			v := ele
			s.MaxElevation = &v
		}
	}

	var movingDistance float64
	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1], points[i]

		d := haversine(prev.Lat, prev.Lon, curr.Lat, curr.Lon)
		s.Distance += d

		if prev.Elevation != nil && curr.Elevation != nil {
			delta := *curr.Elevation - *prev.Elevation
			if delta > 0 {
				s.ElevationGain += delta
			} else {
				s.ElevationLoss -= delta
			}
		}

		if !prev.HasTime() || !curr.HasTime() {
			continue
		}
		dt := curr.Time.Sub(prev.Time)
		if dt <= 0 {
			continue
		}
		if d > minMovementM {
			s.MovingDuration += dt
			movingDistance += d
		}
		speed := d / dt.Seconds()
		if speed <= maxPlausibleSpeedMS && speed*msToKMH > s.MaxSpeed {
			s.MaxSpeed = speed * msToKMH
		}
	}

	first, last := points[0], points[len(points)-1]
	if first.HasTime() && last.HasTime() {
		s.Duration = last.Time.Sub(first.Time)
		s.HasDuration = true
	}

	if s.MovingDuration > 0 {
		s.AvgSpeed = msToKMH * movingDistance / s.MovingDuration.Seconds()
	}

	return s, nil
}

// haversine calculates the great-circle distance in meters between two
// points on Earth.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	Δφ := (lat2 - lat1) * math.Pi / 180
	Δλ := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*
			math.Sin(Δλ/2)*math.Sin(Δλ/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

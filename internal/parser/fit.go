package parser

import (
	"bytes"
	"fmt"
	"math"

	"github.com/tormoder/fit"

	"github.com/tfeld/trackdb/internal/gpx"
)

// FITParser decodes Garmin FIT activity files into the shared
// trackpoint model so they run through the same statistics pipeline as
// GPX uploads.
type FITParser struct{}

func (p *FITParser) Parse(data []byte) ([]gpx.Trackpoint, error) {
	fitFile, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &gpx.ParseError{Err: fmt.Errorf("decode fit file: %w", err)}
	}

	activity, err := fitFile.Activity()
	if err != nil {
		// Decodable FIT, but a workout/course/etc. rather than a track.
		return nil, &gpx.MalformedTrackError{Reason: "fit file is not an activity"}
	}

	var points []gpx.Trackpoint
	for _, rec := range activity.Records {
		lat := rec.PositionLat.Degrees()
		lon := rec.PositionLong.Degrees()
		if math.IsNaN(lat) || math.IsNaN(lon) {
			// Records without a GPS fix (tunnels, indoor segments).
			continue
		}

		pt := gpx.Trackpoint{Lat: lat, Lon: lon, Time: rec.Timestamp}
		if alt := rec.GetAltitudeScaled(); !math.IsNaN(alt) {
			v := alt
			pt.Elevation = &v
		}
		points = append(points, pt)
	}

	if len(points) == 0 {
		return nil, &gpx.MalformedTrackError{Reason: "no usable track data"}
	}

	return points, nil
}

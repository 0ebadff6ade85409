package gpx

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>Morning ride</name>
    <trkseg>
      <trkpt lat="47.1" lon="11.2">
        <ele>540.5</ele>
        <time>2023-06-01T08:00:00Z</time>
      </trkpt>
      <trkpt lat="47.101" lon="11.201">
        <ele>545</ele>
        <time>2023-06-01T08:01:00Z</time>
      </trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParseReturnsPointsInDocumentOrder(t *testing.T) {
	points, err := Parse([]byte(sampleGPX))
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, 47.1, points[0].Lat)
	assert.Equal(t, 11.2, points[0].Lon)
	require.True(t, points[0].HasElevation())
	assert.Equal(t, 540.5, *points[0].Elevation)
	assert.Equal(t, time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC), points[0].Time)

	assert.Equal(t, 47.101, points[1].Lat)
	assert.Equal(t, 11.201, points[1].Lon)
}

func TestParseConcatenatesTracksAndSegments(t *testing.T) {
	data := `<gpx version="1.1" xmlns="http://www.topografix.com/GPX/1/1">
	<trk>
		<trkseg>
			<trkpt lat="1" lon="1"></trkpt>
			<trkpt lat="2" lon="2"></trkpt>
		</trkseg>
		<trkseg>
			<trkpt lat="3" lon="3"></trkpt>
		</trkseg>
	</trk>
	<trk>
		<trkseg>
			<trkpt lat="4" lon="4"></trkpt>
		</trkseg>
	</trk>
</gpx>`

	points, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, points, 4)
	for i, p := range points {
		assert.Equal(t, float64(i+1), p.Lat)
		assert.Equal(t, float64(i+1), p.Lon)
	}
}

func TestParseGarbageFailsWithParseError(t *testing.T) {
	for _, input := range []string{"", "not xml at all", "<gpx><trk>"} {
		_, err := Parse([]byte(input))
		require.Error(t, err, "input %q", input)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr, "input %q", input)
	}
}

func TestParseNoTrackpointsFailsWithMalformedTrackError(t *testing.T) {
	data := `<gpx version="1.1" xmlns="http://www.topografix.com/GPX/1/1">
	<trk><trkseg></trkseg></trk>
</gpx>`

	_, err := Parse([]byte(data))
	var merr *MalformedTrackError
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, merr.Error(), "no usable track data")
}

func TestParseRejectsBadCoordinates(t *testing.T) {
	cases := map[string]string{
		"missing lat": `<trkpt lon="1"></trkpt>`,
		"missing lon": `<trkpt lat="1"></trkpt>`,
		"bad lat":     `<trkpt lat="abc" lon="1"></trkpt>`,
		"bad lon":     `<trkpt lat="1" lon="abc"></trkpt>`,
		"bad ele":     `<trkpt lat="1" lon="1"><ele>high</ele></trkpt>`,
	}

	for name, pt := range cases {
		t.Run(name, func(t *testing.T) {
			data := fmt.Sprintf(`<gpx><trk><trkseg>%s</trkseg></trk></gpx>`, pt)
			_, err := Parse([]byte(data))
			var merr *MalformedTrackError
			assert.ErrorAs(t, err, &merr)
		})
	}
}

func TestParseToleratesMissingAndBrokenTimestamps(t *testing.T) {
	data := `<gpx><trk><trkseg>
		<trkpt lat="1" lon="1"><time>yesterday lunchtime</time></trkpt>
		<trkpt lat="2" lon="2"></trkpt>
	</trkseg></trk></gpx>`

	points, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.False(t, points[0].HasTime())
	assert.False(t, points[1].HasTime())
}

func TestParseElevationAbsentIsNotZero(t *testing.T) {
	data := `<gpx><trk><trkseg>
		<trkpt lat="1" lon="1"></trkpt>
		<trkpt lat="2" lon="2"><ele>0</ele></trkpt>
	</trkseg></trk></gpx>`

	points, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.False(t, points[0].HasElevation())
	require.True(t, points[1].HasElevation())
	assert.Equal(t, 0.0, *points[1].Elevation)
}

func TestEncodeParseRoundTrip(t *testing.T) {
	points, err := Parse([]byte(sampleGPX))
	require.NoError(t, err)

	data, err := Encode(points)
	require.NoError(t, err)

	again, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, again, len(points))

	for i := range points {
		assert.InDelta(t, points[i].Lat, again[i].Lat, 1e-12)
		assert.InDelta(t, points[i].Lon, again[i].Lon, 1e-12)
		require.Equal(t, points[i].HasElevation(), again[i].HasElevation())
		if points[i].HasElevation() {
			assert.InDelta(t, *points[i].Elevation, *again[i].Elevation, 1e-12)
		}
		assert.True(t, points[i].Time.Equal(again[i].Time))
	}
}

func TestEncodeOmitsAbsentFields(t *testing.T) {
	points := []Trackpoint{{Lat: 1, Lon: 2}}
	data, err := Encode(points)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "<ele>")
	assert.NotContains(t, string(data), "<time>")

	again, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.False(t, again[0].HasElevation())
	assert.False(t, again[0].HasTime())
}

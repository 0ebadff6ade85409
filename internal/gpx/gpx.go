// Package gpx parses GPX 1.0/1.1 track files and derives summary
// statistics from the contained trackpoints.
package gpx

import (
	"encoding/xml"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Trackpoint is one recorded GPS fix. Elevation is nil when the source
// file carries no <ele> for the point; a zero Time means no <time>.
type Trackpoint struct {
	Lat       float64
	Lon       float64
	Elevation *float64
	Time      time.Time
}

// HasElevation reports whether the point carries an elevation reading.
func (p Trackpoint) HasElevation() bool {
	return p.Elevation != nil
}

// HasTime reports whether the point carries a timestamp.
func (p Trackpoint) HasTime() bool {
	return !p.Time.IsZero()
}

// ParseError indicates input that could not be decoded as track data
// at all: malformed XML, or a corrupt binary encoding.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "gpx: unreadable track data: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// MalformedTrackError indicates well-formed XML that does not contain a
// usable track: missing or non-numeric coordinates, or no trackpoints
// at all.
type MalformedTrackError struct {
	Reason string
}

func (e *MalformedTrackError) Error() string {
	return "gpx: malformed track: " + e.Reason
}

// ErrEmptyTrack is returned by ComputeStats when called with no points.
var ErrEmptyTrack = errors.New("gpx: empty track")

// Document model for decoding. Coordinates and elevation are kept as
// strings so that missing vs. non-numeric values stay distinguishable.
type document struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []trackXML `xml:"trk"`
}

type trackXML struct {
	Segments []segmentXML `xml:"trkseg"`
}

type segmentXML struct {
	Points []pointXML `xml:"trkpt"`
}

type pointXML struct {
	Lat  string `xml:"lat,attr"`
	Lon  string `xml:"lon,attr"`
	Ele  string `xml:"ele"`
	Time string `xml:"time"`
}

// Parse reads GPX bytes and returns the trackpoints of all tracks and
// segments flattened in document order. It returns a *ParseError for
// malformed XML and a *MalformedTrackError when the document contains
// no usable trackpoints or a point lacks valid coordinates.
func Parse(data []byte) ([]Trackpoint, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	var points []Trackpoint
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, raw := range seg.Points {
				pt, err := parsePoint(raw)
				if err != nil {
					return nil, err
				}
				points = append(points, pt)
			}
		}
	}

	if len(points) == 0 {
		return nil, &MalformedTrackError{Reason: "no usable track data"}
	}

	return points, nil
}

func parsePoint(raw pointXML) (Trackpoint, error) {
	if raw.Lat == "" || raw.Lon == "" {
		return Trackpoint{}, &MalformedTrackError{Reason: "trackpoint missing lat/lon"}
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(raw.Lat), 64)
	if err != nil {
		return Trackpoint{}, &MalformedTrackError{Reason: "non-numeric latitude " + strconv.Quote(raw.Lat)}
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(raw.Lon), 64)
	if err != nil {
		return Trackpoint{}, &MalformedTrackError{Reason: "non-numeric longitude " + strconv.Quote(raw.Lon)}
	}

	pt := Trackpoint{Lat: lat, Lon: lon}

	if ele := strings.TrimSpace(raw.Ele); ele != "" {
		v, err := strconv.ParseFloat(ele, 64)
		if err != nil {
			return Trackpoint{}, &MalformedTrackError{Reason: "non-numeric elevation " + strconv.Quote(raw.Ele)}
		}
		pt.Elevation = &v
	}

	// An unparsable timestamp is tolerated and treated as absent.
	if ts := strings.TrimSpace(raw.Time); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			pt.Time = t.UTC()
		}
	}

	return pt, nil
}

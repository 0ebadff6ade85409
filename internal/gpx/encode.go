package gpx

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"time"
)

const xmlnsGPX = "http://www.topografix.com/GPX/1/1"

// Serialization model. Separate from the decode structs so optional
// fields can be omitted instead of emitted as zeros.
type outDocument struct {
	XMLName xml.Name   `xml:"gpx"`
	Version string     `xml:"version,attr"`
	Creator string     `xml:"creator,attr"`
	XMLNS   string     `xml:"xmlns,attr"`
	Tracks  []outTrack `xml:"trk"`
}

type outTrack struct {
	Segments []outSegment `xml:"trkseg"`
}

type outSegment struct {
	Points []outPoint `xml:"trkpt"`
}

type outPoint struct {
	Lat  string `xml:"lat,attr"`
	Lon  string `xml:"lon,attr"`
	Ele  string `xml:"ele,omitempty"`
	Time string `xml:"time,omitempty"`
}

// Encode serializes trackpoints as a single-track, single-segment GPX
// 1.1 document. Re-parsing the output yields the same coordinate,
// elevation and timestamp sequence.
func Encode(points []Trackpoint) ([]byte, error) {
	seg := outSegment{Points: make([]outPoint, 0, len(points))}
	for _, p := range points {
		out := outPoint{
			Lat: formatCoord(p.Lat),
			Lon: formatCoord(p.Lon),
		}
		if p.Elevation != nil {
			out.Ele = formatCoord(*p.Elevation)
		}
		if p.HasTime() {
			out.Time = p.Time.UTC().Format(time.RFC3339)
		}
		seg.Points = append(seg.Points, out)
	}

	doc := outDocument{
		Version: "1.1",
		Creator: "trackdb",
		XMLNS:   xmlnsGPX,
		Tracks:  []outTrack{{Segments: []outSegment{seg}}},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// formatCoord uses the shortest representation that round-trips the
// exact float64 value.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

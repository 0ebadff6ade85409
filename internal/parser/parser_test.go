package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfeld/trackdb/internal/gpx"
)

const miniGPX = `<?xml version="1.0"?>
<gpx version="1.1" xmlns="http://www.topografix.com/GPX/1/1">
<trk><trkseg><trkpt lat="47.1" lon="11.2"></trkpt></trkseg></trk>
</gpx>`

func TestDetect(t *testing.T) {
	fitHeader := append([]byte{0x0e, 0x10, 0x5d, 0x08, 0x00, 0x00, 0x00, 0x00}, []byte(".FIT\x00\x00")...)

	cases := []struct {
		name string
		data []byte
		want Format
	}{
		{"gpx", []byte(miniGPX), FormatGPX},
		{"gpx by namespace", []byte(`<?xml version="1.0"?><g xmlns="http://www.topografix.com/GPX/1/1"/>`), FormatGPX},
		{"fit", fitHeader, FormatFIT},
		{"tcx", []byte(`<?xml version="1.0"?><TrainingCenterDatabase></TrainingCenterDatabase>`), FormatTCX},
		{"garbage", []byte("hello world"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Detect(tc.data))
		})
	}
}

func TestNewByExtension(t *testing.T) {
	p, err := New("ride.gpx", nil)
	require.NoError(t, err)
	assert.IsType(t, &GPXParser{}, p)

	p, err = New("Ride.FIT", nil)
	require.NoError(t, err)
	assert.IsType(t, &FITParser{}, p)
}

func TestNewByContent(t *testing.T) {
	p, err := New("upload.bin", []byte(miniGPX))
	require.NoError(t, err)
	assert.IsType(t, &GPXParser{}, p)
}

func TestNewUnsupported(t *testing.T) {
	_, err := New("notes.txt", []byte("just some text"))
	var uerr *UnsupportedFormatError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, FormatUnknown, uerr.Format)

	_, err = New("workout.tcx", []byte(`<TrainingCenterDatabase/>`))
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, FormatTCX, uerr.Format)
}

func TestFITParserRejectsCorruptFile(t *testing.T) {
	_, err := (&FITParser{}).Parse([]byte("definitely not a fit file"))

	var perr *gpx.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestGPXParserDelegates(t *testing.T) {
	points, err := (&GPXParser{}).Parse([]byte(miniGPX))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 47.1, points[0].Lat)
}

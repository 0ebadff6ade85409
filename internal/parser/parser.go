// Package parser selects the right track decoder for an uploaded file
// and normalizes every format into the gpx trackpoint model.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tfeld/trackdb/internal/gpx"
)

// TrackParser decodes raw file bytes into an ordered trackpoint sequence.
type TrackParser interface {
	Parse(data []byte) ([]gpx.Trackpoint, error)
}

// UnsupportedFormatError wraps the detected format of a rejected file.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q", string(e.Format))
}

// New picks a parser by file extension, falling back to content
// sniffing when the extension is unknown.
func New(filename string, data []byte) (TrackParser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gpx":
		return &GPXParser{}, nil
	case ".fit":
		return &FITParser{}, nil
	}

	switch format := Detect(data); format {
	case FormatGPX:
		return &GPXParser{}, nil
	case FormatFIT:
		return &FITParser{}, nil
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
}

// GPXParser decodes GPX XML.
type GPXParser struct{}

func (p *GPXParser) Parse(data []byte) ([]gpx.Trackpoint, error) {
	return gpx.Parse(data)
}

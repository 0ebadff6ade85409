package parser

import "bytes"

type Format string

const (
	FormatGPX     Format = "gpx"
	FormatFIT     Format = "fit"
	FormatTCX     Format = "tcx"
	FormatUnknown Format = "unknown"
)

// Detect sniffs the file format from the leading bytes.
func Detect(data []byte) Format {
	// FIT header: byte 8..11 spell ".FIT".
	if len(data) >= 12 && bytes.Equal(data[8:12], []byte(".FIT")) {
		return FormatFIT
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	if bytes.Contains(head, []byte("<gpx")) ||
		bytes.Contains(head, []byte("topografix.com/GPX")) {
		return FormatGPX
	}
	if bytes.Contains(head, []byte("TrainingCenterDatabase")) {
		return FormatTCX
	}

	return FormatUnknown
}

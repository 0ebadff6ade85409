package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "0 m", FormatDistance(0))
	assert.Equal(t, "999 m", FormatDistance(999.4))
	assert.Equal(t, "1.0 km", FormatDistance(1000))
	assert.Equal(t, "12.3 km", FormatDistance(12345))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 0s", FormatDuration(0))
	assert.Equal(t, "5m 30s", FormatDuration(330))
	assert.Equal(t, "2h 5m", FormatDuration(2*3600+5*60+10))
	assert.Equal(t, "1d 1h 1m", FormatDuration(25*3600+70))
}

func TestFormatDurationPtr(t *testing.T) {
	assert.Equal(t, "–", FormatDurationPtr(nil))

	v := int64(90)
	assert.Equal(t, "1m 30s", FormatDurationPtr(&v))
}

func TestFormatSpeedAndElevation(t *testing.T) {
	assert.Equal(t, "14.8 km/h", FormatSpeed(14.75))
	assert.Equal(t, "420 m", FormatElevation(420.4))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2023-06-01", FormatDate(time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC)))
}

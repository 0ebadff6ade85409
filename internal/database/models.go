package database

import "time"

// Track is one stored activity. Path is the blob-store location of the
// raw uploaded file, relative to the data directory.
type Track struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackStatistics is the derived metrics row for one track. Duration
// fields are nil when the source file carried no timestamps, and the
// elevation extrema are nil when no point carried an elevation; absent
// is not the same as zero.
type TrackStatistics struct {
	TrackID         int64    `json:"track_id"`
	DistanceM       float64  `json:"distance_m"`
	DurationS       *int64   `json:"duration_s"`
	MovingDurationS *int64   `json:"moving_duration_s"`
	ElevationGainM  float64  `json:"elevation_gain_m"`
	ElevationLossM  float64  `json:"elevation_loss_m"`
	MinElevationM   *float64 `json:"min_elevation_m"`
	MaxElevationM   *float64 `json:"max_elevation_m"`
	AvgSpeedKMH     float64  `json:"avg_speed_kmh"`
	MaxSpeedKMH     float64  `json:"max_speed_kmh"`
}

// Database is the persistence contract of the track service.
type Database interface {
	// Tracks
	CreateTrack(track *Track, stats *TrackStatistics, tags []string) error
	GetTrack(id int64) (*Track, error)
	ListTracks() ([]Track, error)
	DeleteTrack(id int64) error

	// Statistics
	GetStatistics(trackID int64) (*TrackStatistics, error)
	ReplaceStatistics(stats *TrackStatistics) error

	// Tags
	ListTags() ([]string, error)
	TagsForTrack(trackID int64) ([]string, error)
	FilterTracksByTags(tags []string) ([]Track, error)

	Close() error
}

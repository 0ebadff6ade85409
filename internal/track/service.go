// Package track implements the upload, delete and recompute flows
// tying the parsing core to the persistence and blob-store adapters.
package track

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tfeld/trackdb/internal/database"
	"github.com/tfeld/trackdb/internal/gpx"
	"github.com/tfeld/trackdb/internal/parser"
	"github.com/tfeld/trackdb/internal/storage"
)

type Service struct {
	db    database.Database
	store *storage.Store
	log   *logrus.Logger
}

func NewService(db database.Database, store *storage.Store, log *logrus.Logger) *Service {
	return &Service{
		db:    db,
		store: store,
		log:   log,
	}
}

// Upload is one track file handed in by the web layer or the importer.
type Upload struct {
	Filename string
	Name     string
	Tags     []string
	Data     []byte
}

// Add parses the upload, derives statistics, stores the raw file and
// persists track, statistics and tags in one go. The stored blob is
// removed again if persistence fails, so no partial state survives.
func (s *Service) Add(ctx context.Context, up Upload) (*database.Track, error) {
	p, err := parser.New(up.Filename, up.Data)
	if err != nil {
		return nil, err
	}

	points, err := p.Parse(up.Data)
	if err != nil {
		return nil, err
	}

	stats, err := gpx.ComputeStats(points)
	if err != nil {
		return nil, err
	}

	date := trackDate(points)

	name := strings.TrimSpace(up.Name)
	if name == "" {
		name = "Unnamed activity on " + date.Format("2006-01-02")
	}

	relPath, err := s.store.Save(up.Filename, up.Data)
	if err != nil {
		return nil, err
	}

	track := &database.Track{
		Name: name,
		Date: date,
		Path: relPath,
	}

	if err := s.db.CreateTrack(track, statisticsRow(stats), normalizeTags(up.Tags, date)); err != nil {
		if rmErr := s.store.Remove(relPath); rmErr != nil {
			s.log.WithError(rmErr).WithField("path", relPath).Warn("could not clean up stored file")
		}
		return nil, fmt.Errorf("persist track: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"track_id":   track.ID,
		"name":       track.Name,
		"distance_m": stats.Distance,
		"points":     len(points),
	}).Info("track added")

	return track, nil
}

// Delete removes the track row (statistics and tags cascade) and its
// stored file.
func (s *Service) Delete(ctx context.Context, id int64) (*database.Track, error) {
	track, err := s.db.GetTrack(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.DeleteTrack(id); err != nil {
		return nil, err
	}

	if err := s.store.Remove(track.Path); err != nil {
		s.log.WithError(err).WithField("path", track.Path).Warn("could not remove stored file")
	}

	s.log.WithFields(logrus.Fields{"track_id": id, "name": track.Name}).Info("track deleted")
	return track, nil
}

// RawFile returns the stored bytes of a track.
func (s *Service) RawFile(id int64) (*database.Track, []byte, error) {
	track, err := s.db.GetTrack(id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.store.Read(track.Path)
	if err != nil {
		return nil, nil, err
	}

	return track, data, nil
}

// Recompute re-parses every stored file and replaces the statistics
// rows. Tracks whose file fails to parse are logged and skipped.
func (s *Service) Recompute(ctx context.Context) error {
	tracks, err := s.db.ListTracks()
	if err != nil {
		return err
	}

	for _, track := range tracks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.recomputeTrack(track); err != nil {
			s.log.WithError(err).WithField("track_id", track.ID).Error("recompute failed")
		}
	}

	return nil
}

func (s *Service) recomputeTrack(track database.Track) error {
	data, err := s.store.Read(track.Path)
	if err != nil {
		return err
	}

	p, err := parser.New(track.Path, data)
	if err != nil {
		return err
	}

	points, err := p.Parse(data)
	if err != nil {
		return err
	}

	stats, err := gpx.ComputeStats(points)
	if err != nil {
		return err
	}

	row := statisticsRow(stats)
	row.TrackID = track.ID
	return s.db.ReplaceStatistics(row)
}

// trackDate is the timestamp of the first timed point, or now for
// tracks without time data.
func trackDate(points []gpx.Trackpoint) time.Time {
	for _, p := range points {
		if p.HasTime() {
			return p.Time
		}
	}
	return time.Now().UTC()
}

// statisticsRow converts calculator output into a persistence row,
// keeping absent metrics as NULLs rather than zeros.
func statisticsRow(stats gpx.Stats) *database.TrackStatistics {
	row := &database.TrackStatistics{
		DistanceM:      stats.Distance,
		ElevationGainM: stats.ElevationGain,
		ElevationLossM: stats.ElevationLoss,
		MinElevationM:  stats.MinElevation,
		MaxElevationM:  stats.MaxElevation,
		AvgSpeedKMH:    stats.AvgSpeed,
		MaxSpeedKMH:    stats.MaxSpeed,
	}

	if stats.HasDuration {
		duration := int64(stats.Duration.Seconds())
		moving := int64(stats.MovingDuration.Seconds())
		row.DurationS = &duration
		row.MovingDurationS = &moving
	}

	return row
}

// normalizeTags trims, deduplicates and sorts the tags and implicitly
// adds the track's year.
func normalizeTags(tags []string, date time.Time) []string {
	seen := map[string]bool{}
	var out []string

	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}

	for _, tag := range tags {
		add(tag)
	}
	add(date.Format("2006"))

	sort.Strings(out)
	return out
}

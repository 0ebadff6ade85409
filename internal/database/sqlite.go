package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const timeLayout = "2006-01-02 15:04:05"

// ErrTrackNotFound is returned when a track id has no row.
var ErrTrackNotFound = errors.New("track not found")

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	sqlite := &SQLiteDB{db: db}

	if err := sqlite.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return sqlite, nil
}

// NewSQLiteDBFromDB wraps an existing sql.DB connection.
func NewSQLiteDBFromDB(db *sql.DB) *SQLiteDB {
	return &SQLiteDB{db: db}
}

func (s *SQLiteDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tracks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		date DATETIME NOT NULL,
		path TEXT UNIQUE NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS statistics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		track_id INTEGER UNIQUE NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
		distance_m REAL NOT NULL,
		duration_s INTEGER,
		moving_duration_s INTEGER,
		elevation_gain_m REAL NOT NULL,
		elevation_loss_m REAL NOT NULL,
		min_elevation_m REAL,
		max_elevation_m REAL,
		avg_speed_kmh REAL NOT NULL,
		max_speed_kmh REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		track_id INTEGER NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
		value TEXT NOT NULL,
		UNIQUE(track_id, value)
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_date ON tracks(date);
	CREATE INDEX IF NOT EXISTS idx_tags_value ON tags(value);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) CreateTrack(track *Track, stats *TrackStatistics, tags []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO tracks (name, date, path) VALUES (?, ?, ?)`,
		track.Name, track.Date.UTC().Format(timeLayout), track.Path,
	)
	if err != nil {
		return fmt.Errorf("insert track: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	track.ID = id

	if stats != nil {
		stats.TrackID = id
		if err := insertStatistics(tx, stats); err != nil {
			return fmt.Errorf("insert statistics: %w", err)
		}
	}

	for _, tag := range tags {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO tags (track_id, value) VALUES (?, ?)`,
			id, tag,
		); err != nil {
			return fmt.Errorf("insert tag %q: %w", tag, err)
		}
	}

	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func insertStatistics(e execer, stats *TrackStatistics) error {
	_, err := e.Exec(`
	INSERT INTO statistics (
		track_id, distance_m, duration_s, moving_duration_s,
		elevation_gain_m, elevation_loss_m, min_elevation_m, max_elevation_m,
		avg_speed_kmh, max_speed_kmh
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.TrackID, stats.DistanceM, stats.DurationS, stats.MovingDurationS,
		stats.ElevationGainM, stats.ElevationLossM, stats.MinElevationM, stats.MaxElevationM,
		stats.AvgSpeedKMH, stats.MaxSpeedKMH,
	)
	return err
}

func (s *SQLiteDB) GetTrack(id int64) (*Track, error) {
	row := s.db.QueryRow(
		`SELECT id, name, date, path, created_at FROM tracks WHERE id = ?`, id,
	)

	track, err := scanTrack(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrackNotFound
		}
		return nil, err
	}
	return track, nil
}

func (s *SQLiteDB) ListTracks() ([]Track, error) {
	rows, err := s.db.Query(
		`SELECT id, name, date, path, created_at FROM tracks ORDER BY date ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTracks(rows)
}

func (s *SQLiteDB) DeleteTrack(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTrackNotFound
	}
	// statistics and tags go with the track via ON DELETE CASCADE
	return nil
}

func (s *SQLiteDB) GetStatistics(trackID int64) (*TrackStatistics, error) {
	row := s.db.QueryRow(`
	SELECT track_id, distance_m, duration_s, moving_duration_s,
	       elevation_gain_m, elevation_loss_m, min_elevation_m, max_elevation_m,
	       avg_speed_kmh, max_speed_kmh
	FROM statistics WHERE track_id = ?`, trackID)

	var st TrackStatistics
	err := row.Scan(
		&st.TrackID, &st.DistanceM, &st.DurationS, &st.MovingDurationS,
		&st.ElevationGainM, &st.ElevationLossM, &st.MinElevationM, &st.MaxElevationM,
		&st.AvgSpeedKMH, &st.MaxSpeedKMH,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrackNotFound
		}
		return nil, err
	}

	return &st, nil
}

func (s *SQLiteDB) ReplaceStatistics(stats *TrackStatistics) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM statistics WHERE track_id = ?`, stats.TrackID); err != nil {
		return err
	}
	if err := insertStatistics(tx, stats); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteDB) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT value FROM tags ORDER BY value ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

func (s *SQLiteDB) TagsForTrack(trackID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT value FROM tags WHERE track_id = ? ORDER BY value ASC`, trackID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

// FilterTracksByTags returns tracks carrying every one of the given
// tags, ordered by date. An empty tag list returns all tracks.
func (s *SQLiteDB) FilterTracksByTags(tags []string) ([]Track, error) {
	if len(tags) == 0 {
		return s.ListTracks()
	}

	placeholders := strings.Repeat("?,", len(tags))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
	SELECT t.id, t.name, t.date, t.path, t.created_at
	FROM tracks t
	JOIN tags g ON g.track_id = t.id
	WHERE g.value IN (%s)
	GROUP BY t.id
	HAVING COUNT(DISTINCT g.value) = ?
	ORDER BY t.date ASC, t.id ASC`, placeholders)

	args := make([]interface{}, 0, len(tags)+1)
	for _, tag := range tags {
		args = append(args, tag)
	}
	args = append(args, len(tags))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTracks(rows)
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanTrack scans the date columns straight into time.Time; the driver
// converts DATETIME columns itself.
func scanTrack(row rowScanner) (*Track, error) {
	var t Track
	if err := row.Scan(&t.ID, &t.Name, &t.Date, &t.Path, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTracks(rows *sql.Rows) ([]Track, error) {
	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *t)
	}
	return tracks, rows.Err()
}

// Package importer feeds track files dropped into a watch directory
// through the regular upload pipeline.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tfeld/trackdb/internal/track"
)

type Importer struct {
	dir    string
	tracks *track.Service
	log    *logrus.Logger
}

func New(dir string, tracks *track.Service, log *logrus.Logger) (*Importer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create import directory: %w", err)
	}

	return &Importer{
		dir:    dir,
		tracks: tracks,
		log:    log,
	}, nil
}

// Run scans the import directory once and imports every track file it
// finds. Successfully imported files are removed from the directory
// (the blob store keeps its own copy); failed files stay behind for
// the next run and are logged.
func (im *Importer) Run(ctx context.Context) error {
	entries, err := os.ReadDir(im.dir)
	if err != nil {
		return fmt.Errorf("read import directory: %w", err)
	}

	var imported, failed int
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if entry.IsDir() || !importable(entry.Name()) {
			continue
		}

		if err := im.importFile(ctx, entry.Name()); err != nil {
			failed++
			im.log.WithError(err).WithField("file", entry.Name()).Error("import failed")
			continue
		}
		imported++
	}

	if imported > 0 || failed > 0 {
		im.log.WithFields(logrus.Fields{
			"imported": imported,
			"failed":   failed,
		}).Info("import scan finished")
	}

	return nil
}

func (im *Importer) importFile(ctx context.Context, name string) error {
	path := filepath.Join(im.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if _, err := im.tracks.Add(ctx, track.Upload{
		Filename: name,
		Data:     data,
	}); err != nil {
		return err
	}

	return os.Remove(path)
}

func importable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gpx", ".fit":
		return true
	}
	return false
}

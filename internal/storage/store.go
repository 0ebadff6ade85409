// Package storage keeps the raw uploaded track files on disk, keyed by
// a path relative to the data directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const uploadDir = "upload-data"

type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, uploadDir), 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Save writes data under a sanitized, collision-free name derived from
// the original filename and returns the relative path it is stored at.
func (s *Store) Save(originalName string, data []byte) (string, error) {
	name := uniqueName(originalName)
	relPath := filepath.Join(uploadDir, name)

	if err := os.WriteFile(filepath.Join(s.baseDir, relPath), data, 0644); err != nil {
		return "", fmt.Errorf("write track file: %w", err)
	}

	return relPath, nil
}

func (s *Store) Read(relPath string) ([]byte, error) {
	abs, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}

func (s *Store) Remove(relPath string) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	return os.Remove(abs)
}

// resolve rejects paths that would escape the data directory.
func (s *Store) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(relPath)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid track path %q", relPath)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

func uniqueName(originalName string) string {
	base := filepath.Base(originalName)
	ext := strings.ToLower(filepath.Ext(base))
	stem := sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "track"
	}
	return fmt.Sprintf("%s_%s%s", stem, uuid.NewString(), ext)
}

// sanitize keeps letters, digits, dashes and underscores.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('_')
		}
	}
	return b.String()
}

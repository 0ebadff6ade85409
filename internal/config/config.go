package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config is assembled from environment variables, optionally seeded
// from a .env file in the working directory.
type Config struct {
	Addr           string
	DataDir        string
	DBPath         string
	TemplateDir    string
	ImportDir      string
	ImportSchedule string
	LogLevel       string
}

func Load() Config {
	// A missing .env file is fine; the system environment still applies.
	_ = godotenv.Load()

	dataDir := getenv("DATA_DIR", "./data")

	return Config{
		Addr:           getenv("ADDR", ":8888"),
		DataDir:        dataDir,
		DBPath:         getenv("DB_PATH", filepath.Join(dataDir, "tracks.db")),
		TemplateDir:    getenv("TEMPLATE_DIR", "./internal/web/templates"),
		ImportDir:      getenv("IMPORT_DIR", filepath.Join(dataDir, "import")),
		ImportSchedule: getenv("IMPORT_SCHEDULE", "@hourly"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

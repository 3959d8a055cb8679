package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type ConfigStruct struct {
	Server   ServerConfig
	Sheets   SheetsConfig
	Lyrics   LyricsConfig
	Database DatabaseConfig
	Options  Options
}

type ServerConfig struct {
	Port string
}

type SheetsConfig struct {
	CredentialsFile string
	IndexSheetID    string
	HeaderRange     string
	BodyRange       string
	BackoffSeconds  int
}

type LyricsConfig struct {
	BaseURL       string
	OverrideDir   string
	UserAgent     string
	Workers       int
	RateLimitMsec int
}

type DatabaseConfig struct {
	Path string
}

type Options struct {
	LogLevel       string
	UTCOffsetHours int
	SentryDSN      string
	Release        string
}

func (s *SheetsConfig) Backoff() time.Duration {
	return time.Duration(s.BackoffSeconds) * time.Second
}

func (l *LyricsConfig) RateLimit() time.Duration {
	return time.Duration(l.RateLimitMsec) * time.Millisecond
}

// Location is the fixed zone used to decide what "today" is for setlists.
func (o *Options) Location() *time.Location {
	return time.FixedZone("setlist", o.UTCOffsetHours*60*60)
}

var Config *ConfigStruct

func NewConfig() {
	config := &ConfigStruct{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Sheets: SheetsConfig{
			CredentialsFile: expandHome(getEnv("GOOGLE_CREDENTIALS_FILE", "~/.config/googleserviceaccount.key")),
			IndexSheetID:    os.Getenv("SETLIST_INDEX_SHEET_ID"),
			HeaderRange:     getEnv("SETLIST_HEADER_RANGE", "C1:L1"),
			BodyRange:       getEnv("SETLIST_BODY_RANGE", "C3:L"),
			BackoffSeconds:  getBackoffSeconds(),
		},
		Lyrics: LyricsConfig{
			BaseURL:       strings.TrimSuffix(getEnv("LRCLIB_BASE_URL", "https://lrclib.net"), "/"),
			OverrideDir:   getEnv("LYRICS_OVERRIDE_DIR", "/var/www/html/lyrics-override"),
			UserAgent:     getEnv("LRCLIB_USER_AGENT", "jamtools (https://github.com/dmick/jamtools)"),
			Workers:       getWorkers(),
			RateLimitMsec: getRateLimit(),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "/app/data/jamtools.db"),
		},
		Options: Options{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			UTCOffsetHours: getUTCOffset(),
			SentryDSN:      os.Getenv("SENTRY_DSN"),
			Release:        os.Getenv("RELEASE"),
		},
	}

	Config = config
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func getWorkers() int {
	workersStr := os.Getenv("LYRICS_WORKERS")
	if workersStr == "" {
		return 20
	}
	workers, err := strconv.Atoi(workersStr)
	if err != nil || workers <= 0 {
		return 20
	}
	if workers > 64 {
		return 64 // lrclib is a free service, don't hammer it
	}
	return workers
}

func getBackoffSeconds() int {
	secsStr := os.Getenv("SHEETS_BACKOFF_SECONDS")
	if secsStr == "" {
		return 1
	}
	secs, err := strconv.Atoi(secsStr)
	if err != nil || secs <= 0 {
		return 1
	}
	return secs
}

func getRateLimit() int {
	msStr := os.Getenv("LRCLIB_RATE_LIMIT_MS")
	if msStr == "" {
		return 0
	}
	ms, err := strconv.Atoi(msStr)
	if err != nil || ms < 0 {
		return 0
	}
	if ms > 5000 {
		return 5000
	}
	return ms
}

func getUTCOffset() int {
	offsetStr := os.Getenv("SETLIST_UTC_OFFSET_HOURS")
	if offsetStr == "" {
		return -6
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < -12 || offset > 14 {
		return -6
	}
	return offset
}

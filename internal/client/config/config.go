package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/mediahub/internal/client/storage"
)

// EnvServerURL overrides the backend base URL.
const EnvServerURL = "MEDIAHUB_API_URL"

// Config holds runtime settings for the mediahub CLI.
//
// Fields:
//   - ServerURL: base URL of the backend; request paths are joined onto it.
//   - RequestTimeout: per-request deadline of the HTTP transport.
//   - DatabasePath: SQLite file holding the persisted session.
//   - StorageSecret: when set, the persisted session is sealed with it.
//   - LogLevel: debug, info, warn or error.
//   - PageSize: items per page when browsing.
//   - MaxUploadSize: largest file accepted for upload, bytes.
//   - RateLimit / RateBurst: outbound request budget; 0 disables limiting.
//   - Storage: optional S3-compatible bucket used by "backup".
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	DatabasePath   string
	StorageSecret  string
	LogLevel       string
	PageSize       int
	MaxUploadSize  int64
	RateLimit      float64
	RateBurst      int
	Storage        storage.Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 30 * time.Second
	c.DatabasePath = "mediahub.db"
	c.StorageSecret = ""
	c.LogLevel = "warn"
	c.PageSize = 10
	c.MaxUploadSize = 10 << 20
	c.RateLimit = 0
	c.RateBurst = 1
	c.Storage = storage.Config{Region: "us-east-1"}
}

// LoadConfig constructs a Config from defaults, then the JSON file named by
// -c/-config, then the environment, then command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvServerURL); ok && v != "" {
		cfg.ServerURL = v
	}
}

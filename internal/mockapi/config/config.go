// Package config handles configuration for the fake backend, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the fake backend.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP listener.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not reuse test defaults.
//   - TokenValidityDuration: lifetime of issued access tokens.
//   - MaxUploadSize: largest accepted upload in bytes.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddr          string
	SecretKey             string
	TokenValidityDuration time.Duration
	MaxUploadSize         int64
	LogLevel              string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 60 * time.Minute
	c.MaxUploadSize = 10 << 20
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags found in
// args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

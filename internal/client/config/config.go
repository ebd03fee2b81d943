package config

import "time"

// Config holds runtime settings for the FeedSync CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP API.
//   - FeedPageSize: how many entities to request per feed page.
//   - UploadTimeout: per-file time budget for attachment uploads.
//   - UploadParallelism: cap on concurrent attachment uploads.
//   - UseS3Direct: upload attachments straight to the object store instead of
//     proxying through the backend.
//   - S3*: object-store settings, used only when UseS3Direct is set.
type Config struct {
	ServerEndpointAddr string
	FeedPageSize       int
	UploadTimeout      time.Duration
	UploadParallelism  int

	UseS3Direct     bool
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.FeedPageSize = 20
	c.UploadTimeout = 30 * time.Second
	c.UploadParallelism = 3
	c.UseS3Direct = false
	c.S3Region = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Package config loads runtime configuration for the FeedSync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP API
//	-n int      feed page size
//	-t int      per-file upload timeout (seconds)
//	-p int      maximum concurrent uploads
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the upload timeout, so values can
// be either strings like "30s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "feed_page_size": 20,
//	  "upload_timeout": "30s",
//	  "upload_parallelism": 3,
//	  "use_s3_direct": true,
//	  "s3_endpoint": "http://127.0.0.1:9000",
//	  "s3_region": "us-east-1",
//	  "s3_bucket": "feed-media",
//	  "s3_access_key": "minioadmin",
//	  "s3_secret_key": "minioadmin",
//	  "s3_public_base_url": "http://127.0.0.1:9000/feed-media"
//	}
//
// Primary API
//
//   - type Config                     — holds the endpoint, paging and upload settings
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config

package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/feedsync/internal/flagx"
	"github.com/dmitrijs2005/feedsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the upload timeout either
// as a string like "30s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	FeedPageSize       int            `json:"feed_page_size"`
	UploadTimeout      timex.Duration `json:"upload_timeout"`
	UploadParallelism  int            `json:"upload_parallelism"`
	UseS3Direct        bool           `json:"use_s3_direct"`
	S3Endpoint         string         `json:"s3_endpoint"`
	S3Region           string         `json:"s3_region"`
	S3Bucket           string         `json:"s3_bucket"`
	S3AccessKey        string         `json:"s3_access_key"`
	S3SecretKey        string         `json:"s3_secret_key"`
	S3PublicBaseURL    string         `json:"s3_public_base_url"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config. Zero values for the
//     endpoint, page size, timeout and parallelism are treated as "not set"
//     and do not clobber earlier sources; the S3 block is copied as-is.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.FeedPageSize > 0 {
		cfg.FeedPageSize = jc.FeedPageSize
	}
	if jc.UploadTimeout.Duration > 0 {
		cfg.UploadTimeout = time.Duration(jc.UploadTimeout.Duration)
	}
	if jc.UploadParallelism > 0 {
		cfg.UploadParallelism = jc.UploadParallelism
	}

	cfg.UseS3Direct = jc.UseS3Direct
	if jc.S3Endpoint != "" {
		cfg.S3Endpoint = jc.S3Endpoint
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
	if jc.S3PublicBaseURL != "" {
		cfg.S3PublicBaseURL = jc.S3PublicBaseURL
	}
}

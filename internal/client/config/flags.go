package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/feedsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend API (default from Config)
//	-n int      feed page size (default from Config)
//	-t int      per-file upload timeout in seconds (default from Config)
//	-p int      maximum concurrent uploads (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-n", "-t", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the backend API")
	fs.IntVar(&cfg.FeedPageSize, "n", cfg.FeedPageSize, "feed page size")
	uploadTimeout := fs.Int("t", int(cfg.UploadTimeout.Seconds()), "per-file upload timeout (in seconds)")
	fs.IntVar(&cfg.UploadParallelism, "p", cfg.UploadParallelism, "maximum concurrent uploads")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.UploadTimeout = time.Duration(*uploadTimeout) * time.Second
}

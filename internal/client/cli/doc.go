// Package cli provides the interactive FeedSync command-line client.
//
// It wires configuration, the HTTP API client, the in-memory feed cache, the
// optimistic mutation engine and the submission pipeline into an interactive
// REPL. Typical flow: prompt for credentials, load the first feed page, and
// execute user commands.
//
// Key features:
//   - Login with username/password
//   - Browse the feed page by page
//   - Compose posts with attachments, comments and remixes
//   - Like and delete entities with immediate feedback
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli

package uploads

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/client/models"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

// Request pairs a pending file with the local id of the attachment it
// belongs to, so results can be routed back to their originating record.
type Request struct {
	LocalID string
	File    models.PendingFile
}

// Result is the terminal report for one file upload. Exactly one Result is
// produced per Request; State is always succeeded or failed.
type Result struct {
	LocalID   string
	State     models.UploadState
	RemoteURL string
	Kind      models.AttachmentKind
	Err       string
}

// Coordinator drives the parallel upload of pending attachments. Each call
// to Upload is a finite, non-restartable batch; retries are always fresh
// calls initiated after explicit user action.
type Coordinator struct {
	uploader    Uploader
	timeout     time.Duration
	parallelism int
	log         logging.Logger
}

// NewCoordinator builds a coordinator. timeout bounds each individual file
// upload; parallelism caps the number of concurrent uploads per batch
// (0 means unlimited).
func NewCoordinator(u Uploader, timeout time.Duration, parallelism int, log logging.Logger) *Coordinator {
	return &Coordinator{
		uploader:    u,
		timeout:     timeout,
		parallelism: parallelism,
		log:         log.With("component", "uploads"),
	}
}

// Upload starts one upload per request and returns a channel that yields a
// terminal Result per file in completion order, then closes. A failure or
// timeout of one file never affects its siblings, so the coordinator must
// not propagate errors between goroutines.
func (c *Coordinator) Upload(ctx context.Context, reqs []Request) <-chan Result {
	out := make(chan Result, len(reqs))

	var g errgroup.Group
	if c.parallelism > 0 {
		g.SetLimit(c.parallelism)
	}

	for _, req := range reqs {
		g.Go(func() error {
			out <- c.uploadOne(ctx, req)
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(out)
	}()

	return out
}

func (c *Coordinator) uploadOne(ctx context.Context, req Request) Result {
	uctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		uctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.uploader.Upload(uctx, req.File)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "upload timed out"
		}
		c.log.Warn(ctx, "upload failed", "localId", req.LocalID, "name", req.File.Name, "error", err)
		return Result{LocalID: req.LocalID, State: models.UploadStateFailed, Err: msg}
	}

	url, kind, nerr := normalizeResult(req.File, res)
	if nerr != nil {
		c.log.Warn(ctx, "upload result rejected", "localId", req.LocalID, "name", req.File.Name, "error", nerr)
		return Result{LocalID: req.LocalID, State: models.UploadStateFailed, Err: nerr.Error()}
	}

	c.log.Debug(ctx, "upload finished", "localId", req.LocalID, "url", url)
	return Result{LocalID: req.LocalID, State: models.UploadStateSucceeded, RemoteURL: url, Kind: kind}
}

var errResultNotMatched = errors.New("upload result not matched")

// normalizeResult is the single place that converts any accepted wire shape
// into the canonical remote reference. The result is matched back to the
// originating file by name first, falling back to the payload size when the
// response omits the original filename; an unmatched result fails the file
// explicitly rather than silently succeeding.
func normalizeResult(file models.PendingFile, res *api.UploadResult) (string, models.AttachmentKind, error) {
	if res == nil || res.URL == "" {
		return "", "", errResultNotMatched
	}

	matched := false
	switch {
	case res.Name != "":
		matched = res.Name == file.Name
	case res.Size > 0:
		matched = res.Size == file.Size()
	}
	if !matched {
		return "", "", errResultNotMatched
	}

	kind := models.AttachmentKind(res.Kind)
	switch kind {
	case models.AttachmentKindImage, models.AttachmentKindVideo, models.AttachmentKindDocument:
	default:
		kind = models.KindFromContentType(file.ContentType)
	}

	return res.URL, kind, nil
}

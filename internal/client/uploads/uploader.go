package uploads

import (
	"context"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/client/models"
)

// Uploader stores one file remotely and returns the wire-shaped result.
// Implementations must be safe for concurrent use; the coordinator calls
// Upload from one goroutine per file.
type Uploader interface {
	Upload(ctx context.Context, file models.PendingFile) (*api.UploadResult, error)
}

// APIUploader uploads through the feed service's upload endpoint, tagging
// each file with a routing tag the server uses to pick a storage location.
type APIUploader struct {
	client api.Client
	tag    string
}

func NewAPIUploader(client api.Client, tag string) *APIUploader {
	return &APIUploader{client: client, tag: tag}
}

func (u *APIUploader) Upload(ctx context.Context, file models.PendingFile) (*api.UploadResult, error) {
	return u.client.UploadFile(ctx, file.Name, file.ContentType, file.Data, u.tag)
}

package api

import (
	"context"

	"github.com/dmitrijs2005/feedsync/internal/client/models"
)

// FeedPage is one page of feed entities together with the cursor to fetch
// the next page. An empty NextCursor means the feed is exhausted.
type FeedPage struct {
	Items      []*models.Entity `json:"items"`
	NextCursor string           `json:"nextCursor"`
}

// CreateEntityRequest is the write payload for posts, comments and remixes.
type CreateEntityRequest struct {
	Content        string                 `json:"content,omitempty"`
	AttachmentRefs []models.AttachmentRef `json:"attachmentRefs,omitempty"`
	TargetID       string                 `json:"targetId,omitempty"`
}

// UploadResult is the wire shape of an upload endpoint response. Name and
// Size are optional; callers match results back to their originating file by
// Name first and Size as a fallback.
type UploadResult struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// Notification types understood by the notification endpoint.
const (
	NotificationCommented = "commented"
	NotificationRemixed   = "remixed"
	NotificationLiked     = "liked"
)

// Notification is a fire-and-forget secondary write addressed to the author
// of the entity acted upon. The core relies on no response contract.
type Notification struct {
	Type        string `json:"type"`
	RecipientID string `json:"recipientId"`
	SenderID    string `json:"senderId"`
	Content     string `json:"content,omitempty"`
}

// Client is the narrow remote boundary the submission core talks to. All
// methods return sentinel-wrapped errors suitable for errors.Is matching.
type Client interface {
	Close() error
	Login(ctx context.Context, username string, password []byte) error

	FetchFeed(ctx context.Context, cursor string, limit int) (*FeedPage, error)
	CreatePost(ctx context.Context, in CreateEntityRequest) (*models.Entity, error)
	CreateComment(ctx context.Context, postID string, in CreateEntityRequest) (*models.Entity, error)
	RemixPost(ctx context.Context, targetID string, in CreateEntityRequest) (*models.Entity, error)
	DeleteEntity(ctx context.Context, id string) error
	LikeEntity(ctx context.Context, id string) (*models.Entity, error)

	UploadFile(ctx context.Context, name string, contentType string, data []byte, tag string) (*UploadResult, error)
	Notify(ctx context.Context, n Notification) error
}

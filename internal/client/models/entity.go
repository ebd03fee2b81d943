// Package models defines feed entity types and their fields.
package models

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind classifies a feed entity.
type EntityKind string

const (
	EntityKindPost    EntityKind = "post"
	EntityKindComment EntityKind = "comment"
)

// Origin records whether an entity was written locally ahead of the server
// response or confirmed by the server. Reconciliation is a transition from
// OriginOptimistic to OriginCommitted, never a silent field mutation.
type Origin int

const (
	// OriginOptimistic marks an entity inserted under a locally generated
	// temporary id while the authoritative write is still in flight.
	OriginOptimistic Origin = iota
	// OriginCommitted marks an entity returned by the server.
	OriginCommitted
)

// AttachmentRef is the post-upload view of an attachment: only the remote
// location and kind survive into a feed entity.
type AttachmentRef struct {
	URL  string         `json:"url"`
	Kind AttachmentKind `json:"kind"`
}

// Entity is a single feed item (post or comment).
//
// ID is globally unique within the cache. For optimistic entities ID holds the
// temporary id until reconciliation replaces the whole record.
type Entity struct {
	ID               string          `json:"id"`
	Kind             EntityKind      `json:"kind"`
	Content          string          `json:"content"`
	AuthorID         string          `json:"authorId"`
	AuthorName       string          `json:"authorName,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	Attachments      []AttachmentRef `json:"attachments,omitempty"`
	LikeCount        int             `json:"likeCount"`
	CommentCount     int             `json:"commentCount"`
	RemixCount       int             `json:"remixCount"`
	IsRemix          bool            `json:"isRemix,omitempty"`
	OriginalEntityID string          `json:"originalEntityId,omitempty"`

	Origin Origin `json:"-"`
}

// NewOptimistic builds an entity under a fresh temporary id, authored by the
// given actor, stamped with the local clock. The server-confirmed counterpart
// replaces it during reconciliation.
func NewOptimistic(kind EntityKind, content string, authorID, authorName string, refs []AttachmentRef) *Entity {
	return &Entity{
		ID:          TempID(),
		Kind:        kind,
		Content:     content,
		AuthorID:    authorID,
		AuthorName:  authorName,
		CreatedAt:   time.Now(),
		Attachments: refs,
		Origin:      OriginOptimistic,
	}
}

// Committed reports whether the entity was confirmed by the server.
func (e *Entity) Committed() bool {
	return e.Origin == OriginCommitted
}

// TempID generates a temporary id for an optimistic entity. The "tmp-" prefix
// keeps temporary ids recognizable in logs; servers never produce them.
func TempID() string {
	return "tmp-" + uuid.NewString()
}

package models

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// AttachmentKind classifies an attachment by media type.
type AttachmentKind string

const (
	AttachmentKindImage    AttachmentKind = "image"
	AttachmentKindVideo    AttachmentKind = "video"
	AttachmentKindDocument AttachmentKind = "document"
)

// KindFromContentType maps a MIME content type onto an AttachmentKind.
// Anything that is not an image or a video is treated as a document.
func KindFromContentType(ct string) AttachmentKind {
	switch {
	case strings.HasPrefix(ct, "image/"):
		return AttachmentKindImage
	case strings.HasPrefix(ct, "video/"):
		return AttachmentKindVideo
	default:
		return AttachmentKindDocument
	}
}

// UploadState is the lifecycle state of a single attachment upload.
//
// Allowed transitions: pending → uploading → succeeded | failed. A failed
// attachment never goes back to pending in place; retry discards the record
// and registers the source file as a fresh attachment.
type UploadState string

const (
	UploadStatePending   UploadState = "pending"
	UploadStateUploading UploadState = "uploading"
	UploadStateSucceeded UploadState = "succeeded"
	UploadStateFailed    UploadState = "failed"
)

// ProgressFailed is the sentinel progress value for a failed upload.
const ProgressFailed = -1

// PendingFile is a file selected by the user but not yet stored remotely.
// The attachment owns it exclusively until the upload reaches a terminal
// state or the attachment is discarded.
type PendingFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes. Upload results that omit the
// original filename are matched back to their file by this value.
func (f PendingFile) Size() int64 {
	return int64(len(f.Data))
}

// PreviewHandle is a locally generated, revocable display reference for a
// pending attachment. Release is safe to call multiple times but revokes the
// underlying resource exactly once.
type PreviewHandle struct {
	url     string
	once    sync.Once
	release func()
}

// NewPreviewHandle wraps a display URL and its revocation callback. A nil
// release callback is allowed.
func NewPreviewHandle(url string, release func()) *PreviewHandle {
	return &PreviewHandle{url: url, release: release}
}

// URL returns the display reference. Empty after construction only if the
// preview could not be generated.
func (p *PreviewHandle) URL() string {
	if p == nil {
		return ""
	}
	return p.url
}

// Release revokes the preview resource. Subsequent calls are no-ops.
func (p *PreviewHandle) Release() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		if p.release != nil {
			p.release()
		}
	})
}

// Attachment is one pending-submission attachment and its upload lifecycle.
//
// RemoteURL is set if and only if State == UploadStateSucceeded.
type Attachment struct {
	LocalID    string
	SourceFile PendingFile
	Preview    *PreviewHandle
	RemoteURL  string
	Kind       AttachmentKind
	State      UploadState
	Progress   int
	Error      string
}

// NewAttachment registers a pending attachment for the given file with a
// fresh local id.
func NewAttachment(file PendingFile, preview *PreviewHandle) *Attachment {
	return &Attachment{
		LocalID:    uuid.NewString(),
		SourceFile: file,
		Preview:    preview,
		Kind:       KindFromContentType(file.ContentType),
		State:      UploadStatePending,
	}
}

// Terminal reports whether the attachment reached a terminal upload state.
func (a *Attachment) Terminal() bool {
	return a.State == UploadStateSucceeded || a.State == UploadStateFailed
}

// Ref returns the post-upload reference for a succeeded attachment.
func (a *Attachment) Ref() AttachmentRef {
	return AttachmentRef{URL: a.RemoteURL, Kind: a.Kind}
}

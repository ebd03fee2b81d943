package uploads

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/feedsync/internal/client/models"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrNotFailed          = errors.New("attachment has not failed")
)

// makePreview is a test seam for preview-handle generation.
var makePreview = func(file models.PendingFile) *models.PreviewHandle {
	return models.NewPreviewHandle("preview://"+file.Name, nil)
}

// AttachmentSet is the ordered collection of attachments for one pending
// submission. It owns each attachment exclusively until its upload reaches a
// terminal state: results arriving for an already-discarded local id are
// ignored, never resurrected.
type AttachmentSet struct {
	mu          sync.Mutex
	coordinator *Coordinator
	items       []*models.Attachment
	capacity    int
	log         logging.Logger
}

func NewAttachmentSet(c *Coordinator, log logging.Logger) *AttachmentSet {
	return &AttachmentSet{
		coordinator: c,
		capacity:    models.MaxAttachments,
		log:         log.With("component", "attachments"),
	}
}

// Add registers up to the remaining capacity of files as uploading
// attachments and starts their uploads; files beyond capacity are silently
// rejected. It returns the attachments actually registered, already in state
// uploading.
func (s *AttachmentSet) Add(ctx context.Context, files []models.PendingFile) []*models.Attachment {
	s.mu.Lock()
	room := s.capacity - len(s.items)
	if room <= 0 {
		s.mu.Unlock()
		s.log.Warn(ctx, "attachment capacity reached", "capacity", s.capacity)
		return nil
	}
	if len(files) > room {
		s.log.Warn(ctx, "attachments beyond capacity rejected", "rejected", len(files)-room)
		files = files[:room]
	}

	added := make([]*models.Attachment, 0, len(files))
	reqs := make([]Request, 0, len(files))
	for _, f := range files {
		a := models.NewAttachment(f, makePreview(f))
		a.State = models.UploadStateUploading
		s.items = append(s.items, a)
		added = append(added, a)
		reqs = append(reqs, Request{LocalID: a.LocalID, File: f})
	}
	s.mu.Unlock()

	results := s.coordinator.Upload(ctx, reqs)
	go func() {
		for r := range results {
			s.apply(ctx, r)
		}
	}()

	return added
}

// apply routes one terminal upload result to its attachment. Results for
// discarded ids are dropped.
func (s *AttachmentSet) apply(ctx context.Context, r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.findLocked(r.LocalID)
	if a == nil {
		s.log.Debug(ctx, "result for discarded attachment ignored", "localId", r.LocalID)
		return
	}

	a.State = r.State
	switch r.State {
	case models.UploadStateSucceeded:
		a.RemoteURL = r.RemoteURL
		a.Kind = r.Kind
		a.Progress = 100
		a.Error = ""
	case models.UploadStateFailed:
		a.Progress = models.ProgressFailed
		a.Error = r.Err
	}
}

func (s *AttachmentSet) findLocked(localID string) *models.Attachment {
	for _, a := range s.items {
		if a.LocalID == localID {
			return a
		}
	}
	return nil
}

// Remove releases the attachment's preview handle and evicts the record
// regardless of in-flight upload status. The underlying network request is
// not cancelled; a result arriving later for the discarded id is ignored.
func (s *AttachmentSet) Remove(localID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.items {
		if a.LocalID == localID {
			a.Preview.Release()
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// Retry discards a failed attachment and re-registers its source file as a
// fresh pending attachment with a new identity. Only failed attachments may
// be retried.
func (s *AttachmentSet) Retry(ctx context.Context, localID string) (*models.Attachment, error) {
	s.mu.Lock()
	a := s.findLocked(localID)
	if a == nil {
		s.mu.Unlock()
		return nil, ErrAttachmentNotFound
	}
	if a.State != models.UploadStateFailed {
		s.mu.Unlock()
		return nil, ErrNotFailed
	}
	file := a.SourceFile
	a.Preview.Release()
	for i, item := range s.items {
		if item.LocalID == localID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	added := s.Add(ctx, []models.PendingFile{file})
	if len(added) == 0 {
		return nil, ErrAttachmentNotFound
	}
	return added[0], nil
}

// AllResolved reports whether every attachment reached succeeded. True for
// an empty set.
func (s *AttachmentSet) AllResolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.State != models.UploadStateSucceeded {
			return false
		}
	}
	return true
}

// HasFailures reports whether any attachment is in state failed.
func (s *AttachmentSet) HasFailures() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.State == models.UploadStateFailed {
			return true
		}
	}
	return false
}

// AnyInFlight reports whether any attachment has not reached a terminal
// state yet.
func (s *AttachmentSet) AnyInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if !a.Terminal() {
			return true
		}
	}
	return false
}

// Len returns the number of registered attachments.
func (s *AttachmentSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Items returns a copy of the attachment records in add order.
func (s *AttachmentSet) Items() []models.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Attachment, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, *a)
	}
	return out
}

// Refs returns the remote references of all succeeded attachments, in
// original add order. Used to build the submission payload.
func (s *AttachmentSet) Refs() []models.AttachmentRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AttachmentRef, 0, len(s.items))
	for _, a := range s.items {
		if a.State == models.UploadStateSucceeded {
			out = append(out, a.Ref())
		}
	}
	return out
}

// Clear releases every preview handle and empties the set. Called after a
// successful submission.
func (s *AttachmentSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		a.Preview.Release()
	}
	s.items = nil
}

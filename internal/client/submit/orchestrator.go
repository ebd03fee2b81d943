package submit

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/client/cache"
	"github.com/dmitrijs2005/feedsync/internal/client/models"
	"github.com/dmitrijs2005/feedsync/internal/client/mutation"
	"github.com/dmitrijs2005/feedsync/internal/client/session"
	"github.com/dmitrijs2005/feedsync/internal/client/uploads"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

// State is the orchestrator's position in the submission lifecycle. The
// terminal outcome of a submission is observed on the returned mutation
// ticket; after settling, control returns to Idle (success) or Composing
// (error, with composed state preserved).
type State string

const (
	StateIdle            State = "idle"
	StateComposing       State = "composing"
	StateAwaitingUploads State = "awaiting_uploads"
	StateSubmitting      State = "submitting"
)

// Kind selects which write the submission performs.
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
	KindRemix   Kind = "remix"
)

var (
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
	ErrUploadsInFlight = errors.New("attachments are still uploading")
	ErrUploadsFailed   = errors.New("some attachments failed; retry or remove them")
)

// Orchestrator composes the attachment set, the upload pipeline and the
// mutation engine into the single user-facing action "submit". One
// orchestrator serves one composition at a time.
type Orchestrator struct {
	engine  *mutation.Engine
	client  api.Client
	session *session.Session
	set     *uploads.AttachmentSet
	effects *SideEffectDispatcher
	refresh mutation.Rollback
	log     logging.Logger

	mu             sync.Mutex
	state          State
	kind           Kind
	content        string
	targetID       string
	targetAuthorID string
	lastErr        error
}

func NewOrchestrator(
	engine *mutation.Engine,
	client api.Client,
	sess *session.Session,
	set *uploads.AttachmentSet,
	effects *SideEffectDispatcher,
	refresh mutation.Rollback,
	log logging.Logger,
) *Orchestrator {
	return &Orchestrator{
		engine:  engine,
		client:  client,
		session: sess,
		set:     set,
		effects: effects,
		refresh: refresh,
		log:     log.With("component", "submit"),
		state:   StateIdle,
		kind:    KindPost,
	}
}

// ComposePost starts composing a new top-level post.
func (o *Orchestrator) ComposePost() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kind = KindPost
	o.targetID = ""
	o.targetAuthorID = ""
	o.state = StateComposing
}

// ComposeComment starts composing a comment on the given entity.
func (o *Orchestrator) ComposeComment(target models.Entity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kind = KindComment
	o.targetID = target.ID
	o.targetAuthorID = target.AuthorID
	o.state = StateComposing
}

// ComposeRemix starts composing a remix of the given entity.
func (o *Orchestrator) ComposeRemix(target models.Entity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kind = KindRemix
	o.targetID = target.ID
	o.targetAuthorID = target.AuthorID
	o.state = StateComposing
}

// SetContent updates the composed text.
func (o *Orchestrator) SetContent(content string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.content = content
	if o.state == StateIdle {
		o.state = StateComposing
	}
}

// Attach registers files for upload on the underlying attachment set.
func (o *Orchestrator) Attach(ctx context.Context, files []models.PendingFile) []*models.Attachment {
	o.mu.Lock()
	if o.state == StateIdle {
		o.state = StateComposing
	}
	o.mu.Unlock()
	return o.set.Add(ctx, files)
}

// RemoveAttachment discards one pending attachment.
func (o *Orchestrator) RemoveAttachment(localID string) bool {
	return o.set.Remove(localID)
}

// RetryAttachment retries one failed attachment.
func (o *Orchestrator) RetryAttachment(ctx context.Context, localID string) (*models.Attachment, error) {
	return o.set.Retry(ctx, localID)
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Content returns the composed text, preserved across failed submissions.
func (o *Orchestrator) Content() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.content
}

// LastError returns the most recent submission error, cleared on success.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Attachments exposes the attachment records for rendering.
func (o *Orchestrator) Attachments() []models.Attachment {
	return o.set.Items()
}

// Submit validates the composition, waits out the upload fan-in, runs the
// optimistic mutation and fires side effects on success.
//
// The gate is a hard precondition: empty or oversized content, an upload
// still in flight, or a failed attachment all reject the submission before
// any network call, leaving the composed state untouched. On mutation error
// the content and attachments are preserved so the user can resubmit without
// re-uploading.
func (o *Orchestrator) Submit(ctx context.Context) (*mutation.Ticket, error) {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	if err := o.gateLocked(); err != nil {
		o.lastErr = err
		o.state = StateComposing
		o.mu.Unlock()
		return nil, err
	}

	o.state = StateAwaitingUploads
	// The gate only passes once every attachment has succeeded, so the
	// fan-in is already complete here.
	o.state = StateSubmitting

	actor, err := o.session.CurrentActor()
	if err != nil {
		o.lastErr = err
		o.state = StateComposing
		o.mu.Unlock()
		return nil, err
	}

	content := strings.TrimSpace(o.content)
	refs := o.set.Refs()
	kind := o.kind
	targetID := o.targetID
	targetAuthorID := o.targetAuthorID
	o.mu.Unlock()

	optimistic := o.buildOptimistic(kind, content, actor, refs, targetID)
	req := api.CreateEntityRequest{Content: content, AttachmentRefs: refs, TargetID: targetID}

	ticket := o.engine.Run(ctx,
		o.remoteCall(kind, targetID, req),
		func(s *cache.Store) {
			s.InsertAtHead(optimistic)
			o.bumpTargetCounter(s, kind, targetID, +1)
		},
		func(s *cache.Store, result *models.Entity) {
			s.ReconcileOptimistic(optimistic.ID, result)
		},
		o.refresh,
	)

	if err := ticket.Wait(ctx); err != nil {
		o.mu.Lock()
		o.lastErr = err
		o.state = StateComposing
		o.mu.Unlock()
		return ticket, err
	}

	o.mu.Lock()
	o.content = ""
	o.lastErr = nil
	o.state = StateIdle
	o.mu.Unlock()
	o.set.Clear()

	o.fireSideEffect(ctx, kind, actor, targetAuthorID, content)
	return ticket, nil
}

// gateLocked enforces the submission preconditions. Callers must hold o.mu.
func (o *Orchestrator) gateLocked() error {
	if o.set.AnyInFlight() {
		return ErrUploadsInFlight
	}
	if o.set.HasFailures() {
		return ErrUploadsFailed
	}
	in := models.SubmissionInput{
		Content:     strings.TrimSpace(o.content),
		Attachments: o.set.Refs(),
	}
	return in.Validate()
}

func (o *Orchestrator) buildOptimistic(kind Kind, content string, actor session.Actor, refs []models.AttachmentRef, targetID string) *models.Entity {
	entityKind := models.EntityKindPost
	if kind == KindComment {
		entityKind = models.EntityKindComment
	}
	e := models.NewOptimistic(entityKind, content, actor.ID, actor.DisplayName, refs)
	switch kind {
	case KindComment:
		e.OriginalEntityID = targetID
	case KindRemix:
		e.IsRemix = true
		e.OriginalEntityID = targetID
	}
	return e
}

func (o *Orchestrator) remoteCall(kind Kind, targetID string, req api.CreateEntityRequest) mutation.RemoteCall {
	switch kind {
	case KindComment:
		return func(ctx context.Context) (*models.Entity, error) {
			return o.client.CreateComment(ctx, targetID, req)
		}
	case KindRemix:
		return func(ctx context.Context) (*models.Entity, error) {
			return o.client.RemixPost(ctx, targetID, req)
		}
	default:
		return func(ctx context.Context) (*models.Entity, error) {
			return o.client.CreatePost(ctx, req)
		}
	}
}

// bumpTargetCounter keeps the acted-upon entity's counter in step with an
// optimistic comment or remix.
func (o *Orchestrator) bumpTargetCounter(s *cache.Store, kind Kind, targetID string, delta int) {
	switch kind {
	case KindComment:
		s.PatchByID(targetID, func(e *models.Entity) { e.CommentCount += delta })
	case KindRemix:
		s.PatchByID(targetID, func(e *models.Entity) { e.RemixCount += delta })
	}
}

func (o *Orchestrator) fireSideEffect(ctx context.Context, kind Kind, actor session.Actor, recipientID, content string) {
	var typ string
	switch kind {
	case KindComment:
		typ = api.NotificationCommented
	case KindRemix:
		typ = api.NotificationRemixed
	default:
		return // a top-level post has no secondary recipient
	}
	o.effects.Dispatch(ctx, api.Notification{
		Type:        typ,
		RecipientID: recipientID,
		SenderID:    actor.ID,
		Content:     content,
	})
}

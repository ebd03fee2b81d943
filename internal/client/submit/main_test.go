package submit

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/client/cache"
	"github.com/dmitrijs2005/feedsync/internal/client/models"
	"github.com/dmitrijs2005/feedsync/internal/client/mutation"
	"github.com/dmitrijs2005/feedsync/internal/client/session"
	"github.com/dmitrijs2005/feedsync/internal/client/uploads"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

func testLog() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClient scripts the remote boundary. Zero value succeeds everything.
type fakeClient struct {
	mu sync.Mutex

	createReqs    []api.CreateEntityRequest
	createErr     error
	createdEntity *models.Entity

	deleteIDs []string
	deleteErr error

	likeErr error

	notifications []api.Notification
	notifyFails   int // fail this many Notify calls before succeeding
	notifyErr     error

	uploadFn func(name string, data []byte) (*api.UploadResult, error)

	feedPage *api.FeedPage
	feedErr  error
}

func (f *fakeClient) Close() error { return nil }
func (f *fakeClient) Login(ctx context.Context, username string, password []byte) error {
	return nil
}

func (f *fakeClient) FetchFeed(ctx context.Context, cursor string, limit int) (*api.FeedPage, error) {
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	if f.feedPage != nil {
		return f.feedPage, nil
	}
	return &api.FeedPage{}, nil
}

func (f *fakeClient) create(in api.CreateEntityRequest, kind models.EntityKind, targetID string) (*models.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createReqs = append(f.createReqs, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createdEntity != nil {
		return f.createdEntity, nil
	}
	return &models.Entity{
		ID:               "srv-1",
		Kind:             kind,
		Content:          in.Content,
		AuthorID:         "u1",
		CreatedAt:        time.Now(),
		Attachments:      in.AttachmentRefs,
		OriginalEntityID: targetID,
		Origin:           models.OriginCommitted,
	}, nil
}

func (f *fakeClient) CreatePost(ctx context.Context, in api.CreateEntityRequest) (*models.Entity, error) {
	return f.create(in, models.EntityKindPost, "")
}

func (f *fakeClient) CreateComment(ctx context.Context, postID string, in api.CreateEntityRequest) (*models.Entity, error) {
	return f.create(in, models.EntityKindComment, postID)
}

func (f *fakeClient) RemixPost(ctx context.Context, targetID string, in api.CreateEntityRequest) (*models.Entity, error) {
	e, err := f.create(in, models.EntityKindPost, targetID)
	if e != nil {
		e.IsRemix = true
	}
	return e, err
}

func (f *fakeClient) DeleteEntity(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteIDs = append(f.deleteIDs, id)
	return f.deleteErr
}

func (f *fakeClient) LikeEntity(ctx context.Context, id string) (*models.Entity, error) {
	if f.likeErr != nil {
		return nil, f.likeErr
	}
	return &models.Entity{ID: id, LikeCount: 1, Origin: models.OriginCommitted}, nil
}

func (f *fakeClient) UploadFile(ctx context.Context, name string, contentType string, data []byte, tag string) (*api.UploadResult, error) {
	if f.uploadFn != nil {
		return f.uploadFn(name, data)
	}
	return &api.UploadResult{
		URL: "https://cdn.example/" + name, Kind: "image", Name: name, Size: int64(len(data)),
	}, nil
}

func (f *fakeClient) Notify(ctx context.Context, n api.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return f.notifyErr
	}
	if f.notifyFails > 0 {
		f.notifyFails--
		return api.ErrUnavailable
	}
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeClient) createCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createReqs)
}

func (f *fakeClient) sentNotifications() []api.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Notification(nil), f.notifications...)
}

type staticTokens struct{ token string }

func (s *staticTokens) AccessToken() string { return s.token }

func testSession(t *testing.T, sub, name string) *session.Session {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":         sub,
		"displayName": name,
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return session.New(&staticTokens{token: token})
}

// harness wires one isolated instance of the whole submission stack around a
// scripted remote.
type harness struct {
	client  *fakeClient
	store   *cache.Store
	engine  *mutation.Engine
	set     *uploads.AttachmentSet
	orch    *Orchestrator
	actions *Actions
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testLog()
	client := &fakeClient{}
	store := cache.New()
	engine := mutation.NewEngine(store, log)
	coordinator := uploads.NewCoordinator(uploads.NewAPIUploader(client, "posts"), time.Second, 0, log)
	set := uploads.NewAttachmentSet(coordinator, log)
	effects := NewSideEffectDispatcher(client, log)
	refresh := FeedRefresher(client, 20, log)
	sess := testSession(t, "u1", "Uma")

	return &harness{
		client:  client,
		store:   store,
		engine:  engine,
		set:     set,
		orch:    NewOrchestrator(engine, client, sess, set, effects, refresh, log),
		actions: NewActions(engine, client, sess, effects, refresh, log),
	}
}

func (h *harness) attachAndSettle(t *testing.T, names ...string) {
	t.Helper()
	files := make([]models.PendingFile, 0, len(names))
	for i, n := range names {
		files = append(files, models.PendingFile{Name: n, ContentType: "image/png", Data: make([]byte, i+1)})
	}
	h.orch.Attach(context.Background(), files)
	require.Eventually(t, func() bool { return !h.set.AnyInFlight() }, time.Second, 5*time.Millisecond)
}

package mutation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/feedsync/internal/client/cache"
	"github.com/dmitrijs2005/feedsync/internal/client/models"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

func newEngine(t *testing.T) (*Engine, *cache.Store) {
	t.Helper()
	store := cache.New()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewEngine(store, log), store
}

func committed(id string) *models.Entity {
	return &models.Entity{ID: id, Origin: models.OriginCommitted}
}

func TestRun_AppliesOptimisticPatchSynchronously(t *testing.T) {
	e, store := newEngine(t)

	release := make(chan struct{})
	tmp := models.NewOptimistic(models.EntityKindPost, "hi", "u1", "", nil)

	ticket := e.Run(context.Background(),
		func(ctx context.Context) (*models.Entity, error) {
			<-release
			return committed("p1"), nil
		},
		func(s *cache.Store) { s.InsertAtHead(tmp) },
		func(s *cache.Store, result *models.Entity) { s.ReconcileOptimistic(tmp.ID, result) },
		nil,
	)

	// the optimistic entry is visible before the remote call settles
	require.True(t, store.Contains(tmp.ID))
	require.Equal(t, StatusPending, ticket.Status())

	close(release)
	require.NoError(t, ticket.Wait(context.Background()))
	require.Equal(t, StatusSuccess, ticket.Status())
	require.False(t, store.Contains(tmp.ID))
	require.True(t, store.Contains("p1"))
	require.Equal(t, "p1", ticket.Result().ID)
}

func TestRun_RollbackOnFailure(t *testing.T) {
	e, store := newEngine(t)
	store.AppendPage("", "", []*models.Entity{committed("a")})

	tmp := models.NewOptimistic(models.EntityKindPost, "hi", "u1", "", nil)
	boom := errors.New("remote rejected")

	var rolledBack bool
	ticket := e.Run(context.Background(),
		func(ctx context.Context) (*models.Entity, error) { return nil, boom },
		func(s *cache.Store) { s.InsertAtHead(tmp) },
		func(s *cache.Store, result *models.Entity) { t.Fatal("commit must not run on failure") },
		func(ctx context.Context, s *cache.Store) {
			rolledBack = true
			s.RemoveByID(tmp.ID)
		},
	)

	err := ticket.Wait(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, StatusError, ticket.Status())
	require.True(t, rolledBack)
	require.False(t, store.Contains(tmp.ID))
	require.True(t, store.Contains("a"))
}

func TestRun_ExactlyOneOfCommitRollback(t *testing.T) {
	e, _ := newEngine(t)

	var commits, rollbacks int
	ticket := e.Run(context.Background(),
		func(ctx context.Context) (*models.Entity, error) { return committed("x"), nil },
		nil,
		func(s *cache.Store, result *models.Entity) { commits++ },
		func(ctx context.Context, s *cache.Store) { rollbacks++ },
	)
	require.NoError(t, ticket.Wait(context.Background()))
	require.Equal(t, 1, commits)
	require.Equal(t, 0, rollbacks)
}

func TestRun_DeleteStyleMutation_NoResult(t *testing.T) {
	e, store := newEngine(t)
	store.AppendPage("", "", []*models.Entity{committed("a"), committed("b")})

	ticket := e.Run(context.Background(),
		func(ctx context.Context) (*models.Entity, error) { return nil, nil },
		func(s *cache.Store) { s.RemoveByID("a") },
		nil,
		nil,
	)

	// optimistic removal is immediate
	require.False(t, store.Contains("a"))
	require.NoError(t, ticket.Wait(context.Background()))
	require.Nil(t, ticket.Result())
	require.True(t, store.Contains("b"))
}

// A failed mutation's rollback must not disturb the cache effects of a
// concurrent, unrelated mutation.
func TestRun_RollbackIsolation(t *testing.T) {
	e, store := newEngine(t)
	store.AppendPage("", "", []*models.Entity{committed("liked"), committed("doomed")})

	likeDone := make(chan struct{})
	likeTicket := e.Run(context.Background(),
		func(ctx context.Context) (*models.Entity, error) {
			<-likeDone
			liked := committed("liked")
			liked.LikeCount = 1
			return liked, nil
		},
		func(s *cache.Store) { s.PatchByID("liked", func(en *models.Entity) { en.LikeCount++ }) },
		func(s *cache.Store, result *models.Entity) {
			s.PatchByID(result.ID, func(en *models.Entity) { en.LikeCount = result.LikeCount })
		},
		nil,
	)

	delTicket := e.Run(context.Background(),
		func(ctx context.Context) (*models.Entity, error) { return nil, errors.New("forbidden") },
		func(s *cache.Store) { s.RemoveByID("doomed") },
		nil,
		func(ctx context.Context, s *cache.Store) {
			// reinstate only the affected entity
			s.InsertAtHead(committed("doomed"))
		},
	)
	require.Error(t, delTicket.Wait(context.Background()))

	// the like's optimistic increment survived the unrelated rollback
	liked, found := store.Get("liked")
	require.True(t, found)
	require.Equal(t, 1, liked.LikeCount)

	close(likeDone)
	require.NoError(t, likeTicket.Wait(context.Background()))
	require.True(t, store.Contains("doomed"))
}

func TestTicket_WaitHonorsContext(t *testing.T) {
	e, _ := newEngine(t)

	release := make(chan struct{})
	defer close(release)
	ticket := e.Run(context.Background(),
		func(ctx context.Context) (*models.Entity, error) {
			<-release
			return nil, nil
		},
		nil, nil, nil,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := ticket.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, StatusPending, ticket.Status())
}

package submit

import (
	"context"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/client/cache"
	"github.com/dmitrijs2005/feedsync/internal/client/models"
	"github.com/dmitrijs2005/feedsync/internal/client/mutation"
	"github.com/dmitrijs2005/feedsync/internal/client/session"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

// Actions groups the single-step feed mutations that need no composition:
// like and delete. They share the engine, rollback strategy and side-effect
// dispatcher with the submission orchestrator.
type Actions struct {
	engine  *mutation.Engine
	client  api.Client
	session *session.Session
	effects *SideEffectDispatcher
	refresh mutation.Rollback
	log     logging.Logger
}

func NewActions(
	engine *mutation.Engine,
	client api.Client,
	sess *session.Session,
	effects *SideEffectDispatcher,
	refresh mutation.Rollback,
	log logging.Logger,
) *Actions {
	return &Actions{
		engine:  engine,
		client:  client,
		session: sess,
		effects: effects,
		refresh: refresh,
		log:     log.With("component", "actions"),
	}
}

// Like optimistically increments the entity's like counter, confirms it with
// the server-reported counts, and notifies the author.
func (a *Actions) Like(ctx context.Context, id string) (*mutation.Ticket, error) {
	actor, err := a.session.CurrentActor()
	if err != nil {
		return nil, err
	}

	target, _ := a.engine.Store().Get(id)

	ticket := a.engine.Run(ctx,
		func(ctx context.Context) (*models.Entity, error) {
			return a.client.LikeEntity(ctx, id)
		},
		func(s *cache.Store) {
			s.PatchByID(id, func(e *models.Entity) { e.LikeCount++ })
		},
		func(s *cache.Store, result *models.Entity) {
			if result == nil {
				return
			}
			s.PatchByID(id, func(e *models.Entity) {
				e.LikeCount = result.LikeCount
				e.CommentCount = result.CommentCount
				e.RemixCount = result.RemixCount
			})
		},
		a.refresh,
	)

	if err := ticket.Wait(ctx); err != nil {
		return ticket, err
	}

	a.effects.Dispatch(ctx, api.Notification{
		Type:        api.NotificationLiked,
		RecipientID: target.AuthorID,
		SenderID:    actor.ID,
	})
	return ticket, nil
}

// Delete optimistically removes the entity from the cache and confirms the
// removal with the server. Deleting a comment or remix also rolls the
// parent's counter back by one.
func (a *Actions) Delete(ctx context.Context, id string) (*mutation.Ticket, error) {
	if _, err := a.session.CurrentActor(); err != nil {
		return nil, err
	}

	doomed, _ := a.engine.Store().Get(id)

	ticket := a.engine.Run(ctx,
		func(ctx context.Context) (*models.Entity, error) {
			return nil, a.client.DeleteEntity(ctx, id)
		},
		func(s *cache.Store) {
			s.RemoveByID(id)
			switch {
			case doomed.Kind == models.EntityKindComment && doomed.OriginalEntityID != "":
				s.PatchByID(doomed.OriginalEntityID, func(e *models.Entity) { e.CommentCount-- })
			case doomed.IsRemix && doomed.OriginalEntityID != "":
				s.PatchByID(doomed.OriginalEntityID, func(e *models.Entity) { e.RemixCount-- })
			}
		},
		nil,
		a.refresh,
	)

	err := ticket.Wait(ctx)
	return ticket, err
}

package cli

import (
	"context"
	"log"
)

func (a *App) Like(ctx context.Context, id string) error {
	ticket, err := a.actions.Like(ctx, id)
	if err != nil {
		log.Printf("cannot like: %v", err)
		return err
	}
	return a.reportTicket(ctx, ticket, "Liked")
}

func (a *App) Delete(ctx context.Context, id string) error {
	ticket, err := a.actions.Delete(ctx, id)
	if err != nil {
		log.Printf("cannot delete: %v", err)
		return err
	}
	return a.reportTicket(ctx, ticket, "Deleted")
}

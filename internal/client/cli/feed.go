package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dmitrijs2005/feedsync/internal/client/models"
)

// Feed reloads the feed from the top: the cache is reset and the first page
// is fetched and rendered.
func (a *App) Feed(ctx context.Context) error {
	a.store.Reset()

	page, err := a.client.FetchFeed(ctx, "", a.config.FeedPageSize)
	if err != nil {
		log.Printf("error loading feed: %v", err)
		return err
	}

	a.store.AppendPage("", page.NextCursor, page.Items)
	a.render(a.store.Snapshot())
	return nil
}

// More fetches the next feed page, if any, and renders the newly cached items.
func (a *App) More(ctx context.Context) error {
	cursor := a.store.NextCursor()
	if cursor == "" {
		fmt.Println("No more items")
		return nil
	}

	page, err := a.client.FetchFeed(ctx, cursor, a.config.FeedPageSize)
	if err != nil {
		log.Printf("error loading feed: %v", err)
		return err
	}

	a.store.AppendPage(cursor, page.NextCursor, page.Items)
	a.render(entityValues(page.Items))
	return nil
}

func entityValues(items []*models.Entity) []models.Entity {
	out := make([]models.Entity, 0, len(items))
	for _, e := range items {
		out = append(out, *e)
	}
	return out
}

func (a *App) render(items []models.Entity) {
	if len(items) == 0 {
		fmt.Println("Feed is empty")
		return
	}
	for _, e := range items {
		fmt.Println(formatEntity(e))
	}
}

// formatEntity renders one feed entity as a single line. Optimistic entries
// not yet confirmed by the server are marked "(sending)".
func formatEntity(e models.Entity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.ID, e.AuthorName)
	if e.Origin == models.OriginOptimistic {
		b.WriteString(" (sending)")
	}
	if e.IsRemix {
		fmt.Fprintf(&b, " (remix of %s)", e.OriginalEntityID)
	} else if e.Kind == models.EntityKindComment {
		fmt.Fprintf(&b, " (comment on %s)", e.OriginalEntityID)
	}

	content := e.Content
	if r := []rune(content); len(r) > 80 {
		content = string(r[:77]) + "..."
	}
	fmt.Fprintf(&b, ": %s", content)

	if n := len(e.Attachments); n > 0 {
		fmt.Fprintf(&b, " [%d attachment(s)]", n)
	}
	fmt.Fprintf(&b, " | likes %d, comments %d, remixes %d",
		e.LikeCount, e.CommentCount, e.RemixCount)

	return b.String()
}

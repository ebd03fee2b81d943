package submit

import (
	"context"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/client/cache"
	"github.com/dmitrijs2005/feedsync/internal/client/mutation"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

// FeedRefresher builds the canonical rollback strategy: drop the cached
// pages and refetch the head of the feed. Manual undo of an optimistic patch
// is deliberately avoided — the pre-mutation state may have diverged under
// concurrent mutations.
func FeedRefresher(client api.Client, limit int, log logging.Logger) mutation.Rollback {
	return func(ctx context.Context, s *cache.Store) {
		s.Reset()
		page, err := client.FetchFeed(ctx, "", limit)
		if err != nil {
			log.Warn(ctx, "feed refetch after rollback failed", "error", err)
			return
		}
		s.AppendPage("", page.NextCursor, page.Items)
	}
}

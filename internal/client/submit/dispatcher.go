package submit

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

// SideEffectDispatcher fires secondary, best-effort remote writes after a
// primary mutation succeeds. Delivery is attempted a few times with backoff;
// a final failure is logged and swallowed, never escalated to the primary
// mutation's status.
type SideEffectDispatcher struct {
	client     api.Client
	log        logging.Logger
	maxRetries uint64
	baseDelay  time.Duration
}

func NewSideEffectDispatcher(client api.Client, log logging.Logger) *SideEffectDispatcher {
	return &SideEffectDispatcher{
		client:     client,
		log:        log.With("component", "side-effects"),
		maxRetries: 2,
		baseDelay:  200 * time.Millisecond,
	}
}

// Dispatch sends one notification. Notifications without a meaningful
// secondary recipient are dropped: no recipient, or the actor acting on
// their own entity.
func (d *SideEffectDispatcher) Dispatch(ctx context.Context, n api.Notification) {
	if n.RecipientID == "" || n.RecipientID == n.SenderID {
		return
	}

	b := retry.WithMaxRetries(d.maxRetries, retry.NewExponential(d.baseDelay))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := d.client.Notify(ctx, n); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		d.log.Warn(ctx, "notification dropped", "type", n.Type, "recipientId", n.RecipientID, "error", err)
	}
}

package submit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/feedsync/internal/client/api"
)

func fastDispatcher(client api.Client) *SideEffectDispatcher {
	d := NewSideEffectDispatcher(client, testLog())
	d.baseDelay = time.Millisecond
	return d
}

func TestDispatch_SkipsSelfNotification(t *testing.T) {
	fc := &fakeClient{}
	d := fastDispatcher(fc)

	d.Dispatch(context.Background(), api.Notification{
		Type: api.NotificationLiked, RecipientID: "u1", SenderID: "u1",
	})
	d.Dispatch(context.Background(), api.Notification{
		Type: api.NotificationLiked, RecipientID: "", SenderID: "u1",
	})
	require.Empty(t, fc.sentNotifications())
}

func TestDispatch_DeliversToOtherUser(t *testing.T) {
	fc := &fakeClient{}
	d := fastDispatcher(fc)

	d.Dispatch(context.Background(), api.Notification{
		Type: api.NotificationCommented, RecipientID: "u2", SenderID: "u1", Content: "hi",
	})

	ns := fc.sentNotifications()
	require.Len(t, ns, 1)
	require.Equal(t, "u2", ns[0].RecipientID)
}

func TestDispatch_RetriesTransientFailure(t *testing.T) {
	fc := &fakeClient{notifyFails: 2}
	d := fastDispatcher(fc)

	d.Dispatch(context.Background(), api.Notification{
		Type: api.NotificationRemixed, RecipientID: "u2", SenderID: "u1",
	})
	require.Len(t, fc.sentNotifications(), 1)
}

func TestDispatch_SwallowsFinalFailure(t *testing.T) {
	fc := &fakeClient{notifyErr: errors.New("permanently down")}
	d := fastDispatcher(fc)

	// must not panic or propagate anything
	d.Dispatch(context.Background(), api.Notification{
		Type: api.NotificationRemixed, RecipientID: "u2", SenderID: "u1",
	})
	require.Empty(t, fc.sentNotifications())
}

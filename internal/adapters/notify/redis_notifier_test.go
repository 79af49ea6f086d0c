package notify

import (
	"context"
	"logistics-engine/internal/domain"
	"logistics-engine/internal/ports"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(t *testing.T) (*RedisNotifier, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisNotifier(client), mr
}

func TestRedisNotifierPushesAndTrims(t *testing.T) {
	ctx := context.Background()
	n, mr := newTestNotifier(t)
	n.History = 2

	for _, id := range []string{"a", "b", "c"} {
		err := n.Notify(ctx, ports.AlertRaised, domain.Alert{ID: id, UserID: 4, LocationID: 9, Type: domain.AlertIsolation})
		require.NoError(t, err)
	}

	items, err := mr.List(ListKey(4))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	recent, err := n.Recent(ctx, 4, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].AlertID, "newest first")
	assert.Equal(t, ports.AlertRaised, recent[0].Action)
	assert.Equal(t, int64(9), recent[0].LocationID)
}

func TestRedisNotifierPublishes(t *testing.T) {
	ctx := context.Background()
	n, _ := newTestNotifier(t)

	sub := n.Client.Subscribe(ctx, ChannelKey(4))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, n.Notify(ctx, ports.AlertResolved, domain.Alert{ID: "x", UserID: 4}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, `"action":"resolved"`)
}

func TestDialRejectsBadURL(t *testing.T) {
	_, err := Dial(context.Background(), "not a url")
	assert.Error(t, err)
}

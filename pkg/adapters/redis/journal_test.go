package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/storyline/pkg/adapters/redis"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisJournal_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunItemJournalContract(t, redis.NewFromClient(client))
}

func TestRedisJournal_Prefix(t *testing.T) {
	mr, client := newClient(t)
	journal := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, journal.Record(ctx, "launch-1", "item-1"))

	assert.True(t, mr.Exists("custom:app:launch:launch-1"), "Expected list with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	items, err := mr.List("custom:app:launch:launch-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"item-1"}, items)
}

func TestRedisJournal_DefaultPrefix(t *testing.T) {
	mr, client := newClient(t)
	journal := redis.NewFromClient(client)

	require.NoError(t, journal.Record(context.Background(), "l", "i"))
	assert.True(t, mr.Exists(redis.DefaultPrefix+"launch:l"))
}

func TestRedisJournal_ForgetRemovesMostRecentOccurrence(t *testing.T) {
	_, client := newClient(t)
	journal := redis.NewFromClient(client)
	ctx := context.Background()

	for _, id := range []domain.ItemID{"a", "b", "a"} {
		require.NoError(t, journal.Record(ctx, "l", id))
	}
	require.NoError(t, journal.Forget(ctx, "l", "a"))

	pending, err := journal.Pending(ctx, "l")
	require.NoError(t, err)
	assert.Equal(t, []domain.ItemID{"b", "a"}, pending)
}

func TestRedisJournal_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	journal := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, journal.Record(ctx, "launch-ttl", "item"))
	assert.Equal(t, time.Second, mr.TTL(redis.DefaultPrefix+"launch:launch-ttl"))

	launches, err := journal.Launches(ctx)
	require.NoError(t, err)
	assert.Contains(t, launches, domain.ItemID("launch-ttl"))

	mr.FastForward(2 * time.Second)

	pending, err := journal.Pending(ctx, "launch-ttl")
	require.NoError(t, err)
	assert.Empty(t, pending)

	// The index is pruned by wall clock, which miniredis does not control.
	time.Sleep(1200 * time.Millisecond)

	launches, err = journal.Launches(ctx)
	require.NoError(t, err)
	assert.NotContains(t, launches, domain.ItemID("launch-ttl"))
}

func TestRedisJournal_ClearUnlistsOnlyThatLaunch(t *testing.T) {
	_, client := newClient(t)
	journal := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, journal.Ping(ctx))
	require.NoError(t, journal.Record(ctx, "l1", "story"))
	require.NoError(t, journal.Record(ctx, "l2", "story"))
	require.NoError(t, journal.Clear(ctx, "l1"))

	launches, err := journal.Launches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ItemID{"l2"}, launches)
}

func TestRedisJournal_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	journal := redis.NewFromClient(client)
	mr.Close()

	assert.Error(t, journal.Record(context.Background(), "l", "i"))
	_, err = journal.Pending(context.Background(), "l")
	assert.Error(t, err)
}

package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tendril/pkg/adapters/redis"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.DefinitionStore   = (*redis.Store)(nil)
	_ ports.UpdateSource      = (*redis.UpdateSource)(nil)
	_ ports.SnapshotSink      = (*redis.Sink)(nil)
	_ ports.DistributedLocker = (*redis.Locker)(nil)
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunDefinitionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_RevisionAndPrefix(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()
	store := redis.NewFromClient(client, redis.WithPrefix("board1:"), redis.WithTTL(time.Hour))

	rev, err := store.Revision(ctx)
	require.NoError(t, err)
	assert.Zero(t, rev)

	require.NoError(t, store.Save(ctx, ports.ContractDefinition()))
	require.NoError(t, store.Save(ctx, ports.ContractDefinition()))

	rev, err = store.Revision(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)
	assert.True(t, mr.Exists("board1:definition"))
	assert.Equal(t, time.Hour, mr.TTL("board1:definition"))
}

func TestRedisUpdateSource(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()
	src := redis.NewUpdateSource(client, "t:")

	got, err := src.Poll(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, src.Push(ctx, &domain.Definition{Events: []domain.EventDef{{Label: "a"}}}))
	require.NoError(t, client.RPush(ctx, "t:updates", `{"COMPONENTS": {"COUNTER": [{"LABEL": "n", "VALUE": 1}]}}`).Err())

	got, err = src.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Events[0].Label)

	got, err = src.Poll(ctx)
	require.NoError(t, err)
	assert.Nil(t, got.Events)
	assert.Len(t, got.Components[domain.KindCounter], 1)
}

func TestRedisSink_PublishesDiffs(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()
	sink := redis.NewSink(client, "t:")

	sub := client.Subscribe(ctx, sink.FeedChannel())
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	msgs := sub.Channel()

	feed := domain.Feed{}
	feed.Set(domain.KindCounter, "pours", domain.IntValue(1))
	require.NoError(t, sink.PublishFeed(ctx, feed))
	require.NoError(t, sink.PublishFeed(ctx, feed), "an unchanged feed publishes nothing")

	next := domain.Feed{}
	next.Set(domain.KindCounter, "pours", domain.IntValue(2))
	require.NoError(t, sink.PublishFeed(ctx, next))

	var diffs []domain.FeedDiff
	timeout := time.After(2 * time.Second)
	for len(diffs) < 2 {
		select {
		case m := <-msgs:
			var d domain.FeedDiff
			require.NoError(t, json.Unmarshal([]byte(m.Payload), &d))
			diffs = append(diffs, d)
		case <-timeout:
			t.Fatalf("expected 2 diffs, got %d", len(diffs))
		}
	}
	assert.Equal(t, domain.IntValue(2), diffs[1].Changed[domain.KindCounter]["pours"])

	stored, err := mr.Get("t:feed")
	require.NoError(t, err)
	assert.JSONEq(t, `{"COUNTER": {"pours": 2}}`, stored)

	require.NoError(t, sink.PublishEvents(ctx, nil))
	stored, err = mr.Get("t:events")
	require.NoError(t, err)
	assert.Equal(t, "[]", stored)
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "board", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:board"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:board"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := setup(t)
	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := locker1.Lock(ctx, "board", 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker2.Lock(ctxTimeout, "board", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, "board", 5*time.Second)
	require.NoError(t, err)
	defer unlock2(ctx)
	assert.True(t, mr.Exists("test:lock:board"))
}

func TestRedisLocker_UnlockOnlyOwnToken(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()

	unlock, err := redis.NewLocker(client, "test:").Lock(ctx, "board", 5*time.Second)
	require.NoError(t, err)

	// Someone else took the key after expiry.
	require.NoError(t, mr.Set("test:lock:board", "other-token"))
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("test:lock:board"), "a foreign lock is left alone")
}

func TestRedisLocker_RejectsTinyTTL(t *testing.T) {
	_, client := setup(t)
	locker := redis.NewLocker(client, "test:")

	for _, ttl := range []time.Duration{0, time.Nanosecond, time.Millisecond} {
		_, err := locker.Lock(context.Background(), "board", ttl)
		assert.ErrorIs(t, err, redis.ErrLockAcquire, ttl.String())
	}
}

func TestRedisLocker_ReportsLostLock(t *testing.T) {
	mr, client := setup(t)
	ctx := context.Background()

	lost := make(chan string, 1)
	locker := redis.NewLocker(client, "test:", redis.WithOnLost(func(key string) { lost <- key }))
	unlock, err := locker.Lock(ctx, "board", 40*time.Millisecond)
	require.NoError(t, err)
	defer unlock(ctx)

	require.NoError(t, mr.Set("test:lock:board", "other-token"))

	select {
	case key := <-lost:
		assert.Equal(t, "test:lock:board", key)
	case <-time.After(2 * time.Second):
		t.Fatal("lost lock was not reported")
	}
	got, err := mr.Get("test:lock:board")
	require.NoError(t, err)
	assert.Equal(t, "other-token", got)
}

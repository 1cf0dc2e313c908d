package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"workly-web/internal/session/domain/model"
	"workly-web/internal/shared/eventbus"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestRedisClient returns a client on test database 15, skipping the
// test when Redis is not reachable.
func createTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:         "localhost:6379",
		DB:           15,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available for testing:", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		client.FlushDB(cleanupCtx)
		client.Close()
	})
	return client
}

func TestRedisStorage(t *testing.T) {
	client := createTestRedisClient(t)
	storage := NewRedisStorage(client, "workly:test:session:", time.Minute, quietLogger())

	exerciseStorage(t, storage)
}

func TestRedisStorage_AppliesTTL(t *testing.T) {
	client := createTestRedisClient(t)
	ctx := context.Background()
	storage := NewRedisStorage(client, "workly:test:session:", time.Minute, quietLogger())

	require.NoError(t, storage.Save(ctx, "user:c1", []byte(`{}`)))

	ttl, err := client.TTL(ctx, "workly:test:session:user:c1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisAuditStore_AppendAndRecent(t *testing.T) {
	client := createTestRedisClient(t)
	ctx := context.Background()
	audit := NewRedisAuditStore(client, "workly:test:session:events", 100, quietLogger())

	bus := eventbus.NewEventBus(quietLogger())
	audit.Subscribe(bus)

	payload := model.SessionEvent{ClientID: "c1", UserID: "u1", Reason: model.ReasonLogin}
	require.NoError(t, bus.Publish(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeUserAuthenticated, payload, "session")))
	require.NoError(t, bus.Publish(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeUserLoggedOut, payload, "session")))

	entries, err := audit.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, eventbus.EventTypeUserLoggedOut, entries[0].Type)
	assert.Equal(t, eventbus.EventTypeUserAuthenticated, entries[1].Type)
	assert.Equal(t, "session", entries[1].Source)
	assert.NotZero(t, entries[1].Timestamp)

	var got model.SessionEvent
	require.NoError(t, json.Unmarshal([]byte(entries[1].Data), &got))
	assert.Equal(t, payload, got)
}

package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"workly-web/internal/session/domain/repository"
	"workly-web/internal/shared/eventbus"
	"workly-web/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ repository.AuditStore = (*RedisAuditStore)(nil)

// AuditEntry is one session event read back from the stream.
type AuditEntry struct {
	StreamID  string `json:"streamId"`
	EventID   string `json:"eventId"`
	Type      string `json:"type"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
	Data      string `json:"data"`
}

// RedisAuditStore appends session lifecycle events to a Redis stream.
type RedisAuditStore struct {
	client    *redis.Client
	stream    string
	maxLength int64
	logger    logger.Logger
}

// NewRedisAuditStore creates an audit store writing to stream, trimmed to
// roughly maxLength entries.
func NewRedisAuditStore(client *redis.Client, stream string, maxLength int64, log logger.Logger) *RedisAuditStore {
	if log == nil {
		log = logger.Default()
	}
	return &RedisAuditStore{
		client:    client,
		stream:    stream,
		maxLength: maxLength,
		logger:    log.WithComponent("session_audit"),
	}
}

// Append stores event in the stream.
func (r *RedisAuditStore) Append(ctx context.Context, event eventbus.Event) error {
	data, err := json.Marshal(event.Data())
	if err != nil {
		return fmt.Errorf("failed to serialize event %s: %w", event.Type(), err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"id":        event.ID(),
			"type":      event.Type(),
			"source":    event.Source(),
			"timestamp": event.Timestamp().UnixNano(),
			"data":      data,
		},
	}
	if r.maxLength > 0 {
		args.MaxLen = r.maxLength
		args.Approx = true
	}

	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		r.logger.WithFields(logger.ZapFields(
			zap.String("stream", r.stream),
			zap.String("eventType", event.Type()),
			zap.Error(err),
		)).Error("Failed to store session event in Redis")
		return err
	}
	return nil
}

// Recent returns up to count entries, newest first.
func (r *RedisAuditStore) Recent(ctx context.Context, count int64) ([]AuditEntry, error) {
	msgs, err := r.client.XRevRangeN(ctx, r.stream, "+", "-", count).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session events: %w", err)
	}

	entries := make([]AuditEntry, 0, len(msgs))
	for _, msg := range msgs {
		entry := AuditEntry{StreamID: msg.ID}
		entry.EventID, _ = msg.Values["id"].(string)
		entry.Type, _ = msg.Values["type"].(string)
		entry.Source, _ = msg.Values["source"].(string)
		entry.Data, _ = msg.Values["data"].(string)
		if ts, ok := msg.Values["timestamp"].(string); ok {
			entry.Timestamp, _ = strconv.ParseInt(ts, 10, 64)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Subscribe records every session event published on bus.
func (r *RedisAuditStore) Subscribe(bus eventbus.EventBusInterface) {
	for _, eventType := range eventbus.SessionEventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event eventbus.Event) error {
			return r.Append(ctx, event)
		})
	}
}

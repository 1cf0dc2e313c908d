package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workly-web/internal/session/domain/repository"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var _ repository.SessionStorage = (*MongoStorage)(nil)

// sessionDocument is the stored shape of one client session.
type sessionDocument struct {
	Key       string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoStorage keeps sessions in a collection with a TTL index on expires_at.
type MongoStorage struct {
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
	logger     logger.Logger
}

// NewMongoStorage creates the storage and ensures its indexes.
func NewMongoStorage(ctx context.Context, db *mongo.Database, collection string, ttl time.Duration, log logger.Logger) (*MongoStorage, error) {
	if db == nil {
		return nil, errors.New("mongo database cannot be nil")
	}
	if log == nil {
		log = logger.Default()
	}
	s := &MongoStorage{
		collection: db.Collection(collection),
		ttl:        ttl,
		now:        time.Now,
		logger:     log.WithComponent("session_mongo_storage"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStorage) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("failed to create session TTL index: %w", err)
	}
	return nil
}

func (s *MongoStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var doc sessionDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, key)
	}
	if err != nil {
		s.logger.WithFields(logger.ZapFields(zap.String("key", key), zap.Error(err))).Error("Failed to load session from MongoDB")
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	// The TTL monitor runs once a minute; expired documents can still be read.
	if !doc.ExpiresAt.IsZero() && s.now().After(doc.ExpiresAt) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, key)
	}
	return doc.Payload, nil
}

func (s *MongoStorage) Save(ctx context.Context, key string, data []byte) error {
	now := s.now().UTC()
	doc := sessionDocument{Key: key, Payload: data, UpdatedAt: now}
	if s.ttl > 0 {
		doc.ExpiresAt = now.Add(s.ttl)
	}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		s.logger.WithFields(logger.ZapFields(zap.String("key", key), zap.Error(err))).Error("Failed to save session to MongoDB")
		return fmt.Errorf("failed to save session %s: %w", key, err)
	}
	return nil
}

func (s *MongoStorage) Remove(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to remove session %s: %w", key, err)
	}
	return nil
}

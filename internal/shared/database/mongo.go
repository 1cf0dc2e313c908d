package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workly-web/internal/shared/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig holds the connection settings for the session database.
type MongoConfig struct {
	URI               string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName      string        `env:"DATABASE_NAME" envDefault:"workly_web"`
	ConnectionTimeout time.Duration `env:"CONNECTION_TIMEOUT" envDefault:"10s"`
	MaxPoolSize       uint64        `env:"MAX_POOL_SIZE" envDefault:"10"`
	MinPoolSize       uint64        `env:"MIN_POOL_SIZE" envDefault:"0"`
}

// Validate checks the settings before dialing.
func (c *MongoConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if !strings.HasPrefix(c.URI, "mongodb://") && !strings.HasPrefix(c.URI, "mongodb+srv://") {
		return fmt.Errorf("MONGODB_URI must use the mongodb:// or mongodb+srv:// scheme")
	}
	if c.DatabaseName == "" {
		return fmt.Errorf("DATABASE_NAME is required")
	}
	if strings.ContainsAny(c.DatabaseName, "/\\. \"$") {
		return fmt.Errorf("DATABASE_NAME %q contains invalid characters", c.DatabaseName)
	}
	if c.MinPoolSize > c.MaxPoolSize && c.MaxPoolSize != 0 {
		return fmt.Errorf("MIN_POOL_SIZE (%d) exceeds MAX_POOL_SIZE (%d)", c.MinPoolSize, c.MaxPoolSize)
	}
	return nil
}

// Mongo is a connected client plus the database sessions are kept in.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger logger.Logger
}

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, cfg *MongoConfig, log logger.Logger) (*Mongo, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectionTimeout).
		SetServerSelectionTimeout(cfg.ConnectionTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"database_name": cfg.DatabaseName,
	}).Info("Connected to MongoDB")

	return &Mongo{
		client: client,
		db:     client.Database(cfg.DatabaseName),
		logger: log,
	}, nil
}

// Database returns the configured database.
func (m *Mongo) Database() *mongo.Database {
	return m.db
}

// Ping reports whether the primary still answers.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	m.logger.Info("Closed MongoDB connection")
	return nil
}

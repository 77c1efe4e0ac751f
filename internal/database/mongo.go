package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connector lazily establishes a single MongoDB client for the process and
// hands out a database handle scoped to a fixed database name. Only success
// is cached: a failed connection attempt is returned to the caller and the
// next caller retries from scratch.
type Connector struct {
	uri    string
	name   string
	logger zerolog.Logger

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// NewConnector creates a Connector. No connection is attempted until Connect.
func NewConnector(uri, name string, logger zerolog.Logger) *Connector {
	return &Connector{
		uri:    uri,
		name:   name,
		logger: logger,
	}
}

// Connect returns the database handle, dialing MongoDB on first use.
// Repeated calls after a successful connect are no-ops.
func (c *Connector) Connect(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	c.client = client
	c.db = client.Database(c.name)
	c.logger.Info().Str("database", c.name).Msg("mongodb connection established")
	return c.db, nil
}

// Disconnect tears down the client if one was established.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	c.db = nil
	if err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}

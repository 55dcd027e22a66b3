// Package data manages the MongoDB connection and repository wiring.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/tasktrack/data/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Data encapsulates all data layer dependencies. The client is created once
// at startup and is safe for concurrent use by the driver.
type Data struct {
	client   *mongo.Client
	db       *mongo.Database
	UserRepo repository.UserRepository
	TaskRepo repository.TaskRepository
}

// New creates a new Data instance with a MongoDB connection.
func New(mongoURI, dbName string, logger *logger.Logger) (*Data, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info(ctx, "Connected to MongoDB successfully", "database", dbName)

	db := client.Database(dbName)

	return &Data{
		client:   client,
		db:       db,
		UserRepo: repository.NewUserRepository(db, logger),
		TaskRepo: repository.NewTaskRepository(db, logger),
	}, nil
}

// Close closes the MongoDB connection.
func (d *Data) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

// DB returns the MongoDB database instance.
func (d *Data) DB() *mongo.Database {
	return d.db
}

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	apperrors "github.com/visitnote/visit-summary/errors"
	"github.com/visitnote/visit-summary/pkg/config"
)

const mongoConnectTimeout = 10 * time.Second

// NewMongoDatabase connects to MongoDB and returns the configured database.
// The caller owns the client and must disconnect it.
func NewMongoDatabase(ctx context.Context, cfg *config.MongoConfig, log *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URL).
		SetReadPreference(readpref.SecondaryPreferred()))
	if err != nil {
		return nil, nil, apperrors.ErrDBConnectionFailed(fmt.Errorf("failed to connect to mongodb: %w", err))
	}

	if err := client.Ping(ctx, readpref.SecondaryPreferred()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, apperrors.ErrDBConnectionFailed(fmt.Errorf("failed to ping mongodb: %w", err))
	}

	log.Info("✅ MongoDB connected successfully", zap.String("database", cfg.DatabaseName))
	return client, client.Database(cfg.DatabaseName), nil
}

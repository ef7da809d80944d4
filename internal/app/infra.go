package app

import (
	"context"
	"fmt"

	"github.com/nmbr1stnr/tipsandtrim/internal/config"
	"github.com/nmbr1stnr/tipsandtrim/internal/db"
	"github.com/nmbr1stnr/tipsandtrim/internal/logger"
	"github.com/nmbr1stnr/tipsandtrim/internal/mapping"
	"github.com/nmbr1stnr/tipsandtrim/internal/redis"
)

const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Infra struct {
	Store mapping.Store
	close func() error
}

func (i *Infra) Close() error {
	if i.close == nil {
		return nil
	}
	return i.close()
}

// setupInfra opens the mapping store selected by STORE_DRIVER.
func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	switch cfg.StoreDriver {
	case StoreFile, "":
		logger.Info("mapping store ready", map[string]any{
			"driver": StoreFile,
			"path":   cfg.MappingFile,
		})
		return &Infra{Store: mapping.NewFileStore(cfg.MappingFile)}, nil

	case StoreRedis:
		client, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}

		logger.Info("mapping store ready", map[string]any{
			"driver": StoreRedis,
			"key":    cfg.RedisMappingKey,
		})
		return &Infra{
			Store: mapping.NewRedisStore(client.Client, cfg.RedisMappingKey),
			close: client.Close,
		}, nil

	case StorePostgres:
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}

		if err := db.RunAccountsMigration(ctx, database.DB); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("postgres migration: %w", err)
		}

		logger.Info("mapping store ready", map[string]any{
			"driver": StorePostgres,
		})
		return &Infra{
			Store: mapping.NewPostgresStore(database),
			close: database.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

package cmd

import (
	"context"
	"fmt"

	"github.com/vavastapak/account-service/internal/core/ports"
	"github.com/vavastapak/account-service/internal/core/service"
	"github.com/vavastapak/account-service/internal/infrastructure/crypto"
	"github.com/vavastapak/account-service/internal/infrastructure/db/mongo"
	"github.com/vavastapak/account-service/internal/infrastructure/db/postgres"
	"github.com/vavastapak/account-service/internal/infrastructure/db/redis"
	"github.com/vavastapak/account-service/internal/infrastructure/memory"
	"github.com/vavastapak/account-service/internal/pkg/config"
	"github.com/vavastapak/account-service/pkg/logger"
)

// openStore connects the configured credential store. When migrate is set
// the schema (PostgreSQL migrations or MongoDB indexes) is applied first.
func openStore(ctx context.Context, migrate bool) (ports.AccountRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		if migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
			log.Info().Msg("postgres migrations applied")
		}
		return postgres.NewAccountRepository(db), func() { _ = db.Close() }, nil

	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  serviceName,
		})
		if err != nil {
			return nil, nil, err
		}
		repo := mongo.NewAccountRepository(db)
		if migrate {
			if err := repo.EnsureIndexes(ctx); err != nil {
				_ = mongo.Disconnect(client)
				return nil, nil, err
			}
			log.Info().Msg("mongo indexes ensured")
		}
		return repo, func() { _ = mongo.Disconnect(client) }, nil
	}
	return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}

// openRegistry builds the configured reset token registry. The memory
// registry sweeps expired entries until ctx is done.
func openRegistry(ctx context.Context) (ports.ResetTokenRegistry, func(), error) {
	switch cfg.Reset.Store {
	case config.ResetStoreMemory:
		reg := memory.NewResetTokenRegistry(cfg.Reset.TokenTTL,
			memory.WithMaxEntries(cfg.Reset.MaxEntries),
			memory.WithLogger(logger.Component("reset_registry")),
		)
		go reg.Run(ctx, cfg.Reset.SweepInterval)
		return reg, func() {}, nil

	case config.ResetStoreRedis:
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		reg := redis.NewResetTokenRegistry(client, cfg.Reset.TokenTTL, cfg.Reset.Retention)
		return reg, func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported reset store %q", cfg.Reset.Store)
}

func newAccountService(repo ports.AccountRepository, tokens ports.ResetTokenRegistry, queue ports.NotificationQueue) *service.AccountService {
	return service.NewAccountService(
		repo,
		crypto.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		queue,
		service.Options{
			DefaultRole:       cfg.DefaultRole,
			ResetLinkBase:     cfg.Reset.LinkBase,
			HideUnknownEmails: cfg.Reset.HideUnknownEmails,
			AllowWipe:         cfg.AdminWipeEnabled,
		},
		logger.Component("account_service"),
	)
}

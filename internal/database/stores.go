package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/admin-auth/internal/config"
	"github.com/stemsi/admin-auth/internal/repository"
)

// Stores bundles the admin and reset-code stores for the configured driver.
type Stores struct {
	Admins repository.AdminStore
	Codes  repository.ResetCodeStore

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks that the backing database answers.
func (s *Stores) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the database connection.
func (s *Stores) Close() {
	s.close()
}

// OpenStores connects to the database selected by STORE_DRIVER.
// The caller owns the returned Stores and must Close it on shutdown.
func OpenStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Admins: repository.NewAdminRepository(pool),
			Codes:  repository.NewResetCodeRepository(pool),
			ping:   pool.Ping,
			close:  pool.Close,
		}, nil

	case config.StoreDriverMongo:
		client, db, err := NewMongoDatabase(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		admins := repository.NewMongoAdminRepository(db)
		codes := repository.NewMongoResetCodeRepository(db)

		closeClient := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("MongoDB disconnect failed")
			}
		}

		if err := admins.EnsureIndexes(ctx); err != nil {
			closeClient()
			return nil, fmt.Errorf("admin indexes: %w", err)
		}
		if err := codes.EnsureIndexes(ctx); err != nil {
			closeClient()
			return nil, fmt.Errorf("reset code indexes: %w", err)
		}

		return &Stores{
			Admins: admins,
			Codes:  codes,
			ping:   func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:  closeClient,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

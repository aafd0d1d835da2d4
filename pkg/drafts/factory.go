package drafts

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/config"
	"github.com/ekaya-inc/ekaya-discovery/pkg/database"
)

// New builds the mirror selected by cfg.Drafts.Backend.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Mirror, error) {
	switch cfg.Drafts.Backend {
	case config.DraftsBackendRedis:
		client, err := database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, fmt.Errorf("drafts backend redis requires redis.host")
		}
		return &closingRedisMirror{RedisMirror: NewRedisMirror(client, cfg.Drafts.TTL, logger)}, nil
	case config.DraftsBackendBadger:
		db, err := database.OpenBadger(database.BadgerConfig{Path: cfg.Drafts.Path, Logger: logger})
		if err != nil {
			return nil, err
		}
		return NewBadgerMirror(db, cfg.Drafts.TTL, logger), nil
	default:
		return Nop{}, nil
	}
}

// closingRedisMirror owns its client.
type closingRedisMirror struct {
	*RedisMirror
}

func (m *closingRedisMirror) Close() error {
	return m.client.Close()
}

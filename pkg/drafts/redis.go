package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// RedisMirror keeps drafts as JSON strings with a sliding TTL.
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ Mirror = (*RedisMirror)(nil)

func NewRedisMirror(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisMirror {
	return &RedisMirror{client: client, ttl: ttl, logger: logger.Named("drafts.redis")}
}

func (m *RedisMirror) Save(ctx context.Context, rec models.DiscoveryRecord) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	if err := m.client.Set(ctx, draftKey(rec.ID), data, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store draft %s: %w", rec.ID, err)
	}
	return nil
}

func (m *RedisMirror) Load(ctx context.Context, id string) (*models.DiscoveryRecord, error) {
	data, err := m.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load draft %s: %w", id, err)
	}
	return decode(data)
}

func (m *RedisMirror) Delete(ctx context.Context, id string) error {
	if err := m.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	return nil
}

// List scans the draft keyspace. Drafts that expire or fail to decode between
// the scan and the read are skipped.
func (m *RedisMirror) List(ctx context.Context) ([]models.DiscoveryRecord, error) {
	var out []models.DiscoveryRecord
	iter := m.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := m.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read draft %s: %w", iter.Val(), err)
		}
		rec, err := decode(data)
		if err != nil {
			m.logger.Warn("Skipping undecodable draft", zap.String("key", iter.Val()), zap.Error(err))
			continue
		}
		out = append(out, *rec)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan drafts: %w", err)
	}
	return out, nil
}

// Close is a no-op; the client is owned by the caller.
func (m *RedisMirror) Close() error { return nil }

// Package drafts mirrors in-progress discovery records so a client can resume
// an unfinished session. Mirroring is best-effort: callers log and drop
// errors instead of failing the edit that triggered them.
package drafts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// Mirror stores the latest draft of each record, keyed by record id.
type Mirror interface {
	Save(ctx context.Context, rec models.DiscoveryRecord) error
	// Load returns apperrors.ErrNotFound when no draft is stored.
	Load(ctx context.Context, id string) (*models.DiscoveryRecord, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.DiscoveryRecord, error)
	Close() error
}

const keyPrefix = "discovery:draft:"

func draftKey(id string) string {
	return keyPrefix + id
}

func encode(rec models.DiscoveryRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft %s: %w", rec.ID, err)
	}
	return data, nil
}

func decode(data []byte) (*models.DiscoveryRecord, error) {
	var rec models.DiscoveryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &rec, nil
}

// Nop discards drafts.
type Nop struct{}

var _ Mirror = Nop{}

func (Nop) Save(context.Context, models.DiscoveryRecord) error { return nil }

func (Nop) Load(context.Context, string) (*models.DiscoveryRecord, error) {
	return nil, apperrors.ErrNotFound
}

func (Nop) Delete(context.Context, string) error { return nil }

func (Nop) List(context.Context) ([]models.DiscoveryRecord, error) { return nil, nil }

func (Nop) Close() error { return nil }

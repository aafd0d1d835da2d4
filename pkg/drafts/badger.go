package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// BadgerMirror keeps drafts in a local BadgerDB directory.
type BadgerMirror struct {
	db     *badger.DB
	ttl    time.Duration
	logger *zap.Logger
}

var _ Mirror = (*BadgerMirror)(nil)

// NewBadgerMirror wraps an open database. A zero ttl keeps drafts forever.
// The mirror takes ownership of db and closes it in Close.
func NewBadgerMirror(db *badger.DB, ttl time.Duration, logger *zap.Logger) *BadgerMirror {
	return &BadgerMirror{db: db, ttl: ttl, logger: logger.Named("drafts.badger")}
}

func (m *BadgerMirror) Save(_ context.Context, rec models.DiscoveryRecord) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(draftKey(rec.ID)), data)
		if m.ttl > 0 {
			e = e.WithTTL(m.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("failed to store draft %s: %w", rec.ID, err)
	}
	return nil
}

func (m *BadgerMirror) Load(_ context.Context, id string) (*models.DiscoveryRecord, error) {
	var data []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(draftKey(id)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load draft %s: %w", id, err)
	}
	return decode(data)
}

func (m *BadgerMirror) Delete(_ context.Context, id string) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(draftKey(id)))
	})
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}
	return nil
}

func (m *BadgerMirror) List(_ context.Context) ([]models.DiscoveryRecord, error) {
	var out []models.DiscoveryRecord
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := decode(data)
			if err != nil {
				m.logger.Warn("Skipping undecodable draft", zap.ByteString("key", item.Key()), zap.Error(err))
				continue
			}
			out = append(out, *rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return out, nil
}

func (m *BadgerMirror) Close() error {
	return m.db.Close()
}

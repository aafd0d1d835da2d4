package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/drafts"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

const (
	draftQueueSize    = 256
	draftWriteTimeout = 5 * time.Second
)

type draftOp struct {
	record models.DiscoveryRecord
	delete bool
}

// draftWriter applies mirror writes on a single goroutine so that writes for
// one record land in the order they were issued. Failures are logged at debug
// and dropped.
type draftWriter struct {
	mirror  drafts.Mirror
	metrics *Metrics
	logger  *zap.Logger

	ops       chan draftOp
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func newDraftWriter(mirror drafts.Mirror, metrics *Metrics, logger *zap.Logger) *draftWriter {
	w := &draftWriter{
		mirror:  mirror,
		metrics: metrics,
		logger:  logger.Named("drafts"),
		ops:     make(chan draftOp, draftQueueSize),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *draftWriter) save(rec models.DiscoveryRecord) {
	w.enqueue(draftOp{record: rec})
}

func (w *draftWriter) delete(id string) {
	w.enqueue(draftOp{record: models.DiscoveryRecord{ID: id}, delete: true})
}

func (w *draftWriter) enqueue(op draftOp) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.ops <- op:
	default:
		w.logger.Debug("Draft queue full, dropping write", zap.String("record_id", op.record.ID))
	}
}

func (w *draftWriter) run() {
	defer close(w.done)
	for op := range w.ops {
		ctx, cancel := context.WithTimeout(context.Background(), draftWriteTimeout)
		var err error
		if op.delete {
			err = w.mirror.Delete(ctx, op.record.ID)
		} else {
			err = w.mirror.Save(ctx, op.record)
		}
		cancel()

		if err != nil {
			w.metrics.failure(CollaboratorDrafts)
			w.logger.Debug("Draft mirror write failed",
				zap.String("record_id", op.record.ID),
				zap.Bool("delete", op.delete),
				zap.Error(err))
		}
	}
}

// close stops accepting writes and waits for queued ones until ctx ends.
func (w *draftWriter) close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.ops)
		w.mu.Unlock()
	})

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

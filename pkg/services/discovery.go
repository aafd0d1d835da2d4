package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/config"
	"github.com/ekaya-inc/ekaya-discovery/pkg/drafts"
	"github.com/ekaya-inc/ekaya-discovery/pkg/logging"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/repositories"
	"github.com/ekaya-inc/ekaya-discovery/pkg/wizard"
)

// SessionLookup resolves a live session by id.
type SessionLookup interface {
	// Session returns apperrors.ErrNotFound for unknown ids.
	Session(id string) (*wizard.Session, error)
}

// DiscoveryService owns the live wizard sessions and their persistence.
type DiscoveryService interface {
	SessionLookup

	// Start opens an editable session. A non-empty draftID resumes the
	// mirrored draft with that record id.
	Start(ctx context.Context, draftID string) (*wizard.Session, error)

	// Close discards a session. Unknown ids are ignored.
	Close(id string)

	// Edit applies fn to the session's record and mirrors the result. On a
	// read-only session the edit is a no-op. While the session is being
	// finalized it fails with apperrors.ErrBusy.
	Edit(ctx context.Context, id string, fn func(models.DiscoveryRecord) models.DiscoveryRecord) (wizard.View, error)

	// Navigate moves the session's step cursor.
	Navigate(id string, fn func(*wizard.Sequencer)) (wizard.View, error)

	// Finalize submits the record from the last step. The session only
	// changes after the store accepted the record.
	Finalize(ctx context.Context, id string) (wizard.View, error)

	// OpenReview loads a persisted record into a read-only session.
	OpenReview(ctx context.Context, projectID string) (*wizard.Session, error)

	// ListProjects returns all persisted records, newest first.
	ListProjects(ctx context.Context) ([]models.DiscoveryRecord, error)

	// MarkReviewed moves a submitted record to reviewed.
	MarkReviewed(ctx context.Context, projectID string) error

	// Shutdown stops idle eviction and flushes pending draft writes.
	Shutdown(ctx context.Context) error
}

// maxSweepInterval caps how long an expired session can outlive its TTL.
const maxSweepInterval = time.Minute

type discoveryService struct {
	projects repositories.ProjectRepository
	drafts   *draftWriter
	mirror   drafts.Mirror
	metrics  *Metrics
	logger   *zap.Logger
	now      func() time.Time

	idleTTL     time.Duration
	maxSessions int

	mu       sync.Mutex
	sessions map[string]*wizard.Session

	// Admin-level actions that are not tied to one session.
	adminBusy *wizard.BusyFlags

	stopSweep chan struct{}
	sweepDone chan struct{}
	stopOnce  sync.Once
}

// NewDiscoveryService creates a new discovery service. Sessions idle for
// longer than cfg.IdleTTL are evicted in the background; a nil cfg uses the
// config defaults.
func NewDiscoveryService(
	projects repositories.ProjectRepository,
	mirror drafts.Mirror,
	cfg *config.SessionsConfig,
	metrics *Metrics,
	logger *zap.Logger,
) DiscoveryService {
	if cfg == nil {
		cfg = config.DefaultSessionsConfig()
	}
	logger = logger.Named("discovery")
	s := &discoveryService{
		projects:    projects,
		drafts:      newDraftWriter(mirror, metrics, logger),
		mirror:      mirror,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
		idleTTL:     cfg.IdleTTL,
		maxSessions: cfg.MaxSessions,
		sessions:    make(map[string]*wizard.Session),
		adminBusy:   wizard.NewBusyFlags(),
		stopSweep:   make(chan struct{}),
		sweepDone:   make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

var _ DiscoveryService = (*discoveryService)(nil)

// register adds sess to the live set. When the set is full, expired sessions
// are evicted first; if none are, the new session is refused.
func (s *discoveryService) register(sess *wizard.Session) error {
	now := s.now()
	sess.Touch(now)
	sess.OnChange(s.drafts.save)

	s.mu.Lock()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictIdleLocked(now)
	}
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		n := len(s.sessions)
		s.mu.Unlock()
		s.logger.Warn("Session limit reached", zap.Int("max_sessions", s.maxSessions))
		return fmt.Errorf("%d sessions open: %w", n, apperrors.ErrBusy)
	}
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.metrics.ActiveSessions.Set(float64(n))
	return nil
}

// Session resolves id and counts the lookup as activity.
func (s *discoveryService) Session(id string) (*wizard.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	sess.Touch(s.now())
	return sess, nil
}

func (s *discoveryService) sweepLoop() {
	defer close(s.sweepDone)
	if s.idleTTL <= 0 {
		<-s.stopSweep
		return
	}

	interval := max(min(s.idleTTL/2, maxSweepInterval), time.Millisecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictIdle()
		case <-s.stopSweep:
			return
		}
	}
}

// evictIdle drops sessions whose last activity is older than the idle TTL.
// Their drafts stay in the mirror and can be resumed.
func (s *discoveryService) evictIdle() int {
	s.mu.Lock()
	evicted := s.evictIdleLocked(s.now())
	n := len(s.sessions)
	s.mu.Unlock()

	if evicted > 0 {
		s.metrics.ActiveSessions.Set(float64(n))
	}
	return evicted
}

func (s *discoveryService) evictIdleLocked(now time.Time) int {
	if s.idleTTL <= 0 {
		return 0
	}
	evicted := 0
	for id, sess := range s.sessions {
		idle := now.Sub(sess.LastActive())
		if idle <= s.idleTTL || sess.Busy().IsBusy(wizard.ActionSave) {
			continue
		}
		delete(s.sessions, id)
		evicted++
		s.logger.Info("Evicted idle session",
			zap.String("session_id", id),
			zap.Duration("idle", idle))
	}
	return evicted
}

func (s *discoveryService) Start(ctx context.Context, draftID string) (*wizard.Session, error) {
	if draftID == "" {
		sess := wizard.NewSession()
		if err := s.register(sess); err != nil {
			return nil, err
		}
		s.logger.Info("Started discovery session",
			zap.String("session_id", sess.ID),
			zap.String("record_id", sess.Record().ID))
		return sess, nil
	}

	draft, err := s.mirror.Load(ctx, draftID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("draft %s: %w", draftID, apperrors.ErrNotFound)
		}
		s.metrics.failure(CollaboratorDrafts)
		return nil, fmt.Errorf("%w: failed to load draft %s: %w", apperrors.ErrStore, draftID, err)
	}

	sess := wizard.ResumeSession(*draft)
	if err := s.register(sess); err != nil {
		return nil, err
	}
	s.logger.Info("Resumed discovery draft",
		zap.String("session_id", sess.ID),
		zap.String("record_id", draftID),
		zap.Bool("read_only", sess.ReadOnly()))
	return sess, nil
}

func (s *discoveryService) Close(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	s.metrics.ActiveSessions.Set(float64(n))
}

func (s *discoveryService) Edit(
	ctx context.Context,
	id string,
	fn func(models.DiscoveryRecord) models.DiscoveryRecord,
) (wizard.View, error) {
	sess, err := s.Session(id)
	if err != nil {
		return wizard.View{}, err
	}

	if _, _, err := sess.Apply(fn); err != nil {
		return wizard.View{}, err
	}
	return sess.View(), nil
}

func (s *discoveryService) Navigate(id string, fn func(*wizard.Sequencer)) (wizard.View, error) {
	sess, err := s.Session(id)
	if err != nil {
		return wizard.View{}, err
	}
	sess.Navigate(fn)
	return sess.View(), nil
}

func (s *discoveryService) Finalize(ctx context.Context, id string) (wizard.View, error) {
	sess, err := s.Session(id)
	if err != nil {
		return wizard.View{}, err
	}

	busy := sess.Busy()
	if !busy.TryAcquire(wizard.ActionSave) {
		return wizard.View{}, fmt.Errorf("save: %w", apperrors.ErrBusy)
	}
	defer busy.Release(wizard.ActionSave)

	submitted, err := sess.PrepareFinalize(s.now())
	if err != nil {
		return wizard.View{}, err
	}

	saved, err := s.projects.Save(ctx, submitted)
	if err != nil {
		sess.AbortFinalize()
		s.metrics.failure(CollaboratorStore)
		s.logger.Error("Failed to persist discovery record",
			zap.String("session_id", id),
			zap.String("record_id", submitted.ID),
			zap.String("error", logging.SanitizeError(err)))
		return wizard.View{}, err
	}

	sess.Adopt(*saved)
	s.drafts.delete(submitted.ID)
	s.metrics.RecordsFinalized.Inc()

	s.logger.Info("Discovery record submitted",
		zap.String("session_id", id),
		zap.String("record_id", saved.ID),
		zap.String("project_name", saved.DisplayName()))
	return sess.View(), nil
}

func (s *discoveryService) OpenReview(ctx context.Context, projectID string) (*wizard.Session, error) {
	rec, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.metrics.failure(CollaboratorStore)
		}
		return nil, err
	}

	sess := wizard.NewReviewSession(*rec)
	if err := s.register(sess); err != nil {
		return nil, err
	}
	s.logger.Info("Opened review session",
		zap.String("session_id", sess.ID),
		zap.String("record_id", rec.ID))
	return sess, nil
}

func (s *discoveryService) ListProjects(ctx context.Context) ([]models.DiscoveryRecord, error) {
	if !s.adminBusy.TryAcquire(wizard.ActionList) {
		return nil, fmt.Errorf("list: %w", apperrors.ErrBusy)
	}
	defer s.adminBusy.Release(wizard.ActionList)

	records, err := s.projects.List(ctx)
	if err != nil {
		s.metrics.failure(CollaboratorStore)
		return nil, err
	}
	return records, nil
}

func (s *discoveryService) MarkReviewed(ctx context.Context, projectID string) error {
	if err := s.projects.UpdateStatus(ctx, projectID, models.StatusReviewed); err != nil {
		if errors.Is(err, apperrors.ErrStore) {
			s.metrics.failure(CollaboratorStore)
		}
		return err
	}

	s.metrics.RecordsReviewed.Inc()
	s.logger.Info("Discovery record marked reviewed", zap.String("record_id", projectID))
	return nil
}

func (s *discoveryService) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopSweep) })
	select {
	case <-s.sweepDone:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.drafts.close(ctx)
}

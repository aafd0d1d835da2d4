package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// Session is the explicit context of one editing or review session:
// the record it owns, the step cursor and the busy flags.
// All methods are safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	record     models.DiscoveryRecord
	steps      *Sequencer
	busy       *BusyFlags
	finalizing bool
	lastActive time.Time
	onChange   func(models.DiscoveryRecord)
}

// NewSession starts an editable session on a fresh record.
func NewSession() *Session {
	return newSession(models.NewDiscoveryRecord(), false)
}

// ResumeSession starts an editable session on a previously mirrored draft.
// Records that already left draft are opened read-only.
func ResumeSession(rec models.DiscoveryRecord) *Session {
	return newSession(rec, rec.Status != models.StatusDraft)
}

// NewReviewSession opens a persisted record read-only at the first step.
func NewReviewSession(rec models.DiscoveryRecord) *Session {
	return newSession(rec, true)
}

func newSession(rec models.DiscoveryRecord, readOnly bool) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		record:    CloneRecord(rec),
		steps:     NewSequencer(readOnly),
		busy:      NewBusyFlags(),
	}
}

// OnChange installs fn to receive a copy of the record after every applied
// edit. fn runs under the session lock, so calls arrive in edit order and
// must not block or call back into the session.
func (s *Session) OnChange(fn func(models.DiscoveryRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Touch records activity at now. Earlier times than the latest Touch are
// ignored.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastActive.IsZero() || now.After(s.lastActive) {
		s.lastActive = now
	}
}

// LastActive returns the time of the latest Touch, or the creation time.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastActive.IsZero() {
		return s.CreatedAt
	}
	return s.lastActive
}

// Record returns a deep copy of the current record.
func (s *Session) Record() models.DiscoveryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneRecord(s.record)
}

func (s *Session) ReadOnly() bool {
	return s.steps.ReadOnly()
}

func (s *Session) Busy() *BusyFlags {
	return s.busy
}

// Apply replaces the record with fn(record) and returns a copy of the result
// taken under the lock. It is a no-op returning false when the session is
// read-only or the record is no longer a draft. While a finalize is between
// PrepareFinalize and Adopt or AbortFinalize, Apply fails with
// apperrors.ErrBusy.
func (s *Session) Apply(fn func(models.DiscoveryRecord) models.DiscoveryRecord) (models.DiscoveryRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalizing {
		return CloneRecord(s.record), false, fmt.Errorf("edit during finalize: %w", apperrors.ErrBusy)
	}
	if s.steps.ReadOnly() || s.record.Status != models.StatusDraft {
		return CloneRecord(s.record), false, nil
	}
	s.record = fn(s.record)
	snapshot := CloneRecord(s.record)
	if s.onChange != nil {
		s.onChange(CloneRecord(snapshot))
	}
	return snapshot, true, nil
}

// Navigate runs fn against the step cursor and returns the resulting step.
func (s *Session) Navigate(fn func(*Sequencer)) models.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.steps)
	return s.steps.Current()
}

// PrepareFinalize returns the submitted form of the record without committing
// it. The caller persists it and then calls Adopt with the stored result, or
// AbortFinalize if the save failed. Edits are refused until then, so the
// persisted record is exactly the one returned here.
func (s *Session) PrepareFinalize(now time.Time) (models.DiscoveryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.steps.ReadOnly() {
		return s.record, apperrors.ErrReadOnly
	}
	if !s.steps.IsTerminal() {
		return s.record, fmt.Errorf("at step %q: %w", s.steps.Current().Title(), apperrors.ErrNotFinalizeStep)
	}
	if s.finalizing {
		return s.record, fmt.Errorf("finalize: %w", apperrors.ErrBusy)
	}
	submitted, err := Finalize(CloneRecord(s.record), now)
	if err != nil {
		return submitted, err
	}
	s.finalizing = true
	return submitted, nil
}

// AbortFinalize ends a finalize whose save failed. The record is unchanged
// and editable again.
func (s *Session) AbortFinalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalizing = false
}

// Adopt replaces the record with its persisted form and ends any pending
// finalize. The persisted id and status are authoritative.
func (s *Session) Adopt(rec models.DiscoveryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = CloneRecord(rec)
	s.finalizing = false
}

// View is a point-in-time snapshot of a session.
type View struct {
	ID          string                 `json:"id"`
	Record      models.DiscoveryRecord `json:"record"`
	StepIndex   int                    `json:"stepIndex"`
	StepTitle   string                 `json:"stepTitle"`
	ReadOnly    bool                   `json:"readOnly"`
	CanFinalize bool                   `json:"canFinalize"`
	Busy        []Action               `json:"busy"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:          s.ID,
		Record:      CloneRecord(s.record),
		StepIndex:   s.steps.Index(),
		StepTitle:   s.steps.Current().Title(),
		ReadOnly:    s.steps.ReadOnly(),
		CanFinalize: s.steps.CanFinalize() && s.record.Status == models.StatusDraft,
		Busy:        s.busy.Snapshot(),
	}
}

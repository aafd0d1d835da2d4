package wizard

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

func TestSession_NewStartsAtFirstStepEditable(t *testing.T) {
	s := NewSession()
	v := s.View()

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, 0, v.StepIndex)
	assert.False(t, v.ReadOnly)
	assert.False(t, v.CanFinalize)
	assert.Equal(t, models.StatusDraft, v.Record.Status)
	assert.Len(t, v.Record.Indicators, 3)
}

func TestSession_ReadOnlyMutationsAreNoops(t *testing.T) {
	rec := sampleRecord()
	rec.Status = models.StatusSubmitted
	s := NewReviewSession(rec)

	_, applied, err := s.Apply(func(r models.DiscoveryRecord) models.DiscoveryRecord {
		next, _ := AddEntity(r)
		return RenameEntity(next, "e1", "Changed")
	})

	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, CloneRecord(rec), s.Record())
}

func TestSession_ReadOnlyNavigationStillWorks(t *testing.T) {
	s := NewReviewSession(sampleRecord())

	step := s.Navigate(func(seq *Sequencer) { seq.JumpTo(models.StepCount - 1) })

	assert.Equal(t, models.StepFinalize, step)
	assert.False(t, s.View().CanFinalize)
}

func TestSession_ApplyUpdatesRecord(t *testing.T) {
	s := NewSession()
	var id string

	snapshot, ok, err := s.Apply(func(r models.DiscoveryRecord) models.DiscoveryRecord {
		var next models.DiscoveryRecord
		next, id = AddEntity(r)
		return next
	})

	require.NoError(t, err)
	require.True(t, ok)
	rec := s.Record()
	require.Len(t, rec.Entities, 1)
	assert.Equal(t, id, rec.Entities[0].ID)
	assert.Equal(t, rec, snapshot)
}

func TestSession_OnChangeSeesEveryEditInOrder(t *testing.T) {
	s := NewSession()
	var (
		mu    sync.Mutex
		names []string
	)
	s.OnChange(func(r models.DiscoveryRecord) {
		mu.Lock()
		names = append(names, r.ProjectName)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	var counter atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Apply(func(r models.DiscoveryRecord) models.DiscoveryRecord {
				r.ProjectName = string(rune('A' + counter.Add(1)%26))
				r.AdditionalNotes += "x"
				return r
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, names, 50)
	assert.Equal(t, s.Record().ProjectName, names[len(names)-1], "the last change seen is the current record")
	assert.Len(t, s.Record().AdditionalNotes, 50)
}

func TestSession_ReadOnlyDoesNotNotify(t *testing.T) {
	s := NewReviewSession(sampleRecord())
	called := false
	s.OnChange(func(models.DiscoveryRecord) { called = true })

	_, applied, err := s.Apply(func(r models.DiscoveryRecord) models.DiscoveryRecord { return r })

	require.NoError(t, err)
	assert.False(t, applied)
	assert.False(t, called)
}

func TestSession_EditsRefusedWhileFinalizing(t *testing.T) {
	s := ResumeSession(sampleRecord())
	s.Navigate(func(seq *Sequencer) { seq.JumpTo(models.StepCount - 1) })

	submitted, err := s.PrepareFinalize(time.Now())
	require.NoError(t, err)

	_, applied, err := s.Apply(func(r models.DiscoveryRecord) models.DiscoveryRecord {
		r.ProjectName = "Late edit"
		return r
	})
	assert.ErrorIs(t, err, apperrors.ErrBusy)
	assert.False(t, applied)
	assert.Equal(t, submitted.ProjectName, s.Record().ProjectName)

	_, err = s.PrepareFinalize(time.Now())
	assert.ErrorIs(t, err, apperrors.ErrBusy, "only one finalize at a time")

	s.AbortFinalize()
	_, applied, err = s.Apply(func(r models.DiscoveryRecord) models.DiscoveryRecord {
		r.ProjectName = "After failed save"
		return r
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "After failed save", s.Record().ProjectName)
	assert.Equal(t, models.StatusDraft, s.Record().Status)
}

func TestSession_TouchOnlyMovesForward(t *testing.T) {
	s := NewSession()
	start := s.LastActive()
	assert.Equal(t, s.CreatedAt, start)

	later := start.Add(time.Minute)
	s.Touch(later)
	assert.Equal(t, later, s.LastActive())

	s.Touch(start)
	assert.Equal(t, later, s.LastActive())
}

func TestSession_RecordReturnsCopy(t *testing.T) {
	s := ResumeSession(sampleRecord())
	rec := s.Record()
	rec.Entities[0].Name = "Mutated"

	assert.Equal(t, "Product", s.Record().Entities[0].Name)
}

func TestSession_PrepareFinalizeGates(t *testing.T) {
	s := NewSession()
	_, err := s.PrepareFinalize(time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFinalizeStep)

	ro := NewReviewSession(sampleRecord())
	ro.Navigate(func(seq *Sequencer) { seq.JumpTo(models.StepCount - 1) })
	_, err = ro.PrepareFinalize(time.Now())
	assert.ErrorIs(t, err, apperrors.ErrReadOnly)
}

func TestSession_PrepareFinalizeDoesNotCommit(t *testing.T) {
	s := ResumeSession(sampleRecord())
	s.Navigate(func(seq *Sequencer) { seq.JumpTo(models.StepCount - 1) })

	submitted, err := s.PrepareFinalize(time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, submitted.Status)
	assert.Equal(t, models.StatusDraft, s.Record().Status)

	persisted := submitted
	persisted.ID = "11111111-2222-3333-4444-555555555555"
	s.Adopt(persisted)

	assert.Equal(t, persisted.ID, s.Record().ID)
	assert.Equal(t, models.StatusSubmitted, s.Record().Status)
	assert.False(t, s.View().CanFinalize)

	_, err = s.PrepareFinalize(time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, applied, err := s.Apply(func(r models.DiscoveryRecord) models.DiscoveryRecord { return r })
	require.NoError(t, err)
	assert.False(t, applied, "submitted records no longer accept edits")
}

func TestResumeSession_NonDraftOpensReadOnly(t *testing.T) {
	rec := sampleRecord()
	rec.Status = models.StatusReviewed
	assert.True(t, ResumeSession(rec).ReadOnly())
	assert.False(t, ResumeSession(sampleRecord()).ReadOnly())
}

func TestBusyFlags_AtMostOneInFlight(t *testing.T) {
	b := NewBusyFlags()
	require.True(t, b.TryAcquire(ActionSave))
	assert.False(t, b.TryAcquire(ActionSave))
	assert.True(t, b.TryAcquire(ActionRender), "actions are tracked independently")
	assert.ElementsMatch(t, []Action{ActionSave, ActionRender}, b.Snapshot())

	b.Release(ActionSave)
	assert.False(t, b.IsBusy(ActionSave))
	assert.True(t, b.TryAcquire(ActionSave))
}

func TestBusyFlags_Concurrent(t *testing.T) {
	b := NewBusyFlags()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.TryAcquire(ActionNarrate) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

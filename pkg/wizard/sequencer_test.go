package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

func TestSequencer_AdvanceClampsAtLastStep(t *testing.T) {
	s := NewSequencer(false)
	for range models.StepCount + 3 {
		s.Advance()
	}
	assert.Equal(t, 6, s.Index())
	s.Advance()
	assert.Equal(t, 6, s.Index())
	assert.True(t, s.IsTerminal())
}

func TestSequencer_RetreatClampsAtFirstStep(t *testing.T) {
	s := NewSequencer(false)
	s.Retreat()
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, models.StepVision, s.Current())
}

func TestSequencer_JumpThenRetreat(t *testing.T) {
	s := NewSequencer(false)
	assert.True(t, s.JumpTo(3))
	s.Retreat()
	assert.Equal(t, 2, s.Index())
}

func TestSequencer_JumpOutOfRangeIgnored(t *testing.T) {
	s := NewSequencer(false)
	s.JumpTo(4)

	assert.False(t, s.JumpTo(-1))
	assert.Equal(t, 4, s.Index())
	assert.False(t, s.JumpTo(models.StepCount))
	assert.Equal(t, 4, s.Index())
	assert.False(t, s.JumpTo(100))
	assert.Equal(t, 4, s.Index())
}

func TestSequencer_CanFinalize(t *testing.T) {
	s := NewSequencer(false)
	assert.False(t, s.CanFinalize())
	s.JumpTo(models.StepCount - 1)
	assert.True(t, s.CanFinalize())

	ro := NewSequencer(true)
	ro.JumpTo(models.StepCount - 1)
	assert.True(t, ro.IsTerminal())
	assert.False(t, ro.CanFinalize(), "review mode shows the summary without finalize")
}

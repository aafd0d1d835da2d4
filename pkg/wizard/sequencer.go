package wizard

import "github.com/ekaya-inc/ekaya-discovery/pkg/models"

// Sequencer is the step cursor of one session. The index always stays in
// [0, StepCount-1]. ReadOnly is fixed when the sequencer is built.
type Sequencer struct {
	index    int
	readOnly bool
}

// NewSequencer starts at the first step.
func NewSequencer(readOnly bool) *Sequencer {
	return &Sequencer{readOnly: readOnly}
}

func (s *Sequencer) Index() int { return s.index }

func (s *Sequencer) Current() models.Step { return models.Step(s.index) }

func (s *Sequencer) ReadOnly() bool { return s.readOnly }

// Advance moves one step forward and stays put on the terminal step.
func (s *Sequencer) Advance() {
	s.index = min(s.index+1, models.StepCount-1)
}

// Retreat moves one step back and stays put on the first step.
func (s *Sequencer) Retreat() {
	s.index = max(s.index-1, 0)
}

// JumpTo moves directly to step i. Out-of-range requests are ignored and
// report false.
func (s *Sequencer) JumpTo(i int) bool {
	if i < 0 || i >= models.StepCount {
		return false
	}
	s.index = i
	return true
}

// IsTerminal reports whether the cursor is on the summary step.
func (s *Sequencer) IsTerminal() bool {
	return s.Current().IsTerminal()
}

// CanFinalize reports whether the finalize action is reachable: only from the
// terminal step, and never while reviewing.
func (s *Sequencer) CanFinalize() bool {
	return s.IsTerminal() && !s.readOnly
}

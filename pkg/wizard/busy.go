package wizard

import "sync"

// Action names a suspending collaborator call tracked by BusyFlags.
type Action string

const (
	ActionSave    Action = "save"
	ActionList    Action = "list"
	ActionRender  Action = "render"
	ActionNarrate Action = "narrate"
	ActionSuggest Action = "suggest"
)

// BusyFlags allows at most one in-flight request per action.
type BusyFlags struct {
	mu       sync.Mutex
	inFlight map[Action]bool
}

func NewBusyFlags() *BusyFlags {
	return &BusyFlags{inFlight: make(map[Action]bool)}
}

// TryAcquire marks a as in flight. It returns false if a is already busy.
func (b *BusyFlags) TryAcquire(a Action) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inFlight[a] {
		return false
	}
	b.inFlight[a] = true
	return true
}

func (b *BusyFlags) Release(a Action) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inFlight, a)
}

func (b *BusyFlags) IsBusy(a Action) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inFlight[a]
}

// Snapshot returns the actions currently in flight.
func (b *BusyFlags) Snapshot() []Action {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Action, 0, len(b.inFlight))
	for a := range b.inFlight {
		out = append(out, a)
	}
	return out
}

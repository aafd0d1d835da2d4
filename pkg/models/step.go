package models

// Step is one page of the guided wizard.
type Step int

const (
	StepVision Step = iota
	StepDataArchitecture
	StepProcessFlows
	StepRoles
	StepTechnicalEcosystem
	StepMigrationBI
	StepFinalize
)

// StepCount is the number of wizard steps.
const StepCount = 7

var stepTitles = [StepCount]string{
	"Vision & Scope",
	"Data Architecture",
	"Process Flows",
	"Roles & Security",
	"Technical & Ecosystem",
	"Migration & BI",
	"Finalize & Submit",
}

// Steps returns every step in wizard order.
func Steps() []Step {
	steps := make([]Step, StepCount)
	for i := range steps {
		steps[i] = Step(i)
	}
	return steps
}

// Title returns the display title, or "" for an out-of-range step.
func (s Step) Title() string {
	if !s.IsValid() {
		return ""
	}
	return stepTitles[s]
}

func (s Step) IsValid() bool {
	return s >= 0 && int(s) < StepCount
}

// IsTerminal reports whether s is the summary/confirmation step.
func (s Step) IsTerminal() bool {
	return s == StepFinalize
}

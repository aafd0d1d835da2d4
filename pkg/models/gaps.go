package models

import "fmt"

// Legacy quality scores outside this range are reported as gaps.
const (
	MinLegacyQuality = 1
	MaxLegacyQuality = 10
)

// ValidationGap describes a field that is empty or out of range.
// Gaps are informational: they never block finalize and never make
// a derivation fail.
type ValidationGap struct {
	Step    Step   `json:"step"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Gaps lists the incomplete parts of a record in step order.
func Gaps(r DiscoveryRecord) []ValidationGap {
	var gaps []ValidationGap

	if r.ProjectName == "" {
		gaps = append(gaps, ValidationGap{Step: StepVision, Field: "projectName", Message: "project name is empty"})
	}

	for i, e := range r.Entities {
		if e.Name == "" {
			gaps = append(gaps, ValidationGap{
				Step:    StepDataArchitecture,
				Field:   fmt.Sprintf("entities[%d].name", i),
				Message: "entity has no name",
			})
		}
		for j, a := range e.Attributes {
			if a.Name == "" {
				gaps = append(gaps, ValidationGap{
					Step:    StepDataArchitecture,
					Field:   fmt.Sprintf("entities[%d].attributes[%d].name", i, j),
					Message: "attribute has no name",
				})
			}
		}
	}

	for i, f := range r.Flows {
		for _, part := range []struct{ name, value string }{
			{"trigger", f.Trigger},
			{"action", f.Action},
			{"result", f.Result},
		} {
			if part.value == "" {
				gaps = append(gaps, ValidationGap{
					Step:    StepProcessFlows,
					Field:   fmt.Sprintf("flows[%d].%s", i, part.name),
					Message: fmt.Sprintf("flow %s is empty", part.name),
				})
			}
		}
	}

	for i, l := range r.LegacyData {
		if l.Quality < MinLegacyQuality || l.Quality > MaxLegacyQuality {
			gaps = append(gaps, ValidationGap{
				Step:    StepMigrationBI,
				Field:   fmt.Sprintf("legacyData[%d].quality", i),
				Message: fmt.Sprintf("quality %d is outside %d-%d", l.Quality, MinLegacyQuality, MaxLegacyQuality),
			})
		}
	}

	return gaps
}

// Package prompts builds the narration prompts used by the discovery wizard.
package prompts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-discovery/pkg/blueprint"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "Spanish"

// SuggestionContext identifies the field a suggestion is requested for.
type SuggestionContext struct {
	Section      string // Wizard section title, e.g. "Vision"
	Field        string // Field label, e.g. "Problem statement"
	CurrentInput string // What the client has typed so far; may be empty
	ProjectName  string // Optional, gives the model a little context
}

// BuildSuggestionPrompt asks for improved or completed text for a single field.
func BuildSuggestionPrompt(c SuggestionContext, language string) string {
	var prompt strings.Builder

	prompt.WriteString("Act as a senior software architect and product owner.\n")
	prompt.WriteString("I am filling in a discovery matrix for a new software project.\n\n")

	if c.ProjectName != "" {
		prompt.WriteString(fmt.Sprintf("Project: %s\n", c.ProjectName))
	}
	prompt.WriteString(fmt.Sprintf("Section: %s\n", c.Section))
	prompt.WriteString(fmt.Sprintf("Field: %s\n\n", c.Field))
	prompt.WriteString(fmt.Sprintf("What the client has written so far (may be empty): %q\n\n", c.CurrentInput))

	prompt.WriteString("Improve, complete or propose professional, detailed content for this field. ")
	prompt.WriteString("Be concise but technical. Return only the suggested text, with no extra explanation.\n")
	prompt.WriteString(languageInstruction(language))

	return prompt.String()
}

// BuildReviewPrompt asks for a narrative review of a whole record: risks,
// missing information and a recommended next step.
func BuildReviewPrompt(r models.DiscoveryRecord, language string) string {
	var prompt strings.Builder

	prompt.WriteString("# Software Discovery Review\n\n")
	prompt.WriteString("Act as a senior software architect reviewing a client's discovery questionnaire.\n\n")

	prompt.WriteString("## Vision\n\n")
	writeField(&prompt, "Project", r.DisplayName())
	writeField(&prompt, "Problem", r.Problem)
	writeField(&prompt, "MVP objective", r.MVPObjective)
	writeField(&prompt, "Users", r.Users)
	writeField(&prompt, "KPIs", r.KPIs)

	if len(r.Entities) > 0 {
		prompt.WriteString("\n## Data Entities\n\n")
		for _, e := range r.Entities {
			names := make([]string, 0, len(e.Attributes))
			for _, a := range e.Attributes {
				names = append(names, fmt.Sprintf("%s (%s)", a.Name, a.Type))
			}
			prompt.WriteString(fmt.Sprintf("- %s: %s\n", e.Name, strings.Join(names, ", ")))
		}
	}

	if len(r.Flows) > 0 {
		prompt.WriteString("\n## Process Flows\n\n")
		for _, f := range r.Flows {
			line := fmt.Sprintf("- When %s → %s → %s", f.Trigger, f.Action, f.Result)
			if f.Condition != "" {
				line += fmt.Sprintf(" (if %s)", f.Condition)
			}
			prompt.WriteString(line + "\n")
		}
	}

	if len(r.Roles) > 0 {
		prompt.WriteString("\n## Roles\n\n")
		for _, role := range r.Roles {
			prompt.WriteString(fmt.Sprintf("- %s: %s\n", role.Name, role.Description))
		}
	}

	prompt.WriteString("\n## Technical Context\n\n")
	writeField(&prompt, "Connectivity", string(r.Connectivity))
	writeField(&prompt, "Devices", joinValues(r.Devices))
	writeField(&prompt, "Volume", r.Volume)
	writeField(&prompt, "Integrations", string(r.Integrations))
	writeField(&prompt, "Ecosystem", string(r.EcosystemPreference))
	writeField(&prompt, "Automation", joinValues(r.AutomationNeeds))
	writeField(&prompt, "Analytics level", string(r.AnalyticsLevel))
	writeField(&prompt, "BI tool", string(r.PreferredBITool))

	if len(r.LegacyData) > 0 {
		prompt.WriteString("\n## Legacy Data\n\n")
		for _, l := range r.LegacyData {
			prompt.WriteString(fmt.Sprintf("- %s (%s), quality %d/10: %s\n", l.Source, l.Format, l.Quality, l.Action))
		}
	}

	est := blueprint.EstimateSize(r)
	prompt.WriteString("\n## Estimate\n\n")
	prompt.WriteString(fmt.Sprintf("%s project (%d points), expected timeline %s.\n", est.Size, est.Points, est.Timeline))

	if r.AdditionalNotes != "" {
		prompt.WriteString("\n## Notes\n\n")
		prompt.WriteString(r.AdditionalNotes + "\n")
	}

	prompt.WriteString("\n## Task\n\n")
	prompt.WriteString("Write a short executive review with three parts: main risks, information that is missing ")
	prompt.WriteString("or contradictory, and the recommended next step for the team.\n")
	prompt.WriteString(languageInstruction(language))

	return prompt.String()
}

func writeField(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = "(not provided)"
	}
	b.WriteString(fmt.Sprintf("%s: %s\n", label, value))
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func languageInstruction(language string) string {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf("Respond in %s.\n", language)
}

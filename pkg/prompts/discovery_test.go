package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

func TestBuildSuggestionPrompt(t *testing.T) {
	prompt := BuildSuggestionPrompt(SuggestionContext{
		Section:      "Vision",
		Field:        "Problem statement",
		CurrentInput: `orders get "lost"`,
		ProjectName:  "Inventory",
	}, "")

	assert.Contains(t, prompt, "Project: Inventory")
	assert.Contains(t, prompt, "Section: Vision")
	assert.Contains(t, prompt, "Field: Problem statement")
	assert.Contains(t, prompt, `"orders get \"lost\""`)
	assert.Contains(t, prompt, "Respond in Spanish.")
}

func TestBuildSuggestionPrompt_EmptyInputAndLanguage(t *testing.T) {
	prompt := BuildSuggestionPrompt(SuggestionContext{Section: "Roles", Field: "Description"}, "English")

	assert.NotContains(t, prompt, "Project:")
	assert.Contains(t, prompt, `(may be empty): ""`)
	assert.Contains(t, prompt, "Respond in English.")
}

func TestBuildReviewPrompt(t *testing.T) {
	r := models.NewDiscoveryRecord()
	r.ProjectName = "Clinic"
	r.Problem = "Paper records"
	r.Entities = []models.Entity{{ID: "e1", Name: "Patient", Attributes: []models.EntityAttribute{
		{ID: "a1", Name: "birth date", Type: models.AttributeDate},
	}}}
	r.Flows = []models.Flow{{ID: "f1", Trigger: "Visit", Action: "Record", Result: "Saved", Condition: "insured"}}
	r.Devices = []models.Device{models.DeviceDesktop, models.DeviceMobile}
	r.LegacyData = []models.LegacyDataSource{{ID: "l1", Source: "Excel", Format: "xlsx", Quality: 4, Action: "clean"}}

	prompt := BuildReviewPrompt(r, "Portuguese")

	assert.Contains(t, prompt, "Project: Clinic")
	assert.Contains(t, prompt, "MVP objective: (not provided)")
	assert.Contains(t, prompt, "- Patient: birth date (Date)")
	assert.Contains(t, prompt, "- When Visit → Record → Saved (if insured)")
	assert.Contains(t, prompt, "- Excel (xlsx), quality 4/10: clean")
	assert.Contains(t, prompt, "Small project (5 points)")
	assert.Contains(t, prompt, "Respond in Portuguese.")
	assert.NotContains(t, prompt, "## Roles")
}

func TestBuildReviewPrompt_EmptyRecord(t *testing.T) {
	prompt := BuildReviewPrompt(models.NewDiscoveryRecord(), "")

	assert.Contains(t, prompt, "Project: Untitled project")
	assert.NotContains(t, prompt, "## Data Entities")
	assert.Contains(t, prompt, "Small project (0 points), expected timeline 2-4 weeks.")
}

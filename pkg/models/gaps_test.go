package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaps_FreshRecordOnlyMissesName(t *testing.T) {
	gaps := Gaps(NewDiscoveryRecord())
	require.Len(t, gaps, 1)
	assert.Equal(t, "projectName", gaps[0].Field)
	assert.Equal(t, StepVision, gaps[0].Step)
}

func TestGaps_ReportsIncompleteParts(t *testing.T) {
	r := NewDiscoveryRecord()
	r.ProjectName = "Warehouse"
	r.Entities = []Entity{{ID: "e1", Attributes: []EntityAttribute{{ID: "a1", Type: AttributeText}}}}
	r.Flows = []Flow{{ID: "f1", Trigger: "Click", Action: "Save"}}
	r.LegacyData = []LegacyDataSource{
		{ID: "l1", Quality: 5},
		{ID: "l2", Quality: 11},
		{ID: "l3", Quality: 0},
	}

	var fields []string
	for _, g := range Gaps(r) {
		fields = append(fields, g.Field)
	}

	assert.Equal(t, []string{
		"entities[0].name",
		"entities[0].attributes[0].name",
		"flows[0].result",
		"legacyData[1].quality",
		"legacyData[2].quality",
	}, fields)
}

func TestGaps_CompleteRecord(t *testing.T) {
	r := NewDiscoveryRecord()
	r.ProjectName = "Warehouse"
	r.Entities = []Entity{{ID: "e1", Name: "Order", Attributes: []EntityAttribute{{ID: "a1", Name: "total"}}}}
	r.Flows = []Flow{{ID: "f1", Trigger: "Click", Action: "Save", Result: "Saved"}}
	r.LegacyData = []LegacyDataSource{{ID: "l1", Quality: 10}, {ID: "l2", Quality: 1}}

	assert.Empty(t, Gaps(r))
}

package wizard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func sampleRecord() models.DiscoveryRecord {
	r := models.NewDiscoveryRecord()
	r.ProjectName = "Inventory"
	r.Entities = []models.Entity{{
		ID:   "e1",
		Name: "Product",
		Attributes: []models.EntityAttribute{
			{ID: "a1", Name: "sku", Type: models.AttributeText, Required: true},
		},
	}}
	r.Flows = []models.Flow{{ID: "f1", Trigger: "Click", Action: "Save", Result: "Saved"}}
	r.Roles = []models.Role{{ID: "r1", Name: "Admin"}}
	r.Devices = []models.Device{models.DeviceDesktop}
	return r
}

func TestApplyPatch_ChangesOnlyNamedFields(t *testing.T) {
	r := sampleRecord()
	entities := []models.Entity{{ID: "e9", Name: "Order"}}

	got := ApplyPatch(r, Patch{
		Problem:  ptr("stock drift"),
		Entities: &entities,
	})

	assert.Equal(t, "stock drift", got.Problem)
	assert.Equal(t, entities, got.Entities)

	// Everything else is equal to the input.
	want := r
	want.Problem = "stock drift"
	want.Entities = entities
	assert.Equal(t, want, got)
}

func TestApplyPatch_DoesNotMutateInput(t *testing.T) {
	r := sampleRecord()
	before := CloneRecord(r)

	_ = ApplyPatch(r, Patch{ProjectName: ptr("Other"), Flows: &[]models.Flow{}})

	assert.Equal(t, before, r)
}

func TestApplyPatch_DoesNotAliasPatchCollections(t *testing.T) {
	r := sampleRecord()
	entities := []models.Entity{{ID: "e9", Name: "Order", Attributes: []models.EntityAttribute{{ID: "a9", Name: "total"}}}}

	got := ApplyPatch(r, Patch{Entities: &entities})
	entities[0].Name = "Changed"
	entities[0].Attributes[0].Name = "changed"

	assert.Equal(t, "Order", got.Entities[0].Name)
	assert.Equal(t, "total", got.Entities[0].Attributes[0].Name)
}

func TestApplyPatch_Idempotent(t *testing.T) {
	r := sampleRecord()
	roles := []models.Role{{ID: "r2", Name: "Viewer"}}
	p := Patch{
		ProjectName:    ptr("Inventory v2"),
		Roles:          &roles,
		Connectivity:   ptr(models.ConnectivityOfflineFirst),
		AnalyticsLevel: ptr(models.AnalyticsPredictive),
	}

	once := ApplyPatch(r, p)
	twice := ApplyPatch(once, p)

	assert.Equal(t, once, twice)
}

func TestApplyPatch_EmptyPatchIsIdentity(t *testing.T) {
	r := sampleRecord()
	assert.True(t, Patch{}.IsEmpty())
	assert.Equal(t, r, ApplyPatch(r, Patch{}))
}

func TestEcosystemPatch_SetsBothFields(t *testing.T) {
	tests := []struct {
		eco  models.Ecosystem
		tool models.BITool
	}{
		{models.EcosystemGoogle, models.BIToolLooker},
		{models.EcosystemMicrosoft, models.BIToolPowerBI},
		{models.EcosystemOther, models.BIToolCustom},
		{models.EcosystemNone, models.BIToolNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.eco), func(t *testing.T) {
			r := sampleRecord()
			r.PreferredBITool = models.BIToolCustom

			got := SelectEcosystem(r, tt.eco)

			assert.Equal(t, tt.eco, got.EcosystemPreference)
			assert.Equal(t, tt.tool, got.PreferredBITool)
		})
	}
}

func TestEcosystemPatch_BIToolCanBeOverriddenAfterwards(t *testing.T) {
	r := SelectEcosystem(sampleRecord(), models.EcosystemGoogle)
	r = ApplyPatch(r, Patch{PreferredBITool: ptr(models.BIToolPowerBI)})

	assert.Equal(t, models.EcosystemGoogle, r.EcosystemPreference)
	assert.Equal(t, models.BIToolPowerBI, r.PreferredBITool)
}

func TestApplyPatch_EcosystemAloneBringsItsBITool(t *testing.T) {
	r := sampleRecord()
	r.PreferredBITool = models.BIToolLooker

	got := ApplyPatch(r, Patch{EcosystemPreference: ptr(models.EcosystemMicrosoft)})

	assert.Equal(t, models.EcosystemMicrosoft, got.EcosystemPreference)
	assert.Equal(t, models.BIToolPowerBI, got.PreferredBITool)
}

func TestApplyPatch_ExplicitBIToolWinsOverEcosystem(t *testing.T) {
	got := ApplyPatch(sampleRecord(), Patch{
		EcosystemPreference: ptr(models.EcosystemGoogle),
		PreferredBITool:     ptr(models.BIToolCustom),
	})

	assert.Equal(t, models.EcosystemGoogle, got.EcosystemPreference)
	assert.Equal(t, models.BIToolCustom, got.PreferredBITool)
}

func TestFinalize_DraftToSubmitted(t *testing.T) {
	r := sampleRecord()
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	got, err := Finalize(r, now)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, got.Status)
	require.NotNil(t, got.SubmissionDate)
	assert.True(t, got.SubmissionDate.Equal(now))
	assert.Equal(t, models.StatusDraft, r.Status, "input must not change")
	assert.Nil(t, r.SubmissionDate)
}

func TestFinalize_SecondCallRejected(t *testing.T) {
	first, err := Finalize(sampleRecord(), time.Now())
	require.NoError(t, err)
	stamp := *first.SubmissionDate

	second, err := Finalize(first, time.Now().Add(time.Hour))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
	assert.Equal(t, models.StatusSubmitted, second.Status)
	assert.True(t, second.SubmissionDate.Equal(stamp), "submission date is set once")
}

func TestMarkReviewed(t *testing.T) {
	_, err := MarkReviewed(sampleRecord())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	submitted, err := Finalize(sampleRecord(), time.Now())
	require.NoError(t, err)

	reviewed, err := MarkReviewed(submitted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReviewed, reviewed.Status)
	assert.Equal(t, submitted.SubmissionDate, reviewed.SubmissionDate)

	_, err = Finalize(reviewed, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

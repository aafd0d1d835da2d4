package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscoveryRecord_Defaults(t *testing.T) {
	r := NewDiscoveryRecord()

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, StatusDraft, r.Status)
	assert.Nil(t, r.SubmissionDate)
	assert.Equal(t, ConnectivityOnline, r.Connectivity)
	assert.Equal(t, IntegrationsNone, r.Integrations)
	assert.Equal(t, VisualIdentityNo, r.VisualIdentity)
	assert.Equal(t, EcosystemNone, r.EcosystemPreference)
	assert.Equal(t, AnalyticsOperational, r.AnalyticsLevel)
	assert.Equal(t, BIToolNone, r.PreferredBITool)
	assert.Empty(t, r.Entities)
	assert.Empty(t, r.Flows)
	assert.Empty(t, r.Roles)
	assert.Empty(t, r.LegacyData)

	require.Len(t, r.Indicators, 3)
	seen := map[string]bool{}
	for _, ind := range r.Indicators {
		assert.NotEmpty(t, ind.ID)
		assert.Empty(t, ind.Name)
		assert.Empty(t, ind.Formula)
		seen[ind.ID] = true
	}
	assert.Len(t, seen, 3, "indicator ids must be distinct")
}

func TestNewDiscoveryRecord_FreshIDs(t *testing.T) {
	a := NewDiscoveryRecord()
	b := NewDiscoveryRecord()
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewDiscoveryRecord_EmptyCollectionsEncodeAsArrays(t *testing.T) {
	data, err := json.Marshal(NewDiscoveryRecord())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"entities", "flows", "roles", "devices", "automationNeeds", "legacyData"} {
		assert.Equal(t, "[]", string(raw[key]), key)
	}
	_, hasDate := raw["submissionDate"]
	assert.False(t, hasDate, "draft records omit submissionDate")
}

func TestRecordStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to RecordStatus
		want     bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusSubmitted, StatusReviewed, true},
		{StatusDraft, StatusReviewed, false},
		{StatusDraft, StatusDraft, false},
		{StatusSubmitted, StatusDraft, false},
		{StatusSubmitted, StatusSubmitted, false},
		{StatusReviewed, StatusSubmitted, false},
		{StatusReviewed, StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestDefaultBIToolFor(t *testing.T) {
	assert.Equal(t, BIToolLooker, DefaultBIToolFor(EcosystemGoogle))
	assert.Equal(t, BIToolPowerBI, DefaultBIToolFor(EcosystemMicrosoft))
	assert.Equal(t, BIToolCustom, DefaultBIToolFor(EcosystemOther))
	assert.Equal(t, BIToolNone, DefaultBIToolFor(EcosystemNone))
}

func TestLegacyDataSource_UnmarshalQuality(t *testing.T) {
	tests := []struct {
		name string
		json string
		want int
	}{
		{name: "number", json: `{"id":"l1","quality":7}`, want: 7},
		{name: "string", json: `{"id":"l1","quality":"8"}`, want: 8},
		{name: "null", json: `{"id":"l1","quality":null}`, want: 0},
		{name: "missing", json: `{"id":"l1"}`, want: 0},
		{name: "garbage", json: `{"id":"l1","quality":"good"}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l LegacyDataSource
			require.NoError(t, json.Unmarshal([]byte(tt.json), &l))
			assert.Equal(t, "l1", l.ID)
			assert.Equal(t, tt.want, l.Quality)
		})
	}
}

func TestDiscoveryRecord_DisplayName(t *testing.T) {
	r := NewDiscoveryRecord()
	assert.Equal(t, "Untitled project", r.DisplayName())
	r.ProjectName = "Inventory"
	assert.Equal(t, "Inventory", r.DisplayName())
}

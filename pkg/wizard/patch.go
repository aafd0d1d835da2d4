// Package wizard holds the mutation and navigation rules for a discovery
// editing session. Every operation returns a new record and leaves its input
// untouched.
package wizard

import (
	"fmt"
	"slices"
	"time"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// Patch is a partial set of top-level field replacements. Nil fields are left
// alone. Collection fields replace the whole sequence; there is no deep merge.
// Identity and lifecycle fields (id, status, submissionDate) are not patchable.
type Patch struct {
	ProjectName  *string `json:"projectName,omitempty"`
	Problem      *string `json:"problem,omitempty"`
	MVPObjective *string `json:"mvpObjective,omitempty"`
	Users        *string `json:"users,omitempty"`
	KPIs         *string `json:"kpis,omitempty"`

	Entities *[]models.Entity `json:"entities,omitempty"`
	Flows    *[]models.Flow   `json:"flows,omitempty"`
	Roles    *[]models.Role   `json:"roles,omitempty"`

	Connectivity        *models.Connectivity     `json:"connectivity,omitempty"`
	Devices             *[]models.Device         `json:"devices,omitempty"`
	Volume              *string                  `json:"volume,omitempty"`
	Integrations        *models.Integrations     `json:"integrations,omitempty"`
	VisualIdentity      *models.VisualIdentity   `json:"visualIdentity,omitempty"`
	EcosystemPreference *models.Ecosystem        `json:"ecosystemPreference,omitempty"`
	AutomationNeeds     *[]models.AutomationNeed `json:"automationNeeds,omitempty"`

	LegacyData      *[]models.LegacyDataSource `json:"legacyData,omitempty"`
	Indicators      *[]models.Indicator        `json:"indicators,omitempty"`
	AnalyticsLevel  *models.AnalyticsLevel     `json:"analyticsLevel,omitempty"`
	PreferredBITool *models.BITool             `json:"preferredBiTool,omitempty"`

	AdditionalNotes *string `json:"additionalNotes,omitempty"`
}

// IsEmpty reports whether the patch names no field.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// ApplyPatch returns a copy of r with the fields supplied in p replaced.
// Replaced collections are cloned so the result never aliases p.
// An ecosystem supplied without a BI tool brings the tool it implies.
func ApplyPatch(r models.DiscoveryRecord, p Patch) models.DiscoveryRecord {
	if p.EcosystemPreference != nil && p.PreferredBITool == nil {
		p.PreferredBITool = EcosystemPatch(*p.EcosystemPreference).PreferredBITool
	}

	out := r

	setString(&out.ProjectName, p.ProjectName)
	setString(&out.Problem, p.Problem)
	setString(&out.MVPObjective, p.MVPObjective)
	setString(&out.Users, p.Users)
	setString(&out.KPIs, p.KPIs)
	setString(&out.Volume, p.Volume)
	setString(&out.AdditionalNotes, p.AdditionalNotes)

	if p.Entities != nil {
		out.Entities = cloneEntities(*p.Entities)
	}
	if p.Flows != nil {
		out.Flows = cloneSlice(*p.Flows)
	}
	if p.Roles != nil {
		out.Roles = cloneSlice(*p.Roles)
	}
	if p.Devices != nil {
		out.Devices = cloneSlice(*p.Devices)
	}
	if p.AutomationNeeds != nil {
		out.AutomationNeeds = cloneSlice(*p.AutomationNeeds)
	}
	if p.LegacyData != nil {
		out.LegacyData = cloneSlice(*p.LegacyData)
	}
	if p.Indicators != nil {
		out.Indicators = cloneSlice(*p.Indicators)
	}

	if p.Connectivity != nil {
		out.Connectivity = *p.Connectivity
	}
	if p.Integrations != nil {
		out.Integrations = *p.Integrations
	}
	if p.VisualIdentity != nil {
		out.VisualIdentity = *p.VisualIdentity
	}
	if p.EcosystemPreference != nil {
		out.EcosystemPreference = *p.EcosystemPreference
	}
	if p.AnalyticsLevel != nil {
		out.AnalyticsLevel = *p.AnalyticsLevel
	}
	if p.PreferredBITool != nil {
		out.PreferredBITool = *p.PreferredBITool
	}

	return out
}

// EcosystemPatch selects an ecosystem together with the BI tool it implies.
// Both fields land in the same patch so they cannot drift apart.
func EcosystemPatch(e models.Ecosystem) Patch {
	tool := models.DefaultBIToolFor(e)
	return Patch{EcosystemPreference: &e, PreferredBITool: &tool}
}

// SelectEcosystem applies EcosystemPatch to r.
func SelectEcosystem(r models.DiscoveryRecord, e models.Ecosystem) models.DiscoveryRecord {
	return ApplyPatch(r, EcosystemPatch(e))
}

// Finalize moves a draft to submitted and stamps the submission date.
func Finalize(r models.DiscoveryRecord, now time.Time) (models.DiscoveryRecord, error) {
	if !r.Status.CanTransitionTo(models.StatusSubmitted) {
		return r, fmt.Errorf("finalize record in status %q: %w", r.Status, apperrors.ErrInvalidTransition)
	}
	out := r
	ts := now.UTC()
	out.Status = models.StatusSubmitted
	out.SubmissionDate = &ts
	return out, nil
}

// MarkReviewed moves a submitted record to reviewed. The submission date is kept.
func MarkReviewed(r models.DiscoveryRecord) (models.DiscoveryRecord, error) {
	if !r.Status.CanTransitionTo(models.StatusReviewed) {
		return r, fmt.Errorf("mark record reviewed in status %q: %w", r.Status, apperrors.ErrInvalidTransition)
	}
	out := r
	out.Status = models.StatusReviewed
	return out, nil
}

// CloneRecord returns a deep copy of r.
func CloneRecord(r models.DiscoveryRecord) models.DiscoveryRecord {
	out := r
	if r.SubmissionDate != nil {
		ts := *r.SubmissionDate
		out.SubmissionDate = &ts
	}
	out.Entities = cloneEntities(r.Entities)
	out.Flows = cloneSlice(r.Flows)
	out.Roles = cloneSlice(r.Roles)
	out.Devices = cloneSlice(r.Devices)
	out.AutomationNeeds = cloneSlice(r.AutomationNeeds)
	out.LegacyData = cloneSlice(r.LegacyData)
	out.Indicators = cloneSlice(r.Indicators)
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// cloneSlice keeps nil as nil and empty as empty.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

func cloneEntities(s []models.Entity) []models.Entity {
	out := cloneSlice(s)
	for i := range out {
		out[i].Attributes = cloneSlice(out[i].Attributes)
	}
	return out
}

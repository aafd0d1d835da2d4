// Package models contains domain types for ekaya-discovery.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-discovery/pkg/jsonutil"
)

// RecordStatus is the lifecycle state of a DiscoveryRecord.
// Transitions only move forward: draft → submitted → reviewed.
type RecordStatus string

const (
	StatusDraft     RecordStatus = "draft"
	StatusSubmitted RecordStatus = "submitted"
	StatusReviewed  RecordStatus = "reviewed"
)

// CanTransitionTo reports whether next is the single forward step from s.
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusSubmitted
	case StatusSubmitted:
		return next == StatusReviewed
	default:
		return false
	}
}

// IsValid reports whether s is a known status.
func (s RecordStatus) IsValid() bool {
	return s == StatusDraft || s == StatusSubmitted || s == StatusReviewed
}

// AttributeType is the closed set of entity attribute types.
type AttributeType string

const (
	AttributeText     AttributeType = "Text"
	AttributeNumber   AttributeType = "Number"
	AttributeCurrency AttributeType = "Currency"
	AttributeDate     AttributeType = "Date"
	AttributeFile     AttributeType = "File"
	AttributeBoolean  AttributeType = "Boolean"
	AttributeList     AttributeType = "List"
)

// AttributeTypes returns every attribute type in display order.
func AttributeTypes() []AttributeType {
	return []AttributeType{
		AttributeText, AttributeNumber, AttributeCurrency, AttributeDate,
		AttributeFile, AttributeBoolean, AttributeList,
	}
}

type Connectivity string

const (
	ConnectivityOnline       Connectivity = "online"
	ConnectivityOfflineFirst Connectivity = "offline-first"
)

type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
)

type Integrations string

const (
	IntegrationsNone Integrations = "none"
	IntegrationsYes  Integrations = "yes"
)

type VisualIdentity string

const (
	VisualIdentityYes VisualIdentity = "yes"
	VisualIdentityNo  VisualIdentity = "no"
)

type Ecosystem string

const (
	EcosystemGoogle    Ecosystem = "google"
	EcosystemMicrosoft Ecosystem = "microsoft"
	EcosystemOther     Ecosystem = "other"
	EcosystemNone      Ecosystem = "none"
)

type BITool string

const (
	BIToolNone    BITool = ""
	BIToolLooker  BITool = "looker"
	BIToolPowerBI BITool = "powerbi"
	BIToolCustom  BITool = "custom"
)

// DefaultBIToolFor is the BI tool implied by picking an ecosystem.
func DefaultBIToolFor(e Ecosystem) BITool {
	switch e {
	case EcosystemGoogle:
		return BIToolLooker
	case EcosystemMicrosoft:
		return BIToolPowerBI
	case EcosystemOther:
		return BIToolCustom
	default:
		return BIToolNone
	}
}

type AutomationNeed string

const (
	AutomationEmail     AutomationNeed = "email"
	AutomationCalendar  AutomationNeed = "calendar"
	AutomationDocuments AutomationNeed = "documents"
	AutomationStorage   AutomationNeed = "storage"
)

type AnalyticsLevel string

const (
	AnalyticsOperational AnalyticsLevel = "operational"
	AnalyticsBI          AnalyticsLevel = "bi"
	AnalyticsPredictive  AnalyticsLevel = "predictive"
)

// DefaultLegacyQuality is the quality score given to a newly added legacy source.
const DefaultLegacyQuality = 5

// EntityAttribute is one field of a business entity.
// Its ID is unique within the owning Entity only.
type EntityAttribute struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        AttributeType `json:"type"`
	Required    bool          `json:"required"`
	Validations string        `json:"validations"`
	Source      string        `json:"source"`
}

// Entity is a named business object with ordered attributes.
type Entity struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Attributes []EntityAttribute `json:"attributes"`
}

// Flow is a trigger → action → result unit, with an optional condition.
type Flow struct {
	ID        string `json:"id"`
	Trigger   string `json:"trigger"`
	Condition string `json:"condition"`
	Action    string `json:"action"`
	Result    string `json:"result"`
}

// Role describes a user role and what it can reach.
type Role struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Modules      string `json:"modules"`
	Restrictions string `json:"restrictions"`
}

// LegacyDataSource is an existing system whose data must be migrated.
// Quality is expected in 1..10 but is only enforced at the request boundary.
type LegacyDataSource struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Format  string `json:"format"`
	Quality int    `json:"quality"`
	Action  string `json:"action"`
}

// UnmarshalJSON accepts content bundles where quality was stored as a string
// or null (older clients sent whatever the number input produced).
func (l *LegacyDataSource) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.RawMessage `json:"id"`
		Source  json.RawMessage `json:"source"`
		Format  json.RawMessage `json:"format"`
		Quality json.RawMessage `json:"quality"`
		Action  json.RawMessage `json:"action"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	l.ID = jsonutil.FlexibleStringValue(raw.ID)
	l.Source = jsonutil.FlexibleStringValue(raw.Source)
	l.Format = jsonutil.FlexibleStringValue(raw.Format)
	l.Action = jsonutil.FlexibleStringValue(raw.Action)
	l.Quality, _ = jsonutil.FlexibleIntValue(raw.Quality)
	return nil
}

// Indicator is a KPI definition.
type Indicator struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Formula string `json:"formula"`
}

// DiscoveryRecord is the root aggregate holding one client's requirement answers.
// It is owned by exactly one editing session and is only changed through the
// wizard package's patch operations.
type DiscoveryRecord struct {
	ID             string       `json:"id"`
	Status         RecordStatus `json:"status"`
	SubmissionDate *time.Time   `json:"submissionDate,omitempty"`

	// Vision
	ProjectName  string `json:"projectName"`
	Problem      string `json:"problem"`
	MVPObjective string `json:"mvpObjective"`
	Users        string `json:"users"`
	KPIs         string `json:"kpis"`

	// Data architecture, flows, roles
	Entities []Entity `json:"entities"`
	Flows    []Flow   `json:"flows"`
	Roles    []Role   `json:"roles"`

	// Technical and ecosystem
	Connectivity        Connectivity     `json:"connectivity"`
	Devices             []Device         `json:"devices"`
	Volume              string           `json:"volume"`
	Integrations        Integrations     `json:"integrations"`
	VisualIdentity      VisualIdentity   `json:"visualIdentity"`
	EcosystemPreference Ecosystem        `json:"ecosystemPreference"`
	AutomationNeeds     []AutomationNeed `json:"automationNeeds"`

	// Migration and BI
	LegacyData      []LegacyDataSource `json:"legacyData"`
	Indicators      []Indicator        `json:"indicators"`
	AnalyticsLevel  AnalyticsLevel     `json:"analyticsLevel"`
	PreferredBITool BITool             `json:"preferredBiTool"`

	AdditionalNotes string `json:"additionalNotes"`
}

// NewDiscoveryRecord returns the record a fresh editing session starts from:
// draft status, a new local ID, default scalars, three blank indicators and
// empty collections.
func NewDiscoveryRecord() DiscoveryRecord {
	return DiscoveryRecord{
		ID:                  uuid.NewString(),
		Status:              StatusDraft,
		Entities:            []Entity{},
		Flows:               []Flow{},
		Roles:               []Role{},
		Connectivity:        ConnectivityOnline,
		Devices:             []Device{},
		Integrations:        IntegrationsNone,
		VisualIdentity:      VisualIdentityNo,
		EcosystemPreference: EcosystemNone,
		AutomationNeeds:     []AutomationNeed{},
		LegacyData:          []LegacyDataSource{},
		Indicators: []Indicator{
			{ID: uuid.NewString()},
			{ID: uuid.NewString()},
			{ID: uuid.NewString()},
		},
		AnalyticsLevel:  AnalyticsOperational,
		PreferredBITool: BIToolNone,
	}
}

// DisplayName returns the project name or a placeholder for unnamed projects.
func (r DiscoveryRecord) DisplayName() string {
	if r.ProjectName == "" {
		return "Untitled project"
	}
	return r.ProjectName
}

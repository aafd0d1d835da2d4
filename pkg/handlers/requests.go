package handlers

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/wizard"
)

// validate is shared by every handler; validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Path enum tags.
const (
	tagDevice     = "oneof=desktop mobile tablet"
	tagAutomation = "oneof=email calendar documents storage"
	tagDiagram    = "oneof=er flow"
)

// StartSessionRequest opens a new session, optionally resuming a draft.
type StartSessionRequest struct {
	DraftID string `json:"draftId" validate:"omitempty,max=64"`
}

type AttributeRequest struct {
	ID          string               `json:"id" validate:"required,max=64"`
	Name        string               `json:"name" validate:"max=200"`
	Type        models.AttributeType `json:"type" validate:"required,oneof=Text Number Currency Date File Boolean List"`
	Required    bool                 `json:"required"`
	Validations string               `json:"validations" validate:"max=2000"`
	Source      string               `json:"source" validate:"max=2000"`
}

type EntityRequest struct {
	ID         string             `json:"id" validate:"required,max=64"`
	Name       string             `json:"name" validate:"max=200"`
	Attributes []AttributeRequest `json:"attributes" validate:"unique=ID,dive"`
}

type FlowRequest struct {
	ID        string `json:"id" validate:"required,max=64"`
	Trigger   string `json:"trigger" validate:"max=2000"`
	Condition string `json:"condition" validate:"max=2000"`
	Action    string `json:"action" validate:"max=2000"`
	Result    string `json:"result" validate:"max=2000"`
}

type RoleRequest struct {
	ID           string `json:"id" validate:"required,max=64"`
	Name         string `json:"name" validate:"max=200"`
	Description  string `json:"description" validate:"max=2000"`
	Modules      string `json:"modules" validate:"max=2000"`
	Restrictions string `json:"restrictions" validate:"max=2000"`
}

type LegacySourceRequest struct {
	ID      string `json:"id" validate:"required,max=64"`
	Source  string `json:"source" validate:"max=2000"`
	Format  string `json:"format" validate:"max=2000"`
	Quality int    `json:"quality" validate:"min=1,max=10"`
	Action  string `json:"action" validate:"max=2000"`
}

type IndicatorRequest struct {
	ID      string `json:"id" validate:"required,max=64"`
	Name    string `json:"name" validate:"max=200"`
	Formula string `json:"formula" validate:"max=2000"`
}

// PatchRecordRequest is the body of PATCH /api/sessions/{sid}/record. Absent
// fields are left alone; collections replace the whole sequence and item ids
// must be present and unique within it.
type PatchRecordRequest struct {
	ProjectName  *string `json:"projectName" validate:"omitempty,max=200"`
	Problem      *string `json:"problem" validate:"omitempty,max=10000"`
	MVPObjective *string `json:"mvpObjective" validate:"omitempty,max=10000"`
	Users        *string `json:"users" validate:"omitempty,max=10000"`
	KPIs         *string `json:"kpis" validate:"omitempty,max=10000"`

	Entities *[]EntityRequest `json:"entities" validate:"omitempty,unique=ID,dive"`
	Flows    *[]FlowRequest   `json:"flows" validate:"omitempty,unique=ID,dive"`
	Roles    *[]RoleRequest   `json:"roles" validate:"omitempty,unique=ID,dive"`

	Connectivity        *models.Connectivity     `json:"connectivity" validate:"omitempty,oneof=online offline-first"`
	Devices             *[]models.Device         `json:"devices" validate:"omitempty,dive,oneof=desktop mobile tablet"`
	Volume              *string                  `json:"volume" validate:"omitempty,max=2000"`
	Integrations        *models.Integrations     `json:"integrations" validate:"omitempty,oneof=none yes"`
	VisualIdentity      *models.VisualIdentity   `json:"visualIdentity" validate:"omitempty,oneof=yes no"`
	EcosystemPreference *models.Ecosystem        `json:"ecosystemPreference" validate:"omitempty,oneof=google microsoft other none"`
	AutomationNeeds     *[]models.AutomationNeed `json:"automationNeeds" validate:"omitempty,dive,oneof=email calendar documents storage"`

	LegacyData      *[]LegacySourceRequest `json:"legacyData" validate:"omitempty,unique=ID,dive"`
	Indicators      *[]IndicatorRequest    `json:"indicators" validate:"omitempty,unique=ID,dive"`
	AnalyticsLevel  *models.AnalyticsLevel `json:"analyticsLevel" validate:"omitempty,oneof=operational bi predictive"`
	PreferredBITool *models.BITool         `json:"preferredBiTool" validate:"omitempty,oneof='' looker powerbi custom"`

	AdditionalNotes *string `json:"additionalNotes" validate:"omitempty,max=10000"`
}

// ToPatch converts the request into a wizard patch.
func (p PatchRecordRequest) ToPatch() wizard.Patch {
	patch := wizard.Patch{
		ProjectName:         p.ProjectName,
		Problem:             p.Problem,
		MVPObjective:        p.MVPObjective,
		Users:               p.Users,
		KPIs:                p.KPIs,
		Flows:               convertAll(p.Flows, func(f FlowRequest) models.Flow { return models.Flow(f) }),
		Roles:               convertAll(p.Roles, func(r RoleRequest) models.Role { return models.Role(r) }),
		Connectivity:        p.Connectivity,
		Devices:             p.Devices,
		Volume:              p.Volume,
		Integrations:        p.Integrations,
		VisualIdentity:      p.VisualIdentity,
		EcosystemPreference: p.EcosystemPreference,
		AutomationNeeds:     p.AutomationNeeds,
		Indicators:          convertAll(p.Indicators, func(i IndicatorRequest) models.Indicator { return models.Indicator(i) }),
		AnalyticsLevel:      p.AnalyticsLevel,
		PreferredBITool:     p.PreferredBITool,
		AdditionalNotes:     p.AdditionalNotes,
	}

	if p.Entities != nil {
		entities := make([]models.Entity, len(*p.Entities))
		for i, e := range *p.Entities {
			attrs := make([]models.EntityAttribute, len(e.Attributes))
			for j, a := range e.Attributes {
				attrs[j] = models.EntityAttribute(a)
			}
			entities[i] = models.Entity{ID: e.ID, Name: e.Name, Attributes: attrs}
		}
		patch.Entities = &entities
	}

	patch.LegacyData = convertAll(p.LegacyData, func(l LegacySourceRequest) models.LegacyDataSource {
		return models.LegacyDataSource(l)
	})

	return patch
}

// convertAll maps a supplied collection, keeping nil as "not supplied".
func convertAll[From, To any](in *[]From, conv func(From) To) *[]To {
	if in == nil {
		return nil
	}
	out := make([]To, len(*in))
	for i, v := range *in {
		out[i] = conv(v)
	}
	return &out
}

// EcosystemRequest selects an ecosystem. The matching BI tool is set with it.
type EcosystemRequest struct {
	Ecosystem models.Ecosystem `json:"ecosystem" validate:"required,oneof=google microsoft other none"`
}

type RenameEntityRequest struct {
	Name string `json:"name" validate:"max=200"`
}

type UpdateAttributeRequest struct {
	Name        *string               `json:"name" validate:"omitempty,max=200"`
	Type        *models.AttributeType `json:"type" validate:"omitempty,oneof=Text Number Currency Date File Boolean List"`
	Required    *bool                 `json:"required"`
	Validations *string               `json:"validations" validate:"omitempty,max=2000"`
	Source      *string               `json:"source" validate:"omitempty,max=2000"`
}

func (u UpdateAttributeRequest) toUpdate() wizard.AttributeUpdate {
	return wizard.AttributeUpdate(u)
}

type UpdateFlowRequest struct {
	Trigger   *string `json:"trigger" validate:"omitempty,max=2000"`
	Condition *string `json:"condition" validate:"omitempty,max=2000"`
	Action    *string `json:"action" validate:"omitempty,max=2000"`
	Result    *string `json:"result" validate:"omitempty,max=2000"`
}

type UpdateRoleRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Modules      *string `json:"modules" validate:"omitempty,max=2000"`
	Restrictions *string `json:"restrictions" validate:"omitempty,max=2000"`
}

type UpdateLegacySourceRequest struct {
	Source  *string `json:"source" validate:"omitempty,max=2000"`
	Format  *string `json:"format" validate:"omitempty,max=2000"`
	Quality *int    `json:"quality" validate:"omitempty,min=1,max=10"`
	Action  *string `json:"action" validate:"omitempty,max=2000"`
}

type UpdateIndicatorRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	Formula *string `json:"formula" validate:"omitempty,max=2000"`
}

// SuggestionRequest asks for AI text for one field.
type SuggestionRequest struct {
	Section      string `json:"section" validate:"required,max=200"`
	Field        string `json:"field" validate:"required,max=200"`
	CurrentInput string `json:"currentInput" validate:"max=10000"`
}

// LoginRequest signs an admin in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=200"`
}

// ItemResponse is returned by add operations: the new item's id (empty when
// nothing was added) and the session view after the change.
type ItemResponse struct {
	ID      string      `json:"id,omitempty"`
	Session wizard.View `json:"session"`
}

// TextResponse carries generated prose.
type TextResponse struct {
	Text string `json:"text"`
}

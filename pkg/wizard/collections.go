package wizard

import (
	"slices"

	"github.com/google/uuid"

	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
)

// Every collection edit reads the current collection, builds a new one with
// exactly one item added, removed or changed, and patches it back whole.

func removeByID[T any](items []T, id string, idOf func(T) string) ([]T, bool) {
	idx := slices.IndexFunc(items, func(it T) bool { return idOf(it) == id })
	if idx < 0 {
		return items, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...), true
}

func updateByID[T any](items []T, id string, idOf func(T) string, apply func(*T)) ([]T, bool) {
	idx := slices.IndexFunc(items, func(it T) bool { return idOf(it) == id })
	if idx < 0 {
		return items, false
	}
	out := slices.Clone(items)
	apply(&out[idx])
	return out, true
}

func appendItem[T any](items []T, item T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

func entityID(e models.Entity) string { return e.ID }
func attributeID(a models.EntityAttribute) string { return a.ID }
func flowID(f models.Flow) string { return f.ID }
func roleID(r models.Role) string { return r.ID }
func legacyID(l models.LegacyDataSource) string { return l.ID }
func indicatorID(i models.Indicator) string { return i.ID }

// Entities

// AddEntity appends an unnamed entity and returns its id.
func AddEntity(r models.DiscoveryRecord) (models.DiscoveryRecord, string) {
	e := models.Entity{ID: uuid.NewString(), Attributes: []models.EntityAttribute{}}
	next := appendItem(r.Entities, e)
	return ApplyPatch(r, Patch{Entities: &next}), e.ID
}

func RemoveEntity(r models.DiscoveryRecord, id string) models.DiscoveryRecord {
	next, ok := removeByID(r.Entities, id, entityID)
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{Entities: &next})
}

func RenameEntity(r models.DiscoveryRecord, id, name string) models.DiscoveryRecord {
	next, ok := updateByID(r.Entities, id, entityID, func(e *models.Entity) { e.Name = name })
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{Entities: &next})
}

// Attributes

// AttributeUpdate names the attribute fields to replace.
type AttributeUpdate struct {
	Name        *string               `json:"name,omitempty"`
	Type        *models.AttributeType `json:"type,omitempty"`
	Required    *bool                 `json:"required,omitempty"`
	Validations *string               `json:"validations,omitempty"`
	Source      *string               `json:"source,omitempty"`
}

func (u AttributeUpdate) apply(a *models.EntityAttribute) {
	setString(&a.Name, u.Name)
	setString(&a.Validations, u.Validations)
	setString(&a.Source, u.Source)
	if u.Type != nil {
		a.Type = *u.Type
	}
	if u.Required != nil {
		a.Required = *u.Required
	}
}

// AddAttribute appends a Text attribute to the entity and returns its id.
// The returned id is empty when the entity does not exist.
func AddAttribute(r models.DiscoveryRecord, eid string) (models.DiscoveryRecord, string) {
	attr := models.EntityAttribute{ID: uuid.NewString(), Type: models.AttributeText}
	next, ok := updateEntityAttributes(r.Entities, eid, func(attrs []models.EntityAttribute) []models.EntityAttribute {
		return appendItem(attrs, attr)
	})
	if !ok {
		return r, ""
	}
	return ApplyPatch(r, Patch{Entities: &next}), attr.ID
}

func RemoveAttribute(r models.DiscoveryRecord, eid, attrID string) models.DiscoveryRecord {
	removed := false
	next, _ := updateEntityAttributes(r.Entities, eid, func(attrs []models.EntityAttribute) []models.EntityAttribute {
		out, ok := removeByID(attrs, attrID, attributeID)
		removed = ok
		return out
	})
	if !removed {
		return r
	}
	return ApplyPatch(r, Patch{Entities: &next})
}

func UpdateAttribute(r models.DiscoveryRecord, eid, attrID string, u AttributeUpdate) models.DiscoveryRecord {
	updated := false
	next, _ := updateEntityAttributes(r.Entities, eid, func(attrs []models.EntityAttribute) []models.EntityAttribute {
		out, ok := updateByID(attrs, attrID, attributeID, u.apply)
		updated = ok
		return out
	})
	if !updated {
		return r
	}
	return ApplyPatch(r, Patch{Entities: &next})
}

func updateEntityAttributes(
	entities []models.Entity,
	id string,
	fn func([]models.EntityAttribute) []models.EntityAttribute,
) ([]models.Entity, bool) {
	return updateByID(entities, id, entityID, func(e *models.Entity) {
		e.Attributes = fn(e.Attributes)
	})
}

// Flows

type FlowUpdate struct {
	Trigger   *string `json:"trigger,omitempty"`
	Condition *string `json:"condition,omitempty"`
	Action    *string `json:"action,omitempty"`
	Result    *string `json:"result,omitempty"`
}

func (u FlowUpdate) apply(f *models.Flow) {
	setString(&f.Trigger, u.Trigger)
	setString(&f.Condition, u.Condition)
	setString(&f.Action, u.Action)
	setString(&f.Result, u.Result)
}

func AddFlow(r models.DiscoveryRecord) (models.DiscoveryRecord, string) {
	f := models.Flow{ID: uuid.NewString()}
	next := appendItem(r.Flows, f)
	return ApplyPatch(r, Patch{Flows: &next}), f.ID
}

func RemoveFlow(r models.DiscoveryRecord, id string) models.DiscoveryRecord {
	next, ok := removeByID(r.Flows, id, flowID)
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{Flows: &next})
}

func UpdateFlow(r models.DiscoveryRecord, id string, u FlowUpdate) models.DiscoveryRecord {
	next, ok := updateByID(r.Flows, id, flowID, u.apply)
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{Flows: &next})
}

// Roles

type RoleUpdate struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	Modules      *string `json:"modules,omitempty"`
	Restrictions *string `json:"restrictions,omitempty"`
}

func (u RoleUpdate) apply(ro *models.Role) {
	setString(&ro.Name, u.Name)
	setString(&ro.Description, u.Description)
	setString(&ro.Modules, u.Modules)
	setString(&ro.Restrictions, u.Restrictions)
}

func AddRole(r models.DiscoveryRecord) (models.DiscoveryRecord, string) {
	ro := models.Role{ID: uuid.NewString()}
	next := appendItem(r.Roles, ro)
	return ApplyPatch(r, Patch{Roles: &next}), ro.ID
}

func RemoveRole(r models.DiscoveryRecord, id string) models.DiscoveryRecord {
	next, ok := removeByID(r.Roles, id, roleID)
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{Roles: &next})
}

func UpdateRole(r models.DiscoveryRecord, id string, u RoleUpdate) models.DiscoveryRecord {
	next, ok := updateByID(r.Roles, id, roleID, u.apply)
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{Roles: &next})
}

// Legacy data sources

type LegacySourceUpdate struct {
	Source  *string `json:"source,omitempty"`
	Format  *string `json:"format,omitempty"`
	Quality *int    `json:"quality,omitempty"`
	Action  *string `json:"action,omitempty"`
}

func (u LegacySourceUpdate) apply(l *models.LegacyDataSource) {
	setString(&l.Source, u.Source)
	setString(&l.Format, u.Format)
	setString(&l.Action, u.Action)
	if u.Quality != nil {
		l.Quality = *u.Quality
	}
}

// AddLegacySource appends a source with the default quality score.
func AddLegacySource(r models.DiscoveryRecord) (models.DiscoveryRecord, string) {
	l := models.LegacyDataSource{ID: uuid.NewString(), Quality: models.DefaultLegacyQuality}
	next := appendItem(r.LegacyData, l)
	return ApplyPatch(r, Patch{LegacyData: &next}), l.ID
}

func RemoveLegacySource(r models.DiscoveryRecord, id string) models.DiscoveryRecord {
	next, ok := removeByID(r.LegacyData, id, legacyID)
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{LegacyData: &next})
}

func UpdateLegacySource(r models.DiscoveryRecord, id string, u LegacySourceUpdate) models.DiscoveryRecord {
	next, ok := updateByID(r.LegacyData, id, legacyID, u.apply)
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{LegacyData: &next})
}

// Indicators

type IndicatorUpdate struct {
	Name    *string `json:"name,omitempty"`
	Formula *string `json:"formula,omitempty"`
}

func (u IndicatorUpdate) apply(i *models.Indicator) {
	setString(&i.Name, u.Name)
	setString(&i.Formula, u.Formula)
}

func AddIndicator(r models.DiscoveryRecord) (models.DiscoveryRecord, string) {
	ind := models.Indicator{ID: uuid.NewString()}
	next := appendItem(r.Indicators, ind)
	return ApplyPatch(r, Patch{Indicators: &next}), ind.ID
}

func RemoveIndicator(r models.DiscoveryRecord, id string) models.DiscoveryRecord {
	next, ok := removeByID(r.Indicators, id, indicatorID)
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{Indicators: &next})
}

func UpdateIndicator(r models.DiscoveryRecord, id string, u IndicatorUpdate) models.DiscoveryRecord {
	next, ok := updateByID(r.Indicators, id, indicatorID, u.apply)
	if !ok {
		return r
	}
	return ApplyPatch(r, Patch{Indicators: &next})
}

// Membership sets

// ToggleDevice adds d when absent and removes it when present.
func ToggleDevice(r models.DiscoveryRecord, d models.Device) models.DiscoveryRecord {
	next := toggle(r.Devices, d)
	return ApplyPatch(r, Patch{Devices: &next})
}

// ToggleAutomationNeed adds n when absent and removes it when present.
func ToggleAutomationNeed(r models.DiscoveryRecord, n models.AutomationNeed) models.DiscoveryRecord {
	next := toggle(r.AutomationNeeds, n)
	return ApplyPatch(r, Patch{AutomationNeeds: &next})
}

func toggle[T comparable](set []T, v T) []T {
	if idx := slices.Index(set, v); idx >= 0 {
		return slices.Delete(slices.Clone(set), idx, idx+1)
	}
	return appendItem(set, v)
}

package handlers

import (
	"net/http"

	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/wizard"
)

// Collection items are addressed by the ids the record carries. Unknown ids
// leave the record unchanged and still answer 200 with the current view.
func (h *SessionsHandler) registerCollectionRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions/{sid}/entities", h.AddEntity)
	mux.HandleFunc("PATCH /api/sessions/{sid}/entities/{eid}", h.RenameEntity)
	mux.HandleFunc("DELETE /api/sessions/{sid}/entities/{eid}", h.RemoveEntity)

	mux.HandleFunc("POST /api/sessions/{sid}/entities/{eid}/attributes", h.AddAttribute)
	mux.HandleFunc("PATCH /api/sessions/{sid}/entities/{eid}/attributes/{aid}", h.UpdateAttribute)
	mux.HandleFunc("DELETE /api/sessions/{sid}/entities/{eid}/attributes/{aid}", h.RemoveAttribute)

	mux.HandleFunc("POST /api/sessions/{sid}/flows", h.AddFlow)
	mux.HandleFunc("PATCH /api/sessions/{sid}/flows/{fid}", h.UpdateFlow)
	mux.HandleFunc("DELETE /api/sessions/{sid}/flows/{fid}", h.RemoveFlow)

	mux.HandleFunc("POST /api/sessions/{sid}/roles", h.AddRole)
	mux.HandleFunc("PATCH /api/sessions/{sid}/roles/{rid}", h.UpdateRole)
	mux.HandleFunc("DELETE /api/sessions/{sid}/roles/{rid}", h.RemoveRole)

	mux.HandleFunc("POST /api/sessions/{sid}/legacy", h.AddLegacySource)
	mux.HandleFunc("PATCH /api/sessions/{sid}/legacy/{lid}", h.UpdateLegacySource)
	mux.HandleFunc("DELETE /api/sessions/{sid}/legacy/{lid}", h.RemoveLegacySource)

	mux.HandleFunc("POST /api/sessions/{sid}/indicators", h.AddIndicator)
	mux.HandleFunc("PATCH /api/sessions/{sid}/indicators/{iid}", h.UpdateIndicator)
	mux.HandleFunc("DELETE /api/sessions/{sid}/indicators/{iid}", h.RemoveIndicator)
}

// Entities

func (h *SessionsHandler) AddEntity(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	h.add(w, r, sid, wizard.AddEntity)
}

func (h *SessionsHandler) RenameEntity(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	var req RenameEntityRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}
	eid := r.PathValue("eid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.RenameEntity(rec, eid, req.Name)
	})
}

func (h *SessionsHandler) RemoveEntity(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	eid := r.PathValue("eid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.RemoveEntity(rec, eid)
	})
}

// Attributes

// AddAttribute answers 200 without an id when the entity does not exist.
func (h *SessionsHandler) AddAttribute(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	eid := r.PathValue("eid")
	h.add(w, r, sid, func(rec models.DiscoveryRecord) (models.DiscoveryRecord, string) {
		return wizard.AddAttribute(rec, eid)
	})
}

func (h *SessionsHandler) UpdateAttribute(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateAttributeRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}
	eid, aid := r.PathValue("eid"), r.PathValue("aid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.UpdateAttribute(rec, eid, aid, req.toUpdate())
	})
}

func (h *SessionsHandler) RemoveAttribute(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	eid, aid := r.PathValue("eid"), r.PathValue("aid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.RemoveAttribute(rec, eid, aid)
	})
}

// Flows

func (h *SessionsHandler) AddFlow(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	h.add(w, r, sid, wizard.AddFlow)
}

func (h *SessionsHandler) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateFlowRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}
	fid := r.PathValue("fid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.UpdateFlow(rec, fid, wizard.FlowUpdate(req))
	})
}

func (h *SessionsHandler) RemoveFlow(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	fid := r.PathValue("fid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.RemoveFlow(rec, fid)
	})
}

// Roles

func (h *SessionsHandler) AddRole(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	h.add(w, r, sid, wizard.AddRole)
}

func (h *SessionsHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}
	rid := r.PathValue("rid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.UpdateRole(rec, rid, wizard.RoleUpdate(req))
	})
}

func (h *SessionsHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	rid := r.PathValue("rid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.RemoveRole(rec, rid)
	})
}

// Legacy data sources

func (h *SessionsHandler) AddLegacySource(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	h.add(w, r, sid, wizard.AddLegacySource)
}

// UpdateLegacySource rejects quality scores outside 1..10.
func (h *SessionsHandler) UpdateLegacySource(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateLegacySourceRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}
	lid := r.PathValue("lid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.UpdateLegacySource(rec, lid, wizard.LegacySourceUpdate(req))
	})
}

func (h *SessionsHandler) RemoveLegacySource(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	lid := r.PathValue("lid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.RemoveLegacySource(rec, lid)
	})
}

// Indicators

func (h *SessionsHandler) AddIndicator(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	h.add(w, r, sid, wizard.AddIndicator)
}

func (h *SessionsHandler) UpdateIndicator(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	var req UpdateIndicatorRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}
	iid := r.PathValue("iid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.UpdateIndicator(rec, iid, wizard.IndicatorUpdate(req))
	})
}

func (h *SessionsHandler) RemoveIndicator(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	iid := r.PathValue("iid")
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.RemoveIndicator(rec, iid)
	})
}

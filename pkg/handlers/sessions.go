package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/services"
	"github.com/ekaya-inc/ekaya-discovery/pkg/wizard"
)

// SessionsHandler serves the wizard: session lifecycle, record edits,
// navigation and finalize. Session endpoints are open to clients; a session
// id is only known to whoever started it.
type SessionsHandler struct {
	discovery services.DiscoveryService
	logger    *zap.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(discovery services.DiscoveryService, logger *zap.Logger) *SessionsHandler {
	return &SessionsHandler{
		discovery: discovery,
		logger:    logger,
	}
}

// RegisterRoutes registers the sessions handler's routes on the given mux.
func (h *SessionsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.Start)
	mux.HandleFunc("GET /api/sessions/{sid}", h.Get)
	mux.HandleFunc("DELETE /api/sessions/{sid}", h.Close)

	mux.HandleFunc("PATCH /api/sessions/{sid}/record", h.PatchRecord)
	mux.HandleFunc("PUT /api/sessions/{sid}/ecosystem", h.SelectEcosystem)
	mux.HandleFunc("POST /api/sessions/{sid}/devices/{device}", h.ToggleDevice)
	mux.HandleFunc("POST /api/sessions/{sid}/automation/{need}", h.ToggleAutomation)

	mux.HandleFunc("POST /api/sessions/{sid}/steps/next", h.Next)
	mux.HandleFunc("POST /api/sessions/{sid}/steps/prev", h.Prev)
	mux.HandleFunc("PUT /api/sessions/{sid}/steps/{index}", h.JumpTo)

	mux.HandleFunc("POST /api/sessions/{sid}/finalize", h.Finalize)

	h.registerCollectionRoutes(mux)
}

// Start handles POST /api/sessions
// Opens a fresh session, or resumes the mirrored draft named by draftId.
func (h *SessionsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !DecodeRequest(w, r, &req, true, h.logger) {
		return
	}

	sess, err := h.discovery.Start(r.Context(), req.DraftID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, sess.View()); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/sessions/{sid}
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	sess, err := h.discovery.Session(sid)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	h.writeView(w, sess.View())
}

// Close handles DELETE /api/sessions/{sid}
func (h *SessionsHandler) Close(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	h.discovery.Close(sid)
	w.WriteHeader(http.StatusNoContent)
}

// PatchRecord handles PATCH /api/sessions/{sid}/record
func (h *SessionsHandler) PatchRecord(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	var req PatchRecordRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}

	patch := req.ToPatch()
	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.ApplyPatch(rec, patch)
	})
}

// SelectEcosystem handles PUT /api/sessions/{sid}/ecosystem
func (h *SessionsHandler) SelectEcosystem(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	var req EcosystemRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}

	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.SelectEcosystem(rec, req.Ecosystem)
	})
}

// ToggleDevice handles POST /api/sessions/{sid}/devices/{device}
func (h *SessionsHandler) ToggleDevice(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	device, ok := ValidatePathEnum(w, r, "device", tagDevice, h.logger)
	if !ok {
		return
	}

	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.ToggleDevice(rec, models.Device(device))
	})
}

// ToggleAutomation handles POST /api/sessions/{sid}/automation/{need}
func (h *SessionsHandler) ToggleAutomation(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	need, ok := ValidatePathEnum(w, r, "need", tagAutomation, h.logger)
	if !ok {
		return
	}

	h.edit(w, r, sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		return wizard.ToggleAutomationNeed(rec, models.AutomationNeed(need))
	})
}

// Next handles POST /api/sessions/{sid}/steps/next
func (h *SessionsHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*wizard.Sequencer).Advance)
}

// Prev handles POST /api/sessions/{sid}/steps/prev
func (h *SessionsHandler) Prev(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, (*wizard.Sequencer).Retreat)
}

// JumpTo handles PUT /api/sessions/{sid}/steps/{index}
// Out-of-range indexes leave the cursor where it is.
func (h *SessionsHandler) JumpTo(w http.ResponseWriter, r *http.Request) {
	index, ok := ParseStepIndex(w, r, h.logger)
	if !ok {
		return
	}
	h.navigate(w, r, func(s *wizard.Sequencer) { s.JumpTo(index) })
}

// Finalize handles POST /api/sessions/{sid}/finalize
// Submits the record. Only reachable from the last step of an editable session.
func (h *SessionsHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.discovery.Finalize(r.Context(), sid)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	h.writeView(w, view)
}

func (h *SessionsHandler) navigate(w http.ResponseWriter, r *http.Request, fn func(*wizard.Sequencer)) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.discovery.Navigate(sid, fn)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	h.writeView(w, view)
}

func (h *SessionsHandler) edit(
	w http.ResponseWriter,
	r *http.Request,
	sid string,
	fn func(models.DiscoveryRecord) models.DiscoveryRecord,
) {
	view, err := h.discovery.Edit(r.Context(), sid, fn)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	h.writeView(w, view)
}

// add runs an add operation and reports the new item's id alongside the view.
func (h *SessionsHandler) add(
	w http.ResponseWriter,
	r *http.Request,
	sid string,
	fn func(models.DiscoveryRecord) (models.DiscoveryRecord, string),
) {
	var newID string
	view, err := h.discovery.Edit(r.Context(), sid, func(rec models.DiscoveryRecord) models.DiscoveryRecord {
		rec, newID = fn(rec)
		return rec
	})
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	status := http.StatusOK
	if newID != "" {
		status = http.StatusCreated
	}
	if err := WriteJSON(w, status, ItemResponse{ID: newID, Session: view}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *SessionsHandler) writeView(w http.ResponseWriter, view wizard.View) {
	if err := WriteJSON(w, http.StatusOK, view); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

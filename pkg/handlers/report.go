package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/blueprint"
	"github.com/ekaya-inc/ekaya-discovery/pkg/services"
)

// ReportHandler serves the summary step: report data, rendered diagrams and
// AI narration for a live session.
type ReportHandler struct {
	reports   services.ReportService
	narration services.NarrationService
	logger    *zap.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports services.ReportService, narration services.NarrationService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports:   reports,
		narration: narration,
		logger:    logger,
	}
}

// RegisterRoutes registers the report handler's routes on the given mux.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions/{sid}/report", h.Report)
	mux.HandleFunc("GET /api/sessions/{sid}/diagrams/{kind}", h.Diagram)
	mux.HandleFunc("POST /api/sessions/{sid}/suggestions", h.Suggest)
	mux.HandleFunc("POST /api/sessions/{sid}/review", h.Review)
}

// Report handles GET /api/sessions/{sid}/report
// Returns the record with its blueprint (ER outline, flow outline, estimate)
// and the list of incomplete fields.
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	report, err := h.reports.Report(sid)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, report); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Diagram handles GET /api/sessions/{sid}/diagrams/{kind}
// Writes the rendered graphic, or 204 when there is nothing to draw.
func (h *ReportHandler) Diagram(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}
	kind, ok := ValidatePathEnum(w, r, "kind", tagDiagram, h.logger)
	if !ok {
		return
	}

	graphic, err := h.reports.Diagram(r.Context(), sid, blueprint.DiagramKind(kind))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	if graphic == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", graphic.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(graphic.Data)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(graphic.Data); err != nil {
		h.logger.Debug("Failed to write diagram", zap.Error(err))
	}
}

// Suggest handles POST /api/sessions/{sid}/suggestions
func (h *ReportHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	var req SuggestionRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}

	text, err := h.narration.Suggest(r.Context(), sid, services.SuggestionRequest{
		Section:      req.Section,
		Field:        req.Field,
		CurrentInput: req.CurrentInput,
	})
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, TextResponse{Text: text}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Review handles POST /api/sessions/{sid}/review
func (h *ReportHandler) Review(w http.ResponseWriter, r *http.Request) {
	sid, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	text, err := h.narration.Review(r.Context(), sid)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, TextResponse{Text: text}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

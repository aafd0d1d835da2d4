package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/auth"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/services"
)

// ProjectSummary is one row of the admin dashboard.
type ProjectSummary struct {
	ID             string              `json:"id"`
	ProjectName    string              `json:"projectName"`
	Status         models.RecordStatus `json:"status"`
	SubmissionDate *time.Time          `json:"submissionDate,omitempty"`
	Connectivity   models.Connectivity `json:"connectivity"`
	Ecosystem      models.Ecosystem    `json:"ecosystem"`
	EntityCount    int                 `json:"entityCount"`
}

// ProjectListResponse wraps the dashboard listing.
type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
	Total    int              `json:"total"`
}

func newProjectSummary(r models.DiscoveryRecord) ProjectSummary {
	return ProjectSummary{
		ID:             r.ID,
		ProjectName:    r.DisplayName(),
		Status:         r.Status,
		SubmissionDate: r.SubmissionDate,
		Connectivity:   r.Connectivity,
		Ecosystem:      r.EcosystemPreference,
		EntityCount:    len(r.Entities),
	}
}

// AdminHandler handles admin sign-in and the submitted-projects dashboard.
type AdminHandler struct {
	authService auth.AuthService
	discovery   services.DiscoveryService
	logger      *zap.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(authService auth.AuthService, discovery services.DiscoveryService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		discovery:   discovery,
		logger:      logger,
	}
}

// RegisterRoutes registers the admin handler's routes on the given mux.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/admin/login", h.Login)
	mux.HandleFunc("POST /api/admin/logout", h.Logout)
	mux.HandleFunc("GET /api/admin/session", h.Session)

	mux.HandleFunc("GET /api/admin/projects", authMiddleware.RequireSession(h.ListProjects))
	mux.HandleFunc("POST /api/admin/projects/{pid}/review-session", authMiddleware.RequireSession(h.OpenReview))
	mux.HandleFunc("POST /api/admin/projects/{pid}/reviewed", authMiddleware.RequireSession(h.MarkReviewed))
}

// Login handles POST /api/admin/login
// Checks credentials and stores the session token in a cookie.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !DecodeRequest(w, r, &req, false, h.logger) {
		return
	}

	session, err := h.authService.SignIn(r.Context(), auth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if err := h.authService.Persist(w, r, session); err != nil {
		h.logger.Error("Failed to persist admin session", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "session_error", "Failed to store session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, session); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Logout handles POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(w, r); err != nil {
		h.logger.Error("Failed to clear admin session", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "session_error", "Failed to clear session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/admin/session
// Returns the signed-in admin, or 401 when there is none.
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := h.authService.CurrentSession(r)
	if session == nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "No active admin session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, session); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListProjects handles GET /api/admin/projects
func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	records, err := h.discovery.ListProjects(r.Context())
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	summaries := make([]ProjectSummary, len(records))
	for i, rec := range records {
		summaries[i] = newProjectSummary(rec)
	}

	response := ProjectListResponse{Projects: summaries, Total: len(summaries)}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// OpenReview handles POST /api/admin/projects/{pid}/review-session
// Loads a persisted record into a read-only session.
func (h *AdminHandler) OpenReview(w http.ResponseWriter, r *http.Request) {
	pid, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	sess, err := h.discovery.OpenReview(r.Context(), pid)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	if claims, ok := auth.GetClaims(r.Context()); ok {
		h.logger.Info("Admin opened review session",
			zap.String("admin", claims.Email),
			zap.String("project_id", pid))
	}

	if err := WriteJSON(w, http.StatusCreated, sess.View()); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// MarkReviewed handles POST /api/admin/projects/{pid}/reviewed
func (h *AdminHandler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	pid, ok := ParseProjectID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.discovery.MarkReviewed(r.Context(), pid); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/auth"
	"github.com/ekaya-inc/ekaya-discovery/pkg/drafts"
	"github.com/ekaya-inc/ekaya-discovery/pkg/llm"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/render"
	"github.com/ekaya-inc/ekaya-discovery/pkg/services"
)

// mockProjectRepository keeps persisted records in memory.
type mockProjectRepository struct {
	mu      sync.Mutex
	records map[string]models.DiscoveryRecord
	saveErr error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{records: make(map[string]models.DiscoveryRecord)}
}

func (m *mockProjectRepository) Save(ctx context.Context, rec models.DiscoveryRecord) (*models.DiscoveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	if _, err := uuid.Parse(rec.ID); err != nil {
		rec.ID = uuid.NewString()
	}
	m.records[rec.ID] = rec
	return &rec, nil
}

func (m *mockProjectRepository) List(ctx context.Context) ([]models.DiscoveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DiscoveryRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockProjectRepository) Get(ctx context.Context, id string) (*models.DiscoveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &r, nil
}

func (m *mockProjectRepository) UpdateStatus(ctx context.Context, id string, status models.RecordStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if !r.Status.CanTransitionTo(status) {
		return apperrors.ErrInvalidTransition
	}
	r.Status = status
	m.records[id] = r
	return nil
}

// mockRenderer answers every document with a fixed SVG.
type mockRenderer struct {
	err error
}

func (m *mockRenderer) Render(ctx context.Context, doc string) (*render.Graphic, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &render.Graphic{ContentType: "image/svg+xml", Data: []byte("<svg>" + doc + "</svg>")}, nil
}

// mockAuthService embeds the interface; unimplemented methods panic.
type mockAuthService struct {
	auth.AuthService
	session   *auth.Session
	signInErr error
	claims    *auth.Claims
}

func (m *mockAuthService) SignIn(ctx context.Context, creds auth.Credentials) (*auth.Session, error) {
	if m.signInErr != nil {
		return nil, m.signInErr
	}
	return m.session, nil
}

func (m *mockAuthService) Persist(w http.ResponseWriter, r *http.Request, session *auth.Session) error {
	http.SetCookie(w, &http.Cookie{Name: auth.SessionName, Value: session.Token})
	return nil
}

func (m *mockAuthService) SignOut(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{Name: auth.SessionName, MaxAge: -1})
	return nil
}

func (m *mockAuthService) ValidateRequest(r *http.Request) (*auth.Claims, error) {
	if m.claims == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return m.claims, nil
}

func (m *mockAuthService) CurrentSession(r *http.Request) *auth.Session {
	if m.claims == nil {
		return nil
	}
	return m.session
}

// testServer wires real services over in-memory collaborators.
type testServer struct {
	mux       *http.ServeMux
	repo      *mockProjectRepository
	renderer  *mockRenderer
	narrator  *llm.MockNarrator
	authSvc   *mockAuthService
	discovery services.DiscoveryService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := services.NewMetrics(prometheus.NewRegistry())

	ts := &testServer{
		mux:      http.NewServeMux(),
		repo:     newMockProjectRepository(),
		renderer: &mockRenderer{},
		narrator: llm.NewMockNarrator("Sugerencia generada."),
		authSvc: &mockAuthService{
			session: &auth.Session{
				AdminID:   uuid.NewString(),
				Email:     "admin@example.com",
				ExpiresAt: time.Now().Add(time.Hour),
				Token:     "signed-token",
			},
		},
	}

	ts.discovery = services.NewDiscoveryService(ts.repo, drafts.Nop{}, nil, metrics, logger)
	t.Cleanup(func() { _ = ts.discovery.Shutdown(context.Background()) })

	reports := services.NewReportService(ts.discovery, ts.renderer, metrics, logger)
	narration := services.NewNarrationService(ts.discovery, ts.narrator, "Spanish", metrics, logger)

	NewSessionsHandler(ts.discovery, logger).RegisterRoutes(ts.mux)
	NewReportHandler(reports, narration, logger).RegisterRoutes(ts.mux)
	NewAdminHandler(ts.authSvc, ts.discovery, logger).RegisterRoutes(ts.mux, auth.NewMiddleware(ts.authSvc, logger))

	return ts
}

// signIn makes the mock auth service accept every request.
func (ts *testServer) signIn() {
	claims := &auth.Claims{Email: ts.authSvc.session.Email}
	claims.Subject = ts.authSvc.session.AdminID
	ts.authSvc.claims = claims
}

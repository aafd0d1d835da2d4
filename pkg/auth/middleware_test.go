package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
)

// mockAuthService is a mock implementation of AuthService for testing.
type mockAuthService struct {
	AuthService
	claims      *Claims
	validateErr error
}

func (m *mockAuthService) ValidateRequest(r *http.Request) (*Claims, error) {
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return m.claims, nil
}

func TestMiddleware_RequireSession_Success(t *testing.T) {
	claims := &Claims{Email: "a@example.com"}
	claims.Subject = "admin-1"
	middleware := NewMiddleware(&mockAuthService{claims: claims}, zap.NewNop())

	var handlerCalled bool
	var ctxClaims *Claims

	handler := middleware.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		ctxClaims, _ = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/projects", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if !handlerCalled {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ctxClaims == nil || ctxClaims.Subject != "admin-1" {
		t.Error("expected claims to be set in context")
	}
}

func TestMiddleware_RequireSession_Unauthorized(t *testing.T) {
	middleware := NewMiddleware(&mockAuthService{validateErr: apperrors.ErrUnauthenticated}, zap.NewNop())

	var handlerCalled bool
	handler := middleware.RequireSession(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/projects", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if handlerCalled {
		t.Error("expected handler not to be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["error"] != "unauthorized" {
		t.Errorf("expected error 'unauthorized', got %q", body["error"])
	}
}

func TestGetClaims_Absent(t *testing.T) {
	if claims, ok := GetClaims(context.Background()); ok || claims != nil {
		t.Error("expected no claims in empty context")
	}
}

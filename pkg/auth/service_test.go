package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/testhelpers"
)

// mockAdminRepository is an in-memory AdminRepository keyed by lowercase email.
type mockAdminRepository struct {
	admins    map[string]*models.Admin
	getErr    error
	upsertErr error
}

func newMockAdminRepository() *mockAdminRepository {
	return &mockAdminRepository{admins: make(map[string]*models.Admin)}
}

func (m *mockAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	a, ok := m.admins[strings.ToLower(email)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return a, nil
}

func (m *mockAdminRepository) Upsert(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	key := strings.ToLower(email)
	a, ok := m.admins[key]
	if !ok {
		a = &models.Admin{ID: uuid.New(), Email: email, CreatedAt: time.Now()}
		m.admins[key] = a
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = time.Now()
	return a, nil
}

func newTestAuthService(t *testing.T, repo *mockAdminRepository) AuthService {
	t.Helper()
	signer, err := NewTokenSigner(testSecret, time.Hour)
	require.NoError(t, err)
	jar := NewCookieJar("test-session-secret", CookieSettings{}, time.Hour)
	return NewAuthService(repo, signer, jar, zap.NewNop())
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestAuthService_SignIn(t *testing.T) {
	repo := newMockAdminRepository()
	svc := newTestAuthService(t, repo)
	require.NoError(t, svc.Bootstrap(context.Background(), "Reviewer@Example.com", "s3cret"))

	session, err := svc.SignIn(context.Background(), Credentials{Email: " reviewer@example.com ", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "Reviewer@Example.com", session.Email)

	claims, err := svc.Validate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.AdminID, claims.Subject)
}

func TestAuthService_SignIn_Failures(t *testing.T) {
	repo := newMockAdminRepository()
	svc := newTestAuthService(t, repo)
	require.NoError(t, svc.Bootstrap(context.Background(), "reviewer@example.com", "s3cret"))

	tests := []struct {
		name  string
		creds Credentials
	}{
		{"wrong password", Credentials{Email: "reviewer@example.com", Password: "nope"}},
		{"unknown email", Credentials{Email: "ghost@example.com", Password: "s3cret"}},
		{"empty email", Credentials{Password: "s3cret"}},
		{"empty password", Credentials{Email: "reviewer@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.SignIn(context.Background(), tt.creds)
			assert.Nil(t, session)
			assert.ErrorIs(t, err, apperrors.ErrAuth)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthService_SignIn_StoreFailure(t *testing.T) {
	repo := newMockAdminRepository()
	repo.getErr = errors.New("connection refused")
	svc := newTestAuthService(t, repo)

	_, err := svc.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "x"})

	assert.ErrorIs(t, err, apperrors.ErrAuth)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Bootstrap(t *testing.T) {
	repo := newMockAdminRepository()
	svc := newTestAuthService(t, repo)

	require.NoError(t, svc.Bootstrap(context.Background(), "", "pw"))
	require.NoError(t, svc.Bootstrap(context.Background(), "a@example.com", ""))
	assert.Empty(t, repo.admins)

	require.NoError(t, svc.Bootstrap(context.Background(), "a@example.com", "first"))
	require.NoError(t, svc.Bootstrap(context.Background(), "a@example.com", "second"))
	require.Len(t, repo.admins, 1)

	_, err := svc.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "first"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "second"})
	assert.NoError(t, err)

	repo.upsertErr = errors.New("boom")
	assert.Error(t, svc.Bootstrap(context.Background(), "a@example.com", "third"))
}

func TestAuthService_ValidateRequest(t *testing.T) {
	svc := newTestAuthService(t, newMockAdminRepository())
	valid := testhelpers.GenerateTestJWT(testSecret, "admin-1", "a@example.com", time.Minute)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"bearer token", "Bearer " + valid, nil},
		{"missing header", "", ErrMissingAuthorization},
		{"wrong scheme", "Basic " + valid, ErrInvalidAuthFormat},
		{"invalid token", "Bearer garbage", apperrors.ErrAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/projects", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			claims, err := svc.ValidateRequest(req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "admin-1", claims.Subject)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		})
	}
}

func TestAuthService_PersistCurrentSessionSignOut(t *testing.T) {
	repo := newMockAdminRepository()
	svc := newTestAuthService(t, repo)
	require.NoError(t, svc.Bootstrap(context.Background(), "a@example.com", "pw"))

	anonymous := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	assert.Nil(t, svc.CurrentSession(anonymous))

	session, err := svc.SignIn(context.Background(), Credentials{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	loginRec := httptest.NewRecorder()
	require.NoError(t, svc.Persist(loginRec, httptest.NewRequest(http.MethodPost, "/api/admin/login", nil), session))
	cookie := loginRec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	req.AddCookie(cookie)
	current := svc.CurrentSession(req)
	require.NotNil(t, current)
	assert.Equal(t, session.AdminID, current.AdminID)
	assert.Equal(t, "a@example.com", current.Email)
	assert.Empty(t, current.Token)

	logoutRec := httptest.NewRecorder()
	require.NoError(t, svc.SignOut(logoutRec, req))
	assert.Less(t, logoutRec.Result().Cookies()[0].MaxAge, 0)
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-discovery/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-discovery/pkg/models"
	"github.com/ekaya-inc/ekaya-discovery/pkg/testhelpers"
)

const testSecret = "test-jwt-secret"

func testAdmin() *models.Admin {
	return &models.Admin{ID: uuid.New(), Email: "reviewer@example.com"}
}

func TestNewTokenSigner_RequiresSecret(t *testing.T) {
	_, err := NewTokenSigner("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestTokenSigner_IssueAndVerify(t *testing.T) {
	signer, err := NewTokenSigner(testSecret, time.Hour)
	require.NoError(t, err)
	admin := testAdmin()

	token, expires, err := signer.Issue(admin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID.String(), claims.Subject)
	assert.Equal(t, admin.Email, claims.Email)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestTokenSigner_AcceptsTestHelperTokens(t *testing.T) {
	signer, err := NewTokenSigner(testSecret, time.Hour)
	require.NoError(t, err)

	token := testhelpers.GenerateTestJWT(testSecret, "admin-1", "a@example.com", time.Minute)

	claims, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
}

func TestTokenSigner_Rejects(t *testing.T) {
	signer, err := NewTokenSigner(testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", testhelpers.GenerateTestJWT(testSecret, "admin-1", "a@example.com", -time.Minute)},
		{"wrong secret", testhelpers.GenerateTestJWT("other-secret", "admin-1", "a@example.com", time.Minute)},
		{"no subject", testhelpers.GenerateTestJWT(testSecret, "", "a@example.com", time.Minute)},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.Verify(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrAuth))
		})
	}
}

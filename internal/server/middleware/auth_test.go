package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticClaims struct {
	userID uuid.UUID
}

func (c staticClaims) GetUserID() uuid.UUID { return c.userID }

type fakeValidator struct {
	userID uuid.UUID
	err    error
	seen   string
}

func (f *fakeValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	f.seen = tokenString
	if f.err != nil {
		return nil, f.err
	}
	return staticClaims{userID: f.userID}, nil
}

func authedHandler(t *testing.T, wantUser uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserID(r)
		require.NoError(t, err)
		assert.Equal(t, wantUser, userID)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	userID := uuid.New()
	validator := &fakeValidator{userID: userID}
	handler := Auth(validator)(authedHandler(t, userID))

	for _, header := range []string{"Bearer token123", "bearer token123", "BEARER token123"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, "header %q", header)
		assert.Equal(t, "token123", validator.seen)
	}
}

func TestAuthRejectsMalformedHeaders(t *testing.T) {
	validator := &fakeValidator{userID: uuid.New()}
	handler := Auth(validator)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run without valid auth")
	}))

	for _, header := range []string{"", "Bearer", "token123", "Basic dXNlcjpwYXNz", "Bearer a b"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	validator := &fakeValidator{err: fmt.Errorf("signature mismatch")}
	handler := Auth(validator)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUserID(req)
	assert.Error(t, err)
}

func TestWithUserID(t *testing.T) {
	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), userID))

	got, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

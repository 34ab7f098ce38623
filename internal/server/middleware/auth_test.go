package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]uuid.UUID
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{
		validTokens: make(map[string]uuid.UUID),
	}
}

func (v *testTokenValidator) addValidToken(token string, userID uuid.UUID) {
	v.validTokens[token] = userID
}

func (v *testTokenValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}
	userID, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &testClaims{userID: userID}, nil
}

type testClaims struct {
	userID uuid.UUID
}

func (c *testClaims) GetUserID() uuid.UUID {
	return c.userID
}

// serve runs one request through Identity and reports whether the handler ran
// and which user it saw.
func serve(validator TokenValidator, authHeader string) (*httptest.ResponseRecorder, bool, string) {
	handlerCalled := false
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		seen = UserIDString(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	Identity(validator)(handler).ServeHTTP(w, req)
	return w, handlerCalled, seen
}

func TestIdentity_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	userID := uuid.New()
	validator.addValidToken("valid-test-token-123", userID)

	w, called, seen := serve(validator, "Bearer valid-test-token-123")

	assert.True(t, called, "handler should be called")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), seen)
}

func TestIdentity_MissingHeaderIsAnonymous(t *testing.T) {
	w, called, seen := serve(newTestTokenValidator(), "")

	assert.True(t, called, "anonymous requests should reach the handler")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, seen)
}

func TestIdentity_NilValidator(t *testing.T) {
	w, called, _ := serve(nil, "")
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)

	w, called, _ = serve(nil, "Bearer anything")
	assert.False(t, called, "bearer tokens cannot be accepted without a validator")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdentity_Rejected(t *testing.T) {
	validator := newTestTokenValidator()
	validator.addValidToken("token123", uuid.New())

	tests := []struct {
		name       string
		authHeader string
	}{
		{name: "missing Bearer prefix", authHeader: "token123"},
		{name: "only Bearer", authHeader: "Bearer"},
		{name: "basic scheme", authHeader: "Basic token123"},
		{name: "extra fields", authHeader: "Bearer token123 extra"},
		{name: "unknown token", authHeader: "Bearer not.a.valid.jwt.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called, _ := serve(validator, tt.authHeader)

			assert.False(t, called, "handler should not be called")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Unauthorized")
		})
	}
}

func TestIdentity_CaseInsensitiveScheme(t *testing.T) {
	validator := newTestTokenValidator()
	userID := uuid.New()
	validator.addValidToken("token123", userID)

	for _, header := range []string{"bearer token123", "BeArEr token123", "Bearer  token123"} {
		t.Run(header, func(t *testing.T) {
			w, called, seen := serve(validator, header)
			assert.True(t, called)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, userID.String(), seen)
		})
	}
}

func TestGetUserID_Success(t *testing.T) {
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(WithUserID(req.Context(), userID))

	extractedUserID, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, userID, extractedUserID)
}

func TestGetUserID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	userID, err := GetUserID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)
	assert.Contains(t, err.Error(), "user ID not found")
	assert.Empty(t, UserIDString(req))
}

func TestGetUserID_InvalidType(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), userIDKey, "not-a-uuid"))

	userID, err := GetUserID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)
}

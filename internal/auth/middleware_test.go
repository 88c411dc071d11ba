package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamplan/planboard/internal/roles"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *Principal) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen Principal
	router := gin.New()
	router.GET("/protected", RequireAuth(testSecret), func(c *gin.Context) {
		principal, ok := FromContext(c)
		require.True(t, ok)
		seen = principal
		c.Status(http.StatusNoContent)
	})
	return router, &seen
}

func TestRequireAuthMissingToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthWrongSecret(t *testing.T) {
	router, _ := newTestRouter(t)

	token, err := MintToken("other-secret", "7", roles.Admin, time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthPopulatesPrincipal(t *testing.T) {
	router, seen := newTestRouter(t)

	token, err := MintToken(testSecret, "42", roles.ContentManager, time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "42", seen.Sub)
	assert.Equal(t, roles.ContentManager, seen.Role)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	router, _ := newTestRouter(t)

	token, err := MintToken(testSecret, "42", roles.Admin, -time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

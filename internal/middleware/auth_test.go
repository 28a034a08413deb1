package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotworks/electoral-api/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiryHours = 1
	return cfg
}

func authRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/me", RequireAuth(cfg), func(c *gin.Context) {
		id, ok := VoterID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"voter_id": id.String(), "role": c.GetString(ContextRole)})
	})
	router.GET("/admin", RequireAuth(cfg), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router
}

func TestRequireAuthAcceptsIssuedToken(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg)
	voterID := uuid.New()

	token, err := IssueToken(cfg, voterID, "voter")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), voterID.String())
}

func TestRequireAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	router := authRouter(testConfig())

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-token"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestRequireAuthRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg)

	otherCfg := testConfig()
	otherCfg.JWT.Secret = "another-secret"
	token, err := IssueToken(otherCfg, uuid.New(), "voter")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	cfg := testConfig()
	router := authRouter(cfg)

	adminToken, err := IssueToken(cfg, uuid.New(), "admin")
	require.NoError(t, err)
	voterToken, err := IssueToken(cfg, uuid.New(), "voter")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+voterToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

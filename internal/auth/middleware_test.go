package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	svc, _ := setupService(t)
	m := NewMiddleware(svc)

	router := gin.New()
	router.Use(m.Handler())
	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/api/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "login": GetLogin(c), "admin": IsAdmin(c)})
	})
	router.GET("/api/admin", m.RequireRole(entities.UserRoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "admin")
	})
	return router, svc
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware_PublicPathNeedsNoToken(t *testing.T) {
	router, _ := setupRouter(t)

	rr := doRequest(router, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddleware_RejectsMissingAndInvalidTokens(t *testing.T) {
	router, _ := setupRouter(t)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer not-a-jwt"} {
		rr := doRequest(router, "/api/me", header)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, header)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	}
}

func TestMiddleware_ValidTokenSetsUser(t *testing.T) {
	router, svc := setupRouter(t)
	user, err := svc.Register(context.Background(), RegisterInput{Login: "alice", Password: "password123"})
	require.NoError(t, err)
	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	rr := doRequest(router, "/api/me", "bearer "+token.AccessToken)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"login":"alice"`)
	assert.Contains(t, rr.Body.String(), `"admin":true`)
}

func TestMiddleware_RequireRole(t *testing.T) {
	router, svc := setupRouter(t)
	ctx := context.Background()
	admin, err := svc.Register(ctx, RegisterInput{Login: "admin", Password: "password123"})
	require.NoError(t, err)
	member, err := svc.Register(ctx, RegisterInput{Login: "member", Password: "password123"})
	require.NoError(t, err)

	adminToken, err := svc.IssueToken(admin)
	require.NoError(t, err)
	memberToken, err := svc.IssueToken(member)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doRequest(router, "/api/admin", "Bearer "+adminToken.AccessToken).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(router, "/api/admin", "Bearer "+memberToken.AccessToken).Code)
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rr := doRequest(router, "/x", "")

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

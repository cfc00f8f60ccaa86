package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamemarket-api-io/api/internal/auth"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/permissions"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUsers map[primitive.ObjectID]*models.User

func (f fakeUsers) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func testJWT() *auth.JWTManager {
	return auth.NewJWTManager(util.JWTConfig{
		Secret:          "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func setupAuthRouter(users fakeUsers, blacklist auth.TokenBlacklist, sessions auth.SessionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(testJWT(), blacklist, sessions, users))
	r.GET("/whoami", func(c *gin.Context) {
		actor := auth.CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "authenticated": actor.Authenticated})
	})
	r.DELETE("/admin", Require(permissions.AdminOrReadOnly, permissions.Delete), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func TestAuthenticateAnonymous(t *testing.T) {
	r := setupAuthRouter(fakeUsers{}, auth.NewMemoryBlacklist(), nil)

	rec := do(r, http.MethodGet, "/whoami", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	rec = do(r, http.MethodDelete, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateBearer(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "buyer@example.com", IsActive: true}
	r := setupAuthRouter(fakeUsers{user.ID: user}, auth.NewMemoryBlacklist(), nil)

	token, err := testJWT().GenerateAccess(user)
	require.NoError(t, err)

	rec := do(r, http.MethodGet, "/whoami", bearer(token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.ID.Hex())

	rec = do(r, http.MethodDelete, "/admin", bearer(token))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticateSuperuser(t *testing.T) {
	admin := &models.User{ID: primitive.NewObjectID(), IsActive: true, IsSuperuser: true}
	r := setupAuthRouter(fakeUsers{admin.ID: admin}, auth.NewMemoryBlacklist(), nil)

	token, err := testJWT().GenerateAccess(admin)
	require.NoError(t, err)

	rec := do(r, http.MethodDelete, "/admin", bearer(token))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), IsActive: true}
	inactive := &models.User{ID: primitive.NewObjectID()}
	blacklist := auth.NewMemoryBlacklist()
	r := setupAuthRouter(fakeUsers{user.ID: user, inactive.ID: inactive}, blacklist, nil)

	revoked, err := testJWT().GenerateAccess(user)
	require.NoError(t, err)
	require.NoError(t, blacklist.Revoke(context.Background(), revoked, time.Minute))

	refresh, err := testJWT().GenerateRefresh(user)
	require.NoError(t, err)
	inactiveToken, err := testJWT().GenerateAccess(inactive)
	require.NoError(t, err)
	unknownToken, err := testJWT().GenerateAccess(&models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	cases := map[string]func(*http.Request){
		"garbage":  bearer("not-a-jwt"),
		"scheme":   func(req *http.Request) { req.Header.Set("Authorization", "Token abc") },
		"revoked":  bearer(revoked),
		"refresh":  bearer(refresh),
		"inactive": bearer(inactiveToken),
		"unknown":  bearer(unknownToken),
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(r, http.MethodGet, "/whoami", mutate)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthenticateSessionCookie(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), IsActive: true}
	sessions := auth.NewMemorySessionStore()
	key, err := sessions.Create(context.Background(), user.ID, user.Email)
	require.NoError(t, err)

	r := setupAuthRouter(fakeUsers{user.ID: user}, auth.NewMemoryBlacklist(), sessions)

	rec := do(r, http.MethodGet, "/whoami", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: auth.SESSION_NAME, Value: key})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.ID.Hex())

	rec = do(r, http.MethodGet, "/whoami", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: auth.SESSION_NAME, Value: "stale"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
}

func TestRateLimiterInMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(nil, 2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/ping", nil).Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := do(r, http.MethodOptions, "/ping", func(req *http.Request) {
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Metrics(), RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })
	r.GET("/metrics", MetricsHandler())

	rec := do(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, rec.Header().Get(RequestIDHeader), rec.Body.String())

	rec = do(r, http.MethodGet, "/ping", func(req *http.Request) { req.Header.Set(RequestIDHeader, "abc") })
	assert.Equal(t, "abc", rec.Body.String())

	rec = do(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gamemarket_http_requests_total{method="GET",path="/ping",status="200"}`)
}

func TestPermissionStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, PermissionStatus(permissions.ErrNotAuthenticated))
	assert.Equal(t, http.StatusForbidden, PermissionStatus(permissions.ErrPermissionDenied))
}

func TestRequireForwardsAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen []permissions.Action
	recording := func(_ permissions.Actor, action permissions.Action, _ permissions.Resource) error {
		seen = append(seen, action)
		if action == permissions.Delete {
			return permissions.ErrPermissionDenied
		}
		return nil
	}

	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r.POST("/things", Require(recording, permissions.Create), ok)
	r.PUT("/things/1", Require(recording, permissions.Update), ok)
	r.PATCH("/things/1", Require(recording, permissions.Update), ok)
	r.DELETE("/things/1", Require(recording, permissions.Delete), ok)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/things", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPut, "/things/1", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPatch, "/things/1", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/things/1", nil).Code)

	assert.Equal(t, []permissions.Action{permissions.Create, permissions.Update, permissions.Update, permissions.Delete}, seen)
}

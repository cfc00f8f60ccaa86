package routers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gamemarket-api-io/api/internal/container"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestRoutesWithoutDatabaseAccess(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("routing", func(mt *mtest.T) {
		cfg := util.Config{
			Server: util.ServerConfig{BaseURL: "http://testserver"},
			JWT:    util.JWTConfig{Secret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour},
		}
		sc := container.NewServiceContainer(container.Deps{DB: mt.DB, Config: cfg})
		router := InitRoute(sc, Options{RateLimit: 1000})

		cases := []struct {
			name   string
			method string
			path   string
			token  string
			status int
		}{
			{"ping", http.MethodGet, "/ping", "", http.StatusOK},
			{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
			{"api root", http.MethodGet, "/api/v1", "", http.StatusOK},
			{"anonymous category replace", http.MethodPut, "/api/v1/products/categories/weapons", "", http.StatusUnauthorized},
			{"anonymous category patch", http.MethodPatch, "/api/v1/products/categories/weapons", "", http.StatusUnauthorized},
			{"anonymous category delete", http.MethodDelete, "/api/v1/products/categories/weapons", "", http.StatusUnauthorized},
			{"anonymous game create", http.MethodPost, "/api/v1/products/games", "", http.StatusUnauthorized},
			{"anonymous game replace", http.MethodPut, "/api/v1/products/games/halo", "", http.StatusUnauthorized},
			{"anonymous game patch", http.MethodPatch, "/api/v1/products/games/halo", "", http.StatusUnauthorized},
			{"anonymous game delete", http.MethodDelete, "/api/v1/products/games/halo", "", http.StatusUnauthorized},
			{"token without body", http.MethodPost, "/api/token", "", http.StatusBadRequest},
			{"token refresh without body", http.MethodPost, "/api/token/refresh", "", http.StatusBadRequest},
			{"token verify without body", http.MethodPost, "/api/token/verify", "", http.StatusBadRequest},
			{"anonymous item create", http.MethodPost, "/api/v1/products/items", "", http.StatusUnauthorized},
			{"anonymous attribute delete", http.MethodDelete, "/api/v1/products/item-attributes/abc", "", http.StatusUnauthorized},
			{"anonymous user list", http.MethodGet, "/api/v1/accounts/users", "", http.StatusUnauthorized},
			{"anonymous subscription", http.MethodGet, "/api/v1/accounts/users/abc/subscription", "", http.StatusUnauthorized},
			{"bad bearer", http.MethodGet, "/api/v1", "not-a-token", http.StatusUnauthorized},
			{"items have no patch", http.MethodPatch, "/api/v1/products/items/abc", "", http.StatusNotFound},
		}

		for _, tc := range cases {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(mt, tc.status, rec.Code, tc.name)
		}
	})

	mt.Run("token routes have no trailing slash", func(mt *mtest.T) {
		cfg := util.Config{JWT: util.JWTConfig{Secret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour}}
		sc := container.NewServiceContainer(container.Deps{DB: mt.DB, Config: cfg})
		router := InitRoute(sc, Options{RateLimit: 1000})

		token, err := sc.JWT.GenerateAccess(&models.User{ID: primitive.NewObjectID(), Email: "player@example.com"})
		require.NoError(mt, err)
		body := `{"token":"` + token + `"}`

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/token/verify", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		assert.Equal(mt, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/api/token/verify/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		assert.Equal(mt, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(mt, "/api/token/verify", rec.Header().Get("Location"))
	})

	mt.Run("api root links", func(mt *mtest.T) {
		cfg := util.Config{Server: util.ServerConfig{BaseURL: "http://testserver"}}
		router := InitRoute(container.NewServiceContainer(container.Deps{DB: mt.DB, Config: cfg}), Options{RateLimit: 1000})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1", nil))
		require.Equal(mt, http.StatusOK, rec.Code)

		var body struct {
			Data map[string]string `json:"data"`
		}
		require.NoError(mt, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(mt, "http://testserver/api/v1/products/categories", body.Data["categories"])
		assert.Equal(mt, "http://testserver/auth/registration", body.Data["register"])
	})
}

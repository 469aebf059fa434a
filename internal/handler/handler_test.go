package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"cookbook/backend/internal/auth"
	"cookbook/backend/internal/database"
	"cookbook/backend/internal/hub"
	"cookbook/backend/internal/repository"
	"cookbook/backend/internal/service"
	"cookbook/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	svc    *service.Service
	tokens *jwt.Issuer
	hub    *hub.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	h := hub.NewHub()
	opts := service.DefaultOptions()
	opts.BcryptCost = bcrypt.MinCost
	svc := service.New(repository.New(db), opts, h)
	tokens := jwt.NewIssuer("test-secret", time.Hour)

	router := NewRouter(New(svc, tokens, h), RouterConfig{
		Resolver:       auth.TokenResolver{Tokens: tokens, Users: svc},
		RequestTimeout: 5 * time.Second,
	})
	return &testServer{t: t, router: router, svc: svc, tokens: tokens, hub: h}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates a user through the API and returns its id and token.
func (s *testServer) register(name string) (uint, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": name, "password": "password123"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var resp TokenResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	id, err := s.tokens.ParseToken(resp.Token)
	require.NoError(s.t, err)
	return id, resp.Token
}

func (s *testServer) createRecipe(token, name string) uint {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":        name,
		"country":     "Peru",
		"ingredients": []string{"fish", "lime"},
		"preparation": "marinate",
	})
	require.Equal(s.t, http.StatusSeeOther, w.Code, w.Body.String())

	loc := w.Header().Get("Location")
	id, err := strconv.ParseUint(loc[len("/api/v1/recipes/"):], 10, 32)
	require.NoError(s.t, err)
	return uint(id)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	s.register("alice")

	t.Run("duplicate", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "alice", "password": "password123"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "bob", "password": "short"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "password123"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decode(t, w)["token"])

		w = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "wrong-pass"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("protected routes need a token", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/user", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetMe(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("alice")

	w := s.do(http.MethodGet, "/api/v1/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["auth"])
	assert.Equal(t, "You are permitted.", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password_hash")
}

func TestRecipeRoutes(t *testing.T) {
	s := newTestServer(t)
	_, bobToken := s.register("bob")
	_, eveToken := s.register("eve")
	id := s.createRecipe(bobToken, "ceviche")
	path := recipeLocation(id)

	t.Run("get", func(t *testing.T) {
		w := s.do(http.MethodGet, path, eveToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["favourite"])
		recipe := body["recipe"].(map[string]any)
		assert.Equal(t, "ceviche", recipe["name"])
		assert.Equal(t, "bob", recipe["creator"].(map[string]any)["username"])
	})

	t.Run("missing recipe reads as null", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/recipes/999", eveToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decode(t, w)["recipe"])
	})

	t.Run("create requires name", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/recipes", bobToken, gin.H{"country": "Peru"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("non-owner cannot update or delete", func(t *testing.T) {
		w := s.do(http.MethodPut, path, eveToken, gin.H{"name": "stolen"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"message":"You are not allowed to update this recipe."}`, w.Body.String())

		w = s.do(http.MethodDelete, path, eveToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner updates", func(t *testing.T) {
		w := s.do(http.MethodPut, path, bobToken, gin.H{"name": "ceviche mixto", "country": "Peru"})
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, path, w.Header().Get("Location"))

		w = s.do(http.MethodGet, path, bobToken, nil)
		assert.Equal(t, "ceviche mixto", decode(t, w)["recipe"].(map[string]any)["name"])
	})

	t.Run("update missing recipe", func(t *testing.T) {
		w := s.do(http.MethodPut, "/api/v1/recipes/999", bobToken, gin.H{"name": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFavouriteAndDeleteRecipe(t *testing.T) {
	s := newTestServer(t)
	bobID, bobToken := s.register("bob")
	_, aliceToken := s.register("alice")
	id := s.createRecipe(bobToken, "lomo saltado")
	path := recipeLocation(id)

	client := make(hub.Client, 4)
	s.hub.Subscribe(bobID, client)

	w := s.do(http.MethodPost, path+"/favourite", aliceToken, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, path, w.Header().Get("Location"))
	assert.Len(t, client, 1)

	w = s.do(http.MethodGet, path, aliceToken, nil)
	assert.Equal(t, true, decode(t, w)["favourite"])

	w = s.do(http.MethodDelete, path, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lomo saltado", decode(t, w)["name"])

	w = s.do(http.MethodGet, "/api/v1/user", aliceToken, nil)
	user := decode(t, w)["user"].(map[string]any)
	assert.Empty(t, user["favourites"])

	w = s.do(http.MethodDelete, path, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/v1/recipes/999/favourite", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Recipe not found"}`, w.Body.String())
}

func TestFollow(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register("alice")
	bobID, _ := s.register("bob")
	path := "/api/v1/users/" + strconv.Itoa(int(bobID))

	w := s.do(http.MethodPost, path+"/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["following"])
	assert.Equal(t, "bob", body["user"].(map[string]any)["username"])

	w = s.do(http.MethodGet, path, aliceToken, nil)
	assert.Equal(t, true, decode(t, w)["followed"])

	w = s.do(http.MethodPost, path+"/follow", aliceToken, nil)
	assert.Equal(t, false, decode(t, w)["following"])

	w = s.do(http.MethodPost, "/api/v1/users/999/follow", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/users/abc/follow", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register("alice")
	_, bobToken := s.register("bob")
	id := s.createRecipe(bobToken, "anticuchos")

	tests := []struct {
		name    string
		path    string
		token   string
		status  int
		message string
	}{
		{"self", "/api/v1/users/search/alice", aliceToken, http.StatusOK, "Do not search your profile."},
		{"unknown user", "/api/v1/users/search/zed", aliceToken, http.StatusOK, "This user does not exist."},
		{"own recipe", "/api/v1/recipes/search/anticuchos", bobToken, http.StatusOK, "Do not search your recipes."},
		{"unknown recipe", "/api/v1/recipes/search/nothing", aliceToken, http.StatusOK, "Recipe does not exist here."},
		{"other recipe", "/api/v1/recipes/search/anticuchos", aliceToken, http.StatusSeeOther, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, tt.path, tt.token, nil)
			require.Equal(t, tt.status, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decode(t, w)["message"])
			} else {
				assert.Equal(t, recipeLocation(id), w.Header().Get("Location"))
			}
		})
	}

	t.Run("other user", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/users/search/bob", aliceToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		user := decode(t, w)["user"].(map[string]any)
		assert.Len(t, user["recipes"], 1)
	})
}

func TestUpdateAndDeleteMe(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.register("alice")
	bobID, bobToken := s.register("bob")
	s.createRecipe(bobToken, "causa")

	w := s.do(http.MethodPost, "/api/v1/users/"+strconv.Itoa(int(bobID))+"/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("taken username", func(t *testing.T) {
		w := s.do(http.MethodPut, "/api/v1/user", aliceToken, gin.H{"username": "bob", "password": "password123"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := s.do(http.MethodPut, "/api/v1/user", aliceToken, gin.H{"username": "alicia"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update", func(t *testing.T) {
		w := s.do(http.MethodPut, "/api/v1/user", aliceToken, gin.H{"username": "alicia", "password": "password456"})
		require.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/api/v1/user", w.Header().Get("Location"))
	})

	t.Run("delete cascades", func(t *testing.T) {
		stream := make(hub.Client, 1)
		s.hub.Subscribe(bobID, stream)

		w := s.do(http.MethodDelete, "/api/v1/user", bobToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"auth":false,"token":null,"message":"User has been deleted successfully."}`, w.Body.String())

		_, open := <-stream
		assert.False(t, open)
		assert.Equal(t, 0, s.hub.Subscribers(bobID))

		w = s.do(http.MethodGet, "/api/v1/user", bobToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = s.do(http.MethodGet, "/api/v1/user", aliceToken, nil)
		user := decode(t, w)["user"].(map[string]any)
		assert.Equal(t, "alicia", user["username"])
		assert.Empty(t, user["following"])

		w = s.do(http.MethodGet, "/api/v1/recipes/search/causa", aliceToken, nil)
		assert.Equal(t, "Recipe does not exist here.", decode(t, w)["message"])
	})
}

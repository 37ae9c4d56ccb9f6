package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forkful/backend/config"
	"github.com/forkful/backend/internal/api"
	"github.com/forkful/backend/internal/router"
	"github.com/forkful/backend/internal/service"
	"github.com/forkful/backend/internal/testhelpers"
)

type testApp struct {
	engine *gin.Engine
	db     *gorm.DB
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)

	authService := service.NewAuthService(db, "test-secret")
	userService := service.NewUserService(db)
	catalogService := service.NewCatalogService(db)
	recipeService := service.NewRecipeService(db)
	edgeService := service.NewEdgeService(db)
	shoppingListService := service.NewShoppingListService(db)
	imageService := service.NewImageService(&service.LocalStore{
		Dir:     t.TempDir(),
		BaseURL: "/media",
	})

	cfg := &config.Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		MediaDir:       t.TempDir(),
		MediaBaseURL:   "/media",
	}

	engine := router.SetupRouter(cfg, db, router.Handlers{
		Auth:    api.NewAuthHandler(authService),
		User:    api.NewUserHandler(userService, edgeService, authService),
		Catalog: api.NewCatalogHandler(catalogService),
		Recipe: api.NewRecipeHandler(
			recipeService, edgeService, shoppingListService,
			imageService, authService, nil,
		),
	})
	return &testApp{engine: engine, db: db}
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) register(t *testing.T, name string) string {
	t.Helper()

	w := a.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    name + "@example.com",
		"username": name,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestAuthEndpoints(t *testing.T) {
	app := setupTestApp(t)

	token := app.register(t, "alice")
	assert.NotEmpty(t, token)

	// Duplicate registration is a client error.
	w := app.request(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecipeLifecycle(t *testing.T) {
	app := setupTestApp(t)
	token := app.register(t, "alice")

	flour := testhelpers.CreateTestIngredient(t, app.db, "flour", "g")
	breakfast := testhelpers.CreateTestTag(t, app.db, "breakfast")

	// Anonymous creation is rejected.
	w := app.request(t, http.MethodPost, "/api/v1/recipes", "", gin.H{"name": "Nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.request(t, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"ingredients":  []gin.H{{"id": flour.ID, "amount": 200}},
		"tags":         []string{breakfast.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Recipe struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			IsFavorited bool   `json:"is_favorited"`
			Author      struct {
				Username string `json:"username"`
			} `json:"author"`
		} `json:"recipe"`
	}
	decodeJSON(t, w, &created)
	assert.Equal(t, "Pancakes", created.Recipe.Name)
	assert.Equal(t, "alice", created.Recipe.Author.Username)
	assert.False(t, created.Recipe.IsFavorited)
	recipeID := created.Recipe.ID

	// Invalid payloads map to 400.
	w = app.request(t, http.MethodPost, "/api/v1/recipes", token, gin.H{
		"name":         "Empty",
		"cooking_time": 20,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Anonymous read works.
	w = app.request(t, http.MethodGet, "/api/v1/recipes/"+recipeID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.request(t, http.MethodPatch, "/api/v1/recipes/"+recipeID, token, gin.H{
		"name":         "Thin Pancakes",
		"cooking_time": 25,
		"ingredients":  []gin.H{{"id": flour.ID, "amount": 150}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Another user cannot edit or delete.
	other := app.register(t, "bob")
	w = app.request(t, http.MethodPatch, "/api/v1/recipes/"+recipeID, other, gin.H{
		"name":         "Hijacked",
		"cooking_time": 5,
		"ingredients":  []gin.H{{"id": flour.ID, "amount": 1}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.request(t, http.MethodDelete, "/api/v1/recipes/"+recipeID, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.request(t, http.MethodDelete, "/api/v1/recipes/"+recipeID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = app.request(t, http.MethodGet, "/api/v1/recipes/"+recipeID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoriteAndCartEndpoints(t *testing.T) {
	app := setupTestApp(t)
	alice := app.register(t, "alice")
	bob := app.register(t, "bob")

	flour := testhelpers.CreateTestIngredient(t, app.db, "flour", "g")
	w := app.request(t, http.MethodPost, "/api/v1/recipes", bob, gin.H{
		"name":         "Toast",
		"cooking_time": 5,
		"ingredients":  []gin.H{{"id": flour.ID, "amount": 50}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Recipe struct {
			ID string `json:"id"`
		} `json:"recipe"`
	}
	decodeJSON(t, w, &created)
	recipeID := created.Recipe.ID

	for _, sub := range []string{"favorite", "shopping_cart"} {
		path := fmt.Sprintf("/api/v1/recipes/%s/%s", recipeID, sub)

		w = app.request(t, http.MethodPost, path, alice, nil)
		assert.Equal(t, http.StatusCreated, w.Code, sub)

		// Adding twice is a 400.
		w = app.request(t, http.MethodPost, path, alice, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, sub)

		w = app.request(t, http.MethodDelete, path, alice, nil)
		assert.Equal(t, http.StatusNoContent, w.Code, sub)

		// Removing an absent edge is a 404.
		w = app.request(t, http.MethodDelete, path, alice, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, sub)
	}
}

func TestComputedFlagsOnRecipeView(t *testing.T) {
	app := setupTestApp(t)
	alice := app.register(t, "alice")
	bob := app.register(t, "bob")

	flour := testhelpers.CreateTestIngredient(t, app.db, "flour", "g")
	w := app.request(t, http.MethodPost, "/api/v1/recipes", bob, gin.H{
		"name":         "Toast",
		"cooking_time": 5,
		"ingredients":  []gin.H{{"id": flour.ID, "amount": 50}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Recipe struct {
			ID string `json:"id"`
		} `json:"recipe"`
	}
	decodeJSON(t, w, &created)
	recipeID := created.Recipe.ID

	w = app.request(t, http.MethodPost, "/api/v1/recipes/"+recipeID+"/favorite", alice, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var view struct {
		IsFavorited      bool `json:"is_favorited"`
		IsInShoppingCart bool `json:"is_in_shopping_cart"`
	}

	w = app.request(t, http.MethodGet, "/api/v1/recipes/"+recipeID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &view)
	assert.True(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)

	// Anonymous viewers always see false.
	w = app.request(t, http.MethodGet, "/api/v1/recipes/"+recipeID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &view)
	assert.False(t, view.IsFavorited)
}

func TestSubscriptionEndpoints(t *testing.T) {
	app := setupTestApp(t)
	alice := app.register(t, "alice")
	app.register(t, "bob")

	var bobID string
	{
		w := app.request(t, http.MethodGet, "/api/v1/users", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Users []struct {
				ID       string `json:"id"`
				Username string `json:"username"`
			} `json:"users"`
		}
		decodeJSON(t, w, &resp)
		for _, u := range resp.Users {
			if u.Username == "bob" {
				bobID = u.ID
			}
		}
		require.NotEmpty(t, bobID)
	}

	var aliceID string
	{
		w := app.request(t, http.MethodGet, "/api/v1/users/me", alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var me struct {
			ID string `json:"id"`
		}
		decodeJSON(t, w, &me)
		aliceID = me.ID
	}

	// Following yourself is a client error.
	w := app.request(t, http.MethodPost, "/api/v1/users/"+aliceID+"/subscribe", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.request(t, http.MethodPost, "/api/v1/users/"+bobID+"/subscribe", alice, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.request(t, http.MethodPost, "/api/v1/users/"+bobID+"/subscribe", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.request(t, http.MethodGet, "/api/v1/users/subscriptions", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var subs struct {
		Subscriptions []struct {
			Username     string `json:"username"`
			IsSubscribed bool   `json:"is_subscribed"`
		} `json:"subscriptions"`
	}
	decodeJSON(t, w, &subs)
	require.Len(t, subs.Subscriptions, 1)
	assert.Equal(t, "bob", subs.Subscriptions[0].Username)
	assert.True(t, subs.Subscriptions[0].IsSubscribed)

	w = app.request(t, http.MethodDelete, "/api/v1/users/"+bobID+"/subscribe", alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = app.request(t, http.MethodDelete, "/api/v1/users/"+bobID+"/subscribe", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadShoppingCart(t *testing.T) {
	app := setupTestApp(t)
	alice := app.register(t, "alice")

	egg := testhelpers.CreateTestIngredient(t, app.db, "egg", "pcs")
	w := app.request(t, http.MethodPost, "/api/v1/recipes", alice, gin.H{
		"name":         "Omelette",
		"cooking_time": 10,
		"ingredients":  []gin.H{{"id": egg.ID, "amount": 3}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Recipe struct {
			ID string `json:"id"`
		} `json:"recipe"`
	}
	decodeJSON(t, w, &created)

	w = app.request(t, http.MethodPost, "/api/v1/recipes/"+created.Recipe.ID+"/shopping_cart", alice, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shopping_list.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	// The download needs authentication.
	w = app.request(t, http.MethodGet, "/api/v1/recipes/download_shopping_cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(t)
	w := app.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

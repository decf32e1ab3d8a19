package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/menuwise/backend/config"
	"github.com/pageza/menuwise/backend/internal/testhelpers"
	"github.com/pageza/menuwise/backend/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:        config.Test,
		ServerHost:         "localhost",
		ServerPort:         "8080",
		JWTSecret:          "test-secret",
		CORSAllowedOrigins: []string{"*"},
		AI:                 config.AIConfig{APIURL: "http://127.0.0.1:1/chat"},
	}
}

func serve(t *testing.T, h http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.NewSQLiteDB(t)
	srv := New(testConfig(), db, nil, nil, nil)

	w := serve(t, srv.Handler(), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(t, srv.Handler(), http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "menuwise_http_requests_total")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = serve(t, srv.Handler(), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRegisterAndSetPreferences(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(testConfig(), testhelpers.NewSQLiteDB(t), nil, nil, nil)
	h := srv.Handler()

	w := serve(t, h, http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "correct-horse",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var auth types.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)

	w = serve(t, h, http.MethodPut, "/api/v1/preferences", map[string]interface{}{
		"allergies":         []string{"Peanuts"},
		"flavorPreferences": map[string]int{"Sweet": 8, "Bitter": 42},
	}, auth.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var doc types.PreferenceDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, []string{"Peanuts"}, doc.Allergies)
	assert.Equal(t, map[string]int{"Sweet": 8}, doc.FlavorPreferences)

	w = serve(t, h, http.MethodGet, "/api/v1/recommendations/history", nil, auth.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCatalogIsPublic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(testConfig(), testhelpers.NewSQLiteDB(t), nil, nil, nil)

	w := serve(t, srv.Handler(), http.MethodGet, "/api/v1/constraint-types", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var cts []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cts))
	assert.NotEmpty(t, cts)

	w = serve(t, srv.Handler(), http.MethodPost, "/api/v1/dishes", map[string]string{"name": "Ramen"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuestRecommendationNeedsMenuText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := New(testConfig(), testhelpers.NewSQLiteDB(t), nil, nil, nil)

	w := serve(t, srv.Handler(), http.MethodPost, "/api/v1/recommendations", map[string]string{"menuText": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package lexicon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipe-canvas/config"
)

func testClient(baseURL, apiKey string) *Client {
	cfg := &config.Config{LexiconBaseURL: baseURL, LexiconAPIKey: apiKey}
	return NewClient(cfg, zap.NewNop())
}

func TestEntry(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-KEY")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 7, "lemma": "bake", "gloss": "prepare in an oven"}`))
	}))
	defer server.Close()

	entry, err := testClient(server.URL, "secret").Entry(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "/entries/7", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, uint(7), entry.ID)
	assert.Equal(t, "bake", entry.Lemma)
}

func TestRecipes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/entries/7/recipes", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 1, "label": "default"}, {"id": 2}]`))
	}))
	defer server.Close()

	recipes, err := testClient(server.URL, "").Recipes(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "default", recipes[0].Label)
}

func TestRoleTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/role-types", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"label": "Agent", "code": "AGT", "generic_description": "the doer"}]`))
	}))
	defer server.Close()

	types, err := testClient(server.URL, "").RoleTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "Agent", types[0].Label)
}

func TestGetJSONErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := testClient(server.URL, "").Entry(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestGetJSONDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := testClient(server.URL, "").Entry(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestAPIKeyOmittedWhenEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["X-Api-Key"]
		assert.False(t, present)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL, "").Entry(context.Background(), 7)
	require.NoError(t, err)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"model-bundle-service/internal/adapters/secondary/fsstore"
	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/ports/output"
	"model-bundle-service/internal/core/services"
	"model-bundle-service/internal/testutil"
)

func setupRouter(t *testing.T) (*testutil.MockBundleRepo, *fsstore.Store, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := new(testutil.MockBundleRepo)
	store, err := fsstore.New(t.TempDir())
	require.NoError(t, err)

	bundleSvc := services.NewBundleService(repo, store)
	packSvc := services.NewPackService(store, repo)

	h := New(bundleSvc, packSvc)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)

	return repo, store, r
}

func TestListBundles(t *testing.T) {
	repo, _, r := setupRouter(t)

	bundles := []*domain.Bundle{
		{
			ID: uuid.New(), Name: "iris-classifier", Version: "20250101120000_ABCDEF",
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
			State: domain.BundleStateActive, Labels: map[string]string{},
		},
	}
	repo.On("List", mock.Anything, mock.AnythingOfType("ports.ListFilter")).Return(bundles, 1, nil)

	req, _ := http.NewRequest("GET", "/api/v1/bundles?limit=10&offset=0", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(1), resp["total"])
}

func TestListBundles_PageSizeClamped(t *testing.T) {
	repo, _, r := setupRouter(t)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f ports.ListFilter) bool {
		return f.Limit == 100
	})).Return([]*domain.Bundle{}, 0, nil)

	req, _ := http.NewRequest("GET", "/api/v1/bundles?limit=500", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(100), resp["page_size"])
}

func TestGetBundle_InvalidID(t *testing.T) {
	_, _, r := setupRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/bundles/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBundle_NotFound(t *testing.T) {
	repo, _, r := setupRouter(t)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrBundleNotFound)

	req, _ := http.NewRequest("GET", "/api/v1/bundles/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFindBundle_MissingName(t *testing.T) {
	_, _, r := setupRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/bundle", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteBundle_Live(t *testing.T) {
	repo, _, r := setupRouter(t)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.Bundle{
		ID:    id,
		State: domain.BundleStateActive,
	}, nil)

	req, _ := http.NewRequest("DELETE", "/api/v1/bundles/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func packRequestBody(t *testing.T, artifactPath string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"definition": map[string]interface{}{
			"name": "iris-classifier",
			"artifacts": []map[string]interface{}{
				{"name": "model", "framework": "sklearn"},
			},
		},
		"artifacts": map[string]string{"model": artifactPath},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestPackBundle(t *testing.T) {
	repo, _, r := setupRouter(t)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Bundle")).Return(nil)

	artifact := filepath.Join(t.TempDir(), "model.pkl")
	require.NoError(t, os.WriteFile(artifact, []byte("weights"), 0o644))

	req, _ := http.NewRequest("POST", "/api/v1/bundles/pack", packRequestBody(t, artifact))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	path, _ := resp["path"].(string)
	assert.NotEmpty(t, path)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestPackBundle_UnknownSlot(t *testing.T) {
	_, _, r := setupRouter(t)

	body, _ := json.Marshal(map[string]interface{}{
		"definition": map[string]interface{}{
			"name": "iris-classifier",
			"artifacts": []map[string]interface{}{
				{"name": "model"},
			},
		},
		"artifacts": map[string]string{"weights": "/tmp/x"},
	})

	req, _ := http.NewRequest("POST", "/api/v1/bundles/pack", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncBundles_EmptyStore(t *testing.T) {
	_, _, r := setupRouter(t)

	req, _ := http.NewRequest("POST", "/api/v1/bundles/sync", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, float64(0), resp["indexed"])
}

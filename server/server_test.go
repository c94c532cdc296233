package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"paper-sorts/config"
	"paper-sorts/models"
	"paper-sorts/server"
	"paper-sorts/services"
	"paper-sorts/storage/storagetest"
)

func newRouter(t *testing.T, apiKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)
	reg := prometheus.NewRegistry()
	conn := services.NewConnector(storagetest.Open(t), logger, services.NewMetrics(reg))
	require.NoError(t, conn.CreateTables(context.Background()))
	return server.NewRouter(&config.Config{APISecretKey: apiKey}, conn, reg, logger)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PaperLifecycle(t *testing.T) {
	r := newRouter(t, "")

	w := do(t, r, http.MethodPost, "/papers", gin.H{
		"bibtex_id": "lee2020",
		"bibtex":    "@article{lee2020}",
		"title":     "Graph Sorting",
		"contents":  "summary",
		"authors":   []string{"Lee, Ann", "Chen, Peng"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/papers?title=Graph%20Sorting", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []models.PaperRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Lee, Ann and Chen, Peng", records[0].Authors)

	w = do(t, r, http.MethodGet, "/papers?author=Chen,%20Peng", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hits []models.AuthorHit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hits))
	require.Len(t, hits, 1)

	w = do(t, r, http.MethodGet, "/papers/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/bib/lee2020", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "@article{lee2020}")

	w = do(t, r, http.MethodPut, "/entries", gin.H{"table": "papers", "column": "title", "identifier": "1", "value": "New"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodDelete, "/papers", gin.H{"title": "New", "authors": []string{"Lee, Ann"}})
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/papers/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "papers_added_total 1")
	assert.Contains(t, w.Body.String(), "papers_deleted_total 1")
}

func TestRouter_ErrorMapping(t *testing.T) {
	r := newRouter(t, "")
	paper := gin.H{"bibtex_id": "k", "bibtex": "b", "title": "T"}
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/papers", paper).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"duplicate key", http.MethodPost, "/papers", paper, http.StatusConflict},
		{"missing fields", http.MethodPost, "/papers", gin.H{"title": "x"}, http.StatusBadRequest},
		{"unknown title", http.MethodGet, "/papers?title=none", nil, http.StatusNotFound},
		{"no query", http.MethodGet, "/papers", nil, http.StatusBadRequest},
		{"bad id", http.MethodGet, "/papers/abc", nil, http.StatusBadRequest},
		{"unknown key", http.MethodGet, "/bib/none", nil, http.StatusNotFound},
		{"invalid column", http.MethodPut, "/entries", gin.H{"table": "papers", "column": "bibtex_id", "identifier": "1", "value": "x"}, http.StatusBadRequest},
		{"delete unknown", http.MethodDelete, "/papers", gin.H{"title": "none"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRouter_APIKey(t *testing.T) {
	r := newRouter(t, "secret")

	w := do(t, r, http.MethodGet, "/papers?title=x", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/papers?title=x", nil)
	req.Header.Set("X-API-KEY", "secret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

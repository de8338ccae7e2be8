package entrypoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/config"
)

func TestNewServices_GeneratesSecret(t *testing.T) {
	cfg := &config.Config{
		Database: config.Database{Path: filepath.Join(t.TempDir(), "app.db"), LogLevel: "silent"},
		Auth:     config.Auth{JWTIssuer: "bookshelf", TokenExpiry: time.Hour, BcryptCost: 4},
	}

	svc, err := NewServices(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.DB.Close() })

	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	require.NoError(t, svc.DB.Ping())

	statuses, err := svc.Taxonomy.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, statuses, 3)
}

func TestCorsHandler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := corsHandler([]string{"https://books.example.com"}, next)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		req.Header.Set("Origin", "https://books.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "https://books.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	auditdb "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/dbtest"
	logdb "github.com/mrlokans/bookshelf/internal/database/readinglog"
	"github.com/mrlokans/bookshelf/internal/database/reference"
	reportsdb "github.com/mrlokans/bookshelf/internal/database/reports"
	"github.com/mrlokans/bookshelf/internal/database/statuses"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/metrics"
	"github.com/mrlokans/bookshelf/internal/readinglog"
	"github.com/mrlokans/bookshelf/internal/reports"
	"github.com/mrlokans/bookshelf/internal/taxonomy"
)

type testAPI struct {
	router  *gin.Engine
	db      *gorm.DB
	auth    *auth.Service
	audit   *audit.Service
	metrics *metrics.Metrics
}

type apiOption func(*RouterConfig)

func withTaskClient(client TaskEnqueuer) apiOption {
	return func(cfg *RouterConfig) { cfg.TaskClient = client }
}

// newTestAPI wires the full router against a throwaway database.
func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := dbtest.New(t)
	db := database.DB

	logRepo := logdb.NewRepository(db)
	bookRepo := books.NewRepository(db)
	statusRepo := statuses.NewRepository(db)

	authService := auth.NewService(
		users.NewRepository(db),
		auth.NewJWTManager("test-secret", "bookshelf", time.Hour),
		config.Auth{BcryptCost: 4, MaxLoginAttempts: 10, LockoutDuration: time.Hour},
	)
	taxonomyService := taxonomy.NewService(statusRepo, logRepo)
	logService := readinglog.NewService(logRepo, statusRepo, bookRepo)
	catalogService := catalog.NewService(db, bookRepo, reference.NewRepository(db), logRepo, taxonomyService)
	reportService := reports.NewService(reportsdb.NewRepository(db), catalogService, logService, t.TempDir())
	auditService := audit.NewService(auditdb.NewRepository(db))
	m := metrics.New()

	cfg := RouterConfig{
		Database:    database,
		Catalog:     catalogService,
		Taxonomy:    taxonomyService,
		Log:         logService,
		Reports:     reportService,
		AuthService: authService,
		Audit:       auditService,
		Metrics:     m,
		Version:     "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	t.Cleanup(auditService.Wait)

	return &testAPI{router: NewRouter(cfg), db: db, auth: authService, audit: auditService, metrics: m}
}

// register creates an account through the service and returns a bearer token.
// The first account registered in a test is the admin.
func (a *testAPI) register(t *testing.T, login string) string {
	t.Helper()
	user, err := a.auth.Register(context.Background(), auth.RegisterInput{Login: login, Password: "password123"})
	require.NoError(t, err)
	token, err := a.auth.IssueToken(user)
	require.NoError(t, err)
	return token.AccessToken
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// createBook posts a book and returns its id.
func (a *testAPI) createBook(t *testing.T, token, title string) uint {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/books", token, catalog.BookInput{Title: title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[catalog.BookView](t, w).ID
}

package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditdb "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	logdb "github.com/mrlokans/bookshelf/internal/database/readinglog"
	"github.com/mrlokans/bookshelf/internal/database/reference"
	reportsdb "github.com/mrlokans/bookshelf/internal/database/reports"
	"github.com/mrlokans/bookshelf/internal/database/statuses"
	"github.com/mrlokans/bookshelf/internal/database/users"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/metrics"
	"github.com/mrlokans/bookshelf/internal/readinglog"
	"github.com/mrlokans/bookshelf/internal/reports"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/taxonomy"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Services bundles the domain services shared by the server and the CLI.
type Services struct {
	DB       *database.Database
	Auth     *auth.Service
	Taxonomy *taxonomy.Service
	Log      *readinglog.Service
	Catalog  *catalog.Service
	Reports  *reports.Service
	Audit    *audit.Service
}

// NewServices opens the database and builds every domain service on top of it.
// The caller owns the returned database and must close it.
func NewServices(cfg *config.Config) (*Services, error) {
	db, err := database.Open(cfg.Database.Path, cfg.Database.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		cfg.Auth.JWTSecret = secret
		log.Printf("Generated JWT secret (set AUTH_JWT_SECRET to keep tokens valid across restarts)")
	}

	logRepo := logdb.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	statusRepo := statuses.NewRepository(db.DB)

	taxonomyService := taxonomy.NewService(statusRepo, logRepo)
	logService := readinglog.NewService(logRepo, statusRepo, bookRepo)
	catalogService := catalog.NewService(db.DB, bookRepo, reference.NewRepository(db.DB), logRepo, taxonomyService)

	return &Services{
		DB: db,
		Auth: auth.NewService(
			users.NewRepository(db.DB),
			auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenExpiry),
			cfg.Auth,
		),
		Taxonomy: taxonomyService,
		Log:      logService,
		Catalog:  catalogService,
		Reports:  reports.NewService(reportsdb.NewRepository(db.DB), catalogService, logService, cfg.Reports.Dir),
		Audit:    audit.NewService(auditdb.NewRepository(db.DB)),
	}, nil
}

func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT; SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work is stopped after the server so in-flight requests finish first.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// corsHandler wraps the router; "*" in the allowed origins opens it to everyone.
func corsHandler(origins []string, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", http_controllers.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", http_controllers.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           600,
	}).Handler(next)
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	svc, err := NewServices(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := svc.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if hasUsers, err := svc.Auth.HasUsers(context.Background()); err == nil && !hasUsers {
		log.Printf("No users found. The first account registered via /api/auth/register becomes admin.")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Tasks.Enabled {
		retention := tasks.Retention{AuditDays: cfg.Audit.RetentionDays, Reports: cfg.Reports.Retention}
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks), retention)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.RegisterMaintenance(svc.Audit, svc.Reports, svc.Audit)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Maintenance.Enabled {
			maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Maintenance.Schedule)
			if err := maintenance.Start(taskCtx); err != nil {
				log.Printf("WARNING: maintenance scheduler disabled: %v", err)
				maintenance = nil
			}
		}
	} else if cfg.Maintenance.Enabled {
		log.Printf("WARNING: maintenance requires TASKS_ENABLED; cleanup will not run")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:    svc.DB,
		Catalog:     svc.Catalog,
		Taxonomy:    svc.Taxonomy,
		Log:         svc.Log,
		Reports:     svc.Reports,
		AuthService: svc.Auth,
		Audit:       svc.Audit,
		Metrics:     m,
		Version:     version,
	}
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		svc.Audit.Wait()
	}

	Serve(corsHandler(cfg.CORS.AllowedOrigins, router), cfg, onShutdown)
}

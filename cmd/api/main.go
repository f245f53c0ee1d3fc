package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/audit"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/auth"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/collection"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/config"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/dealer"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/httpapi"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/obs"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/retention"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/store"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/store/pg"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/stream"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tenant"
	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/tools"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("DEALER_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	fileStore := store.NewFileStore(cfg.Storage.Root)
	tenants := tenant.NewService(cfg.Tenant.Default, fileStore)
	auditWriter := audit.NewWriter(cfg.Audit.LogPath, cfg.Audit.MaskFields)

	events := stream.New()
	auditWriter.Notify(func(e audit.Entry) {
		events.Publish(stream.Event{
			Timestamp: e.Timestamp,
			TenantID:  e.TenantID,
			Actor:     e.User,
			Action:    e.Action,
			Resource:  e.Resource,
		})
	})

	// Auth accounts live in Postgres when a DSN is configured, otherwise in
	// process memory (single-node deployments and local dev).
	var authStore auth.Store
	var pgStore *pg.Store
	if dsn := os.Getenv("DEALER_PG_DSN"); dsn != "" {
		pgStore, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		authStore = pgStore
	} else {
		authStore = auth.NewMemoryStore()
	}

	authSvc, err := auth.NewService(authStore, secret,
		auth.WithIssuer(cfg.Auth.Issuer),
		auth.WithAccessTTL(cfg.AccessTTL()),
		auth.WithRefreshTTL(cfg.RefreshTTL()),
		auth.WithStaticToken(os.Getenv("API_STATIC_TOKEN")))
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		if err := authSvc.SeedAdmin(context.Background(), email, os.Getenv("ADMIN_PASSWORD"), tenants.Default()); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	services := dealer.NewServices(collection.Deps{
		Tenants: tenants,
		Store:   fileStore,
		Audit:   auditWriter,
	})

	registry := tools.NewRegistry()
	tools.RegisterDealerTools(registry, services)

	policies := make([]retention.Policy, 0, len(cfg.Retention.Policies))
	byName := make(map[string]retention.Target)
	for _, target := range services.RetentionTargets() {
		byName[target.Name()] = target
	}
	for _, p := range cfg.Retention.Policies {
		target, ok := byName[p.Collection]
		if !ok {
			log.Fatalf("retention policy for unknown collection %q", p.Collection)
		}
		policies = append(policies, retention.Policy{Target: target, Days: p.Days})
	}
	sweeper := retention.NewService(policies,
		retention.WithAuditLog(auditWriter.Path(), cfg.Audit.RetentionDays))
	scheduler := retention.NewScheduler(sweeper, cfg.RetentionInterval())
	scheduler.Start(context.Background())

	api := httpapi.New(httpapi.Options{
		Tenants:        tenants,
		Auth:           authSvc,
		Dealer:         services,
		Registry:       registry,
		Events:         events,
		AuditPath:      auditWriter.Path(),
		MaskFields:     cfg.Audit.MaskFields,
		Version:        version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		RateBurst:      cfg.Server.RateBurst,
		RatePerSecond:  cfg.Server.RatePerSecond,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting dealer-api %s on %s (tenant default %q)", version, srv.Addr, tenants.Default())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	scheduler.Stop()
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendverify/internal/attendance"
	"attendverify/internal/bus"
	"attendverify/internal/config"
	"attendverify/internal/httpapi"
	"attendverify/internal/httpmiddleware"
	"attendverify/internal/metrics"
	"attendverify/internal/registration"
	"attendverify/internal/session"
	"attendverify/internal/store"
	"attendverify/internal/verifier"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("warning: db not reachable, falling back to in-memory stores: %v", err)
		_ = db.Close()
		db = nil
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var changeBus bus.Bus
	if cfg.BusBackend == "memory" {
		changeBus = bus.NewMemory()
	} else {
		changeBus = bus.NewRedis(redisClient.Client, "")
	}

	var sessionStore session.Store
	var ledger attendance.LedgerStore
	var regStore registration.Store
	if db != nil {
		if err := store.EnsureSchema(ctx, db.Client); err != nil {
			return err
		}
		sessionStore = session.NewPostgresStore(db.Client)
		ledger = attendance.NewPostgresLedger(db.Client)
		regStore = registration.NewPostgresStore(db.Client)
	} else {
		sessionStore = session.NewMemoryStore()
		ledger = attendance.NewMemoryLedger()
		regStore = registration.NewMemoryStore()
	}

	engineMetrics := metrics.New(prometheus.DefaultRegisterer)

	face := verifier.NewFace(cfg.FaceServiceURL, cfg.FaceSkip)
	liveness := verifier.NewLiveness(cfg.LivenessServiceURL, cfg.LivenessSkip)
	if err := face.Health(ctx); err != nil {
		log.Printf("warning: face service not available: %v", err)
	}

	collector := attendance.NewCollector(face, liveness, cfg.CheckTimeout, engineMetrics)
	sessions := session.NewManager(sessionStore, changeBus, cfg.DefaultFenceRadiusM)
	attendanceSvc := attendance.NewService(sessionStore, ledger, collector, changeBus, cfg.GracePeriod, engineMetrics)
	registrations := registration.NewService(regStore, changeBus)

	handler := &httpapi.Handler{
		Sessions:      sessions,
		Attendance:    attendanceSvc,
		Registrations: registrations,
		Bus:           changeBus,
		JWTIssuer:     cfg.JWTIssuer,
		JWTSigningKey: cfg.JWTSigningKey,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil
		status := http.StatusOK
		if !redisHealthy && cfg.BusBackend != "memory" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	handler.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}

	log.Println("server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

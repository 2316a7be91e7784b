package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eduonline/internal/aigen"
	"eduonline/internal/announce"
	"eduonline/internal/attendance"
	"eduonline/internal/bulkgen"
	"eduonline/internal/config"
	"eduonline/internal/coursework"
	"eduonline/internal/geofence"
	"eduonline/internal/handlers"
	"eduonline/internal/httpmiddleware"
	"eduonline/internal/maintenance"
	"eduonline/internal/marks"
	"eduonline/internal/notify"
	"eduonline/internal/presence"
	"eduonline/internal/queue"
	"eduonline/internal/roster"
	"eduonline/internal/session"
	"eduonline/internal/store"
	"eduonline/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(rootCtx)

	var ai *aigen.Client
	if cfg.AIAPIKey != "" {
		ai = aigen.New(cfg.AIBaseURL, cfg.AIAPIKey)
	} else {
		log.Println("AI content API not configured (AI_API_KEY not set); CSV AI editing disabled")
	}
	var editor bulkgen.Editor
	if ai != nil {
		editor = ai
	}

	fences := geofence.NewRepository(db.Client)
	srv := &handlers.Server{
		Cfg:         cfg,
		Roster:      roster.NewService(roster.NewPGStore(db.Client)),
		Sessions:    session.NewRegistry(session.NewRedisStore(redisClient.Client)),
		Presence:    presence.NewTracker(presence.NewRedisStore(redisClient.Client), cfg.ConnectionTTL),
		Attendance:  attendance.NewService(attendance.NewRepository(db.Client), fences),
		Fences:      fences,
		Marks:       marks.NewService(marks.NewRepository(db.Client)),
		Announce:    announce.NewRepository(db.Client),
		Coursework:  coursework.NewRepository(db.Client),
		Maintenance: maintenance.NewFlag(redisClient.Client),
		Generator:   bulkgen.New(editor),
		Hub:         hub,
		Queue:       q,
	}

	// Worker-rendered notifications come back over the bus and get pushed
	// to whichever connections this instance holds.
	bus := notify.NewRedisBus(redisClient.Client)
	go func() {
		err := bus.Listen(rootCtx, func(msg notify.Message) {
			if msg.Broadcast {
				hub.Broadcast("notification", msg.Notification)
				return
			}
			for _, id := range msg.IdentityIDs {
				hub.SendTo(id, "notification", msg.Notification)
			}
		})
		if err != nil && rootCtx.Err() == nil {
			log.Printf("notify listener stopped: %v", err)
		}
	}()

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
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	srv.Register(r)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
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

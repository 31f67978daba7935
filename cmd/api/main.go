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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schoolms/internal/attendance"
	"schoolms/internal/auth"
	"schoolms/internal/catalog"
	"schoolms/internal/config"
	"schoolms/internal/handler"
	"schoolms/internal/httpmiddleware"
	"schoolms/internal/identity"
	"schoolms/internal/qr"
	"schoolms/internal/queue"
	"schoolms/internal/store"
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
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(db.Client); err != nil {
		return err
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "schoolms:events")
	}

	signer := &auth.Signer{
		Issuer:     cfg.JWTIssuer,
		Key:        cfg.JWTSigningKey,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}

	userRepo := identity.NewRepository(db.Client)
	accounts := identity.NewService(userRepo)
	catalogRepo := catalog.NewRepository(db.Client)
	attendanceRepo := attendance.NewRepository(db.Client)
	engine := attendance.NewEngine(attendanceRepo, catalogRepo, qr.DataURL, cfg.LateGrace)

	if err := accounts.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Printf("warning: admin bootstrap failed: %v", err)
	}

	h := handler.New(signer, accounts, userRepo, catalogRepo, engine, q, db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.GET("/auth/verify", auth.RequireAuth(signer), h.Verify)

	v1 := r.Group("/v1", auth.RequireAuth(signer))

	admin := v1.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("/users/students", h.CreateStudent)
	admin.POST("/users/teachers", h.CreateTeacher)
	admin.POST("/users/admins", h.CreateAdmin)
	admin.GET("/students", h.ListStudents)
	admin.PUT("/students/:id", h.UpdateStudent)
	admin.DELETE("/students/:id", h.DeleteStudent)
	admin.GET("/teachers", h.ListTeachers)
	admin.PUT("/teachers/:id", h.UpdateTeacher)
	admin.DELETE("/teachers/:id", h.DeleteTeacher)
	admin.POST("/programs", h.CreateProgram)
	admin.POST("/sections", h.CreateSection)
	admin.PUT("/sections/:id", h.UpdateSection)
	admin.DELETE("/sections/:id", h.DeleteSection)
	admin.POST("/courses", h.CreateCourse)
	admin.PUT("/courses/:id", h.UpdateCourse)
	admin.DELETE("/courses/:id", h.DeleteCourse)
	admin.POST("/enrollments", h.Enroll)
	admin.GET("/stats", h.Stats)

	v1.GET("/programs", h.ListPrograms)
	v1.GET("/sections", h.ListSections)
	v1.GET("/courses", h.ListCourses)
	v1.GET("/courses/:id", h.GetCourse)

	staff := v1.Group("/attendance", auth.RequireRole(auth.RoleTeacher, auth.RoleAdmin))
	staff.POST("/sessions", h.CreateSession)
	staff.GET("/sessions/:id/remaining", h.RemainingWindow)
	staff.GET("/sessions/:id/qr", h.SessionQR)

	v1.POST("/attendance/scan", h.Scan)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
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

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/kbx/kbx-api/internal/config"
	"github.com/kbx/kbx-api/internal/domain/auth"
	"github.com/kbx/kbx-api/internal/domain/booking"
	"github.com/kbx/kbx-api/internal/domain/businesshours"
	"github.com/kbx/kbx-api/internal/domain/realtime"
	"github.com/kbx/kbx-api/internal/domain/room"
	"github.com/kbx/kbx-api/internal/domain/tenant"
	"github.com/kbx/kbx-api/internal/domain/user"
	"github.com/kbx/kbx-api/internal/middleware"
	"github.com/kbx/kbx-api/internal/pkg/database"
	"github.com/kbx/kbx-api/internal/pkg/jwt"
	"github.com/kbx/kbx-api/internal/pkg/logger"
	pkgresponse "github.com/kbx/kbx-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting KBX API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	tenantRepo := tenant.NewRepository(db)
	userRepo := user.NewRepository(db)
	roomRepo := room.NewRepository(db)
	hoursRepo := businesshours.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	// ---------- WebSocket hub ----------
	hub := realtime.NewHub(redisClient)
	go hub.Run()
	defer hub.Close()

	// ---------- Services ----------
	authService := auth.NewService(userRepo, tenantRepo, jwtService, redisClient)
	bookingService := booking.NewService(bookingRepo, roomRepo, hoursRepo, tenantRepo, hub, cfg.BookingMinDuration)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	roomHandler := room.NewHandler(roomRepo)
	hoursHandler := businesshours.NewHandler(hoursRepo)
	bookingHandler := booking.NewHandler(bookingService)
	wsHandler := realtime.NewHandler(hub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)
	ownerMiddleware := middleware.RequireOwner()
	rateLimitMiddleware := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:  cfg.RateLimitEnabled,
		Capacity: cfg.RateLimitCapacity,
		Refill:   cfg.RateLimitRefill,
	}, redisClient)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (browsers cannot set headers on WS, token rides the query)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(wsHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimitMiddleware)

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/rooms", roomHandler.Routes(authMiddleware, ownerMiddleware))
		r.Mount("/business-hours", hoursHandler.Routes(authMiddleware, ownerMiddleware))
		r.Mount("/bookings", bookingHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

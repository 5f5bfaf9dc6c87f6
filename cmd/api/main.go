package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/corvusHold/relay/internal/config"
	"github.com/corvusHold/relay/internal/logger"
	"github.com/corvusHold/relay/internal/metrics"
	"github.com/corvusHold/relay/internal/platform/ratelimit"
	"github.com/corvusHold/relay/internal/platform/validation"
	relay "github.com/corvusHold/relay/internal/relay"
	ctrl "github.com/corvusHold/relay/internal/relay/controller"
	"github.com/corvusHold/relay/internal/version"
)

func main() {
	_ = godotenv.Load()

	if handleCLICommand(os.Args[1:]) {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	if err := validation.Struct(cfg); err != nil {
		for _, l := range validation.ErrorResponse(err).Lines() {
			log.Warn().Str("problem", l).Msg("configuration")
		}
	}
	if !cfg.EmailReady() {
		log.Warn().Msg("MAILJET_APIKEY_PUBLIC / MAILJET_SECRET not set: email sends will fail")
	}
	if !cfg.SMSReady() {
		log.Warn().Msg("MAILJET_SMS_TOKEN or SMS templates missing: sms sends will fail")
	}
	log.Info().Str("addr", cfg.AppAddr).Str("version", version.String()).Str("config", cfg.String()).Msg("starting relay server")

	var (
		redisClient *redis.Client
		rlStore     ratelimit.Store
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		defer redisClient.Close()
		rlStore = ratelimit.NewRedisStore(redisClient)
	}

	e := newServer(cfg, log, redisClient, rlStore)

	// Start server
	go func() {
		if err := e.Start(cfg.AppAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}

// newServer builds the echo instance with middlewares and routes.
// redisClient and rlStore may be nil.
func newServer(cfg config.Config, log zerolog.Logger, redisClient *redis.Client, rlStore ratelimit.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ctrl.HTTPErrorHandler
	if cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	// Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logger.Middleware(log))
	e.Use(logger.AccessLog(log))
	e.Use(metrics.HTTPMiddleware())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return matchCORSOrigin(origin, cfg.CORSAllowedOrigins), nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	e.Validator = validation.New()

	relay.Register(e, cfg, rlStore, log)

	e.GET("/healthz", func(c echo.Context) error {
		cacheStatus := "disabled"
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
			defer cancel()
			start := time.Now()
			_, err := redisClient.Ping(ctx).Result()
			metrics.ObserveRedisPing(time.Since(start).Seconds())
			metrics.SetRedisUp(err == nil)
			cacheStatus = "ok"
			if err != nil {
				cacheStatus = "down"
			}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"version": version.String(),
			"email":   readiness(cfg.EmailReady()),
			"sms":     readiness(cfg.SMSReady()),
			"cache":   cacheStatus,
		})
	})
	e.GET("/metrics", metrics.Handler())

	return e
}

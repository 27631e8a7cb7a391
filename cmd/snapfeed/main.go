package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	authhttp "github.com/AlibekovAA/snapfeed/internal/auth/http"
	"github.com/AlibekovAA/snapfeed/internal/auth/oauth"
	authservice "github.com/AlibekovAA/snapfeed/internal/auth/service"
	"github.com/AlibekovAA/snapfeed/internal/common/bootstrap"
	"github.com/AlibekovAA/snapfeed/internal/common/db"
	commonhttp "github.com/AlibekovAA/snapfeed/internal/common/http"
	"github.com/AlibekovAA/snapfeed/internal/common/jwtverify"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	srv "github.com/AlibekovAA/snapfeed/internal/common/server"
	"github.com/AlibekovAA/snapfeed/internal/feed"
	"github.com/AlibekovAA/snapfeed/internal/media"
	posthttp "github.com/AlibekovAA/snapfeed/internal/post/http"
	postservice "github.com/AlibekovAA/snapfeed/internal/post/service"
	profilehttp "github.com/AlibekovAA/snapfeed/internal/profile/http"
	profileservice "github.com/AlibekovAA/snapfeed/internal/profile/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start snapfeed: %v\n", err)
		os.Exit(1)
	}
	log := app.Log
	cfg := app.Config

	verifier := jwtverify.NewVerifier(cfg.JWTSecret, log)
	sessions := authservice.NewSessionIssuer(cfg.JWTSecret, app.IDGenerator, cfg.SessionTTL, app.Clock)
	authService := authservice.NewAuthService(app.Accounts, app.Hasher, app.IDGenerator, app.Clock, log)

	var providers []oauth.Provider
	if cfg.OAuth.GoogleEnabled() {
		providers = append(providers, oauth.NewGoogleProvider(cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuth.GoogleRedirectURL))
	}

	hub := feed.NewHub(log)
	go hub.Run(ctx)

	uploader := media.NewUploader(app.Store, app.Clock, app.IDGenerator, log)
	postService := postservice.NewPostService(app.Posts, uploader, app.IDGenerator, app.Clock, hub, log)
	profileService := profileservice.NewProfileService(app.Accounts, uploader, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.HandleFunc("/api/health/db", commonhttp.DatabaseHealthHandler(log, func(ctx context.Context) error {
		return db.Ping(ctx, app.Pool)
	}))
	mux.Handle("/metrics", promhttp.Handler())

	authhttp.NewHandler(authhttp.Config{
		Auth:           authService,
		Sessions:       sessions,
		Providers:      oauth.NewRegistry(providers...),
		Verifier:       verifier,
		Log:            log,
		CookieSecure:   cfg.CookieSecure,
		RequestTimeout: cfg.RequestTimeout,
	}).Register(mux)
	posthttp.NewHandler(postService, verifier, log, cfg.RequestTimeout, cfg.UploadTimeout).Register(mux)
	profilehttp.NewHandler(profilehttp.Config{
		Profiles:       profileService,
		Sessions:       sessions,
		Verifier:       verifier,
		Log:            log,
		CookieSecure:   cfg.CookieSecure,
		RequestTimeout: cfg.RequestTimeout,
		UploadTimeout:  cfg.UploadTimeout,
	}).Register(mux)
	feed.NewHandler(feed.Config{
		Posts:          postService,
		Hub:            hub,
		Verifier:       verifier,
		Log:            log,
		GoogleEnabled:  cfg.OAuth.GoogleEnabled(),
		RequestTimeout: cfg.RequestTimeout,
	}).Register(mux)
	if app.Bolt != nil {
		app.Bolt.Register(mux, log)
	}

	clientIP, err := commonhttp.NewClientIPResolver(cfg.TrustedProxies)
	if err != nil {
		app.Close()
		log.Fatalf("invalid TRUSTED_PROXIES: %v", err)
	}
	redisClient, limiterFactory := rateLimiterBackend(ctx, cfg.RedisURL, log)
	rateLimiter := commonhttp.NewStrictRateLimiter(limiterFactory, clientIP)

	baseHandler := commonhttp.BuildBaseHandler("snapfeed", log, cfg.MaxRequestBytes, mux,
		rateLimiter.Except("/health", "/metrics", "/ws/feed"))
	server := srv.New(srv.NewConfig(cfg.HTTPPort, cfg.UploadTimeout), baseHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Info("snapfeed: stopping feed hub")
			hub.Stop()
			return nil
		},
		func(ctx context.Context) error {
			rateLimiter.Stop()
			if redisClient != nil {
				return redisClient.Close()
			}
			return nil
		},
	}

	runErr := srv.Run(ctx, server, log, "snapfeed", shutdownHooks)

	cancel()
	app.Close()
	if runErr != nil {
		log.Errorf("snapfeed stopped with error: %v", runErr)
	}
	_ = log.Close()
	if runErr != nil {
		os.Exit(1)
	}
}

// rateLimiterBackend shares limits through Redis when REDIS_URL is set and
// falls back to in-process buckets otherwise.
func rateLimiterBackend(ctx context.Context, redisURL string, log *logger.Logger) (*redis.Client, commonhttp.LimiterFactory) {
	if redisURL == "" {
		return nil, commonhttp.MemoryLimiterFactory
	}
	client, err := commonhttp.NewRedisClient(ctx, redisURL)
	if err != nil {
		log.Warnf("redis unavailable, using in-process rate limits: %v", err)
		return nil, commonhttp.MemoryLimiterFactory
	}
	log.Info("rate limits shared through redis")
	return client, commonhttp.RedisLimiterFactory(client, log)
}

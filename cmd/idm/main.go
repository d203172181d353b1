package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/chi-demo/app"

	"github.com/tendant/clinic-idm/pkg/account"
	"github.com/tendant/clinic-idm/pkg/authapi"
	"github.com/tendant/clinic-idm/pkg/client"
	"github.com/tendant/clinic-idm/pkg/config"
	"github.com/tendant/clinic-idm/pkg/emailverification"
	"github.com/tendant/clinic-idm/pkg/login"
	"github.com/tendant/clinic-idm/pkg/metrics"
	"github.com/tendant/clinic-idm/pkg/notification"
	"github.com/tendant/clinic-idm/pkg/otp"
	"github.com/tendant/clinic-idm/pkg/ratelimit"
	"github.com/tendant/clinic-idm/pkg/signup"
	"github.com/tendant/clinic-idm/pkg/tokengenerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.App)

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.App.Persistence == config.PersistencePostgres || cfg.Otp.Store == config.PersistencePostgres {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.ToDatabaseURL())
		if err != nil {
			slog.Error("Failed parsing database url", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = cfg.Database.MaxConns
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("Failed creating dbpool", "db", cfg.Database.Database, "host", cfg.Database.Host, "port", cfg.Database.Port)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		slog.Info("Database connected", "database", cfg.Database.Database, "schema", cfg.Database.Schema)
	}

	accountRepo, err := account.NewRepository(cfg.App.Persistence, pool)
	if err != nil {
		slog.Error("Failed to create account repository", "error", err)
		os.Exit(1)
	}

	otpRepoConfig := otp.RepositoryConfig{Pool: pool, RedisPrefix: cfg.Redis.Prefix}
	if cfg.Otp.Store == config.PersistenceRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		otpRepoConfig.Redis = rdb
	}
	otpRepo, err := otp.NewRepository(cfg.Otp.Store, otpRepoConfig)
	if err != nil {
		slog.Error("Failed to create otp repository", "error", err)
		os.Exit(1)
	}

	smtp, err := smtpConfig(cfg.Email)
	if err != nil {
		slog.Error("Invalid email config", "error", err)
		os.Exit(1)
	}
	notifier, err := notification.NewEmailNotifier(smtp)
	if err != nil {
		slog.Error("Failed to create email notifier", "error", err)
		os.Exit(1)
	}
	notificationManager := notification.NewNotificationManager(notifier, notification.WithOtpTTL(cfg.Otp.CodeTTL()))

	otpService := otp.NewOtpService(otpRepo, notificationManager, otp.WithTTL(cfg.Otp.CodeTTL()))

	tokenService := tokengenerator.NewTokenService(
		cfg.Jwt.AccessSecret,
		cfg.Jwt.RefreshSecret,
		cfg.Jwt.Issuer,
		cfg.Jwt.Audience,
		tokengenerator.WithAccessTokenExpiry(cfg.Jwt.AccessTTL()),
		tokengenerator.WithRefreshTokenExpiry(cfg.Jwt.RefreshTTL()),
	)

	loginService := login.NewLoginService(accountRepo, tokenService)
	signupService := signup.NewSignupService(accountRepo, otpService)
	verificationService := emailverification.NewEmailVerificationService(accountRepo, otpService,
		emailverification.WithResendLimit(cfg.Otp.ResendLimit),
		emailverification.WithResendWindow(cfg.Otp.ResendWindowDuration()),
		emailverification.WithVerifyAttemptLimit(cfg.Otp.VerifyAttempts),
		emailverification.WithVerifyAttemptWindow(cfg.Otp.CodeTTL()),
	)
	defer verificationService.Close()

	limits, err := rateLimitConfig(cfg.RateLimit)
	if err != nil {
		slog.Error("Invalid rate limit config", "error", err)
		os.Exit(1)
	}
	rateLimitMiddleware := ratelimit.NewMiddleware(limits)
	defer rateLimitMiddleware.Close()
	slog.Info("Rate limiting configured",
		"enabled", limits.Enabled,
		"global_per_ip", limits.GlobalPerIP,
		"auth_per_ip", limits.AuthPerIP,
		"window", limits.Window,
		"trust_proxy_headers", limits.TrustProxyHeaders)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("idm", registry)

	handle := authapi.NewHandle(
		signupService,
		loginService,
		verificationService,
		client.AuthMiddleware(tokenService, accountRepo),
		authapi.WithRateLimiter(rateLimitMiddleware),
		authapi.WithMetrics(m),
	)

	server := app.DefaultApp()
	server.R.Use(m.Middleware)
	server.R.Use(rateLimitMiddleware.Handler)
	app.RoutesHealthz(server.R)
	server.R.Handle("/metrics", m.Handler())
	server.R.Mount(cfg.App.Prefix, handle.Routes())

	slog.Info("Clinic IDM ready", "prefix", cfg.App.Prefix, "persistence", cfg.App.Persistence, "otp_store", cfg.Otp.Store)
	server.Run()
}

func setupLogger(appConfig config.AppConfig) {
	opts := &slog.HandlerOptions{Level: appConfig.SlogLevel()}
	var handler slog.Handler
	if appConfig.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

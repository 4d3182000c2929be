package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/lib/pq"

	"github.com/addis-listings/dalal-bot/internal/bot"
	"github.com/addis-listings/dalal-bot/internal/database"
	"github.com/addis-listings/dalal-bot/internal/flow"
	"github.com/addis-listings/dalal-bot/internal/health"
	"github.com/addis-listings/dalal-bot/internal/i18n"
	"github.com/addis-listings/dalal-bot/internal/imagestore"
	"github.com/addis-listings/dalal-bot/internal/lifecycle"
	"github.com/addis-listings/dalal-bot/internal/listing"
	"github.com/addis-listings/dalal-bot/internal/repository"
	"github.com/addis-listings/dalal-bot/internal/session"
	"github.com/addis-listings/dalal-bot/internal/user"
	"github.com/addis-listings/dalal-bot/pkg/config"
	"github.com/addis-listings/dalal-bot/pkg/graceful"
	"github.com/addis-listings/dalal-bot/pkg/logger"
	"github.com/addis-listings/dalal-bot/pkg/metrics"
	"github.com/addis-listings/dalal-bot/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			slog.Error("failed to init sentry", slog.Any("error", err))
			os.Exit(1)
		}
	}

	log := logger.New(*cfg)
	log.Info("starting listing bot", slog.String("env", cfg.AppEnv))

	config.Watch(v, log, func(updated *config.Config) {
		log.Info("config reloaded", slog.String("env", updated.AppEnv))
	})

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		os.Exit(1)
	}

	migrationsDir := cfg.Database.MigrationsDir
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.NewMigrator(db, log).ApplyDir(ctx, migrationsDir); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	manager, err := i18n.Load(cfg.Bot.DefaultLanguage)
	if err != nil {
		log.Error("failed to load translations", slog.Any("error", err))
		os.Exit(1)
	}

	imagesDir := cfg.Images.Dir
	if imagesDir == "" {
		imagesDir = "data/images"
	}
	images, err := imagestore.NewFileStore(imagesDir, log)
	if err != nil {
		log.Error("failed to init image store", slog.Any("error", err))
		os.Exit(1)
	}

	store := session.NewRedisStorage(redisClient.Client, log)
	locker := session.NewRedisLocker(redisClient.Client, log)

	listingRepo := repository.NewListingRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)

	lifecycleManager := lifecycle.NewManager(listingRepo, log)
	listingService := listing.NewService(listingRepo, lifecycleManager, log)
	userService := user.NewService(userRepo, cfg.Bot.DefaultLanguage, log)

	if err := userService.SeedAdmins(ctx, cfg.Admin.IDs); err != nil {
		log.Error("failed to seed admins", slog.Any("error", err))
		os.Exit(1)
	}

	engine := flow.NewEngine(store, images, listingService, locker, log, cfg.Session.TTL)

	b, err := bot.New(*cfg, log, engine, listingService, userService, manager)
	if err != nil {
		log.Error("failed to build bot", slog.Any("error", err))
		os.Exit(1)
	}

	sweeper := session.NewSweeper(store, log, cfg.Session.SweepInterval)
	go sweeper.Run(ctx)

	collector := metrics.NewSessionCollector(store, 0)
	go collector.Run(ctx)

	checker := health.NewChecker(log, 0)
	checker.Register("postgres", health.Postgres(db))
	checker.Register("redis", health.Redis(redisClient.Client))
	checker.Register("telegram", health.Telegram(b.Telebot()))

	go func() {
		if err := serveHTTP(ctx, cfg, log, checker); err != nil {
			log.Error("http server stopped", slog.Any("error", err))
		}
	}()

	go b.Start()

	<-ctx.Done()

	b.Stop()
	log.Info("listing bot shut down")
}

func serveHTTP(ctx context.Context, cfg *config.Config, log *slog.Logger, checker *health.Checker) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := checker.Check(r.Context())

		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}

		w.WriteHeader(code)
		for name, result := range status.Components {
			_, _ = w.Write([]byte(name + ": " + result + "\n"))
		}
	})

	port := cfg.Server.Port
	if port == "" {
		port = ":8080"
	}

	srv := graceful.NewServer(log, &http.Server{Addr: port, Handler: mux}, cfg.Server.ShutdownTimeout)
	return srv.ListenAndServe(ctx)
}

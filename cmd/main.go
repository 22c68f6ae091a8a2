package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloghub/internal/bot"
	"bloghub/internal/config"
	"bloghub/internal/database"
	"bloghub/internal/health"
	"bloghub/internal/query"
	"bloghub/internal/scheduler"
	"bloghub/internal/session"

	"github.com/joho/godotenv"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WarnContext(ctx, "Failed to load .env file",
			"error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	blogs, err := db.ListBlogs(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list blogs",
			"error", err)

		return
	}

	if err = session.CheckCatalogue(blogs); err != nil {
		log.ErrorContext(ctx, "Blog catalogue is invalid",
			"error", err,
			"blogCount", len(blogs))

		return
	}

	generator, err := initGenerator(cfg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize generator",
			"error", err,
			"provider", cfg.AIProvider,
			"model", cfg.Model())

		return
	}
	log.InfoContext(ctx, "Generator is initialized",
		"provider", cfg.AIProvider,
		"model", cfg.Model())

	service := query.NewService(generator, cfg.City, log)
	store := session.NewStore()
	controller := session.NewController(store, service, blogs, db, cfg.AITimeout, log)

	botInst, err := bot.New(cfg.Token, controller, query.CityName(cfg.City), cfg.AllowedUsers, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize bot",
			"error", err,
			"allowedUsersCount", len(cfg.AllowedUsers))

		return
	}
	log.InfoContext(ctx, "Bot is initialized",
		"allowedUsersCount", len(cfg.AllowedUsers),
		"blogCount", len(blogs),
		"city", cfg.City)

	sched := scheduler.New(ctx, store, cfg.SessionTTL, db, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"evictSpec", scheduler.EvictIdleSessionsSpec,
			"pruneSpec", scheduler.PruneSearchLogSpec)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"evictSpec", scheduler.EvictIdleSessionsSpec,
		"pruneSpec", scheduler.PruneSearchLogSpec,
		"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())

	if cfg.HealthAddr != "" {
		healthServer := health.New(db, db, store, log)

		go func() {
			if err := healthServer.Run(ctx, cfg.HealthAddr); err != nil {
				log.ErrorContext(ctx, "Health server is stopped",
					"error", err,
					"addr", cfg.HealthAddr)
			}
		}()
		log.InfoContext(ctx, "Health server is started",
			"addr", cfg.HealthAddr)
	}

	go func() {
		botInst.Start(ctx)
	}()
	log.InfoContext(ctx, "Bot is started",
		"updateTimeoutSeconds", bot.BotUpdateTimeout)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c
	log.InfoContext(ctx, "Shutdown signal is received",
		"signal", sig.String())
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"signal", sig.String(),
		"uptimeSeconds", time.Since(start).Seconds())

	botInst.Stop()
	log.InfoContext(ctx, "Bot is stopped",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initGenerator(cfg config.Config) (query.Generator, error) {
	switch cfg.AIProvider {
	case config.ProviderOllama:
		g, err := query.NewOllamaGenerator(cfg.Model())
		if err != nil {
			return nil, fmt.Errorf("create ollama generator: %w", err)
		}
		return g, nil
	default:
		return query.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.Model()), nil
	}
}

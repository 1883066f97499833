// Package main - точка входа фонового процесса (Worker) Tally Hub.
//
// Worker отвечает за периодический прогрев кеша табло: пересчитывает
// табло каждой игры и складывает снимок в Redis под ключом
// (game_id, last_match_id). Интерактивные запросы при попадании в кеш
// не пересчитывают историю матчей; при промахе считают заново, так что
// устаревший прогрев никогда не меняет результат.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tally-hub/tally-score-hub/config"
	"github.com/tally-hub/tally-score-hub/internal/infrastructure/persistence/postgres"
	"github.com/tally-hub/tally-score-hub/internal/infrastructure/persistence/redis"
	"github.com/tally-hub/tally-score-hub/internal/infrastructure/scheduler"
	"github.com/tally-hub/tally-score-hub/internal/infrastructure/scheduler/jobs"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	// .env необязателен: в production переменные приходят из окружения.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Tally Hub Worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var snapshotCache *redis.ScoreboardCache

	cacheEnabled := !cfg.Redis.Disabled &&
		cfg.Features.IsEnabled(config.FeatureCacheSnapshots, nil)

	if cacheEnabled {
		log.Info("connecting to Redis...")
		redisCache, err := redis.NewCache(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   3,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			PoolTimeout:  cfg.Redis.DialTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to Redis, snapshot warming disabled", "error", err)
		} else {
			defer redisCache.Close()
			snapshotCache = redis.NewScoreboardCacheWithTTL(redisCache, cfg.Stats.SnapshotTTL)
			log.Info("Redis connection established")
		}
	} else {
		log.Info("snapshot cache disabled by configuration")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	gameRepo := postgres.NewGameRepository(dbConn)
	statsRepo := postgres.NewStatsRepositoryWithWindow(dbConn, cfg.Stats.MatchWindow)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ПЛАНИРОВЩИК ФОНОВЫХ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler

	if cfg.Scheduler.Enabled && snapshotCache != nil {
		sched = scheduler.NewScheduler(scheduler.SchedulerConfig{
			Logger:   log,
			Timezone: cfg.App.Location,
		})

		warmJob := jobs.NewWarmScoreboardsJob(
			gameRepo,
			statsRepo,
			snapshotCache,
			log,
			jobs.WarmScoreboardsConfig{Timeout: cfg.Scheduler.JobTimeout},
		)

		// Джиттер в 10% интервала разводит прогревы нескольких реплик.
		warmSchedule := scheduler.NewJitteredIntervalSchedule(
			cfg.Scheduler.WarmInterval,
			cfg.Scheduler.WarmInterval/10,
		)
		if err := sched.Register(warmJob, warmSchedule); err != nil {
			return fmt.Errorf("failed to register warm job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		if cfg.Scheduler.WarmOnStart {
			if _, err := sched.RunNow(ctx, warmJob.Name()); err != nil {
				log.Warn("initial warm pass failed", "error", err)
			}
		}
	} else {
		log.Info("scheduler disabled",
			"scheduler_enabled", cfg.Scheduler.Enabled,
			"cache_available", snapshotCache != nil,
		)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Tally Hub Worker is running",
		"warm_interval", cfg.Scheduler.WarmInterval.String(),
		"match_window", cfg.Stats.MatchWindow,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	if sched != nil && sched.IsRunning() {
		if err := sched.Stop(); err != nil {
			log.Warn("scheduler stop failed", "error", err)
		}
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Observability.LogLevel),
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Observability.LogFormat, "text") || cfg.IsDevelopment() {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

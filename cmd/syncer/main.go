package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"wanda-feed/internal/adapters/provider"
	"wanda-feed/internal/adapters/repo"
	"wanda-feed/internal/domain"
	"wanda-feed/internal/infra/config"
	"wanda-feed/internal/infra/db"
	applog "wanda-feed/internal/infra/log"
	"wanda-feed/internal/infra/metrics"
	"wanda-feed/internal/infra/queue"
	"wanda-feed/internal/usecase/ingest"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("syncer: нет подключения к БД")
	}
	defer pool.Close()

	providers, err := provider.ParseFeeds(cfg.Sync.Feeds)
	if err != nil {
		log.Fatal().Err(err).Msg("syncer: некорректный SYNC_FEEDS")
	}

	repoAdapter := repo.NewPostgres(pool)
	ingestService := ingest.NewService(providers, repoAdapter)

	var jobs domain.SyncQueue
	if cfg.RabbitManagementURL != "" {
		rabbit, err := queue.NewRabbitSyncQueue(cfg.RabbitURL, cfg.RabbitManagementURL, cfg.Queues.Sync)
		if err != nil {
			log.Fatal().Err(err).Msg("syncer: не удалось подключить очередь RabbitMQ")
		}
		jobs = rabbit
	} else {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		jobs = queue.NewRedisSyncQueue(redisClient, cfg.Queues.Sync)
	}

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")
	log.Info().Int("sources", len(providers)).Msg("syncer: старт")

	for {
		job, err := jobs.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("syncer: остановка")
				return
			}
			log.Error().Err(err).Msg("syncer: ошибка чтения очереди")
			continue
		}

		if job.Source == "" {
			if err := ingestService.SyncAllSources(ctx); err != nil {
				log.Error().Err(err).Str("job", job.ID).Msg("syncer: синхронизация всех источников не удалась")
			}
			continue
		}
		if err := ingestService.SyncSource(ctx, job.Source); err != nil {
			log.Error().Err(err).Str("job", job.ID).Str("source", job.Source).Msg("syncer: синхронизация источника не удалась")
		}
	}
}

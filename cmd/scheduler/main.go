package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"wanda-feed/internal/adapters/provider"
	"wanda-feed/internal/domain"
	"wanda-feed/internal/infra/cache"
	"wanda-feed/internal/infra/config"
	"wanda-feed/internal/infra/queue"
	"wanda-feed/internal/usecase/ingest"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := provider.ParseFeeds(cfg.Sync.Feeds)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler: некорректный SYNC_FEEDS")
	}
	if len(providers) == 0 {
		log.Fatal().Msg("scheduler: не задан ни один источник (SYNC_FEEDS)")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	onceCache := cache.NewRedis(redisClient)

	var jobs domain.SyncQueue
	if cfg.RabbitManagementURL != "" {
		rabbit, err := queue.NewRabbitSyncQueue(cfg.RabbitURL, cfg.RabbitManagementURL, cfg.Queues.Sync)
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler: не удалось подключить очередь RabbitMQ")
		}
		jobs = rabbit
	} else {
		jobs = queue.NewRedisSyncQueue(redisClient, cfg.Queues.Sync)
	}

	interval := time.Duration(cfg.Sync.IntervalMinutes) * time.Minute
	log.Info().Dur("interval", interval).Int("sources", len(providers)).Msg("scheduler: старт")

	enqueueAll(ctx, providers, onceCache, jobs, interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler: остановка")
			return
		case <-ticker.C:
			enqueueAll(ctx, providers, onceCache, jobs, interval)
		}
	}
}

// enqueueAll ставит задачу на каждый источник. Блокировка в Redis не даёт
// двум экземплярам планировщика продублировать задачу в один запуск.
func enqueueAll(ctx context.Context, providers []domain.ExternalProvider, onceCache domain.Cache, jobs domain.SyncQueue, ttl time.Duration) {
	now := time.Now().UTC()
	for _, p := range providers {
		source := p.SourceName()
		err := onceCache.Once(ingest.OnceKey(source, now), ttl, func() error {
			return jobs.Enqueue(ctx, domain.SyncJob{
				ID:          uuid.NewString(),
				Source:      source,
				RequestedAt: now,
				Cause:       domain.SyncCauseScheduled,
			})
		})
		if err != nil {
			log.Error().Err(err).Str("source", source).Msg("scheduler: не удалось поставить задачу")
		}
	}
}

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wanda-feed/internal/domain"
	"wanda-feed/internal/infra/metrics"
)

// Service импортирует посты внешних официальных источников. Импорт
// идемпотентен: ключом дедупликации служит внешний идентификатор записи.
type Service struct {
	providers []domain.ExternalProvider
	posts     domain.PostRepo
}

// NewService создаёт сервис синхронизации.
func NewService(providers []domain.ExternalProvider, posts domain.PostRepo) *Service {
	return &Service{providers: providers, posts: posts}
}

// SyncAllSources последовательно обходит все источники. Сбой любого источника
// или сохранения прерывает обход целиком.
func (s *Service) SyncAllSources(ctx context.Context) error {
	for _, provider := range s.providers {
		if err := s.syncProvider(ctx, provider); err != nil {
			return domain.Recover(err, domain.ErrSyncProvider)
		}
	}
	return nil
}

// SyncSource синхронизирует один источник по имени.
func (s *Service) SyncSource(ctx context.Context, sourceName string) error {
	for _, provider := range s.providers {
		if provider.SourceName() != sourceName {
			continue
		}
		return domain.Recover(s.syncProvider(ctx, provider), domain.ErrSyncProvider)
	}
	return domain.ErrSyncGeneral(fmt.Sprintf("источник %s не настроен", sourceName), nil)
}

func (s *Service) syncProvider(ctx context.Context, provider domain.ExternalProvider) error {
	// Ошибка источника уже доменная (внешняя интеграция) и проходит как есть.
	externalPosts, err := provider.FetchLatest(ctx)
	if err != nil {
		return err
	}

	for _, ext := range externalPosts {
		exists, err := s.posts.ExistsByExternalID(ctx, ext.ExternalID)
		if err != nil {
			return domain.Recover(err, domain.ErrSyncPersistence)
		}
		if exists {
			metrics.IncSyncItem(provider.SourceName(), "skipped")
			continue
		}

		title := ext.Title
		if title == "" {
			title = fmt.Sprintf("Communiqué %s", provider.SourceName())
		}
		post := domain.Post{
			ID:         uuid.New(),
			AuthorID:   domain.SystemAuthorID,
			Title:      title,
			Content:    ext.Content,
			Category:   domain.PostCategoryOfficial,
			Status:     domain.PostStatusPublished,
			Source:     domain.PostSourceExternalOfficial,
			ExternalID: ext.ExternalID,
			OriginName: provider.SourceName(),
			CreatedAt:  ext.Date,
			Visibility: domain.VisibilityScope{Establishment: provider.TargetEstablishment()},
		}

		// Сбой сохранения прерывает оставшийся обход, частичного продолжения нет.
		if _, err := s.posts.SavePost(ctx, post); err != nil {
			return domain.Recover(err, domain.ErrSyncPersistence)
		}
		metrics.IncSyncItem(provider.SourceName(), "saved")
	}
	return nil
}

// OnceKey строит ключ блокировки планировщика: один запуск на источник
// в пределах минуты.
func OnceKey(source string, at time.Time) string {
	return fmt.Sprintf("sync:once:%s:%s", source, at.UTC().Format("2006-01-02T15:04"))
}

package validation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wanda-feed/internal/domain"
	"wanda-feed/internal/infra/metrics"
)

const (
	// publicationThreshold — сколько подтверждений публикует пост из PENDING.
	publicationThreshold = 5
	// suspicionThreshold — сколько опровержений переводит пост в SUSPECT.
	suspicionThreshold = 3
)

// Service реализует общественную проверку фактов: приём голосов, влияние на
// репутацию автора и пересчёт статуса поста по порогам консенсуса.
//
// Проверка повторного голоса и пересчёт порогов выполняются без блокировок:
// конкурирующие вызовы по одному посту могут обогнать друг друга между чтением
// и записью. Гонка унаследована от исходных правил и принята как есть.
type Service struct {
	validations domain.ValidationRepo
	posts       domain.PostRepo
	users       domain.UserService
}

// NewService создаёт сервис проверки фактов.
func NewService(validations domain.ValidationRepo, posts domain.PostRepo, users domain.UserService) *Service {
	return &Service{validations: validations, posts: posts, users: users}
}

// ValidatePost записывает голос проверяющего. Шаги выполняются строго по
// порядку; сбой на любом шаге прерывает последующие, но не откатывает уже
// выполненные (компенсирующих транзакций нет).
func (s *Service) ValidatePost(ctx context.Context, validatorID, postID uuid.UUID, validationType domain.ValidationType) (domain.Validation, error) {
	saved, err := s.validatePost(ctx, validatorID, postID, validationType)
	if err != nil {
		return domain.Validation{}, domain.Recover(err, domain.ErrValidationActionFailed)
	}
	metrics.IncValidation(string(validationType))
	return saved, nil
}

func (s *Service) validatePost(ctx context.Context, validatorID, postID uuid.UUID, validationType domain.ValidationType) (domain.Validation, error) {
	post, found, err := s.posts.FindPostByID(ctx, postID)
	if err != nil {
		return domain.Validation{}, err
	}
	if !found {
		return domain.Validation{}, domain.ErrPostNotFound(postID.String())
	}

	if post.AuthorID == validatorID {
		return domain.Validation{}, domain.ErrValidationSelf()
	}

	alreadyValidated, err := s.validations.HasUserValidatedPost(ctx, validatorID, postID)
	if err != nil {
		return domain.Validation{}, err
	}
	if alreadyValidated {
		return domain.Validation{}, domain.ErrValidationDouble(validatorID.String(), postID.String())
	}

	saved, err := s.validations.SaveValidation(ctx, domain.Validation{
		ID:          uuid.New(),
		PostID:      postID,
		ValidatorID: validatorID,
		Type:        validationType,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return domain.Validation{}, err
	}

	impact := domain.TrustImpactPositiveContribution
	if validationType == domain.ValidationTypeRefute {
		impact = domain.TrustImpactFakeNewsPublished
	}
	if _, err := s.users.AdjustUserTrust(ctx, post.AuthorID, impact); err != nil {
		return domain.Validation{}, err
	}

	if err := s.refreshPostStatus(ctx, postID); err != nil {
		return domain.Validation{}, err
	}
	return saved, nil
}

// refreshPostStatus пересчитывает статус поста по порогам консенсуса.
// Архивные посты не пересчитываются; опровержения имеют приоритет над
// подтверждениями, даже когда оба порога достигнуты одновременно.
func (s *Service) refreshPostStatus(ctx context.Context, postID uuid.UUID) error {
	post, found, err := s.posts.FindPostByID(ctx, postID)
	if err != nil || !found {
		return err
	}
	if post.Status == domain.PostStatusArchived {
		return nil
	}

	confirms, err := s.validations.CountValidationsByType(ctx, postID, domain.ValidationTypeConfirm)
	if err != nil {
		return err
	}
	refutes, err := s.validations.CountValidationsByType(ctx, postID, domain.ValidationTypeRefute)
	if err != nil {
		return err
	}

	newStatus := post.Status
	switch {
	case refutes >= suspicionThreshold:
		newStatus = domain.PostStatusSuspect
	case confirms >= publicationThreshold && post.Status == domain.PostStatusPending:
		newStatus = domain.PostStatusPublished
	}

	if newStatus == post.Status {
		return nil
	}
	return s.posts.UpdatePostStatus(ctx, postID, newStatus)
}

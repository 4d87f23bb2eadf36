package validation

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"wanda-feed/internal/domain"
)

type stubValidationRepo struct {
	alreadyValidated bool
	confirms         int
	refutes          int
	saved            []domain.Validation
}

func (s *stubValidationRepo) SaveValidation(_ context.Context, validation domain.Validation) (domain.Validation, error) {
	s.saved = append(s.saved, validation)
	return validation, nil
}

func (s *stubValidationRepo) HasUserValidatedPost(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return s.alreadyValidated, nil
}

func (s *stubValidationRepo) ListValidationsByPost(context.Context, uuid.UUID) ([]domain.Validation, error) {
	return s.saved, nil
}

func (s *stubValidationRepo) CountValidationsByType(_ context.Context, _ uuid.UUID, validationType domain.ValidationType) (int, error) {
	if validationType == domain.ValidationTypeConfirm {
		return s.confirms, nil
	}
	return s.refutes, nil
}

type stubPostRepo struct {
	post          domain.Post
	found         bool
	statusUpdates []domain.PostStatus
}

func (s *stubPostRepo) FindPostByID(context.Context, uuid.UUID) (domain.Post, bool, error) {
	return s.post, s.found, nil
}

func (s *stubPostRepo) SavePost(_ context.Context, post domain.Post) (domain.Post, error) {
	return post, nil
}

func (s *stubPostRepo) UpdatePostStatus(_ context.Context, _ uuid.UUID, status domain.PostStatus) error {
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

func (s *stubPostRepo) DeletePost(context.Context, uuid.UUID) error { return nil }
func (s *stubPostRepo) ExistsByExternalID(context.Context, string) (bool, error) {
	return false, nil
}

type stubUsers struct {
	impacts []domain.TrustImpact
	err     error
}

func (s *stubUsers) GetUserProfile(context.Context, uuid.UUID) (domain.User, error) {
	return domain.User{}, s.err
}

func (s *stubUsers) AdjustUserTrust(_ context.Context, _ uuid.UUID, impact domain.TrustImpact) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	s.impacts = append(s.impacts, impact)
	return domain.User{}, nil
}

func newPost(status domain.PostStatus) domain.Post {
	return domain.Post{ID: uuid.New(), AuthorID: uuid.New(), Status: status}
}

func TestValidatePostConfirm(t *testing.T) {
	posts := &stubPostRepo{post: newPost(domain.PostStatusPublished), found: true}
	validations := &stubValidationRepo{confirms: 1}
	users := &stubUsers{}
	service := NewService(validations, posts, users)

	saved, err := service.ValidatePost(context.Background(), uuid.New(), posts.post.ID, domain.ValidationTypeConfirm)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if saved.Type != domain.ValidationTypeConfirm {
		t.Fatalf("ожидали голос CONFIRM, получили %s", saved.Type)
	}
	if len(users.impacts) != 1 || users.impacts[0] != domain.TrustImpactPositiveContribution {
		t.Fatalf("подтверждение поощряет автора, получили %v", users.impacts)
	}
	if len(posts.statusUpdates) != 0 {
		t.Fatalf("ниже порога статус не меняется, получили %v", posts.statusUpdates)
	}
}

func TestValidatePostRefutePenalizesAuthor(t *testing.T) {
	posts := &stubPostRepo{post: newPost(domain.PostStatusPublished), found: true}
	validations := &stubValidationRepo{refutes: 1}
	users := &stubUsers{}
	service := NewService(validations, posts, users)

	_, err := service.ValidatePost(context.Background(), uuid.New(), posts.post.ID, domain.ValidationTypeRefute)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(users.impacts) != 1 || users.impacts[0] != domain.TrustImpactFakeNewsPublished {
		t.Fatalf("опровержение бьёт по автору, получили %v", users.impacts)
	}
}

func TestValidatePostNotFound(t *testing.T) {
	service := NewService(&stubValidationRepo{}, &stubPostRepo{}, &stubUsers{})

	_, err := service.ValidatePost(context.Background(), uuid.New(), uuid.New(), domain.ValidationTypeConfirm)
	if domain.KindOf(err) != domain.KindPostNotFound {
		t.Fatalf("ожидали отсутствие поста, получили %v", err)
	}
}

func TestValidatePostSelfForbidden(t *testing.T) {
	post := newPost(domain.PostStatusPublished)
	posts := &stubPostRepo{post: post, found: true}
	validations := &stubValidationRepo{}
	service := NewService(validations, posts, &stubUsers{})

	_, err := service.ValidatePost(context.Background(), post.AuthorID, post.ID, domain.ValidationTypeConfirm)
	if domain.KindOf(err) != domain.KindValidationSelf {
		t.Fatalf("автор не проверяет свой пост, получили %v", err)
	}
	if len(validations.saved) != 0 {
		t.Fatalf("голос автора не записывается")
	}
}

func TestValidatePostDoubleForbidden(t *testing.T) {
	posts := &stubPostRepo{post: newPost(domain.PostStatusPublished), found: true}
	validations := &stubValidationRepo{alreadyValidated: true}
	service := NewService(validations, posts, &stubUsers{})

	_, err := service.ValidatePost(context.Background(), uuid.New(), posts.post.ID, domain.ValidationTypeConfirm)
	if domain.KindOf(err) != domain.KindValidationDouble {
		t.Fatalf("повторный голос запрещён, получили %v", err)
	}
	if len(validations.saved) != 0 {
		t.Fatalf("повторный голос не записывается")
	}
}

func TestFifthConfirmPublishesPendingPost(t *testing.T) {
	posts := &stubPostRepo{post: newPost(domain.PostStatusPending), found: true}
	validations := &stubValidationRepo{confirms: 5}
	service := NewService(validations, posts, &stubUsers{})

	_, err := service.ValidatePost(context.Background(), uuid.New(), posts.post.ID, domain.ValidationTypeConfirm)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts.statusUpdates) != 1 || posts.statusUpdates[0] != domain.PostStatusPublished {
		t.Fatalf("пять подтверждений публикуют пост, получили %v", posts.statusUpdates)
	}
}

func TestRefutesOutweighConfirms(t *testing.T) {
	posts := &stubPostRepo{post: newPost(domain.PostStatusPending), found: true}
	validations := &stubValidationRepo{confirms: 5, refutes: 3}
	service := NewService(validations, posts, &stubUsers{})

	_, err := service.ValidatePost(context.Background(), uuid.New(), posts.post.ID, domain.ValidationTypeRefute)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts.statusUpdates) != 1 || posts.statusUpdates[0] != domain.PostStatusSuspect {
		t.Fatalf("опровержения приоритетнее подтверждений, получили %v", posts.statusUpdates)
	}
}

func TestArchivedPostNotRecomputed(t *testing.T) {
	posts := &stubPostRepo{post: newPost(domain.PostStatusArchived), found: true}
	validations := &stubValidationRepo{confirms: 10, refutes: 10}
	service := NewService(validations, posts, &stubUsers{})

	_, err := service.ValidatePost(context.Background(), uuid.New(), posts.post.ID, domain.ValidationTypeConfirm)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts.statusUpdates) != 0 {
		t.Fatalf("архивный пост не пересчитывается, получили %v", posts.statusUpdates)
	}
}

func TestPublishedPostNotRepublished(t *testing.T) {
	posts := &stubPostRepo{post: newPost(domain.PostStatusPublished), found: true}
	validations := &stubValidationRepo{confirms: 5}
	service := NewService(validations, posts, &stubUsers{})

	_, err := service.ValidatePost(context.Background(), uuid.New(), posts.post.ID, domain.ValidationTypeConfirm)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts.statusUpdates) != 0 {
		t.Fatalf("статус без изменений не перезаписывается, получили %v", posts.statusUpdates)
	}
}

func TestTrustAdjustmentFailureAbortsRecompute(t *testing.T) {
	posts := &stubPostRepo{post: newPost(domain.PostStatusPending), found: true}
	validations := &stubValidationRepo{confirms: 5}
	users := &stubUsers{err: domain.ErrUserPersistence("обрыв соединения", nil)}
	service := NewService(validations, posts, users)

	_, err := service.ValidatePost(context.Background(), uuid.New(), posts.post.ID, domain.ValidationTypeConfirm)
	if err == nil {
		t.Fatalf("ожидали ошибку")
	}
	if len(posts.statusUpdates) != 0 {
		t.Fatalf("после сбоя репутации пересчёт не выполняется")
	}
	if len(validations.saved) != 1 {
		t.Fatalf("уже записанный голос не откатывается")
	}
}

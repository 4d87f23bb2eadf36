package posts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wanda-feed/internal/domain"
)

// Service реализует создание постов и смену их статуса.
type Service struct {
	posts domain.PostRepo
	users domain.UserService
}

// NewService создаёт сервис постов.
func NewService(posts domain.PostRepo, users domain.UserService) *Service {
	return &Service{posts: posts, users: users}
}

// CreatePost создаёт пост сообщества. Стартовый статус и область видимости
// выводятся из роли и репутации автора и после создания не пересматриваются.
func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, title, content string, category domain.PostCategory) (domain.Post, error) {
	post, err := s.createPost(ctx, authorID, title, content, category)
	if err != nil {
		return domain.Post{}, domain.Recover(err, domain.ErrPostPersistence)
	}
	return post, nil
}

func (s *Service) createPost(ctx context.Context, authorID uuid.UUID, title, content string, category domain.PostCategory) (domain.Post, error) {
	author, err := s.users.GetUserProfile(ctx, authorID)
	if err != nil {
		if domain.KindOf(err) == domain.KindUserNotFound {
			return domain.Post{}, domain.ErrPostAuthorNotFound(authorID.String())
		}
		return domain.Post{}, err
	}

	// Делегатам, администраторам и авторам с высокой репутацией — сразу публикация.
	initialStatus := domain.PostStatusPending
	if author.Role == domain.UserRoleAdmin || author.Role == domain.UserRoleDelegate || author.TrustScore.IsHighReliability() {
		initialStatus = domain.PostStatusPublished
	}

	// Администраторы публикуют на весь университет, остальные — в свой факультет.
	visibility := domain.VisibilityScope{}
	if author.Role != domain.UserRoleAdmin {
		visibility = domain.VisibilityScope{Department: author.Department}
	}

	newPost := domain.Post{
		ID:         uuid.New(),
		AuthorID:   authorID,
		Title:      title,
		Content:    content,
		Category:   category,
		Status:     initialStatus,
		CreatedAt:  time.Now().UTC(),
		Source:     domain.PostSourceCommunity,
		Visibility: visibility,
	}
	return s.posts.SavePost(ctx, newPost)
}

// ChangePostStatus переводит пост в новый статус.
func (s *Service) ChangePostStatus(ctx context.Context, postID uuid.UUID, newStatus domain.PostStatus) error {
	return domain.Recover(s.changePostStatus(ctx, postID, newStatus), domain.ErrPostPersistence)
}

func (s *Service) changePostStatus(ctx context.Context, postID uuid.UUID, newStatus domain.PostStatus) error {
	_, found, err := s.posts.FindPostByID(ctx, postID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrPostNotFound(postID.String())
	}
	return s.posts.UpdatePostStatus(ctx, postID, newStatus)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus описывает этап жизненного цикла поста.
type PostStatus string

const (
	PostStatusPending   PostStatus = "PENDING"
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusSuspect   PostStatus = "SUSPECT"
	PostStatusArchived  PostStatus = "ARCHIVED"
)

// PostCategory описывает рубрику поста.
type PostCategory string

const (
	PostCategoryOfficial PostCategory = "OFFICIAL"
	PostCategoryAlert    PostCategory = "ALERT"
	PostCategoryInfo     PostCategory = "INFO"
	PostCategoryEvent    PostCategory = "EVENT"
)

// PostSource описывает происхождение поста.
type PostSource string

const (
	PostSourceCommunity        PostSource = "COMMUNITY"
	PostSourceExternalOfficial PostSource = "EXTERNAL_OFFICIAL"
)

// VisibilityScope ограничивает аудиторию поста. Пустые поля означают
// публикацию на весь университет.
type VisibilityScope struct {
	Establishment Establishment
	Department    Department
}

// IsPublic сообщает, виден ли пост без ограничений.
func (v VisibilityScope) IsPublic() bool {
	return v.Establishment == "" && v.Department == ""
}

// Post описывает публикацию в ленте кампуса.
type Post struct {
	ID         uuid.UUID
	AuthorID   uuid.UUID
	Title      string
	Content    string
	Category   PostCategory
	Status     PostStatus
	CreatedAt  time.Time
	UpVotes    int
	DownVotes  int
	Source     PostSource
	ExternalID string
	OriginName string
	Visibility VisibilityScope
}

// TotalScore возвращает сводный балл голосования. Значение всегда производное,
// отдельно оно не хранится.
func (p Post) TotalScore() int { return p.UpVotes - p.DownVotes }

// CanBeAutoPublished сообщает, публикуется ли пост без премодерации.
func (p Post) CanBeAutoPublished(authorTrustScore int) bool {
	return authorTrustScore >= highReliabilityThreshold || p.Source == PostSourceExternalOfficial
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepo управляет пользователями. Методы поиска сообщают об отсутствии
// записи флагом, а не ошибкой: отсутствие — часть бизнес-правил.
type UserRepo interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (User, bool, error)
	FindUserByMatricule(ctx context.Context, matricule string) (User, bool, error)
	SaveUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListUsersByDepartment(ctx context.Context, department Department) ([]User, error)
}

// PostRepo управляет постами.
type PostRepo interface {
	FindPostByID(ctx context.Context, id uuid.UUID) (Post, bool, error)
	SavePost(ctx context.Context, post Post) (Post, error)
	UpdatePostStatus(ctx context.Context, id uuid.UUID, status PostStatus) error
	DeletePost(ctx context.Context, id uuid.UUID) error
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
}

// ReportRepo управляет жалобами.
type ReportRepo interface {
	SaveReport(ctx context.Context, report Report) (Report, error)
	FindReportByID(ctx context.Context, id uuid.UUID) (Report, bool, error)
	ListPendingReports(ctx context.Context, establishment Establishment) ([]Report, error)
	UpdateReportStatus(ctx context.Context, id uuid.UUID, status ReportStatus) error
	CountReportsForPost(ctx context.Context, postID uuid.UUID) (int64, error)
	ExistsByReporterAndPost(ctx context.Context, reporterID, postID uuid.UUID) (bool, error)
}

// ValidationRepo управляет голосами проверки фактов.
type ValidationRepo interface {
	SaveValidation(ctx context.Context, validation Validation) (Validation, error)
	HasUserValidatedPost(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	ListValidationsByPost(ctx context.Context, postID uuid.UUID) ([]Validation, error)
	CountValidationsByType(ctx context.Context, postID uuid.UUID, validationType ValidationType) (int, error)
}

// UserService — операции над профилями, которые нужны другим сервисам движка.
type UserService interface {
	GetUserProfile(ctx context.Context, userID uuid.UUID) (User, error)
	AdjustUserTrust(ctx context.Context, userID uuid.UUID, impact TrustImpact) (User, error)
}

// Cache используется для TTL-блокировок между экземплярами планировщика.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
}

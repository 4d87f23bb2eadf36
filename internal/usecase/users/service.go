package users

import (
	"context"

	"github.com/google/uuid"

	"wanda-feed/internal/domain"
)

// Service реализует правила работы с профилями: регистрацию, повышение роли
// и эволюцию репутации.
type Service struct {
	repo domain.UserRepo
}

var _ domain.UserService = (*Service)(nil)

// NewService создаёт сервис пользователей.
func NewService(repo domain.UserRepo) *Service {
	return &Service{repo: repo}
}

// RegisterUser регистрирует студента с ролью STUDENT и стартовой репутацией.
func (s *Service) RegisterUser(ctx context.Context, matricule, fullName string, department domain.Department, level string) (domain.User, error) {
	user, err := s.registerUser(ctx, matricule, fullName, department, level)
	if err != nil {
		return domain.User{}, domain.Recover(err, domain.ErrUserPersistence)
	}
	return user, nil
}

func (s *Service) registerUser(ctx context.Context, matricule, fullName string, department domain.Department, level string) (domain.User, error) {
	_, exists, err := s.repo.FindUserByMatricule(ctx, matricule)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, domain.ErrUserAlreadyExists(matricule)
	}

	newUser := domain.User{
		ID:         uuid.New(),
		Matricule:  matricule,
		FullName:   fullName,
		Department: department,
		Level:      level,
		Role:       domain.UserRoleStudent,
		TrustScore: domain.TrustScoreDefault,
	}
	return s.repo.SaveUser(ctx, newUser)
}

// PromoteToDelegate повышает студента до делегата. Право повышать есть только
// у администратора; делегат получает максимальную репутацию.
func (s *Service) PromoteToDelegate(ctx context.Context, adminID, targetStudentID uuid.UUID) (domain.User, error) {
	user, err := s.promoteToDelegate(ctx, adminID, targetStudentID)
	if err != nil {
		return domain.User{}, domain.Recover(err, domain.ErrUserPersistence)
	}
	return user, nil
}

func (s *Service) promoteToDelegate(ctx context.Context, adminID, targetStudentID uuid.UUID) (domain.User, error) {
	admin, err := s.GetUserProfile(ctx, adminID)
	if err != nil {
		return domain.User{}, err
	}
	if admin.Role != domain.UserRoleAdmin {
		return domain.User{}, domain.ErrUserUnauthorized(adminID.String())
	}

	student, err := s.GetUserProfile(ctx, targetStudentID)
	if err != nil {
		return domain.User{}, err
	}

	promoted := student
	promoted.Role = domain.UserRoleDelegate
	promoted.TrustScore = domain.TrustScoreMax
	return s.repo.SaveUser(ctx, promoted)
}

// AdjustUserTrust применяет событие репутации к пользователю. Итоговая оценка
// зажимается в диапазон [0,100].
func (s *Service) AdjustUserTrust(ctx context.Context, userID uuid.UUID, impact domain.TrustImpact) (domain.User, error) {
	user, err := s.adjustUserTrust(ctx, userID, impact)
	if err != nil {
		return domain.User{}, domain.Recover(err, domain.ErrUserPersistence)
	}
	return user, nil
}

func (s *Service) adjustUserTrust(ctx context.Context, userID uuid.UUID, impact domain.TrustImpact) (domain.User, error) {
	user, err := s.GetUserProfile(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return s.repo.SaveUser(ctx, user.AdjustReputation(impact.Points()))
}

// GetUserProfile возвращает профиль пользователя.
func (s *Service) GetUserProfile(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	user, found, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, domain.Recover(err, domain.ErrUserPersistence)
	}
	if !found {
		return domain.User{}, domain.ErrUserNotFound(userID.String())
	}
	return user, nil
}

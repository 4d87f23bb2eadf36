package moderation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wanda-feed/internal/domain"
	"wanda-feed/internal/infra/metrics"
)

// autoQuarantineThreshold — сколько жалоб отправляет пост в карантин автоматически.
const autoQuarantineThreshold = 5

// Service реализует модерацию: приём жалоб с защитой от спама, автоматический
// карантин и ручное подтверждение или отклонение жалобы администратором.
//
// Подсчёт жалоб и проверка дубликатов не атомарны между конкурирующими
// вызовами; гонка унаследована от исходных правил и принята как есть.
type Service struct {
	reports domain.ReportRepo
	posts   domain.PostRepo
	users   domain.UserService
}

// NewService создаёт сервис модерации.
func NewService(reports domain.ReportRepo, posts domain.PostRepo, users domain.UserService) *Service {
	return &Service{reports: reports, posts: posts, users: users}
}

// ReportPost регистрирует жалобу. Повторная жалоба того же пользователя на тот
// же пост отклоняется; при достижении порога пост архивируется автоматически.
func (s *Service) ReportPost(ctx context.Context, reporterID, postID uuid.UUID, reason domain.ReportReason, details string) (domain.Report, error) {
	report, err := s.reportPost(ctx, reporterID, postID, reason, details)
	if err != nil {
		return domain.Report{}, domain.Recover(err, domain.ErrReportPersistence)
	}
	metrics.IncReport(string(reason))
	return report, nil
}

func (s *Service) reportPost(ctx context.Context, reporterID, postID uuid.UUID, reason domain.ReportReason, details string) (domain.Report, error) {
	exists, err := s.reports.ExistsByReporterAndPost(ctx, reporterID, postID)
	if err != nil {
		return domain.Report{}, err
	}
	if exists {
		return domain.Report{}, domain.ErrReportDuplicate(reporterID.String(), postID.String())
	}

	saved, err := s.reports.SaveReport(ctx, domain.Report{
		ID:         uuid.New(),
		ReporterID: reporterID,
		PostID:     postID,
		Reason:     reason,
		Details:    details,
		Status:     domain.ReportStatusPending,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.Report{}, err
	}

	count, err := s.reports.CountReportsForPost(ctx, postID)
	if err != nil {
		return domain.Report{}, err
	}
	if count >= autoQuarantineThreshold {
		if err := s.posts.UpdatePostStatus(ctx, postID, domain.PostStatusArchived); err != nil {
			return domain.Report{}, err
		}
		metrics.IncAutoQuarantine()
	}
	return saved, nil
}

// ConfirmReport подтверждает жалобу: санкция к репутации автора поста,
// удаление поста и закрытие жалобы как VALIDATED.
func (s *Service) ConfirmReport(ctx context.Context, adminID, reportID uuid.UUID) error {
	return domain.Recover(s.confirmReport(ctx, adminID, reportID), domain.ErrReportActionFailed)
}

func (s *Service) confirmReport(ctx context.Context, adminID, reportID uuid.UUID) error {
	report, found, err := s.reports.FindReportByID(ctx, reportID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrReportNotFound(reportID.String())
	}

	post, found, err := s.posts.FindPostByID(ctx, report.PostID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrPostNotFound(report.PostID.String())
	}

	// Фейковые новости бьют по автору, остальные причины поощряют хорошие жалобы.
	impact := domain.TrustImpactReportValidated
	if report.Reason == domain.ReportReasonFakeNews {
		impact = domain.TrustImpactFakeNewsPublished
	}
	if _, err := s.users.AdjustUserTrust(ctx, post.AuthorID, impact); err != nil {
		return err
	}

	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		return err
	}
	return s.reports.UpdateReportStatus(ctx, reportID, domain.ReportStatusValidated)
}

// RejectReport отклоняет жалобу и возвращает пост в PUBLISHED. Репутация
// не затрагивается.
func (s *Service) RejectReport(ctx context.Context, reportID uuid.UUID) error {
	return domain.Recover(s.rejectReport(ctx, reportID), domain.ErrReportActionFailed)
}

func (s *Service) rejectReport(ctx context.Context, reportID uuid.UUID) error {
	report, found, err := s.reports.FindReportByID(ctx, reportID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrReportNotFound(reportID.String())
	}

	if err := s.posts.UpdatePostStatus(ctx, report.PostID, domain.PostStatusPublished); err != nil {
		return err
	}
	return s.reports.UpdateReportStatus(ctx, reportID, domain.ReportStatusRejected)
}

package moderation

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"wanda-feed/internal/domain"
)

type stubReportRepo struct {
	alreadyReported bool
	report          domain.Report
	reportFound     bool
	count           int64
	saved           []domain.Report
	statusUpdates   []domain.ReportStatus
}

func (s *stubReportRepo) SaveReport(_ context.Context, report domain.Report) (domain.Report, error) {
	s.saved = append(s.saved, report)
	return report, nil
}

func (s *stubReportRepo) FindReportByID(context.Context, uuid.UUID) (domain.Report, bool, error) {
	return s.report, s.reportFound, nil
}

func (s *stubReportRepo) ListPendingReports(context.Context, domain.Establishment) ([]domain.Report, error) {
	return nil, nil
}

func (s *stubReportRepo) UpdateReportStatus(_ context.Context, _ uuid.UUID, status domain.ReportStatus) error {
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

func (s *stubReportRepo) CountReportsForPost(context.Context, uuid.UUID) (int64, error) {
	return s.count, nil
}

func (s *stubReportRepo) ExistsByReporterAndPost(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return s.alreadyReported, nil
}

type stubPostRepo struct {
	post          domain.Post
	found         bool
	deleted       []uuid.UUID
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

func (s *stubPostRepo) DeletePost(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPostRepo) ExistsByExternalID(context.Context, string) (bool, error) {
	return false, nil
}

type stubUsers struct {
	impacts []domain.TrustImpact
	targets []uuid.UUID
}

func (s *stubUsers) GetUserProfile(context.Context, uuid.UUID) (domain.User, error) {
	return domain.User{}, nil
}

func (s *stubUsers) AdjustUserTrust(_ context.Context, userID uuid.UUID, impact domain.TrustImpact) (domain.User, error) {
	s.impacts = append(s.impacts, impact)
	s.targets = append(s.targets, userID)
	return domain.User{}, nil
}

func TestReportPostSaved(t *testing.T) {
	reports := &stubReportRepo{count: 1}
	posts := &stubPostRepo{}
	service := NewService(reports, posts, &stubUsers{})

	report, err := service.ReportPost(context.Background(), uuid.New(), uuid.New(), domain.ReportReasonSpam, "реклама курсов")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if report.Status != domain.ReportStatusPending {
		t.Fatalf("новая жалоба ждёт рассмотрения, получили %s", report.Status)
	}
	if len(reports.saved) != 1 {
		t.Fatalf("ожидали одну запись, получили %d", len(reports.saved))
	}
	if len(posts.statusUpdates) != 0 {
		t.Fatalf("ниже порога карантина нет, получили %v", posts.statusUpdates)
	}
}

func TestReportPostDuplicate(t *testing.T) {
	reports := &stubReportRepo{alreadyReported: true}
	service := NewService(reports, &stubPostRepo{}, &stubUsers{})

	_, err := service.ReportPost(context.Background(), uuid.New(), uuid.New(), domain.ReportReasonSpam, "")
	if domain.KindOf(err) != domain.KindReportDuplicate {
		t.Fatalf("повторная жалоба запрещена, получили %v", err)
	}
	if len(reports.saved) != 0 {
		t.Fatalf("повторная жалоба не записывается")
	}
}

func TestReportPostAutoQuarantine(t *testing.T) {
	reports := &stubReportRepo{count: 5}
	posts := &stubPostRepo{}
	service := NewService(reports, posts, &stubUsers{})

	_, err := service.ReportPost(context.Background(), uuid.New(), uuid.New(), domain.ReportReasonHarassment, "")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts.statusUpdates) != 1 || posts.statusUpdates[0] != domain.PostStatusArchived {
		t.Fatalf("пятая жалоба архивирует пост, получили %v", posts.statusUpdates)
	}
}

func TestReportPostNoQuarantineBelowThreshold(t *testing.T) {
	reports := &stubReportRepo{count: 4}
	posts := &stubPostRepo{}
	service := NewService(reports, posts, &stubUsers{})

	_, err := service.ReportPost(context.Background(), uuid.New(), uuid.New(), domain.ReportReasonHarassment, "")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts.statusUpdates) != 0 {
		t.Fatalf("до порога карантина нет, получили %v", posts.statusUpdates)
	}
}

func TestConfirmReportFakeNews(t *testing.T) {
	authorID := uuid.New()
	post := domain.Post{ID: uuid.New(), AuthorID: authorID, Status: domain.PostStatusPublished}
	reports := &stubReportRepo{
		report:      domain.Report{ID: uuid.New(), PostID: post.ID, Reason: domain.ReportReasonFakeNews},
		reportFound: true,
	}
	posts := &stubPostRepo{post: post, found: true}
	users := &stubUsers{}
	service := NewService(reports, posts, users)

	if err := service.ConfirmReport(context.Background(), uuid.New(), reports.report.ID); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(users.impacts) != 1 || users.impacts[0] != domain.TrustImpactFakeNewsPublished {
		t.Fatalf("фейковые новости бьют по автору, получили %v", users.impacts)
	}
	if len(users.targets) != 1 || users.targets[0] != authorID {
		t.Fatalf("санкция применяется к автору поста")
	}
	if len(posts.deleted) != 1 || posts.deleted[0] != post.ID {
		t.Fatalf("подтверждённая жалоба удаляет пост")
	}
	if len(reports.statusUpdates) != 1 || reports.statusUpdates[0] != domain.ReportStatusValidated {
		t.Fatalf("жалоба закрывается как VALIDATED, получили %v", reports.statusUpdates)
	}
}

func TestConfirmReportOtherReason(t *testing.T) {
	post := domain.Post{ID: uuid.New(), AuthorID: uuid.New()}
	reports := &stubReportRepo{
		report:      domain.Report{ID: uuid.New(), PostID: post.ID, Reason: domain.ReportReasonSpam},
		reportFound: true,
	}
	posts := &stubPostRepo{post: post, found: true}
	users := &stubUsers{}
	service := NewService(reports, posts, users)

	if err := service.ConfirmReport(context.Background(), uuid.New(), reports.report.ID); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(users.impacts) != 1 || users.impacts[0] != domain.TrustImpactReportValidated {
		t.Fatalf("для прочих причин применяется REPORT_VALIDATED, получили %v", users.impacts)
	}
}

func TestConfirmReportNotFound(t *testing.T) {
	service := NewService(&stubReportRepo{}, &stubPostRepo{}, &stubUsers{})

	err := service.ConfirmReport(context.Background(), uuid.New(), uuid.New())
	if domain.KindOf(err) != domain.KindReportNotFound {
		t.Fatalf("ожидали отсутствие жалобы, получили %v", err)
	}
}

func TestConfirmReportPostMissing(t *testing.T) {
	reports := &stubReportRepo{
		report:      domain.Report{ID: uuid.New(), PostID: uuid.New()},
		reportFound: true,
	}
	service := NewService(reports, &stubPostRepo{}, &stubUsers{})

	err := service.ConfirmReport(context.Background(), uuid.New(), reports.report.ID)
	if domain.KindOf(err) != domain.KindPostNotFound {
		t.Fatalf("ожидали отсутствие поста, получили %v", err)
	}
}

func TestRejectReportRestoresPost(t *testing.T) {
	reports := &stubReportRepo{
		report:      domain.Report{ID: uuid.New(), PostID: uuid.New()},
		reportFound: true,
	}
	posts := &stubPostRepo{}
	users := &stubUsers{}
	service := NewService(reports, posts, users)

	if err := service.RejectReport(context.Background(), reports.report.ID); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(posts.statusUpdates) != 1 || posts.statusUpdates[0] != domain.PostStatusPublished {
		t.Fatalf("отклонённая жалоба возвращает пост в PUBLISHED, получили %v", posts.statusUpdates)
	}
	if len(reports.statusUpdates) != 1 || reports.statusUpdates[0] != domain.ReportStatusRejected {
		t.Fatalf("жалоба закрывается как REJECTED, получили %v", reports.statusUpdates)
	}
	if len(users.impacts) != 0 {
		t.Fatalf("отклонение не трогает репутацию, получили %v", users.impacts)
	}
}

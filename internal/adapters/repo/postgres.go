package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wanda-feed/internal/domain"
	"wanda-feed/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.UserRepo       = (*Postgres)(nil)
	_ domain.PostRepo       = (*Postgres)(nil)
	_ domain.ReportRepo     = (*Postgres)(nil)
	_ domain.ValidationRepo = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

const userColumns = "id, matricule, full_name, role, department, level, trust_score"

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user  domain.User
		score int
	)
	if err := row.Scan(&user.ID, &user.Matricule, &user.FullName, &user.Role, &user.Department, &user.Level, &score); err != nil {
		return domain.User{}, err
	}
	trust, err := domain.NewTrustScore(score)
	if err != nil {
		return domain.User{}, fmt.Errorf("битая оценка доверия в БД: %w", err)
	}
	user.TrustScore = trust
	return user, nil
}

// FindUserByID реализует domain.UserRepo.
func (p *Postgres) FindUserByID(ctx context.Context, id uuid.UUID) (domain.User, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	user, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	metrics.ObserveNetworkRequest("postgres", "users_find_by_id", "users", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return user, true, nil
}

// FindUserByMatricule реализует domain.UserRepo.
func (p *Postgres) FindUserByMatricule(ctx context.Context, matricule string) (domain.User, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	user, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE matricule = $1`, matricule))
	metrics.ObserveNetworkRequest("postgres", "users_find_by_matricule", "users", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return user, true, nil
}

// SaveUser реализует domain.UserRepo как upsert по идентификатору.
func (p *Postgres) SaveUser(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO users (id, matricule, full_name, role, department, level, trust_score)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, role = EXCLUDED.role, department = EXCLUDED.department, level = EXCLUDED.level, trust_score = EXCLUDED.trust_score, updated_at = now()
`, user.ID, user.Matricule, user.FullName, user.Role, user.Department, user.Level, user.TrustScore.Value())
	metrics.ObserveNetworkRequest("postgres", "users_upsert", "users", start, err)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// DeleteUser реализует domain.UserRepo.
func (p *Postgres) DeleteUser(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", "users_delete", "users", start, err)
	return err
}

// ListUsersByDepartment реализует domain.UserRepo.
func (p *Postgres) ListUsersByDepartment(ctx context.Context, department domain.Department) ([]domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE department = $1 ORDER BY full_name`, department)
	metrics.ObserveNetworkRequest("postgres", "users_list_by_department", "users", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

const postColumns = "id, author_id, title, content, category, status, created_at, up_votes, down_votes, source, external_id, origin_name, establishment, department"

func scanPost(row pgx.Row) (domain.Post, error) {
	var (
		post          domain.Post
		externalID    sql.NullString
		originName    sql.NullString
		establishment sql.NullString
		department    sql.NullString
	)
	err := row.Scan(&post.ID, &post.AuthorID, &post.Title, &post.Content, &post.Category, &post.Status, &post.CreatedAt,
		&post.UpVotes, &post.DownVotes, &post.Source, &externalID, &originName, &establishment, &department)
	if err != nil {
		return domain.Post{}, err
	}
	post.ExternalID = externalID.String
	post.OriginName = originName.String
	post.Visibility = domain.VisibilityScope{
		Establishment: domain.Establishment(establishment.String),
		Department:    domain.Department(department.String),
	}
	return post, nil
}

// FindPostByID реализует domain.PostRepo.
func (p *Postgres) FindPostByID(ctx context.Context, id uuid.UUID) (domain.Post, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	post, err := scanPost(p.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	metrics.ObserveNetworkRequest("postgres", "posts_find_by_id", "posts", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, false, nil
	}
	if err != nil {
		return domain.Post{}, false, err
	}
	return post, true, nil
}

// SavePost реализует domain.PostRepo как upsert по идентификатору.
func (p *Postgres) SavePost(ctx context.Context, post domain.Post) (domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO posts (id, author_id, title, content, category, status, created_at, up_votes, down_votes, source, external_id, origin_name, establishment, department)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11,''), NULLIF($12,''), NULLIF($13,''), NULLIF($14,''))
ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content, category = EXCLUDED.category, status = EXCLUDED.status, up_votes = EXCLUDED.up_votes, down_votes = EXCLUDED.down_votes
`, post.ID, post.AuthorID, post.Title, post.Content, post.Category, post.Status, post.CreatedAt,
		post.UpVotes, post.DownVotes, post.Source, post.ExternalID, post.OriginName,
		string(post.Visibility.Establishment), string(post.Visibility.Department))
	metrics.ObserveNetworkRequest("postgres", "posts_upsert", "posts", start, err)
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// UpdatePostStatus реализует domain.PostRepo.
func (p *Postgres) UpdatePostStatus(ctx context.Context, id uuid.UUID, status domain.PostStatus) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE posts SET status = $2 WHERE id = $1`, id, status)
	metrics.ObserveNetworkRequest("postgres", "posts_update_status", "posts", start, err)
	return err
}

// DeletePost реализует domain.PostRepo.
func (p *Postgres) DeletePost(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", "posts_delete", "posts", start, err)
	return err
}

// ExistsByExternalID реализует domain.PostRepo.
func (p *Postgres) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE external_id = $1)`, externalID).Scan(&exists)
	metrics.ObserveNetworkRequest("postgres", "posts_exists_by_external_id", "posts", start, err)
	return exists, err
}

const reportColumns = "id, reporter_id, post_id, reason, details, status, created_at"

func scanReport(row pgx.Row) (domain.Report, error) {
	var (
		report  domain.Report
		details sql.NullString
	)
	err := row.Scan(&report.ID, &report.ReporterID, &report.PostID, &report.Reason, &details, &report.Status, &report.CreatedAt)
	if err != nil {
		return domain.Report{}, err
	}
	report.Details = details.String
	return report, nil
}

// SaveReport реализует domain.ReportRepo.
func (p *Postgres) SaveReport(ctx context.Context, report domain.Report) (domain.Report, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO reports (id, reporter_id, post_id, reason, details, status, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, $7)
`, report.ID, report.ReporterID, report.PostID, report.Reason, report.Details, report.Status, report.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "reports_insert", "reports", start, err)
	if err != nil {
		return domain.Report{}, err
	}
	return report, nil
}

// FindReportByID реализует domain.ReportRepo.
func (p *Postgres) FindReportByID(ctx context.Context, id uuid.UUID) (domain.Report, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	report, err := scanReport(p.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	metrics.ObserveNetworkRequest("postgres", "reports_find_by_id", "reports", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Report{}, false, nil
	}
	if err != nil {
		return domain.Report{}, false, err
	}
	return report, true, nil
}

// ListPendingReports реализует domain.ReportRepo: жалобы в статусе PENDING
// на посты указанного кампуса.
func (p *Postgres) ListPendingReports(ctx context.Context, establishment domain.Establishment) ([]domain.Report, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT r.id, r.reporter_id, r.post_id, r.reason, r.details, r.status, r.created_at
FROM reports r
JOIN posts p ON p.id = r.post_id
WHERE r.status = 'PENDING' AND p.establishment = $1
ORDER BY r.created_at
`, establishment)
	metrics.ObserveNetworkRequest("postgres", "reports_list_pending", "reports", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// UpdateReportStatus реализует domain.ReportRepo.
func (p *Postgres) UpdateReportStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `UPDATE reports SET status = $2 WHERE id = $1`, id, status)
	metrics.ObserveNetworkRequest("postgres", "reports_update_status", "reports", start, err)
	return err
}

// CountReportsForPost реализует domain.ReportRepo.
func (p *Postgres) CountReportsForPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var count int64
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE post_id = $1`, postID).Scan(&count)
	metrics.ObserveNetworkRequest("postgres", "reports_count_for_post", "reports", start, err)
	return count, err
}

// ExistsByReporterAndPost реализует domain.ReportRepo.
func (p *Postgres) ExistsByReporterAndPost(ctx context.Context, reporterID, postID uuid.UUID) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reports WHERE reporter_id = $1 AND post_id = $2)`, reporterID, postID).Scan(&exists)
	metrics.ObserveNetworkRequest("postgres", "reports_exists", "reports", start, err)
	return exists, err
}

// SaveValidation реализует domain.ValidationRepo.
func (p *Postgres) SaveValidation(ctx context.Context, validation domain.Validation) (domain.Validation, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO validations (id, post_id, validator_id, type, created_at)
VALUES ($1, $2, $3, $4, $5)
`, validation.ID, validation.PostID, validation.ValidatorID, validation.Type, validation.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "validations_insert", "validations", start, err)
	if err != nil {
		return domain.Validation{}, err
	}
	return validation, nil
}

// HasUserValidatedPost реализует domain.ValidationRepo.
func (p *Postgres) HasUserValidatedPost(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM validations WHERE validator_id = $1 AND post_id = $2)`, userID, postID).Scan(&exists)
	metrics.ObserveNetworkRequest("postgres", "validations_exists", "validations", start, err)
	return exists, err
}

// ListValidationsByPost реализует domain.ValidationRepo.
func (p *Postgres) ListValidationsByPost(ctx context.Context, postID uuid.UUID) ([]domain.Validation, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT id, post_id, validator_id, type, created_at FROM validations WHERE post_id = $1 ORDER BY created_at`, postID)
	metrics.ObserveNetworkRequest("postgres", "validations_list_by_post", "validations", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var validations []domain.Validation
	for rows.Next() {
		var v domain.Validation
		if err := rows.Scan(&v.ID, &v.PostID, &v.ValidatorID, &v.Type, &v.CreatedAt); err != nil {
			return nil, err
		}
		validations = append(validations, v)
	}
	return validations, rows.Err()
}

// CountValidationsByType реализует domain.ValidationRepo.
func (p *Postgres) CountValidationsByType(ctx context.Context, postID uuid.UUID, validationType domain.ValidationType) (int, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var count int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM validations WHERE post_id = $1 AND type = $2`, postID, validationType).Scan(&count)
	metrics.ObserveNetworkRequest("postgres", "validations_count_by_type", "validations", start, err)
	return count, err
}

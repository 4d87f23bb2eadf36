package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"wanda-feed/internal/adapters/repo"
	"wanda-feed/internal/domain"
	"wanda-feed/internal/infra/config"
	"wanda-feed/internal/infra/db"
	httpinfra "wanda-feed/internal/infra/http"
	applog "wanda-feed/internal/infra/log"
	"wanda-feed/internal/infra/metrics"
	moderationusecase "wanda-feed/internal/usecase/moderation"
	postsusecase "wanda-feed/internal/usecase/posts"
	usersusecase "wanda-feed/internal/usecase/users"
	validationusecase "wanda-feed/internal/usecase/validation"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)
	userService := usersusecase.NewService(repoAdapter)
	postService := postsusecase.NewService(repoAdapter, userService)
	validationService := validationusecase.NewService(repoAdapter, repoAdapter, userService)
	moderationService := moderationusecase.NewService(repoAdapter, repoAdapter, userService)

	server := httpinfra.NewServer(logger.With().Str("component", "api").Logger())
	r := server.Router

	r.Post("/api/v1/users", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Matricule  string `json:"matricule"`
			FullName   string `json:"full_name"`
			Department string `json:"department"`
			Level      string `json:"level"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		user, err := userService.RegisterUser(req.Context(), body.Matricule, body.FullName, domain.Department(body.Department), body.Level)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, userResponse(user))
	})

	r.Get("/api/v1/users", func(w http.ResponseWriter, req *http.Request) {
		department := domain.Department(req.URL.Query().Get("department"))
		list, err := repoAdapter.ListUsersByDepartment(req.Context(), department)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]map[string]any, 0, len(list))
		for _, user := range list {
			out = append(out, userResponse(user))
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Delete("/api/v1/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		userID, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		if err := repoAdapter.DeleteUser(req.Context(), userID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/v1/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		userID, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		user, err := userService.GetUserProfile(req.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userResponse(user))
	})

	r.Post("/api/v1/users/{id}/promote", func(w http.ResponseWriter, req *http.Request) {
		targetID, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		var body struct {
			AdminID uuid.UUID `json:"admin_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		user, err := userService.PromoteToDelegate(req.Context(), body.AdminID, targetID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userResponse(user))
	})

	r.Post("/api/v1/posts", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			AuthorID uuid.UUID `json:"author_id"`
			Title    string    `json:"title"`
			Content  string    `json:"content"`
			Category string    `json:"category"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		post, err := postService.CreatePost(req.Context(), body.AuthorID, body.Title, body.Content, domain.PostCategory(body.Category))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, postResponse(post))
	})

	r.Put("/api/v1/posts/{id}/status", func(w http.ResponseWriter, req *http.Request) {
		postID, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := postService.ChangePostStatus(req.Context(), postID, domain.PostStatus(body.Status)); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/v1/posts/{id}/validations", func(w http.ResponseWriter, req *http.Request) {
		postID, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		var body struct {
			ValidatorID uuid.UUID `json:"validator_id"`
			Type        string    `json:"type"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		validation, err := validationService.ValidatePost(req.Context(), body.ValidatorID, postID, domain.ValidationType(body.Type))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":         validation.ID,
			"post_id":    validation.PostID,
			"type":       validation.Type,
			"created_at": validation.CreatedAt.Format(time.RFC3339),
		})
	})

	r.Post("/api/v1/posts/{id}/reports", func(w http.ResponseWriter, req *http.Request) {
		postID, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		var body struct {
			ReporterID uuid.UUID `json:"reporter_id"`
			Reason     string    `json:"reason"`
			Details    string    `json:"details"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		report, err := moderationService.ReportPost(req.Context(), body.ReporterID, postID, domain.ReportReason(body.Reason), body.Details)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":      report.ID,
			"post_id": report.PostID,
			"reason":  report.Reason,
			"status":  report.Status,
		})
	})

	r.Get("/api/v1/reports/pending", func(w http.ResponseWriter, req *http.Request) {
		establishment := domain.Establishment(req.URL.Query().Get("establishment"))
		list, err := repoAdapter.ListPendingReports(req.Context(), establishment)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]map[string]any, 0, len(list))
		for _, report := range list {
			out = append(out, map[string]any{
				"id":          report.ID,
				"reporter_id": report.ReporterID,
				"post_id":     report.PostID,
				"reason":      report.Reason,
				"details":     report.Details,
				"status":      report.Status,
				"created_at":  report.CreatedAt.Format(time.RFC3339),
			})
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Post("/api/v1/reports/{id}/confirm", func(w http.ResponseWriter, req *http.Request) {
		reportID, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		var body struct {
			AdminID uuid.UUID `json:"admin_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := moderationService.ConfirmReport(req.Context(), body.AdminID, reportID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/v1/reports/{id}/reject", func(w http.ResponseWriter, req *http.Request) {
		reportID, ok := parseID(w, req, "id")
		if !ok {
			return
		}
		if err := moderationService.RejectReport(req.Context(), reportID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")
	go func() {
		log.Info().Msg("api: старт")
		if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("api: сервер остановлен")
		}
	}()
	<-ctx.Done()
	log.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func parseID(w http.ResponseWriter, req *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(req, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.UUID{}, false
	}
	return id, true
}

func userResponse(user domain.User) map[string]any {
	return map[string]any{
		"id":          user.ID,
		"matricule":   user.Matricule,
		"full_name":   user.FullName,
		"role":        user.Role,
		"department":  user.Department,
		"level":       user.Level,
		"trust_score": user.TrustScore.Value(),
	}
}

func postResponse(post domain.Post) map[string]any {
	return map[string]any{
		"id":          post.ID,
		"author_id":   post.AuthorID,
		"title":       post.Title,
		"category":    post.Category,
		"status":      post.Status,
		"source":      post.Source,
		"total_score": post.TotalScore(),
		"visibility": map[string]any{
			"establishment": post.Visibility.Establishment,
			"department":    post.Visibility.Department,
			"public":        post.Visibility.IsPublic(),
		},
		"created_at": post.CreatedAt.Format(time.RFC3339),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError переводит вид доменной ошибки в HTTP статус.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindUserNotFound, domain.KindPostNotFound, domain.KindPostAuthorNotFound, domain.KindReportNotFound:
		status = http.StatusNotFound
	case domain.KindUserAlreadyExists, domain.KindReportDuplicate, domain.KindValidationDouble:
		status = http.StatusConflict
	case domain.KindUserUnauthorized, domain.KindValidationSelf, domain.KindPostUnauthorizedAction:
		status = http.StatusForbidden
	case domain.KindPostContentInvalid:
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error())
}

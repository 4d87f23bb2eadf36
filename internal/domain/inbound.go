package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SystemAuthorID — каноничный идентификатор системного автора, от имени
// которого публикуются импортированные официальные сообщения.
var SystemAuthorID = uuid.MustParse("00000000-0000-0000-0000-000000000000")

// ExternalInboundPost — транзитный элемент, полученный от внешнего источника.
// Напрямую не сохраняется: сервис синхронизации превращает его в Post.
type ExternalInboundPost struct {
	ExternalID string
	Title      string
	Content    string
	Date       time.Time
	RawURL     string
}

// ExternalProvider описывает внешний источник официальных сообщений
// (RSS, портал деканата и т.п.).
type ExternalProvider interface {
	// SourceName возвращает читаемое имя источника.
	SourceName() string
	// TargetEstablishment возвращает кампус, к которому привязываются посты.
	TargetEstablishment() Establishment
	// FetchLatest возвращает свежие записи источника. При сетевой ошибке или
	// ошибке разбора возвращает ошибку вида KindPostExternalIntegration.
	FetchLatest(ctx context.Context) ([]ExternalInboundPost, error)
}

// SyncJobCause описывает, кто запросил синхронизацию.
type SyncJobCause string

const (
	// SyncCauseManual — синхронизация запрошена оператором вручную.
	SyncCauseManual SyncJobCause = "manual"
	// SyncCauseScheduled — синхронизация запланирована по расписанию.
	SyncCauseScheduled SyncJobCause = "scheduled"
)

// SyncJob содержит информацию о задаче синхронизации источника.
type SyncJob struct {
	ID          string       `json:"job_id,omitempty"`
	Source      string       `json:"source,omitempty"`
	RequestedAt time.Time    `json:"requested_at"`
	Cause       SyncJobCause `json:"cause"`
}

// SyncQueue описывает очередь задач синхронизации.
type SyncQueue interface {
	Enqueue(ctx context.Context, job SyncJob) error
	Pop(ctx context.Context) (SyncJob, error)
}

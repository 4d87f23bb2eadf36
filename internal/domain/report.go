package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportReason описывает причину жалобы.
type ReportReason string

const (
	ReportReasonSpam                 ReportReason = "SPAM"
	ReportReasonFakeNews             ReportReason = "FAKE_NEWS"
	ReportReasonHarassment           ReportReason = "HARASSMENT"
	ReportReasonInappropriateContent ReportReason = "INAPPROPRIATE_CONTENT"
	ReportReasonWrongCategory        ReportReason = "WRONG_CATEGORY"
)

// ReportStatus описывает состояние рассмотрения жалобы.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "PENDING"
	ReportStatusValidated ReportStatus = "VALIDATED"
	ReportStatusRejected  ReportStatus = "REJECTED"
)

// Report описывает жалобу пользователя на пост. Уникальность пары
// (автор жалобы, пост) обеспечивает сервис модерации, а не сама запись.
type Report struct {
	ID         uuid.UUID
	ReporterID uuid.UUID
	PostID     uuid.UUID
	Reason     ReportReason
	Details    string
	Status     ReportStatus
	CreatedAt  time.Time
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ValidationType описывает вердикт проверяющего.
type ValidationType string

const (
	ValidationTypeConfirm ValidationType = "CONFIRM"
	ValidationTypeRefute  ValidationType = "REFUTE"
)

// Validation описывает голос участника при проверке фактов поста.
type Validation struct {
	ID          uuid.UUID
	PostID      uuid.UUID
	ValidatorID uuid.UUID
	Type        ValidationType
	CreatedAt   time.Time
}

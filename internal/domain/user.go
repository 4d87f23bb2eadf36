package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// UserRole описывает роль пользователя в системе.
type UserRole string

const (
	UserRoleStudent  UserRole = "STUDENT"
	UserRoleDelegate UserRole = "DELEGATE"
	UserRoleAdmin    UserRole = "ADMIN"
)

// Department описывает факультет или кафедру.
type Department string

const (
	DepartmentComputerScience Department = "COMPUTER_SCIENCE"
	DepartmentPublicLaw       Department = "PUBLIC_LAW"
	DepartmentEconomics       Department = "ECONOMICS"
	DepartmentLetters         Department = "LETTERS"
)

// Establishment описывает кампус университета.
type Establishment string

const (
	EstablishmentIUT  Establishment = "IUT"
	EstablishmentFGI  Establishment = "FGI"
	EstablishmentFSJP Establishment = "FSJP"
)

const (
	trustScoreMin = 0
	trustScoreMax = 100

	// highReliabilityThreshold — порог, начиная с которого автору доверяют без премодерации.
	highReliabilityThreshold = 80
)

// TrustScore — репутация пользователя в диапазоне [0,100].
type TrustScore struct {
	value int
}

// NewTrustScore создаёт оценку и проверяет границы диапазона.
func NewTrustScore(value int) (TrustScore, error) {
	if value < trustScoreMin || value > trustScoreMax {
		return TrustScore{}, fmt.Errorf("оценка доверия %d вне диапазона [%d,%d]", value, trustScoreMin, trustScoreMax)
	}
	return TrustScore{value: value}, nil
}

var (
	// TrustScoreDefault выдаётся при регистрации.
	TrustScoreDefault = TrustScore{value: 50}
	TrustScoreMin     = TrustScore{value: trustScoreMin}
	TrustScoreMax     = TrustScore{value: trustScoreMax}
)

// Value возвращает численное значение оценки.
func (s TrustScore) Value() int { return s.value }

// IsHighReliability сообщает, достаточно ли высока репутация для автопубликации.
func (s TrustScore) IsHighReliability() bool { return s.value >= highReliabilityThreshold }

// TrustImpact описывает событие, влияющее на репутацию.
type TrustImpact string

const (
	TrustImpactFakeNewsPublished    TrustImpact = "FAKE_NEWS_PUBLISHED"
	TrustImpactHarassmentDetected   TrustImpact = "HARASSMENT_DETECTED"
	TrustImpactStrictViolation      TrustImpact = "STRICT_VIOLATION"
	TrustImpactPositiveContribution TrustImpact = "POSITIVE_CONTRIBUTION"
	TrustImpactReportValidated      TrustImpact = "REPORT_VALIDATED"
)

// Points возвращает величину изменения репутации.
func (i TrustImpact) Points() int {
	switch i {
	case TrustImpactFakeNewsPublished:
		return -10
	case TrustImpactHarassmentDetected:
		return -50
	case TrustImpactStrictViolation:
		return -100
	case TrustImpactPositiveContribution:
		return 5
	case TrustImpactReportValidated:
		return 2
	}
	return 0
}

// User описывает зарегистрированного пользователя кампуса.
type User struct {
	ID         uuid.UUID
	Matricule  string
	FullName   string
	Role       UserRole
	Department Department
	Level      string
	TrustScore TrustScore
}

// AdjustReputation возвращает копию пользователя с применённым изменением репутации.
// Значение зажимается в границы диапазона, сама оценка остаётся неизменяемой.
func (u User) AdjustReputation(points int) User {
	next := u.TrustScore.value + points
	if next < trustScoreMin {
		next = trustScoreMin
	}
	if next > trustScoreMax {
		next = trustScoreMax
	}
	updated := u
	updated.TrustScore = TrustScore{value: next}
	return updated
}

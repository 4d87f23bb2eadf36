package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind — дискриминант закрытого набора доменных ошибок. Вызывающая
// сторона сопоставляет именно по виду, текст сообщения — только диагностика.
type ErrorKind string

const (
	// Пользователи.
	KindUserAlreadyExists   ErrorKind = "user_already_exists"
	KindUserNotFound        ErrorKind = "user_not_found"
	KindUserUnauthorized    ErrorKind = "user_unauthorized_admin_action"
	KindUserTrustAdjustment ErrorKind = "user_trust_adjustment"
	KindUserUpdateFailed    ErrorKind = "user_update_failed"
	KindUserPersistence     ErrorKind = "user_persistence_failed"

	// Посты.
	KindPostAuthorNotFound      ErrorKind = "post_author_not_found"
	KindPostNotFound            ErrorKind = "post_not_found"
	KindPostUnauthorizedAction  ErrorKind = "post_unauthorized_action"
	KindPostContentInvalid      ErrorKind = "post_content_invalid"
	KindPostPersistence         ErrorKind = "post_persistence_failed"
	KindPostExternalIntegration ErrorKind = "post_external_integration"

	// Жалобы.
	KindReportNotFound     ErrorKind = "report_not_found"
	KindReportDuplicate    ErrorKind = "report_duplicate"
	KindReportActionFailed ErrorKind = "report_action_failed"
	KindReportPersistence  ErrorKind = "report_persistence_failed"

	// Проверка фактов.
	KindValidationDouble       ErrorKind = "validation_double"
	KindValidationSelf         ErrorKind = "validation_self"
	KindValidationActionFailed ErrorKind = "validation_action_failed"
	KindValidationPersistence  ErrorKind = "validation_persistence_failed"

	// Синхронизация.
	KindSyncProvider    ErrorKind = "sync_provider_error"
	KindSyncPersistence ErrorKind = "sync_persistence_failed"
	KindSyncGeneral     ErrorKind = "sync_general_error"
)

// Error — доменная ошибка: вид, сообщение и исходная причина для диагностики.
type Error struct {
	Kind  ErrorKind
	msg   string
	cause error
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func wrapError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// Error реализует error.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap возвращает исходную причину.
func (e *Error) Unwrap() error { return e.cause }

// KindOf возвращает вид доменной ошибки или пустую строку, если ошибка не доменная.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// Recover — единое правило восстановления: отмена контекста проходит насквозь,
// уже доменная ошибка не переупаковывается, любая другая заворачивается фабрикой
// с сохранением причины.
func Recover(err error, factory func(msg string, cause error) *Error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return err
	}
	return factory(err.Error(), err)
}

// ErrUserAlreadyExists — аккаунт с таким матрикулом уже зарегистрирован.
func ErrUserAlreadyExists(matricule string) *Error {
	return newError(KindUserAlreadyExists, fmt.Sprintf("аккаунт с матрикулом %s уже существует", matricule))
}

// ErrUserNotFound — пользователь не найден.
func ErrUserNotFound(userID string) *Error {
	return newError(KindUserNotFound, fmt.Sprintf("пользователь %s не найден", userID))
}

// ErrUserUnauthorized — действие требует прав администратора.
func ErrUserUnauthorized(adminID string) *Error {
	return newError(KindUserUnauthorized, fmt.Sprintf("пользователь %s не обладает правами администратора", adminID))
}

// ErrUserTrustAdjustment — не удалось изменить репутацию.
func ErrUserTrustAdjustment(userID, reason string) *Error {
	return newError(KindUserTrustAdjustment, fmt.Sprintf("не удалось изменить репутацию пользователя %s: %s", userID, reason))
}

// ErrUserUpdateFailed — не удалось обновить данные пользователя.
func ErrUserUpdateFailed(msg string, cause error) *Error {
	return wrapError(KindUserUpdateFailed, fmt.Sprintf("обновление пользователя: %s", msg), cause)
}

// ErrUserPersistence — сбой хранилища пользователей.
func ErrUserPersistence(msg string, cause error) *Error {
	return wrapError(KindUserPersistence, fmt.Sprintf("хранилище пользователей: %s", msg), cause)
}

// ErrPostAuthorNotFound — автор поста не найден.
func ErrPostAuthorNotFound(authorID string) *Error {
	return newError(KindPostAuthorNotFound, fmt.Sprintf("автор %s не найден", authorID))
}

// ErrPostNotFound — пост не найден.
func ErrPostNotFound(postID string) *Error {
	return newError(KindPostNotFound, fmt.Sprintf("пост %s не найден", postID))
}

// ErrPostUnauthorizedAction — действие над постом запрещено.
func ErrPostUnauthorizedAction(userID string) *Error {
	return newError(KindPostUnauthorizedAction, fmt.Sprintf("пользователю %s запрещено это действие над постом", userID))
}

// ErrPostContentInvalid — содержимое поста не проходит проверку.
func ErrPostContentInvalid(reason string) *Error {
	return newError(KindPostContentInvalid, fmt.Sprintf("недопустимое содержимое поста: %s", reason))
}

// ErrPostPersistence — сбой хранилища постов.
func ErrPostPersistence(msg string, cause error) *Error {
	return wrapError(KindPostPersistence, fmt.Sprintf("хранилище постов: %s", msg), cause)
}

// ErrPostExternalIntegration — сбой при получении данных от внешнего источника.
func ErrPostExternalIntegration(msg string, cause error) *Error {
	return wrapError(KindPostExternalIntegration, fmt.Sprintf("внешний источник: %s", msg), cause)
}

// ErrReportNotFound — жалоба не найдена.
func ErrReportNotFound(reportID string) *Error {
	return newError(KindReportNotFound, fmt.Sprintf("жалоба %s не найдена", reportID))
}

// ErrReportDuplicate — пользователь уже жаловался на этот пост.
func ErrReportDuplicate(reporterID, postID string) *Error {
	return newError(KindReportDuplicate, fmt.Sprintf("пользователь %s уже жаловался на пост %s", reporterID, postID))
}

// ErrReportActionFailed — действие над жалобой не выполнено.
func ErrReportActionFailed(msg string, cause error) *Error {
	return wrapError(KindReportActionFailed, msg, cause)
}

// ErrReportPersistence — сбой хранилища жалоб.
func ErrReportPersistence(msg string, cause error) *Error {
	return wrapError(KindReportPersistence, fmt.Sprintf("хранилище жалоб: %s", msg), cause)
}

// ErrValidationDouble — повторный голос по одному посту.
func ErrValidationDouble(userID, postID string) *Error {
	return newError(KindValidationDouble, fmt.Sprintf("пользователь %s уже проверял пост %s", userID, postID))
}

// ErrValidationSelf — автор не может проверять собственный пост.
func ErrValidationSelf() *Error {
	return newError(KindValidationSelf, "автор не может проверять собственный пост")
}

// ErrValidationActionFailed — проверка не выполнена.
func ErrValidationActionFailed(msg string, cause error) *Error {
	return wrapError(KindValidationActionFailed, msg, cause)
}

// ErrValidationPersistence — сбой хранилища голосов.
func ErrValidationPersistence(msg string, cause error) *Error {
	return wrapError(KindValidationPersistence, fmt.Sprintf("хранилище голосов: %s", msg), cause)
}

// ErrSyncProvider — сбой при опросе внешнего источника.
func ErrSyncProvider(msg string, cause error) *Error {
	return wrapError(KindSyncProvider, fmt.Sprintf("опрос источника: %s", msg), cause)
}

// ErrSyncPersistence — не удалось сохранить импортированный пост.
func ErrSyncPersistence(msg string, cause error) *Error {
	return wrapError(KindSyncPersistence, fmt.Sprintf("сохранение импортированного поста: %s", msg), cause)
}

// ErrSyncGeneral — общий сбой процесса синхронизации.
func ErrSyncGeneral(msg string, cause error) *Error {
	return wrapError(KindSyncGeneral, fmt.Sprintf("синхронизация: %s", msg), cause)
}

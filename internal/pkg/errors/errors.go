package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (нет токена, неверный токен).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния хранилища (unique violation и т.п.).
	ErrConflict = errors.New("resource state conflict")

	// ErrInvalidState используется, когда операция не применима к текущему статусу викторины
	// (ответ вне live-сессии, авто-старт не-scheduled викторины).
	ErrInvalidState = errors.New("invalid quiz state")

	// ErrNotYetTime используется при попытке авто-старта до наступления scheduled_at.
	ErrNotYetTime = errors.New("it is not yet time to start")

	// ErrNotRegistered используется при отправке ответа без регистрации на викторину.
	ErrNotRegistered = errors.New("not registered for this quiz")

	// ErrAlreadyAnswered используется при повторной отправке ответа на уже засчитанный вопрос.
	ErrAlreadyAnswered = errors.New("question already answered")
)

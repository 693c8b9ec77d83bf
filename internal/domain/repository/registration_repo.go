package repository

import (
	"github.com/yourusername/aegis-api/internal/domain/entity"
)

// RegistrationRepository определяет методы для работы с регистрациями на викторины
type RegistrationRepository interface {
	// Create вставляет регистрацию. Повторная регистрация той же пары
	// (user, quiz) возвращает ErrAlreadyRegistered — вызывающий код
	// нормализует ее в успех.
	Create(registration *entity.Registration) error
	GetByUserAndQuiz(userID, quizID uint) (*entity.Registration, error)
	CountByQuiz(quizID uint) (int64, error)
}

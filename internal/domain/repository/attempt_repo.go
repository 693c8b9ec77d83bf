package repository

import (
	"github.com/yourusername/aegis-api/internal/domain/entity"
)

// AttemptRepository определяет методы чтения счета участников.
// Запись счета идет только через AnswerRepository.Record.
type AttemptRepository interface {
	GetByUserAndQuiz(userID, quizID uint) (*entity.Attempt, error)
	// GetLeaderboard возвращает счета участников викторины по убыванию total_points
	GetLeaderboard(quizID uint, limit, offset int) ([]entity.Attempt, int64, error)
}

// AnswerRepository определяет методы для работы с засчитанными ответами
type AnswerRepository interface {
	// Record фиксирует ответ и начисляет очки одной транзакцией: вставка
	// строки ответа и upsert-инкремент счета (INSERT ... ON CONFLICT DO UPDATE
	// SET total_points = total_points + ?) либо фиксируются вместе, либо
	// откатываются вместе — после сбоя ответ можно отправить повторно.
	// Повторный ответ того же пользователя на тот же вопрос нарушает
	// уникальный индекс и возвращает ErrDuplicateAnswer — очки за вопрос
	// начисляются не более одного раза.
	Record(answer *entity.Answer) error
	GetByUserAndQuiz(userID, quizID uint) ([]entity.Answer, error)
}

package repository

import (
	"github.com/yourusername/aegis-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами викторин
type QuestionRepository interface {
	GetByID(id string) (*entity.Question, error)
	// GetByQuizID возвращает вопросы викторины по возрастанию order_index
	GetByQuizID(quizID uint) ([]entity.Question, error)
	CountByQuizID(quizID uint) (int64, error)
}

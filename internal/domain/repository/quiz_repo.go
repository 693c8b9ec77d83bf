package repository

import (
	"github.com/yourusername/aegis-api/internal/domain/entity"
)

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	// Create создает викторину вместе с вопросами атомарно: если вставка
	// вопросов не удалась, викторина не остается в БД.
	Create(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	GetWithQuestions(id uint) (*entity.Quiz, error)
	// GetUpcoming возвращает запланированные викторины по возрастанию scheduled_at
	GetUpcoming() ([]entity.Quiz, error)
	List(limit, offset int) ([]entity.Quiz, error)
	// StartQuiz безусловно переводит викторину в live и сбрасывает
	// current_question_index в 0. Используется только admin-стартом.
	StartQuiz(quizID uint) error
	// AtomicAutoStart атомарно переводит scheduled → live одним условным
	// UPDATE (WHERE status = 'scheduled'). Возвращает (true, nil), если статус
	// изменила именно эта команда, и (false, nil), если RowsAffected == 0 —
	// гонку выиграл другой участник. Никогда не реализуется как
	// "прочитать статус, потом записать".
	AtomicAutoStart(quizID uint) (bool, error)
	Delete(id uint) error
}

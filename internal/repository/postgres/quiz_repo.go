package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/aegis-api/internal/domain/entity"
	apperrors "github.com/yourusername/aegis-api/internal/pkg/errors"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает викторину вместе с вопросами в одной транзакции.
// GORM вставляет ассоциированные Questions тем же Create; при ошибке
// вставки вопросов транзакция откатывается и викторина не сохраняется.
func (r *QuizRepo) Create(quiz *entity.Quiz) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами
func (r *QuizRepo) GetWithQuestions(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC")
	}).First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetUpcoming возвращает запланированные викторины по возрастанию scheduled_at
func (r *QuizRepo) GetUpcoming() ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.Where("status = ?", entity.QuizStatusScheduled).
		Order("scheduled_at ASC").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// List возвращает список викторин с пагинацией, последние запланированные первыми
func (r *QuizRepo) List(limit, offset int) ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.Limit(limit).Offset(offset).Order("scheduled_at DESC").Find(&quizzes).Error
	return quizzes, err
}

// StartQuiz безусловно переводит викторину в live и сбрасывает индекс вопроса.
// Повторный вызов администратором безвреден: статус и индекс просто
// перезаписываются теми же значениями.
func (r *QuizRepo) StartQuiz(quizID uint) error {
	result := r.db.Model(&entity.Quiz{}).
		Where("id = ?", quizID).
		Updates(map[string]interface{}{
			"status":                 entity.QuizStatusLive,
			"current_question_index": 0,
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("start quiz #%d failed: %w", quizID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AtomicAutoStart атомарно переводит scheduled → live одним условным UPDATE.
// Проверка статуса входит в сам UPDATE, поэтому из N одновременных вызовов
// строку меняет ровно один; остальные получают RowsAffected == 0 → (false, nil).
func (r *QuizRepo) AtomicAutoStart(quizID uint) (bool, error) {
	result := r.db.Model(&entity.Quiz{}).
		Where("id = ? AND status = ?", quizID, entity.QuizStatusScheduled).
		Updates(map[string]interface{}{
			"status":                 entity.QuizStatusLive,
			"current_question_index": 0,
		})

	if result.Error != nil {
		return false, fmt.Errorf("auto-start quiz #%d failed: %w", quizID, result.Error)
	}

	return result.RowsAffected > 0, nil
}

// Delete удаляет викторину; связанные строки удаляются каскадом на уровне БД.
func (r *QuizRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Quiz{}, id).Error
}

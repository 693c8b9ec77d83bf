package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/aegis-api/internal/domain/entity"
	"github.com/yourusername/aegis-api/internal/domain/repository"
	apperrors "github.com/yourusername/aegis-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий счета участников
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// GetByUserAndQuiz возвращает счет пользователя для викторины
func (r *AttemptRepo) GetByUserAndQuiz(userID, quizID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetLeaderboard возвращает счета участников викторины по убыванию очков, с total
func (r *AttemptRepo) GetLeaderboard(quizID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	var attempts []entity.Attempt
	var total int64

	if err := r.db.Model(&entity.Attempt{}).Where("quiz_id = ?", quizID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("quiz_id = ?", quizID).
		Order("total_points DESC, updated_at ASC"). // При равных очках выше тот, кто набрал их раньше
		Limit(limit).
		Offset(offset).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Record фиксирует ответ и начисляет очки в одной транзакции: вставка строки
// ответа и upsert-инкремент счета (INSERT ... ON CONFLICT (user_id, quiz_id)
// DO UPDATE SET total_points = quiz_attempts.total_points + EXCLUDED.total_points)
// либо фиксируются вместе, либо откатываются вместе. Без чтения перед
// записью — параллельные ответы одного пользователя на разные вопросы
// не теряют очков. Unique violation (23505) по паре (user, question)
// транслируется в repository.ErrDuplicateAnswer: повторная отправка
// не начисляет очки второй раз.
func (r *AnswerRepo) Record(answer *entity.Answer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(answer).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: user #%d question %s", repository.ErrDuplicateAnswer, answer.UserID, answer.QuestionID)
			}
			return err
		}

		attempt := entity.Attempt{
			UserID:                 answer.UserID,
			QuizID:                 answer.QuizID,
			TotalPoints:            answer.Points,
			LastAnsweredQuestionID: answer.QuestionID,
			IsActive:               true,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "quiz_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_points":              gorm.Expr("quiz_attempts.total_points + ?", answer.Points),
				"last_answered_question_id": answer.QuestionID,
				"updated_at":                gorm.Expr("NOW()"),
			}),
		}).Create(&attempt).Error
		if err != nil {
			return fmt.Errorf("add points for user #%d quiz #%d failed: %w", answer.UserID, answer.QuizID, err)
		}
		return nil
	})
}

// GetByUserAndQuiz возвращает все ответы пользователя для викторины в порядке отправки
func (r *AnswerRepo) GetByUserAndQuiz(userID, quizID uint) ([]entity.Answer, error) {
	var answers []entity.Answer
	err := r.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at ASC").
		Find(&answers).Error
	return answers, err
}

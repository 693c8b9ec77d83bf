package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/aegis-api/internal/domain/entity"
	"github.com/yourusername/aegis-api/internal/domain/repository"
	apperrors "github.com/yourusername/aegis-api/internal/pkg/errors"
)

// RegistrationRepo реализует repository.RegistrationRepository
type RegistrationRepo struct {
	db *gorm.DB
}

// NewRegistrationRepo создает новый репозиторий регистраций
func NewRegistrationRepo(db *gorm.DB) *RegistrationRepo {
	return &RegistrationRepo{db: db}
}

// Create вставляет регистрацию. Unique violation (23505) по паре (user, quiz)
// транслируется в repository.ErrAlreadyRegistered — сервисный слой
// нормализует ее в успех.
func (r *RegistrationRepo) Create(registration *entity.Registration) error {
	err := r.db.Create(registration).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user #%d quiz #%d", repository.ErrAlreadyRegistered, registration.UserID, registration.QuizID)
		}
		return err
	}
	return nil
}

// GetByUserAndQuiz возвращает регистрацию пользователя на викторину
func (r *RegistrationRepo) GetByUserAndQuiz(userID, quizID uint) (*entity.Registration, error) {
	var registration entity.Registration
	err := r.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).First(&registration).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &registration, nil
}

// CountByQuiz возвращает количество регистраций на викторину
func (r *RegistrationRepo) CountByQuiz(quizID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Registration{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

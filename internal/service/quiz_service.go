package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/aegis-api/internal/domain/entity"
	"github.com/yourusername/aegis-api/internal/domain/repository"
	apperrors "github.com/yourusername/aegis-api/internal/pkg/errors"
)

// Ограничения на состав викторины
const (
	MaxQuestionsPerQuiz = 50
	MinTimerSeconds     = 5
	MaxTimerSeconds     = 120
)

// Кеш списка запланированных викторин
const (
	upcomingCacheKey = "quizzes:upcoming"
	upcomingCacheTTL = 10 * time.Second
)

// QuizWithRegistrations объединяет викторину со счетчиком регистраций
// для админского списка
type QuizWithRegistrations struct {
	Quiz              entity.Quiz `json:"quiz"`
	RegistrationCount int64       `json:"registration_count"`
}

// QuizService предоставляет методы создания и чтения викторин
type QuizService struct {
	quizRepo         repository.QuizRepository
	questionRepo     repository.QuestionRepository
	registrationRepo repository.RegistrationRepository
	userRepo         repository.UserRepository
	cacheRepo        repository.CacheRepository
}

// NewQuizService создает новый сервис викторин
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	registrationRepo repository.RegistrationRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
) *QuizService {
	return &QuizService{
		quizRepo:         quizRepo,
		questionRepo:     questionRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		cacheRepo:        cacheRepo,
	}
}

// QuestionInput описывает вопрос при создании викторины
type QuestionInput struct {
	QuestionText string
	Options      []string
	CorrectIndex int
	TimerSeconds int
}

// CreateQuiz создает викторину вместе с вопросами атомарно: если вставка
// вопросов не удалась, викторина не остается в БД. Доступно только
// администраторам — роль перечитывается из БД.
func (s *QuizService) CreateQuiz(createdBy uint, title, description string, durationMinutes int, scheduledAt time.Time, questions []QuestionInput) (*entity.Quiz, error) {
	role, err := s.userRepo.GetRole(createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to check role for user #%d: %w", createdBy, err)
	}
	if role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: admin access required", apperrors.ErrForbidden)
	}

	if scheduledAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: scheduled time must be in the future", apperrors.ErrValidation)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: quiz must contain at least one question", apperrors.ErrValidation)
	}
	if len(questions) > MaxQuestionsPerQuiz {
		return nil, fmt.Errorf("%w: maximum %d questions per quiz", apperrors.ErrValidation, MaxQuestionsPerQuiz)
	}

	quiz := &entity.Quiz{
		Title:           title,
		Description:     description,
		DurationMinutes: durationMinutes,
		ScheduledAt:     scheduledAt,
		Status:          entity.QuizStatusScheduled,
		CreatedBy:       createdBy,
	}

	quiz.Questions = make([]entity.Question, 0, len(questions))
	for i, q := range questions {
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d must have at least 2 options", apperrors.ErrValidation, i+1)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, fmt.Errorf("%w: invalid correct_index %d for question %d", apperrors.ErrValidation, q.CorrectIndex, i+1)
		}
		timer := q.TimerSeconds
		if timer < MinTimerSeconds || timer > MaxTimerSeconds {
			return nil, fmt.Errorf("%w: timer_seconds must be between %d and %d", apperrors.ErrValidation, MinTimerSeconds, MaxTimerSeconds)
		}
		quiz.Questions = append(quiz.Questions, entity.Question{
			QuestionText:       q.QuestionText,
			Options:            entity.StringArray(q.Options),
			CorrectOptionIndex: q.CorrectIndex,
			TimerSeconds:       timer,
			OrderIndex:         i, // Позиция в списке задает порядок показа
		})
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.invalidateUpcomingCache()
	return quiz, nil
}

// invalidateUpcomingCache сбрасывает кеш списка запланированных викторин
func (s *QuizService) invalidateUpcomingCache() {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(upcomingCacheKey); err != nil {
		log.Printf("[QuizService] Не удалось сбросить кеш запланированных викторин: %v", err)
	}
}

// GetQuizByID возвращает викторину по ID
func (s *QuizService) GetQuizByID(quizID uint) (*entity.Quiz, error) {
	return s.quizRepo.GetByID(quizID)
}

// GetQuizDetail возвращает викторину вместе с вопросами для административного
// просмотра: в этом представлении видны правильные ответы, поэтому роль
// перечитывается из БД.
func (s *QuizService) GetQuizDetail(requestedBy, quizID uint) (*entity.Quiz, error) {
	role, err := s.userRepo.GetRole(requestedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to check role for user #%d: %w", requestedBy, err)
	}
	if role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: admin access required", apperrors.ErrForbidden)
	}
	return s.quizRepo.GetWithQuestions(quizID)
}

// DeleteQuiz удаляет викторину; вопросы, регистрации и результаты удаляются
// каскадом на уровне БД. Доступно только администраторам.
func (s *QuizService) DeleteQuiz(requestedBy, quizID uint) error {
	role, err := s.userRepo.GetRole(requestedBy)
	if err != nil {
		return fmt.Errorf("failed to check role for user #%d: %w", requestedBy, err)
	}
	if role != entity.RoleAdmin {
		return fmt.Errorf("%w: admin access required", apperrors.ErrForbidden)
	}
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return err
	}
	if err := s.quizRepo.Delete(quizID); err != nil {
		return err
	}

	s.invalidateUpcomingCache()
	return nil
}

// GetUpcomingQuizzes возвращает запланированные викторины по возрастанию
// времени старта. Список читается через короткий кеш: главная страница
// опрашивает его чаще, чем он меняется.
func (s *QuizService) GetUpcomingQuizzes() ([]entity.Quiz, error) {
	if s.cacheRepo != nil {
		var cached []entity.Quiz
		if err := s.cacheRepo.GetJSON(upcomingCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	quizzes, err := s.quizRepo.GetUpcoming()
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(upcomingCacheKey, quizzes, upcomingCacheTTL); err != nil {
			log.Printf("[QuizService] Не удалось закешировать список запланированных викторин: %v", err)
		}
	}

	return quizzes, nil
}

// ListQuizzesWithRegistrations возвращает викторины со счетчиками регистраций
// для админского списка. Роль перечитывается из БД на каждый вызов.
func (s *QuizService) ListQuizzesWithRegistrations(requestedBy uint, limit, offset int) ([]QuizWithRegistrations, error) {
	role, err := s.userRepo.GetRole(requestedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to check role for user #%d: %w", requestedBy, err)
	}
	if role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: admin access required", apperrors.ErrForbidden)
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	quizzes, err := s.quizRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]QuizWithRegistrations, 0, len(quizzes))
	for _, quiz := range quizzes {
		count, err := s.registrationRepo.CountByQuiz(quiz.ID)
		if err != nil {
			// Деградируем в 0, список важнее точного счетчика
			count = 0
		}
		result = append(result, QuizWithRegistrations{
			Quiz:              quiz,
			RegistrationCount: count,
		})
	}

	return result, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/yourusername/aegis-api/internal/domain/entity"
	"github.com/yourusername/aegis-api/internal/domain/repository"
	apperrors "github.com/yourusername/aegis-api/internal/pkg/errors"
)

// Время жизни кеша счетчика регистраций: лобби опрашивает статус каждую
// секунду, точность счетчика некритична.
const regCountCacheTTL = 5 * time.Second

// SessionStatus объединяет викторину со счетчиком регистраций и флагом
// регистрации текущего пользователя
type SessionStatus struct {
	Quiz              *entity.Quiz `json:"quiz"`
	RegistrationCount int64        `json:"registration_count"`
	QuestionCount     int64        `json:"question_count"`
	IsRegistered      bool         `json:"is_registered"`
}

// SessionService управляет жизненным циклом сессии викторины:
// регистрация участников, переходы scheduled → live и прием ответов
type SessionService struct {
	quizRepo         repository.QuizRepository
	questionRepo     repository.QuestionRepository
	registrationRepo repository.RegistrationRepository
	attemptRepo      repository.AttemptRepository
	answerRepo       repository.AnswerRepository
	userRepo         repository.UserRepository
	cacheRepo        repository.CacheRepository
	emailService     EmailService
}

// NewSessionService создает новый сервис сессий викторин
func NewSessionService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	registrationRepo repository.RegistrationRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	emailService EmailService,
) *SessionService {
	return &SessionService{
		quizRepo:         quizRepo,
		questionRepo:     questionRepo,
		registrationRepo: registrationRepo,
		attemptRepo:      attemptRepo,
		answerRepo:       answerRepo,
		userRepo:         userRepo,
		cacheRepo:        cacheRepo,
		emailService:     emailService,
	}
}

// RegisterForQuiz регистрирует пользователя на викторину.
// Повторная регистрация — не ошибка: двойной клик и ретраи безвредны.
func (s *SessionService) RegisterForQuiz(userID, quizID uint) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: quiz #%d", apperrors.ErrNotFound, quizID)
		}
		return fmt.Errorf("failed to load quiz #%d: %w", quizID, err)
	}

	registration := &entity.Registration{
		UserID: userID,
		QuizID: quizID,
	}

	if err := s.registrationRepo.Create(registration); err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			// Пользователь уже зарегистрирован — нормализуем в успех
			return nil
		}
		return fmt.Errorf("failed to register for quiz #%d: %w", quizID, err)
	}

	s.invalidateRegCountCache(quizID)
	s.sendRegistrationEmail(userID, quiz)

	return nil
}

// sendRegistrationEmail отправляет подтверждение регистрации best-effort:
// сбой отправки никогда не ломает саму регистрацию
func (s *SessionService) sendRegistrationEmail(userID uint, quiz *entity.Quiz) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		log.Printf("[SessionService] Не удалось загрузить пользователя #%d для письма: %v", userID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.emailService.SendRegistrationConfirmation(ctx, user.Email, quiz.Title, quiz.ScheduledAt); err != nil {
		log.Printf("[SessionService] Не удалось отправить подтверждение регистрации user=#%d quiz=#%d: %v", userID, quiz.ID, err)
	}
}

// StartQuizAdmin принудительно запускает викторину.
// Роль перечитывается из БД при каждом вызове, а не берется из токена.
// Запуск безусловный: статус и индекс перезаписываются независимо от расписания.
func (s *SessionService) StartQuizAdmin(userID, quizID uint) error {
	role, err := s.userRepo.GetRole(userID)
	if err != nil {
		return fmt.Errorf("failed to check role for user #%d: %w", userID, err)
	}
	if role != entity.RoleAdmin {
		return fmt.Errorf("%w: admin access required", apperrors.ErrForbidden)
	}

	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return err
	}

	if err := s.quizRepo.StartQuiz(quizID); err != nil {
		return err
	}

	log.Printf("[SessionService] Викторина #%d запущена администратором #%d", quizID, userID)
	return nil
}

// AutoStartQuiz переводит викторину в live, когда наступило время по расписанию.
// Вызывается любым участником; под конкурентными вызовами статус меняет ровно
// один UPDATE с условием status='scheduled', проигравшие получают
// безвредный no-op, а не ошибку.
func (s *SessionService) AutoStartQuiz(userID, quizID uint) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return err
	}

	if !quiz.IsScheduled() {
		return fmt.Errorf("%w: quiz already live or finished", apperrors.ErrInvalidState)
	}

	if time.Now().Before(quiz.ScheduledAt) {
		return apperrors.ErrNotYetTime
	}

	started, err := s.quizRepo.AtomicAutoStart(quizID)
	if err != nil {
		return err
	}
	if started {
		log.Printf("[SessionService] Викторина #%d переведена в live (авто-старт, инициатор #%d)", quizID, userID)
	}
	// !started: гонку выиграл другой участник — викторина уже live, это успех

	return nil
}

// SubmitAnswer валидирует и засчитывает ответ участника, возвращая
// начисленные очки. Порядок проверок: регистрация → статус live → вопрос.
// Очки за вопрос начисляются не более одного раза на пользователя.
func (s *SessionService) SubmitAnswer(userID, quizID uint, questionID string, chosenIndex int, responseTimeMs int64) (int, error) {
	// 1. Участник должен быть зарегистрирован
	if _, err := s.registrationRepo.GetByUserAndQuiz(userID, quizID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, fmt.Errorf("%w: quiz #%d", apperrors.ErrNotRegistered, quizID)
		}
		return 0, fmt.Errorf("failed to check registration: %w", err)
	}

	// 2. Викторина должна идти прямо сейчас
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return 0, err
	}
	if !quiz.IsLive() {
		return 0, fmt.Errorf("%w: quiz is not currently live", apperrors.ErrInvalidState)
	}

	// 3. Вопрос должен существовать и принадлежать викторине
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, fmt.Errorf("%w: question %s", apperrors.ErrNotFound, questionID)
		}
		return 0, fmt.Errorf("failed to load question %s: %w", questionID, err)
	}
	if question.QuizID != quizID {
		return 0, fmt.Errorf("%w: question %s", apperrors.ErrNotFound, questionID)
	}

	// Неправильный ответ (в том числе chosenIndex == -1 при таймауте) дает 0
	// очков, но фиксируется: повторная отправка того же вопроса не пройдет.
	points := question.CalculatePoints(chosenIndex, responseTimeMs)

	answer := &entity.Answer{
		UserID:         userID,
		QuizID:         quizID,
		QuestionID:     questionID,
		ChosenIndex:    chosenIndex,
		IsCorrect:      question.IsCorrect(chosenIndex),
		ResponseTimeMs: responseTimeMs,
		Points:         points,
	}
	// Ответ и очки фиксируются одной транзакцией: при сбое ни строка ответа,
	// ни счет не меняются, и отправку можно повторить.
	if err := s.answerRepo.Record(answer); err != nil {
		if errors.Is(err, repository.ErrDuplicateAnswer) {
			return 0, fmt.Errorf("%w: question %s", apperrors.ErrAlreadyAnswered, questionID)
		}
		return 0, fmt.Errorf("failed to record answer: %w", err)
	}

	return points, nil
}

// GetSessionStatus возвращает викторину вместе со счетчиком регистраций и
// флагом регистрации вызывающего. Сбой чтения счетчика деградирует в 0,
// не ломая всю операцию.
func (s *SessionService) GetSessionStatus(userID, quizID uint) (*SessionStatus, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}

	status := &SessionStatus{Quiz: quiz}

	count, err := s.registrationCount(quizID)
	if err != nil {
		log.Printf("[SessionService] Не удалось получить счетчик регистраций quiz=#%d: %v", quizID, err)
		count = 0
	}
	status.RegistrationCount = count

	questionCount, err := s.questionRepo.CountByQuizID(quizID)
	if err != nil {
		log.Printf("[SessionService] Не удалось получить количество вопросов quiz=#%d: %v", quizID, err)
		questionCount = 0
	}
	status.QuestionCount = questionCount

	if userID != 0 {
		if _, err := s.registrationRepo.GetByUserAndQuiz(userID, quizID); err == nil {
			status.IsRegistered = true
		}
	}

	return status, nil
}

// registrationCount читает счетчик регистраций через короткий кеш
func (s *SessionService) registrationCount(quizID uint) (int64, error) {
	key := regCountCacheKey(quizID)

	if s.cacheRepo != nil {
		if cached, err := s.cacheRepo.Get(key); err == nil {
			if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.registrationRepo.CountByQuiz(quizID)
	if err != nil {
		return 0, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.Set(key, count, regCountCacheTTL); err != nil {
			log.Printf("[SessionService] Не удалось закешировать счетчик регистраций quiz=#%d: %v", quizID, err)
		}
	}

	return count, nil
}

// invalidateRegCountCache сбрасывает кеш счетчика после новой регистрации
func (s *SessionService) invalidateRegCountCache(quizID uint) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(regCountCacheKey(quizID)); err != nil {
		log.Printf("[SessionService] Не удалось сбросить кеш счетчика quiz=#%d: %v", quizID, err)
	}
}

func regCountCacheKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d:registration_count", quizID)
}

// GetLeaderboard возвращает счета участников викторины по убыванию очков
func (s *SessionService) GetLeaderboard(quizID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.attemptRepo.GetLeaderboard(quizID, limit, offset)
}

// GetUserAnswers возвращает ответы пользователя на викторину в порядке
// отправки вместе с его накопленным счетом. Счет равен nil, если
// пользователь еще не отвечал.
func (s *SessionService) GetUserAnswers(userID, quizID uint) ([]entity.Answer, *entity.Attempt, error) {
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return nil, nil, err
	}
	answers, err := s.answerRepo.GetByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load answers for user #%d quiz #%d: %w", userID, quizID, err)
	}

	attempt, err := s.attemptRepo.GetByUserAndQuiz(userID, quizID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, fmt.Errorf("failed to load attempt for user #%d quiz #%d: %w", userID, quizID, err)
		}
		attempt = nil
	}

	return answers, attempt, nil
}

// ExportLeaderboard возвращает полную таблицу лидеров викторины постранично,
// без пагинации наружу. Доступно только администраторам.
func (s *SessionService) ExportLeaderboard(userID, quizID uint) ([]entity.Attempt, error) {
	role, err := s.userRepo.GetRole(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check role for user #%d: %w", userID, err)
	}
	if role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: admin access required", apperrors.ErrForbidden)
	}
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return nil, err
	}

	const pageSize = 500
	var all []entity.Attempt
	for offset := 0; ; offset += pageSize {
		page, _, err := s.attemptRepo.GetLeaderboard(quizID, pageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}
	return all, nil
}

// GetQuizQuestions возвращает викторину и ее вопросы по order_index.
// Скрытие correct_option_index для незавершенных викторин делает DTO-слой.
func (s *SessionService) GetQuizQuestions(quizID uint) (*entity.Quiz, []entity.Question, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.questionRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load questions for quiz #%d: %w", quizID, err)
	}
	return quiz, questions, nil
}

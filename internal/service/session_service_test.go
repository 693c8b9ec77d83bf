package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/aegis-api/internal/domain/entity"
	"github.com/yourusername/aegis-api/internal/domain/repository"
	apperrors "github.com/yourusername/aegis-api/internal/pkg/errors"
)

// ============================================================================
// Моки репозиториев для SessionService и QuizService
// ============================================================================

// MockQuizRepository реализует repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetWithQuestions(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetUpcoming() ([]entity.Quiz, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) List(limit, offset int) ([]entity.Quiz, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) StartQuiz(quizID uint) error {
	args := m.Called(quizID)
	return args.Error(0)
}

func (m *MockQuizRepository) AtomicAutoStart(quizID uint) (bool, error) {
	args := m.Called(quizID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuizRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(id string) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByQuizID(quizID uint) ([]entity.Question, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByQuizID(quizID uint) (int64, error) {
	args := m.Called(quizID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRegistrationRepository реализует repository.RegistrationRepository
type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(registration *entity.Registration) error {
	args := m.Called(registration)
	return args.Error(0)
}

func (m *MockRegistrationRepository) GetByUserAndQuiz(userID, quizID uint) (*entity.Registration, error) {
	args := m.Called(userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) CountByQuiz(quizID uint) (int64, error) {
	args := m.Called(quizID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAttemptRepository реализует repository.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) GetByUserAndQuiz(userID, quizID uint) (*entity.Attempt, error) {
	args := m.Called(userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetLeaderboard(quizID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	args := m.Called(quizID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.Attempt), args.Get(1).(int64), args.Error(2)
}

// MockAnswerRepository реализует repository.AnswerRepository
type MockAnswerRepository struct {
	mock.Mock
}

func (m *MockAnswerRepository) Record(answer *entity.Answer) error {
	args := m.Called(answer)
	return args.Error(0)
}

func (m *MockAnswerRepository) GetByUserAndQuiz(userID, quizID uint) ([]entity.Answer, error) {
	args := m.Called(userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Answer), args.Error(1)
}

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetRole(userID uint) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

// MockCacheRepository реализует repository.CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepository) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepository) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

// MockEmailService реализует EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRegistrationConfirmation(ctx context.Context, toEmail, quizTitle string, scheduledAt time.Time) error {
	args := m.Called(ctx, toEmail, quizTitle, scheduledAt)
	return args.Error(0)
}

// ============================================================================
// Хелперы
// ============================================================================

type sessionMocks struct {
	quizRepo         *MockQuizRepository
	questionRepo     *MockQuestionRepository
	registrationRepo *MockRegistrationRepository
	attemptRepo      *MockAttemptRepository
	answerRepo       *MockAnswerRepository
	userRepo         *MockUserRepository
	cacheRepo        *MockCacheRepository
	emailService     *MockEmailService
}

func newSessionService(t *testing.T) (*SessionService, *sessionMocks) {
	t.Helper()
	m := &sessionMocks{
		quizRepo:         new(MockQuizRepository),
		questionRepo:     new(MockQuestionRepository),
		registrationRepo: new(MockRegistrationRepository),
		attemptRepo:      new(MockAttemptRepository),
		answerRepo:       new(MockAnswerRepository),
		userRepo:         new(MockUserRepository),
		cacheRepo:        new(MockCacheRepository),
		emailService:     new(MockEmailService),
	}
	svc := NewSessionService(
		m.quizRepo, m.questionRepo, m.registrationRepo, m.attemptRepo,
		m.answerRepo, m.userRepo, m.cacheRepo, m.emailService,
	)
	return svc, m
}

func scheduledQuiz(id uint, scheduledAt time.Time) *entity.Quiz {
	return &entity.Quiz{
		ID:          id,
		Title:       "Systems Design Sprint",
		ScheduledAt: scheduledAt,
		Status:      entity.QuizStatusScheduled,
	}
}

func liveQuiz(id uint) *entity.Quiz {
	return &entity.Quiz{
		ID:     id,
		Title:  "Systems Design Sprint",
		Status: entity.QuizStatusLive,
	}
}

// ============================================================================
// RegisterForQuiz
// ============================================================================

func TestSessionService_RegisterForQuiz_Success(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	quiz := scheduledQuiz(1, time.Now().Add(time.Hour))

	m.quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	m.registrationRepo.On("Create", mock.MatchedBy(func(r *entity.Registration) bool {
		return r.UserID == 42 && r.QuizID == 1
	})).Return(nil)
	m.cacheRepo.On("Delete", "quiz:1:registration_count").Return(nil)
	m.userRepo.On("GetByID", uint(42)).Return(&entity.User{ID: 42, Email: "student@example.com"}, nil)
	m.emailService.On("SendRegistrationConfirmation", mock.Anything, "student@example.com", quiz.Title, quiz.ScheduledAt).Return(nil)

	// Act
	err := svc.RegisterForQuiz(42, 1)

	// Assert
	require.NoError(t, err)
	m.registrationRepo.AssertExpectations(t)
	m.emailService.AssertExpectations(t)
}

func TestSessionService_RegisterForQuiz_DuplicateIsSuccess(t *testing.T) {
	// Arrange: повторная регистрация не должна быть ошибкой
	svc, m := newSessionService(t)
	quiz := scheduledQuiz(1, time.Now().Add(time.Hour))

	m.quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	m.registrationRepo.On("Create", mock.Anything).Return(repository.ErrAlreadyRegistered)

	// Act
	err := svc.RegisterForQuiz(42, 1)

	// Assert: успех, письмо и сброс кеша не выполняются повторно
	require.NoError(t, err)
	m.emailService.AssertNotCalled(t, "SendRegistrationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.cacheRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestSessionService_RegisterForQuiz_QuizNotFound(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	m.quizRepo.On("GetByID", uint(99)).Return(nil, apperrors.ErrNotFound)

	// Act
	err := svc.RegisterForQuiz(42, 99)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	m.registrationRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestSessionService_RegisterForQuiz_EmailFailureDoesNotFail(t *testing.T) {
	// Arrange: сбой отправки письма не должен ломать регистрацию
	svc, m := newSessionService(t)
	quiz := scheduledQuiz(1, time.Now().Add(time.Hour))

	m.quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	m.registrationRepo.On("Create", mock.Anything).Return(nil)
	m.cacheRepo.On("Delete", mock.Anything).Return(nil)
	m.userRepo.On("GetByID", uint(42)).Return(&entity.User{ID: 42, Email: "student@example.com"}, nil)
	m.emailService.On("SendRegistrationConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("resend unavailable"))

	// Act
	err := svc.RegisterForQuiz(42, 1)

	// Assert
	require.NoError(t, err)
}

// ============================================================================
// StartQuizAdmin
// ============================================================================

func TestSessionService_StartQuizAdmin_Forbidden(t *testing.T) {
	// Arrange: обычный пользователь не может запустить викторину
	svc, m := newSessionService(t)
	m.userRepo.On("GetRole", uint(42)).Return(entity.RoleUser, nil)

	// Act
	err := svc.StartQuizAdmin(42, 1)

	// Assert: статус не меняется
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	m.quizRepo.AssertNotCalled(t, "StartQuiz", mock.Anything)
}

func TestSessionService_StartQuizAdmin_Success(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	m.userRepo.On("GetRole", uint(7)).Return(entity.RoleAdmin, nil)
	m.quizRepo.On("GetByID", uint(1)).Return(scheduledQuiz(1, time.Now().Add(time.Hour)), nil)
	m.quizRepo.On("StartQuiz", uint(1)).Return(nil)

	// Act
	err := svc.StartQuizAdmin(7, 1)

	// Assert
	require.NoError(t, err)
	m.quizRepo.AssertExpectations(t)
}

// ============================================================================
// AutoStartQuiz
// ============================================================================

func TestSessionService_AutoStartQuiz_AlreadyLive(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)

	// Act
	err := svc.AutoStartQuiz(42, 1)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	m.quizRepo.AssertNotCalled(t, "AtomicAutoStart", mock.Anything)
}

func TestSessionService_AutoStartQuiz_NotYetTime(t *testing.T) {
	// Arrange: до scheduled_at еще час
	svc, m := newSessionService(t)
	m.quizRepo.On("GetByID", uint(1)).Return(scheduledQuiz(1, time.Now().Add(time.Hour)), nil)

	// Act
	err := svc.AutoStartQuiz(42, 1)

	// Assert: статус не трогаем
	assert.ErrorIs(t, err, apperrors.ErrNotYetTime)
	m.quizRepo.AssertNotCalled(t, "AtomicAutoStart", mock.Anything)
}

func TestSessionService_AutoStartQuiz_WinsRace(t *testing.T) {
	// Arrange: время наступило, условный UPDATE затронул строку
	svc, m := newSessionService(t)
	m.quizRepo.On("GetByID", uint(1)).Return(scheduledQuiz(1, time.Now().Add(-time.Minute)), nil)
	m.quizRepo.On("AtomicAutoStart", uint(1)).Return(true, nil)

	// Act
	err := svc.AutoStartQuiz(42, 1)

	// Assert
	require.NoError(t, err)
	m.quizRepo.AssertExpectations(t)
}

func TestSessionService_AutoStartQuiz_LosesRaceIsBenign(t *testing.T) {
	// Arrange: другой участник успел первым — RowsAffected == 0
	svc, m := newSessionService(t)
	m.quizRepo.On("GetByID", uint(1)).Return(scheduledQuiz(1, time.Now().Add(-time.Minute)), nil)
	m.quizRepo.On("AtomicAutoStart", uint(1)).Return(false, nil)

	// Act
	err := svc.AutoStartQuiz(42, 1)

	// Assert: проигрыш гонки — не ошибка
	require.NoError(t, err)
}

// ============================================================================
// SubmitAnswer
// ============================================================================

const questionID = "8b6c2f4e-0000-4000-8000-000000000001"

func liveQuestion(quizID uint) *entity.Question {
	return &entity.Question{
		ID:                 questionID,
		QuizID:             quizID,
		QuestionText:       "Сложность балансировки AVL-дерева?",
		Options:            entity.StringArray{"O(1)", "O(log n)", "O(n)", "O(n log n)"},
		CorrectOptionIndex: 1,
		TimerSeconds:       15,
		OrderIndex:         0,
	}
}

func TestSessionService_SubmitAnswer_NotRegistered(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(nil, apperrors.ErrNotFound)

	// Act
	points, err := svc.SubmitAnswer(42, 1, questionID, 1, 1000)

	// Assert: ничего не пишем
	assert.ErrorIs(t, err, apperrors.ErrNotRegistered)
	assert.Zero(t, points)
	m.answerRepo.AssertNotCalled(t, "Record", mock.Anything)
}

func TestSessionService_SubmitAnswer_QuizNotLive(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(&entity.Registration{}, nil)
	m.quizRepo.On("GetByID", uint(1)).Return(scheduledQuiz(1, time.Now().Add(time.Hour)), nil)

	// Act
	_, err := svc.SubmitAnswer(42, 1, questionID, 1, 1000)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	m.answerRepo.AssertNotCalled(t, "Record", mock.Anything)
}

func TestSessionService_SubmitAnswer_QuestionFromAnotherQuiz(t *testing.T) {
	// Arrange: вопрос существует, но принадлежит другой викторине
	svc, m := newSessionService(t)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(&entity.Registration{}, nil)
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)
	m.questionRepo.On("GetByID", questionID).Return(liveQuestion(2), nil)

	// Act
	_, err := svc.SubmitAnswer(42, 1, questionID, 1, 1000)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	m.answerRepo.AssertNotCalled(t, "Record", mock.Anything)
}

func TestSessionService_SubmitAnswer_CorrectAnswerHalfTime(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(&entity.Registration{}, nil)
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)
	m.questionRepo.On("GetByID", questionID).Return(liveQuestion(1), nil)
	m.answerRepo.On("Record", mock.MatchedBy(func(a *entity.Answer) bool {
		return a.UserID == 42 && a.QuestionID == questionID && a.IsCorrect && a.Points == 1250
	})).Return(nil)

	// Act: правильный ответ на половине 15-секундного лимита
	points, err := svc.SubmitAnswer(42, 1, questionID, 1, 7500)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1250, points)
	m.answerRepo.AssertExpectations(t)
}

func TestSessionService_SubmitAnswer_IncorrectAnswerScoresZero(t *testing.T) {
	// Arrange: неправильный ответ фиксируется с нулем очков
	svc, m := newSessionService(t)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(&entity.Registration{}, nil)
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)
	m.questionRepo.On("GetByID", questionID).Return(liveQuestion(1), nil)
	m.answerRepo.On("Record", mock.MatchedBy(func(a *entity.Answer) bool {
		return !a.IsCorrect && a.Points == 0
	})).Return(nil)

	// Act
	points, err := svc.SubmitAnswer(42, 1, questionID, 3, 500)

	// Assert: счет монотонен, минус не бывает
	require.NoError(t, err)
	assert.Zero(t, points)
	m.answerRepo.AssertExpectations(t)
}

func TestSessionService_SubmitAnswer_DuplicateRejected(t *testing.T) {
	// Arrange: повторная отправка того же вопроса не начисляет очки второй раз
	svc, m := newSessionService(t)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(&entity.Registration{}, nil)
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)
	m.questionRepo.On("GetByID", questionID).Return(liveQuestion(1), nil)
	m.answerRepo.On("Record", mock.Anything).Return(repository.ErrDuplicateAnswer)

	// Act
	points, err := svc.SubmitAnswer(42, 1, questionID, 1, 1000)

	// Assert: очки не добавлены
	assert.ErrorIs(t, err, apperrors.ErrAlreadyAnswered)
	assert.Zero(t, points)
}

func TestSessionService_SubmitAnswer_TransientFailureIsRetryable(t *testing.T) {
	// Arrange: сбой записи откатывает и ответ, и очки — повторная отправка
	// того же вопроса проходит и начисляет очки
	svc, m := newSessionService(t)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(&entity.Registration{}, nil)
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)
	m.questionRepo.On("GetByID", questionID).Return(liveQuestion(1), nil)
	m.answerRepo.On("Record", mock.Anything).Return(errors.New("db connection reset")).Once()
	m.answerRepo.On("Record", mock.Anything).Return(nil).Once()

	// Act: первая отправка падает, вторая повторяет ее
	_, firstErr := svc.SubmitAnswer(42, 1, questionID, 1, 7500)
	points, retryErr := svc.SubmitAnswer(42, 1, questionID, 1, 7500)

	// Assert: сбой не выглядит как дубликат, ретрай не теряет очков
	require.Error(t, firstErr)
	assert.NotErrorIs(t, firstErr, apperrors.ErrAlreadyAnswered)
	require.NoError(t, retryErr)
	assert.Equal(t, 1250, points)
	m.answerRepo.AssertExpectations(t)
}

// ============================================================================
// GetSessionStatus / GetLeaderboard
// ============================================================================

func TestSessionService_GetSessionStatus_Success(t *testing.T) {
	// Arrange: кеш пуст, счетчик читается из БД и кешируется
	svc, m := newSessionService(t)
	quiz := scheduledQuiz(1, time.Now().Add(time.Hour))

	m.quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	m.cacheRepo.On("Get", "quiz:1:registration_count").Return("", apperrors.ErrNotFound)
	m.registrationRepo.On("CountByQuiz", uint(1)).Return(int64(17), nil)
	m.cacheRepo.On("Set", "quiz:1:registration_count", int64(17), regCountCacheTTL).Return(nil)
	m.questionRepo.On("CountByQuizID", uint(1)).Return(int64(10), nil)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(&entity.Registration{}, nil)

	// Act
	status, err := svc.GetSessionStatus(42, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(17), status.RegistrationCount)
	assert.Equal(t, int64(10), status.QuestionCount)
	assert.True(t, status.IsRegistered)
	assert.Equal(t, quiz, status.Quiz)
}

func TestSessionService_GetSessionStatus_CacheHit(t *testing.T) {
	// Arrange: счетчик берется из кеша без похода в БД
	svc, m := newSessionService(t)
	m.quizRepo.On("GetByID", uint(1)).Return(scheduledQuiz(1, time.Now().Add(time.Hour)), nil)
	m.cacheRepo.On("Get", "quiz:1:registration_count").Return("23", nil)
	m.questionRepo.On("CountByQuizID", uint(1)).Return(int64(10), nil)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(nil, apperrors.ErrNotFound)

	// Act
	status, err := svc.GetSessionStatus(42, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(23), status.RegistrationCount)
	assert.False(t, status.IsRegistered)
	m.registrationRepo.AssertNotCalled(t, "CountByQuiz", mock.Anything)
}

func TestSessionService_GetSessionStatus_CountFailureDegradesToZero(t *testing.T) {
	// Arrange: сбой счетчика не должен ломать всю операцию
	svc, m := newSessionService(t)
	m.quizRepo.On("GetByID", uint(1)).Return(scheduledQuiz(1, time.Now().Add(time.Hour)), nil)
	m.cacheRepo.On("Get", mock.Anything).Return("", errors.New("redis down"))
	m.registrationRepo.On("CountByQuiz", uint(1)).Return(int64(0), errors.New("db down"))
	m.questionRepo.On("CountByQuizID", uint(1)).Return(int64(10), nil)
	m.registrationRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(&entity.Registration{}, nil)

	// Act
	status, err := svc.GetSessionStatus(42, 1)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, status.RegistrationCount)
	assert.Equal(t, int64(10), status.QuestionCount)
	assert.True(t, status.IsRegistered)
}

func TestSessionService_GetUserAnswers_NoAttemptYet(t *testing.T) {
	// Arrange: пользователь еще не отвечал — счет nil, ответов нет
	svc, m := newSessionService(t)
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)
	m.answerRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return([]entity.Answer{}, nil)
	m.attemptRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(nil, apperrors.ErrNotFound)

	// Act
	answers, attempt, err := svc.GetUserAnswers(42, 1)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, answers)
	assert.Nil(t, attempt)
}

func TestSessionService_GetUserAnswers_WithScore(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	recorded := []entity.Answer{
		{UserID: 42, QuizID: 1, QuestionID: questionID, ChosenIndex: 1, IsCorrect: true, Points: 1250},
	}
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)
	m.answerRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(recorded, nil)
	m.attemptRepo.On("GetByUserAndQuiz", uint(42), uint(1)).Return(&entity.Attempt{UserID: 42, QuizID: 1, TotalPoints: 1250}, nil)

	// Act
	answers, attempt, err := svc.GetUserAnswers(42, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, recorded, answers)
	require.NotNil(t, attempt)
	assert.Equal(t, 1250, attempt.TotalPoints)
}

func TestSessionService_ExportLeaderboard_NonAdminForbidden(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	m.userRepo.On("GetRole", uint(42)).Return(entity.RoleUser, nil)

	// Act
	_, err := svc.ExportLeaderboard(42, 1)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	m.attemptRepo.AssertNotCalled(t, "GetLeaderboard", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_ExportLeaderboard_CollectsAllPages(t *testing.T) {
	// Arrange: выгрузка читает страницы до неполной
	svc, m := newSessionService(t)
	m.userRepo.On("GetRole", uint(7)).Return(entity.RoleAdmin, nil)
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)

	firstPage := make([]entity.Attempt, 500)
	secondPage := []entity.Attempt{{UserID: 999, QuizID: 1, TotalPoints: 100}}
	m.attemptRepo.On("GetLeaderboard", uint(1), 500, 0).Return(firstPage, int64(501), nil)
	m.attemptRepo.On("GetLeaderboard", uint(1), 500, 500).Return(secondPage, int64(501), nil)

	// Act
	all, err := svc.ExportLeaderboard(7, 1)

	// Assert
	require.NoError(t, err)
	assert.Len(t, all, 501)
	m.attemptRepo.AssertExpectations(t)
}

func TestSessionService_GetLeaderboard_OrdersByPoints(t *testing.T) {
	// Arrange
	svc, m := newSessionService(t)
	attempts := []entity.Attempt{
		{UserID: 1, QuizID: 1, TotalPoints: 2750},
		{UserID: 2, QuizID: 1, TotalPoints: 1250},
	}
	m.quizRepo.On("GetByID", uint(1)).Return(liveQuiz(1), nil)
	m.attemptRepo.On("GetLeaderboard", uint(1), 50, 0).Return(attempts, int64(2), nil)

	// Act: невалидный limit заменяется дефолтным
	result, total, err := svc.GetLeaderboard(1, 0, 0)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, attempts, result)
}

package dto

import (
	"time"

	"github.com/yourusername/aegis-api/internal/domain/entity"
	"github.com/yourusername/aegis-api/internal/service"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID           string   `json:"id"`
	QuizID       uint     `json:"quiz_id"`
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	// CorrectOptionIndex равен -1, пока викторина не завершена
	CorrectOptionIndex int `json:"correct_option_index"`
	TimerSeconds       int `json:"timer_seconds"`
	OrderIndex         int `json:"order_index"`
}

// QuizResponse представляет викторину в формате для ответа клиенту
type QuizResponse struct {
	ID                   uint               `json:"id"`
	Title                string             `json:"title"`
	Description          string             `json:"description,omitempty"`
	DurationMinutes      int                `json:"duration_minutes"`
	ScheduledAt          time.Time          `json:"scheduled_at"`
	Status               string             `json:"status"`
	CurrentQuestionIndex int                `json:"current_question_index"`
	Questions            []QuestionResponse `json:"questions,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// SessionStatusResponse объединяет викторину со счетчиками регистраций
// и вопросов
type SessionStatusResponse struct {
	Quiz              *QuizResponse `json:"quiz"`
	RegistrationCount int64         `json:"registration_count"`
	QuestionCount     int64         `json:"question_count"`
	IsRegistered      bool          `json:"is_registered"`
}

// LeaderboardEntryResponse представляет строку таблицы лидеров
type LeaderboardEntryResponse struct {
	Rank                   int    `json:"rank"`
	UserID                 uint   `json:"user_id"`
	TotalPoints            int    `json:"total_points"`
	LastAnsweredQuestionID string `json:"last_answered_question_id,omitempty"`
}

// PaginatedLeaderboardResponse представляет пагинированную таблицу лидеров
type PaginatedLeaderboardResponse struct {
	Entries []LeaderboardEntryResponse `json:"entries"`
	Total   int64                      `json:"total"`
	Page    int                        `json:"page"`
	PerPage int                        `json:"per_page"`
}

// AnswerResponse представляет зафиксированный ответ пользователя
type AnswerResponse struct {
	QuestionID     string    `json:"question_id"`
	ChosenIndex    int       `json:"chosen_index"`
	IsCorrect      bool      `json:"is_correct"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Points         int       `json:"points"`
	CreatedAt      time.Time `json:"created_at"`
}

// QuizWithRegistrationsResponse представляет викторину со счетчиком регистраций
// для админского списка
type QuizWithRegistrationsResponse struct {
	QuizResponse
	RegistrationCount int64 `json:"registration_count"`
}

// NewQuestionResponse создает DTO для вопроса.
// hideCorrect скрывает индекс правильного ответа (для незавершенных викторин).
func NewQuestionResponse(q *entity.Question, hideCorrect bool) QuestionResponse {
	correct := q.CorrectOptionIndex
	if hideCorrect {
		correct = -1
	}
	return QuestionResponse{
		ID:                 q.ID,
		QuizID:             q.QuizID,
		QuestionText:       q.QuestionText,
		Options:            []string(q.Options),
		CorrectOptionIndex: correct,
		TimerSeconds:       q.TimerSeconds,
		OrderIndex:         q.OrderIndex,
	}
}

// NewQuestionListResponse создает DTO для списка вопросов
func NewQuestionListResponse(questions []entity.Question, hideCorrect bool) []QuestionResponse {
	result := make([]QuestionResponse, len(questions))
	for i := range questions {
		result[i] = NewQuestionResponse(&questions[i], hideCorrect)
	}
	return result
}

// NewQuizResponse создает DTO для викторины
func NewQuizResponse(quiz *entity.Quiz, includeQuestions bool) *QuizResponse {
	if quiz == nil {
		return nil
	}

	var questionsDTO []QuestionResponse
	if includeQuestions {
		// Правильные ответы скрываются до завершения викторины
		questionsDTO = NewQuestionListResponse(quiz.Questions, !quiz.IsCompleted())
	}

	return &QuizResponse{
		ID:                   quiz.ID,
		Title:                quiz.Title,
		Description:          quiz.Description,
		DurationMinutes:      quiz.DurationMinutes,
		ScheduledAt:          quiz.ScheduledAt,
		Status:               quiz.Status,
		CurrentQuestionIndex: quiz.CurrentQuestionIndex,
		Questions:            questionsDTO,
		CreatedAt:            quiz.CreatedAt,
		UpdatedAt:            quiz.UpdatedAt,
	}
}

// NewQuizListResponse создает DTO для списка викторин
func NewQuizListResponse(quizzes []entity.Quiz) []QuizResponse {
	result := make([]QuizResponse, len(quizzes))
	for i := range quizzes {
		result[i] = *NewQuizResponse(&quizzes[i], false)
	}
	return result
}

// NewAnswerListResponse создает DTO для списка ответов
func NewAnswerListResponse(answers []entity.Answer) []AnswerResponse {
	result := make([]AnswerResponse, len(answers))
	for i, answer := range answers {
		result[i] = AnswerResponse{
			QuestionID:     answer.QuestionID,
			ChosenIndex:    answer.ChosenIndex,
			IsCorrect:      answer.IsCorrect,
			ResponseTimeMs: answer.ResponseTimeMs,
			Points:         answer.Points,
			CreatedAt:      answer.CreatedAt,
		}
	}
	return result
}

// NewSessionStatusResponse создает DTO для статуса сессии
func NewSessionStatusResponse(status *service.SessionStatus) *SessionStatusResponse {
	if status == nil {
		return nil
	}
	return &SessionStatusResponse{
		Quiz:              NewQuizResponse(status.Quiz, false),
		RegistrationCount: status.RegistrationCount,
		QuestionCount:     status.QuestionCount,
		IsRegistered:      status.IsRegistered,
	}
}

// NewAdminQuizResponse создает DTO викторины для административного
// просмотра: индексы правильных ответов не скрываются.
func NewAdminQuizResponse(quiz *entity.Quiz) *QuizResponse {
	resp := NewQuizResponse(quiz, false)
	if resp == nil {
		return nil
	}
	resp.Questions = NewQuestionListResponse(quiz.Questions, false)
	return resp
}

// NewLeaderboardResponse создает DTO таблицы лидеров. Ранг считается от
// смещения страницы: первая строка первой страницы имеет ранг 1.
func NewLeaderboardResponse(attempts []entity.Attempt, total int64, page, perPage int) *PaginatedLeaderboardResponse {
	offset := (page - 1) * perPage
	entries := make([]LeaderboardEntryResponse, len(attempts))
	for i, attempt := range attempts {
		entries[i] = LeaderboardEntryResponse{
			Rank:                   offset + i + 1,
			UserID:                 attempt.UserID,
			TotalPoints:            attempt.TotalPoints,
			LastAnsweredQuestionID: attempt.LastAnsweredQuestionID,
		}
	}
	return &PaginatedLeaderboardResponse{
		Entries: entries,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
}

package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/aegis-api/internal/handler/dto"
	"github.com/yourusername/aegis-api/internal/middleware"
	apperrors "github.com/yourusername/aegis-api/internal/pkg/errors"
	"github.com/yourusername/aegis-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с викторинами и их сессиями
type QuizHandler struct {
	quizService    *service.QuizService
	sessionService *service.SessionService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService, sessionService *service.SessionService) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		sessionService: sessionService,
	}
}

// CreateQuizRequest представляет запрос на создание викторины с вопросами
type CreateQuizRequest struct {
	Title           string    `json:"title" binding:"required,min=3,max=100"`
	Description     string    `json:"description" binding:"omitempty,max=500"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	Questions       []struct {
		QuestionText string   `json:"question_text" binding:"required,min=3,max=500"`
		Options      []string `json:"options" binding:"required,min=2,max=6"`
		CorrectIndex int      `json:"correct_index" binding:"min=0"`
		TimerSeconds int      `json:"timer_seconds" binding:"required,min=5,max=120"`
	} `json:"questions" binding:"required,min=1"`
}

// CreateQuiz обрабатывает запрос на создание викторины.
// Викторина и вопросы создаются атомарно.
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, service.QuestionInput{
			QuestionText: q.QuestionText,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			TimerSeconds: q.TimerSeconds,
		})
	}

	quiz, err := h.quizService.CreateQuiz(userID, req.Title, req.Description, req.DurationMinutes, req.ScheduledAt, questions)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz, false))
}

// ListQuizzes возвращает список викторин со счетчиками регистраций (админский обзор)
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	page, perPage := paginationParams(c)

	quizzes, err := h.quizService.ListQuizzesWithRegistrations(userID, perPage, (page-1)*perPage)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	result := make([]dto.QuizWithRegistrationsResponse, 0, len(quizzes))
	for i := range quizzes {
		result = append(result, dto.QuizWithRegistrationsResponse{
			QuizResponse:      *dto.NewQuizResponse(&quizzes[i].Quiz, false),
			RegistrationCount: quizzes[i].RegistrationCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": result, "page": page, "per_page": perPage})
}

// GetUpcomingQuizzes возвращает запланированные викторины
func (h *QuizHandler) GetUpcomingQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.GetUpcomingQuizzes()
	if err != nil {
		log.Printf("[QuizHandler] Ошибка при получении запланированных викторин: %v", err)
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": dto.NewQuizListResponse(quizzes)})
}

// GetQuizDetail возвращает викторину с вопросами для административного
// просмотра. Правильные ответы видны, поэтому доступ только администраторам.
func (h *QuizHandler) GetQuizDetail(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quiz, err := h.quizService.GetQuizDetail(userID, quizID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAdminQuizResponse(quiz))
}

// DeleteQuiz удаляет викторину вместе с вопросами и результатами
// (только администратор)
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.quizService.DeleteQuiz(userID, quizID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSessionStatus возвращает викторину со счетчиком регистраций и флагом
// регистрации текущего пользователя
func (h *QuizHandler) GetSessionStatus(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID, _ := middleware.CurrentUserID(c)

	status, err := h.sessionService.GetSessionStatus(userID, quizID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSessionStatusResponse(status))
}

// GetQuestions возвращает вопросы викторины по порядку.
// Индексы правильных ответов скрыты, пока викторина не завершена.
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	quiz, questions, err := h.sessionService.GetQuizQuestions(quizID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": dto.NewQuestionListResponse(questions, !quiz.IsCompleted()),
	})
}

// RegisterForQuiz регистрирует текущего пользователя на викторину.
// Повторная регистрация возвращает тот же успешный ответ.
func (h *QuizHandler) RegisterForQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.sessionService.RegisterForQuiz(userID, quizID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// StartQuiz принудительно запускает викторину (только администратор)
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.sessionService.StartQuizAdmin(userID, quizID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AutoStartQuiz запускает викторину по расписанию. Может вызываться любым
// участником; проигравшие гонку получают тот же успешный ответ.
func (h *QuizHandler) AutoStartQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.sessionService.AutoStartQuiz(userID, quizID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SubmitAnswerRequest представляет отправку ответа на вопрос
type SubmitAnswerRequest struct {
	QuestionID     string `json:"question_id" binding:"required,uuid"`
	ChosenIndex    int    `json:"chosen_index" binding:"min=-1"`
	ResponseTimeMs int64  `json:"response_time_ms" binding:"min=0"`
}

// SubmitAnswer засчитывает ответ участника и возвращает начисленные очки
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	points, err := h.sessionService.SubmitAnswer(userID, quizID, req.QuestionID, req.ChosenIndex, req.ResponseTimeMs)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "points": points})
}

// GetMyAnswers возвращает ответы текущего пользователя на викторину
func (h *QuizHandler) GetMyAnswers(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	answers, attempt, err := h.sessionService.GetUserAnswers(userID, quizID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	totalPoints := 0
	if attempt != nil {
		totalPoints = attempt.TotalPoints
	}
	c.JSON(http.StatusOK, gin.H{
		"answers":      dto.NewAnswerListResponse(answers),
		"total_points": totalPoints,
	})
}

// GetLeaderboard возвращает таблицу лидеров викторины
func (h *QuizHandler) GetLeaderboard(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	page, perPage := paginationParams(c)

	attempts, total, err := h.sessionService.GetLeaderboard(quizID, perPage, (page-1)*perPage)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLeaderboardResponse(attempts, total, page, perPage))
}

// ExportLeaderboard выгружает полную таблицу лидеров викторины в xlsx
// (только администратор)
func (h *QuizHandler) ExportLeaderboard(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	attempts, err := h.sessionService.ExportLeaderboard(userID, quizID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[QuizHandler] Ошибка закрытия xlsx файла: %v", err)
		}
	}()

	sheet := "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	headers := []string{"Rank", "User ID", "Total Points", "Last Answered Question"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, attempt := range attempts {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), attempt.UserID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), attempt.TotalPoints)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), attempt.LastAnsweredQuestionID)
	}

	filename := fmt.Sprintf("quiz_%d_leaderboard.xlsx", quizID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuizHandler] Ошибка записи xlsx в ответ: %v", err)
	}
}

// handleSessionError транслирует ошибки сервисного слоя в HTTP-статусы.
// Все ошибки перехватываются на границе операции: ничего не пролетает
// наружу как паника.
func (h *QuizHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotRegistered):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not registered for this quiz"})
	case errors.Is(err, apperrors.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotYetTime):
		c.JSON(http.StatusConflict, gin.H{"error": "It is not yet time to start"})
	case errors.Is(err, apperrors.ErrAlreadyAnswered):
		c.JSON(http.StatusConflict, gin.H{"error": "Question already answered"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[QuizHandler] Внутренняя ошибка: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// paginationParams извлекает page/per_page из query с безопасными дефолтами
func paginationParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

package entity

import (
	"time"
)

// Константы статусов викторины
const (
	QuizStatusScheduled = "scheduled"
	QuizStatusLive      = "live"
	QuizStatusCompleted = "completed"
)

// Quiz представляет запланированную викторину
type Quiz struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Title                string     `gorm:"size:100;not null" json:"title"`
	Description          string     `gorm:"size:500;not null;default:''" json:"description"`
	DurationMinutes      int        `gorm:"not null;default:0" json:"duration_minutes"`
	ScheduledAt          time.Time  `gorm:"not null;index" json:"scheduled_at"`
	Status               string     `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	CurrentQuestionIndex int        `gorm:"not null;default:0" json:"current_question_index"`
	CreatedBy            uint       `gorm:"not null;index" json:"created_by"`
	Questions            []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// IsLive проверяет, идет ли викторина прямо сейчас
func (q *Quiz) IsLive() bool {
	return q.Status == QuizStatusLive
}

// IsScheduled проверяет, запланирована ли викторина
func (q *Quiz) IsScheduled() bool {
	return q.Status == QuizStatusScheduled
}

// IsCompleted проверяет, завершена ли викторина
func (q *Quiz) IsCompleted() bool {
	return q.Status == QuizStatusCompleted
}

// CanAutoStart проверяет, наступило ли время запуска по расписанию
func (q *Quiz) CanAutoStart(now time.Time) bool {
	return q.IsScheduled() && !now.Before(q.ScheduledAt)
}

package entity

import (
	"time"
)

// Answer представляет засчитанный ответ пользователя на вопрос.
// Уникальный индекс (user_id, question_id) не позволяет засчитать
// очки за один вопрос дважды.
type Answer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index;uniqueIndex:idx_user_question" json:"user_id"`
	QuizID         uint      `gorm:"not null;index" json:"quiz_id"`
	QuestionID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_user_question" json:"question_id"`
	ChosenIndex    int       `gorm:"not null;default:-1" json:"chosen_index"`
	IsCorrect      bool      `gorm:"not null" json:"is_correct"`
	ResponseTimeMs int64     `gorm:"not null" json:"response_time_ms"`
	Points         int       `gorm:"not null;default:0" json:"points"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Answer) TableName() string {
	return "quiz_answers"
}

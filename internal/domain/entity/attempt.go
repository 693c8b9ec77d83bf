package entity

import (
	"time"
)

// Attempt представляет накопительный счет участника в одной викторине.
// Уникален по паре (user_id, quiz_id); очки только добавляются, никогда не вычитаются.
type Attempt struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	UserID                 uint      `gorm:"not null;index;uniqueIndex:idx_user_quiz_attempt" json:"user_id"`
	QuizID                 uint      `gorm:"not null;index;uniqueIndex:idx_user_quiz_attempt" json:"quiz_id"`
	TotalPoints            int       `gorm:"not null;default:0" json:"total_points"`
	LastAnsweredQuestionID string    `gorm:"type:uuid;default:null" json:"last_answered_question_id,omitempty"`
	IsActive               bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "quiz_attempts"
}

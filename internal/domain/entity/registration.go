package entity

import (
	"time"
)

// Registration представляет намерение пользователя участвовать в викторине.
// Уникальна по паре (user_id, quiz_id); повторная регистрация не ошибка.
type Registration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_quiz_reg" json:"user_id"`
	QuizID    uint      `gorm:"not null;index;uniqueIndex:idx_user_quiz_reg" json:"quiz_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Registration) TableName() string {
	return "quiz_registrations"
}
